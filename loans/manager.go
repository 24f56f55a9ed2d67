package loans

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eirikbell/circulate/catalog"
	"github.com/eirikbell/circulate/fees"
	"github.com/eirikbell/circulate/liberr"
)

const (
	// LoanPeriodDays is how long a patron may keep a book before fees accrue.
	LoanPeriodDays = 14
	// MaxActiveLoans is the most books a patron may hold at once.
	MaxActiveLoans = 5
)

// Manager orchestrates borrowing and returning against the catalog store.
// The availability check-and-decrement is serialized per book and the
// loan-count check-and-insert per patron.
type Manager struct {
	store catalog.Store
	log   *logrus.Logger
	now   func() time.Time
	locks *keyedLocks
}

func NewManager(store catalog.Store, log *logrus.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		now:   time.Now,
		locks: newKeyedLocks(),
	}
}

// BorrowReceipt confirms a successful borrow.
type BorrowReceipt struct {
	BookID  int64     `json:"book_id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// Borrow lends the book to the patron for LoanPeriodDays. All eligibility
// checks run before any mutation.
func (m *Manager) Borrow(patronID string, bookID int64) (*BorrowReceipt, error) {
	if !catalog.ValidPatronID(patronID) {
		return nil, liberr.Validation("invalid patron ID, must be exactly 6 digits")
	}

	// Lock order is book then patron, everywhere.
	unlockBook := m.locks.lock(bookKey(bookID))
	defer unlockBook()
	unlockPatron := m.locks.lock(patronKey(patronID))
	defer unlockPatron()

	book, err := m.store.GetBookByID(bookID)
	if err != nil {
		return nil, liberr.Wrap(err, liberr.KindPersistence, "cannot retrieve book")
	}
	if book == nil {
		return nil, liberr.NotFound("book not found")
	}
	if book.AvailableCopies <= 0 {
		return nil, liberr.Conflict("book %q is currently not available", book.Title)
	}

	count, err := m.store.PatronBorrowCount(patronID)
	if err != nil {
		return nil, liberr.Wrap(err, liberr.KindPersistence, "cannot retrieve current loans")
	}
	if count >= MaxActiveLoans {
		return nil, liberr.Conflict("borrowing limit of %d books reached", MaxActiveLoans)
	}

	active, err := m.store.PatronBorrowedBooks(patronID)
	if err != nil {
		return nil, liberr.Wrap(err, liberr.KindPersistence, "cannot retrieve current loans")
	}
	for _, rec := range active {
		if rec.BookID == bookID {
			return nil, liberr.Conflict("book %q is already borrowed by this patron", book.Title)
		}
	}

	borrowedAt := m.now()
	dueDate := borrowedAt.AddDate(0, 0, LoanPeriodDays)

	if !m.store.InsertBorrowRecord(patronID, bookID, borrowedAt, dueDate) {
		return nil, liberr.Persistence("could not create borrow record")
	}
	if !m.store.UpdateBookAvailability(bookID, -1) {
		// Close the record we just created so the pair is not left active.
		if !m.store.UpdateBorrowRecordReturnDate(patronID, bookID, borrowedAt) {
			m.log.WithFields(logrus.Fields{
				"patron_id": patronID,
				"book_id":   bookID,
			}).Error("compensating close failed, borrow record left active without a held copy")
		}
		return nil, liberr.Persistence("could not update book availability")
	}

	m.log.WithFields(logrus.Fields{
		"patron_id": patronID,
		"book_id":   bookID,
		"due_date":  dueDate,
	}).Info("book borrowed")

	return &BorrowReceipt{BookID: bookID, Title: book.Title, DueDate: dueDate}, nil
}

// ReturnReceipt confirms a successful return, including any fee accrued.
type ReturnReceipt struct {
	BookID     int64      `json:"book_id"`
	Title      string     `json:"title"`
	ReturnedAt time.Time  `json:"returned_at"`
	Fee        fees.Quote `json:"fee"`
}

// Return closes the patron's active loan of the book and frees the copy.
// The fee is assessed against the return time; a second return of the same
// loan finds no active record and fails.
func (m *Manager) Return(patronID string, bookID int64) (*ReturnReceipt, error) {
	if !catalog.ValidPatronID(patronID) {
		return nil, liberr.Validation("invalid patron ID, must be exactly 6 digits")
	}

	unlockBook := m.locks.lock(bookKey(bookID))
	defer unlockBook()
	unlockPatron := m.locks.lock(patronKey(patronID))
	defer unlockPatron()

	book, err := m.store.GetBookByID(bookID)
	if err != nil {
		return nil, liberr.Wrap(err, liberr.KindPersistence, "cannot retrieve book")
	}
	if book == nil {
		return nil, liberr.NotFound("book not found")
	}

	active, err := m.store.PatronBorrowedBooks(patronID)
	if err != nil {
		return nil, liberr.Wrap(err, liberr.KindPersistence, "cannot retrieve current loans")
	}
	var record *catalog.BorrowRecord
	for i := range active {
		if active[i].BookID == bookID {
			record = &active[i]
			break
		}
	}
	if record == nil {
		return nil, liberr.Conflict("no active borrow record found for this patron and book")
	}

	returnedAt := m.now()
	quote := fees.Compute(record.DueDate, returnedAt)

	if !m.store.UpdateBorrowRecordReturnDate(patronID, bookID, returnedAt) {
		return nil, liberr.Persistence("could not close the borrow record")
	}
	// The record is already closed at this point; a failed increment leaves
	// the copy count one short. Surfaced, not compensated.
	if !m.store.UpdateBookAvailability(bookID, +1) {
		return nil, liberr.Persistence("could not update book availability")
	}

	m.log.WithFields(logrus.Fields{
		"patron_id":    patronID,
		"book_id":      bookID,
		"days_overdue": quote.DaysOverdue,
		"fee":          quote.Amount,
	}).Info("book returned")

	return &ReturnReceipt{BookID: bookID, Title: book.Title, ReturnedAt: returnedAt, Fee: quote}, nil
}

// LateFeeFor quotes the live late fee on the patron's active loan of the
// given book. A missing loan quotes zero with an explanatory status.
func (m *Manager) LateFeeFor(patronID string, bookID int64) (fees.Quote, error) {
	active, err := m.store.PatronBorrowedBooks(patronID)
	if err != nil {
		return fees.Quote{}, liberr.Wrap(err, liberr.KindPersistence, "cannot retrieve current loans")
	}
	for _, rec := range active {
		if rec.BookID == bookID {
			return fees.Compute(rec.DueDate, m.now()), nil
		}
	}
	return fees.Quote{Status: "no active borrow record found for this patron and book"}, nil
}

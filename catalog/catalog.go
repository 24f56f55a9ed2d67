package catalog

import "time"

// Book is a catalog entry. AvailableCopies stays between 0 and TotalCopies.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// BorrowRecord ties a patron to a borrowed book. A nil ReturnDate means the
// loan is still active. Title and Author are denormalized from the book for
// listing calls.
type BorrowRecord struct {
	PatronID   string     `json:"patron_id"`
	BookID     int64      `json:"book_id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	IsOverdue  bool       `json:"is_overdue"`
}

// Store persists books and borrow records. Lookups return nil without error
// when nothing matches. Mutations report success with a boolean that callers
// must check; the store never surfaces its errors to them directly.
type Store interface {
	GetBookByID(id int64) (*Book, error)
	GetBookByISBN(isbn string) (*Book, error)
	AllBooks() ([]Book, error)
	InsertBook(title, author, isbn string, totalCopies int) bool

	PatronBorrowCount(patronID string) (int, error)
	PatronBorrowedBooks(patronID string) ([]BorrowRecord, error)
	PatronHistory(patronID string) ([]BorrowRecord, error)

	InsertBorrowRecord(patronID string, bookID int64, borrowDate, dueDate time.Time) bool
	UpdateBorrowRecordReturnDate(patronID string, bookID int64, returnedAt time.Time) bool
	UpdateBookAvailability(bookID int64, delta int) bool
}

// ValidPatronID reports whether id is a well-formed library card number,
// exactly 6 digits.
func ValidPatronID(id string) bool {
	if len(id) != 6 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

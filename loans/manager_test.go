package loans

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/eirikbell/circulate/catalog"
	"github.com/eirikbell/circulate/liberr"
	"github.com/eirikbell/circulate/mocks"
)

var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestManager(store catalog.Store) *Manager {
	log := logrus.New()
	log.SetOutput(io.Discard)
	m := NewManager(store, log)
	m.now = func() time.Time { return fixedNow }
	return m
}

func TestBorrowInvalidPatronID(t *testing.T) {
	testCases := []struct {
		patronID string
	}{
		{""},
		{"12345"},
		{"1234567"},
		{"abcdef"},
		{"12345a"},
	}

	for _, tt := range testCases {
		store := new(mocks.Store)
		m := newTestManager(store)

		receipt, err := m.Borrow(tt.patronID, 1)
		assert.Nil(t, receipt)
		assert.Error(t, err)
		assert.Equal(t, liberr.KindValidation, liberr.KindOf(err))

		store.AssertExpectations(t)
	}
}

func TestBorrowBookNotFound(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(42)).Return(nil, nil)
	m := newTestManager(store)

	receipt, err := m.Borrow("123456", 42)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindNotFound, liberr.KindOf(err))
	assert.Equal(t, "book not found", err.Error())

	store.AssertExpectations(t)
}

func TestBorrowBookUnavailable(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune", TotalCopies: 2, AvailableCopies: 0}, nil)
	m := newTestManager(store)

	receipt, err := m.Borrow("123456", 1)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindConflict, liberr.KindOf(err))
	assert.Contains(t, err.Error(), "not available")

	store.AssertExpectations(t)
}

func TestBorrowLimitReached(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune", TotalCopies: 2, AvailableCopies: 1}, nil)
	store.On("PatronBorrowCount", "123456").Return(MaxActiveLoans, nil)
	m := newTestManager(store)

	receipt, err := m.Borrow("123456", 1)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindConflict, liberr.KindOf(err))
	assert.Equal(t, "borrowing limit of 5 books reached", err.Error())

	store.AssertExpectations(t)
}

func TestBorrowDuplicateActiveLoan(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune", TotalCopies: 2, AvailableCopies: 1}, nil)
	store.On("PatronBorrowCount", "123456").Return(1, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{
		{PatronID: "123456", BookID: 1, DueDate: fixedNow.AddDate(0, 0, 7)},
	}, nil)
	m := newTestManager(store)

	receipt, err := m.Borrow("123456", 1)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindConflict, liberr.KindOf(err))
	assert.Contains(t, err.Error(), "already borrowed")

	store.AssertExpectations(t)
}

func TestBorrowRecordInsertFails(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune", TotalCopies: 2, AvailableCopies: 1}, nil)
	store.On("PatronBorrowCount", "123456").Return(0, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{}, nil)
	store.On("InsertBorrowRecord", "123456", int64(1), fixedNow, fixedNow.AddDate(0, 0, LoanPeriodDays)).Return(false)
	m := newTestManager(store)

	receipt, err := m.Borrow("123456", 1)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindPersistence, liberr.KindOf(err))

	store.AssertExpectations(t)
}

func TestBorrowAvailabilityUpdateFailsCompensates(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune", TotalCopies: 2, AvailableCopies: 1}, nil)
	store.On("PatronBorrowCount", "123456").Return(0, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{}, nil)
	store.On("InsertBorrowRecord", "123456", int64(1), fixedNow, fixedNow.AddDate(0, 0, LoanPeriodDays)).Return(true)
	store.On("UpdateBookAvailability", int64(1), -1).Return(false)
	// The freshly inserted record must be closed again.
	store.On("UpdateBorrowRecordReturnDate", "123456", int64(1), fixedNow).Return(true)
	m := newTestManager(store)

	receipt, err := m.Borrow("123456", 1)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindPersistence, liberr.KindOf(err))

	store.AssertExpectations(t)
}

func TestBorrowSucceeds(t *testing.T) {
	dueDate := fixedNow.AddDate(0, 0, LoanPeriodDays)

	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune", TotalCopies: 2, AvailableCopies: 2}, nil)
	store.On("PatronBorrowCount", "123456").Return(2, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{
		{PatronID: "123456", BookID: 9, DueDate: fixedNow.AddDate(0, 0, 3)},
	}, nil)
	store.On("InsertBorrowRecord", "123456", int64(1), fixedNow, dueDate).Return(true)
	store.On("UpdateBookAvailability", int64(1), -1).Return(true)
	m := newTestManager(store)

	receipt, err := m.Borrow("123456", 1)
	assert.NoError(t, err)
	assert.Equal(t, "Dune", receipt.Title)
	assert.Equal(t, dueDate, receipt.DueDate)

	store.AssertExpectations(t)
}

func TestReturnNoActiveLoan(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune"}, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{
		{PatronID: "123456", BookID: 7, DueDate: fixedNow.AddDate(0, 0, 7)},
	}, nil)
	m := newTestManager(store)

	receipt, err := m.Return("123456", 1)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindConflict, liberr.KindOf(err))
	assert.Equal(t, "no active borrow record found for this patron and book", err.Error())

	store.AssertExpectations(t)
}

func TestReturnOnTimeNoFee(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune"}, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{
		{PatronID: "123456", BookID: 1, DueDate: fixedNow.AddDate(0, 0, 4)},
	}, nil)
	store.On("UpdateBorrowRecordReturnDate", "123456", int64(1), fixedNow).Return(true)
	store.On("UpdateBookAvailability", int64(1), 1).Return(true)
	m := newTestManager(store)

	receipt, err := m.Return("123456", 1)
	assert.NoError(t, err)
	assert.Equal(t, 0.00, receipt.Fee.Amount)
	assert.Equal(t, 0, receipt.Fee.DaysOverdue)

	store.AssertExpectations(t)
}

func TestReturnLateChargesFee(t *testing.T) {
	// 10 whole days overdue: 7*0.50 + 3*1.00 = 6.50.
	overdueDue := fixedNow.AddDate(0, 0, -10).Add(-time.Hour)

	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune"}, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{
		{PatronID: "123456", BookID: 1, DueDate: overdueDue, IsOverdue: true},
	}, nil)
	store.On("UpdateBorrowRecordReturnDate", "123456", int64(1), fixedNow).Return(true)
	store.On("UpdateBookAvailability", int64(1), 1).Return(true)
	m := newTestManager(store)

	receipt, err := m.Return("123456", 1)
	assert.NoError(t, err)
	assert.Equal(t, 6.50, receipt.Fee.Amount)
	assert.Equal(t, 10, receipt.Fee.DaysOverdue)
	assert.Equal(t, fixedNow, receipt.ReturnedAt)

	store.AssertExpectations(t)
}

func TestReturnCloseFails(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune"}, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{
		{PatronID: "123456", BookID: 1, DueDate: fixedNow.AddDate(0, 0, 4)},
	}, nil)
	store.On("UpdateBorrowRecordReturnDate", "123456", int64(1), fixedNow).Return(false)
	m := newTestManager(store)

	receipt, err := m.Return("123456", 1)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindPersistence, liberr.KindOf(err))

	// Availability must not change when the record was not closed.
	store.AssertNotCalled(t, "UpdateBookAvailability", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestReturnAvailabilityUpdateFails(t *testing.T) {
	store := new(mocks.Store)
	store.On("GetBookByID", int64(1)).Return(&catalog.Book{ID: 1, Title: "Dune"}, nil)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{
		{PatronID: "123456", BookID: 1, DueDate: fixedNow.AddDate(0, 0, 4)},
	}, nil)
	store.On("UpdateBorrowRecordReturnDate", "123456", int64(1), fixedNow).Return(true)
	store.On("UpdateBookAvailability", int64(1), 1).Return(false)
	m := newTestManager(store)

	receipt, err := m.Return("123456", 1)
	assert.Nil(t, receipt)
	assert.Error(t, err)
	assert.Equal(t, liberr.KindPersistence, liberr.KindOf(err))

	store.AssertExpectations(t)
}

func TestLateFeeForWithoutActiveLoan(t *testing.T) {
	store := new(mocks.Store)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{}, nil)
	m := newTestManager(store)

	quote, err := m.LateFeeFor("123456", 1)
	assert.NoError(t, err)
	assert.Equal(t, 0.00, quote.Amount)
	assert.Equal(t, 0, quote.DaysOverdue)
	assert.Contains(t, quote.Status, "no active borrow record")

	store.AssertExpectations(t)
}

func TestLateFeeForOverdueLoan(t *testing.T) {
	store := new(mocks.Store)
	store.On("PatronBorrowedBooks", "123456").Return([]catalog.BorrowRecord{
		{PatronID: "123456", BookID: 1, DueDate: fixedNow.AddDate(0, 0, -5).Add(-time.Hour)},
	}, nil)
	m := newTestManager(store)

	quote, err := m.LateFeeFor("123456", 1)
	assert.NoError(t, err)
	assert.Equal(t, 2.50, quote.Amount)
	assert.Equal(t, 5, quote.DaysOverdue)

	store.AssertExpectations(t)
}

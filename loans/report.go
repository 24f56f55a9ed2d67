package loans

import (
	"math"
	"time"

	"github.com/eirikbell/circulate/catalog"
	"github.com/eirikbell/circulate/fees"
	"github.com/eirikbell/circulate/liberr"
)

// ActiveLoan is a current loan with its fee assessed at report time.
type ActiveLoan struct {
	BookID     int64      `json:"book_id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	IsOverdue  bool       `json:"is_overdue"`
	Fee        fees.Quote `json:"fee"`
}

// HistoryEntry is any past or present borrow record. For closed records the
// fee is the one that applied at the snapshot return date.
type HistoryEntry struct {
	BookID      int64      `json:"book_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	BorrowDate  time.Time  `json:"borrow_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date"`
	WasLate     bool       `json:"was_late"`
	FeeAtReturn float64    `json:"fee_at_return"`
}

// StatusReport aggregates a patron's loans, owed fees and borrow history.
type StatusReport struct {
	PatronID           string         `json:"patron_id"`
	CurrentLoans       []ActiveLoan   `json:"current_loans"`
	BooksBorrowedCount int            `json:"books_borrowed_count"`
	TotalFeesOwed      float64        `json:"total_late_fees_owed"`
	History            []HistoryEntry `json:"borrow_history"`
	Status             string         `json:"status,omitempty"`
}

// StatusReport builds the patron's report. An invalid patron ID yields an
// empty report with a status note rather than an error. TotalFeesOwed sums
// only over currently overdue active loans.
func (m *Manager) StatusReport(patronID string) (*StatusReport, error) {
	report := &StatusReport{
		PatronID:     patronID,
		CurrentLoans: []ActiveLoan{},
		History:      []HistoryEntry{},
	}
	if !catalog.ValidPatronID(patronID) {
		report.Status = "invalid patron ID (must be 6 digits)"
		return report, nil
	}

	now := m.now()

	active, err := m.store.PatronBorrowedBooks(patronID)
	if err != nil {
		return nil, liberr.Wrap(err, liberr.KindPersistence, "cannot retrieve current loans")
	}
	for _, rec := range active {
		quote := fees.Compute(rec.DueDate, now)
		if quote.DaysOverdue > 0 && quote.Amount > 0 {
			report.TotalFeesOwed += quote.Amount
		}
		report.CurrentLoans = append(report.CurrentLoans, ActiveLoan{
			BookID:     rec.BookID,
			Title:      rec.Title,
			Author:     rec.Author,
			BorrowDate: rec.BorrowDate,
			DueDate:    rec.DueDate,
			IsOverdue:  rec.IsOverdue,
			Fee:        quote,
		})
	}
	report.BooksBorrowedCount = len(report.CurrentLoans)
	report.TotalFeesOwed = math.Round(report.TotalFeesOwed*100) / 100

	history, err := m.store.PatronHistory(patronID)
	if err != nil {
		return nil, liberr.Wrap(err, liberr.KindPersistence, "cannot retrieve borrow history")
	}
	for _, rec := range history {
		entry := HistoryEntry{
			BookID:     rec.BookID,
			Title:      rec.Title,
			Author:     rec.Author,
			BorrowDate: rec.BorrowDate,
			DueDate:    rec.DueDate,
			ReturnDate: rec.ReturnDate,
		}
		if rec.ReturnDate != nil {
			quote := fees.Compute(rec.DueDate, *rec.ReturnDate)
			entry.FeeAtReturn = quote.Amount
			entry.WasLate = quote.DaysOverdue > 0
		}
		report.History = append(report.History, entry)
	}

	return report, nil
}

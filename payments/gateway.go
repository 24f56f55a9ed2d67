package payments

import "time"

// Status of a payment transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
	StatusRefunded  Status = "refunded"
	StatusNotFound  Status = "not_found"
)

// Transaction is a charge against a patron's account.
type Transaction struct {
	ID        string    `json:"transaction_id"`
	PatronID  string    `json:"patron_id"`
	Amount    float64   `json:"amount"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Verification is the result of a status lookup on a transaction.
type Verification struct {
	Status    Status     `json:"status"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Gateway is the external payment processor. Implementations may block for
// bounded latency and may fail; callers must treat any error or panic as a
// failed charge, never as a fault to propagate.
type Gateway interface {
	ProcessPayment(patronID string, amount float64, description string) (*Transaction, error)
	RefundPayment(transactionID string, amount float64) (string, error)
	VerifyPaymentStatus(transactionID string) Verification
}

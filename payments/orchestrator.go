package payments

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/eirikbell/circulate/catalog"
	"github.com/eirikbell/circulate/liberr"
	"github.com/eirikbell/circulate/loans"
)

// Orchestrator charges and refunds late fees through an injected gateway.
// Any error or panic coming out of the gateway is converted into a typed
// failure; nothing propagates to the caller unhandled.
type Orchestrator struct {
	loans   *loans.Manager
	gateway Gateway
	log     *logrus.Logger
}

func NewOrchestrator(manager *loans.Manager, gateway Gateway, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{loans: manager, gateway: gateway, log: log}
}

// Result reports the outcome of a late-fee payment attempt.
type Result struct {
	Paid          bool   `json:"paid"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message"`
}

// PayLateFees charges the patron's live late fee on the given book. A
// malformed patron ID short-circuits before any lookup; a zero fee returns
// an unpaid result without touching the gateway.
func (o *Orchestrator) PayLateFees(patronID string, bookID int64) (Result, error) {
	if !catalog.ValidPatronID(patronID) {
		err := liberr.Validation("invalid patron ID, must be exactly 6 digits")
		return Result{Message: err.Msg}, err
	}

	quote, err := o.loans.LateFeeFor(patronID, bookID)
	if err != nil {
		return Result{Message: err.Error()}, err
	}
	if quote.Amount <= 0 {
		return Result{Paid: false, Message: "No late fee due for this loan."}, nil
	}

	description := fmt.Sprintf("Late fee for book %d, %d day(s) overdue", bookID, quote.DaysOverdue)
	txn, err := o.charge(patronID, quote.Amount, description)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"patron_id": patronID,
			"book_id":   bookID,
			"amount":    quote.Amount,
		}).Warn("late fee payment failed: ", err)
		return Result{Message: err.Error()}, err
	}

	o.log.WithFields(logrus.Fields{
		"patron_id":      patronID,
		"book_id":        bookID,
		"amount":         quote.Amount,
		"transaction_id": txn.ID,
	}).Info("late fee paid")

	return Result{
		Paid:          true,
		TransactionID: txn.ID,
		Message:       fmt.Sprintf("Late fee payment of $%.2f processed successfully.", quote.Amount),
	}, nil
}

// RefundLateFeePayment reverses an earlier charge. Blank transaction IDs and
// non-positive amounts are rejected before the gateway is contacted; the
// gateway's outcome is surfaced verbatim otherwise.
func (o *Orchestrator) RefundLateFeePayment(transactionID string, amount float64) (string, error) {
	if strings.TrimSpace(transactionID) == "" {
		return "", liberr.Validation("transaction ID is required")
	}
	if amount <= 0 {
		return "", liberr.Validation("refund amount must be greater than 0")
	}

	message, err := o.refund(transactionID, amount)
	if err != nil {
		return "", err
	}

	o.log.WithFields(logrus.Fields{
		"transaction_id": transactionID,
		"amount":         amount,
	}).Info("late fee refunded")

	return message, nil
}

// charge invokes the gateway, converting panics and untyped errors into
// external failures.
func (o *Orchestrator) charge(patronID string, amount float64, description string) (txn *Transaction, err error) {
	defer func() {
		if r := recover(); r != nil {
			txn = nil
			err = liberr.External("payment gateway failure: %v", r)
		}
	}()

	txn, err = o.gateway.ProcessPayment(patronID, amount, description)
	if err != nil && liberr.KindOf(err) == 0 {
		err = liberr.Wrap(err, liberr.KindExternal, "payment gateway error")
	}
	return txn, err
}

func (o *Orchestrator) refund(transactionID string, amount float64) (message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			message = ""
			err = liberr.External("payment gateway failure: %v", r)
		}
	}()

	message, err = o.gateway.RefundPayment(transactionID, amount)
	if err != nil && liberr.KindOf(err) == 0 {
		err = liberr.Wrap(err, liberr.KindExternal, "payment gateway error")
	}
	return message, err
}

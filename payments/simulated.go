package payments

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eirikbell/circulate/catalog"
	"github.com/eirikbell/circulate/liberr"
)

// DefaultCeiling is the largest single charge the gateway accepts.
const DefaultCeiling = 1000.00

const transactionPrefix = "txn"

// GatewayConfig tunes the simulated gateway.
type GatewayConfig struct {
	// Ceiling caps single charges; zero or negative means DefaultCeiling.
	Ceiling float64
	// FailureRate in [0,1] is the chance a charge fails at the transport
	// level after validation passes.
	FailureRate float64
	// Latency is the upper bound of the simulated processing delay.
	Latency time.Duration
}

// SimulatedGateway mimics an external payment processor: validation,
// randomized latency, nondeterministic transport failures and a ledger of
// issued transactions.
type SimulatedGateway struct {
	mu     sync.Mutex
	ledger map[string]*Transaction
	cfg    GatewayConfig
	rng    *rand.Rand
	now    func() time.Time
}

func NewSimulatedGateway(cfg GatewayConfig) *SimulatedGateway {
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = DefaultCeiling
	}
	return &SimulatedGateway{
		ledger: make(map[string]*Transaction),
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// ProcessPayment charges the patron. Validation failures never touch the
// simulated transport; after validation the charge may still fail with an
// external error at the configured rate.
func (g *SimulatedGateway) ProcessPayment(patronID string, amount float64, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, liberr.Validation("invalid payment amount")
	}
	if amount > g.cfg.Ceiling {
		return nil, liberr.Validation("payment amount exceeds limit of $%.2f", g.cfg.Ceiling)
	}
	if !catalog.ValidPatronID(patronID) {
		return nil, liberr.Validation("invalid patron ID format")
	}

	g.simulateLatency()

	g.mu.Lock()
	defer g.mu.Unlock()

	// The charge enters the ledger as pending and settles to completed or
	// declined, so failed attempts stay visible to verification.
	txn := &Transaction{
		ID:        newTransactionID(patronID),
		PatronID:  patronID,
		Amount:    amount,
		Status:    StatusPending,
		Timestamp: g.now(),
	}
	g.ledger[txn.ID] = txn

	if g.cfg.FailureRate > 0 && g.rng.Float64() < g.cfg.FailureRate {
		txn.Status = StatusDeclined
		return nil, liberr.External("network error: payment processor unreachable")
	}

	txn.Status = StatusCompleted
	return txn, nil
}

// RefundPayment reverses a charge. The transaction ID only has to be
// well-formed; charges issued by another gateway instance are accepted,
// matching the shape-based behavior of the real processor's sandbox.
func (g *SimulatedGateway) RefundPayment(transactionID string, amount float64) (string, error) {
	if amount <= 0 {
		return "", liberr.Validation("refund amount must be greater than 0")
	}
	if !wellFormedTransactionID(transactionID) {
		return "", liberr.Validation("invalid transaction ID")
	}

	g.simulateLatency()

	g.mu.Lock()
	defer g.mu.Unlock()

	if txn, ok := g.ledger[transactionID]; ok {
		if txn.Status != StatusCompleted {
			return "", liberr.Conflict("transaction %s is %s and cannot be refunded", transactionID, txn.Status)
		}
		txn.Status = StatusRefunded
	}

	return fmt.Sprintf("Refund of $%.2f processed successfully.", amount), nil
}

// VerifyPaymentStatus reports the recorded status of a transaction. Unknown
// but well-formed IDs verify as completed; malformed IDs are not found.
func (g *SimulatedGateway) VerifyPaymentStatus(transactionID string) Verification {
	g.mu.Lock()
	defer g.mu.Unlock()

	if txn, ok := g.ledger[transactionID]; ok {
		ts := txn.Timestamp
		return Verification{Status: txn.Status, Timestamp: &ts}
	}
	if wellFormedTransactionID(transactionID) {
		ts := g.now()
		return Verification{Status: StatusCompleted, Timestamp: &ts}
	}
	return Verification{Status: StatusNotFound}
}

func (g *SimulatedGateway) simulateLatency() {
	if g.cfg.Latency <= 0 {
		return
	}
	g.mu.Lock()
	d := time.Duration(g.rng.Int63n(int64(g.cfg.Latency)))
	g.mu.Unlock()
	time.Sleep(d)
}

func newTransactionID(patronID string) string {
	return fmt.Sprintf("%s_%s_%s", transactionPrefix, patronID, uuid.NewString()[:8])
}

// wellFormedTransactionID checks the txn_<patron>_<suffix> shape.
func wellFormedTransactionID(id string) bool {
	parts := strings.SplitN(id, "_", 3)
	if len(parts) < 2 || parts[0] != transactionPrefix {
		return false
	}
	return catalog.ValidPatronID(parts[1])
}

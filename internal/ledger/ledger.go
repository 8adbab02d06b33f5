package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	ErrDuplicateKey           = errors.New("checkout with this idempotency key already recorded")
	IllegalTransitionError    = errors.New("illegal transition of ledger status")
)

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPaid          Status = "PAID"
	StatusPaymentFailed Status = "PAYMENT_FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusPaid
}

// CanTransitionTo allows a failed verification to be retried.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusPaymentFailed
	case StatusPaymentFailed:
		return next == StatusPaid || next == StatusPaymentFailed
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// Entry records one placed order against the idempotency key of the checkout
// that placed it.
type Entry struct {
	IdempotencyKey string
	SessionID      string
	OrderID        string
	UserID         string
	PaymentMethod  string
	Total          decimal.Decimal
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository interface {
	GetByIdempotencyKey(ctx context.Context, key string) (*Entry, error)
	Create(ctx context.Context, entry *Entry) error
	UpdateStatus(ctx context.Context, key string, status Status) error
	Close() error
}

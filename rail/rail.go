// Package rail defines the payment rail the settlement engine pays
// validators through.
package rail

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrRejected means the rail refused the transfer and nothing was sent,
	// e.g. the hot wallet has insufficient funds.
	ErrRejected = errors.New("transfer rejected by payment rail")
	// ErrTransient means the outcome of the call is unknown: the transfer
	// may or may not have been executed.
	ErrTransient = errors.New("payment rail unavailable")
)

// PaymentRail executes value transfers. Implementations must treat the
// idempotency key as a client supplied request id: a repeated call with the
// same key must not transfer twice.
type PaymentRail interface {
	Transfer(ctx context.Context, address string, amount uint64, idempotencyKey string) (string, error)
}

// Lookuper is implemented by rails that can find a transfer by the
// idempotency key it was submitted with.
type Lookuper interface {
	Lookup(ctx context.Context, idempotencyKey string) (transferID string, found bool, err error)
}

// Rejected wraps a rail specific refusal so that errors.Is(err, ErrRejected)
// holds.
func Rejected(reason string) error {
	return errors.Wrap(ErrRejected, reason)
}

// Transient wraps a transport level failure so that
// errors.Is(err, ErrTransient) holds.
func Transient(err error) error {
	return errors.Wrapf(ErrTransient, "%v", err)
}

// IsRejected reports whether err is an explicit refusal. Every other error,
// including deadline expiry, leaves the outcome unknown.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}

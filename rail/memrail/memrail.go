// Package memrail is a deterministic in-memory payment rail for tests and
// local runs.
package memrail

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/varunguleriaCodes/DeWebStatus/rail"
)

// Mode selects how the rail answers transfers with a new idempotency key.
type Mode int

const (
	// Confirm executes the transfer and returns its id.
	Confirm Mode = iota
	// Reject refuses the transfer.
	Reject
	// Timeout executes nothing and blocks until the context ends.
	Timeout
	// Drop executes the transfer but loses the response.
	Drop
)

// Transfer is one executed transfer.
type Transfer struct {
	ID             string
	Address        string
	Amount         uint64
	IdempotencyKey string
}

// Rail implements rail.PaymentRail and rail.Lookuper. Transfers are
// idempotent per key and numbered T1, T2, ... in execution order.
type Rail struct {
	mu        sync.Mutex
	mode      Mode
	hold      *Hold
	calls     int
	transfers []Transfer
	byKey     map[string]string
}

// New returns a rail confirming every transfer.
func New() *Rail {
	return &Rail{byKey: make(map[string]string)}
}

// SetMode changes the answer for subsequent transfers.
func (r *Rail) SetMode(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = m
}

// Hold makes subsequent transfers wait until the returned hold is released
// or their context ends.
func (r *Rail) Hold() *Hold {
	h := &Hold{
		entered: make(chan struct{}, 64),
		release: make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.hold = h
	return h
}

// Transfer implements rail.PaymentRail.
func (r *Rail) Transfer(ctx context.Context, address string, amount uint64, key string) (string, error) {
	r.mu.Lock()
	r.calls++
	h := r.hold
	r.mu.Unlock()

	if h != nil {
		h.entered <- struct{}{}
		select {
		case <-h.release:
		case <-ctx.Done():
			return "", rail.Transient(ctx.Err())
		}
	}

	r.mu.Lock()
	if id, ok := r.byKey[key]; ok {
		r.mu.Unlock()
		return id, nil
	}

	mode := r.mode
	switch mode {
	case Reject:
		r.mu.Unlock()
		return "", rail.Rejected("hot wallet has insufficient funds")

	case Timeout:
		r.mu.Unlock()
		<-ctx.Done()
		return "", rail.Transient(ctx.Err())
	}

	id := fmt.Sprintf("T%d", len(r.transfers)+1)
	r.transfers = append(r.transfers, Transfer{
		ID:             id,
		Address:        address,
		Amount:         amount,
		IdempotencyKey: key,
	})
	r.byKey[key] = id
	r.mu.Unlock()

	if mode == Drop {
		return "", rail.Transient(errors.New("connection reset by peer"))
	}

	return id, nil
}

// Lookup implements rail.Lookuper.
func (r *Rail) Lookup(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byKey[key]
	return id, ok, nil
}

// Transfers returns the executed transfers.
func (r *Rail) Transfers() []Transfer {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Transfer(nil), r.transfers...)
}

// Calls returns how many times Transfer was invoked.
func (r *Rail) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls
}

// Hold parks transfers until released.
type Hold struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Entered receives once per transfer that reached the hold.
func (h *Hold) Entered() <-chan struct{} {
	return h.entered
}

// Release lets every parked and future transfer through.
func (h *Hold) Release() {
	h.once.Do(func() { close(h.release) })
}

// TransferOnly hides the lookup capability of r.
func TransferOnly(r *Rail) rail.PaymentRail {
	return transferOnly{r: r}
}

type transferOnly struct {
	r *Rail
}

func (t transferOnly) Transfer(ctx context.Context, address string, amount uint64, key string) (string, error) {
	return t.r.Transfer(ctx, address, amount, key)
}

package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tonehub/internal/logging"
	"tonehub/internal/services"
	"tonehub/internal/statestore"
)

// State is the gate position.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Source records which event unlocked the gate.
type Source string

const (
	SourceKey     Source = "key"
	SourcePayment Source = "payment"
)

// persistedTrue is the only value ever written.
const persistedTrue = "true"

// ErrInvalidKey is wrapped by VerifyError when the key does not match.
var ErrInvalidKey = errors.New("invalid access key")

// VerifyError is returned by Gate.Verify when the gate stays locked. The
// caller may retry without limit.
type VerifyError struct {
	Err error
}

func (e *VerifyError) Error() string {
	if errors.Is(e.Err, ErrInvalidKey) {
		return "That key is not valid. Check it and try again."
	}
	return fmt.Sprintf("key verification failed: %v", e.Err)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// Payment is the success callback payload from the checkout collaborator.
type Payment struct {
	PayerName string
	OrderID   string
}

// Gate is the entitlement state machine. It is safe for concurrent use.
type Gate struct {
	store      statestore.KV
	storageKey string
	verifier   Verifier
	logger     *slog.Logger

	mu          sync.Mutex
	state       State
	subscribers []func(State)
}

// Options tunes a Gate.
type Options struct {
	// StorageKey is the namespaced persistence key.
	StorageKey string
}

// New builds a Gate, reading the persisted flag once. A read failure leaves
// the gate Locked and is logged.
func New(ctx context.Context, store statestore.KV, verifier Verifier, logger *slog.Logger, opts Options) (*Gate, error) {
	if store == nil {
		return nil, errors.New("entitlement: store is required")
	}
	if verifier == nil {
		return nil, errors.New("entitlement: verifier is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	key := strings.TrimSpace(opts.StorageKey)
	if key == "" {
		return nil, services.Wrap(services.ErrConfiguration, "entitlement", "new", "storage key is empty", nil)
	}

	g := &Gate{
		store:      store,
		storageKey: key,
		verifier:   verifier,
		logger:     logging.NewComponentLogger(logger, "entitlement"),
	}
	value, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		logging.WarnWithContext(g.logger, "entitlement flag unreadable; starting locked", "entitlement_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state database permissions"),
			logging.String(logging.FieldImpact, "downloads require unlocking again"))
	case ok && value == persistedTrue:
		g.state = Unlocked
	}
	g.logger.Debug("entitlement loaded", logging.String("state", g.state.String()))
	return g, nil
}

// State returns the current gate position.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Authorized reports whether the gate is Unlocked.
func (g *Gate) Authorized() bool { return g.State() == Unlocked }

// Subscribe registers fn to be called after each transition. fn runs on the
// goroutine that caused the transition.
func (g *Gate) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.subscribers = append(g.subscribers, fn)
	g.mu.Unlock()
}

// Verify checks input with the Verifier and unlocks on success. A mismatch
// returns a *VerifyError wrapping ErrInvalidKey. Verifying while already
// Unlocked succeeds without consulting the Verifier.
func (g *Gate) Verify(ctx context.Context, input string) error {
	if g.Authorized() {
		return nil
	}
	ok, err := g.verifier.Verify(ctx, input)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "key verification errored", "entitlement_verify_failed",
			logging.Error(err))
		return &VerifyError{Err: err}
	}
	if !ok {
		g.logger.Info("access key rejected", logging.String(logging.FieldEventType, "entitlement_key_rejected"))
		return &VerifyError{Err: ErrInvalidKey}
	}
	return g.unlock(ctx, SourceKey, nil)
}

// ConfirmPayment unlocks unconditionally. The checkout collaborator's
// callback is trusted as proof of payment.
func (g *Gate) ConfirmPayment(ctx context.Context, p Payment) error {
	attrs := []logging.Attr{logging.String("payer", strings.TrimSpace(p.PayerName))}
	if order := strings.TrimSpace(p.OrderID); order != "" {
		attrs = append(attrs, logging.String("order_id", order))
	}
	return g.unlock(ctx, SourcePayment, attrs)
}

func (g *Gate) unlock(ctx context.Context, source Source, attrs []logging.Attr) error {
	g.mu.Lock()
	if g.state == Unlocked {
		g.mu.Unlock()
		return nil
	}
	g.state = Unlocked
	subscribers := append([]func(State){}, g.subscribers...)
	g.mu.Unlock()

	logger := logging.WithContext(ctx, g.logger)
	attrs = append(attrs,
		logging.String("source", string(source)),
		logging.String(logging.FieldEventType, "entitlement_unlocked"))
	logger.Info("entitlement unlocked", logging.Args(attrs...)...)

	var persistErr error
	if err := g.store.Set(ctx, g.storageKey, persistedTrue); err != nil {
		persistErr = services.Wrap(services.ErrTransient, "entitlement", "persist", "unlocked for this session only", err)
		logging.WarnWithContext(logger, "entitlement flag not persisted", "entitlement_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state database permissions"),
			logging.String(logging.FieldImpact, "unlock will not survive a restart"))
	}

	for _, fn := range subscribers {
		fn(Unlocked)
	}
	return persistErr
}

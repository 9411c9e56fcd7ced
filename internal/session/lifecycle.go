package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"redbull-counter-backend/internal/catalog"
	"redbull-counter-backend/internal/ledger"
)

// Options tunes how failed writes are retried.
type Options struct {
	// SaveRetries is the number of extra attempts after a failed write.
	SaveRetries   int
	RetryInterval time.Duration
}

// Lifecycle drives the Setup -> Active -> Summary state machine. Every
// mutation is persisted before it becomes visible in memory.
type Lifecycle struct {
	mu      sync.Mutex
	store   *Store
	logger  *zap.Logger
	opts    Options
	phase   Phase
	current *Session
}

func NewLifecycle(store *Store, logger *zap.Logger, opts Options) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 100 * time.Millisecond
	}
	return &Lifecycle{
		store:  store,
		logger: logger,
		opts:   opts,
		phase:  PhaseSetup,
	}
}

// Restore loads the persisted session. A stored session resumes at the
// counter; nothing stored or a corrupt record starts at Setup.
func (l *Lifecycle) Restore(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sess, err := l.store.Load(ctx)
	switch {
	case errors.Is(err, ErrPersistenceCorrupt):
		l.logger.Warn("discarding corrupt persisted session", zap.Error(err))
		if cerr := l.store.Clear(ctx); cerr != nil {
			l.logger.Error("failed to discard corrupt session", zap.Error(cerr))
		}
		l.enterSetup()
		return nil
	case err != nil:
		return err
	case sess == nil:
		l.logger.Info("no persisted session, starting at setup")
		l.enterSetup()
		return nil
	}

	l.current = sess
	l.phase = PhaseActive
	l.logger.Info("resumed persisted session",
		zap.Int("total_stock", sess.Stock.Total()))
	return nil
}

// Snapshot returns a copy of the current session and the phase. ok is false
// in Setup.
func (l *Lifecycle) Snapshot() (sess Session, phase Phase, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return Session{}, l.phase, false
	}
	return l.current.Clone(), l.phase, true
}

func (l *Lifecycle) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Setup starts a session from a validated submission with all-zero sales.
func (l *Lifecycle) Setup(ctx context.Context, sub Submission) (Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.phase != PhaseSetup {
		return Session{}, ErrInvalidTransition
	}
	stock, err := sub.Validate()
	if err != nil {
		return Session{}, err
	}
	sales, err := ledger.Initialize(stock)
	if err != nil {
		return Session{}, err
	}

	next := Session{Stock: stock, Sales: sales, PaymentAsset: sub.PaymentAsset}
	if err := l.persist(ctx, "save", func() error { return l.store.Save(ctx, next) }); err != nil {
		return Session{}, err
	}

	l.current = &next
	l.phase = PhaseActive
	l.logger.Info("sales session started", zap.Int("total_stock", stock.Total()))
	return next.Clone(), nil
}

// Adjust records delta units sold for flavor through channel. A change the
// ledger rejects returns the unchanged session with ledger.ErrStockExceeded
// or ledger.ErrNegativeSale and is not persisted.
func (l *Lifecycle) Adjust(ctx context.Context, flavor catalog.FlavorID, channel ledger.Channel, delta int) (Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireActive(); err != nil {
		return Session{}, err
	}
	sales, err := ledger.Adjust(l.current.Sales, l.current.Stock, flavor, channel, delta)
	if err != nil {
		l.logger.Debug("sale adjustment rejected",
			zap.String("flavor", string(flavor)),
			zap.String("channel", string(channel)),
			zap.Int("delta", delta),
			zap.Error(err))
		return l.current.Clone(), err
	}
	if delta == 0 {
		return l.current.Clone(), nil
	}

	next := Session{Stock: l.current.Stock, Sales: sales, PaymentAsset: l.current.PaymentAsset}
	if err := l.persist(ctx, "save", func() error { return l.store.Save(ctx, next) }); err != nil {
		return l.current.Clone(), err
	}
	l.current = &next
	return next.Clone(), nil
}

// ReplacePaymentAsset swaps the payment QR reference shown at the counter.
func (l *Lifecycle) ReplacePaymentAsset(ctx context.Context, asset string) (Session, error) {
	if blankAsset(asset) {
		return Session{}, &ValidationError{Fields: map[string]string{"payment_asset": missingAsset}}
	}
	return l.setPaymentAsset(ctx, asset)
}

// ClearPaymentAsset removes the payment QR reference.
func (l *Lifecycle) ClearPaymentAsset(ctx context.Context) (Session, error) {
	return l.setPaymentAsset(ctx, "")
}

func (l *Lifecycle) setPaymentAsset(ctx context.Context, asset string) (Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.requireActive(); err != nil {
		return Session{}, err
	}
	next := Session{Stock: l.current.Stock, Sales: l.current.Sales, PaymentAsset: asset}
	if err := l.persist(ctx, "save", func() error { return l.store.Save(ctx, next) }); err != nil {
		return l.current.Clone(), err
	}
	l.current = &next
	l.logger.Info("payment asset updated", zap.Bool("present", asset != ""))
	return next.Clone(), nil
}

// EndSales moves to the read-only summary. Repeating it is a no-op.
func (l *Lifecycle) EndSales() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return ErrNoSession
	}
	l.phase = PhaseSummary
	return nil
}

// BackToCounter returns from the summary so sales can resume.
func (l *Lifecycle) BackToCounter() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return ErrNoSession
	}
	l.phase = PhaseActive
	return nil
}

// Reset erases the persisted session and returns to Setup. If the erase
// fails the session stays loaded.
func (l *Lifecycle) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.persist(ctx, "clear", func() error { return l.store.Clear(ctx) }); err != nil {
		return err
	}
	l.enterSetup()
	l.logger.Info("sales session reset")
	return nil
}

func (l *Lifecycle) enterSetup() {
	l.current = nil
	l.phase = PhaseSetup
}

func (l *Lifecycle) requireActive() error {
	switch {
	case l.current == nil:
		return ErrNoSession
	case l.phase == PhaseSummary:
		return ErrReadOnly
	}
	return nil
}

// persist runs write with bounded exponential backoff. The returned error,
// if any, is always a *PersistenceWriteError.
func (l *Lifecycle) persist(ctx context.Context, op string, write func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = l.opts.RetryInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(l.opts.SaveRetries)), ctx)

	err := backoff.RetryNotify(write, policy, func(err error, wait time.Duration) {
		l.logger.Warn("session write failed, retrying",
			zap.String("op", op),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err == nil {
		return nil
	}

	l.logger.Error("session write failed", zap.String("op", op), zap.Error(err))
	var werr *PersistenceWriteError
	if errors.As(err, &werr) {
		return werr
	}
	return &PersistenceWriteError{Op: op, Err: err}
}

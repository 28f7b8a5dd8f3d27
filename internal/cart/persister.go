package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/inteiros/GoStack-GoMarketplace/internal/domain"
	"github.com/inteiros/GoStack-GoMarketplace/internal/storage"
)

// Notifier is told about every snapshot that reached storage.
type Notifier interface {
	CartPersisted(ctx context.Context, c domain.Cart) error
}

// notifyQueueSize bounds the notifications waiting behind a slow notifier.
const notifyQueueSize = 16

type notification struct {
	ctx  context.Context
	cart domain.Cart
}

// persister writes cart snapshots from a single background goroutine.
// Only the newest pending snapshot is kept, so a burst of mutations costs
// one write and the last write always carries the last state. Notifications
// run on a second goroutine and never hold back a write.
type persister struct {
	store    storage.Store
	key      string
	timeout  time.Duration
	maxTries uint
	interval time.Duration
	notifier Notifier
	logger   *slog.Logger

	mu         sync.Mutex
	pending    domain.Cart
	pendingCtx context.Context
	dirty      bool

	wake     chan struct{}
	flushCh  chan chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	notifyCh   chan notification
	notifyDone chan struct{}
}

func newPersister(store storage.Store, opts Options, logger *slog.Logger) *persister {
	return &persister{
		store:    store,
		key:      opts.Key,
		timeout:  opts.PersistTimeout,
		maxTries: opts.MaxTries,
		interval: opts.RetryInterval,
		notifier: opts.Notifier,
		logger:   logger,
		wake:     make(chan struct{}, 1),
		flushCh:  make(chan chan struct{}),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),

		notifyCh:   make(chan notification, notifyQueueSize),
		notifyDone: make(chan struct{}),
	}
}

func (p *persister) start() {
	go p.run()
	go p.notifyLoop()
}

// schedule replaces the pending snapshot. It never blocks on storage.
func (p *persister) schedule(ctx context.Context, c domain.Cart) {
	p.mu.Lock()
	p.pending = c
	p.pendingCtx = context.WithoutCancel(ctx)
	p.dirty = true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// flush waits until every snapshot scheduled before the call was attempted.
func (p *persister) flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case p.flushCh <- reply:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close writes what is pending and stops the worker. An error means the
// writer goroutine may still be using storage. Notifications still queued
// when ctx expires are abandoned.
func (p *persister) close(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stop) })

	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-p.notifyDone:
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "abandoning pending cart notifications", slog.Int("pending", len(p.notifyCh)))
	}
	return nil
}

func (p *persister) run() {
	defer close(p.done)
	defer close(p.notifyCh)

	for {
		select {
		case <-p.wake:
			p.writePending()
		case reply := <-p.flushCh:
			p.writePending()
			close(reply)
		case <-p.stop:
			p.writePending()
			return
		}
	}
}

func (p *persister) writePending() {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return
	}
	c, ctx := p.pending, p.pendingCtx
	p.pending, p.pendingCtx, p.dirty = nil, nil, false
	p.mu.Unlock()

	p.write(ctx, c)
}

func (p *persister) write(ctx context.Context, c domain.Cart) {
	data, err := domain.Encode(c)
	if err != nil {
		persistWritesTotal.WithLabelValues(resultFailure).Inc()
		p.logger.ErrorContext(ctx, "failed to encode cart", slog.String("error", err.Error()))
		return
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.interval

	start := time.Now()
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return struct{}{}, p.store.Set(attemptCtx, p.key, string(data))
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			persistWritesTotal.WithLabelValues(resultRetry).Inc()
			p.logger.WarnContext(ctx, "cart write failed, retrying",
				slog.String("key", p.key),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}),
	)
	persistWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		persistWritesTotal.WithLabelValues(resultFailure).Inc()
		p.logger.ErrorContext(ctx, "failed to persist cart",
			slog.String("key", p.key),
			slog.Int("items", len(c)),
			slog.String("error", err.Error()),
		)
		return
	}
	persistWritesTotal.WithLabelValues(resultSuccess).Inc()

	p.logger.DebugContext(ctx, "cart persisted",
		slog.String("key", p.key),
		slog.Int("items", len(c)),
		slog.Int("item_count", c.ItemCount()),
	)

	if p.notifier == nil {
		return
	}
	select {
	case p.notifyCh <- notification{ctx: ctx, cart: c}:
	default:
		notificationsTotal.WithLabelValues(resultDropped).Inc()
		p.logger.WarnContext(ctx, "cart notification queue full, dropping", slog.Int("items", len(c)))
	}
}

func (p *persister) notifyLoop() {
	defer close(p.notifyDone)

	for n := range p.notifyCh {
		p.notify(n)
	}
}

func (p *persister) notify(n notification) {
	ctx, cancel := context.WithTimeout(n.ctx, p.timeout)
	defer cancel()

	if err := p.notifier.CartPersisted(ctx, n.cart); err != nil {
		notificationsTotal.WithLabelValues(resultFailure).Inc()
		p.logger.WarnContext(ctx, "cart persisted but notification failed", slog.String("error", err.Error()))
		return
	}
	notificationsTotal.WithLabelValues(resultSuccess).Inc()
}

// Package livequery implements a subscribed query: an initial fetch kept
// fresh by refetching whenever a matching change-feed event arrives. It is
// the one generic building block behind every live listing in portalctl.
package livequery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shirkaty/portal/internal/events"
)

// Phase is the lifecycle phase of a query.
type Phase int

const (
	// Loading means no fetch has completed yet.
	Loading Phase = iota
	// Ready means the last fetch succeeded and Records is current.
	Ready
	// Failed means the last fetch returned an error.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Snapshot is an immutable view of a query's state. Version increments on
// every applied result, so callers can detect staleness.
type Snapshot[T any] struct {
	Phase   Phase
	Records T
	Err     error
	Version uint64
}

// FetchFunc loads the full current result set. Results are replaced
// wholesale; the feed only signals that something changed.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Query keeps the result of a fetch function fresh by re-running it whenever
// the change feed publishes a matching event. At most one fetch is
// outstanding; events arriving mid-fetch coalesce into a single trailing
// refetch, and only the most recently initiated fetch's result is applied.
type Query[T any] struct {
	fetch    FetchFunc[T]
	sub      events.Subscriber
	topic    string
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	snap     Snapshot[T]
	watchers []func(Snapshot[T])
	closed   bool

	cancelCtx  context.CancelFunc
	cancelSub  func()
	closeOnce  sync.Once
	refetchCh  chan struct{}
	loopDoneCh chan struct{}
}

// Option configures a Query.
type Option[T any] func(*Query[T])

// WithDebounce sets the delay between a feed event and the triggered
// refetch, batching event bursts. Default 200ms.
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(q *Query[T]) { q.debounce = d }
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(q *Query[T]) { q.logger = l }
}

// New creates a query over fetch, refreshed on events matching topic (NATS
// wildcard syntax, e.g. "portal.tickets.>"). Call Start to begin.
func New[T any](fetch FetchFunc[T], sub events.Subscriber, topic string, opts ...Option[T]) *Query[T] {
	q := &Query[T]{
		fetch:     fetch,
		sub:       sub,
		topic:     topic,
		debounce:  200 * time.Millisecond,
		logger:    slog.Default(),
		refetchCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start runs the initial fetch synchronously, then subscribes to the change
// feed and keeps the result fresh until Close or ctx cancellation. A failed
// initial fetch still starts the loop: the query surfaces Failed and
// recovers on the next feed event.
func (q *Query[T]) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	q.cancelCtx = cancel

	ch, cancelSub, err := q.sub.Subscribe(q.topic)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribing to %s: %w", q.topic, err)
	}
	q.cancelSub = cancelSub

	records, fetchErr := q.fetch(loopCtx)
	q.apply(Snapshot[T]{}, records, fetchErr)

	q.loopDoneCh = make(chan struct{})
	go q.loop(loopCtx, ch)
	return nil
}

// loop owns the refetch scheduling. Grounded in the same
// event-debounce-requery shape as the CLI watch mode.
func (q *Query[T]) loop(ctx context.Context, ch <-chan []byte) {
	defer close(q.loopDoneCh)

	debounce := time.NewTimer(0)
	debounce.Stop()
	select {
	case <-debounce.C:
	default:
	}

	type fetchResult struct {
		seq     uint64
		records T
		err     error
	}
	results := make(chan fetchResult, 1)

	var (
		seq      uint64
		inFlight bool
		dirty    bool
	)

	startFetch := func() {
		if inFlight {
			// Coalesce: remember that the data changed again and run one
			// trailing fetch when the current one lands.
			dirty = true
			return
		}
		inFlight = true
		seq++
		go func(n uint64) {
			records, err := q.fetch(ctx)
			select {
			case results <- fetchResult{seq: n, records: records, err: err}:
			case <-ctx.Done():
			}
		}(seq)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			debounce.Reset(q.debounce)
		case <-q.refetchCh:
			debounce.Reset(0)
		case <-debounce.C:
			startFetch()
		case res := <-results:
			inFlight = false
			if res.err != nil && ctx.Err() != nil {
				continue
			}
			if res.seq == seq {
				q.applyResult(res.records, res.err)
			}
			if dirty {
				dirty = false
				startFetch()
			}
		}
	}
}

func (q *Query[T]) applyResult(records T, err error) {
	q.mu.Lock()
	prev := q.snap
	q.mu.Unlock()
	q.apply(prev, records, err)
}

func (q *Query[T]) apply(prev Snapshot[T], records T, err error) {
	q.mu.Lock()
	if q.closed {
		// A fetch that resolves after Close must not mutate state.
		q.mu.Unlock()
		return
	}
	next := Snapshot[T]{Version: prev.Version + 1}
	if err != nil {
		next.Phase = Failed
		next.Err = err
		next.Records = prev.Records
	} else {
		next.Phase = Ready
		next.Records = records
	}
	q.snap = next
	watchers := make([]func(Snapshot[T]), len(q.watchers))
	copy(watchers, q.watchers)
	q.mu.Unlock()

	if err != nil {
		q.logger.Warn("live query fetch failed", "topic", q.topic, "error", err)
	}
	for _, fn := range watchers {
		fn(next)
	}
}

// Snapshot returns the current state.
func (q *Query[T]) Snapshot() Snapshot[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snap
}

// Watch registers a callback invoked after every applied result.
func (q *Query[T]) Watch(fn func(Snapshot[T])) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.watchers = append(q.watchers, fn)
}

// Refetch requests an immediate refresh, subject to the same coalescing as
// feed-triggered refetches.
func (q *Query[T]) Refetch() {
	select {
	case q.refetchCh <- struct{}{}:
	default:
	}
}

// Close tears down the subscription and stops the loop. It is safe to call
// more than once; only the first call does anything. Fetches resolving after
// Close are discarded.
func (q *Query[T]) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		if q.cancelSub != nil {
			q.cancelSub()
		}
		if q.cancelCtx != nil {
			q.cancelCtx()
		}
		if q.loopDoneCh != nil {
			<-q.loopDoneCh
		}
	})
}

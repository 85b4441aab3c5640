// Package listview is the remote-list-with-local-filter abstraction shared by
// the category and word screens.
//
// A View fetches its collection once per activation and keeps the result for
// the lifetime of the screen. Search and status filters are applied locally
// and never trigger a fetch. Every fetch is bound to the view's lifetime:
// re-activating or deactivating cancels the in-flight request and its late
// completion is discarded.
package listview

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
)

// Fetcher loads the full collection for a view.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Predicate reports whether item is visible under q. It must be pure.
type Predicate[T any] func(item T, q Query) bool

// Query is the local filter state of a view.
type Query struct {
	Search string
	Status Status
}

// LoadError is the retryable error state of a view. Message is safe to show.
type LoadError struct {
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// State is a snapshot of a view.
type State[T any] struct {
	Items   []T
	Loading bool
	Err     *LoadError
	Query   Query
}

// Counts summarises the items of a view.
type Counts struct {
	Total   int
	Visible int
}

// View is a remote list with local filtering. It is safe for concurrent use.
type View[T any] struct {
	fetch   Fetcher[T]
	match   Predicate[T]
	message func(error) string
	name    string
	logger  *logging.Logger

	// committed runs under mu once a fetch for gen has been accepted.
	committed func(gen uint64)

	mu     sync.Mutex
	state  State[T]
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

type generationKey struct{}

// generation returns the activation a fetch context belongs to.
func generation(ctx context.Context) uint64 {
	gen, _ := ctx.Value(generationKey{}).(uint64)
	return gen
}

// Option configures a View.
type Option func(*options)

type options struct {
	message func(error) string
	name    string
	logger  *logging.Logger
}

// WithErrorMessage sets the user-facing message for a failed fetch.
func WithErrorMessage(fn func(error) string) Option {
	return func(o *options) {
		if fn != nil {
			o.message = fn
		}
	}
}

// WithName names the view in logs.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns an inactive view over fetch and match.
func New[T any](fetch Fetcher[T], match Predicate[T], opts ...Option) *View[T] {
	o := options{
		message: func(error) string { return "Failed to load items" },
		name:    "list",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	done := make(chan struct{})
	close(done)

	return &View[T]{
		fetch:   fetch,
		match:   match,
		message: o.message,
		name:    o.name,
		logger:  o.logger,
		state:   State[T]{Items: []T{}, Query: Query{Status: StatusAll}},
		done:    done,
	}
}

// Activate resets the view and starts one fetch bound to ctx. A fetch still
// running from an earlier activation is cancelled and its result dropped.
func (v *View[T]) Activate(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopLocked()
	v.gen++

	fetchCtx, cancel := context.WithCancel(context.WithValue(ctx, generationKey{}, v.gen))
	done := make(chan struct{})
	v.cancel, v.done = cancel, done
	v.state = State[T]{Items: []T{}, Loading: true, Query: Query{Status: StatusAll}}

	go v.run(fetchCtx, v.gen, done)
}

// Deactivate cancels the in-flight fetch, if any. Its completion is ignored.
func (v *View[T]) Deactivate() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopLocked()
	v.gen++
	v.state.Loading = false
}

// Wait blocks until the current fetch, including a cancelled one, has returned.
func (v *View[T]) Wait(ctx context.Context) error {
	v.mu.Lock()
	done := v.done
	v.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh activates the view and waits for the fetch to settle. The returned
// error is the view's load error, if any.
func (v *View[T]) Refresh(ctx context.Context) error {
	v.Activate(ctx)
	if err := v.Wait(ctx); err != nil {
		return err
	}
	if st := v.State(); st.Err != nil {
		return st.Err
	}
	return nil
}

func (v *View[T]) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	items, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen {
		v.logger.Debug(ctx, "discarding stale list fetch", zap.String("view", v.name))
		return
	}
	v.stopLocked()
	v.state.Loading = false

	if err != nil {
		v.state.Items = []T{}
		v.state.Err = &LoadError{Message: v.message(err), Err: err}
		v.logger.Warn(ctx, "list fetch failed", zap.String("view", v.name), zap.Error(err))
		return
	}
	if items == nil {
		items = []T{}
	}
	v.state.Items = items
	if v.committed != nil {
		v.committed(gen)
	}
	v.logger.Debug(ctx, "list loaded", zap.String("view", v.name), zap.Int("count", len(items)))
}

func (v *View[T]) stopLocked() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// SetSearch sets the search term.
func (v *View[T]) SetSearch(term string) {
	v.mu.Lock()
	v.state.Query.Search = term
	v.mu.Unlock()
}

// SetStatus sets the status filter.
func (v *View[T]) SetStatus(s Status) {
	v.mu.Lock()
	v.state.Query.Status = s
	v.mu.Unlock()
}

// State returns a snapshot of the view.
func (v *View[T]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := v.state
	st.Items = append([]T{}, v.state.Items...)
	return st
}

// Filtered returns the items visible under the current query.
func (v *View[T]) Filtered() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Filter(v.state.Items, v.state.Query, v.match)
}

// Counts returns the total and visible item counts.
func (v *View[T]) Counts() Counts {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Counts{
		Total:   len(v.state.Items),
		Visible: len(Filter(v.state.Items, v.state.Query, v.match)),
	}
}

// Filter returns the items matching q, preserving order. It never returns nil.
func Filter[T any](items []T, q Query, match Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item, q) {
			out = append(out, item)
		}
	}
	return out
}

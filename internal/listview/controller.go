package listview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultDebounce is the pause after the last keystroke before a search runs.
const DefaultDebounce = 500 * time.Millisecond

// Query is what a list fetch is parameterised by.
type Query struct {
	Search   string `json:"search"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Result is one page as returned by the API. Total and TotalPages are
// optional.
type Result[T any] struct {
	Items      []T
	Total      *int64
	TotalPages *int
}

// Fetcher loads one page.
type Fetcher[T any] func(ctx context.Context, q Query) (Result[T], error)

// State is a snapshot of the controller as a view renders it.
type State[T any] struct {
	Query      Query      `json:"query"`
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
	Version    uint64     `json:"version"`
}

// Timer is the part of *time.Timer the controller needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type config struct {
	debounce  time.Duration
	initial   Query
	afterFunc AfterFunc
}

type Option func(*config)

func WithDebounce(d time.Duration) Option {
	return func(c *config) { c.debounce = d }
}

// WithQuery sets the parameters of the first fetch.
func WithQuery(q Query) Option {
	return func(c *config) { c.initial = q }
}

// WithAfterFunc replaces the timer source (tests drive debouncing by hand).
func WithAfterFunc(f AfterFunc) Option {
	return func(c *config) { c.afterFunc = f }
}

// Controller drives one paginated, searchable list. Search changes reset the
// page to 1 and are debounced; a newer fetch supersedes an older one, whose
// result is discarded.
type Controller[T any] struct {
	fetch Fetcher[T]
	cfg   config

	mu         sync.Mutex
	ctx        context.Context
	stop       context.CancelFunc
	query      Query
	items      []T
	total      *int64
	totalPages int
	loading    bool
	errMsg     string
	version    uint64
	generation uint64
	cancel     context.CancelFunc
	timer      Timer
	timerSeq   uint64
	closed     bool
	inflight   sync.WaitGroup

	subsMu sync.Mutex
	subs   map[int]chan State[T]
	nextID int
}

func NewController[T any](fetch Fetcher[T], opts ...Option) *Controller[T] {
	cfg := config{
		debounce:  DefaultDebounce,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.debounce <= 0 {
		cfg.debounce = DefaultDebounce
	}

	query := cfg.initial
	query.Search = strings.TrimSpace(query.Search)
	query.PageSize = NormalizePageSize(query.PageSize)
	if query.Page < 1 {
		query.Page = 1
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Controller[T]{
		fetch:      fetch,
		cfg:        cfg,
		ctx:        ctx,
		stop:       stop,
		query:      query,
		totalPages: 1,
		subs:       make(map[int]chan State[T]),
	}
}

// Load performs the initial fetch.
func (c *Controller[T]) Load() {
	c.mu.Lock()
	c.startFetchLocked()
	c.mu.Unlock()
	c.publish()
}

// SetSearch records a new search term. The page goes back to 1 at once; the
// fetch waits for the debounce window, and every keystroke restarts it.
func (c *Controller[T]) SetSearch(term string) {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	if c.closed || term == c.query.Search {
		c.mu.Unlock()
		return
	}
	c.query.Search = term
	c.query.Page = 1
	c.version++
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerSeq++
	seq := c.timerSeq
	c.timer = c.cfg.afterFunc(c.cfg.debounce, func() { c.debounced(seq) })
	c.mu.Unlock()
	c.publish()
}

// debounced runs when timer seq fires. A timer that already fired while a
// newer keystroke replaced it finds seq out of date and does nothing.
func (c *Controller[T]) debounced(seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.timerSeq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.startFetchLocked()
	c.mu.Unlock()
	c.publish()
}

// SetPage moves to page n (at least 1) and fetches it.
func (c *Controller[T]) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query.Page = n
	c.startFetchLocked()
	c.mu.Unlock()
	c.publish()
}

// SetPageSize changes the page size and goes back to page 1.
func (c *Controller[T]) SetPageSize(n int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query.PageSize = NormalizePageSize(n)
	c.query.Page = 1
	c.startFetchLocked()
	c.mu.Unlock()
	c.publish()
}

// Refresh refetches the current page, e.g. after the cache was invalidated.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.startFetchLocked()
	c.mu.Unlock()
	c.publish()
}

// startFetchLocked cancels any in-flight fetch and starts a new one for the
// current query. Callers hold c.mu.
func (c *Controller[T]) startFetchLocked() {
	if c.closed {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.generation++
	c.loading = true
	c.version++

	gen := c.generation
	q := c.query
	c.inflight.Add(1)
	go c.run(ctx, gen, q)
}

func (c *Controller[T]) run(ctx context.Context, gen uint64, q Query) {
	defer c.inflight.Done()

	res, err := c.fetch(ctx, q)

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.loading = false
	c.cancel = nil
	c.version++

	if err != nil {
		// Previous items stay on screen behind the error panel.
		c.errMsg = err.Error()
		c.mu.Unlock()
		log.Warn().Err(err).Str("search", q.Search).Int("page", q.Page).Msg("list fetch failed")
		c.publish()
		return
	}

	c.errMsg = ""
	c.items = res.Items
	c.total = res.Total
	c.totalPages = TotalPages(res.TotalPages, res.Total, q.PageSize)

	// The page can vanish under us, e.g. after deleting the last row of the
	// last page: move to the new last page.
	if c.query.Page > c.totalPages {
		log.Debug().Int("page", c.query.Page).Int("total_pages", c.totalPages).Msg("clamping list page")
		c.query.Page = c.totalPages
		c.startFetchLocked()
	}
	c.mu.Unlock()
	c.publish()
}

// State returns the current snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller[T]) stateLocked() State[T] {
	items := c.items
	if items == nil {
		items = []T{}
	}
	p := NewPagination(c.query.Page, c.query.PageSize, c.total, nil)
	if c.totalPages > 0 {
		p.TotalPages = c.totalPages
		p.HasNext = c.query.Page < c.totalPages
		p.Buttons = PageButtons(c.query.Page, c.totalPages)
	}
	return State[T]{
		Query:      c.query,
		Items:      items,
		Pagination: p,
		Loading:    c.loading,
		Error:      c.errMsg,
		Version:    c.version,
	}
}

// Subscribe delivers a snapshot after every state change. Slow subscribers
// only see the latest snapshot. The returned func unsubscribes.
func (c *Controller[T]) Subscribe() (<-chan State[T], func()) {
	ch := make(chan State[T], 1)

	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subsMu.Unlock()

	return ch, func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (c *Controller[T]) publish() {
	s := c.State()

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Wait blocks until no fetch is in flight.
func (c *Controller[T]) Wait() {
	c.inflight.Wait()
}

// Close cancels timers and fetches and closes every subscription.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.stop()
	c.mu.Unlock()

	c.subsMu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.subsMu.Unlock()
}

package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"metaladmin/internal/cache"
	"metaladmin/internal/config"
	"metaladmin/internal/listview"
	"metaladmin/internal/telemetry"
	"metaladmin/internal/upstream"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownView     = errors.New("unknown list view")
	ErrSessionNotFound = errors.New("view session not found")
)

// listView is a listview.Controller with its item type erased.
type listView interface {
	Load()
	SetSearch(term string)
	SetPage(n int)
	SetPageSize(n int)
	Refresh()
	Wait()
	Close()
	Snapshot() interface{}
	Subscribe() (<-chan interface{}, func())
}

type controllerView[T any] struct {
	*listview.Controller[T]
}

func (v controllerView[T]) Snapshot() interface{} {
	return v.State()
}

func (v controllerView[T]) Subscribe() (<-chan interface{}, func()) {
	states, cancel := v.Controller.Subscribe()
	out := make(chan interface{}, 1)
	go func() {
		defer close(out)
		for s := range states {
			select {
			case out <- s:
			default:
				// Drop the queued snapshot in favour of the newer one.
				select {
				case <-out:
				default:
				}
				out <- s
			}
		}
	}()
	return out, cancel
}

func newView[T any](fetch listview.Fetcher[T], token string, opts ...listview.Option) listView {
	c := listview.NewController(func(ctx context.Context, q listview.Query) (listview.Result[T], error) {
		return fetch(upstream.WithToken(ctx, token), q)
	}, opts...)
	return controllerView[T]{c}
}

// ViewSession is one open list screen of one browser tab.
type ViewSession struct {
	ID       string
	Resource string

	view     listView
	scope    string
	mu       sync.Mutex
	lastUsed time.Time
}

// State returns the current list state.
func (s *ViewSession) State() interface{} {
	return s.view.Snapshot()
}

// Subscribe streams state snapshots until the session closes or cancel is
// called.
func (s *ViewSession) Subscribe() (<-chan interface{}, func()) {
	return s.view.Subscribe()
}

// Wait blocks until the session has no fetch in flight.
func (s *ViewSession) Wait() {
	s.view.Wait()
}

func (s *ViewSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *ViewSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// ViewSessionService keeps server-side list views: debounced search, page
// state and refetch after cache invalidation, one per open screen.
type ViewSessionService struct {
	mu       sync.Mutex
	sessions map[string]*ViewSession
	builders map[string]func(token string, q listview.Query) listView
	ttl      time.Duration
	debounce time.Duration
	now      func() time.Time

	// afterFunc replaces the debounce timers of new views when set.
	afterFunc listview.AfterFunc
}

func (s *ViewSessionService) options(q listview.Query) []listview.Option {
	opts := []listview.Option{listview.WithQuery(q), listview.WithDebounce(s.debounce)}
	if s.afterFunc != nil {
		opts = append(opts, listview.WithAfterFunc(s.afterFunc))
	}
	return opts
}

func NewViewSessionService(products *ProductService, orders *OrderService, payments *PaymentService, c *cache.Cache, cfg config.ViewsConfig) *ViewSessionService {
	s := &ViewSessionService{
		sessions: make(map[string]*ViewSession),
		ttl:      cfg.SessionTTL,
		now:      time.Now,
		debounce: cfg.SearchDebounce,
	}
	s.builders = map[string]func(string, listview.Query) listView{
		ResourceProducts: func(token string, q listview.Query) listView { return newView(products.Fetch, token, s.options(q)...) },
		ResourceOrders:   func(token string, q listview.Query) listView { return newView(orders.Fetch, token, s.options(q)...) },
		ResourcePayments: func(token string, q listview.Query) listView { return newView(payments.Fetch, token, s.options(q)...) },
	}
	if s.ttl <= 0 {
		s.ttl = 30 * time.Minute
	}
	c.OnInvalidate(s.refresh)
	return s
}

func scopeOf(ctx context.Context) string {
	return scopedKey(ctx, "", nil).Params.Get("scope")
}

// Open starts a view of resource and loads its first page.
func (s *ViewSessionService) Open(ctx context.Context, resource string, q listview.Query) (*ViewSession, error) {
	build, ok := s.builders[resource]
	if !ok {
		return nil, ErrUnknownView
	}

	view := build(upstream.TokenFrom(ctx), normalizeQuery(q))
	view.Load()

	sess := &ViewSession{
		ID:       uuid.NewString(),
		Resource: resource,
		view:     view,
		scope:    scopeOf(ctx),
		lastUsed: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	telemetry.ViewSessions.Set(float64(n))
	log.Debug().Str("session_id", sess.ID).Str("resource", resource).Msg("View session opened")
	return sess, nil
}

// Get returns the session id opened with the caller's credentials.
func (s *ViewSessionService) Get(ctx context.Context, id string) (*ViewSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || sess.scope != scopeOf(ctx) {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

func (s *ViewSessionService) Search(ctx context.Context, id, term string) (*ViewSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.view.SetSearch(term)
	return sess, nil
}

// Page moves to page and, when pageSize is set, changes the page size, which
// goes back to page 1.
func (s *ViewSessionService) Page(ctx context.Context, id string, page, pageSize int) (*ViewSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if pageSize > 0 {
		sess.view.SetPageSize(pageSize)
		return sess, nil
	}
	sess.view.SetPage(page)
	return sess, nil
}

func (s *ViewSessionService) Refresh(ctx context.Context, id string) (*ViewSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.view.Refresh()
	return sess, nil
}

func (s *ViewSessionService) Close(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	s.remove(sess)
	return nil
}

func (s *ViewSessionService) remove(sess *ViewSession) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	n := len(s.sessions)
	s.mu.Unlock()

	sess.view.Close()
	telemetry.ViewSessions.Set(float64(n))
}

// refresh refetches every open view of an invalidated resource.
func (s *ViewSessionService) refresh(resource string) {
	s.mu.Lock()
	var views []listView
	for _, sess := range s.sessions {
		if sess.Resource == resource {
			views = append(views, sess.view)
		}
	}
	s.mu.Unlock()

	for _, v := range views {
		v.Refresh()
	}
}

// Sweep closes sessions idle for longer than the session ttl.
func (s *ViewSessionService) Sweep(now time.Time) int {
	s.mu.Lock()
	var idle []*ViewSession
	for _, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > s.ttl {
			idle = append(idle, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		s.remove(sess)
	}
	return len(idle)
}

func (s *ViewSessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Start sweeps idle sessions every interval until ctx is done, then closes
// the rest.
func (s *ViewSessionService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Sweep(s.now().Add(s.ttl + time.Nanosecond))
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				log.Debug().Int("closed", n).Msg("Idle view sessions closed")
			}
		}
	}
}

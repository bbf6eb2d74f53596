// README: Tracker runs route fetches per order and keeps the latest result.
package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pharmago/internal/modules/geo"
	"pharmago/internal/types"
)

// Cache is the route cache the tracker reads through. A nil Cache disables
// caching.
type Cache interface {
	Get(ctx context.Context, provider string, from, to types.Point) (*Route, bool, error)
	Set(ctx context.Context, from, to types.Point, r *Route) error
}

type Options struct {
	Provider RouteProvider
	Cache    Cache
	Fetches  *prometheus.CounterVec
	Log      logrus.FieldLogger
	// Timeout bounds one background fetch.
	Timeout time.Duration
	// MaxConcurrent bounds Routes.
	MaxConcurrent int
	// ResultTTL is how long a finished route stays readable through Result.
	ResultTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type task struct {
	cancel context.CancelFunc
}

type result struct {
	route *Route
	at    time.Time
}

// Tracker owns one cancellable fetch per order. Results that arrive after the
// order was forgotten or re-watched are dropped, and finished results expire
// after ResultTTL.
type Tracker struct {
	provider RouteProvider
	cache    Cache
	fetches  *prometheus.CounterVec
	log      logrus.FieldLogger
	timeout  time.Duration
	limit    int
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	tasks   map[types.ID]*task
	results map[types.ID]result
	wg      sync.WaitGroup
}

func NewTracker(o Options) *Tracker {
	log := o.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 4
	}
	if o.ResultTTL <= 0 {
		o.ResultTTL = 5 * time.Minute
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Tracker{
		provider: o.Provider,
		cache:    o.Cache,
		fetches:  o.Fetches,
		log:      log.WithField("module", "tracking"),
		timeout:  o.Timeout,
		limit:    o.MaxConcurrent,
		ttl:      o.ResultTTL,
		now:      o.Now,
		tasks:    make(map[types.ID]*task),
		results:  make(map[types.ID]result),
	}
}

// Route returns the route between two points, from cache when possible.
func (t *Tracker) Route(ctx context.Context, from, to types.Point) (*Route, error) {
	if !geo.Valid(from) || !geo.Valid(to) {
		return nil, ErrInvalidPoint
	}
	if t.cache != nil {
		if r, ok, err := t.cache.Get(ctx, t.provider.Name(), from, to); err == nil && ok {
			return r, nil
		}
	}

	r, err := t.provider.Route(ctx, from, to)
	t.observe(err)
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		if err := t.cache.Set(ctx, from, to, r); err != nil {
			t.log.WithError(err).Warn("caching route failed")
		}
	}
	return r, nil
}

// Watch starts fetching the route for an order in the background, replacing
// any fetch already running for it.
func (t *Tracker) Watch(orderID types.ID, from, to types.Point) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	tk := &task{cancel: cancel}

	t.mu.Lock()
	if old, ok := t.tasks[orderID]; ok {
		old.cancel()
	}
	t.tasks[orderID] = tk
	delete(t.results, orderID)
	t.sweepLocked()
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()
		r, err := t.Route(ctx, from, to)

		t.mu.Lock()
		defer t.mu.Unlock()
		if t.tasks[orderID] != tk {
			return
		}
		delete(t.tasks, orderID)
		if err != nil {
			t.log.WithError(err).WithField("order_id", orderID).Warn("route fetch failed")
			return
		}
		t.results[orderID] = result{route: r, at: t.now()}
	}()
}

// Forget cancels the order's fetch and drops its result.
func (t *Tracker) Forget(orderID types.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk, ok := t.tasks[orderID]; ok {
		tk.cancel()
		delete(t.tasks, orderID)
	}
	delete(t.results, orderID)
}

// Result returns the last finished route for the order if it has not expired.
func (t *Tracker) Result(orderID types.ID) (*Route, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res, ok := t.results[orderID]
	if !ok {
		return nil, false
	}
	if t.expired(res) {
		delete(t.results, orderID)
		return nil, false
	}
	return res.route, true
}

// Len reports how many finished results are held.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.results)
}

func (t *Tracker) expired(res result) bool {
	return t.now().Sub(res.at) >= t.ttl
}

func (t *Tracker) sweepLocked() {
	for id, res := range t.results {
		if t.expired(res) {
			delete(t.results, id)
		}
	}
}

// Pending reports whether a fetch for the order is still running.
func (t *Tracker) Pending(orderID types.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tasks[orderID]
	return ok
}

// Routes resolves every leg concurrently. A failed leg yields a nil entry; the
// call itself only fails when ctx is done.
func (t *Tracker) Routes(ctx context.Context, legs []Leg) ([]*Route, error) {
	out := make([]*Route, len(legs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.limit)
	for i, leg := range legs {
		i, leg := i, leg
		g.Go(func() error {
			r, err := t.Route(gctx, leg.From, leg.To)
			if err != nil {
				t.log.WithError(err).Debug("route unavailable")
				return nil
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Wait blocks until every background fetch has returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) observe(err error) {
	if t.fetches == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.fetches.WithLabelValues(t.provider.Name(), outcome).Inc()
}

package tracking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmago/internal/types"
)

type fakeProvider struct {
	calls atomic.Int32
	err   error
	// gate, when set, blocks Route until it is closed or ctx ends.
	gate chan struct{}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Route(ctx context.Context, from, to types.Point) (*Route, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Route{Path: []types.Point{from, to}, DistanceKm: 1, Provider: "fake"}, nil
}

type memCache struct {
	mu sync.Mutex
	m  map[string]*Route
}

func (c *memCache) Get(ctx context.Context, provider string, from, to types.Point) (*Route, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.m[routeKey(provider, from, to)]
	return r, ok, nil
}

func (c *memCache) Set(ctx context.Context, from, to types.Point, r *Route) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[routeKey(r.Provider, from, to)] = r
	return nil
}

var (
	pharmacyPoint = types.Point{Lat: 14.5, Lng: 121.0}
	homePoint     = types.Point{Lat: 14.55, Lng: 121.05}
)

func newTestTracker(p RouteProvider, cache Cache) (*Tracker, *prometheus.CounterVec) {
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "fetches"}, []string{"provider", "outcome"})
	log, _ := logtest.NewNullLogger()
	return NewTracker(Options{Provider: p, Cache: cache, Fetches: fetches, Log: log, Timeout: time.Second, MaxConcurrent: 2}), fetches
}

func TestTrackerRouteUsesCache(t *testing.T) {
	p := &fakeProvider{}
	tr, fetches := newTestTracker(p, &memCache{m: map[string]*Route{}})

	for i := 0; i < 3; i++ {
		r, err := tr.Route(context.Background(), pharmacyPoint, homePoint)
		require.NoError(t, err)
		assert.Equal(t, 1.0, r.DistanceKm)
	}
	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(fetches.WithLabelValues("fake", "ok")))
}

func TestTrackerRouteRejectsInvalidPoints(t *testing.T) {
	p := &fakeProvider{}
	tr, _ := newTestTracker(p, nil)

	_, err := tr.Route(context.Background(), types.Point{Lat: 200}, homePoint)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Zero(t, p.calls.Load())
}

func TestTrackerWatchStoresResult(t *testing.T) {
	tr, _ := newTestTracker(&fakeProvider{}, nil)

	tr.Watch("o-1", pharmacyPoint, homePoint)
	tr.Wait()

	r, ok := tr.Result("o-1")
	require.True(t, ok)
	assert.Equal(t, []types.Point{pharmacyPoint, homePoint}, r.Path)
	assert.False(t, tr.Pending("o-1"))
}

func TestTrackerForgetDropsLateResult(t *testing.T) {
	p := &fakeProvider{gate: make(chan struct{})}
	tr, _ := newTestTracker(p, nil)

	tr.Watch("o-1", pharmacyPoint, homePoint)
	assert.True(t, tr.Pending("o-1"))
	tr.Forget("o-1")
	close(p.gate)
	tr.Wait()

	_, ok := tr.Result("o-1")
	assert.False(t, ok)
	assert.False(t, tr.Pending("o-1"))
}

func TestTrackerWatchReplacesRunningTask(t *testing.T) {
	p := &fakeProvider{gate: make(chan struct{})}
	tr, _ := newTestTracker(p, nil)

	other := types.Point{Lat: 14.6, Lng: 121.1}
	tr.Watch("o-1", pharmacyPoint, homePoint)
	tr.Watch("o-1", pharmacyPoint, other)
	close(p.gate)
	tr.Wait()

	r, ok := tr.Result("o-1")
	require.True(t, ok)
	assert.Equal(t, other, r.Path[1])
}

func TestTrackerWatchFailureLeavesNoResult(t *testing.T) {
	tr, fetches := newTestTracker(&fakeProvider{err: errors.New("boom")}, nil)

	tr.Watch("o-1", pharmacyPoint, homePoint)
	tr.Wait()

	_, ok := tr.Result("o-1")
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(fetches.WithLabelValues("fake", "error")))
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClockedTracker(clock *fakeClock, ttl time.Duration) *Tracker {
	log, _ := logtest.NewNullLogger()
	return NewTracker(Options{Provider: &fakeProvider{}, Log: log, Timeout: time.Second, ResultTTL: ttl, Now: clock.Now})
}

func TestTrackerResultExpires(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)}
	tr := newClockedTracker(clock, time.Minute)

	tr.Watch("o-1", pharmacyPoint, homePoint)
	tr.Wait()

	clock.Advance(59 * time.Second)
	_, ok := tr.Result("o-1")
	require.True(t, ok)

	clock.Advance(time.Second)
	_, ok = tr.Result("o-1")
	assert.False(t, ok)
	assert.Zero(t, tr.Len())
}

func TestTrackerWatchSweepsExpiredResults(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)}
	tr := newClockedTracker(clock, time.Minute)

	// delivered elsewhere, never read or forgotten here
	tr.Watch("o-1", pharmacyPoint, homePoint)
	tr.Watch("o-2", pharmacyPoint, homePoint)
	tr.Wait()
	require.Equal(t, 2, tr.Len())

	clock.Advance(2 * time.Minute)
	tr.Watch("o-3", pharmacyPoint, homePoint)
	tr.Wait()

	assert.Equal(t, 1, tr.Len())
	_, ok := tr.Result("o-3")
	assert.True(t, ok)
}

func TestTrackerRoutesDegradesPerLeg(t *testing.T) {
	tr, _ := newTestTracker(&fakeProvider{}, nil)

	legs := []Leg{
		{From: pharmacyPoint, To: homePoint},
		{From: types.Point{Lat: 100}, To: homePoint},
		{From: homePoint, To: pharmacyPoint},
	}
	routes, err := tr.Routes(context.Background(), legs)
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.NotNil(t, routes[0])
	assert.Nil(t, routes[1])
	assert.NotNil(t, routes[2])
}

// README: Redis cache for computed routes.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pharmago/internal/types"
)

type RouteCache struct {
	redis redis.Cmdable
	ttl   time.Duration
}

func NewRouteCache(rdb redis.Cmdable, ttl time.Duration) *RouteCache {
	return &RouteCache{redis: rdb, ttl: ttl}
}

// Coordinates are rounded to ~1 m so nearby lookups share an entry.
func routeKey(provider string, from, to types.Point) string {
	return fmt.Sprintf("route:%s:%.5f,%.5f:%.5f,%.5f", provider, from.Lat, from.Lng, to.Lat, to.Lng)
}

func (c *RouteCache) Get(ctx context.Context, provider string, from, to types.Point) (*Route, bool, error) {
	raw, err := c.redis.Get(ctx, routeKey(provider, from, to)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, types.Remote("load route", err)
	}
	var r Route
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *RouteCache) Set(ctx context.Context, from, to types.Point, r *Route) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return types.Remote("save route", c.redis.Set(ctx, routeKey(r.Provider, from, to), raw, c.ttl).Err())
}

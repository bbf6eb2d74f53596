// README: Route model and the provider contracts used for order tracking.
package tracking

import (
	"context"
	"fmt"
	"time"

	"pharmago/internal/types"
)

var (
	ErrNoRoute      = fmt.Errorf("%w: no route between the given points", types.ErrNotFound)
	ErrInvalidPoint = types.Validation("route endpoints must be valid coordinates")
)

// Route is a driving path from the pharmacy to the delivery point.
type Route struct {
	Path       []types.Point `json:"path"`
	DistanceKm float64       `json:"distance_km"`
	Duration   time.Duration `json:"duration"`
	Provider   string        `json:"provider"`
}

// RouteProvider computes a driving route between two points.
type RouteProvider interface {
	Name() string
	Route(ctx context.Context, from, to types.Point) (*Route, error)
}

// AddressResolver turns a coordinate into a human readable address.
type AddressResolver interface {
	Address(ctx context.Context, p types.Point) (string, error)
}

// Leg is one pharmacy to delivery pair to resolve.
type Leg struct {
	From types.Point
	To   types.Point
}

// README: Google Maps directions and reverse geocoding.
package tracking

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"pharmago/internal/types"
)

type Google struct {
	client *maps.Client
	region string
}

// NewGoogle creates a Google Maps backed provider with the given API key.
func NewGoogle(apiKey string) (*Google, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Google{client: client, region: "ph"}, nil
}

func (g *Google) Name() string { return "google" }

func (g *Google) Route(ctx context.Context, from, to types.Point) (*Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        maps.TravelModeDriving,
		Region:      g.region,
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		return nil, types.Remote("google directions", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, ErrNoRoute
	}

	decoded, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, types.Remote("google directions", fmt.Errorf("decoding polyline: %w", err))
	}
	path := make([]types.Point, len(decoded))
	for i, ll := range decoded {
		path[i] = types.Point{Lat: ll.Lat, Lng: ll.Lng}
	}

	var meters int
	var duration time.Duration
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
	}
	return &Route{
		Path:       path,
		DistanceKm: float64(meters) / 1000,
		Duration:   duration,
		Provider:   g.Name(),
	}, nil
}

// Address returns the first formatted address Google knows for p.
func (g *Google) Address(ctx context.Context, p types.Point) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
	})
	if err != nil {
		return "", types.Remote("google reverse geocode", err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

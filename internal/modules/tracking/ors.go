// README: OpenRouteService directions client.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"pharmago/internal/types"
)

const orsDirectionsPath = "/v2/directions/driving-car/geojson"

type ORS struct {
	client *resty.Client
}

func NewORS(baseURL, apiKey string, timeout time.Duration) *ORS {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Authorization": apiKey,
			"Accept":        "application/json, application/geo+json",
			"Content-Type":  "application/json",
		})
	return &ORS{client: client}
}

func (o *ORS) Name() string { return "ors" }

type orsRequest struct {
	// [lng, lat] pairs.
	Coordinates [][2]float64 `json:"coordinates"`
}

type orsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Segments []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"segments"`
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

func (o *ORS) Route(ctx context.Context, from, to types.Point) (*Route, error) {
	body := orsRequest{Coordinates: [][2]float64{{from.Lng, from.Lat}, {to.Lng, to.Lat}}}
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(orsDirectionsPath)
	if err != nil {
		return nil, types.Remote("ors directions", err)
	}
	if resp.IsError() {
		return nil, types.Remote("ors directions", fmt.Errorf("status %d: %s", resp.StatusCode(), string(resp.Body())))
	}

	var out orsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, types.Remote("ors directions", fmt.Errorf("decoding response: %w", err))
	}
	if len(out.Features) == 0 || len(out.Features[0].Geometry.Coordinates) == 0 {
		return nil, ErrNoRoute
	}

	f := out.Features[0]
	path := make([]types.Point, 0, len(f.Geometry.Coordinates))
	for _, c := range f.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		path = append(path, types.Point{Lat: c[1], Lng: c[0]})
	}

	meters, seconds := f.Properties.Summary.Distance, f.Properties.Summary.Duration
	if len(f.Properties.Segments) > 0 {
		meters, seconds = 0, 0
		for _, s := range f.Properties.Segments {
			meters += s.Distance
			seconds += s.Duration
		}
	}
	return &Route{
		Path:       path,
		DistanceKm: meters / 1000,
		Duration:   time.Duration(seconds * float64(time.Second)),
		Provider:   o.Name(),
	}, nil
}

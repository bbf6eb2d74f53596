// README: Driver live positions kept in a Redis GEO set.
package tracking

import (
	"context"

	"github.com/redis/go-redis/v9"

	"pharmago/internal/modules/geo"
	"pharmago/internal/types"
)

const driverGeoKey = "tracking:drivers"

type PositionStore struct {
	redis redis.Cmdable
}

func NewPositionStore(rdb redis.Cmdable) *PositionStore {
	return &PositionStore{redis: rdb}
}

func (s *PositionStore) UpdateDriverPosition(ctx context.Context, driverID types.ID, p types.Point) error {
	if driverID == "" {
		return types.Validation("driver id is required")
	}
	if !geo.Valid(p) {
		return ErrInvalidPoint
	}
	err := s.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(driverID),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
	return types.Remote("update driver position", err)
}

// DriverPosition reports the last known position; ok is false when the driver
// never reported one.
func (s *PositionStore) DriverPosition(ctx context.Context, driverID types.ID) (types.Point, bool, error) {
	res, err := s.redis.GeoPos(ctx, driverGeoKey, string(driverID)).Result()
	if err != nil {
		return types.Point{}, false, types.Remote("load driver position", err)
	}
	if len(res) == 0 || res[0] == nil {
		return types.Point{}, false, nil
	}
	return types.Point{Lat: res[0].Latitude, Lng: res[0].Longitude}, true, nil
}

func (s *PositionStore) RemoveDriver(ctx context.Context, driverID types.ID) error {
	return types.Remote("remove driver position", s.redis.ZRem(ctx, driverGeoKey, string(driverID)).Err())
}

// README: Cart store backed by Redis JSON documents, one key per patient.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pharmago/internal/types"
)

const cartKeyPrefix = "cart:%s"

type RedisStore struct {
	redis redis.Cmdable
	ttl   time.Duration
}

func NewRedisStore(redis redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: redis, ttl: ttl}
}

// Load returns the patient's cart; a missing key is an empty cart.
func (s *RedisStore) Load(ctx context.Context, patientID types.ID) (*Cart, error) {
	raw, err := s.redis.Get(ctx, cartKey(patientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, types.Remote("load cart", err)
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decoding cart for %s: %w", patientID, err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, patientID types.ID, c *Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, patientID)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return types.Remote("save cart", s.redis.Set(ctx, cartKey(patientID), raw, s.ttl).Err())
}

func (s *RedisStore) Delete(ctx context.Context, patientID types.ID) error {
	return types.Remote("delete cart", s.redis.Del(ctx, cartKey(patientID)).Err())
}

func cartKey(patientID types.ID) string {
	return fmt.Sprintf(cartKeyPrefix, string(patientID))
}

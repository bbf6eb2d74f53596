// README: Cart service loads, mutates and saves a patient's cart.
package cart

import (
	"context"

	"pharmago/internal/types"
)

type Store interface {
	Load(ctx context.Context, patientID types.ID) (*Cart, error)
	Save(ctx context.Context, patientID types.ID, c *Cart) error
	Delete(ctx context.Context, patientID types.ID) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, patientID types.ID) (*Cart, error) {
	return s.store.Load(ctx, patientID)
}

func (s *Service) Add(ctx context.Context, patientID types.ID, it Item) (*Cart, error) {
	return s.mutate(ctx, patientID, func(c *Cart) error { return c.Add(it) })
}

func (s *Service) UpdateQuantity(ctx context.Context, patientID types.ID, name string, delta int) (*Cart, error) {
	return s.mutate(ctx, patientID, func(c *Cart) error { return c.UpdateQuantity(name, delta) })
}

func (s *Service) Remove(ctx context.Context, patientID types.ID, name string) (*Cart, error) {
	return s.mutate(ctx, patientID, func(c *Cart) error { return c.Remove(name) })
}

// Clear empties the cart after a successful checkout.
func (s *Service) Clear(ctx context.Context, patientID types.ID) error {
	return s.store.Delete(ctx, patientID)
}

func (s *Service) mutate(ctx context.Context, patientID types.ID, fn func(*Cart) error) (*Cart, error) {
	c, err := s.store.Load(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, patientID, c); err != nil {
		return nil, err
	}
	return c, nil
}

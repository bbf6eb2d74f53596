// README: Pharmacy service: nearest-first ranking, catalogue reads and pharmacist inventory.
package pharmacy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pharmago/internal/modules/geo"
	"pharmago/internal/types"
)

var (
	ErrPharmacyNotFound = fmt.Errorf("%w: pharmacy not found", types.ErrNotFound)
	ErrMedicineNotFound = fmt.Errorf("%w: medicine not found", types.ErrNotFound)
	ErrInvalidOrigin    = types.Validation("origin must be a valid coordinate")
	ErrInvalidMedicine  = types.Validation("medicine name is required and price must not be negative")
	ErrNotYourPharmacy  = types.Forbidden("pharmacist does not belong to this pharmacy")
)

type Repository interface {
	ListPharmacies(ctx context.Context) ([]Pharmacy, error)
	GetPharmacy(ctx context.Context, id types.ID) (*Pharmacy, error)
	PharmaciesWithMedicine(ctx context.Context, query string) ([]Pharmacy, error)
	ListMedicines(ctx context.Context, pharmacyID types.ID) ([]Medicine, error)
	GetMedicine(ctx context.Context, id types.ID) (*Medicine, error)
	CreateMedicine(ctx context.Context, m *Medicine) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Nearest(ctx context.Context, origin types.Point) ([]Ranked, error) {
	if !geo.Valid(origin) {
		return nil, ErrInvalidOrigin
	}
	all, err := s.repo.ListPharmacies(ctx)
	if err != nil {
		return nil, err
	}
	return RankNearest(origin, all), nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Pharmacy, error) {
	return s.repo.GetPharmacy(ctx, id)
}

// Medicines lists a pharmacy's catalogue, newest first.
func (s *Service) Medicines(ctx context.Context, pharmacyID types.ID) ([]Medicine, error) {
	if _, err := s.repo.GetPharmacy(ctx, pharmacyID); err != nil {
		return nil, err
	}
	return s.repo.ListMedicines(ctx, pharmacyID)
}

func (s *Service) Medicine(ctx context.Context, id types.ID) (*Medicine, error) {
	return s.repo.GetMedicine(ctx, id)
}

func (s *Service) AddMedicine(ctx context.Context, cmd AddMedicineCommand) (*Medicine, error) {
	if cmd.ActorPharmacyID == "" || cmd.ActorPharmacyID != cmd.PharmacyID {
		return nil, ErrNotYourPharmacy
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" || cmd.Price.IsNegative() {
		return nil, ErrInvalidMedicine
	}
	if _, err := s.repo.GetPharmacy(ctx, cmd.PharmacyID); err != nil {
		return nil, err
	}
	m := &Medicine{
		ID:          types.ID(uuid.NewString()),
		PharmacyID:  cmd.PharmacyID,
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		Price:       cmd.Price,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateMedicine(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// SearchByMedicine ranks the pharmacies that stock a medicine matching query.
func (s *Service) SearchByMedicine(ctx context.Context, origin types.Point, query string) ([]Ranked, error) {
	if !geo.Valid(origin) {
		return nil, ErrInvalidOrigin
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []Ranked{}, nil
	}
	found, err := s.repo.PharmaciesWithMedicine(ctx, query)
	if err != nil {
		return nil, err
	}
	return RankNearest(origin, found), nil
}

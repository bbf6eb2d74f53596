// README: Pharmacy and medicine store backed by PostgreSQL.
package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pharmago/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const pharmacyColumns = `id, name, address, logo_url, latitude, longitude`

func (s *Store) ListPharmacies(ctx context.Context) ([]Pharmacy, error) {
	rows, err := s.db.Query(ctx, `SELECT `+pharmacyColumns+` FROM pharmacies ORDER BY name`)
	if err != nil {
		return nil, types.Remote("list pharmacies", err)
	}
	defer rows.Close()
	return scanPharmacies(rows)
}

func (s *Store) GetPharmacy(ctx context.Context, id types.ID) (*Pharmacy, error) {
	row := s.db.QueryRow(ctx, `SELECT `+pharmacyColumns+` FROM pharmacies WHERE id = $1`, string(id))
	p, err := scanPharmacy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPharmacyNotFound
	}
	if err != nil {
		return nil, types.Remote("get pharmacy", err)
	}
	return p, nil
}

// PharmaciesWithMedicine returns pharmacies stocking a medicine whose name
// contains query, ignoring case.
func (s *Store) PharmaciesWithMedicine(ctx context.Context, query string) ([]Pharmacy, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT p.id, p.name, p.address, p.logo_url, p.latitude, p.longitude
		FROM pharmacies p
		JOIN medicines m ON m.pharmacy_id = p.id
		WHERE m.name ILIKE '%' || $1 || '%'
		ORDER BY p.name`, query)
	if err != nil {
		return nil, types.Remote("search medicines", err)
	}
	defer rows.Close()
	return scanPharmacies(rows)
}

func (s *Store) ListMedicines(ctx context.Context, pharmacyID types.ID) ([]Medicine, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, pharmacy_id, name, description, price::text, created_at
		FROM medicines
		WHERE pharmacy_id = $1
		ORDER BY created_at DESC`, string(pharmacyID))
	if err != nil {
		return nil, types.Remote("list medicines", err)
	}
	defer rows.Close()

	out := []Medicine{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, types.Remote("list medicines", rows.Err())
}

func (s *Store) GetMedicine(ctx context.Context, id types.ID) (*Medicine, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, pharmacy_id, name, description, price::text, created_at
		FROM medicines WHERE id = $1`, string(id))
	m, err := scanMedicine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMedicineNotFound
	}
	return m, err
}

func (s *Store) CreateMedicine(ctx context.Context, m *Medicine) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO medicines (id, pharmacy_id, name, description, price, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6)`,
		string(m.ID),
		string(m.PharmacyID),
		m.Name,
		m.Description,
		m.Price.String(),
		m.CreatedAt,
	)
	return types.Remote("create medicine", err)
}

func scanPharmacies(rows pgx.Rows) ([]Pharmacy, error) {
	out := []Pharmacy{}
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, types.Remote("scan pharmacy", err)
		}
		out = append(out, *p)
	}
	return out, types.Remote("scan pharmacy", rows.Err())
}

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	var address, logo *string
	var lat, lng *float64
	if err := row.Scan(&p.ID, &p.Name, &address, &logo, &lat, &lng); err != nil {
		return nil, err
	}
	if address != nil {
		p.Address = *address
	}
	if logo != nil {
		p.LogoURL = *logo
	}
	if lat != nil && lng != nil {
		p.Location = &types.Point{Lat: *lat, Lng: *lng}
	}
	return &p, nil
}

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	var description *string
	var price string
	if err := row.Scan(&m.ID, &m.PharmacyID, &m.Name, &description, &price, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, types.Remote("scan medicine", err)
	}
	if description != nil {
		m.Description = *description
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("medicine %s price %q: %w", m.ID, price, err)
	}
	m.Price = d
	return &m, nil
}

// README: Profile and doctor-patient link store backed by PostgreSQL.
package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmago/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Upsert(ctx context.Context, p *Profile) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO profiles (id, role, full_name, age, pharmacy_id, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		ON CONFLICT (id) DO UPDATE
		SET role = EXCLUDED.role,
			full_name = EXCLUDED.full_name,
			age = EXCLUDED.age,
			pharmacy_id = EXCLUDED.pharmacy_id`,
		string(p.ID), string(p.Role), p.FullName, p.Age, string(p.PharmacyID), p.CreatedAt,
	)
	return types.Remote("upsert profile", err)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, role, full_name, age, COALESCE(pharmacy_id, ''), created_at
		FROM profiles WHERE id = $1`, string(id))
	var p Profile
	err := row.Scan(&p.ID, &p.Role, &p.FullName, &p.Age, &p.PharmacyID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, types.Remote("get profile", err)
	}
	return &p, nil
}

// Link records doctor -> patient; linking twice is not an error.
func (s *Store) Link(ctx context.Context, doctorID, patientID types.ID) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO doctor_patients (doctor_id, patient_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, string(doctorID), string(patientID))
	return types.Remote("link patient", err)
}

func (s *Store) IsLinked(ctx context.Context, doctorID, patientID types.ID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doctor_patients WHERE doctor_id = $1 AND patient_id = $2
		)`, string(doctorID), string(patientID)).Scan(&exists)
	if err != nil {
		return false, types.Remote("check patient link", err)
	}
	return exists, nil
}

func (s *Store) Patients(ctx context.Context, doctorID types.ID) ([]Profile, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.role, p.full_name, p.age, COALESCE(p.pharmacy_id, ''), p.created_at
		FROM doctor_patients dp
		JOIN profiles p ON p.id = dp.patient_id
		WHERE dp.doctor_id = $1
		ORDER BY p.full_name`, string(doctorID))
	if err != nil {
		return nil, types.Remote("list patients", err)
	}
	defer rows.Close()

	out := []Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Role, &p.FullName, &p.Age, &p.PharmacyID, &p.CreatedAt); err != nil {
			return nil, types.Remote("scan patient", err)
		}
		out = append(out, p)
	}
	return out, types.Remote("list patients", rows.Err())
}

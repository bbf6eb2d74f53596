// README: Prescription store backed by PostgreSQL; lines are kept as JSONB.
package prescription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

const prescriptionColumns = `id, doctor_id, patient_id, lines, document_url, created_at`

func (s *Store) Create(ctx context.Context, p *Prescription) error {
	lines, err := json.Marshal(p.Lines)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO prescriptions (id, doctor_id, patient_id, lines, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(p.ID), string(p.DoctorID), string(p.PatientID), lines, p.CreatedAt,
	)
	return types.Remote("create prescription", err)
}

// SetDocumentURL records the uploaded document. It only succeeds once per
// prescription.
func (s *Store) SetDocumentURL(ctx context.Context, id types.ID, url string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE prescriptions SET document_url = $1
		WHERE id = $2 AND document_url IS NULL`, url, string(id))
	if err != nil {
		return false, types.Remote("set prescription document", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Prescription, error) {
	row := s.db.QueryRow(ctx, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE id = $1`, string(id))
	return scanOne(row)
}

func (s *Store) LatestForPatient(ctx context.Context, patientID types.ID) (*Prescription, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+prescriptionColumns+` FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, string(patientID))
	return scanOne(row)
}

func (s *Store) ListForPatient(ctx context.Context, patientID types.ID) ([]Prescription, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+prescriptionColumns+` FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC`, string(patientID))
	if err != nil {
		return nil, types.Remote("list prescriptions", err)
	}
	defer rows.Close()

	out := []Prescription{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, types.Remote("list prescriptions", rows.Err())
}

func scanOne(row pgx.Row) (*Prescription, error) {
	p, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func scan(row pgx.Row) (*Prescription, error) {
	var p Prescription
	var lines []byte
	if err := row.Scan(&p.ID, &p.DoctorID, &p.PatientID, &lines, &p.DocumentURL, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, types.Remote("scan prescription", err)
	}
	if err := json.Unmarshal(lines, &p.Lines); err != nil {
		return nil, fmt.Errorf("prescription %s lines: %w", p.ID, err)
	}
	return &p, nil
}

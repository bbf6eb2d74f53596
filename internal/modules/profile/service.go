// README: Profile service: registration, role dispatch, patient QR and doctor linking.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pharmago/internal/types"
)

var (
	ErrNotFound         = fmt.Errorf("%w: profile not found", types.ErrNotFound)
	ErrPatientNotFound  = fmt.Errorf("%w: patient not found or invalid QR code", types.ErrNotFound)
	ErrMissingID        = types.Validation("profile id is required")
	ErrInvalidQR        = types.Validation("QR payload is not a patient id")
	ErrInvalidRole      = types.Validation("role must be patient, doctor, pharmacist or driver")
	ErrPharmacyRequired = types.Validation("pharmacists must name their pharmacy")
	ErrInvalidAge       = types.Validation("age must be between 0 and 150")
	ErrNotPatient       = types.Validation("only patients have a QR code")
	ErrDoctorOnly       = types.Forbidden("only doctors can link patients")
)

type Repository interface {
	Upsert(ctx context.Context, p *Profile) error
	Get(ctx context.Context, id types.ID) (*Profile, error)
	Link(ctx context.Context, doctorID, patientID types.ID) error
	IsLinked(ctx context.Context, doctorID, patientID types.ID) (bool, error)
	Patients(ctx context.Context, doctorID types.ID) ([]Profile, error)
}

type Service struct {
	repo Repository
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewService(repo Repository, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{repo: repo, log: log.WithField("module", "profile"), now: time.Now}
}

// Register creates or replaces the caller's profile.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Profile, error) {
	if cmd.ID == "" {
		return nil, ErrMissingID
	}
	if !cmd.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if cmd.Age < 0 || cmd.Age > 150 {
		return nil, ErrInvalidAge
	}
	p := &Profile{
		ID:        cmd.ID,
		Role:      cmd.Role,
		FullName:  strings.TrimSpace(cmd.FullName),
		Age:       cmd.Age,
		CreatedAt: s.now().UTC(),
	}
	if cmd.Role == types.RolePharmacist {
		if cmd.PharmacyID == "" {
			return nil, ErrPharmacyRequired
		}
		p.PharmacyID = cmd.PharmacyID
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"profile_id": p.ID, "role": p.Role}).Info("profile registered")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

// QRCode renders the PNG a doctor scans to link the patient.
func (s *Service) QRCode(ctx context.Context, patientID types.ID) ([]byte, error) {
	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.Role != types.RolePatient {
		return nil, ErrNotPatient
	}
	return EncodeQR(p.ID)
}

// LinkPatient links the doctor to the patient named by a scanned QR payload.
// Scanning the same patient again is a no-op.
func (s *Service) LinkPatient(ctx context.Context, doctor types.Actor, payload string) (*Profile, error) {
	if doctor.Role != types.RoleDoctor {
		return nil, ErrDoctorOnly
	}
	patientID, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	patient, err := s.repo.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if patient.Role != types.RolePatient {
		return nil, ErrPatientNotFound
	}
	if err := s.repo.Link(ctx, doctor.ID, patient.ID); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"doctor_id": doctor.ID, "patient_id": patient.ID}).Info("patient linked")
	return patient, nil
}

func (s *Service) Patients(ctx context.Context, doctorID types.ID) ([]Profile, error) {
	return s.repo.Patients(ctx, doctorID)
}

func (s *Service) IsLinked(ctx context.Context, doctorID, patientID types.ID) (bool, error) {
	return s.repo.IsLinked(ctx, doctorID, patientID)
}

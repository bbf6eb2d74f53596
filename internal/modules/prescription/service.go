// README: Prescription service: issue, render, upload and look up prescriptions.
package prescription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pharmago/internal/modules/profile"
	"pharmago/internal/types"
)

const documentContentType = "text/html; charset=utf-8"

var (
	ErrNotFound       = fmt.Errorf("%w: prescription not found", types.ErrNotFound)
	ErrNoLines        = types.Validation("a prescription needs at least one medicine")
	ErrIncompleteLine = types.Validation("each medicine must have name, dosage, and duration")
	ErrNotLinked      = types.Forbidden("doctor is not linked to this patient")
	ErrNotVisible     = types.Forbidden("prescription belongs to another patient")
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	SetDocumentURL(ctx context.Context, id types.ID, url string) (bool, error)
	Get(ctx context.Context, id types.ID) (*Prescription, error)
	LatestForPatient(ctx context.Context, patientID types.ID) (*Prescription, error)
	ListForPatient(ctx context.Context, patientID types.ID) ([]Prescription, error)
}

type Profiles interface {
	Get(ctx context.Context, id types.ID) (*profile.Profile, error)
	IsLinked(ctx context.Context, doctorID, patientID types.ID) (bool, error)
}

type Service struct {
	repo     Repository
	blobs    BlobStore
	profiles Profiles
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(repo Repository, blobs BlobStore, profiles Profiles, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		repo:     repo,
		blobs:    blobs,
		profiles: profiles,
		log:      log.WithField("module", "prescription"),
		now:      time.Now,
	}
}

// DocumentKey is the blob key a prescription document is stored under.
func DocumentKey(id types.ID) string {
	return "prescription_" + string(id) + ".html"
}

// Issue persists the prescription and uploads its document. If the upload
// fails the stored prescription is returned together with a RemoteFailure
// error and has no document URL.
func (s *Service) Issue(ctx context.Context, cmd IssueCommand) (*Prescription, error) {
	lines, err := s.authorize(ctx, cmd)
	if err != nil {
		return nil, err
	}
	p := &Prescription{
		ID:        types.ID(uuid.NewString()),
		DoctorID:  cmd.DoctorID,
		PatientID: cmd.PatientID,
		Lines:     lines,
		CreatedAt: s.now().UTC(),
	}
	doc, err := s.render(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"prescription_id": p.ID, "patient_id": p.PatientID})
	url, err := s.blobs.Put(ctx, DocumentKey(p.ID), documentContentType, doc)
	if err != nil {
		log.WithError(err).Warn("prescription document upload failed")
		return p, err
	}
	ok, err := s.repo.SetDocumentURL(ctx, p.ID, url)
	if err != nil {
		return p, err
	}
	if ok {
		p.DocumentURL = &url
	}
	log.Info("prescription issued")
	return p, nil
}

// Preview renders the document the doctor is about to issue without storing it.
func (s *Service) Preview(ctx context.Context, cmd IssueCommand) ([]byte, error) {
	lines, err := s.authorize(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, &Prescription{
		DoctorID:  cmd.DoctorID,
		PatientID: cmd.PatientID,
		Lines:     lines,
		CreatedAt: s.now().UTC(),
	})
}

// Document re-renders a stored prescription.
func (s *Service) Document(ctx context.Context, id types.ID) ([]byte, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, p)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Prescription, error) {
	return s.repo.Get(ctx, id)
}

// GetFor returns the prescription to its patient or the doctor who wrote it.
func (s *Service) GetFor(ctx context.Context, id types.ID, actor types.Actor) (*Prescription, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.PatientID != actor.ID && p.DoctorID != actor.ID {
		return nil, ErrNotVisible
	}
	return p, nil
}

func (s *Service) LatestForPatient(ctx context.Context, patientID types.ID) (*Prescription, error) {
	return s.repo.LatestForPatient(ctx, patientID)
}

func (s *Service) ListForPatient(ctx context.Context, patientID types.ID) ([]Prescription, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

func (s *Service) authorize(ctx context.Context, cmd IssueCommand) ([]Line, error) {
	linked, err := s.profiles.IsLinked(ctx, cmd.DoctorID, cmd.PatientID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrNotLinked
	}
	return normalizeLines(cmd.Lines)
}

func normalizeLines(in []Line) ([]Line, error) {
	if len(in) == 0 {
		return nil, ErrNoLines
	}
	out := make([]Line, len(in))
	for i, l := range in {
		l.MedicineName = strings.TrimSpace(l.MedicineName)
		l.Dosage = strings.TrimSpace(l.Dosage)
		l.Instructions = strings.TrimSpace(l.Instructions)
		if l.MedicineName == "" || l.Dosage == "" || l.EndDate.IsZero() {
			return nil, ErrIncompleteLine
		}
		out[i] = l
	}
	return out, nil
}

func (s *Service) render(ctx context.Context, p *Prescription) ([]byte, error) {
	data := DocumentData{
		PatientName: "Patient",
		DoctorName:  "Unknown",
		IssuedAt:    p.CreatedAt,
		Lines:       p.Lines,
	}
	if patient, err := s.profiles.Get(ctx, p.PatientID); err == nil {
		if patient.FullName != "" {
			data.PatientName = patient.FullName
		}
		data.PatientAge = patient.Age
	}
	if doctor, err := s.profiles.Get(ctx, p.DoctorID); err == nil && doctor.FullName != "" {
		data.DoctorName = doctor.FullName
	}
	return RenderDocument(data)
}

package profile

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmago/internal/types"
)

type memoryRepo struct {
	mu       sync.Mutex
	profiles map[types.ID]Profile
	links    map[[2]types.ID]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{profiles: map[types.ID]Profile{}, links: map[[2]types.ID]bool{}}
}

func (r *memoryRepo) Upsert(ctx context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = *p
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id types.ID) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Link(ctx context.Context, doctorID, patientID types.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[[2]types.ID{doctorID, patientID}] = true
	return nil
}

func (r *memoryRepo) IsLinked(ctx context.Context, doctorID, patientID types.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[[2]types.ID{doctorID, patientID}], nil
}

func (r *memoryRepo) Patients(ctx context.Context, doctorID types.ID) ([]Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Profile{}
	for k := range r.links {
		if k[0] == doctorID {
			out = append(out, r.profiles[k[1]])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	repo := newMemoryRepo()
	return NewService(repo, log), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		cmd     RegisterCommand
		wantErr error
	}{
		{"patient", RegisterCommand{ID: "u1", Role: types.RolePatient, FullName: " Maria Santos ", Age: 67}, nil},
		{"pharmacist", RegisterCommand{ID: "u2", Role: types.RolePharmacist, PharmacyID: "ph-1"}, nil},
		{"pharmacist without pharmacy", RegisterCommand{ID: "u3", Role: types.RolePharmacist}, ErrPharmacyRequired},
		{"missing role", RegisterCommand{ID: "u4"}, ErrInvalidRole},
		{"unknown role", RegisterCommand{ID: "u4", Role: "admin"}, ErrInvalidRole},
		{"negative age", RegisterCommand{ID: "u5", Role: types.RolePatient, Age: -1}, ErrInvalidAge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Register(ctx, tt.cmd)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, types.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cmd.Role, p.Role)
		})
	}

	p, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", p.FullName)
	assert.Equal(t, types.ID(""), p.PharmacyID)

	ph, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, types.Actor{ID: "u2", Role: types.RolePharmacist, PharmacyID: "ph-1"}, ph.Actor())
}

func TestHomeFor(t *testing.T) {
	tests := []struct {
		role types.Role
		want string
		ok   bool
	}{
		{types.RolePatient, "/api/patient", true},
		{types.RoleDoctor, "/api/doctor", true},
		{types.RolePharmacist, "/api/pharmacist", true},
		{types.RoleDriver, "/api/driver", true},
		{"", "", false},
		{"admin", "", false},
	}
	for _, tt := range tests {
		got, ok := HomeFor(tt.role)
		assert.Equal(t, tt.want, got, tt.role)
		assert.Equal(t, tt.ok, ok, tt.role)
	}
}

func TestQRCode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterCommand{ID: "patient-1", Role: types.RolePatient})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterCommand{ID: "doctor-1", Role: types.RoleDoctor})
	require.NoError(t, err)

	png, err := svc.QRCode(ctx, "patient-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))

	_, err = svc.QRCode(ctx, "doctor-1")
	assert.ErrorIs(t, err, ErrNotPatient)
	_, err = svc.QRCode(ctx, "nobody")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		in      string
		want    types.ID
		wantErr bool
	}{
		{"kJ8s2LqP0aXo9fHc1T3uVw4yZb72", "kJ8s2LqP0aXo9fHc1T3uVw4yZb72", false},
		{"  2B7C1F7E-4C1A-4F3B-9E8D-0A1B2C3D4E5F\n", "2b7c1f7e-4c1a-4f3b-9e8d-0a1b2c3d4e5f", false},
		{"", "", true},
		{"   ", "", true},
		{"https://evil.example/x", "", true},
		{"two words", "", true},
	}
	for _, tt := range tests {
		got, err := DecodePayload(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidQR, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLinkPatient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, cmd := range []RegisterCommand{
		{ID: "patient-1", Role: types.RolePatient, FullName: "Ana"},
		{ID: "patient-2", Role: types.RolePatient, FullName: "Ben"},
		{ID: "driver-1", Role: types.RoleDriver},
	} {
		_, err := svc.Register(ctx, cmd)
		require.NoError(t, err)
	}
	doctor := types.Actor{ID: "doctor-1", Role: types.RoleDoctor}

	p, err := svc.LinkPatient(ctx, doctor, "patient-2\n")
	require.NoError(t, err)
	assert.Equal(t, "Ben", p.FullName)

	// scanning twice is harmless
	_, err = svc.LinkPatient(ctx, doctor, "patient-2")
	require.NoError(t, err)
	_, err = svc.LinkPatient(ctx, doctor, "patient-1")
	require.NoError(t, err)

	patients, err := svc.Patients(ctx, "doctor-1")
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "Ana", patients[0].FullName)

	linked, err := svc.IsLinked(ctx, "doctor-1", "patient-1")
	require.NoError(t, err)
	assert.True(t, linked)
	linked, err = svc.IsLinked(ctx, "doctor-2", "patient-1")
	require.NoError(t, err)
	assert.False(t, linked)

	_, err = svc.LinkPatient(ctx, doctor, "ghost")
	assert.ErrorIs(t, err, ErrPatientNotFound)
	_, err = svc.LinkPatient(ctx, doctor, "driver-1")
	assert.ErrorIs(t, err, ErrPatientNotFound)
	_, err = svc.LinkPatient(ctx, doctor, "")
	assert.ErrorIs(t, err, types.ErrValidation)
	_, err = svc.LinkPatient(ctx, types.Actor{ID: "patient-1", Role: types.RolePatient}, "patient-2")
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
}

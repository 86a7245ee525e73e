package patient

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

type fakePatients struct {
	created []*model.Patient
}

func (f *fakePatients) Create(ctx context.Context, p *model.Patient) error {
	p.ID = uuid.New()
	p.IsActive = true
	f.created = append(f.created, p)
	return nil
}

func (f *fakePatients) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	for _, p := range f.created {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("patient", nil)
}

func (f *fakePatients) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return f.created, nil
}

func (f *fakePatients) CountActive(ctx context.Context) (int64, error) {
	return int64(len(f.created)), nil
}

func TestCreatePatient_RoleAllowList(t *testing.T) {
	req := &model.CreatePatientRequest{FirstName: "Ada", LastName: "Lovelace"}

	tests := []struct {
		role    string
		allowed bool
	}{
		{model.RoleAdmin, true},
		{model.RoleDoctor, true},
		{model.RoleNurse, true},
		{model.RoleReceptionist, true},
		{model.RoleBilling, true},
		{model.RolePracticeManager, true},
		{model.RoleViewer, false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			repo := &fakePatients{}
			svc := NewService(repo)
			actor := &model.Profile{UserID: uuid.New(), Role: tt.role}

			p, err := svc.CreatePatient(context.Background(), actor, req)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, actor.UserID.String(), *p.CreatedBy)
				assert.Len(t, repo.created, 1)
				return
			}
			assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreatePatient_NoProfile(t *testing.T) {
	svc := NewService(&fakePatients{})
	_, err := svc.CreatePatient(context.Background(), nil, &model.CreatePatientRequest{FirstName: "A", LastName: "B"})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestCreatePatient_RequiresName(t *testing.T) {
	svc := NewService(&fakePatients{})
	actor := &model.Profile{Role: model.RoleAdmin}
	_, err := svc.CreatePatient(context.Background(), actor, &model.CreatePatientRequest{FirstName: " "})
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

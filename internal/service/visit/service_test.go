package visit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

type fakeVisits struct {
	deactivated []uuid.UUID
	deleted     []uuid.UUID
}

func (f *fakeVisits) List(ctx context.Context, filters *model.VisitFilters) ([]*model.Visit, error) {
	return nil, nil
}

func (f *fakeVisits) Deactivate(ctx context.Context, id uuid.UUID) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeVisits) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeVisits) CountActive(ctx context.Context) (int64, error) { return 0, nil }

func TestDeleteVisit(t *testing.T) {
	id := uuid.New()
	admin := &model.Profile{Role: model.RoleAdmin}
	nurse := &model.Profile{Role: model.RoleNurse}
	ctx := context.Background()

	repo := &fakeVisits{}
	svc := NewService(repo)

	require.NoError(t, svc.DeleteVisit(ctx, nurse, id, false))
	assert.Equal(t, []uuid.UUID{id}, repo.deactivated)

	err := svc.DeleteVisit(ctx, nurse, id, true)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.DeleteVisit(ctx, admin, id, true))
	assert.Equal(t, []uuid.UUID{id}, repo.deleted)

	assert.True(t, apperrors.Is(svc.DeleteVisit(ctx, admin, uuid.Nil, false), apperrors.ErrBadRequest))
}

package visit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/repository"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

type Service struct {
	repo repository.VisitRepository
}

func NewService(repo repository.VisitRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListVisits(ctx context.Context, filters *model.VisitFilters) ([]*model.Visit, error) {
	visits, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}

// DeleteVisit deactivates a visit. A permanent delete removes the row and is
// reserved for admins.
func (s *Service) DeleteVisit(ctx context.Context, actor *model.Profile, id uuid.UUID, permanent bool) error {
	if id == uuid.Nil {
		return apperrors.BadRequest("id is required", nil)
	}
	if !permanent {
		if err := s.repo.Deactivate(ctx, id); err != nil {
			return fmt.Errorf("failed to delete visit: %w", err)
		}
		return nil
	}
	if !actor.HasAnyRole(model.RoleAdmin) {
		return apperrors.Forbidden(fmt.Errorf("permanent delete requires admin"))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to permanently delete visit: %w", err)
	}
	return nil
}

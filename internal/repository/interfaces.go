package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/practice-admin/internal/model"
)

// All repository interfaces in one file
type (
	// MasterDataRepository is the per-entity data access capability.
	MasterDataRepository interface {
		DataSource() string
		Table() string
		List(ctx context.Context, filter *model.ListFilter) ([]model.Record, error)
		Get(ctx context.Context, id string) (model.Record, error)
		Create(ctx context.Context, record model.Record) (model.Record, error)
		Update(ctx context.Context, id string, record model.Record) (model.Record, error)
		// Delete deactivates the row; it never removes it.
		Delete(ctx context.Context, id string) (model.Record, error)
		CountActive(ctx context.Context) (int64, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		CountActive(ctx context.Context) (int64, error)
	}

	VisitRepository interface {
		List(ctx context.Context, filters *model.VisitFilters) ([]*model.Visit, error)
		Deactivate(ctx context.Context, id uuid.UUID) error
		// Delete permanently removes the visit.
		Delete(ctx context.Context, id uuid.UUID) error
		CountActive(ctx context.Context) (int64, error)
	}

	UserRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
		GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	}

	OutboxRepository interface {
		ClaimPendingEvents(ctx context.Context, limit int, staleBefore time.Time) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

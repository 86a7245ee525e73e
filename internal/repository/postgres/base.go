package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
	"github.com/jwalitptl/practice-admin/pkg/messaging"
)

// PostgreSQL error codes surfaced to callers.
const (
	pqUniqueViolation       = "23505"
	pqNotNullViolation      = "23502"
	pqForeignKeyViolation   = "23503"
	pqInsufficientPrivilege = "42501"
	pqInvalidTextRep        = "22P02"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db, now: time.Now}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// emitChange records a change notification for table in the outbox inside tx.
func (r *BaseRepository) emitChange(ctx context.Context, tx *sqlx.Tx, table, kind string) error {
	payload, err := json.Marshal(model.ChangeEvent{Table: table, Type: kind, At: r.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	query := `
		INSERT INTO outbox_events (event_type, channel, payload, status)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, query,
		table+"."+kind,
		messaging.ChangeChannel(table),
		payload,
		string(model.OutboxStatusPending),
	); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// translateError maps driver errors onto the application error taxonomy.
func translateError(resource string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperrors.Conflict(fmt.Sprintf("%s already exists", resource), err)
		case pqInsufficientPrivilege:
			return apperrors.Forbidden(err)
		case pqNotNullViolation:
			if pqErr.Column != "" {
				return apperrors.BadRequest(pqErr.Column+" is required", err)
			}
			return apperrors.BadRequest("a required value is missing", err)
		case pqForeignKeyViolation:
			return apperrors.BadRequest(fmt.Sprintf("%s references a missing record", resource), err)
		case pqInvalidTextRep:
			return apperrors.BadRequest("invalid value: "+pqErr.Message, err)
		}
	}
	return apperrors.Internal(err)
}

// normalizeRow converts driver byte slices (uuid, numeric, date) into strings.
func normalizeRow(row map[string]interface{}) model.Record {
	out := make(model.Record, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
			continue
		}
		out[k] = v
	}
	return out
}

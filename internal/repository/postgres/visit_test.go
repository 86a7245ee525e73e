package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

func TestVisitRepository_Deactivate(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewVisitRepository(base)
	id := uuid.MustParse(testID)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE visits SET is_active = false")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectOutbox(mock, "visits.DELETE", "changes:visits")
	mock.ExpectCommit()

	require.NoError(t, repo.Deactivate(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitRepository_DeleteMissing(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewVisitRepository(base)
	id := uuid.MustParse(testID)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM visits WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), id)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

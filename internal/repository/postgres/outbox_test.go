package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/practice-admin/internal/model"
)

var outboxColumns = []string{
	"id", "event_type", "channel", "payload", "status", "error_message",
	"retry_count", "created_at", "processed_at", "updated_at",
}

func TestOutboxRepository_ClaimPendingEvents(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewOutboxRepository(base)
	now := time.Now()
	stale := now.Add(-5 * time.Minute)
	otherID := "22222222-2222-2222-2222-222222222222"

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE outbox_events\s+SET status = \$1.*FOR UPDATE SKIP LOCKED.*RETURNING`).
		WithArgs("processing", "pending", stale, 10).
		WillReturnRows(sqlmock.NewRows(outboxColumns).
			AddRow(otherID, "providers.UPDATE", "changes:providers", []byte(`{"table":"providers"}`),
				"processing", nil, 0, now, nil, now).
			AddRow(testID, "modifiers.INSERT", "changes:modifiers", []byte(`{"table":"modifiers"}`),
				"processing", nil, 0, now.Add(-time.Second), nil, now))
	mock.ExpectCommit()

	events, err := repo.ClaimPendingEvents(context.Background(), 10, stale)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "changes:modifiers", events[0].Channel, "claimed events come back oldest first")
	assert.Equal(t, string(model.OutboxStatusProcessing), events[0].Status)
	assert.JSONEq(t, `{"table":"modifiers"}`, string(events[0].Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ClaimPendingEventsRollsBack(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewOutboxRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.ClaimPendingEvents(context.Background(), 10, time.Now())
	assert.ErrorContains(t, err, "failed to claim pending events")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_UpdateStatus(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewOutboxRepository(base)
	id := uuid.MustParse(testID)
	msg := "broker unavailable"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("pending", &msg, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), id, model.OutboxStatusPending, &msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

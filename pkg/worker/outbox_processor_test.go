package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/pkg/logger"
	"github.com/jwalitptl/practice-admin/pkg/messaging"
	"github.com/jwalitptl/practice-admin/pkg/messaging/memory"
	"github.com/jwalitptl/practice-admin/pkg/metrics"
)

type statusUpdate struct {
	id     uuid.UUID
	status model.OutboxStatus
	errMsg *string
}

type fakeOutboxRepo struct {
	mu       sync.Mutex
	events   []*model.OutboxEvent
	updates  []statusUpdate
	deleted  int64
	cutoff   time.Time
	stale    time.Time
	fetchErr error
}

func (f *fakeOutboxRepo) ClaimPendingEvents(ctx context.Context, limit int, staleBefore time.Time) ([]*model.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stale = staleBefore
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, statusUpdate{id: id, status: status, errMsg: errMsg})
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoff = before
	return f.deleted, nil
}

type failingBroker struct {
	messaging.Broker
	calls int
}

func (b *failingBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.calls++
	return errors.New("broker down")
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry(), "test")
}

func changeEvent(table string, retries int) *model.OutboxEvent {
	payload, _ := json.Marshal(model.ChangeEvent{Table: table, Type: model.ChangeInsert})
	return &model.OutboxEvent{
		ID:         uuid.New(),
		EventType:  table + ".INSERT",
		Channel:    messaging.ChangeChannel(table),
		Payload:    payload,
		Status:     string(model.OutboxStatusPending),
		RetryCount: retries,
	}
}

var testConfig = OutboxProcessorConfig{
	BatchSize:     10,
	PollInterval:  time.Second,
	RetryAttempts: 2,
	RetryDelay:    time.Millisecond,
	MaxAttempts:   3,
	ClaimTimeout:  time.Minute,
}

func TestOutboxProcessor_PublishesToChangeChannel(t *testing.T) {
	broker := memory.NewBroker(10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := broker.Subscribe(ctx, "changes:modifiers")
	require.NoError(t, err)

	event := changeEvent("modifiers", 0)
	repo := &fakeOutboxRepo{events: []*model.OutboxEvent{event}}
	m := newTestMetrics()
	p := NewOutboxProcessor(repo, broker, testConfig, logger.Nop(), m)

	require.NoError(t, p.processEvents(ctx))

	select {
	case msg := <-ch:
		assert.JSONEq(t, string(event.Payload), string(msg))
	case <-time.After(time.Second):
		t.Fatal("event not published")
	}

	require.Len(t, repo.updates, 1)
	assert.Equal(t, model.OutboxStatusProcessed, repo.updates[0].status)
	assert.Nil(t, repo.updates[0].errMsg)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxEventsProcessed))
}

func TestOutboxProcessor_RetriesThenFails(t *testing.T) {
	broker := &failingBroker{}
	m := newTestMetrics()

	fresh := changeEvent("providers", 0)
	exhausted := changeEvent("providers", 2)
	repo := &fakeOutboxRepo{events: []*model.OutboxEvent{fresh, exhausted}}
	p := NewOutboxProcessor(repo, broker, testConfig, logger.Nop(), m)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, 4, broker.calls)
	require.Len(t, repo.updates, 2)
	assert.Equal(t, model.OutboxStatusPending, repo.updates[0].status)
	require.NotNil(t, repo.updates[0].errMsg)
	assert.Equal(t, "broker down", *repo.updates[0].errMsg)
	assert.Equal(t, model.OutboxStatusFailed, repo.updates[1].status)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxEventsFailed))
}

func TestOutboxProcessor_FetchError(t *testing.T) {
	repo := &fakeOutboxRepo{fetchErr: errors.New("db down")}
	p := NewOutboxProcessor(repo, memory.NewBroker(1), testConfig, logger.Nop(), newTestMetrics())

	assert.Error(t, p.processEvents(context.Background()))
}

func TestOutboxProcessor_ReclaimsStaleClaims(t *testing.T) {
	repo := &fakeOutboxRepo{}
	p := NewOutboxProcessor(repo, memory.NewBroker(1), testConfig, logger.Nop(), newTestMetrics())

	before := time.Now()
	require.NoError(t, p.processEvents(context.Background()))

	assert.WithinDuration(t, before.Add(-testConfig.ClaimTimeout), repo.stale, time.Second)
}

func TestNewOutboxProcessor_InvalidConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(&fakeOutboxRepo{}, memory.NewBroker(1), OutboxProcessorConfig{}, logger.Nop(), newTestMetrics())
	})

	noClaimTimeout := testConfig
	noClaimTimeout.ClaimTimeout = 0
	assert.Panics(t, func() {
		NewOutboxProcessor(&fakeOutboxRepo{}, memory.NewBroker(1), noClaimTimeout, logger.Nop(), newTestMetrics())
	})
}

func TestOutboxCleanupWorker(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRepo{deleted: 4}
	m := newTestMetrics()
	w := NewOutboxCleanupWorker(repo, 24*time.Hour, time.Hour, logger.Nop(), m)
	w.now = func() time.Time { return now }

	w.runOnce(context.Background())

	assert.Equal(t, now.Add(-24*time.Hour), repo.cutoff)
	assert.Equal(t, float64(4), testutil.ToFloat64(m.OutboxCleanedUp))
}

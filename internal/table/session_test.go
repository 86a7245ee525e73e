package table

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

type updateCall struct {
	id    string
	draft model.Record
}

type fakeBackend struct {
	mu        sync.Mutex
	creates   []model.Record
	updates   []updateCall
	deletes   []string
	createErr error
	updateErr error
	deleteErr map[string]error
}

func (f *fakeBackend) Create(ctx context.Context, draft model.Record) (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, draft)
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := draft.Clone()
	out["id"] = "new"
	return out, nil
}

func (f *fakeBackend) Update(ctx context.Context, id string, draft model.Record) (model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{id: id, draft: draft})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return draft, nil
}

func (f *fakeBackend) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr[id]
}

func TestSession_AddDiagnosis(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.DiagnosisConfig(), backend, Options{})

	s.OpenAdd()
	s.SetAddField("diagnosis_code", "R51")
	s.SetAddField("description", "Headache")
	s.SetAddField("is_active", "Yes")
	require.NoError(t, s.SubmitAdd(context.Background()))

	require.Len(t, backend.creates, 1)
	assert.Equal(t, true, backend.creates[0]["is_active"])
	assert.Equal(t, "R51", backend.creates[0]["diagnosis_code"])

	v := s.View(nil)
	assert.False(t, v.AddOpen)
	assert.Nil(t, v.AddDraft)
	require.NotNil(t, v.Notification)
	assert.Equal(t, KindSuccess, v.Notification.Kind)
}

func TestSession_AddFailureKeepsDraft(t *testing.T) {
	backend := &fakeBackend{createErr: apperrors.Conflict("duplicate", nil)}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})

	s.OpenAdd()
	s.SetAddField("modifier_code", "25")
	s.SetAddField("description", "Significant")
	err := s.SubmitAdd(context.Background())
	require.Error(t, err)

	v := s.View(nil)
	assert.True(t, v.AddOpen)
	assert.Equal(t, "25", v.AddDraft["modifier_code"])
	require.NotNil(t, v.Notification)
	assert.Equal(t, KindError, v.Notification.Kind)
	assert.Equal(t, "A record with the same value already exists.", v.Notification.Message)
	assert.False(t, v.Notification.AutoClose)
}

func TestSession_AddMissingRequired(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})

	s.OpenAdd()
	s.SetAddField("modifier_code", "25")
	err := s.SubmitAdd(context.Background())

	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Empty(t, backend.creates)
	assert.Contains(t, s.Notification().Message, "Description")
	assert.True(t, s.View(nil).AddOpen)
}

func TestSession_EditStripsRelations(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.ProviderConfig(nil), backend, Options{})

	s.OpenEdit(model.Record{
		"id":            "p1",
		"name":          "Dr. Old",
		"npi":           "1234567890",
		"is_default":    "false",
		"location_name": "Main Clinic",
		"locations":     map[string]interface{}{"location_name": "Main Clinic"},
		"created_at":    time.Now(),
	})
	s.SetEditField("name", "Dr. New")
	require.NoError(t, s.SubmitEdit(context.Background()))

	require.Len(t, backend.updates, 1)
	call := backend.updates[0]
	assert.Equal(t, "p1", call.id)
	assert.Equal(t, "Dr. New", call.draft["name"])
	assert.Equal(t, false, call.draft["is_default"])
	assert.NotContains(t, call.draft, "locations")
	assert.NotContains(t, call.draft, "location_name")
	assert.NotContains(t, call.draft, "id")
	assert.NotContains(t, call.draft, "created_at")
	assert.False(t, s.View(nil).EditOpen)
}

func TestSession_EditFailureKeepsModal(t *testing.T) {
	backend := &fakeBackend{updateErr: errors.New("network down")}
	s := NewSession(masterdata.LocationConfig(), backend, Options{})

	s.OpenEdit(model.Record{"id": "l1", "location_name": "Main"})
	require.Error(t, s.SubmitEdit(context.Background()))

	v := s.View(nil)
	assert.True(t, v.EditOpen)
	assert.Equal(t, "An unexpected error occurred. Please try again.", v.Notification.Message)
}

func TestSession_EditWithoutID(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.LocationConfig(), backend, Options{})

	s.OpenEdit(model.Record{"location_name": "Main"})
	err := s.SubmitEdit(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Empty(t, backend.updates)
}

func TestSession_EditBlankRequired(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})

	s.OpenEdit(model.Record{"id": "m1", "modifier_code": "25", "description": "E/M"})
	s.SetEditField("description", "  ")
	err := s.SubmitEdit(context.Background())

	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Empty(t, backend.updates)
	v := s.View(nil)
	assert.True(t, v.EditOpen)
	assert.Equal(t, "Missing required fields: Description", v.Notification.Message)
}

func TestSession_CancelDeleteMakesNoCall(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})
	rows := modifierRows()

	require.NoError(t, s.RequestDelete(context.Background(), "2"))
	assert.Equal(t, "2", s.View(rows).PendingDelete)

	s.CancelDelete()
	require.NoError(t, s.ConfirmDelete(context.Background()))

	assert.Empty(t, backend.deletes)
	v := s.View(rows)
	assert.Len(t, v.Rows, 3)
	assert.Empty(t, v.PendingDelete)
}

func TestSession_ConfirmDelete(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})

	s.Toggle("2")
	require.NoError(t, s.RequestDelete(context.Background(), "2"))
	require.NoError(t, s.ConfirmDelete(context.Background()))

	assert.Equal(t, []string{"2"}, backend.deletes)
	assert.Empty(t, s.Selected())
	assert.Equal(t, "Modifier deleted successfully", s.Notification().Message)
}

func TestSession_CustomDeleteBypassesConfirmation(t *testing.T) {
	backend := &fakeBackend{}
	var got []string
	s := NewSession(masterdata.ModifierConfig(), backend, Options{
		OnDelete: func(ctx context.Context, id string) error {
			got = append(got, id)
			return nil
		},
	})

	require.NoError(t, s.RequestDelete(context.Background(), "3"))
	assert.Equal(t, []string{"3"}, got)
	assert.Empty(t, s.View(nil).PendingDelete)
	assert.Empty(t, backend.deletes)
}

func TestSession_RequestDeleteRequiresID(t *testing.T) {
	s := NewSession(masterdata.ModifierConfig(), &fakeBackend{}, Options{})
	assert.True(t, apperrors.Is(s.RequestDelete(context.Background(), ""), apperrors.ErrBadRequest))
}

func TestSession_SelectAll(t *testing.T) {
	s := NewSession(masterdata.ModifierConfig(), &fakeBackend{}, Options{})
	rows := modifierRows()

	s.SetSearch("5")
	s.SelectAll(rows)
	assert.Equal(t, []string{"1", "2"}, s.Selected())

	s.SelectAll(rows)
	assert.Empty(t, s.Selected())

	s.Toggle("3")
	s.Toggle("3")
	assert.Empty(t, s.Selected())
}

func TestSession_BulkDeleteAllSucceed(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})

	for _, id := range []string{"1", "2", "3"} {
		s.Toggle(id)
	}
	require.NoError(t, s.RequestBulkDelete(context.Background()))
	assert.Equal(t, []string{"1", "2", "3"}, s.View(nil).PendingBulk)
	require.NoError(t, s.ConfirmBulkDelete(context.Background()))

	assert.Len(t, backend.deletes, 3)
	assert.Empty(t, s.Selected())
	n := s.Notification()
	require.NotNil(t, n)
	assert.Equal(t, KindSuccess, n.Kind)
	assert.Equal(t, "Deleted 3 records", n.Message)
}

func TestSession_BulkDeletePartialFailure(t *testing.T) {
	backend := &fakeBackend{deleteErr: map[string]error{
		"2": apperrors.NotFound("active modifier", nil),
	}}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})

	for _, id := range []string{"1", "2", "3"} {
		s.Toggle(id)
	}
	require.NoError(t, s.RequestBulkDelete(context.Background()))
	err := s.ConfirmBulkDelete(context.Background())

	var bulkErr *BulkError
	require.ErrorAs(t, err, &bulkErr)
	assert.Equal(t, 2, bulkErr.Deleted)
	assert.Contains(t, bulkErr.Failed, "2")

	assert.Equal(t, []string{"2"}, s.Selected())
	n := s.Notification()
	require.NotNil(t, n)
	assert.Equal(t, KindError, n.Kind)
	assert.True(t, strings.HasPrefix(n.Message, "Deleted 2 of 3 records"))
}

func TestSession_BulkDeleteKeepsLaterSelection(t *testing.T) {
	backend := &fakeBackend{deleteErr: map[string]error{"b": errors.New("timeout")}}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})

	s.Toggle("a")
	s.Toggle("b")
	require.NoError(t, s.RequestBulkDelete(context.Background()))
	s.Toggle("c")
	require.Error(t, s.ConfirmBulkDelete(context.Background()))

	assert.ElementsMatch(t, []string{"a", "b"}, backend.deletes)
	assert.Equal(t, []string{"b", "c"}, s.Selected())
}

func TestSession_BulkDeleteSuccessKeepsLaterSelection(t *testing.T) {
	s := NewSession(masterdata.ModifierConfig(), &fakeBackend{}, Options{})

	s.Toggle("a")
	s.Toggle("b")
	require.NoError(t, s.RequestBulkDelete(context.Background()))
	s.Toggle("c")
	require.NoError(t, s.ConfirmBulkDelete(context.Background()))

	assert.Equal(t, []string{"c"}, s.Selected())
}

func TestSession_CancelBulkDelete(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})

	s.Toggle("1")
	require.NoError(t, s.RequestBulkDelete(context.Background()))
	s.CancelBulkDelete()
	require.NoError(t, s.ConfirmBulkDelete(context.Background()))

	assert.Empty(t, backend.deletes)
	assert.Equal(t, []string{"1"}, s.Selected())
}

func TestSession_CustomBulkDelete(t *testing.T) {
	backend := &fakeBackend{}
	var got []string
	s := NewSession(masterdata.ModifierConfig(), backend, Options{
		OnBulkDelete: func(ctx context.Context, ids []string) error {
			got = ids
			return nil
		},
	})

	s.Toggle("2")
	s.Toggle("1")
	require.NoError(t, s.RequestBulkDelete(context.Background()))
	assert.Equal(t, []string{"1", "2"}, got)
	assert.Empty(t, s.Selected())
	assert.Empty(t, backend.deletes)
}

func TestSession_BulkDeleteNothingSelected(t *testing.T) {
	s := NewSession(masterdata.ModifierConfig(), &fakeBackend{}, Options{})
	assert.True(t, apperrors.Is(s.RequestBulkDelete(context.Background()), apperrors.ErrBadRequest))
}

func TestSession_NotificationAutoDismiss(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewSession(masterdata.ModifierConfig(), &fakeBackend{}, Options{})
	s.now = func() time.Time { return now }

	require.NoError(t, s.RequestDelete(context.Background(), "1"))
	require.NoError(t, s.ConfirmDelete(context.Background()))
	require.NotNil(t, s.Notification())

	now = now.Add(1999 * time.Millisecond)
	require.NotNil(t, s.Notification())

	now = now.Add(time.Millisecond)
	assert.Nil(t, s.Notification())
}

func TestSession_ErrorNotificationStays(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	backend := &fakeBackend{deleteErr: map[string]error{"1": errors.New("boom")}}
	s := NewSession(masterdata.ModifierConfig(), backend, Options{})
	s.now = func() time.Time { return now }

	require.NoError(t, s.RequestDelete(context.Background(), "1"))
	require.Error(t, s.ConfirmDelete(context.Background()))

	now = now.Add(time.Minute)
	require.NotNil(t, s.Notification())
	s.DismissNotification()
	assert.Nil(t, s.Notification())
}

func TestSession_ExportUsesFilteredRows(t *testing.T) {
	s := NewSession(masterdata.ModifierConfig(), &fakeBackend{}, Options{})
	rows := modifierRows()
	s.SetSearch("side")

	var buf bytes.Buffer
	name, err := s.Export(&buf, rows)
	require.NoError(t, err)

	assert.Equal(t, "modifiers.csv", name)
	assert.Equal(t, 2, len(strings.Split(buf.String(), "\n")))
}

package table

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/model"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

// AutoDismiss is how long an auto-closing notification stays visible.
const AutoDismiss = 2000 * time.Millisecond

// Backend persists the intents raised by a Session.
type Backend interface {
	Create(ctx context.Context, draft model.Record) (model.Record, error)
	Update(ctx context.Context, id string, draft model.Record) (model.Record, error)
	Delete(ctx context.Context, id string) error
}

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Notification struct {
	Title     string
	Message   string
	Kind      Kind
	AutoClose bool
	shownAt   time.Time
}

// Options installs caller-owned delete handlers. When set they replace the
// built-in confirmation step.
type Options struct {
	OnDelete     func(ctx context.Context, id string) error
	OnBulkDelete func(ctx context.Context, ids []string) error
}

// Session is the transient UI state of one table. The rows themselves are
// owned by the caller and passed in on every View.
type Session struct {
	mu      sync.Mutex
	cfg     *masterdata.Config
	backend Backend
	opts    Options
	now     func() time.Time

	search   string
	selected map[string]struct{}

	addOpen   bool
	addDraft  model.Record
	editOpen  bool
	editID    string
	editDraft model.Record

	pendingDelete string
	pendingBulk   []string

	notification *Notification
}

func NewSession(cfg *masterdata.Config, backend Backend, opts Options) *Session {
	return &Session{
		cfg:      cfg,
		backend:  backend,
		opts:     opts,
		now:      time.Now,
		selected: make(map[string]struct{}),
	}
}

// View is a snapshot for rendering.
type View struct {
	Rows          []model.Record
	Selected      []string
	AddOpen       bool
	AddDraft      model.Record
	EditOpen      bool
	EditDraft     model.Record
	PendingDelete string
	PendingBulk   []string
	Notification  *Notification
}

// View filters rows by the current search term and snapshots UI state.
func (s *Session) View(rows []model.Record) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Rows:          Filter(rows, s.cfg.Columns, s.search),
		Selected:      s.selectedLocked(),
		AddOpen:       s.addOpen,
		EditOpen:      s.editOpen,
		PendingDelete: s.pendingDelete,
		PendingBulk:   append([]string(nil), s.pendingBulk...),
		Notification:  s.notificationLocked(),
	}
	if s.addDraft != nil {
		v.AddDraft = s.addDraft.Clone()
	}
	if s.editDraft != nil {
		v.EditDraft = s.editDraft.Clone()
	}
	return v
}

func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	s.search = term
	s.mu.Unlock()
}

// Export writes the currently displayed rows as CSV and returns the file name.
func (s *Session) Export(w io.Writer, rows []model.Record) (string, error) {
	s.mu.Lock()
	visible := Filter(rows, s.cfg.Columns, s.search)
	s.mu.Unlock()

	if err := WriteCSV(w, s.cfg, visible); err != nil {
		return "", err
	}
	return ExportFilename(s.cfg.Title), nil
}

// Notification returns the visible notification, or nil once it has auto-dismissed.
func (s *Session) Notification() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notificationLocked()
}

func (s *Session) DismissNotification() {
	s.mu.Lock()
	s.notification = nil
	s.mu.Unlock()
}

func (s *Session) notificationLocked() *Notification {
	n := s.notification
	if n == nil {
		return nil
	}
	if n.AutoClose && s.now().Sub(n.shownAt) >= AutoDismiss {
		s.notification = nil
		return nil
	}
	cp := *n
	return &cp
}

func (s *Session) notify(kind Kind, title, message string, autoClose bool) {
	s.notification = &Notification{
		Title:     title,
		Message:   message,
		Kind:      kind,
		AutoClose: autoClose,
		shownAt:   s.now(),
	}
}

func (s *Session) notifyError(title string, err error) {
	log.Warn().Err(err).Str("data_source", s.cfg.DataSource).Msg(title)
	s.notify(KindError, title, apperrors.UserMessage(err), false)
}

// Add

func (s *Session) OpenAdd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addOpen = true
	s.addDraft = masterdata.NewDraft(s.cfg)
}

func (s *Session) SetAddField(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addDraft == nil {
		s.addDraft = masterdata.NewDraft(s.cfg)
	}
	s.addDraft[key] = value
}

func (s *Session) CloseAdd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addOpen = false
	s.addDraft = nil
}

// SubmitAdd creates the draft. On failure the modal stays open with the draft intact.
func (s *Session) SubmitAdd(ctx context.Context) error {
	s.mu.Lock()
	if !s.addOpen {
		s.mu.Unlock()
		return apperrors.BadRequest("add form is not open", nil)
	}
	draft := s.addDraft.Clone()
	if missing := masterdata.MissingRequired(s.cfg, draft); len(missing) > 0 {
		err := apperrors.BadRequest("Missing required fields: "+strings.Join(missing, ", "), nil)
		s.notify(KindError, "Error", apperrors.UserMessage(err), false)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	_, err := s.backend.Create(ctx, masterdata.PrepareCreate(s.cfg, draft))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.notifyError("Error", err)
		return err
	}
	s.addOpen = false
	s.addDraft = nil
	s.notify(KindSuccess, "Success", fmt.Sprintf("%s added successfully", s.cfg.Labels.Singular), true)
	return nil
}

// Edit

func (s *Session) OpenEdit(row model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editOpen = true
	s.editID = row.ID()
	s.editDraft = row.Clone()
}

func (s *Session) SetEditField(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editDraft != nil {
		s.editDraft[key] = value
	}
}

func (s *Session) CloseEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editOpen = false
	s.editID = ""
	s.editDraft = nil
}

func (s *Session) SubmitEdit(ctx context.Context) error {
	s.mu.Lock()
	if !s.editOpen {
		s.mu.Unlock()
		return apperrors.BadRequest("edit form is not open", nil)
	}
	id := s.editID
	if id == "" {
		err := apperrors.BadRequest("id is required", nil)
		s.notify(KindError, "Error", apperrors.UserMessage(err), false)
		s.mu.Unlock()
		return err
	}
	draft := s.editDraft.Clone()
	if blank := masterdata.BlankRequired(s.cfg, draft); len(blank) > 0 {
		err := apperrors.BadRequest("Missing required fields: "+strings.Join(blank, ", "), nil)
		s.notify(KindError, "Error", apperrors.UserMessage(err), false)
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	_, err := s.backend.Update(ctx, id, masterdata.PrepareUpdate(s.cfg, draft))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.notifyError("Error", err)
		return err
	}
	s.editOpen = false
	s.editID = ""
	s.editDraft = nil
	s.notify(KindSuccess, "Success", fmt.Sprintf("%s updated successfully", s.cfg.Labels.Singular), true)
	return nil
}

// Single delete

// RequestDelete asks to delete id. With a custom handler the delete runs
// immediately; otherwise it waits for ConfirmDelete.
func (s *Session) RequestDelete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.BadRequest("id is required", nil)
	}
	if s.opts.OnDelete != nil {
		return s.runDelete(ctx, id, s.opts.OnDelete)
	}
	s.mu.Lock()
	s.pendingDelete = id
	s.mu.Unlock()
	return nil
}

func (s *Session) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = ""
	s.mu.Unlock()
}

func (s *Session) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	id := s.pendingDelete
	s.pendingDelete = ""
	s.mu.Unlock()
	if id == "" {
		return nil
	}
	return s.runDelete(ctx, id, s.backend.Delete)
}

func (s *Session) runDelete(ctx context.Context, id string, del func(context.Context, string) error) error {
	err := del(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.notifyError("Error", err)
		return err
	}
	delete(s.selected, id)
	s.notify(KindSuccess, "Success", fmt.Sprintf("%s deleted successfully", s.cfg.Labels.Singular), true)
	return nil
}

// Selection

func (s *Session) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}
	s.selected[id] = struct{}{}
}

// SelectAll selects every displayed row, or clears the selection when all
// of them are already selected.
func (s *Session) SelectAll(rows []model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := Filter(rows, s.cfg.Columns, s.search)
	all := len(visible) > 0
	for _, r := range visible {
		if _, ok := s.selected[r.ID()]; !ok {
			all = false
			break
		}
	}
	if all {
		s.selected = make(map[string]struct{})
		return
	}
	for _, r := range visible {
		if id := r.ID(); id != "" {
			s.selected[id] = struct{}{}
		}
	}
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[string]struct{})
	s.mu.Unlock()
}

// Selected returns the selected ids in sorted order.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *Session) selectedLocked() []string {
	out := make([]string, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Bulk delete

func (s *Session) RequestBulkDelete(ctx context.Context) error {
	ids := s.Selected()
	if len(ids) == 0 {
		return apperrors.BadRequest("no records selected", nil)
	}
	if s.opts.OnBulkDelete != nil {
		err := s.opts.OnBulkDelete(ctx, ids)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.notifyError("Error", err)
			return err
		}
		s.selected = make(map[string]struct{})
		s.notify(KindSuccess, "Success", fmt.Sprintf("Deleted %d %s", len(ids), plural(len(ids))), true)
		return nil
	}
	s.mu.Lock()
	s.pendingBulk = ids
	s.mu.Unlock()
	return nil
}

func (s *Session) CancelBulkDelete() {
	s.mu.Lock()
	s.pendingBulk = nil
	s.mu.Unlock()
}

// BulkError reports the ids that could not be deleted.
type BulkError struct {
	Deleted int
	Failed  map[string]error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("failed to delete %d records", len(e.Failed))
}

// ConfirmBulkDelete deletes every pending id. Succeeded ids leave the
// selection and failed ids stay selected with one aggregate notification.
func (s *Session) ConfirmBulkDelete(ctx context.Context) error {
	s.mu.Lock()
	ids := s.pendingBulk
	s.pendingBulk = nil
	s.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}

	failed := make(map[string]error)
	deleted := 0
	for _, id := range ids {
		if err := s.backend.Delete(ctx, id); err != nil {
			failed[id] = err
			continue
		}
		deleted++
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Ids selected while the confirmation was open stay selected.
	for _, id := range ids {
		if _, ok := failed[id]; ok {
			s.selected[id] = struct{}{}
			continue
		}
		delete(s.selected, id)
	}

	if len(failed) == 0 {
		s.notify(KindSuccess, "Success", fmt.Sprintf("Deleted %d %s", deleted, plural(deleted)), true)
		return nil
	}

	err := &BulkError{Deleted: deleted, Failed: failed}
	log.Warn().Err(err).Str("data_source", s.cfg.DataSource).Int("deleted", deleted).Msg("bulk delete partially failed")
	s.notify(KindError, "Error",
		fmt.Sprintf("Deleted %d of %d records. %d could not be deleted.", deleted, len(ids), len(failed)), false)
	return err
}

func plural(n int) string {
	if n == 1 {
		return "record"
	}
	return "records"
}

// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/repository"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
	"github.com/jwalitptl/practice-admin/pkg/messaging"
)

// MasterData is an in-memory MasterDataRepository. Writes publish a change
// event on the table's channel when a broker is set.
type MasterData struct {
	mu         sync.Mutex
	dataSource string
	table      string
	searchKey  string
	rows       []model.Record
	seq        int
	broker     messaging.Broker

	// Errors forces the next calls of an operation ("list", "create",
	// "update", "delete") or of a delete for a given id to fail.
	Errors map[string]error
	Lists  int
}

var _ repository.MasterDataRepository = (*MasterData)(nil)

func NewMasterData(dataSource, table, searchKey string, broker messaging.Broker) *MasterData {
	return &MasterData{
		dataSource: dataSource,
		table:      table,
		searchKey:  searchKey,
		broker:     broker,
		Errors:     make(map[string]error),
	}
}

// Seed appends rows as stored, assigning ids where missing.
func (m *MasterData) Seed(rows ...model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		r = r.Clone()
		if r.ID() == "" {
			m.seq++
			r[model.KeyID] = fmt.Sprintf("%s-%d", m.table, m.seq)
		}
		if _, ok := r[model.KeyIsActive]; !ok {
			r[model.KeyIsActive] = true
		}
		m.rows = append(m.rows, r)
	}
}

// SetError installs or clears a forced failure.
func (m *MasterData) SetError(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.Errors, key)
		return
	}
	m.Errors[key] = err
}

// Rows returns every stored row, active or not.
func (m *MasterData) Rows() []model.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Record, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Clone()
	}
	return out
}

func (m *MasterData) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Lists
}

func (m *MasterData) DataSource() string { return m.dataSource }

func (m *MasterData) Table() string { return m.table }

func (m *MasterData) List(ctx context.Context, filter *model.ListFilter) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lists++
	if err := m.Errors["list"]; err != nil {
		return nil, err
	}

	out := make([]model.Record, 0, len(m.rows))
	for _, r := range m.rows {
		if active, _ := r[model.KeyIsActive].(bool); !active {
			continue
		}
		if filter != nil && !m.match(r, filter) {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *MasterData) match(r model.Record, filter *model.ListFilter) bool {
	if s := strings.TrimSpace(filter.Search); s != "" {
		v := strings.ToLower(fmt.Sprint(r[m.searchKey]))
		if !strings.Contains(v, strings.ToLower(s)) {
			return false
		}
	}
	for k, want := range filter.Filters {
		if want != "" && fmt.Sprint(r[k]) != want {
			return false
		}
	}
	return true
}

func (m *MasterData) Get(ctx context.Context, id string) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		return m.rows[i].Clone(), nil
	}
	return nil, apperrors.NotFound(m.dataSource, nil)
}

func (m *MasterData) Create(ctx context.Context, record model.Record) (model.Record, error) {
	m.mu.Lock()
	if err := m.Errors["create"]; err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.seq++
	r := record.Clone()
	r[model.KeyID] = fmt.Sprintf("%s-%d", m.table, m.seq)
	r[model.KeyCreatedAt] = time.Now().UTC()
	m.rows = append(m.rows, r)
	out := r.Clone()
	m.mu.Unlock()

	return out, m.publish(ctx, model.ChangeInsert)
}

func (m *MasterData) Update(ctx context.Context, id string, record model.Record) (model.Record, error) {
	m.mu.Lock()
	if err := m.Errors["update"]; err != nil {
		m.mu.Unlock()
		return nil, err
	}
	i := m.index(id)
	if i < 0 {
		m.mu.Unlock()
		return nil, apperrors.NotFound(m.dataSource, nil)
	}
	for k, v := range record {
		m.rows[i][k] = v
	}
	out := m.rows[i].Clone()
	m.mu.Unlock()

	return out, m.publish(ctx, model.ChangeUpdate)
}

func (m *MasterData) Delete(ctx context.Context, id string) (model.Record, error) {
	m.mu.Lock()
	if err := m.Errors["delete"]; err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if err := m.Errors["delete:"+id]; err != nil {
		m.mu.Unlock()
		return nil, err
	}
	i := m.index(id)
	if i < 0 {
		m.mu.Unlock()
		return nil, apperrors.NotFound(m.dataSource, nil)
	}
	if active, _ := m.rows[i][model.KeyIsActive].(bool); !active {
		m.mu.Unlock()
		return nil, apperrors.NotFound("active "+m.dataSource, nil)
	}
	m.rows[i][model.KeyIsActive] = false
	out := m.rows[i].Clone()
	m.mu.Unlock()

	return out, m.publish(ctx, model.ChangeDelete)
}

func (m *MasterData) CountActive(ctx context.Context) (int64, error) {
	rows, err := m.List(ctx, nil)
	return int64(len(rows)), err
}

func (m *MasterData) index(id string) int {
	for i, r := range m.rows {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

func (m *MasterData) publish(ctx context.Context, kind string) error {
	if m.broker == nil {
		return nil
	}
	return m.broker.Publish(ctx, messaging.ChangeChannel(m.table), model.ChangeEvent{
		Table: m.table,
		Type:  kind,
		At:    time.Now().UTC(),
	})
}

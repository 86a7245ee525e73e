// Package page binds one master-data list to its change feed. The Page owns
// the list; table sessions only read it.
package page

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/model"
	mdservice "github.com/jwalitptl/practice-admin/internal/service/masterdata"
	"github.com/jwalitptl/practice-admin/internal/table"
	"github.com/jwalitptl/practice-admin/pkg/logger"
	"github.com/jwalitptl/practice-admin/pkg/messaging"
)

type Page struct {
	cfg    *masterdata.Config
	svc    mdservice.Service
	broker messaging.Broker
	logger *logger.Logger

	mu      sync.RWMutex
	rows    []model.Record
	loading bool
	err     error
	filter  *model.ListFilter
	seq     uint64
	applied uint64
	closed  bool
	cancel  context.CancelFunc

	updates chan struct{}
	done    <-chan struct{}
}

var _ table.Backend = (*Page)(nil)

func New(cfg *masterdata.Config, svc mdservice.Service, broker messaging.Broker, log *logger.Logger) *Page {
	return &Page{
		cfg:     cfg,
		svc:     svc,
		broker:  broker,
		logger:  log.With("page").WithFields(map[string]interface{}{"data_source": cfg.DataSource}),
		rows:    []model.Record{},
		updates: make(chan struct{}, 1),
	}
}

func (p *Page) Config() *masterdata.Config { return p.cfg }

// Start subscribes to the table's change channel and performs the first fetch.
// Every change event triggers a full re-fetch.
func (p *Page) Start(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	done, err := messaging.Listen(subCtx, p.broker, messaging.ChangeChannel(p.cfg.Table), func([]byte) error {
		return p.Refresh(subCtx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to %s: %w", p.cfg.Table, err)
	}

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	return p.Refresh(ctx)
}

// SetFilter changes the server-side filter used by later fetches.
func (p *Page) SetFilter(filter *model.ListFilter) {
	p.mu.Lock()
	p.filter = filter
	p.mu.Unlock()
}

// Refresh re-fetches the whole list. Only the most recently started fetch
// is applied, and nothing is applied after Close.
func (p *Page) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.seq++
	seq := p.seq
	filter := p.filter
	p.loading = true
	p.mu.Unlock()
	p.signal()

	rows, err := p.svc.List(ctx, p.cfg.DataSource, filter)

	p.mu.Lock()
	if p.closed || seq < p.applied {
		p.mu.Unlock()
		return err
	}
	p.applied = seq
	if seq == p.seq {
		p.loading = false
	}
	p.err = err
	if err == nil {
		p.rows = rows
	}
	p.mu.Unlock()
	p.signal()
	return err
}

func (p *Page) signal() {
	select {
	case p.updates <- struct{}{}:
	default:
	}
}

// Rows returns the current list.
func (p *Page) Rows() []model.Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Record, len(p.rows))
	copy(out, p.rows)
	return out
}

func (p *Page) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Err is the error of the last applied fetch.
func (p *Page) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Updates signals whenever rows, loading or err change. Signals coalesce.
func (p *Page) Updates() <-chan struct{} {
	return p.updates
}

func (p *Page) Create(ctx context.Context, draft model.Record) (model.Record, error) {
	rec, err := p.svc.Create(ctx, p.cfg.DataSource, draft)
	if err != nil {
		return nil, err
	}
	p.refreshAfterWrite(ctx)
	return rec, nil
}

func (p *Page) Update(ctx context.Context, id string, draft model.Record) (model.Record, error) {
	rec, err := p.svc.Update(ctx, p.cfg.DataSource, id, draft)
	if err != nil {
		return nil, err
	}
	p.refreshAfterWrite(ctx)
	return rec, nil
}

func (p *Page) Delete(ctx context.Context, id string) error {
	if _, err := p.svc.Delete(ctx, p.cfg.DataSource, id); err != nil {
		return err
	}
	p.refreshAfterWrite(ctx)
	return nil
}

func (p *Page) refreshAfterWrite(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		p.logger.Error(err, "Failed to refresh after write")
	}
}

// Close stops listening for changes. A fetch already in flight completes but
// its result is discarded.
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
)

// DashboardSnapshot is what page views and the event stream render from.
type DashboardSnapshot struct {
	Data                   models.Bundle               `json:"data"`
	Filters                models.Filters              `json:"filters"`
	IsLoading              bool                        `json:"isLoading"`
	Status                 FetchStatus                 `json:"status"`
	LastError              string                      `json:"lastError,omitempty"`
	DisplayNames           models.FilterDisplayNames   `json:"displayNames"`
	AvailableQuestionTypes []models.QuestionTypeOption `json:"availableQuestionTypes"`
	CommittedAt            *time.Time                  `json:"committedAt,omitempty"`
	CommittedQuery         dto.GenericDataQuery        `json:"committedQuery"`
}

// DashboardContextConfig wires a dashboard context.
type DashboardContextConfig struct {
	Fetcher        GenericDataFetcher
	Debounce       time.Duration
	RequestTimeout time.Duration
	PageSize       int
	Scheduler      Scheduler
	Metrics        FetchMetrics
	Logger         *zap.Logger
	OnUnauthorized func()
	Now            func() time.Time
}

// DashboardContext owns the filters and the fetch coordinator of one console
// session. Lock order is DashboardContext.mu before FetchCoordinator.mu, so the
// sequence of dispatches always follows the order of filter mutations.
type DashboardContext struct {
	mu      sync.Mutex
	filters *FilterState
	coord   *FetchCoordinator
	logger  *zap.Logger

	listenersMu  sync.Mutex
	listeners    map[uint64]func(DashboardSnapshot)
	nextListener uint64

	done      chan struct{}
	closeOnce sync.Once
}

// NewDashboardContext constructs a context at default filters with an empty
// bundle. Call Start to issue the initial fetch.
func NewDashboardContext(cfg DashboardContextConfig) *DashboardContext {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &DashboardContext{
		filters:   NewFilterState(cfg.PageSize),
		logger:    logger,
		listeners: make(map[uint64]func(DashboardSnapshot)),
		done:      make(chan struct{}),
	}
	d.coord = NewFetchCoordinator(FetchCoordinatorConfig{
		Fetcher:        cfg.Fetcher,
		Debounce:       cfg.Debounce,
		RequestTimeout: cfg.RequestTimeout,
		Scheduler:      cfg.Scheduler,
		Metrics:        cfg.Metrics,
		Logger:         logger,
		OnUnauthorized: cfg.OnUnauthorized,
		OnSettled:      d.notify,
		Now:            cfg.Now,
	})
	return d
}

// Start dispatches the initial fetch for the default filters.
func (d *DashboardContext) Start() {
	d.mu.Lock()
	d.coord.Dispatch(d.queryFor(d.filters.Current()), FetchTriggerInitial)
	d.mu.Unlock()
	d.notify()
}

// Data returns the last committed bundle.
func (d *DashboardContext) Data() models.Bundle {
	return d.coord.State().Bundle
}

// Filters returns the current filters.
func (d *DashboardContext) Filters() models.Filters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filters.Current()
}

// IsLoading reports whether the latest dispatched fetch is still in flight.
func (d *DashboardContext) IsLoading() bool {
	return d.coord.State().Loading
}

// UpdateFilters merges patch into the filters. Filter field changes are
// debounced; page and page size changes fetch at once and drop any pending
// debounce. A patch that changes nothing does not fetch.
func (d *DashboardContext) UpdateFilters(patch models.FilterPatch) FilterChange {
	d.mu.Lock()
	change := d.filters.Apply(patch)
	d.scheduleLocked(change)
	d.mu.Unlock()

	if change.Changed {
		d.notify()
	}
	return change
}

// ClearAllFilters resets every filter and the page to defaults.
func (d *DashboardContext) ClearAllFilters() FilterChange {
	d.mu.Lock()
	change := d.filters.Clear()
	d.scheduleLocked(change)
	d.mu.Unlock()

	if change.Changed {
		d.notify()
	}
	return change
}

func (d *DashboardContext) scheduleLocked(change FilterChange) {
	switch {
	case !change.Changed:
	case change.FilterFields:
		d.coord.Debounce(d.fireDebounced)
	default:
		d.coord.CancelPending()
		d.coord.Dispatch(d.queryFor(d.filters.Current()), FetchTriggerImmediate)
	}
}

func (d *DashboardContext) fireDebounced(claim func() bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !claim() {
		return
	}
	d.coord.Dispatch(d.queryFor(d.filters.Current()), FetchTriggerDebounced)
}

// RefetchData fetches immediately. Without overrides it uses the current
// filters and drops any pending debounce. With overrides it fetches the filters
// overlaid with them, leaves the stored filters untouched and keeps the pending
// debounce armed.
func (d *DashboardContext) RefetchData(overrides *models.FilterPatch) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := d.filters.Current()
	if overrides == nil || overrides.IsEmpty() {
		d.coord.CancelPending()
		return d.coord.Dispatch(d.queryFor(current), FetchTriggerManual)
	}

	merged := overrides.Overlay(current)
	if merged.PageSize <= 0 {
		merged.PageSize = current.PageSize
	}
	if merged.Page < 1 {
		merged.Page = 1
	}
	return d.coord.Dispatch(d.queryFor(merged), FetchTriggerManual)
}

// GetFilterDisplayNames resolves the current filter ids against the bundle.
func (d *DashboardContext) GetFilterDisplayNames() models.FilterDisplayNames {
	filters := d.Filters()
	return models.DeriveDisplayNames(filters, d.Data())
}

// Snapshot returns a consistent copy of everything a view needs.
func (d *DashboardContext) Snapshot() DashboardSnapshot {
	filters := d.Filters()
	state := d.coord.State()

	snap := DashboardSnapshot{
		Data:                   state.Bundle,
		Filters:                filters,
		IsLoading:              state.Loading,
		Status:                 state.Status,
		DisplayNames:           models.DeriveDisplayNames(filters, state.Bundle),
		AvailableQuestionTypes: models.AvailableQuestionTypes(),
		CommittedQuery:         state.CommittedQuery,
	}
	if state.LastError != nil {
		snap.LastError = state.LastError.Error()
	}
	if !state.CommittedAt.IsZero() {
		committedAt := state.CommittedAt
		snap.CommittedAt = &committedAt
	}
	return snap
}

// LastError returns the error of the latest settled fetch, if it failed.
func (d *DashboardContext) LastError() error {
	return d.coord.State().LastError
}

// Subscribe registers fn to receive a snapshot after every filter mutation and
// every settlement of the latest fetch. The returned func unsubscribes.
func (d *DashboardContext) Subscribe(fn func(DashboardSnapshot)) func() {
	d.listenersMu.Lock()
	d.nextListener++
	id := d.nextListener
	d.listeners[id] = fn
	d.listenersMu.Unlock()

	return func() {
		d.listenersMu.Lock()
		delete(d.listeners, id)
		d.listenersMu.Unlock()
	}
}

func (d *DashboardContext) notify() {
	d.listenersMu.Lock()
	if len(d.listeners) == 0 {
		d.listenersMu.Unlock()
		return
	}
	fns := make([]func(DashboardSnapshot), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.listenersMu.Unlock()

	snap := d.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// Wait blocks until all dispatched fetches have settled.
func (d *DashboardContext) Wait() {
	d.coord.Wait()
}

// Done is closed once the context has been closed.
func (d *DashboardContext) Done() <-chan struct{} {
	return d.done
}

// Close stops the coordinator and drops every listener.
func (d *DashboardContext) Close() {
	d.closeOnce.Do(func() {
		d.coord.Stop()
		d.listenersMu.Lock()
		d.listeners = make(map[uint64]func(DashboardSnapshot))
		d.listenersMu.Unlock()
		close(d.done)
	})
}

// queryFor builds the request descriptor. The question type filter holds the
// selector index; an unknown index is dropped so the request matches all types.
func (d *DashboardContext) queryFor(f models.Filters) dto.GenericDataQuery {
	query := dto.GenericDataQuery{
		SessionID: f.SessionID,
		TermID:    f.TermID,
		ClassID:   f.ClassID,
		Page:      f.Page,
		PageSize:  f.PageSize,
	}
	if f.QuestionType != "" {
		if qt, ok := models.QuestionTypeForIndex(f.QuestionType); ok {
			query.QuestionType = qt
		} else {
			d.logger.Warn("unknown question type index, requesting all types", zap.String("questionType", f.QuestionType))
		}
	}
	return query
}

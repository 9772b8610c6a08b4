package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-console/internal/dto"
	"github.com/noah-isme/school-console/internal/models"
	appErrors "github.com/noah-isme/school-console/pkg/errors"
)

// GenericDataFetcher loads the reference data bundle from the school API.
type GenericDataFetcher interface {
	GenericData(ctx context.Context, query dto.GenericDataQuery) (dto.GenericDataResponse, error)
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler arms timers. The default implementation wraps time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClockScheduler struct{}

func (wallClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FetchTrigger names what caused a dispatch.
type FetchTrigger string

const (
	FetchTriggerInitial   FetchTrigger = "initial"
	FetchTriggerDebounced FetchTrigger = "debounced"
	FetchTriggerImmediate FetchTrigger = "immediate"
	FetchTriggerManual    FetchTrigger = "manual"
)

// FetchOutcome is how a fetch settled.
type FetchOutcome string

const (
	FetchOutcomeCommitted FetchOutcome = "committed"
	FetchOutcomeFailed    FetchOutcome = "failed"
	FetchOutcomeStale     FetchOutcome = "stale"
)

// FetchStatus is the coordinator state: idle, loading, committed.
type FetchStatus string

const (
	FetchStatusIdle      FetchStatus = "idle"
	FetchStatusLoading   FetchStatus = "loading"
	FetchStatusCommitted FetchStatus = "committed"
)

// FetchMetrics receives fetch instrumentation.
type FetchMetrics interface {
	ObserveFetchDispatched(trigger FetchTrigger)
	ObserveFetchSettled(outcome FetchOutcome, duration time.Duration)
}

// FetchState is a point-in-time copy of the coordinator state.
type FetchState struct {
	Bundle         models.Bundle
	Loading        bool
	Status         FetchStatus
	LastError      error
	CommittedAt    time.Time
	CommittedQuery dto.GenericDataQuery
	Latest         uint64
}

// FetchCoordinatorConfig wires a coordinator.
type FetchCoordinatorConfig struct {
	Fetcher        GenericDataFetcher
	Debounce       time.Duration
	RequestTimeout time.Duration
	Scheduler      Scheduler
	Metrics        FetchMetrics
	Logger         *zap.Logger
	// OnUnauthorized runs on its own goroutine when the latest fetch is rejected with 401.
	OnUnauthorized func()
	// OnSettled runs after the latest fetch settles, committed or failed.
	OnSettled func()
	Now       func() time.Time
}

// FetchCoordinator debounces, dispatches and commits genericData fetches. Each
// dispatch gets a sequence number and only the most recent one may commit.
type FetchCoordinator struct {
	fetcher        GenericDataFetcher
	debounce       time.Duration
	timeout        time.Duration
	scheduler      Scheduler
	metrics        FetchMetrics
	logger         *zap.Logger
	onUnauthorized func()
	onSettled      func()
	now            func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	seq      uint64
	latest   uint64
	timer    Timer
	timerGen uint64
	closed   bool
	state    FetchState
}

// NewFetchCoordinator constructs a coordinator holding an empty bundle.
func NewFetchCoordinator(cfg FetchCoordinatorConfig) *FetchCoordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = wallClockScheduler{}
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &FetchCoordinator{
		fetcher:        cfg.Fetcher,
		debounce:       debounce,
		timeout:        timeout,
		scheduler:      scheduler,
		metrics:        cfg.Metrics,
		logger:         logger,
		onUnauthorized: cfg.OnUnauthorized,
		onSettled:      cfg.OnSettled,
		now:            now,
		baseCtx:        ctx,
		cancel:         cancel,
		state: FetchState{
			Bundle: models.EmptyBundle(),
			Status: FetchStatusIdle,
		},
	}
}

// Debounce re-arms the single pending timer. When it fires, fire receives a
// claim func; fire must call it under the same lock it reads filters with and
// skip the dispatch when claim reports false.
func (c *FetchCoordinator) Debounce(fire func(claim func() bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopTimerLocked()
	gen := c.timerGen
	c.timer = c.scheduler.AfterFunc(c.debounce, func() {
		fire(func() bool { return c.claimPending(gen) })
	})
}

// CancelPending drops the pending debounce timer, if any.
func (c *FetchCoordinator) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

// HasPending reports whether a debounce timer is armed.
func (c *FetchCoordinator) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *FetchCoordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

// claimPending lets exactly one firing of the timer armed at gen through.
func (c *FetchCoordinator) claimPending(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.timer == nil || gen != c.timerGen {
		return false
	}
	c.timer = nil
	c.timerGen++
	return true
}

// Dispatch issues the request now and returns its sequence number, or 0 once
// the coordinator is stopped. Superseded requests are left to finish; their
// results are discarded on settlement.
func (c *FetchCoordinator) Dispatch(query dto.GenericDataQuery, trigger FetchTrigger) uint64 {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	c.seq++
	seq := c.seq
	c.latest = seq
	c.state.Latest = seq
	c.state.Loading = true
	c.state.Status = FetchStatusLoading
	c.wg.Add(1)
	ctx, cancel := context.WithTimeout(c.baseCtx, c.timeout)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.ObserveFetchDispatched(trigger)
	}
	c.logger.Debug("dispatch generic data fetch",
		zap.Uint64("seq", seq),
		zap.String("trigger", string(trigger)),
		zap.Int("page", query.Page),
	)

	go func() {
		defer c.wg.Done()
		defer cancel()
		start := c.now()
		resp, err := c.fetcher.GenericData(ctx, query)
		c.settle(seq, query, resp, err, c.now().Sub(start))
	}()
	return seq
}

func (c *FetchCoordinator) settle(seq uint64, query dto.GenericDataQuery, resp dto.GenericDataResponse, err error, duration time.Duration) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if seq != c.latest {
		latest := c.latest
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.ObserveFetchSettled(FetchOutcomeStale, duration)
		}
		c.logger.Debug("discard stale generic data result", zap.Uint64("seq", seq), zap.Uint64("latest", latest))
		return
	}

	outcome := FetchOutcomeCommitted
	unauthorized := false
	c.state.Loading = false
	if err != nil {
		outcome = FetchOutcomeFailed
		unauthorized = appErrors.IsUnauthorized(err)
		c.state.Status = FetchStatusIdle
		c.state.LastError = err
	} else {
		c.state.Bundle = resp.ToBundle(query)
		c.state.Status = FetchStatusCommitted
		c.state.LastError = nil
		c.state.CommittedAt = c.now().UTC()
		c.state.CommittedQuery = query
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.ObserveFetchSettled(outcome, duration)
	}
	if err != nil {
		level := c.logger.Warn
		if errors.Is(err, context.DeadlineExceeded) {
			level = c.logger.Error
		}
		level("generic data fetch failed", zap.Uint64("seq", seq), zap.Error(err))
	}
	if unauthorized && c.onUnauthorized != nil {
		go c.onUnauthorized()
	}
	if c.onSettled != nil {
		c.onSettled()
	}
}

// State returns a copy of the current state.
func (c *FetchCoordinator) State() FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until every dispatched fetch has settled.
func (c *FetchCoordinator) Wait() {
	c.wg.Wait()
}

// Stop cancels the pending timer and in-flight requests and waits for them.
// Results settling after Stop are discarded.
func (c *FetchCoordinator) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

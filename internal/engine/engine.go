// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine runs the autonomous research cycle: a countdown that
// periodically asks the AI gateway for recent ZLD developments, records
// each answer as a Report, and relays successful reports to Telegram.
//
// At most one cycle is in flight. Triggers that arrive while a cycle runs
// are dropped, not queued. No error escapes a cycle: gateway failures
// become failed Reports and relay failures become a delivery status.
package engine

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/zld-agent/internal/gateway"
	"github.com/pdiddy/zld-agent/internal/history"
	"github.com/pdiddy/zld-agent/internal/locale"
	"github.com/pdiddy/zld-agent/pkg/types"
)

// DefaultInterval is the countdown period between automatic cycles.
const DefaultInterval = 300 * time.Second

const (
	researchQuery = "Latest ZLD Technologies & Innovations"
	failedQuery   = "Error executing search"
	emptyFindings = "No text generated."

	// MsgMissingKey and MsgCycleFailed are the findings of failed reports.
	MsgMissingKey  = "خطا: API Key تنظیم نشده است."
	MsgCycleFailed = "خطا در اجرای فرآیند خودکار."
)

// tickInterval is one countdown step. Tests shrink it.
var tickInterval = time.Second

// Researcher runs the research prompt.
type Researcher interface {
	Research(ctx context.Context) (gateway.Findings, error)
}

// Relay forwards findings to a messaging destination.
type Relay interface {
	Send(ctx context.Context, text, destination, correlationID string) error
}

// DestinationFunc returns the current relay destination. It is called at
// relay time, so a change made while a cycle runs applies to that relay.
type DestinationFunc func() string

// Outcome is the result of one cycle.
type Outcome struct {
	Report types.Report

	// Err is the gateway error behind a failed report.
	Err error

	Delivery    types.DeliveryStatus
	DeliveryErr error
}

// Deps are the collaborators of an Engine. Researcher is required.
type Deps struct {
	Researcher  Researcher
	Relay       Relay
	Destination DestinationFunc
	History     *history.History
	Clock       *locale.Clock
	Logger      *zap.Logger

	// OnOutcome, when set, is called at the end of every cycle from the
	// goroutine that ran it.
	OnOutcome func(Outcome)
}

// Engine owns the countdown, the in-flight guard and the report history.
type Engine struct {
	cfg  types.EngineConfig
	deps Deps

	period int64

	// guard is a one-permit semaphore: TryAcquire is the Idle -> Running
	// transition.
	guard     *semaphore.Weighted
	running   atomic.Bool
	remaining atomic.Int64
	manual    chan struct{}
	inflight  sync.WaitGroup

	mu       sync.Mutex
	delivery types.DeliveryStatus
	lastID   int64

	now func() time.Time
}

// New returns an idle Engine with a full countdown.
func New(cfg types.EngineConfig, deps Deps) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if deps.History == nil {
		deps.History = history.New(cfg.MaxReports)
	}
	if deps.Clock == nil {
		deps.Clock = locale.MustClock(locale.DefaultTag)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Destination == nil {
		deps.Destination = func() string { return "" }
	}

	period := int64(cfg.Interval / time.Second)
	if period < 1 {
		period = 1
	}

	e := &Engine{
		cfg:    cfg,
		deps:   deps,
		period: period,
		guard:  semaphore.NewWeighted(1),
		manual: make(chan struct{}, 1),
		now:    time.Now,
	}
	e.remaining.Store(period)
	return e
}

// History returns the report history the engine appends to.
func (e *Engine) History() *history.History { return e.deps.History }

// Period returns the countdown length in seconds.
func (e *Engine) Period() int { return int(e.period) }

// Remaining returns the seconds left before the next automatic cycle.
func (e *Engine) Remaining() int { return int(e.remaining.Load()) }

// Running reports whether a cycle is in flight.
func (e *Engine) Running() bool { return e.running.Load() }

// LastDelivery returns the relay status of the most recent cycle.
func (e *Engine) LastDelivery() types.DeliveryStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.delivery
}

// Trigger runs one cycle on the calling goroutine. It returns ran=false
// without doing anything when a cycle is already in flight.
func (e *Engine) Trigger(ctx context.Context) (out Outcome, ran bool) {
	if !e.acquire() {
		return Outcome{}, false
	}
	defer e.release()
	return e.cycle(ctx), true
}

// acquire takes the guard and marks the engine running in one step, so
// Running never reports false while the permit is held.
func (e *Engine) acquire() bool {
	if !e.guard.TryAcquire(1) {
		e.deps.Logger.Debug("cycle already running, trigger dropped")
		return false
	}
	e.running.Store(true)
	return true
}

func (e *Engine) release() {
	e.running.Store(false)
	e.guard.Release(1)
}

// TriggerNow asks a running Run loop for a cycle without waiting for it.
// Requests made while one is already pending collapse into it.
func (e *Engine) TriggerNow() {
	select {
	case e.manual <- struct{}{}:
	default:
	}
}

// Run drives the countdown until ctx is done, firing a cycle whenever it
// runs out or TriggerNow is called. Cycles run on their own goroutine so
// the countdown keeps ticking; fires that land while a cycle is in flight
// are dropped. Run waits for an in-flight cycle before returning.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer e.inflight.Wait()

	e.deps.Logger.Info("research monitor started", zap.Int64("period_seconds", e.period))

	for {
		select {
		case <-ctx.Done():
			e.deps.Logger.Info("research monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			if e.tick() {
				e.fire(ctx)
			}
		case <-e.manual:
			e.remaining.Store(e.period)
			e.fire(ctx)
		}
	}
}

// tick advances the countdown by one second. When it would reach zero it
// wraps to the full period and reports that a cycle is due.
func (e *Engine) tick() bool {
	for {
		cur := e.remaining.Load()
		if cur <= 1 {
			if e.remaining.CompareAndSwap(cur, e.period) {
				return true
			}
			continue
		}
		if e.remaining.CompareAndSwap(cur, cur-1) {
			return false
		}
	}
}

func (e *Engine) fire(ctx context.Context) {
	if !e.acquire() {
		return
	}
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		defer e.release()
		e.cycle(ctx)
	}()
}

// cycle must be called with the guard held.
func (e *Engine) cycle(ctx context.Context) Outcome {
	defer e.remaining.Store(e.period)

	e.setDelivery(types.DeliveryNone)

	if e.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.CycleTimeout)
		defer cancel()
	}

	log := e.deps.Logger
	findings, err := e.deps.Researcher.Research(ctx)
	report := e.newReport(findings, err)
	e.deps.History.Prepend(report)

	out := Outcome{Report: report, Err: err}
	if err != nil {
		log.Error("research cycle failed", zap.String("report_id", report.ID), zap.Error(err))
	} else {
		log.Info("research cycle completed",
			zap.String("report_id", report.ID),
			zap.Int("sources", len(report.Sources)))
	}

	if report.Succeeded() && e.deps.Relay != nil {
		if dest := e.deps.Destination(); dest != "" {
			out.Delivery, out.DeliveryErr = e.relay(ctx, report, dest)
			e.setDelivery(out.Delivery)
		}
	}

	if e.deps.OnOutcome != nil {
		e.deps.OnOutcome(out)
	}
	return out
}

func (e *Engine) relay(ctx context.Context, report types.Report, dest string) (types.DeliveryStatus, error) {
	if err := e.deps.Relay.Send(ctx, report.Findings, dest, report.ID); err != nil {
		e.deps.Logger.Error("relay failed", zap.String("report_id", report.ID), zap.Error(err))
		return types.DeliveryError, err
	}
	return types.DeliverySent, nil
}

func (e *Engine) setDelivery(s types.DeliveryStatus) {
	e.mu.Lock()
	e.delivery = s
	e.mu.Unlock()
}

// newReport packages a gateway reply, or its failure, as a Report.
func (e *Engine) newReport(f gateway.Findings, err error) types.Report {
	now := e.now()
	r := types.Report{
		ID:        e.nextID(now),
		Timestamp: e.deps.Clock.Time(now),
		CreatedAt: now,
	}

	if err != nil {
		r.Status = types.StatusFailed
		r.SearchQuery = failedQuery
		r.Findings = failureMessage(err)
		r.Sources = []types.Source{}
		return r
	}

	r.Status = types.StatusSuccess
	r.SearchQuery = researchQuery
	r.Findings = f.Text
	if strings.TrimSpace(r.Findings) == "" {
		r.Findings = emptyFindings
	}
	r.Sources = append([]types.Source{}, f.Sources...)
	return r
}

// failureMessage picks the operator-facing text for a failed cycle.
func failureMessage(err error) string {
	if errors.Is(err, gateway.ErrMissingAPIKey) || strings.Contains(err.Error(), "API Key") {
		return MsgMissingKey
	}
	return MsgCycleFailed
}

// nextID derives a millisecond id that is strictly greater than the last.
func (e *Engine) nextID(t time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := t.UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	e.lastID = id
	return strconv.FormatInt(id, 10)
}

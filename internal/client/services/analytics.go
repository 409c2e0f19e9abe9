package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"golang.org/x/sync/errgroup"
)

type SeriesStatus int

const (
	StatusIdle SeriesStatus = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s SeriesStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("SeriesStatus(%d)", int(s))
}

// SeriesFetcher loads one analytics series.
type SeriesFetcher interface {
	Series(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error)
}

// SeriesSnapshot is a copy of a series' state. Points belong to DataWindow,
// which trails Window while a new selection is loading.
type SeriesSnapshot struct {
	Metric     models.Metric
	Window     models.Window
	DataWindow models.Window
	Status     SeriesStatus
	Points     []models.Point
	Err        error
	Epoch      uint64
}

// Series tracks the selected window of one metric and the data shown for
// it. Each Select or Load mints a new epoch and starts a fetch; a fetch
// result is applied only while its epoch is still current, so the data
// always belongs to the last selection regardless of arrival order.
type Series struct {
	metric models.Metric
	source SeriesFetcher
	logger logging.Logger

	mu         sync.Mutex
	idle       *sync.Cond
	inFlight   int
	window     models.Window
	dataWindow models.Window
	epoch      uint64
	status     SeriesStatus
	points     []models.Point
	err        error
	onChange   func(SeriesSnapshot)
}

func NewSeries(source SeriesFetcher, metric models.Metric, window models.Window, logger logging.Logger) *Series {
	if !window.Valid() {
		window = models.WindowWeek
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Series{
		metric: metric,
		source: source,
		logger: logger.With("series", metric),
		window: window,
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// OnChange registers fn to be called after every applied transition,
// outside the series lock.
func (s *Series) OnChange(fn func(SeriesSnapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Select switches to window and fetches it in the background. ctx must
// outlive the fetch.
func (s *Series) Select(ctx context.Context, window models.Window) error {
	if !window.Valid() {
		return models.ErrUnknownWindow
	}
	s.start(ctx, &window)
	return nil
}

// Load refetches the current window in the background.
func (s *Series) Load(ctx context.Context) {
	s.start(ctx, nil)
}

func (s *Series) start(ctx context.Context, window *models.Window) {
	s.mu.Lock()
	if window != nil {
		s.window = *window
	}
	s.epoch++
	epoch, w := s.epoch, s.window
	s.status = StatusLoading
	snap, fn := s.snapshotLocked(), s.onChange
	s.inFlight++
	s.mu.Unlock()

	s.logger.Debug(ctx, "series fetch started", "window", w, "epoch", epoch)
	if fn != nil {
		fn(snap)
	}
	go s.fetch(ctx, epoch, w)
}

func (s *Series) fetch(ctx context.Context, epoch uint64, window models.Window) {
	points, err := s.source.Series(ctx, s.metric, window)

	s.mu.Lock()
	s.inFlight--
	if s.inFlight == 0 {
		s.idle.Broadcast()
	}
	if epoch != s.epoch {
		current := s.epoch
		s.mu.Unlock()
		s.logger.Debug(ctx, "discarding stale series response", "window", window, "epoch", epoch, "current", current)
		return
	}
	if err != nil {
		s.status = StatusFailed
		s.err = err
		s.points = nil
		s.dataWindow = window
	} else {
		s.status = StatusReady
		s.err = nil
		s.points = points
		s.dataWindow = window
	}
	snap, fn := s.snapshotLocked(), s.onChange
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn(ctx, "series fetch failed", "window", window, "error", err)
	}
	if fn != nil {
		fn(snap)
	}
}

// Wait blocks until no fetch is in flight. It may run concurrently with
// Select and Load; a fetch started while waiting extends the wait.
func (s *Series) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inFlight > 0 {
		s.idle.Wait()
	}
}

func (s *Series) Snapshot() SeriesSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Series) snapshotLocked() SeriesSnapshot {
	var points []models.Point
	if s.points != nil {
		points = append(make([]models.Point, 0, len(s.points)), s.points...)
	}
	return SeriesSnapshot{
		Metric:     s.metric,
		Window:     s.window,
		DataWindow: s.dataWindow,
		Status:     s.status,
		Points:     points,
		Err:        s.err,
		Epoch:      s.epoch,
	}
}

// SummaryFetcher loads the dashboard counters.
type SummaryFetcher interface {
	Summary(ctx context.Context) (*models.Summary, error)
}

type DashboardSource interface {
	SeriesFetcher
	SummaryFetcher
}

var _ DashboardSource = (client.Client)(nil)

// Dashboard groups the summary counters with the order and sales series.
// The two series keep independent selections and epochs.
type Dashboard struct {
	Orders *Series
	Sales  *Series

	source SummaryFetcher
	logger logging.Logger

	mu           sync.Mutex
	summary      *models.Summary
	summaryErr   error
	summaryEpoch uint64
}

func NewDashboard(source DashboardSource, logger logging.Logger) *Dashboard {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dashboard{
		Orders: NewSeries(source, models.MetricOrders, models.WindowWeek, logger),
		Sales:  NewSeries(source, models.MetricSales, models.WindowWeek, logger),
		source: source,
		logger: logger.With("component", "dashboard"),
	}
}

// Refresh reloads the summary and both series concurrently and waits for
// all three. Each part records its own outcome; the first error is
// returned.
func (d *Dashboard) Refresh(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		return d.LoadSummary(ctx)
	})
	for _, s := range []*Series{d.Orders, d.Sales} {
		g.Go(func() error {
			s.Load(ctx)
			s.Wait()
			return s.Snapshot().Err
		})
	}

	return g.Wait()
}

// LoadSummary fetches the counters. As with series, only the most recently
// started fetch may replace them.
func (d *Dashboard) LoadSummary(ctx context.Context) error {
	d.mu.Lock()
	d.summaryEpoch++
	epoch := d.summaryEpoch
	d.mu.Unlock()

	sum, err := d.source.Summary(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if epoch != d.summaryEpoch {
		d.logger.Debug(ctx, "discarding stale summary response", "epoch", epoch, "current", d.summaryEpoch)
		return nil
	}
	if err != nil {
		d.summaryErr = err
		d.logger.Warn(ctx, "summary fetch failed", "error", err)
		return err
	}
	d.summary = sum
	d.summaryErr = nil
	return nil
}

// Summary returns the last loaded counters, nil before the first success,
// and the error of the latest attempt.
func (d *Dashboard) Summary() (*models.Summary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.summary == nil {
		return nil, d.summaryErr
	}
	out := *d.summary
	return &out, d.summaryErr
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedSource holds every series request until the test releases it.
type gatedSource struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	calls chan string
	fail  map[string]error
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		gates: map[string]chan struct{}{},
		calls: make(chan string, 16),
		fail:  map[string]error{},
	}
}

func key(metric models.Metric, window models.Window) string {
	return string(metric) + "/" + string(window)
}

func (g *gatedSource) gate(k string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[k]
	if !ok {
		ch = make(chan struct{})
		g.gates[k] = ch
	}
	return ch
}

func (g *gatedSource) release(k string) { close(g.gate(k)) }

func (g *gatedSource) Series(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error) {
	k := key(metric, window)
	g.calls <- k
	<-g.gate(k)

	g.mu.Lock()
	err := g.fail[k]
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []models.Point{{Label: k, Value: 1}}, nil
}

func (g *gatedSource) Summary(ctx context.Context) (*models.Summary, error) {
	return &models.Summary{TotalOrders: 4}, nil
}

func waitCall(t *testing.T, g *gatedSource) string {
	t.Helper()
	select {
	case k := <-g.calls:
		return k
	case <-time.After(2 * time.Second):
		t.Fatal("series request was not issued")
		return ""
	}
}

func TestSeries_StartsIdle(t *testing.T) {
	s := NewSeries(newGatedSource(), models.MetricOrders, "", nil)
	snap := s.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Equal(t, models.WindowWeek, snap.Window)
	assert.Nil(t, snap.Points)
}

func TestSeries_LastSelectionWinsRegardlessOfArrival(t *testing.T) {
	src := newGatedSource()
	s := NewSeries(src, models.MetricOrders, models.WindowWeek, nil)
	ctx := context.Background()

	require.NoError(t, s.Select(ctx, models.WindowWeek))
	waitCall(t, src)
	require.NoError(t, s.Select(ctx, models.WindowMonth))
	waitCall(t, src)
	require.NoError(t, s.Select(ctx, models.WindowYear))
	waitCall(t, src)

	assert.Equal(t, StatusLoading, s.Snapshot().Status)

	// year arrives first, then month, week last
	src.release("orders/year")
	src.release("orders/month")
	src.release("orders/week")
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, models.WindowYear, snap.Window)
	assert.Equal(t, models.WindowYear, snap.DataWindow)
	assert.Equal(t, []models.Point{{Label: "orders/year", Value: 1}}, snap.Points)
	assert.Equal(t, uint64(3), snap.Epoch)
}

func TestSeries_EarlierResponsesAfterLaterDoNotApply(t *testing.T) {
	src := newGatedSource()
	s := NewSeries(src, models.MetricSales, models.WindowWeek, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var applied []models.Window
	s.OnChange(func(snap SeriesSnapshot) {
		if snap.Status == StatusReady {
			mu.Lock()
			applied = append(applied, snap.DataWindow)
			mu.Unlock()
		}
	})

	require.NoError(t, s.Select(ctx, models.WindowWeek))
	waitCall(t, src)
	require.NoError(t, s.Select(ctx, models.WindowMonth))
	waitCall(t, src)

	src.release("sales/month")
	src.release("sales/week")
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.Window{models.WindowMonth}, applied)
}

func TestSeries_FailureThenRecovery(t *testing.T) {
	src := newGatedSource()
	src.fail["orders/month"] = client.ErrUnavailable
	s := NewSeries(src, models.MetricOrders, models.WindowWeek, nil)
	ctx := context.Background()

	require.NoError(t, s.Select(ctx, models.WindowMonth))
	waitCall(t, src)
	src.release("orders/month")
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.ErrorIs(t, snap.Err, client.ErrUnavailable)
	assert.Nil(t, snap.Points)

	require.NoError(t, s.Select(ctx, models.WindowWeek))
	waitCall(t, src)
	src.release("orders/week")
	s.Wait()

	snap = s.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.NoError(t, snap.Err)
}

func TestSeries_SelectRejectsUnknownWindow(t *testing.T) {
	src := newGatedSource()
	s := NewSeries(src, models.MetricOrders, models.WindowWeek, nil)

	require.ErrorIs(t, s.Select(context.Background(), models.Window("decade")), models.ErrUnknownWindow)
	assert.Equal(t, StatusIdle, s.Snapshot().Status)
	assert.Equal(t, uint64(0), s.Snapshot().Epoch)
}

func TestDashboard_SeriesAreIndependent(t *testing.T) {
	src := newGatedSource()
	d := NewDashboard(src, nil)
	ctx := context.Background()

	d.Sales.Load(ctx)
	waitCall(t, src)
	salesBefore := d.Sales.Snapshot()

	require.NoError(t, d.Orders.Select(ctx, models.WindowMonth))
	waitCall(t, src)
	require.NoError(t, d.Orders.Select(ctx, models.WindowYear))
	waitCall(t, src)

	salesNow := d.Sales.Snapshot()
	assert.Equal(t, salesBefore.Epoch, salesNow.Epoch)
	assert.Equal(t, models.WindowWeek, salesNow.Window)
	assert.Equal(t, StatusLoading, salesNow.Status)

	// the sales request in flight before the order changes still applies
	src.release("sales/week")
	d.Sales.Wait()
	assert.Equal(t, []models.Point{{Label: "sales/week", Value: 1}}, d.Sales.Snapshot().Points)

	src.release("orders/month")
	src.release("orders/year")
	d.Orders.Wait()
	assert.Equal(t, models.WindowYear, d.Orders.Snapshot().DataWindow)
	assert.Equal(t, models.WindowWeek, d.Sales.Snapshot().Window)
}

func TestDashboard_Refresh(t *testing.T) {
	fc := &fakeClient{
		SummaryRet: &models.Summary{TotalCategories: 3, TotalProducts: 12, TotalOrders: 40, TotalUsers: 5},
		SeriesFn: func(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error) {
			return []models.Point{{Label: "Mon", Value: 2}}, nil
		},
	}
	d := NewDashboard(fc, nil)

	require.NoError(t, d.Refresh(context.Background()))

	sum, err := d.Summary()
	require.NoError(t, err)
	assert.Equal(t, 12, sum.TotalProducts)
	assert.Equal(t, StatusReady, d.Orders.Snapshot().Status)
	assert.Equal(t, StatusReady, d.Sales.Snapshot().Status)
}

func TestDashboard_RefreshReportsFailureButKeepsOtherParts(t *testing.T) {
	fc := &fakeClient{
		SummaryErr: client.ErrUnavailable,
		SeriesFn: func(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error) {
			if metric == models.MetricSales {
				return nil, client.ErrNotFound
			}
			return []models.Point{{Label: "Mon", Value: 2}}, nil
		},
	}
	d := NewDashboard(fc, nil)

	err := d.Refresh(context.Background())
	require.Error(t, err)

	sum, serr := d.Summary()
	assert.Nil(t, sum)
	assert.ErrorIs(t, serr, client.ErrUnavailable)
	assert.Equal(t, StatusReady, d.Orders.Snapshot().Status)
	assert.Equal(t, StatusFailed, d.Sales.Snapshot().Status)
}

func TestSeriesStatus_String(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "SeriesStatus(9)", SeriesStatus(9).String())
}

// orderedSummaries answers the n-th summary request with TotalOrders n once
// that request's gate is released.
type orderedSummaries struct {
	mu    sync.Mutex
	n     int
	gates map[int]chan struct{}
	calls chan int
}

func (o *orderedSummaries) gate(n int) chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	ch, ok := o.gates[n]
	if !ok {
		ch = make(chan struct{})
		o.gates[n] = ch
	}
	return ch
}

func (o *orderedSummaries) Summary(ctx context.Context) (*models.Summary, error) {
	o.mu.Lock()
	o.n++
	n := o.n
	o.mu.Unlock()

	o.calls <- n
	<-o.gate(n)
	return &models.Summary{TotalOrders: n}, nil
}

func (o *orderedSummaries) Series(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error) {
	return nil, nil
}

func TestDashboard_LatestSummaryWins(t *testing.T) {
	src := &orderedSummaries{gates: map[int]chan struct{}{}, calls: make(chan int, 4)}
	d := NewDashboard(src, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, d.LoadSummary(ctx))
	}()
	require.Equal(t, 1, <-src.calls)

	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, d.LoadSummary(ctx))
	}()
	require.Equal(t, 2, <-src.calls)

	close(src.gate(2))
	require.Eventually(t, func() bool {
		sum, _ := d.Summary()
		return sum != nil
	}, 2*time.Second, time.Millisecond)

	close(src.gate(1))
	wg.Wait()

	sum, err := d.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalOrders)
}

type instantSeries struct{}

func (instantSeries) Series(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error) {
	return []models.Point{{Label: string(window), Value: 1}}, nil
}

func TestSeries_WaitWhileSelecting(t *testing.T) {
	s := NewSeries(instantSeries{}, models.MetricSales, models.WindowWeek, nil)
	ctx := context.Background()
	windows := models.Windows()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 100 {
			assert.NoError(t, s.Select(ctx, windows[i%len(windows)]))
		}
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			s.Wait()
		}
	}()
	wg.Wait()
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, snap.Window, snap.DataWindow)
}

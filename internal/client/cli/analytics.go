package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
)

// Dashboard reloads the counters and both charts and prints whatever
// arrived. A part that failed is shown as failed; the rest still renders.
func (a *App) Dashboard(ctx context.Context) error {
	err := a.dashboard.Refresh(ctx)

	sum, sumErr := a.dashboard.Summary()
	switch {
	case sum != nil:
		printSummary(a.out, sum)
	case sumErr != nil:
		fmt.Fprintln(a.out, "Summary unavailable:", services.Message(sumErr))
	}
	fmt.Fprintln(a.out)
	printChart(a.out, "Orders", a.dashboard.Orders.Snapshot())
	fmt.Fprintln(a.out)
	printChart(a.out, "Sales", a.dashboard.Sales.Snapshot())

	if errors.Is(err, client.ErrUnauthorized) {
		return a.afterCommand(err)
	}
	return nil
}

func (a *App) Orders(ctx context.Context, args []string) error {
	return a.seriesCommand(ctx, a.dashboard.Orders, "Orders", args)
}

func (a *App) Sales(ctx context.Context, args []string) error {
	return a.seriesCommand(ctx, a.dashboard.Sales, "Sales", args)
}

// seriesCommand switches the chart to the window named in args, or loads
// the current one the first time, and prints it once the fetch settles.
func (a *App) seriesCommand(ctx context.Context, s *services.Series, title string, args []string) error {
	switch len(args) {
	case 0:
		if s.Snapshot().Status == services.StatusIdle {
			s.Load(ctx)
		}
	case 1:
		w, err := models.ParseWindow(args[0])
		if err != nil {
			return err
		}
		if err := s.Select(ctx, w); err != nil {
			return err
		}
	default:
		return usageError(strings.ToLower(title) + " [week | month | year]")
	}

	s.Wait()
	snap := s.Snapshot()
	printChart(a.out, title, snap)

	if errors.Is(snap.Err, client.ErrUnauthorized) {
		return a.afterCommand(snap.Err)
	}
	return nil
}

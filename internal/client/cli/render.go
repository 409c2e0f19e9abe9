package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
)

const (
	chartWidth     = 40
	maxCellRunes   = 40
	chartBarSymbol = "█"
)

var numbers = message.NewPrinter(language.English)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printView renders one page of a list followed by a position footer.
func printView[T models.Resource](w io.Writer, v services.ListView[T], table func(io.Writer, []T)) {
	if v.Loading {
		fmt.Fprintln(w, "Loading...")
	}
	if len(v.Items) == 0 {
		if v.SearchTerm != "" {
			fmt.Fprintf(w, "No items match %q.\n", v.SearchTerm)
		} else {
			fmt.Fprintln(w, "No items.")
		}
	} else {
		table(w, v.Items)
	}

	footer := fmt.Sprintf("Page %d/%d (%d of %d items", v.Page, max(v.TotalPages, 1), v.FilteredCount, v.TotalCount)
	if v.SearchTerm != "" {
		footer += fmt.Sprintf(", search %q", v.SearchTerm)
	}
	fmt.Fprintln(w, footer+")")

	if v.Err != nil {
		fmt.Fprintln(w, "Last reload failed:", services.Message(v.Err))
	}
}

func printCategories(w io.Writer, items []models.Category) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, c := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, cell(c.Name), cell(c.GetDescription()))
	}
	_ = tw.Flush()
}

func printProducts(w io.Writer, items []models.Product, index *services.CategoryIndex) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK\tCATEGORY")
	for _, p := range items {
		category := services.ProductCategoryName(p, index)
		if category == "" {
			category = "#" + strconv.FormatInt(p.CategoryID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", p.ID, cell(p.Name), p.Price.String(), p.Stock, cell(category))
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s *models.Summary) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Categories\t%s\n", numbers.Sprintf("%d", s.TotalCategories))
	fmt.Fprintf(tw, "Products\t%s\n", numbers.Sprintf("%d", s.TotalProducts))
	fmt.Fprintf(tw, "Orders\t%s\n", numbers.Sprintf("%d", s.TotalOrders))
	fmt.Fprintf(tw, "Users\t%s\n", numbers.Sprintf("%d", s.TotalUsers))
	if s.TotalSales != 0 {
		fmt.Fprintf(tw, "Sales\t%s\n", numbers.Sprintf("%.2f", s.TotalSales))
	}
	_ = tw.Flush()
}

// printChart draws a series as horizontal bars scaled to the largest value.
func printChart(w io.Writer, title string, snap services.SeriesSnapshot) {
	fmt.Fprintf(w, "%s (%s)\n", title, snap.Window)

	switch snap.Status {
	case services.StatusIdle:
		fmt.Fprintln(w, "  Not loaded.")
		return
	case services.StatusLoading:
		fmt.Fprintln(w, "  Loading...")
		return
	case services.StatusFailed:
		fmt.Fprintln(w, "  Could not load data:", services.Message(snap.Err))
		return
	}

	if len(snap.Points) == 0 {
		fmt.Fprintln(w, "  No data.")
		return
	}

	peak := 0.0
	for _, p := range snap.Points {
		peak = math.Max(peak, p.Value)
	}

	format := "%.0f"
	if snap.Metric == models.MetricSales {
		format = "%.2f"
	}

	tw := newTable(w)
	for _, p := range snap.Points {
		fmt.Fprintf(tw, "  %s\t%s %s\n", p.Label, bar(p.Value, peak), numbers.Sprintf(format, p.Value))
	}
	_ = tw.Flush()
}

func bar(v, peak float64) string {
	if peak <= 0 || v <= 0 {
		return ""
	}
	n := int(math.Round(v / peak * chartWidth))
	return strings.Repeat(chartBarSymbol, n)
}

// cell keeps table rows on one line.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxCellRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxCellRunes-3]) + "..."
}

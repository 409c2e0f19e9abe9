package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
)

// screen binds a resource list to the way its rows and forms look.
type screen[T models.Resource, F any] struct {
	name   string
	list   *services.ResourceList[T, F]
	table  func(w io.Writer, items []T)
	fields func(T) F
	form   func(F) []fieldPrompt
	apply  func(*F, map[string]string) error
	label  func(T) string
}

func (a *App) categoryScreen() screen[models.Category, models.CategoryFields] {
	return screen[models.Category, models.CategoryFields]{
		name:   "categories",
		list:   a.categories,
		table:  printCategories,
		fields: models.Category.Fields,
		form: func(f models.CategoryFields) []fieldPrompt {
			return []fieldPrompt{
				{Name: "name", Label: "Name", Current: f.Name},
				{Name: "description", Label: "Description", Current: f.Description},
			}
		},
		apply: (*models.CategoryFields).Apply,
		label: func(c models.Category) string { return c.Name },
	}
}

func (a *App) productScreen() screen[models.Product, models.ProductFields] {
	index := a.index
	return screen[models.Product, models.ProductFields]{
		name: "products",
		list: a.products,
		table: func(w io.Writer, items []models.Product) {
			printProducts(w, items, index)
		},
		fields: models.Product.Fields,
		form: func(f models.ProductFields) []fieldPrompt {
			category := ""
			if f.CategoryID != 0 {
				category = strconv.FormatInt(f.CategoryID, 10)
			}
			return []fieldPrompt{
				{Name: "name", Label: "Name", Current: f.Name},
				{Name: "description", Label: "Description", Current: f.Description},
				{Name: "price", Label: "Price", Current: f.Price.String()},
				{Name: "stock", Label: "Stock", Current: strconv.Itoa(f.Stock)},
				{Name: "category_id", Label: "Category id", Current: category},
			}
		},
		apply: (*models.ProductFields).Apply,
		label: func(p models.Product) string { return p.Name },
	}
}

func (a *App) Categories(ctx context.Context, args []string) error {
	return a.afterCommand(runScreen(ctx, a, a.categoryScreen(), args))
}

// Products also keeps the category index warm, since product rows show
// category names and product forms are checked against known categories.
func (a *App) Products(ctx context.Context, args []string) error {
	if !a.categories.Loaded() {
		if err := a.categories.Load(ctx); err != nil {
			a.logger.Warn(ctx, "category names unavailable", "error", err)
		}
	}
	return a.afterCommand(runScreen(ctx, a, a.productScreen(), args))
}

// afterCommand drops screen state when the backend ended the session
// during the command.
func (a *App) afterCommand(err error) error {
	if errors.Is(err, client.ErrUnauthorized) && !a.isLoggedIn() {
		a.resetScreens()
	}
	return err
}

func runScreen[T models.Resource, F any](ctx context.Context, a *App, s screen[T, F], args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	if sub != "reload" && !s.list.Loaded() {
		if err := s.list.Load(ctx); err != nil {
			return err
		}
	}

	switch sub {
	case "list", "ls":

	case "reload":
		if err := s.list.Load(ctx); err != nil {
			return err
		}

	case "search":
		s.list.SetSearchTerm(strings.Join(args, " "))

	case "page":
		n, err := intArg(args, s.name+" page <n>")
		if err != nil {
			return err
		}
		if !s.list.GoToPage(n) {
			fmt.Fprintf(a.out, "No page %d.\n", n)
		}

	case "next":
		if !s.list.NextPage() {
			fmt.Fprintln(a.out, "Already on the last page.")
		}

	case "prev":
		if !s.list.PrevPage() {
			fmt.Fprintln(a.out, "Already on the first page.")
		}

	case "size":
		n, err := intArg(args, s.name+" size <n>")
		if err != nil {
			return err
		}
		if err := s.list.SetPageSize(n); err != nil {
			return err
		}

	case "add":
		var fields F
		if err := fillFields(a, s, &fields, args); err != nil {
			return err
		}
		if err := s.list.Create(ctx, fields); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Saved.")

	case "edit":
		id, err := idArg(args, s.name+" edit <id> [field=value ...]")
		if err != nil {
			return err
		}
		item, ok := s.list.Find(id)
		if !ok {
			return client.ErrNotFound
		}
		fields := s.fields(item)
		if err := fillFields(a, s, &fields, args[1:]); err != nil {
			return err
		}
		if err := s.list.Update(ctx, id, fields); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Saved.")

	case "delete", "rm":
		id, err := idArg(args, s.name+" delete <id>")
		if err != nil {
			return err
		}
		what := fmt.Sprintf("#%d", id)
		if item, ok := s.list.Find(id); ok {
			what = fmt.Sprintf("%q", s.label(item))
		}
		ok, err := confirm(a.reader, "Delete "+what+"?", a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
		if err := s.list.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Deleted.")

	default:
		return usageError(s.name + " [list | search <term> | page <n> | next | prev | size <n> | add | edit <id> | delete <id> | reload]")
	}

	printView(a.out, s.list.View(), s.table)
	return nil
}

// fillFields overlays name=value pairs from the command line, or asks for
// each field when none were given.
func fillFields[T models.Resource, F any](a *App, s screen[T, F], fields *F, args []string) error {
	var values map[string]string
	var err error
	if len(args) > 0 {
		values, err = models.ParseFieldPairs(args)
	} else {
		values, err = promptFields(a.reader, a.out, s.form(*fields))
	}
	if err != nil {
		return err
	}
	return s.apply(fields, values)
}

func intArg(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, usageError(usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, usageError(usage)
	}
	return n, nil
}

func idArg(args []string, usage string) (int64, error) {
	if len(args) < 1 {
		return 0, usageError(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(usage)
	}
	return id, nil
}

package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

type (
	CategoryList = ResourceList[models.Category, models.CategoryFields]
	ProductList  = ResourceList[models.Product, models.ProductFields]
)

// CategoryIndex maps category ids to names. It is fed by the category list
// and consulted by the product list for search and validation.
type CategoryIndex struct {
	mu     sync.RWMutex
	names  map[int64]string
	filled bool
}

func NewCategoryIndex() *CategoryIndex {
	return &CategoryIndex{names: map[int64]string{}}
}

// Replace swaps the whole index for the given categories.
func (x *CategoryIndex) Replace(categories []models.Category) {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	x.mu.Lock()
	x.names = names
	x.filled = true
	x.mu.Unlock()
}

func (x *CategoryIndex) Name(id int64) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	name, ok := x.names[id]
	return name, ok
}

// Populated reports whether the index has been filled at least once.
func (x *CategoryIndex) Populated() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.filled
}

type categoryAPI struct {
	client client.Client
}

func (a categoryAPI) List(ctx context.Context) ([]models.Category, error) {
	return a.client.ListCategories(ctx)
}

func (a categoryAPI) Create(ctx context.Context, f models.CategoryFields) error {
	if err := validateCategory(f); err != nil {
		return err
	}
	return a.client.CreateResource(ctx, models.KindCategories, f)
}

func (a categoryAPI) Update(ctx context.Context, id int64, f models.CategoryFields) error {
	if err := validateCategory(f); err != nil {
		return err
	}
	return a.client.UpdateResource(ctx, models.KindCategories, id, f)
}

func (a categoryAPI) Delete(ctx context.Context, id int64) error {
	return a.client.DeleteResource(ctx, models.KindCategories, id)
}

func (a categoryAPI) SearchFields(c models.Category) []string {
	return []string{c.Name, c.GetDescription()}
}

func validateCategory(f models.CategoryFields) error {
	if strings.TrimSpace(f.Name) == "" {
		return client.NewValidationError("name", "The name field is required.")
	}
	return nil
}

// NewCategoryList builds the category list. When index is not nil it is
// refreshed on every successful load.
func NewCategoryList(c client.Client, index *CategoryIndex, pageSize int, logger logging.Logger) *CategoryList {
	if logger == nil {
		logger = logging.NewNop()
	}
	l := NewResourceList[models.Category, models.CategoryFields](categoryAPI{client: c}, pageSize, logger.With("list", models.KindCategories))
	if index != nil {
		l.OnLoaded(index.Replace)
	}
	return l
}

type productAPI struct {
	client client.Client
	index  *CategoryIndex
}

func (a productAPI) List(ctx context.Context) ([]models.Product, error) {
	return a.client.ListProducts(ctx)
}

func (a productAPI) Create(ctx context.Context, f models.ProductFields) error {
	if err := a.validate(f); err != nil {
		return err
	}
	return a.client.CreateResource(ctx, models.KindProducts, f)
}

func (a productAPI) Update(ctx context.Context, id int64, f models.ProductFields) error {
	if err := a.validate(f); err != nil {
		return err
	}
	return a.client.UpdateResource(ctx, models.KindProducts, id, f)
}

func (a productAPI) Delete(ctx context.Context, id int64) error {
	return a.client.DeleteResource(ctx, models.KindProducts, id)
}

func (a productAPI) SearchFields(p models.Product) []string {
	return []string{p.Name, p.GetDescription(), a.categoryName(p)}
}

func (a productAPI) categoryName(p models.Product) string {
	if name := p.EmbeddedCategoryName(); name != "" {
		return name
	}
	if a.index != nil {
		if name, ok := a.index.Name(p.CategoryID); ok {
			return name
		}
	}
	return ""
}

// validate checks what can be checked without the backend. The category
// reference is only verified once the index has been loaded.
func (a productAPI) validate(f models.ProductFields) error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return client.NewValidationError("name", "The name field is required.")
	case f.Price.IsNegative():
		return client.NewValidationError("price", "The price must be at least 0.")
	case f.Stock < 0:
		return client.NewValidationError("stock", "The stock must be at least 0.")
	case f.CategoryID <= 0:
		return client.NewValidationError("category_id", "The category id field is required.")
	}
	if a.index != nil && a.index.Populated() {
		if _, ok := a.index.Name(f.CategoryID); !ok {
			return client.NewValidationError("category_id", "The selected category id is invalid.")
		}
	}
	return nil
}

// ProductCategoryName resolves the display name of a product's category.
func ProductCategoryName(p models.Product, index *CategoryIndex) string {
	return productAPI{index: index}.categoryName(p)
}

func NewProductList(c client.Client, index *CategoryIndex, pageSize int, logger logging.Logger) *ProductList {
	if logger == nil {
		logger = logging.NewNop()
	}
	return NewResourceList[models.Product, models.ProductFields](productAPI{client: c, index: index}, pageSize, logger.With("list", models.KindProducts))
}

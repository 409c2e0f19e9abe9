package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

const DefaultPageSize = 5

var ErrInvalidPageSize = errors.New("page size must be positive")

// ResourceAPI is what a list needs from the backend for one resource kind.
type ResourceAPI[T models.Resource, F any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, fields F) error
	Update(ctx context.Context, id int64, fields F) error
	Delete(ctx context.Context, id int64) error
	// SearchFields returns the texts the search term is matched against.
	SearchFields(item T) []string
}

// ListView is a derived snapshot of a list. Page is always within
// [1, max(TotalPages, 1)].
type ListView[T models.Resource] struct {
	Items         []T
	Page          int
	PageSize      int
	TotalPages    int
	FilteredCount int
	TotalCount    int
	SearchTerm    string
	Loading       bool
	Loaded        bool
	Err           error
}

// ResourceList browses, filters, paginates and mutates one resource kind.
// Every successful mutation is followed by a full reload.
type ResourceList[T models.Resource, F any] struct {
	api    ResourceAPI[T, F]
	logger logging.Logger

	mu         sync.Mutex
	items      []T
	loaded     bool
	searchTerm string
	page       int
	pageSize   int
	epoch      uint64
	inFlight   int
	lastErr    error
	onLoaded   func([]T)
}

func NewResourceList[T models.Resource, F any](api ResourceAPI[T, F], pageSize int, logger logging.Logger) *ResourceList[T, F] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ResourceList[T, F]{
		api:      api,
		logger:   logger,
		page:     1,
		pageSize: pageSize,
	}
}

// OnLoaded registers fn to receive every collection the list adopts.
func (l *ResourceList[T, F]) OnLoaded(fn func([]T)) {
	l.mu.Lock()
	l.onLoaded = fn
	l.mu.Unlock()
}

// Load fetches the whole collection. Only the most recently started load
// may replace the collection; results of earlier ones are dropped. On
// failure the previous collection stays.
func (l *ResourceList[T, F]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.epoch++
	epoch := l.epoch
	l.inFlight++
	l.mu.Unlock()

	items, err := l.api.List(ctx)

	l.mu.Lock()
	l.inFlight--
	if epoch != l.epoch {
		l.mu.Unlock()
		l.logger.Debug(ctx, "discarding stale list response", "epoch", epoch, "error", err)
		return nil
	}
	if err != nil {
		l.lastErr = err
		l.mu.Unlock()
		l.logger.Warn(ctx, "list load failed", "error", err)
		return err
	}

	l.items = items
	l.loaded = true
	l.lastErr = nil
	hook := l.onLoaded
	l.mu.Unlock()

	l.logger.Debug(ctx, "list loaded", "count", len(items))
	if hook != nil {
		hook(items)
	}
	return nil
}

// SetSearchTerm changes the filter and returns to the first page.
func (l *ResourceList[T, F]) SetSearchTerm(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.searchTerm = term
	l.page = 1
}

// SetPageSize changes the page size and returns to the first page.
func (l *ResourceList[T, F]) SetPageSize(n int) error {
	if n <= 0 {
		return ErrInvalidPageSize
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pageSize = n
	l.page = 1
	return nil
}

// GoToPage moves to page n. Outside [1, TotalPages] it does nothing and
// returns false.
func (l *ResourceList[T, F]) GoToPage(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := totalPages(len(l.filteredLocked()), l.pageSize)
	if n < 1 || n > total {
		return false
	}
	l.page = n
	return true
}

func (l *ResourceList[T, F]) NextPage() bool {
	return l.GoToPage(l.View().Page + 1)
}

func (l *ResourceList[T, F]) PrevPage() bool {
	return l.GoToPage(l.View().Page - 1)
}

// View derives the current page. A page left beyond the end, for example
// after the last item of the last page was deleted, is clamped and kept.
func (l *ResourceList[T, F]) View() ListView[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	filtered := l.filteredLocked()
	total := totalPages(len(filtered), l.pageSize)
	l.page = clampPage(l.page, total)

	start := (l.page - 1) * l.pageSize
	end := min(start+l.pageSize, len(filtered))
	pageItems := make([]T, 0, end-start)
	pageItems = append(pageItems, filtered[start:end]...)

	return ListView[T]{
		Items:         pageItems,
		Page:          l.page,
		PageSize:      l.pageSize,
		TotalPages:    total,
		FilteredCount: len(filtered),
		TotalCount:    len(l.items),
		SearchTerm:    l.searchTerm,
		Loading:       l.inFlight > 0,
		Loaded:        l.loaded,
		Err:           l.lastErr,
	}
}

func (l *ResourceList[T, F]) filteredLocked() []T {
	if l.searchTerm == "" {
		return l.items
	}
	out := make([]T, 0, len(l.items))
	for _, it := range l.items {
		if l.matches(it) {
			out = append(out, it)
		}
	}
	return out
}

func (l *ResourceList[T, F]) matches(item T) bool {
	for _, field := range l.api.SearchFields(item) {
		if common.ContainsFold(field, l.searchTerm) {
			return true
		}
	}
	return false
}

// Find returns the loaded item with the given id.
func (l *ResourceList[T, F]) Find(id int64) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.GetID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Loaded reports whether any load has succeeded yet.
func (l *ResourceList[T, F]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

func (l *ResourceList[T, F]) Create(ctx context.Context, fields F) error {
	if err := l.api.Create(ctx, fields); err != nil {
		return err
	}
	return l.Load(ctx)
}

func (l *ResourceList[T, F]) Update(ctx context.Context, id int64, fields F) error {
	if err := l.api.Update(ctx, id, fields); err != nil {
		return err
	}
	return l.Load(ctx)
}

func (l *ResourceList[T, F]) Delete(ctx context.Context, id int64) error {
	if err := l.api.Delete(ctx, id); err != nil {
		return err
	}
	return l.Load(ctx)
}

func totalPages(count, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/localdb"
	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client with overridable hooks. Unset hooks
// succeed with zero values.
type fakeClient struct {
	mu sync.Mutex

	LoginFn    func(ctx context.Context, identifier, password string) (*models.AuthResult, error)
	RegisterFn func(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	LogoutErr  error

	Categories   []models.Category
	Products     []models.Product
	ListErr      error
	MutationErr  error
	SummaryRet   *models.Summary
	SummaryErr   error
	SeriesFn     func(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error)
	LogoutCalls  int
	Mutations    []string
	LastRegister models.RegisterRequest
}

func (f *fakeClient) Close() error                   { return nil }
func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Login(ctx context.Context, identifier, password string) (*models.AuthResult, error) {
	if f.LoginFn != nil {
		return f.LoginFn(ctx, identifier, password)
	}
	return &models.AuthResult{}, nil
}

func (f *fakeClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	f.mu.Lock()
	f.LastRegister = req
	f.mu.Unlock()
	if f.RegisterFn != nil {
		return f.RegisterFn(ctx, req)
	}
	return &models.AuthResult{}, nil
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Category(nil), f.Categories...), nil
}

func (f *fakeClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Product(nil), f.Products...), nil
}

func (f *fakeClient) record(op string, kind models.ResourceKind, id int64) {
	f.Mutations = append(f.Mutations, fmt.Sprintf("%s %s %d", op, kind, id))
}

func (f *fakeClient) CreateResource(ctx context.Context, kind models.ResourceKind, fields any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create", kind, 0)
	if f.MutationErr != nil {
		return f.MutationErr
	}
	if c, ok := fields.(models.CategoryFields); ok {
		f.Categories = append(f.Categories, models.Category{ID: int64(len(f.Categories) + 1), Name: c.Name})
	}
	return nil
}

func (f *fakeClient) UpdateResource(ctx context.Context, kind models.ResourceKind, id int64, fields any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update", kind, id)
	if f.MutationErr != nil {
		return f.MutationErr
	}
	if c, ok := fields.(models.CategoryFields); ok {
		for i := range f.Categories {
			if f.Categories[i].ID == id {
				f.Categories[i].Name = c.Name
			}
		}
	}
	return nil
}

func (f *fakeClient) DeleteResource(ctx context.Context, kind models.ResourceKind, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete", kind, id)
	if f.MutationErr != nil {
		return f.MutationErr
	}
	switch kind {
	case models.KindCategories:
		out := f.Categories[:0]
		for _, c := range f.Categories {
			if c.ID != id {
				out = append(out, c)
			}
		}
		f.Categories = out
	case models.KindProducts:
		out := f.Products[:0]
		for _, p := range f.Products {
			if p.ID != id {
				out = append(out, p)
			}
		}
		f.Products = out
	}
	return nil
}

func (f *fakeClient) Summary(ctx context.Context) (*models.Summary, error) {
	return f.SummaryRet, f.SummaryErr
}

func (f *fakeClient) Series(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error) {
	if f.SeriesFn != nil {
		return f.SeriesFn(ctx, metric, window)
	}
	return nil, nil
}

var _ client.Client = (*fakeClient)(nil)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := localdb.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

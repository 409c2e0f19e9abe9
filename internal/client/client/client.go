package client

import (
	"context"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// TokenSource supplies the bearer token for authorized calls and is told
// which token the backend rejected.
type TokenSource interface {
	Token() string
	Expire(ctx context.Context, token string)
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Login(ctx context.Context, identifier, password string) (*models.AuthResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	Logout(ctx context.Context) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateResource(ctx context.Context, kind models.ResourceKind, fields any) error
	UpdateResource(ctx context.Context, kind models.ResourceKind, id int64, fields any) error
	DeleteResource(ctx context.Context, kind models.ResourceKind, id int64) error

	Summary(ctx context.Context) (*models.Summary, error)
	Series(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error)
}

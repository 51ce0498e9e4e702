// Package api defines the uniform data-access contract the UI layer talks
// to. Two implementations exist: the GraphQL client (graphqlapi) and the
// in-memory development backend (mockapi). The choice is made once, at
// composition time, never at call sites.
package api

import (
	"context"

	"github.com/nebulamart/storefront/internal/models"
)

type Backend interface {
	// ListProducts applies criteria: search and category are delegated to
	// the backend where it supports them, price range and sort are always
	// applied locally (see ApplyLocal).
	ListProducts(ctx context.Context, c Criteria) ([]models.Product, error)
	FeaturedProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (*models.Product, error)

	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int) (bool, error)
	UpdateProductStock(ctx context.Context, id int, count int) error
	ProductStats(ctx context.Context) (*models.ProductStats, error)

	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, in models.UpdateProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, in models.ChangePasswordInput) error
	DeleteAccount(ctx context.Context) error

	RequestUploadTarget(ctx context.Context, filename string) (*models.UploadTarget, error)
}

// TokenSource supplies the access token attached to authenticated calls.
// Reading through a func keeps the backends decoupled from the session
// store and makes a post-refresh retry pick up the new token.
type TokenSource func() string

// Exchanger swaps a refresh token for a new access/refresh pair.
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken string) (accessToken, refreshToken2 string, err error)
}

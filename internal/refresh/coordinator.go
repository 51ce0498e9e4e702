// Package refresh wraps a backend with the token refresh flow: an
// authentication failure triggers exactly one refresh exchange, the failed
// call is retried once against the new token, and an irrecoverable
// exchange logs the session out.
package refresh

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/nebulamart/storefront/internal/api"
	"github.com/nebulamart/storefront/internal/models"
	"github.com/nebulamart/storefront/internal/session"
)

// ErrNoRefreshToken is returned when an auth failure arrives and there is
// nothing to exchange. The session is logged out and the original failure
// propagates.
var ErrNoRefreshToken = errors.New("no refresh token")

// Coordinator decorates an api.Backend. Concurrent calls failing on the
// same expired token share a single in-flight exchange; each waiter then
// retries its own call against the result.
type Coordinator struct {
	inner     api.Backend
	session   *session.Store
	exchanger api.Exchanger
	group     singleflight.Group
	log       *slog.Logger
}

var _ api.Backend = (*Coordinator)(nil)

func New(inner api.Backend, sess *session.Store, exchanger api.Exchanger, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{inner: inner, session: sess, exchanger: exchanger, log: log}
}

// do runs fn once, and once more after a successful refresh exchange if
// the first attempt failed with ErrAuthFailed. Any exchange failure
// propagates the original error, never its own.
func do[T any](ctx context.Context, c *Coordinator, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil || !errors.Is(err, api.ErrAuthFailed) {
		return v, err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		var zero T
		return zero, err
	}
	return fn(ctx)
}

func (c *Coordinator) refresh(ctx context.Context) error {
	token := c.session.State().RefreshToken
	if token == "" {
		c.session.Logout()
		return ErrNoRefreshToken
	}

	// Keyed by the token itself: waiters on the same expired token share
	// one exchange, while a later failure on the rotated token starts a
	// fresh one.
	_, err, _ := c.group.Do(token, func() (any, error) {
		access, refreshToken, err := c.exchanger.Exchange(ctx, token)
		if err != nil {
			c.log.Warn("refresh exchange failed, logging out", "error", err)
			c.session.Logout()
			return nil, err
		}
		c.session.UpdateTokens(access, refreshToken)
		return nil, nil
	})
	return err
}

func (c *Coordinator) ListProducts(ctx context.Context, crit api.Criteria) ([]models.Product, error) {
	return do(ctx, c, func(ctx context.Context) ([]models.Product, error) {
		return c.inner.ListProducts(ctx, crit)
	})
}

func (c *Coordinator) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	return do(ctx, c, func(ctx context.Context) ([]models.Product, error) {
		return c.inner.FeaturedProducts(ctx)
	})
}

func (c *Coordinator) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return do(ctx, c, func(ctx context.Context) (*models.Product, error) {
		return c.inner.GetProduct(ctx, id)
	})
}

func (c *Coordinator) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	return do(ctx, c, func(ctx context.Context) (*models.Product, error) {
		return c.inner.CreateProduct(ctx, in)
	})
}

func (c *Coordinator) UpdateProduct(ctx context.Context, id int, in models.ProductInput) (*models.Product, error) {
	return do(ctx, c, func(ctx context.Context) (*models.Product, error) {
		return c.inner.UpdateProduct(ctx, id, in)
	})
}

func (c *Coordinator) DeleteProduct(ctx context.Context, id int) (bool, error) {
	return do(ctx, c, func(ctx context.Context) (bool, error) {
		return c.inner.DeleteProduct(ctx, id)
	})
}

func (c *Coordinator) UpdateProductStock(ctx context.Context, id int, count int) error {
	_, err := do(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.inner.UpdateProductStock(ctx, id, count)
	})
	return err
}

func (c *Coordinator) ProductStats(ctx context.Context) (*models.ProductStats, error) {
	return do(ctx, c, func(ctx context.Context) (*models.ProductStats, error) {
		return c.inner.ProductStats(ctx)
	})
}

// Login and Register never retry: a rejected credential is not an expired
// token.
func (c *Coordinator) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	return c.inner.Login(ctx, creds)
}

func (c *Coordinator) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	return c.inner.Register(ctx, in)
}

func (c *Coordinator) Me(ctx context.Context) (*models.User, error) {
	return do(ctx, c, func(ctx context.Context) (*models.User, error) {
		return c.inner.Me(ctx)
	})
}

func (c *Coordinator) UpdateProfile(ctx context.Context, in models.UpdateProfileInput) (*models.User, error) {
	return do(ctx, c, func(ctx context.Context) (*models.User, error) {
		return c.inner.UpdateProfile(ctx, in)
	})
}

func (c *Coordinator) ChangePassword(ctx context.Context, in models.ChangePasswordInput) error {
	_, err := do(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.inner.ChangePassword(ctx, in)
	})
	return err
}

func (c *Coordinator) DeleteAccount(ctx context.Context) error {
	_, err := do(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.inner.DeleteAccount(ctx)
	})
	return err
}

func (c *Coordinator) RequestUploadTarget(ctx context.Context, filename string) (*models.UploadTarget, error) {
	return do(ctx, c, func(ctx context.Context) (*models.UploadTarget, error) {
		return c.inner.RequestUploadTarget(ctx, filename)
	})
}

// Package app wires the storefront client together: session store, cart,
// and the refresh-coordinated backend chosen by configuration. Pages only
// ever see the assembled App, never a concrete backend.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nebulamart/storefront/internal/api"
	"github.com/nebulamart/storefront/internal/api/graphqlapi"
	"github.com/nebulamart/storefront/internal/api/mockapi"
	"github.com/nebulamart/storefront/internal/cart"
	"github.com/nebulamart/storefront/internal/config"
	"github.com/nebulamart/storefront/internal/guard"
	"github.com/nebulamart/storefront/internal/models"
	"github.com/nebulamart/storefront/internal/refresh"
	"github.com/nebulamart/storefront/internal/session"
	"github.com/nebulamart/storefront/internal/upload"
)

type App struct {
	Session  *session.Store
	Cart     *cart.Store
	Backend  api.Backend
	Uploader *upload.Uploader
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	sess, err := session.New(&session.FileStorage{Path: cfg.TOKEN_FILE})
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	var (
		inner     api.Backend
		exchanger api.Exchanger
	)
	switch cfg.BACKEND {
	case config.BackendMock:
		m := mockapi.New(sess.AccessToken)
		inner, exchanger = m, m
	case config.BackendGraphQL:
		inner = graphqlapi.New(cfg.GRAPHQL_URL, cfg.UPLOAD_URL, sess.AccessToken)
		exchanger = graphqlapi.NewRefreshClient(cfg.REFRESH_URL)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.BACKEND)
	}

	backend := refresh.New(inner, sess, exchanger, log)
	return &App{
		Session:  sess,
		Cart:     cart.NewStore(),
		Backend:  backend,
		Uploader: upload.New(backend, log),
	}, nil
}

// Rehydrate validates any persisted tokens against the backend. Call once
// at startup.
func (a *App) Rehydrate(ctx context.Context) error {
	return session.Rehydrate(ctx, a.Session, a.Backend)
}

// Guard evaluates a route requirement against the current session.
func (a *App) Guard(req guard.Requirement) guard.Decision {
	return guard.Evaluate(a.Session.State(), req)
}

// Login runs the credential flow end to end: backend call, session
// mutation, token persistence.
func (a *App) Login(ctx context.Context, email, password string) error {
	a.Session.SetLoading(true)
	res, err := a.Backend.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		a.Session.LoginFailure()
		return err
	}
	a.Session.LoginSuccess(res.User, res.AccessToken, res.RefreshToken)
	return nil
}

// Register creates an account and opens a session for it.
func (a *App) Register(ctx context.Context, name, email, password string) error {
	a.Session.SetLoading(true)
	res, err := a.Backend.Register(ctx, models.RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		a.Session.LoginFailure()
		return err
	}
	a.Session.LoginSuccess(res.User, res.AccessToken, res.RefreshToken)
	return nil
}

func (a *App) Logout() {
	a.Session.Logout()
}

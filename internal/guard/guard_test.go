package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nebulamart/storefront/internal/models"
	"github.com/nebulamart/storefront/internal/session"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	anon := session.State{}
	user := session.State{
		User:            &models.User{ID: "u-1", Email: "demo@example.com"},
		IsAuthenticated: true,
	}
	admin := session.State{
		User:            &models.User{ID: "u-2", Email: "admin@example.com", IsAdmin: true},
		IsAuthenticated: true,
	}
	// Tokens loaded from disk but not yet validated.
	pending := session.State{AccessToken: "stored", RefreshToken: "stored"}

	tests := []struct {
		name string
		st   session.State
		req  Requirement
		want Decision
	}{
		{"public route, anonymous", anon, Requirement{}, Allow},
		{"public route, signed in", user, Requirement{}, Allow},
		{"protected route, anonymous", anon, Requirement{Authenticated: true}, RedirectSignIn},
		{"protected route, signed in", user, Requirement{Authenticated: true}, Allow},
		{"protected route, unvalidated tokens", pending, Requirement{Authenticated: true}, RedirectSignIn},
		{"admin route, anonymous", anon, Requirement{Authenticated: true, Admin: true}, RedirectSignIn},
		{"admin route, plain user", user, Requirement{Authenticated: true, Admin: true}, RedirectHome},
		{"admin route, admin", admin, Requirement{Authenticated: true, Admin: true}, Allow},
		{"admin-only flag without auth flag", user, Requirement{Admin: true}, RedirectHome},
		{"admin-only flag, admin", admin, Requirement{Admin: true}, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Evaluate(tt.st, tt.req))
		})
	}
}

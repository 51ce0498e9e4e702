// Package guard decides whether a navigation may proceed given the current
// session. It holds no state of its own; the router re-evaluates on every
// navigation and session change.
package guard

import "github.com/nebulamart/storefront/internal/session"

type Decision int

const (
	// Allow renders the guarded content.
	Allow Decision = iota
	// RedirectSignIn sends an unauthenticated visitor to the sign-in page.
	RedirectSignIn
	// RedirectHome sends a signed-in non-admin away from admin routes.
	RedirectHome
)

// Requirement is declared per route.
type Requirement struct {
	Authenticated bool
	Admin         bool
}

func Evaluate(st session.State, req Requirement) Decision {
	if !req.Authenticated && !req.Admin {
		return Allow
	}
	if !st.IsAuthenticated {
		return RedirectSignIn
	}
	if req.Admin && (st.User == nil || !st.User.IsAdmin) {
		return RedirectHome
	}
	return Allow
}

package session

import (
	"context"

	"github.com/nebulamart/storefront/internal/api"
)

// Rehydrate validates a persisted session at process start. With no stored
// tokens it does nothing. Otherwise it asks the backend who the tokens
// belong to and either installs the user or clears the session. Pass the
// refresh-coordinated backend so an expired access token still gets one
// shot at a refresh exchange before the session is dropped.
func Rehydrate(ctx context.Context, store *Store, backend api.Backend) error {
	st := store.State()
	if st.AccessToken == "" && st.RefreshToken == "" {
		return nil
	}

	store.SetLoading(true)
	user, err := backend.Me(ctx)
	if err != nil {
		store.Logout()
		return err
	}
	store.SetUser(*user)
	store.SetLoading(false)
	return nil
}

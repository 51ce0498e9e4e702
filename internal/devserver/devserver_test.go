package devserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulamart/storefront/internal/api"
	"github.com/nebulamart/storefront/internal/api/graphqlapi"
	"github.com/nebulamart/storefront/internal/config"
	"github.com/nebulamart/storefront/internal/models"
	"github.com/nebulamart/storefront/internal/refresh"
	"github.com/nebulamart/storefront/internal/session"
	"github.com/nebulamart/storefront/internal/upload"
)

type testEnv struct {
	srv  *Server
	base string
}

// newTestEnv boots the full server on sqlite with the demo fixtures and
// serves it over httptest.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		SQLITE_PATH:    filepath.Join(dir, "test.db"),
		JWT_SECRET:     "test-access-secret",
		REFRESH_SECRET: "test-refresh-secret",
		ES_INDEX:       "products",
		UPLOAD_DIR:     filepath.Join(dir, "uploads"),
	}
	db, err := OpenDB(cfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(cfg, db, logger)
	require.NoError(t, srv.Seed())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	srv.publicURL = ts.URL

	return &testEnv{srv: srv, base: ts.URL}
}

// newStorefront assembles the client stack exactly the way the app wiring
// does: session-backed token source, GraphQL client, refresh coordinator.
func (e *testEnv) newStorefront(t *testing.T) (api.Backend, *session.Store) {
	t.Helper()

	sess, err := session.New(&session.MemStorage{})
	require.NoError(t, err)

	client := graphqlapi.New(e.base+"/graphql", e.base+"/uploads", sess.AccessToken)
	exchanger := graphqlapi.NewRefreshClient(e.base + "/auth/refresh-token")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return refresh.New(client, sess, exchanger, logger), sess
}

func (e *testEnv) login(t *testing.T, backend api.Backend, sess *session.Store, email, password string) *models.AuthResult {
	t.Helper()
	res, err := backend.Login(context.Background(), models.Credentials{Email: email, Password: password})
	require.NoError(t, err)
	sess.LoginSuccess(res.User, res.AccessToken, res.RefreshToken)
	return res
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		resp, err := http.Get(env.base + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestLoginAndMe(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()

	res := env.login(t, backend, sess, "demo@example.com", "password123")
	assert.Equal(t, "Demo User", res.User.Name)
	assert.False(t, res.User.IsAdmin)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	me, err := backend.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", me.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, _ := env.newStorefront(t)

	_, err := backend.Login(context.Background(), models.Credentials{
		Email:    "demo@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, api.ErrInvalidCredentials)
}

func TestRegisterAndConflict(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()

	res, err := backend.Register(ctx, models.RegisterInput{
		Name:     "Fresh User",
		Email:    "fresh@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	sess.LoginSuccess(res.User, res.AccessToken, res.RefreshToken)

	me, err := backend.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", me.Email)

	_, err = backend.Register(ctx, models.RegisterInput{
		Name:     "Imposter",
		Email:    "fresh@example.com",
		Password: "hunter22",
	})
	require.ErrorIs(t, err, api.ErrConflict)
}

func TestMeWithoutTokenIsAuthFailed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, _ := env.newStorefront(t)

	_, err := backend.Me(context.Background())
	require.ErrorIs(t, err, api.ErrAuthFailed)
}

func TestProductListing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, _ := env.newStorefront(t)
	ctx := context.Background()

	items, err := backend.ListProducts(ctx, api.Criteria{})
	require.NoError(t, err)
	require.Len(t, items, 10)
	assert.Equal(t, "Quantum Laptop", items[0].Name)
	require.NotNil(t, items[0].Category)
	assert.Equal(t, "Electronics", items[0].Category.Name)
	require.NotEmpty(t, items[0].Images)
	assert.True(t, items[0].Images[0].IsThumbnail)

	featured, err := backend.FeaturedProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 4)

	p, err := backend.GetProduct(ctx, items[2].ID)
	require.NoError(t, err)
	assert.Equal(t, items[2].Name, p.Name)

	_, err = backend.GetProduct(ctx, 9999)
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestProductSearchAndCategoryFilter(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, _ := env.newStorefront(t)
	ctx := context.Background()

	// No ES configured, so this exercises the LIKE fallback.
	items, err := backend.ListProducts(ctx, api.Criteria{Search: "laptop"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Quantum Laptop", items[0].Name)

	// Categories are created in seed order; Audio is the third.
	items, err = backend.ListProducts(ctx, api.Criteria{CategoryID: 3})
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, p := range items {
		require.NotNil(t, p.Category)
		assert.Equal(t, "Audio", p.Category.Name)
	}

	minP := 100.0
	items, err = backend.ListProducts(ctx, api.Criteria{CategoryID: 3, MinPrice: &minP, Sort: api.SortPriceDesc})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Vortex Gaming Headset", items[0].Name)
	assert.Equal(t, "Nova Headphones", items[1].Name)
}

func TestAdminProductLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()
	env.login(t, backend, sess, "admin@example.com", "admin123")

	created, err := backend.CreateProduct(ctx, models.ProductInput{
		Name:           "Orbit Webcam",
		Description:    "1080p webcam with autofocus",
		Price:          59.99,
		InventoryCount: 30,
		CategoryID:     4,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Peripherals", created.Category.Name)

	updated, err := backend.UpdateProduct(ctx, created.ID, models.ProductInput{
		Name:           "Orbit Webcam Pro",
		Description:    created.Description,
		Price:          79.99,
		InventoryCount: 25,
		CategoryID:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Orbit Webcam Pro", updated.Name)
	assert.InDelta(t, 79.99, updated.Price, 1e-9)

	require.NoError(t, backend.UpdateProductStock(ctx, created.ID, 7))
	p, err := backend.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, p.InventoryCount)

	ok, err := backend.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = backend.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = backend.CreateProduct(ctx, models.ProductInput{Name: " ", Price: 1})
	require.ErrorIs(t, err, api.ErrValidation)
}

func TestNonAdminCannotMutateProducts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()
	env.login(t, backend, sess, "demo@example.com", "password123")

	_, err := backend.CreateProduct(ctx, models.ProductInput{Name: "Sneaky", Price: 1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "admin access required")
}

func TestExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()
	env.login(t, backend, sess, "demo@example.com", "password123")
	before := sess.State()

	// Simulate access-token expiry while the refresh token stays good.
	sess.UpdateTokens("garbage", before.RefreshToken)

	me, err := backend.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", me.Email)

	after := sess.State()
	assert.NotEqual(t, "garbage", after.AccessToken)
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken, "refresh token must rotate on exchange")
	assert.True(t, after.IsAuthenticated)
}

func TestIrrecoverableRefreshLogsOut(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()
	env.login(t, backend, sess, "demo@example.com", "password123")

	sess.UpdateTokens("garbage", "also-garbage")

	_, err := backend.Me(ctx)
	require.ErrorIs(t, err, api.ErrAuthFailed)
	st := sess.State()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.AccessToken)
	assert.Empty(t, st.RefreshToken)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()
	res := env.login(t, backend, sess, "demo@example.com", "password123")

	exchanger := graphqlapi.NewRefreshClient(env.base + "/auth/refresh-token")
	access, next, err := exchanger.Exchange(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEqual(t, res.RefreshToken, next)

	_, _, err = exchanger.Exchange(ctx, res.RefreshToken)
	require.ErrorIs(t, err, api.ErrAuthFailed)
}

func TestChangePasswordAndRelogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()
	env.login(t, backend, sess, "demo@example.com", "password123")

	err := backend.ChangePassword(ctx, models.ChangePasswordInput{
		CurrentPassword: "wrong",
		NewPassword:     "next12345",
	})
	require.ErrorIs(t, err, api.ErrInvalidCredentials)

	require.NoError(t, backend.ChangePassword(ctx, models.ChangePasswordInput{
		CurrentPassword: "password123",
		NewPassword:     "next12345",
	}))

	_, err = backend.Login(ctx, models.Credentials{Email: "demo@example.com", Password: "password123"})
	require.ErrorIs(t, err, api.ErrInvalidCredentials)
	_, err = backend.Login(ctx, models.Credentials{Email: "demo@example.com", Password: "next12345"})
	require.NoError(t, err)
}

func TestUpdateProfileConflict(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()
	env.login(t, backend, sess, "demo@example.com", "password123")

	u, err := backend.UpdateProfile(ctx, models.UpdateProfileInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)

	_, err = backend.UpdateProfile(ctx, models.UpdateProfileInput{Email: "admin@example.com"})
	require.ErrorIs(t, err, api.ErrConflict)
}

func TestDeleteAccountRevokesSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()

	res, err := backend.Register(ctx, models.RegisterInput{
		Name:     "Ephemeral",
		Email:    "ephemeral@example.com",
		Password: "shortlived",
	})
	require.NoError(t, err)
	sess.LoginSuccess(res.User, res.AccessToken, res.RefreshToken)

	require.NoError(t, backend.DeleteAccount(ctx))
	sess.Logout()

	_, err = backend.Login(ctx, models.Credentials{Email: "ephemeral@example.com", Password: "shortlived"})
	require.ErrorIs(t, err, api.ErrInvalidCredentials)
}

func TestUploadFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, sess := env.newStorefront(t)
	ctx := context.Background()
	env.login(t, backend, sess, "demo@example.com", "password123")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	up := upload.New(backend, logger)

	res, err := up.Upload(ctx, "product-shot.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.False(t, res.Placeholder)
	assert.Contains(t, res.ImageURL, env.base+"/uploads/objects/")

	// The object landed on disk under the key the target named.
	key := filepath.Base(res.ImageURL)
	data, err := os.ReadFile(filepath.Join(env.srv.uploadDir, key))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

func TestUploadTargetRequiresAuth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	backend, _ := env.newStorefront(t)

	_, err := backend.RequestUploadTarget(context.Background(), "photo.png")
	require.ErrorIs(t, err, api.ErrAuthFailed)
}

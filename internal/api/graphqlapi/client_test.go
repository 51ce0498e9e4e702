package graphqlapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulamart/storefront/internal/api"
	"github.com/nebulamart/storefront/internal/models"
)

// fakeGraphQL records the last request and plays back a canned response
// per operation name.
type fakeGraphQL struct {
	t *testing.T

	lastOp   string
	lastVars map[string]any
	lastAuth string

	status    int
	responses map[string]string
}

func (f *fakeGraphQL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.Equal(f.t, http.MethodPost, r.Method)
	require.Equal(f.t, "application/json", r.Header.Get("Content-Type"))

	var req struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))

	f.lastOp = req.OperationName
	f.lastVars = req.Variables
	f.lastAuth = r.Header.Get("Authorization")

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	body, ok := f.responses[req.OperationName]
	require.Truef(f.t, ok, "unexpected operation %q", req.OperationName)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func newClient(t *testing.T, f *fakeGraphQL, token string) *Client {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.URL+"/uploads", func() string { return token })
}

const productsBody = `{"data":{"products":[
	{"id":1,"name":"Quantum Laptop","price":1299.99},
	{"id":2,"name":"Fusion Keyboard","price":89.99}
]}}`

func TestListProductsDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		crit   api.Criteria
		wantOp string
		body   string
	}{
		{
			name:   "plain listing",
			crit:   api.Criteria{},
			wantOp: "GetProducts",
			body:   productsBody,
		},
		{
			name:   "search wins",
			crit:   api.Criteria{Search: "laptop", CategoryID: 2},
			wantOp: "SearchProducts",
			body:   `{"data":{"searchProducts":[{"id":1,"name":"Quantum Laptop","price":1299.99}]}}`,
		},
		{
			name:   "category only",
			crit:   api.Criteria{CategoryID: 2},
			wantOp: "GetProductsByCategory",
			body:   `{"data":{"productsByCategory":[{"id":2,"name":"Fusion Keyboard","price":89.99}]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &fakeGraphQL{responses: map[string]string{tt.wantOp: tt.body}}
			c := newClient(t, f, "")

			items, err := c.ListProducts(context.Background(), tt.crit)
			require.NoError(t, err)
			assert.NotEmpty(t, items)
			assert.Equal(t, tt.wantOp, f.lastOp)
		})
	}
}

func TestListProductsAppliesLocalCriteria(t *testing.T) {
	t.Parallel()

	f := &fakeGraphQL{responses: map[string]string{"GetProducts": productsBody}}
	c := newClient(t, f, "")

	maxP := 100.0
	items, err := c.ListProducts(context.Background(), api.Criteria{MaxPrice: &maxP, Sort: api.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fusion Keyboard", items[0].Name)
}

func TestBearerHeader(t *testing.T) {
	t.Parallel()

	f := &fakeGraphQL{responses: map[string]string{"Me": `{"data":{"me":{"id":"u-1","email":"demo@example.com"}}}`}}
	c := newClient(t, f, "token-abc")

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-abc", f.lastAuth)
}

func TestNoBearerHeaderWhenAnonymous(t *testing.T) {
	t.Parallel()

	f := &fakeGraphQL{responses: map[string]string{"GetProducts": productsBody}}
	c := newClient(t, f, "")

	_, err := c.ListProducts(context.Background(), api.Criteria{})
	require.NoError(t, err)
	assert.Empty(t, f.lastAuth)
}

func TestErrorCodeMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{"UNAUTHENTICATED", api.ErrAuthFailed},
		{"INVALID_CREDENTIALS", api.ErrInvalidCredentials},
		{"CONFLICT", api.ErrConflict},
		{"BAD_USER_INPUT", api.ErrValidation},
		{"NOT_FOUND", api.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			body := `{"errors":[{"message":"nope","extensions":{"code":"` + tt.code + `"}}]}`
			f := &fakeGraphQL{responses: map[string]string{"Me": body}}
			c := newClient(t, f, "token")

			_, err := c.Me(context.Background())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTP401MapsToAuthFailed(t *testing.T) {
	t.Parallel()

	f := &fakeGraphQL{status: http.StatusUnauthorized}
	c := newClient(t, f, "expired")

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, api.ErrAuthFailed)
}

func TestHTTP500MapsToNetwork(t *testing.T) {
	t.Parallel()

	f := &fakeGraphQL{status: http.StatusInternalServerError}
	c := newClient(t, f, "")

	_, err := c.ListProducts(context.Background(), api.Criteria{})
	require.ErrorIs(t, err, api.ErrNetwork)
}

func TestUnreachableServerMapsToNetwork(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, srv.URL+"/uploads", func() string { return "" })

	_, err := c.ListProducts(context.Background(), api.Criteria{})
	require.ErrorIs(t, err, api.ErrNetwork)
}

func TestGetProductNullIsNotFound(t *testing.T) {
	t.Parallel()

	f := &fakeGraphQL{responses: map[string]string{"GetProduct": `{"data":{"product":null}}`}}
	c := newClient(t, f, "")

	_, err := c.GetProduct(context.Background(), 42)
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestLoginDecodesAuthResult(t *testing.T) {
	t.Parallel()

	body := `{"data":{"login":{
		"user":{"id":"u-1","email":"demo@example.com","name":"Demo User"},
		"accessToken":"acc-1","refreshToken":"ref-1"
	}}}`
	f := &fakeGraphQL{responses: map[string]string{"Login": body}}
	c := newClient(t, f, "")

	res, err := c.Login(context.Background(), models.Credentials{Email: "demo@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Demo User", res.User.Name)
	assert.Equal(t, "acc-1", res.AccessToken)
	assert.Equal(t, "ref-1", res.RefreshToken)
	assert.Equal(t, "Login", f.lastOp)
}

func TestUpdateProductStockRidesOnUpdate(t *testing.T) {
	t.Parallel()

	f := &fakeGraphQL{responses: map[string]string{
		"GetProduct": `{"data":{"product":{
			"id":5,"name":"Stellar Monitor","description":"4K","price":549.99,
			"inventory_count":12,"category":{"id":1,"name":"Electronics"}
		}}}`,
		"UpdateProduct": `{"data":{"updateProduct":{"id":5,"name":"Stellar Monitor","inventory_count":7}}}`,
	}}
	c := newClient(t, f, "token")

	require.NoError(t, c.UpdateProductStock(context.Background(), 5, 7))
	assert.Equal(t, "UpdateProduct", f.lastOp)

	data, ok := f.lastVars["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), data["inventory_count"])
	assert.Equal(t, "Stellar Monitor", data["name"])
	assert.Equal(t, float64(1), data["categoryId"])
}

func TestRequestUploadTarget(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var gotBody map[string]string
	var gotAuth string
	mux.HandleFunc("/uploads", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uploadUrl":"http://cdn/put/key.png","imageUrl":"http://cdn/key.png"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL, srv.URL+"/uploads", func() string { return "token" })
	target, err := c.RequestUploadTarget(context.Background(), "photo.png")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/put/key.png", target.UploadURL)
	assert.Equal(t, "http://cdn/key.png", target.ImageURL)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "photo.png", gotBody["fileName"])
	assert.Equal(t, "image/png", gotBody["fileType"])
}

func TestRequestUploadTargetRejectsIncomplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"uploadUrl":"","imageUrl":""}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, srv.URL, func() string { return "token" })
	_, err := c.RequestUploadTarget(context.Background(), "photo.png")
	require.ErrorIs(t, err, api.ErrValidation)
}

func TestRefreshClientExchange(t *testing.T) {
	t.Parallel()

	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"acc-2","refreshToken":"ref-2"}`))
	}))
	t.Cleanup(srv.Close)

	rc := NewRefreshClient(srv.URL)
	access, refresh, err := rc.Exchange(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "acc-2", access)
	assert.Equal(t, "ref-2", refresh)
	assert.Equal(t, "ref-1", gotBody["token"])
}

func TestRefreshClientRejectionMapsToAuthFailed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"cannot rotate token"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	rc := NewRefreshClient(srv.URL)
	_, _, err := rc.Exchange(context.Background(), "revoked")
	require.ErrorIs(t, err, api.ErrAuthFailed)
}

func TestRefreshClientRejectsEmptyPair(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	rc := NewRefreshClient(srv.URL)
	_, _, err := rc.Exchange(context.Background(), "ref-1")
	require.ErrorIs(t, err, api.ErrAuthFailed)
}

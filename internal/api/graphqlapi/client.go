// Package graphqlapi implements the data-access contract against the live
// GraphQL API, plus the two REST-ish side doors the platform exposes:
// token refresh and upload-target issuing.
package graphqlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/nebulamart/storefront/internal/api"
	"github.com/nebulamart/storefront/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 50
)

type Client struct {
	endpoint   string
	uploadURL  string
	httpClient *http.Client
	token      api.TokenSource
}

var _ api.Backend = (*Client)(nil)

// New builds a client for the GraphQL endpoint. uploadURL is the
// upload-target-issuing endpoint; token supplies the access token per
// request and may return "".
func New(endpoint, uploadURL string, token api.TokenSource) *Client {
	return &Client{
		endpoint:  endpoint,
		uploadURL: uploadURL,
		token:     token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type gqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// execute posts one operation and decodes response.data into out.
func (c *Client) execute(ctx context.Context, opName, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, OperationName: opName, Variables: vars})
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", opName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", opName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", opName, err, api.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", opName, api.ErrAuthFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d: %w", opName, resp.StatusCode, api.ErrNetwork)
	}

	var gr gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("%s: decode response: %w", opName, err)
	}
	if len(gr.Errors) > 0 {
		return fmt.Errorf("%s: %w", opName, errorFromCode(gr.Errors[0]))
	}
	if out != nil {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("%s: decode data: %w", opName, err)
		}
	}
	return nil
}

// errorFromCode maps the server's extension codes onto the facade
// taxonomy so the UI and the refresh coordinator can discriminate.
func errorFromCode(e gqlError) error {
	switch e.Extensions.Code {
	case "UNAUTHENTICATED":
		return fmt.Errorf("%s: %w", e.Message, api.ErrAuthFailed)
	case "INVALID_CREDENTIALS":
		return fmt.Errorf("%s: %w", e.Message, api.ErrInvalidCredentials)
	case "CONFLICT":
		return fmt.Errorf("%s: %w", e.Message, api.ErrConflict)
	case "BAD_USER_INPUT":
		return fmt.Errorf("%s: %w", e.Message, api.ErrValidation)
	case "NOT_FOUND":
		return fmt.Errorf("%s: %w", e.Message, api.ErrNotFound)
	default:
		return fmt.Errorf("graphql: %s", e.Message)
	}
}

// ListProducts delegates search and category filtering to the dedicated
// queries and applies price range and sort locally.
func (c *Client) ListProducts(ctx context.Context, crit api.Criteria) ([]models.Product, error) {
	var (
		items []models.Product
		err   error
	)
	switch {
	case crit.Search != "":
		var out struct {
			SearchProducts []models.Product `json:"searchProducts"`
		}
		vars := map[string]any{"searchTerm": crit.Search, "page": defaultPage, "limit": defaultLimit}
		if crit.CategoryID != 0 {
			vars["categoryId"] = crit.CategoryID
		}
		err = c.execute(ctx, "SearchProducts", querySearchProducts, vars, &out)
		items = out.SearchProducts
	case crit.CategoryID != 0:
		var out struct {
			ProductsByCategory []models.Product `json:"productsByCategory"`
		}
		err = c.execute(ctx, "GetProductsByCategory", queryGetProductsByCategory,
			map[string]any{"categoryId": crit.CategoryID, "page": defaultPage, "limit": defaultLimit}, &out)
		items = out.ProductsByCategory
	default:
		var out struct {
			Products []models.Product `json:"products"`
		}
		err = c.execute(ctx, "GetProducts", queryGetProducts,
			map[string]any{"page": defaultPage, "limit": defaultLimit}, &out)
		items = out.Products
	}
	if err != nil {
		return nil, err
	}
	return api.ApplyLocal(crit, items), nil
}

// FeaturedProducts is the first slice of the canonical listing.
func (c *Client) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	var out struct {
		Products []models.Product `json:"products"`
	}
	if err := c.execute(ctx, "GetProducts", queryGetProducts,
		map[string]any{"page": 1, "limit": 4}, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var out struct {
		Product *models.Product `json:"product"`
	}
	if err := c.execute(ctx, "GetProduct", queryGetProduct, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, fmt.Errorf("product %d: %w", id, api.ErrNotFound)
	}
	return out.Product, nil
}

func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var out struct {
		CreateProduct *models.Product `json:"createProduct"`
	}
	if err := c.execute(ctx, "CreateProduct", mutationCreateProduct, map[string]any{"data": in}, &out); err != nil {
		return nil, err
	}
	return out.CreateProduct, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int, in models.ProductInput) (*models.Product, error) {
	var out struct {
		UpdateProduct *models.Product `json:"updateProduct"`
	}
	if err := c.execute(ctx, "UpdateProduct", mutationUpdateProduct,
		map[string]any{"id": id, "data": in}, &out); err != nil {
		return nil, err
	}
	return out.UpdateProduct, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int) (bool, error) {
	var out struct {
		DeleteProduct bool `json:"deleteProduct"`
	}
	if err := c.execute(ctx, "DeleteProduct", mutationDeleteProduct, map[string]any{"id": id}, &out); err != nil {
		return false, err
	}
	return out.DeleteProduct, nil
}

// UpdateProductStock has no dedicated mutation on the contract; it rides
// on updateProduct with the current field values.
func (c *Client) UpdateProductStock(ctx context.Context, id int, count int) error {
	p, err := c.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	in := models.ProductInput{
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		InventoryCount: count,
	}
	if p.Category != nil {
		in.CategoryID = p.Category.ID
	}
	_, err = c.UpdateProduct(ctx, id, in)
	return err
}

// ProductStats is derived client-side from the full listing; the contract
// has no stats query.
func (c *Client) ProductStats(ctx context.Context) (*models.ProductStats, error) {
	items, err := c.ListProducts(ctx, api.Criteria{})
	if err != nil {
		return nil, err
	}
	return api.StatsFor(items), nil
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var out struct {
		Login *models.AuthResult `json:"login"`
	}
	if err := c.execute(ctx, "Login", mutationLogin, map[string]any{"data": creds}, &out); err != nil {
		return nil, err
	}
	return out.Login, nil
}

func (c *Client) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	var out struct {
		Register *models.AuthResult `json:"register"`
	}
	if err := c.execute(ctx, "Register", mutationRegister, map[string]any{"data": in}, &out); err != nil {
		return nil, err
	}
	return out.Register, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		Me *models.User `json:"me"`
	}
	if err := c.execute(ctx, "Me", queryMe, nil, &out); err != nil {
		return nil, err
	}
	if out.Me == nil {
		return nil, fmt.Errorf("me: %w", api.ErrAuthFailed)
	}
	return out.Me, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in models.UpdateProfileInput) (*models.User, error) {
	var out struct {
		UpdateProfile *models.User `json:"updateProfile"`
	}
	if err := c.execute(ctx, "UpdateProfile", mutationUpdateProfile, map[string]any{"data": in}, &out); err != nil {
		return nil, err
	}
	return out.UpdateProfile, nil
}

func (c *Client) ChangePassword(ctx context.Context, in models.ChangePasswordInput) error {
	return c.execute(ctx, "ChangePassword", mutationChangePassword, map[string]any{"data": in}, nil)
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.execute(ctx, "DeleteAccount", mutationDeleteAccount, nil, nil)
}

// RequestUploadTarget asks the upload endpoint for a presigned pair. The
// binary upload itself goes directly to uploadUrl, not through here.
func (c *Client) RequestUploadTarget(ctx context.Context, filename string) (*models.UploadTarget, error) {
	fileType := mime.TypeByExtension(filepath.Ext(filename))
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	body, err := json.Marshal(map[string]string{"fileName": filename, "fileType": fileType})
	if err != nil {
		return nil, fmt.Errorf("upload target: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("upload target: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload target: %v: %w", err, api.ErrNetwork)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("upload target: %w", api.ErrAuthFailed)
	default:
		return nil, fmt.Errorf("upload target: status %d: %w", resp.StatusCode, api.ErrNetwork)
	}

	var target models.UploadTarget
	if err := json.NewDecoder(resp.Body).Decode(&target); err != nil {
		return nil, fmt.Errorf("upload target: decode: %w", err)
	}
	if target.UploadURL == "" || target.ImageURL == "" {
		return nil, fmt.Errorf("upload target: incomplete response: %w", api.ErrValidation)
	}
	return &target, nil
}

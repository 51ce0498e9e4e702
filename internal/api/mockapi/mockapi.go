// Package mockapi is the in-memory stand-in for the live API. It serves
// the same facade contract from a seeded catalog so the UI runs without
// any backend at all. State lives for the process lifetime.
package mockapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nebulamart/storefront/internal/api"
	"github.com/nebulamart/storefront/internal/models"
)

type account struct {
	user         models.User
	passwordHash []byte
}

type Backend struct {
	// Latency, when set, delays every call to mimic a network round trip.
	Latency time.Duration

	token api.TokenSource

	mu       sync.Mutex
	products []models.Product
	nextID   int
	accounts map[string]*account // keyed by user id
	access   map[string]string   // access token -> user id
	refresh  map[string]string   // refresh token -> user id
}

var (
	_ api.Backend   = (*Backend)(nil)
	_ api.Exchanger = (*Backend)(nil)
)

func New(token api.TokenSource) *Backend {
	b := &Backend{
		token:    token,
		accounts: map[string]*account{},
		access:   map[string]string{},
		refresh:  map[string]string{},
	}
	b.seed()
	return b
}

func (b *Backend) wait(ctx context.Context) error {
	if b.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(b.Latency):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mock: %v: %w", ctx.Err(), api.ErrNetwork)
	}
}

func (b *Backend) ListProducts(ctx context.Context, crit api.Criteria) ([]models.Product, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	items := make([]models.Product, 0, len(b.products))
	for _, p := range b.products {
		if crit.Search != "" && !matchesSearch(p, crit.Search) {
			continue
		}
		if crit.CategoryID != 0 && (p.Category == nil || p.Category.ID != crit.CategoryID) {
			continue
		}
		items = append(items, p)
	}
	b.mu.Unlock()
	return api.ApplyLocal(crit, items), nil
}

func matchesSearch(p models.Product, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	return p.Category != nil && strings.Contains(strings.ToLower(p.Category.Name), term)
}

func (b *Backend) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n := min(4, len(b.products))
	out := make([]models.Product, n)
	copy(out, b.products[:n])
	return out, nil
}

func (b *Backend) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, api.ErrNotFound)
}

func validateInput(in models.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required: %w", api.ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", api.ErrValidation)
	}
	if in.InventoryCount < 0 {
		return fmt.Errorf("inventory_count must not be negative: %w", api.ErrValidation)
	}
	return nil
}

func (b *Backend) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p := models.Product{
		ID:             b.nextID,
		ProductID:      uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		InventoryCount: in.InventoryCount,
		Category:       b.categoryByID(in.CategoryID),
	}
	b.products = append(b.products, p)
	out := p
	return &out, nil
}

func (b *Backend) UpdateProduct(ctx context.Context, id int, in models.ProductInput) (*models.Product, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products[i].Name = in.Name
			b.products[i].Description = in.Description
			b.products[i].Price = in.Price
			b.products[i].InventoryCount = in.InventoryCount
			if in.CategoryID != 0 {
				b.products[i].Category = b.categoryByID(in.CategoryID)
			}
			out := b.products[i]
			return &out, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, api.ErrNotFound)
}

func (b *Backend) DeleteProduct(ctx context.Context, id int) (bool, error) {
	if err := b.wait(ctx); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products = append(b.products[:i], b.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (b *Backend) UpdateProductStock(ctx context.Context, id int, count int) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("stock must not be negative: %w", api.ErrValidation)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products[i].InventoryCount = count
			return nil
		}
	}
	return fmt.Errorf("product %d: %w", id, api.ErrNotFound)
}

func (b *Backend) ProductStats(ctx context.Context) (*models.ProductStats, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	items := make([]models.Product, len(b.products))
	copy(items, b.products)
	b.mu.Unlock()
	return api.StatsFor(items), nil
}

func (b *Backend) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.Email != creds.Email {
			continue
		}
		if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(creds.Password)) != nil {
			break
		}
		return b.issueTokens(acc.user), nil
	}
	return nil, fmt.Errorf("login: %w", api.ErrInvalidCredentials)
}

func (b *Backend) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", api.ErrValidation)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if acc.user.Email == in.Email {
			return nil, fmt.Errorf("register %s: %w", in.Email, api.ErrConflict)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	user := models.User{ID: uuid.NewString(), Email: in.Email, Name: in.Name}
	b.accounts[user.ID] = &account{user: user, passwordHash: hash}
	return b.issueTokens(user), nil
}

func (b *Backend) Me(ctx context.Context) (*models.User, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	acc, err := b.authed()
	if err != nil {
		return nil, err
	}
	out := acc.user
	return &out, nil
}

func (b *Backend) UpdateProfile(ctx context.Context, in models.UpdateProfileInput) (*models.User, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	acc, err := b.authed()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if in.Name != "" {
		acc.user.Name = in.Name
	}
	if in.Email != "" {
		for _, other := range b.accounts {
			if other != acc && other.user.Email == in.Email {
				return nil, fmt.Errorf("email %s: %w", in.Email, api.ErrConflict)
			}
		}
		acc.user.Email = in.Email
	}
	out := acc.user
	return &out, nil
}

func (b *Backend) ChangePassword(ctx context.Context, in models.ChangePasswordInput) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	acc, err := b.authed()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(in.CurrentPassword)) != nil {
		return fmt.Errorf("change password: %w", api.ErrInvalidCredentials)
	}
	if in.NewPassword == "" {
		return fmt.Errorf("new password is required: %w", api.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	acc.passwordHash = hash
	return nil
}

func (b *Backend) DeleteAccount(ctx context.Context) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	acc, err := b.authed()
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.accounts, acc.user.ID)
	for t, id := range b.access {
		if id == acc.user.ID {
			delete(b.access, t)
		}
	}
	for t, id := range b.refresh {
		if id == acc.user.ID {
			delete(b.refresh, t)
		}
	}
	return nil
}

func (b *Backend) RequestUploadTarget(ctx context.Context, filename string) (*models.UploadTarget, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if _, err := b.authed(); err != nil {
		return nil, err
	}
	url := "https://fake-s3-bucket.s3.amazonaws.com/uploads/" + filename
	return &models.UploadTarget{UploadURL: url, ImageURL: url}, nil
}

// Exchange rotates a refresh token, mirroring the live refresh endpoint.
func (b *Backend) Exchange(ctx context.Context, refreshToken string) (string, string, error) {
	if err := b.wait(ctx); err != nil {
		return "", "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	userID, ok := b.refresh[refreshToken]
	if !ok {
		return "", "", fmt.Errorf("refresh: %w", api.ErrAuthFailed)
	}
	delete(b.refresh, refreshToken)
	access := uuid.NewString()
	next := uuid.NewString()
	b.access[access] = userID
	b.refresh[next] = userID
	return access, next, nil
}

// RevokeAccessToken invalidates one access token, leaving any refresh
// token alone. Lets tests and demos force the refresh flow.
func (b *Backend) RevokeAccessToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.access, token)
}

func (b *Backend) authed() (*account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.token()
	if t == "" {
		return nil, fmt.Errorf("missing access token: %w", api.ErrAuthFailed)
	}
	userID, ok := b.access[t]
	if !ok {
		return nil, fmt.Errorf("invalid access token: %w", api.ErrAuthFailed)
	}
	acc, ok := b.accounts[userID]
	if !ok {
		return nil, fmt.Errorf("unknown user: %w", api.ErrAuthFailed)
	}
	return acc, nil
}

// issueTokens must be called with b.mu held.
func (b *Backend) issueTokens(user models.User) *models.AuthResult {
	access := uuid.NewString()
	refreshToken := uuid.NewString()
	b.access[access] = user.ID
	b.refresh[refreshToken] = user.ID
	return &models.AuthResult{User: user, AccessToken: access, RefreshToken: refreshToken}
}

func (b *Backend) categoryByID(id int) *models.Category {
	for _, c := range categories {
		if c.ID == id {
			out := c
			return &out
		}
	}
	return nil
}

package graphqlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nebulamart/storefront/internal/api"
)

// RefreshClient talks to the auxiliary REST endpoint that swaps a refresh
// token for a new pair.
type RefreshClient struct {
	url        string
	httpClient *http.Client
}

var _ api.Exchanger = (*RefreshClient)(nil)

func NewRefreshClient(url string) *RefreshClient {
	return &RefreshClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *RefreshClient) Exchange(ctx context.Context, refreshToken string) (string, string, error) {
	body, err := json.Marshal(map[string]string{"token": refreshToken})
	if err != nil {
		return "", "", fmt.Errorf("refresh: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("refresh: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("refresh: %v: %w", err, api.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("refresh: status %d: %w", resp.StatusCode, api.ErrAuthFailed)
	}

	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("refresh: decode: %w", err)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return "", "", fmt.Errorf("refresh: incomplete token pair: %w", api.ErrAuthFailed)
	}
	return out.AccessToken, out.RefreshToken, nil
}

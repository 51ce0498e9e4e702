// Package upload performs the two-step image upload: ask the facade for an
// upload target, then PUT the bytes straight to it.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/nebulamart/storefront/internal/api"
)

// Result reports where the image ended up. Placeholder is true when the
// direct transfer failed and a locally generated placeholder reference was
// substituted; callers must treat that as degraded, not as success.
type Result struct {
	ImageURL    string
	Placeholder bool
}

type Uploader struct {
	backend    api.Backend
	httpClient *http.Client
	log        *slog.Logger
}

func New(backend api.Backend, log *slog.Logger) *Uploader {
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{
		backend:    backend,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Upload requests a target for filename and transfers the content to it.
// A failure to obtain the target propagates; a failure of the transfer
// itself degrades to a placeholder reference.
func (u *Uploader) Upload(ctx context.Context, filename string, content io.Reader) (*Result, error) {
	target, err := u.backend.RequestUploadTarget(ctx, filename)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("upload %s: read content: %w", filename, err)
	}

	if err := u.put(ctx, target.UploadURL, filename, data); err != nil {
		u.log.Warn("direct upload failed, falling back to placeholder",
			"file", filename, "error", err)
		return &Result{ImageURL: PlaceholderFor(filename), Placeholder: true}, nil
	}
	return &Result{ImageURL: target.ImageURL}, nil
}

func (u *Uploader) put(ctx context.Context, uploadURL, filename string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, api.ErrNetwork)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %w", resp.StatusCode, api.ErrNetwork)
	}
	return nil
}

// PlaceholderFor builds the degraded-mode image reference for a filename.
func PlaceholderFor(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return "https://via.placeholder.com/300x300.png?text=" + url.QueryEscape(base)
}

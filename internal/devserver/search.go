package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/nebulamart/storefront/internal/config"
	"github.com/nebulamart/storefront/internal/models"
)

// NewESClient connects to the configured Elasticsearch cluster and
// verifies it answers.
func NewESClient(cfg *config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}
	return client, nil
}

// searchES runs the fuzzy multi_match the catalog index is built for.
func (s *Server) searchES(ctx context.Context, query string, from, size int) ([]models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return prods, nil
}

// indexProduct keeps the search index in step with the catalog.
// Best-effort: index failures are logged, never surfaced to the caller.
func (s *Server) indexProduct(c echo.Context, row Product) {
	if s.ES == nil {
		return
	}
	doc, err := json.Marshal(row.toAPI())
	if err != nil {
		s.Log.Warn("index product: marshal failed", "error", err)
		return
	}
	res, err := s.ES.Index(
		s.ESIndex,
		bytes.NewReader(doc),
		s.ES.Index.WithDocumentID(strconv.Itoa(int(row.ID))),
		s.ES.Index.WithContext(c.Request().Context()),
	)
	if err != nil {
		s.Log.Warn("index product failed", "productID", row.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.Log.Warn("index product failed", "productID", row.ID, "status", res.Status())
	}
}

func (s *Server) deleteFromIndex(c echo.Context, id int) {
	if s.ES == nil {
		return
	}
	res, err := s.ES.Delete(
		s.ESIndex,
		strconv.Itoa(id),
		s.ES.Delete.WithContext(c.Request().Context()),
	)
	if err != nil {
		s.Log.Warn("delete from index failed", "productID", id, "error", err)
		return
	}
	res.Body.Close()
}

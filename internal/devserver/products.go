package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nebulamart/storefront/internal/models"
)

const defaultPageSize = 50

func paginate(page, size *int) (offset, limit int) {
	p, n := 1, defaultPageSize
	if page != nil && *page > 0 {
		p = *page
	}
	if size != nil && *size > 0 && *size <= 100 {
		n = *size
	}
	return (p - 1) * n, n
}

func (s *Server) productQuery() *gorm.DB {
	return s.DB.Preload("Category").Preload("Images").Order("id ASC")
}

func (s *Server) resolveProducts(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	var v struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	}
	if len(vars) > 0 {
		if err := decodeVars(vars, &v); err != nil {
			return nil, err
		}
	}
	offset, limit := paginate(v.Page, v.Limit)

	var rows []Product
	if err := s.productQuery().Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return map[string]any{"products": toAPIProducts(rows)}, nil
}

func (s *Server) resolveProduct(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	var v struct {
		ID int `json:"id"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}
	var row Product
	if err := s.productQuery().Where("id = ?", v.ID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gqlErrorf("NOT_FOUND", "product %d not found", v.ID)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return map[string]any{"product": row.toAPI()}, nil
}

func (s *Server) resolveProductsByCategory(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	var v struct {
		CategoryID int  `json:"categoryId"`
		Page       *int `json:"page"`
		Limit      *int `json:"limit"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}
	offset, limit := paginate(v.Page, v.Limit)

	var rows []Product
	if err := s.productQuery().
		Where("category_id = ?", v.CategoryID).
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("products by category: %w", err)
	}
	return map[string]any{"productsByCategory": toAPIProducts(rows)}, nil
}

func (s *Server) resolveSearchProducts(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	var v struct {
		SearchTerm string `json:"searchTerm"`
		Page       *int   `json:"page"`
		Limit      *int   `json:"limit"`
		CategoryID *int   `json:"categoryId"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}
	if v.SearchTerm == "" {
		return nil, gqlErrorf("BAD_USER_INPUT", "searchTerm is required")
	}
	offset, limit := paginate(v.Page, v.Limit)

	if s.ES != nil {
		items, err := s.searchES(c.Request().Context(), v.SearchTerm, offset, limit)
		if err == nil {
			return map[string]any{"searchProducts": items}, nil
		}
		s.Log.Warn("elasticsearch query failed, falling back to LIKE", "error", err)
	}

	term := "%" + strings.ToLower(v.SearchTerm) + "%"
	q := s.productQuery().Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	if v.CategoryID != nil {
		q = q.Where("category_id = ?", *v.CategoryID)
	}
	var rows []Product
	if err := q.Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return map[string]any{"searchProducts": toAPIProducts(rows)}, nil
}

type productInput struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	InventoryCount int     `json:"inventory_count"`
	CategoryID     *uint   `json:"categoryId"`
}

func (in productInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return gqlErrorf("BAD_USER_INPUT", "name is required")
	}
	if in.Price < 0 {
		return gqlErrorf("BAD_USER_INPUT", "price must not be negative")
	}
	if in.InventoryCount < 0 {
		return gqlErrorf("BAD_USER_INPUT", "inventory_count must not be negative")
	}
	return nil
}

func (s *Server) resolveCreateProduct(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	user, err := s.requireAdmin(c)
	if err != nil {
		return nil, err
	}
	var v struct {
		Data productInput `json:"data"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}
	if err := v.Data.validate(); err != nil {
		return nil, err
	}

	row := Product{
		Name:           v.Data.Name,
		Description:    v.Data.Description,
		Price:          v.Data.Price,
		InventoryCount: v.Data.InventoryCount,
		CategoryID:     v.Data.CategoryID,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	if err := s.productQuery().Where("id = ?", row.ID).First(&row).Error; err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}

	s.indexProduct(c, row)
	s.publish(c, "product_events", user.ID, map[string]any{
		"type":      "product_created",
		"productID": row.ID,
		"name":      row.Name,
	})
	return map[string]any{"createProduct": row.toAPI()}, nil
}

func (s *Server) resolveUpdateProduct(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	user, err := s.requireAdmin(c)
	if err != nil {
		return nil, err
	}
	var v struct {
		ID   int          `json:"id"`
		Data productInput `json:"data"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}
	if err := v.Data.validate(); err != nil {
		return nil, err
	}

	var row Product
	if err := s.DB.First(&row, v.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gqlErrorf("NOT_FOUND", "product %d not found", v.ID)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	row.Name = v.Data.Name
	row.Description = v.Data.Description
	row.Price = v.Data.Price
	row.InventoryCount = v.Data.InventoryCount
	if v.Data.CategoryID != nil {
		row.CategoryID = v.Data.CategoryID
	}
	if err := s.DB.Save(&row).Error; err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	if err := s.productQuery().Where("id = ?", row.ID).First(&row).Error; err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}

	s.indexProduct(c, row)
	s.publish(c, "product_events", user.ID, map[string]any{
		"type":      "product_updated",
		"productID": row.ID,
		"name":      row.Name,
	})
	return map[string]any{"updateProduct": row.toAPI()}, nil
}

func (s *Server) resolveDeleteProduct(c echo.Context, vars json.RawMessage) (map[string]any, error) {
	user, err := s.requireAdmin(c)
	if err != nil {
		return nil, err
	}
	var v struct {
		ID int `json:"id"`
	}
	if err := decodeVars(vars, &v); err != nil {
		return nil, err
	}

	res := s.DB.Delete(&Product{}, v.ID)
	if res.Error != nil {
		return nil, fmt.Errorf("delete product: %w", res.Error)
	}
	deleted := res.RowsAffected > 0
	if deleted {
		s.deleteFromIndex(c, v.ID)
		s.publish(c, "product_events", user.ID, map[string]any{
			"type":      "product_deleted",
			"productID": v.ID,
		})
	}
	return map[string]any{"deleteProduct": deleted}, nil
}

func toAPIProducts(rows []Product) []models.Product {
	out := make([]models.Product, len(rows))
	for i, r := range rows {
		out[i] = r.toAPI()
	}
	return out
}

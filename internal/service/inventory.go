package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Skotchmaster/inventory/internal/export"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/mykafka"
	"github.com/Skotchmaster/inventory/internal/repo"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id int) error
}

type InventoryService struct {
	Repo       *repo.GormRepo
	Publisher  EventPublisher
	Index      ProductIndex
	ExportPath string
}

type ProductInput struct {
	Name     string
	Category string
	Stock    int
	Price    float64
}

type ExportResult struct {
	Path string
	Rows int
}

// ParseProductInput coerces raw form values. Only the numeric fields are
// checked, and price must be finite; names, negative numbers and duplicates are accepted as is.
func ParseProductInput(name, stock, price, category string) (ProductInput, error) {
	st, err := strconv.Atoi(strings.TrimSpace(stock))
	if err != nil {
		return ProductInput{}, fmt.Errorf("stock %q is not an integer: %w", stock, ErrValidation)
	}
	pr, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil || math.IsNaN(pr) || math.IsInf(pr, 0) {
		return ProductInput{}, fmt.Errorf("price %q is not a finite number: %w", price, ErrValidation)
	}
	return ProductInput{Name: name, Category: category, Stock: st, Price: pr}, nil
}

// Products returns every product, or an empty list when the store cannot be read.
func (s *InventoryService) Products(ctx context.Context) []models.Product {
	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).With("svc", "inventory.products").
			Warn("list_products_degraded", "reason", "cannot read products, returning empty set", "error", err)
		return []models.Product{}
	}
	return items
}

func (s *InventoryService) View(ctx context.Context, query string) InventoryView {
	return BuildView(s.Products(ctx), query)
}

func (s *InventoryService) AddProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}

	prod, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:     in.Name,
		Category: category,
		Stock:    in.Stock,
		Price:    in.Price,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, strconv.Itoa(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
		"category":  prod.Category,
		"stock":     prod.Stock,
		"price":     prod.Price,
	})
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, *prod); err != nil {
			logging.FromContext(ctx).Warn("index_product_failed", "productID", prod.ID, "error", err)
		}
	}

	return prod, nil
}

func (s *InventoryService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, strconv.Itoa(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_product_failed", "productID", id, "error", err)
		}
	}

	return nil
}

func (s *InventoryService) Export(ctx context.Context) (*ExportResult, error) {
	return s.ExportTo(ctx, s.ExportPath)
}

// ExportTo writes the full, unfiltered product set to path.
func (s *InventoryService) ExportTo(ctx context.Context, path string) (*ExportResult, error) {
	if path == "" {
		return nil, fmt.Errorf("export path is empty: %w", ErrValidation)
	}

	items := s.Products(ctx)
	if err := export.WriteFile(path, items); err != nil {
		return nil, err
	}

	s.publish(ctx, path, map[string]any{
		"type": "inventory_exported",
		"path": path,
		"rows": len(items),
	})

	return &ExportResult{Path: path, Rows: len(items)}, nil
}

func (s *InventoryService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishEvent(ctx, mykafka.TopicProductEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", mykafka.TopicProductEvents, "type", event["type"], "error", err)
	}
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/repos"
	"github.com/yungbote/catalog-backend/internal/types"
	"github.com/yungbote/catalog-backend/internal/webhook"
)

// ProductInput carries the mutable fields of a catalog row. On update, nil
// pointers mean "leave unchanged".
type ProductInput struct {
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Currency    string           `json:"currency"`
	IsActive    *bool            `json:"is_active"`
}

// ProductService is the single-row CRUD surface of the catalog. Bulk writes
// go through the ingestion pipeline instead.
type ProductService struct {
	log      *logger.Logger
	products repos.ProductRepo
	events   *EventEmitter
}

func NewProductService(baseLog *logger.Logger, products repos.ProductRepo, events *EventEmitter) *ProductService {
	return &ProductService{
		log:      baseLog.With("service", "ProductService"),
		products: products,
		events:   events,
	}
}

func (s *ProductService) List(ctx context.Context, filter repos.ProductFilter) ([]*types.Product, int64, error) {
	return s.products.List(ctx, nil, filter)
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	return s.products.GetByID(ctx, nil, id)
}

func (s *ProductService) Create(ctx context.Context, input ProductInput) (*types.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, fmt.Errorf("sku is required: %w", pkgerrors.ErrInvalidArgument)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = sku
	}
	price := decimal.Zero
	if input.Price != nil {
		price = *input.Price
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	p := &types.Product{
		SKU:         sku,
		Name:        name,
		Description: input.Description,
		Price:       price,
		Currency:    currency,
		IsActive:    isActive,
	}
	if err := s.products.Create(ctx, nil, p); err != nil {
		return nil, err
	}
	s.events.Emit(ctx, webhook.EventProductCreated, map[string]any{
		"id":  p.ID.String(),
		"sku": p.SKU,
	})
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*types.Product, error) {
	p, err := s.products.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	if sku := strings.TrimSpace(input.SKU); sku != "" {
		p.SKU = sku
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		p.Name = name
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if currency := strings.ToUpper(strings.TrimSpace(input.Currency)); currency != "" {
		p.Currency = currency
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}

	if err := s.products.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	s.events.Emit(ctx, webhook.EventProductUpdated, map[string]any{
		"id":  p.ID.String(),
		"sku": p.SKU,
	})
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.events.Emit(ctx, webhook.EventProductDeleted, map[string]any{
		"id": id.String(),
	})
	return nil
}

// DeleteAll truncates the catalog and returns how many rows went away.
func (s *ProductService) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.products.DeleteAll(ctx, nil)
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted all products", "count", deleted)
	s.events.Emit(ctx, webhook.EventProductBulkDeleted, map[string]any{
		"deleted": deleted,
	})
	return deleted, nil
}

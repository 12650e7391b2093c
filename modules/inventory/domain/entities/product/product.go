package product

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/value_objects/tirespec"
)

var ErrProductNotFound = errors.New("product not found")

// Repository is the product store port. The import coordinator and the
// reconciliation engine depend only on natural-key lookup, create and
// field-level update; nothing here leaks a query language.
type Repository interface {
	GetBySKU(ctx context.Context, sku string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	UpdatePriceStock(ctx context.Context, sku string, price decimal.Decimal, stock int, byLocation map[string]int) (Product, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type Product interface {
	ID() uuid.UUID
	SKU() string
	Description() string
	Price() decimal.Decimal
	Stock() int
	StockByLocation() map[string]int
	Spec() tirespec.Specification
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

type productImpl struct {
	id              uuid.UUID
	sku             string
	description     string
	price           decimal.Decimal
	stock           int
	stockByLocation map[string]int
	spec            tirespec.Specification
	createdAt       time.Time
	updatedAt       time.Time
}

func New(sku, description string, price decimal.Decimal, stock int, opts ...Option) Product {
	p := &productImpl{
		id:          uuid.New(),
		sku:         sku,
		description: description,
		price:       price,
		stock:       stock,
		createdAt:   time.Now(),
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type Option func(*productImpl)

func WithID(id uuid.UUID) Option {
	return func(p *productImpl) {
		if id != uuid.Nil {
			p.id = id
		}
	}
}

func WithStockByLocation(byLocation map[string]int) Option {
	return func(p *productImpl) {
		p.stockByLocation = byLocation
	}
}

func WithSpec(spec tirespec.Specification) Option {
	return func(p *productImpl) {
		p.spec = spec
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(p *productImpl) {
		if !createdAt.IsZero() {
			p.createdAt = createdAt
		}
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(p *productImpl) {
		if !updatedAt.IsZero() {
			p.updatedAt = updatedAt
		}
	}
}

func (p *productImpl) ID() uuid.UUID                { return p.id }
func (p *productImpl) SKU() string                  { return p.sku }
func (p *productImpl) Description() string          { return p.description }
func (p *productImpl) Price() decimal.Decimal       { return p.price }
func (p *productImpl) Stock() int                   { return p.stock }
func (p *productImpl) Spec() tirespec.Specification { return p.spec }
func (p *productImpl) CreatedAt() time.Time         { return p.createdAt }
func (p *productImpl) UpdatedAt() time.Time         { return p.updatedAt }

func (p *productImpl) StockByLocation() map[string]int {
	if p.stockByLocation == nil {
		return map[string]int{}
	}
	return p.stockByLocation
}

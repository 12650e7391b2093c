package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/product"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/value_objects/tirespec"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/composables"
)

const productColumns = `
	id,
	sku,
	description,
	price,
	stock,
	stock_by_location,
	width,
	aspect_ratio,
	rim_diameter,
	construction,
	load_index,
	speed_rating,
	spec_method,
	spec_confidence,
	ai_model,
	created_at,
	updated_at`

type pgProductRepository struct{}

func NewPgProductRepository() product.Repository {
	return &pgProductRepository{}
}

func (r *pgProductRepository) GetBySKU(ctx context.Context, sku string) (product.Product, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	row := tx.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE sku = $1
	`, sku)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "failed to get product")
	}
	return p, nil
}

func (r *pgProductRepository) Create(ctx context.Context, p product.Product) (product.Product, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	byLocation, err := json.Marshal(p.StockByLocation())
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal stock breakdown")
	}
	spec := p.Spec()

	row := tx.QueryRow(ctx, `
		INSERT INTO products (
			id,
			sku,
			description,
			price,
			stock,
			stock_by_location,
			width,
			aspect_ratio,
			rim_diameter,
			construction,
			load_index,
			speed_rating,
			spec_method,
			spec_confidence,
			ai_model,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		RETURNING `+productColumns,
		p.ID(),
		p.SKU(),
		p.Description(),
		p.Price(),
		p.Stock(),
		byLocation,
		spec.Width,
		spec.AspectRatio,
		spec.RimDiameter,
		spec.Construction,
		spec.LoadIndex,
		spec.SpeedRating,
		string(spec.Method),
		spec.Confidence,
		nullableString(spec.AIModel),
	)
	created, err := scanProduct(row)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}
	return created, nil
}

func (r *pgProductRepository) UpdatePriceStock(
	ctx context.Context,
	sku string,
	price decimal.Decimal,
	stock int,
	byLocation map[string]int,
) (product.Product, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	breakdown, err := json.Marshal(byLocation)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal stock breakdown")
	}

	row := tx.QueryRow(ctx, `
		UPDATE products
		SET price = $1, stock = $2, stock_by_location = $3, updated_at = now()
		WHERE sku = $4
		RETURNING `+productColumns,
		price,
		stock,
		breakdown,
		sku,
	)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "failed to update product")
	}
	return updated, nil
}

func (r *pgProductRepository) DeleteAll(ctx context.Context) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
		return errors.Wrap(err, "failed to clear products")
	}
	return nil
}

func (r *pgProductRepository) Count(ctx context.Context) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count products")
	}
	return count, nil
}

func scanProduct(row pgx.Row) (product.Product, error) {
	var (
		id           uuid.UUID
		sku          string
		description  string
		price        decimal.Decimal
		stock        int
		breakdown    []byte
		width        *int
		aspectRatio  *int
		rimDiameter  *int
		construction *string
		loadIndex    *int
		speedRating  *string
		specMethod   string
		confidence   int
		aiModel      *string
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(
		&id,
		&sku,
		&description,
		&price,
		&stock,
		&breakdown,
		&width,
		&aspectRatio,
		&rimDiameter,
		&construction,
		&loadIndex,
		&speedRating,
		&specMethod,
		&confidence,
		&aiModel,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	byLocation := map[string]int{}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &byLocation); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal stock breakdown")
		}
	}

	spec := tirespec.Specification{
		Width:        width,
		AspectRatio:  aspectRatio,
		RimDiameter:  rimDiameter,
		Construction: construction,
		LoadIndex:    loadIndex,
		SpeedRating:  speedRating,
		Confidence:   confidence,
		Method:       tirespec.Method(specMethod),
	}
	if aiModel != nil {
		spec.AIModel = *aiModel
	}

	return product.New(sku, description, price, stock,
		product.WithID(id),
		product.WithStockByLocation(byLocation),
		product.WithSpec(spec),
		product.WithCreatedAt(createdAt),
		product.WithUpdatedAt(updatedAt),
	), nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

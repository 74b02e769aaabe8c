package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// Product is a sellable stock unit belonging to a shop.
type Product struct {
	ID                string    `json:"id"`
	ShopID            string    `json:"shop_id"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku"`
	UnitBuyPrice      int64     `json:"unit_buy_price"`
	UnitSellPrice     int64     `json:"unit_sell_price"`
	Quantity          int       `json:"quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LowStock reports whether the product has fallen to or below its threshold.
func (p Product) LowStock() bool { return p.Quantity <= p.LowStockThreshold }

// Service encapsulates product stock operations for a shop.
type Service struct {
	Pool             *pgxpool.Pool
	Cache            *Cache
	DefaultThreshold int
}

func listCacheKey(shopID string) string { return "inv:" + shopID + ":list" }

const productColumns = `id, shop_id, name, sku, unit_buy_price, unit_sell_price, quantity, low_stock_threshold, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ShopID, &p.Name, &p.SKU, &p.UnitBuyPrice, &p.UnitSellPrice, &p.Quantity, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateInput carries the fields accepted when adding a product.
type CreateInput struct {
	Name              string `json:"name" validate:"required,min=1,max=150"`
	SKU               string `json:"sku" validate:"max=64"`
	UnitBuyPrice      int64  `json:"unit_buy_price" validate:"gte=0"`
	UnitSellPrice     int64  `json:"unit_sell_price" validate:"gte=0"`
	Quantity          int    `json:"quantity" validate:"gte=0"`
	LowStockThreshold *int   `json:"low_stock_threshold" validate:"omitempty,gte=0"`
}

// Create adds a product to the shop's stock.
func (s *Service) Create(ctx context.Context, shopID string, in CreateInput) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("inventory service not configured")
	}
	threshold := s.DefaultThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}
	id := uuid.NewString()
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO products (id, shop_id, name, sku, unit_buy_price, unit_sell_price, quantity, low_stock_threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		id, shopID, in.Name, in.SKU, in.UnitBuyPrice, in.UnitSellPrice, in.Quantity, threshold)
	p, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, common.ErrConflict("sku already exists in this shop")
		}
		return Product{}, err
	}
	s.Cache.Invalidate(ctx, listCacheKey(shopID))
	return p, nil
}

// List returns a page of the shop's products, serving the first default page
// from cache when possible.
func (s *Service) List(ctx context.Context, shopID string, page, perPage int) ([]Product, int, error) {
	cacheable := page == 1
	if cacheable {
		var cached struct {
			Products []Product `json:"products"`
			Total    int       `json:"total"`
			PerPage  int       `json:"per_page"`
		}
		if hit, err := s.Cache.GetJSON(ctx, listCacheKey(shopID), &cached); err == nil && hit && cached.PerPage == perPage {
			return cached.Products, cached.Total, nil
		}
	}

	var total int
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE shop_id = $1`, shopID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE shop_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`, shopID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	products := make([]Product, 0, perPage)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if cacheable {
		_ = s.Cache.SetJSON(ctx, listCacheKey(shopID), map[string]any{
			"products": products,
			"total":    total,
			"per_page": perPage,
		})
	}
	return products, total, nil
}

// Get loads a single product scoped to the shop.
func (s *Service) Get(ctx context.Context, shopID, productID string) (Product, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1 AND shop_id = $2`,
		productID, shopID)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, common.ErrNotFound("product not found")
	}
	return p, err
}

// UpdateInput carries mutable product fields.
type UpdateInput struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=150"`
	SKU               *string `json:"sku" validate:"omitempty,max=64"`
	UnitBuyPrice      *int64  `json:"unit_buy_price" validate:"omitempty,gte=0"`
	UnitSellPrice     *int64  `json:"unit_sell_price" validate:"omitempty,gte=0"`
	Quantity          *int    `json:"quantity" validate:"omitempty,gte=0"`
	LowStockThreshold *int    `json:"low_stock_threshold" validate:"omitempty,gte=0"`
}

// Update applies a partial update and returns the fresh row.
func (s *Service) Update(ctx context.Context, shopID, productID string, in UpdateInput) (Product, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE products SET
			name = COALESCE($3, name),
			sku = COALESCE($4, sku),
			unit_buy_price = COALESCE($5, unit_buy_price),
			unit_sell_price = COALESCE($6, unit_sell_price),
			quantity = COALESCE($7, quantity),
			low_stock_threshold = COALESCE($8, low_stock_threshold),
			updated_at = now()
		WHERE id = $1 AND shop_id = $2
		RETURNING `+productColumns,
		productID, shopID, in.Name, in.SKU, in.UnitBuyPrice, in.UnitSellPrice, in.Quantity, in.LowStockThreshold)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, common.ErrNotFound("product not found")
	}
	if err != nil {
		return Product{}, err
	}
	s.Cache.Invalidate(ctx, listCacheKey(shopID))
	return p, nil
}

// Delete removes a product from the shop's stock.
func (s *Service) Delete(ctx context.Context, shopID, productID string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND shop_id = $2`, productID, shopID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound("product not found")
	}
	s.Cache.Invalidate(ctx, listCacheKey(shopID))
	return nil
}

// ListLowStock returns the shop's products at or below their threshold.
func (s *Service) ListLowStock(ctx context.Context, shopID string) ([]Product, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE shop_id = $1 AND quantity <= low_stock_threshold
		ORDER BY quantity ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]Product, 0, 8)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

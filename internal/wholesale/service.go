package wholesale

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Product is one wholesale catalog entry. The catalog is platform-owned and
// read-only to shops.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	UnitPrice int64  `json:"unit_price"`
	MinOrder  int    `json:"min_order"`
	Supplier  string `json:"supplier"`
}

// Service serves the wholesale catalog with a short redis cache in front.
type Service struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
	TTL   time.Duration
}

// List returns a catalog page, optionally filtered by category. Unfiltered
// pages are cached.
func (s *Service) List(ctx context.Context, category string, page, perPage int) ([]Product, int, error) {
	key := ""
	if category == "" {
		key = "wholesale:page:" + strconv.Itoa(page) + ":" + strconv.Itoa(perPage)
	}
	if key != "" && s.Redis != nil {
		if data, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var cached struct {
				Products []Product `json:"products"`
				Total    int       `json:"total"`
			}
			if json.Unmarshal(data, &cached) == nil {
				return cached.Products, cached.Total, nil
			}
		}
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM wholesale_products`
	listQuery := `
		SELECT id, name, category, unit_price, min_order, supplier
		FROM wholesale_products
		ORDER BY category, name
		LIMIT $1 OFFSET $2`
	args := []any{perPage, (page - 1) * perPage}
	if category != "" {
		countQuery = `SELECT COUNT(*) FROM wholesale_products WHERE category = $1`
		listQuery = `
			SELECT id, name, category, unit_price, min_order, supplier
			FROM wholesale_products
			WHERE category = $1
			ORDER BY name
			LIMIT $2 OFFSET $3`
		args = []any{category, perPage, (page - 1) * perPage}
	}

	if category == "" {
		if err := s.Pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
			return nil, 0, err
		}
	} else {
		if err := s.Pool.QueryRow(ctx, countQuery, category).Scan(&total); err != nil {
			return nil, 0, err
		}
	}

	rows, err := s.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	products := make([]Product, 0, perPage)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.MinOrder, &p.Supplier); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if key != "" && s.Redis != nil {
		payload, err := json.Marshal(struct {
			Products []Product `json:"products"`
			Total    int       `json:"total"`
		}{products, total})
		if err == nil {
			_ = s.Redis.Set(ctx, key, payload, s.TTL).Err()
		}
	}
	return products, total, nil
}

package referral

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// Referral records one shop owner referring another seller.
type Referral struct {
	ID           string    `json:"id"`
	RefereeName  string    `json:"referee_name"`
	RefereePhone string    `json:"referee_phone"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateInput carries a new referral.
type CreateInput struct {
	RefereeName  string `json:"referee_name" validate:"required,max=120"`
	RefereePhone string `json:"referee_phone" validate:"required,min=6,max=32"`
}

// Service persists referrals.
type Service struct {
	Pool *pgxpool.Pool
}

// Create records a referral in pending status. A phone may be referred once
// per shop.
func (s *Service) Create(ctx context.Context, shopID string, in CreateInput) (Referral, error) {
	ref := Referral{
		ID:           uuid.NewString(),
		RefereeName:  in.RefereeName,
		RefereePhone: in.RefereePhone,
		Status:       "pending",
	}
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO referrals (id, shop_id, referee_name, referee_phone, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING created_at`,
		ref.ID, shopID, ref.RefereeName, ref.RefereePhone).Scan(&ref.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Referral{}, common.ErrConflict("this phone has already been referred")
	}
	if err != nil {
		return Referral{}, err
	}
	return ref, nil
}

// List returns the shop's referrals, newest first.
func (s *Service) List(ctx context.Context, shopID string) ([]Referral, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, referee_name, referee_phone, status, created_at
		FROM referrals
		WHERE shop_id = $1
		ORDER BY created_at DESC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	referrals := make([]Referral, 0, 8)
	for rows.Next() {
		var ref Referral
		if err := rows.Scan(&ref.ID, &ref.RefereeName, &ref.RefereePhone, &ref.Status, &ref.CreatedAt); err != nil {
			return nil, err
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}

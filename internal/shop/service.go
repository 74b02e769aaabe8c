package shop

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// OnboardingSteps is the number of steps in the seller onboarding wizard.
const OnboardingSteps = 3

// Shop is a single tenant of the POS system.
type Shop struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Currency       string    `json:"currency"`
	OnboardingStep int       `json:"onboarding_step"`
	CreatedAt      time.Time `json:"created_at"`
}

// Onboarded reports whether the seller finished the signup wizard.
func (s Shop) Onboarded() bool { return s.OnboardingStep >= OnboardingSteps }

// Service encapsulates shop domain operations.
type Service struct {
	Pool *pgxpool.Pool
}

// NewService constructs a shop service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{Pool: pool}
}

// CreateInput carries the fields accepted when registering a shop.
type CreateInput struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Address  string `json:"address" validate:"max=250"`
	Phone    string `json:"phone" validate:"max=32"`
	Currency string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

// Create registers a new shop owned by the given user at onboarding step 1.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Shop, error) {
	if s == nil || s.Pool == nil {
		return Shop{}, errors.New("shop service not configured")
	}
	currency := in.Currency
	if currency == "" {
		currency = "BDT"
	}
	shop := Shop{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Name:           in.Name,
		Address:        in.Address,
		Phone:          in.Phone,
		Currency:       currency,
		OnboardingStep: 1,
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO shops (id, owner_id, name, address, phone, currency, onboarding_step)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		shop.ID, shop.OwnerID, shop.Name, shop.Address, shop.Phone, shop.Currency, shop.OnboardingStep)
	if err := row.Scan(&shop.CreatedAt); err != nil {
		return Shop{}, err
	}
	return shop, nil
}

// ListByOwner returns all shops owned by the user, newest first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Shop, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, owner_id, name, address, phone, currency, onboarding_step, created_at
		FROM shops WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shops := make([]Shop, 0, 4)
	for rows.Next() {
		var sh Shop
		if err := rows.Scan(&sh.ID, &sh.OwnerID, &sh.Name, &sh.Address, &sh.Phone, &sh.Currency, &sh.OnboardingStep, &sh.CreatedAt); err != nil {
			return nil, err
		}
		shops = append(shops, sh)
	}
	return shops, rows.Err()
}

// Get loads one shop owned by the user.
func (s *Service) Get(ctx context.Context, ownerID, shopID string) (Shop, error) {
	var sh Shop
	row := s.Pool.QueryRow(ctx, `
		SELECT id, owner_id, name, address, phone, currency, onboarding_step, created_at
		FROM shops WHERE id = $1 AND owner_id = $2`, shopID, ownerID)
	err := row.Scan(&sh.ID, &sh.OwnerID, &sh.Name, &sh.Address, &sh.Phone, &sh.Currency, &sh.OnboardingStep, &sh.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shop{}, common.ErrNotFound("shop not found")
	}
	return sh, err
}

// UpdateInput carries mutable shop profile fields.
type UpdateInput struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Address  *string `json:"address" validate:"omitempty,max=250"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Currency *string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

// Update applies a partial profile update and returns the fresh row.
func (s *Service) Update(ctx context.Context, ownerID, shopID string, in UpdateInput) (Shop, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE shops SET
			name = COALESCE($3, name),
			address = COALESCE($4, address),
			phone = COALESCE($5, phone),
			currency = COALESCE($6, currency)
		WHERE id = $1 AND owner_id = $2`,
		shopID, ownerID, in.Name, in.Address, in.Phone, in.Currency)
	if err != nil {
		return Shop{}, err
	}
	if tag.RowsAffected() == 0 {
		return Shop{}, common.ErrNotFound("shop not found")
	}
	return s.Get(ctx, ownerID, shopID)
}

// AdvanceOnboarding moves the seller onboarding wizard forward by one step.
// The caller supplies the step it believes it is completing; a mismatch with
// the stored progression is a conflict, which keeps double-submitted wizard
// forms from skipping ahead.
func (s *Service) AdvanceOnboarding(ctx context.Context, ownerID, shopID string, completedStep int) (Shop, error) {
	sh, err := s.Get(ctx, ownerID, shopID)
	if err != nil {
		return Shop{}, err
	}
	if sh.Onboarded() {
		return Shop{}, common.ErrConflict("onboarding already complete")
	}
	if completedStep != sh.OnboardingStep {
		return Shop{}, common.ErrConflict("onboarding step out of sequence")
	}
	_, err = s.Pool.Exec(ctx, `
		UPDATE shops SET onboarding_step = onboarding_step + 1
		WHERE id = $1 AND owner_id = $2 AND onboarding_step = $3`,
		shopID, ownerID, completedStep)
	if err != nil {
		return Shop{}, err
	}
	return s.Get(ctx, ownerID, shopID)
}

// UserOwnsShop implements tenant.ShopChecker.
func (s *Service) UserOwnsShop(ctx context.Context, userID, shopID string) (bool, error) {
	var exists bool
	err := s.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shops WHERE id = $1 AND owner_id = $2)`,
		shopID, userID).Scan(&exists)
	return exists, err
}

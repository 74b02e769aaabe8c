package employee

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// Employee is a shop worker who clocks attendance with a PIN.
type Employee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Salary    int64     `json:"salary"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceRecord is one check-in, possibly still open.
type AttendanceRecord struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	CheckedIn  time.Time  `json:"checked_in"`
	CheckedOut *time.Time `json:"checked_out,omitempty"`
}

// CreateInput carries a new employee. The PIN is hashed before storage and
// never returned.
type CreateInput struct {
	Name   string `json:"name" validate:"required,max=120"`
	Phone  string `json:"phone" validate:"required,min=6,max=32"`
	Role   string `json:"role" validate:"required,oneof=manager cashier stocker"`
	Salary int64  `json:"salary" validate:"gte=0"`
	PIN    string `json:"pin" validate:"required,len=4,numeric"`
}

// UpdateInput carries a partial employee update.
type UpdateInput struct {
	Name   *string `json:"name" validate:"omitempty,max=120"`
	Role   *string `json:"role" validate:"omitempty,oneof=manager cashier stocker"`
	Salary *int64  `json:"salary" validate:"omitempty,gte=0"`
	Active *bool   `json:"active"`
	PIN    *string `json:"pin" validate:"omitempty,len=4,numeric"`
}

// PunchInput authenticates an attendance event.
type PunchInput struct {
	PIN string `json:"pin" validate:"required,len=4,numeric"`
}

// Service manages employees and attendance.
type Service struct {
	Pool *pgxpool.Pool
}

// Create registers an employee with an argon2id-hashed PIN.
func (s *Service) Create(ctx context.Context, shopID string, in CreateInput) (Employee, error) {
	hash, err := argon2id.CreateHash(in.PIN, argon2id.DefaultParams)
	if err != nil {
		return Employee{}, err
	}
	e := Employee{
		ID:     uuid.NewString(),
		Name:   in.Name,
		Phone:  in.Phone,
		Role:   in.Role,
		Salary: in.Salary,
		Active: true,
	}
	err = s.Pool.QueryRow(ctx, `
		INSERT INTO employees (id, shop_id, name, phone, role, salary, pin_hash, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING created_at`,
		e.ID, shopID, e.Name, e.Phone, e.Role, e.Salary, hash).Scan(&e.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Employee{}, common.ErrConflict("an employee with this phone already exists")
	}
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

// List returns the shop's employees, active first.
func (s *Service) List(ctx context.Context, shopID string) ([]Employee, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, phone, role, salary, active, created_at
		FROM employees
		WHERE shop_id = $1
		ORDER BY active DESC, created_at`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	employees := make([]Employee, 0, 8)
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Phone, &e.Role, &e.Salary, &e.Active, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// Get loads one employee scoped to the shop.
func (s *Service) Get(ctx context.Context, shopID, employeeID string) (Employee, error) {
	var e Employee
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, phone, role, salary, active, created_at
		FROM employees
		WHERE id = $1 AND shop_id = $2`, employeeID, shopID).Scan(
		&e.ID, &e.Name, &e.Phone, &e.Role, &e.Salary, &e.Active, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, common.ErrNotFound("employee not found")
	}
	return e, err
}

// Update applies a partial update, rehashing the PIN when a new one arrives.
func (s *Service) Update(ctx context.Context, shopID, employeeID string, in UpdateInput) (Employee, error) {
	var pinHash *string
	if in.PIN != nil {
		hash, err := argon2id.CreateHash(*in.PIN, argon2id.DefaultParams)
		if err != nil {
			return Employee{}, err
		}
		pinHash = &hash
	}
	tag, err := s.Pool.Exec(ctx, `
		UPDATE employees SET
			name = COALESCE($3, name),
			role = COALESCE($4, role),
			salary = COALESCE($5, salary),
			active = COALESCE($6, active),
			pin_hash = COALESCE($7, pin_hash)
		WHERE id = $1 AND shop_id = $2`,
		employeeID, shopID, in.Name, in.Role, in.Salary, in.Active, pinHash)
	if err != nil {
		return Employee{}, err
	}
	if tag.RowsAffected() == 0 {
		return Employee{}, common.ErrNotFound("employee not found")
	}
	return s.Get(ctx, shopID, employeeID)
}

// CheckIn opens an attendance record after verifying the employee's PIN.
// Only one record may be open at a time.
func (s *Service) CheckIn(ctx context.Context, shopID, employeeID, pin string) (AttendanceRecord, error) {
	if err := s.verifyPIN(ctx, shopID, employeeID, pin); err != nil {
		return AttendanceRecord{}, err
	}

	var open int
	if err := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance
		WHERE employee_id = $1 AND checked_out IS NULL`, employeeID).Scan(&open); err != nil {
		return AttendanceRecord{}, err
	}
	if open > 0 {
		return AttendanceRecord{}, common.ErrConflict("employee is already checked in")
	}

	rec := AttendanceRecord{ID: uuid.NewString(), EmployeeID: employeeID}
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO attendance (id, shop_id, employee_id)
		VALUES ($1, $2, $3)
		RETURNING checked_in`, rec.ID, shopID, employeeID).Scan(&rec.CheckedIn)
	if err != nil {
		return AttendanceRecord{}, err
	}
	return rec, nil
}

// CheckOut closes the open attendance record after verifying the PIN.
func (s *Service) CheckOut(ctx context.Context, shopID, employeeID, pin string) (AttendanceRecord, error) {
	if err := s.verifyPIN(ctx, shopID, employeeID, pin); err != nil {
		return AttendanceRecord{}, err
	}

	var rec AttendanceRecord
	rec.EmployeeID = employeeID
	err := s.Pool.QueryRow(ctx, `
		UPDATE attendance SET checked_out = now()
		WHERE id = (
			SELECT id FROM attendance
			WHERE employee_id = $1 AND checked_out IS NULL
			ORDER BY checked_in DESC
			LIMIT 1
		)
		RETURNING id, checked_in, checked_out`, employeeID).Scan(&rec.ID, &rec.CheckedIn, &rec.CheckedOut)
	if errors.Is(err, pgx.ErrNoRows) {
		return AttendanceRecord{}, common.ErrConflict("employee is not checked in")
	}
	if err != nil {
		return AttendanceRecord{}, err
	}
	return rec, nil
}

// Attendance lists an employee's records for one calendar month.
func (s *Service) Attendance(ctx context.Context, shopID, employeeID string, year int, month time.Month) ([]AttendanceRecord, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows, err := s.Pool.Query(ctx, `
		SELECT id, employee_id, checked_in, checked_out
		FROM attendance
		WHERE shop_id = $1 AND employee_id = $2 AND checked_in >= $3 AND checked_in < $4
		ORDER BY checked_in`, shopID, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]AttendanceRecord, 0, 31)
	for rows.Next() {
		var rec AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.CheckedIn, &rec.CheckedOut); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Service) verifyPIN(ctx context.Context, shopID, employeeID, pin string) error {
	var (
		hash   string
		active bool
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT pin_hash, active FROM employees
		WHERE id = $1 AND shop_id = $2`, employeeID, shopID).Scan(&hash, &active)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrNotFound("employee not found")
	}
	if err != nil {
		return err
	}
	if !active {
		return common.ErrConflict("employee is inactive")
	}
	match, err := argon2id.ComparePasswordAndHash(pin, hash)
	if err != nil {
		return err
	}
	if !match {
		return common.NewAppError("UNAUTHORIZED", "incorrect PIN", 401, nil)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrm.service/internal/core/model"
)

// UserRepository contract. Find methods return (nil, nil) when no row
// matches.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int64) error
}

// PostgresUserRepository is the concrete implementation for a PostgreSQL database.
type PostgresUserRepository struct {
	DB *sql.DB
}

// NewUserRepository create new instance
func NewUserRepository(db *sql.DB) UserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, role, department, position,
       phone_number, date_of_birth, hire_date, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var dob, hire sql.NullTime
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role,
		&u.Department, &u.Position, &u.PhoneNumber, &dob, &hire, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		u.DateOfBirth = &dob.Time
	}
	if hire.Valid {
		u.HireDate = &hire.Time
	}
	return u, nil
}

// Create inserts a new user and returns its id. ErrDuplicate signals an
// email collision.
func (r *PostgresUserRepository) Create(ctx context.Context, u *model.User) (int64, error) {
	query := `INSERT INTO users (first_name, last_name, email, password_hash, role, department, position,
                  phone_number, date_of_birth, hire_date, is_active)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`

	var id int64
	err := r.DB.QueryRowContext(ctx, query, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role,
		u.Department, u.Position, u.PhoneNumber, nullTime(u.DateOfBirth), nullTime(u.HireDate), u.IsActive).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// Update overwrites all mutable fields of the user row.
func (r *PostgresUserRepository) Update(ctx context.Context, u *model.User) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.user_id", u.ID))

	query := `UPDATE users
              SET first_name = $1, last_name = $2, email = $3, password_hash = $4, role = $5,
                  department = $6, position = $7, phone_number = $8, date_of_birth = $9,
                  hire_date = $10, is_active = $11, updated_at = now()
              WHERE id = $12`

	_, err := r.DB.ExecContext(ctx, query, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role,
		u.Department, u.Position, u.PhoneNumber, nullTime(u.DateOfBirth), nullTime(u.HireDate), u.IsActive, u.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

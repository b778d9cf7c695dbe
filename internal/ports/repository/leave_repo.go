package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrm.service/internal/core/model"
)

// LeaveFilter narrows the privileged leave listing. From/To bound the leave
// start date.
type LeaveFilter struct {
	Status model.LeaveStatus
	From   *time.Time
	To     *time.Time
}

// LeaveRepository contract
type LeaveRepository interface {
	Create(ctx context.Context, l *model.Leave) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Leave, error)
	FindByEmployee(ctx context.Context, employeeID int64) ([]model.Leave, error)
	FindFiltered(ctx context.Context, f LeaveFilter) ([]model.Leave, error)
	Update(ctx context.Context, l *model.Leave) error
	Delete(ctx context.Context, id int64) error
}

// PostgresLeaveRepository is the concrete implementation for a PostgreSQL database.
type PostgresLeaveRepository struct {
	DB *sql.DB
}

// NewLeaveRepository create new instance
func NewLeaveRepository(db *sql.DB) LeaveRepository {
	return &PostgresLeaveRepository{DB: db}
}

const leaveColumns = `id, employee_id, leave_type, start_date, end_date, number_of_days, reason,
       status, comments, reviewed_by, reviewed_at, created_at, updated_at`

func scanLeave(row interface{ Scan(...any) error }) (*model.Leave, error) {
	l := &model.Leave{}
	var reviewedBy sql.NullInt64
	var reviewedAt sql.NullTime
	err := row.Scan(&l.ID, &l.EmployeeID, &l.LeaveType, &l.StartDate, &l.EndDate, &l.NumberOfDays,
		&l.Reason, &l.Status, &l.Comments, &reviewedBy, &reviewedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if reviewedBy.Valid {
		l.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		l.ReviewedAt = &reviewedAt.Time
	}
	l.StartDate = l.StartDate.UTC()
	l.EndDate = l.EndDate.UTC()
	return l, nil
}

func (r *PostgresLeaveRepository) Create(ctx context.Context, l *model.Leave) (int64, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", l.EmployeeID))

	query := `INSERT INTO leaves (employee_id, leave_type, start_date, end_date, number_of_days, reason, status)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var id int64
	err := r.DB.QueryRowContext(ctx, query, l.EmployeeID, l.LeaveType, l.StartDate, l.EndDate,
		l.NumberOfDays, l.Reason, l.Status).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresLeaveRepository) FindByID(ctx context.Context, id int64) (*model.Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves WHERE id = $1`

	l, err := scanLeave(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *PostgresLeaveRepository) FindByEmployee(ctx context.Context, employeeID int64) ([]model.Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves WHERE employee_id = $1 ORDER BY created_at DESC`

	return r.queryMany(ctx, query, employeeID)
}

func (r *PostgresLeaveRepository) FindFiltered(ctx context.Context, f LeaveFilter) ([]model.Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves WHERE 1=1`
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += ` AND start_date >= $` + strconv.Itoa(len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += ` AND start_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	return r.queryMany(ctx, query, args...)
}

// Update persists the mutable leave fields, including the review outcome.
func (r *PostgresLeaveRepository) Update(ctx context.Context, l *model.Leave) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", l.EmployeeID))

	query := `UPDATE leaves
              SET leave_type = $1, start_date = $2, end_date = $3, number_of_days = $4, reason = $5,
                  status = $6, comments = $7, reviewed_by = $8, reviewed_at = $9, updated_at = now()
              WHERE id = $10`

	_, err := r.DB.ExecContext(ctx, query, l.LeaveType, l.StartDate, l.EndDate, l.NumberOfDays,
		l.Reason, l.Status, l.Comments, nullInt(l.ReviewedBy), nullTime(l.ReviewedAt), l.ID)
	return err
}

func (r *PostgresLeaveRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM leaves WHERE id = $1`, id)
	return err
}

func (r *PostgresLeaveRepository) queryMany(ctx context.Context, query string, args ...any) ([]model.Leave, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaves []model.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, *l)
	}
	return leaves, rows.Err()
}

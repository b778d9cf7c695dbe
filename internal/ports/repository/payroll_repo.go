package repository

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrm.service/internal/core/model"
)

// PayrollRepository contract. Upsert is the atomic create-or-replace keyed
// on (user, pay period).
type PayrollRepository interface {
	Upsert(ctx context.Context, p *model.Payroll) (*model.Payroll, error)
	FindByUserAndPeriod(ctx context.Context, userID int64, period string) (*model.Payroll, error)
	FindLatestByUser(ctx context.Context, userID int64) (*model.Payroll, error)
	FindAllByUser(ctx context.Context, userID int64) ([]model.Payroll, error)
}

// PostgresPayrollRepository is the concrete implementation for a PostgreSQL database.
type PostgresPayrollRepository struct {
	DB *sql.DB
}

// NewPayrollRepository create new instance
func NewPayrollRepository(db *sql.DB) PayrollRepository {
	return &PostgresPayrollRepository{DB: db}
}

const payrollColumns = `id, user_id, pay_period, base_salary, allowances, deductions, gross_pay, net_pay,
       effective_date, notes, created_at, updated_at`

func scanPayroll(row interface{ Scan(...any) error }) (*model.Payroll, error) {
	p := &model.Payroll{}
	err := row.Scan(&p.ID, &p.UserID, &p.PayPeriod, &p.BaseSalary, &p.Allowances, &p.Deductions,
		&p.GrossPay, &p.NetPay, &p.EffectiveDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Upsert creates or replaces the record for (user, pay period) in one
// statement and returns the resulting row.
func (r *PostgresPayrollRepository) Upsert(ctx context.Context, p *model.Payroll) (*model.Payroll, error) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("app.user_id", p.UserID),
		attribute.String("app.pay_period", p.PayPeriod),
	)

	query := `INSERT INTO payrolls (user_id, pay_period, base_salary, allowances, deductions, gross_pay, net_pay, effective_date, notes)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              ON CONFLICT (user_id, pay_period) DO UPDATE
              SET base_salary = EXCLUDED.base_salary,
                  allowances = EXCLUDED.allowances,
                  deductions = EXCLUDED.deductions,
                  gross_pay = EXCLUDED.gross_pay,
                  net_pay = EXCLUDED.net_pay,
                  effective_date = EXCLUDED.effective_date,
                  notes = EXCLUDED.notes,
                  updated_at = now()
              RETURNING ` + payrollColumns

	row := r.DB.QueryRowContext(ctx, query, p.UserID, p.PayPeriod, p.BaseSalary, p.Allowances,
		p.Deductions, p.GrossPay, p.NetPay, p.EffectiveDate, p.Notes)
	saved, err := scanPayroll(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return saved, nil
}

func (r *PostgresPayrollRepository) FindByUserAndPeriod(ctx context.Context, userID int64, period string) (*model.Payroll, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE user_id = $1 AND pay_period = $2`

	p, err := scanPayroll(r.DB.QueryRowContext(ctx, query, userID, period))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// FindLatestByUser returns the most recent record by pay period ordering.
// Lexicographic sort is correct for the fixed-width YYYY-MM format.
func (r *PostgresPayrollRepository) FindLatestByUser(ctx context.Context, userID int64) (*model.Payroll, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls
              WHERE user_id = $1 ORDER BY pay_period DESC LIMIT 1`

	p, err := scanPayroll(r.DB.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *PostgresPayrollRepository) FindAllByUser(ctx context.Context, userID int64) ([]model.Payroll, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls
              WHERE user_id = $1 ORDER BY pay_period DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *p)
	}
	return records, rows.Err()
}

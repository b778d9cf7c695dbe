package repository

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hrm.service/internal/core/model"
)

// AttendanceRepository contract. The store enforces at most one row per
// (user, day); Create surfaces a constraint race as ErrDuplicate so the
// caller can degrade to a re-read.
type AttendanceRepository interface {
	Create(ctx context.Context, a *model.Attendance) (int64, error)
	Update(ctx context.Context, a *model.Attendance) error
	FindByUserAndDate(ctx context.Context, userID int64, day time.Time) (*model.Attendance, error)
	FindRangeByUser(ctx context.Context, userID int64, start, end time.Time) ([]model.Attendance, error)
	FindRange(ctx context.Context, start, end time.Time) ([]model.Attendance, error)
}

// PostgresAttendanceRepository is the concrete implementation for a PostgreSQL database.
type PostgresAttendanceRepository struct {
	DB *sql.DB
}

// NewAttendanceRepository create new instance
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &PostgresAttendanceRepository{DB: db}
}

const attendanceColumns = `id, user_id, date, check_in, check_out, status, duration_hours, notes, leave_id, created_at, updated_at`

func scanAttendance(row interface{ Scan(...any) error }) (*model.Attendance, error) {
	a := &model.Attendance{}
	var checkIn, checkOut sql.NullTime
	var leaveID sql.NullInt64
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &checkIn, &checkOut, &a.Status,
		&a.DurationHours, &a.Notes, &leaveID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if checkIn.Valid {
		a.CheckIn = &checkIn.Time
	}
	if checkOut.Valid {
		a.CheckOut = &checkOut.Time
	}
	if leaveID.Valid {
		a.LeaveID = &leaveID.Int64
	}
	a.Date = a.Date.UTC()
	return a, nil
}

func (r *PostgresAttendanceRepository) Create(ctx context.Context, a *model.Attendance) (int64, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.user_id", a.UserID))

	query := `INSERT INTO attendances (user_id, date, check_in, check_out, status, duration_hours, notes, leave_id)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var id int64
	err := r.DB.QueryRowContext(ctx, query, a.UserID, a.Date, nullTime(a.CheckIn), nullTime(a.CheckOut),
		a.Status, a.DurationHours, a.Notes, nullInt(a.LeaveID)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *PostgresAttendanceRepository) Update(ctx context.Context, a *model.Attendance) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.user_id", a.UserID))

	query := `UPDATE attendances
              SET check_in = $1, check_out = $2, status = $3, duration_hours = $4,
                  notes = $5, leave_id = $6, updated_at = now()
              WHERE id = $7`

	_, err := r.DB.ExecContext(ctx, query, nullTime(a.CheckIn), nullTime(a.CheckOut), a.Status,
		a.DurationHours, a.Notes, nullInt(a.LeaveID), a.ID)
	return err
}

// FindByUserAndDate fetches the record for a single calendar day. Returns
// (nil, nil) when the day has no record yet.
func (r *PostgresAttendanceRepository) FindByUserAndDate(ctx context.Context, userID int64, day time.Time) (*model.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE user_id = $1 AND date = $2`

	a, err := scanAttendance(r.DB.QueryRowContext(ctx, query, userID, day))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *PostgresAttendanceRepository) FindRangeByUser(ctx context.Context, userID int64, start, end time.Time) ([]model.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances
              WHERE user_id = $1 AND date >= $2 AND date <= $3
              ORDER BY date`

	return r.queryMany(ctx, query, userID, start, end)
}

func (r *PostgresAttendanceRepository) FindRange(ctx context.Context, start, end time.Time) ([]model.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances
              WHERE date >= $1 AND date <= $2
              ORDER BY date, user_id`

	return r.queryMany(ctx, query, start, end)
}

func (r *PostgresAttendanceRepository) queryMany(ctx context.Context, query string, args ...any) ([]model.Attendance, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *a)
	}
	return records, rows.Err()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

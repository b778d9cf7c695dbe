package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/repository"
)

// PayrollService maintains the one-record-per-(user, pay period) payroll
// ledger.
type PayrollService struct {
	repo     repository.PayrollRepository
	users    repository.UserRepository
	notifier Notifier
}

// NewPayrollService creates a new instance of the payroll service.
func NewPayrollService(repo repository.PayrollRepository, users repository.UserRepository, notifier Notifier) *PayrollService {
	return &PayrollService{repo: repo, users: users, notifier: notifier}
}

type SalaryInput struct {
	PayPeriod     string
	BaseSalary    float64
	Allowances    float64
	Deductions    float64
	Notes         string
	EffectiveDate *time.Time
}

// UpsertSalary creates or replaces the record for (user, pay period). Gross
// and net pay are always recomputed server-side from the persisted inputs,
// never trusted from the caller.
func (s *PayrollService) UpsertSalary(ctx context.Context, userID int64, in SalaryInput) (*model.Payroll, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	record := &model.Payroll{
		UserID:        userID,
		PayPeriod:     in.PayPeriod,
		BaseSalary:    in.BaseSalary,
		Allowances:    in.Allowances,
		Deductions:    in.Deductions,
		EffectiveDate: time.Now().UTC(),
		Notes:         in.Notes,
	}
	if in.EffectiveDate != nil {
		record.EffectiveDate = *in.EffectiveDate
	}
	record.Recompute()

	saved, err := s.repo.Upsert(ctx, record)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflict("Payroll record already exists")
	}
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID,
		"Payroll Updated",
		fmt.Sprintf("Your salary structure for %s has been updated.", saved.PayPeriod),
		model.NotifyPayrollUpdate, saved.ID, "Payroll",
		map[string]any{"payPeriod": saved.PayPeriod, "netPay": saved.NetPay})

	return saved, nil
}

// ForPeriod returns a user's record for one pay period, nil when absent.
func (s *PayrollService) ForPeriod(ctx context.Context, userID int64, period string) (*model.Payroll, error) {
	return s.repo.FindByUserAndPeriod(ctx, userID, period)
}

// Latest returns a user's most recent record by pay period ordering, nil
// when the user has none.
func (s *PayrollService) Latest(ctx context.Context, userID int64) (*model.Payroll, error) {
	return s.repo.FindLatestByUser(ctx, userID)
}

// History returns every record for a user after verifying the user exists,
// newest period first.
func (s *PayrollService) History(ctx context.Context, userID int64) ([]model.Payroll, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found")
	}
	return s.repo.FindAllByUser(ctx, userID)
}

// PeriodChecked is the privileged single-period read with the user
// existence check.
func (s *PayrollService) PeriodChecked(ctx context.Context, userID int64, period string) (*model.Payroll, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found")
	}
	return s.repo.FindByUserAndPeriod(ctx, userID, period)
}

package core

import (
	"context"
	"errors"
	"time"

	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/repository"
)

// AttendanceService maintains the one-record-per-(user, day) attendance
// ledger.
type AttendanceService struct {
	repo  repository.AttendanceRepository
	users repository.UserRepository
}

// NewAttendanceService creates a new instance of the attendance service.
func NewAttendanceService(repo repository.AttendanceRepository, users repository.UserRepository) *AttendanceService {
	return &AttendanceService{repo: repo, users: users}
}

// CheckIn records the first check-in of the day. A duplicate-key race on
// the (user, date) constraint is benign: the loser re-reads and returns the
// winner's record instead of erroring.
func (s *AttendanceService) CheckIn(ctx context.Context, userID int64, now time.Time) (*model.Attendance, error) {
	day := startOfDay(now)

	record, err := s.repo.FindByUserAndDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	if record != nil && record.CheckIn != nil {
		return nil, badRequest("Already checked in for today")
	}

	if record == nil {
		record = &model.Attendance{UserID: userID, Date: day, Status: model.StatusAbsent}
	}

	checkIn := now.UTC()
	record.CheckIn = &checkIn
	record.Status = model.StatusPresent

	if record.ID == 0 {
		id, err := s.repo.Create(ctx, record)
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race against a concurrent check-in; the constraint
			// guarantees the other record is the one to return.
			return s.repo.FindByUserAndDate(ctx, userID, day)
		}
		if err != nil {
			return nil, err
		}
		record.ID = id
		return record, nil
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// CheckOut closes today's record, deriving the worked hours and the final
// status. A day of at least eight hours counts as Present, anything shorter
// as Half-day.
func (s *AttendanceService) CheckOut(ctx context.Context, userID int64, now time.Time) (*model.Attendance, error) {
	day := startOfDay(now)

	record, err := s.repo.FindByUserAndDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if record == nil || record.CheckIn == nil {
		return nil, badRequest("No check-in found for today")
	}
	if record.CheckOut != nil {
		return nil, badRequest("Already checked out for today")
	}

	checkOut := now.UTC()
	record.CheckOut = &checkOut
	record.DurationHours = hoursBetween(*record.CheckIn, checkOut)
	if record.DurationHours >= 8 {
		record.Status = model.StatusPresent
	} else {
		record.Status = model.StatusHalfDay
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// MarkLeave forces a day's record to Leave status, creating it if needed.
// Used by privileged manual marking; the leave review workflow materializes
// its days the same way.
func (s *AttendanceService) MarkLeave(ctx context.Context, userID int64, day time.Time, notes string) (*model.Attendance, error) {
	normalized := startOfDay(day)

	record, err := s.repo.FindByUserAndDate(ctx, userID, normalized)
	if err != nil {
		return nil, err
	}

	if record == nil {
		record = &model.Attendance{UserID: userID, Date: normalized}
	}
	record.Status = model.StatusOnLeave
	record.Notes = notes

	if record.ID == 0 {
		id, err := s.repo.Create(ctx, record)
		if errors.Is(err, repository.ErrDuplicate) {
			existing, err := s.repo.FindByUserAndDate(ctx, userID, normalized)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, errors.New("attendance record vanished after conflict")
			}
			existing.Status = model.StatusOnLeave
			existing.Notes = notes
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
		if err != nil {
			return nil, err
		}
		record.ID = id
		return record, nil
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// DayRecord returns the record for one calendar day, nil when absent.
func (s *AttendanceService) DayRecord(ctx context.Context, userID int64, day time.Time) (*model.Attendance, error) {
	return s.repo.FindByUserAndDate(ctx, userID, startOfDay(day))
}

// RangeForUser returns a user's records between two days inclusive.
func (s *AttendanceService) RangeForUser(ctx context.Context, userID int64, start, end time.Time) ([]model.Attendance, error) {
	return s.repo.FindRangeByUser(ctx, userID, startOfDay(start), startOfDay(end))
}

// RangeForUserChecked is the privileged variant that verifies the target
// user exists first.
func (s *AttendanceService) RangeForUserChecked(ctx context.Context, userID int64, start, end time.Time) ([]model.Attendance, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found")
	}
	return s.RangeForUser(ctx, userID, start, end)
}

// RangeForAll returns every user's records between two days inclusive.
func (s *AttendanceService) RangeForAll(ctx context.Context, start, end time.Time) ([]model.Attendance, error) {
	return s.repo.FindRange(ctx, startOfDay(start), startOfDay(end))
}

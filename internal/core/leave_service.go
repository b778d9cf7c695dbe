package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/repository"
)

// Notifier is the fire-and-forget output port for notifications. It returns
// the created record, or nil when creation failed; callers must not treat
// nil as fatal.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, title, message string, typ model.NotificationType,
		referenceID int64, referenceKind string, data map[string]any) *model.Notification
}

// LeaveService owns the leave application lifecycle and the review
// workflow, the one multi-entity operation in the system: decide the leave,
// materialize attendance rows for its span, notify the employee.
type LeaveService struct {
	leaves     repository.LeaveRepository
	attendance repository.AttendanceRepository
	notifier   Notifier
}

// NewLeaveService creates a new instance of the leave service.
func NewLeaveService(leaves repository.LeaveRepository, attendance repository.AttendanceRepository, notifier Notifier) *LeaveService {
	return &LeaveService{leaves: leaves, attendance: attendance, notifier: notifier}
}

type ApplyLeaveInput struct {
	LeaveType string
	StartDate string
	EndDate   string
	Reason    string
}

type UpdateLeaveInput struct {
	LeaveType string
	StartDate string
	EndDate   string
	Reason    string
}

// Apply files a new leave application in Pending state.
func (s *LeaveService) Apply(ctx context.Context, employeeID int64, in ApplyLeaveInput) (*model.Leave, error) {
	leaveType, err := normalizeLeaveType(in.LeaveType)
	if err != nil {
		return nil, err
	}

	start, err := parseDay(in.StartDate)
	if err != nil {
		return nil, badRequest("Invalid dates provided")
	}
	end, err := parseDay(in.EndDate)
	if err != nil {
		return nil, badRequest("Invalid dates provided")
	}
	if start.After(end) {
		return nil, badRequest("End date must be after start date")
	}

	leave := &model.Leave{
		EmployeeID:   employeeID,
		LeaveType:    leaveType,
		StartDate:    start,
		EndDate:      end,
		NumberOfDays: inclusiveDays(start, end),
		Reason:       in.Reason,
		Status:       model.LeavePending,
	}

	id, err := s.leaves.Create(ctx, leave)
	if err != nil {
		return nil, err
	}
	leave.ID = id
	return leave, nil
}

// MyLeaves lists the employee's own applications, newest first.
func (s *LeaveService) MyLeaves(ctx context.Context, employeeID int64) ([]model.Leave, error) {
	return s.leaves.FindByEmployee(ctx, employeeID)
}

// All lists applications for HR, optionally filtered by status and a window
// on the leave start date.
func (s *LeaveService) All(ctx context.Context, status, startDate, endDate string) ([]model.Leave, error) {
	filter := repository.LeaveFilter{}
	if status != "" {
		filter.Status = model.LeaveStatus(status)
	}
	if startDate != "" {
		from, err := parseDay(startDate)
		if err != nil {
			return nil, badRequest("Invalid dates provided")
		}
		filter.From = &from
	}
	if endDate != "" {
		to, err := parseDay(endDate)
		if err != nil {
			return nil, badRequest("Invalid dates provided")
		}
		filter.To = &to
	}
	return s.leaves.FindFiltered(ctx, filter)
}

// Get returns a single application. Only the owner and privileged roles may
// read it.
func (s *LeaveService) Get(ctx context.Context, requestor *model.User, leaveID int64) (*model.Leave, error) {
	leave, err := s.find(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if leave.EmployeeID != requestor.ID && !requestor.Role.Privileged() {
		return nil, forbidden("Not authorized to view this leave")
	}
	return leave, nil
}

// Update edits a Pending application. Only the owner may edit, and any date
// or type change recomputes the day count.
func (s *LeaveService) Update(ctx context.Context, requestorID, leaveID int64, in UpdateLeaveInput) (*model.Leave, error) {
	leave, err := s.find(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if leave.EmployeeID != requestorID {
		return nil, forbidden("Not authorized to update this leave")
	}
	if leave.Status != model.LeavePending {
		return nil, badRequest(fmt.Sprintf("Cannot update leave with status: %s", leave.Status))
	}

	if in.LeaveType != "" {
		leaveType, err := normalizeLeaveType(in.LeaveType)
		if err != nil {
			return nil, err
		}
		leave.LeaveType = leaveType
	}
	if in.StartDate != "" {
		start, err := parseDay(in.StartDate)
		if err != nil {
			return nil, badRequest("Invalid dates provided")
		}
		leave.StartDate = start
	}
	if in.EndDate != "" {
		end, err := parseDay(in.EndDate)
		if err != nil {
			return nil, badRequest("Invalid dates provided")
		}
		leave.EndDate = end
	}
	if in.Reason != "" {
		leave.Reason = in.Reason
	}

	if leave.StartDate.After(leave.EndDate) {
		return nil, badRequest("End date must be after start date")
	}
	leave.NumberOfDays = inclusiveDays(leave.StartDate, leave.EndDate)

	if err := s.leaves.Update(ctx, leave); err != nil {
		return nil, err
	}
	return leave, nil
}

// Cancel deletes a Pending application. No attendance rollback is needed:
// Approved is terminal and can never reach Cancel.
func (s *LeaveService) Cancel(ctx context.Context, requestorID, leaveID int64) error {
	leave, err := s.find(ctx, leaveID)
	if err != nil {
		return err
	}
	if leave.EmployeeID != requestorID {
		return forbidden("Not authorized to cancel this leave")
	}
	if leave.Status != model.LeavePending {
		return badRequest(fmt.Sprintf("Cannot cancel leave with status: %s", leave.Status))
	}
	return s.leaves.Delete(ctx, leaveID)
}

// Review decides a Pending application. The transition is one-shot and
// terminal: re-reviewing an already-decided leave is rejected, not
// overwritten. On approval the attendance ledger is materialized for the
// leave span before the best-effort notification goes out; a
// materialization failure fails the call, a notification failure never
// does.
func (s *LeaveService) Review(ctx context.Context, reviewerID, leaveID int64, decision, comments string) (*model.Leave, error) {
	status := model.LeaveStatus(decision)
	if status != model.LeaveApproved && status != model.LeaveRejected {
		return nil, badRequest("Status must be either Approved or Rejected")
	}

	leave, err := s.find(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if leave.Status != model.LeavePending {
		return nil, badRequest(fmt.Sprintf("Leave has already been %s", leave.Status))
	}

	now := time.Now().UTC()
	leave.Status = status
	leave.Comments = comments
	leave.ReviewedBy = &reviewerID
	leave.ReviewedAt = &now

	if err := s.leaves.Update(ctx, leave); err != nil {
		return nil, err
	}

	if status == model.LeaveApproved {
		if err := s.materializeAttendance(ctx, leave); err != nil {
			return nil, err
		}

		s.notifier.Notify(ctx, leave.EmployeeID,
			"Leave Approved",
			fmt.Sprintf("Your %s leave from %s to %s has been approved.",
				leave.LeaveType, leave.StartDate.Format("Mon Jan 02 2006"), leave.EndDate.Format("Mon Jan 02 2006")),
			model.NotifyLeaveApproval, leave.ID, "Leave",
			map[string]any{
				"leaveType":    leave.LeaveType,
				"startDate":    leave.StartDate,
				"endDate":      leave.EndDate,
				"numberOfDays": leave.NumberOfDays,
			})
	} else {
		reason := comments
		if reason == "" {
			reason = "No reason provided"
		}
		s.notifier.Notify(ctx, leave.EmployeeID,
			"Leave Rejected",
			fmt.Sprintf("Your %s leave request has been rejected. Reason: %s", leave.LeaveType, reason),
			model.NotifyLeaveRejection, leave.ID, "Leave",
			map[string]any{
				"leaveType":       leave.LeaveType,
				"rejectionReason": comments,
			})
	}

	return leave, nil
}

// materializeAttendance creates Leave-status attendance rows for every
// weekday in the approved span that has no record yet. Existing rows are
// left untouched: an approved leave never overwrites prior attendance.
func (s *LeaveService) materializeAttendance(ctx context.Context, leave *model.Leave) error {
	for day := startOfDay(leave.StartDate); !day.After(startOfDay(leave.EndDate)); day = day.AddDate(0, 0, 1) {
		if isWeekend(day) {
			continue
		}

		existing, err := s.attendance.FindByUserAndDate(ctx, leave.EmployeeID, day)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		record := &model.Attendance{
			UserID:  leave.EmployeeID,
			Date:    day,
			Status:  model.StatusOnLeave,
			LeaveID: &leave.ID,
			Notes:   fmt.Sprintf("%s leave", leave.LeaveType),
		}
		if _, err := s.attendance.Create(ctx, record); err != nil {
			// A concurrent writer already created the day; leave it be.
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return err
		}
	}
	return nil
}

func (s *LeaveService) find(ctx context.Context, leaveID int64) (*model.Leave, error) {
	leave, err := s.leaves.FindByID(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if leave == nil {
		return nil, notFound("Leave not found")
	}
	return leave, nil
}

// normalizeLeaveType lowercases the requested type and maps the "paid"
// alias to annual.
func normalizeLeaveType(raw string) (model.LeaveType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "paid" {
		normalized = string(model.LeaveAnnual)
	}
	switch t := model.LeaveType(normalized); t {
	case model.LeaveSick, model.LeaveCasual, model.LeaveAnnual, model.LeaveUnpaid, model.LeaveMaternity, model.LeavePaternity:
		return t, nil
	default:
		return "", badRequest("Invalid leave type")
	}
}

func parseDay(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(t), nil
}

package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hrm.service/internal/core/model"
)

func newLeaveFixture() (*LeaveService, *fakeLeaveRepo, *fakeAttendanceRepo, *fakeNotifier) {
	leaves := newFakeLeaveRepo()
	attendance := newFakeAttendanceRepo()
	notifier := &fakeNotifier{}
	return NewLeaveService(leaves, attendance, notifier), leaves, attendance, notifier
}

func TestApplyLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a Pending application with the inclusive day count", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()

		leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{
			LeaveType: "sick",
			StartDate: "2026-01-05",
			EndDate:   "2026-01-08",
			Reason:    "flu",
		})
		assert.NoError(t, err)
		assert.Equal(t, model.LeavePending, leave.Status)
		assert.Equal(t, 4, leave.NumberOfDays)
		assert.Equal(t, model.LeaveSick, leave.LeaveType)
	})

	t.Run("Single-day application counts one day", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()

		leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{
			LeaveType: "casual",
			StartDate: "2026-01-05",
			EndDate:   "2026-01-05",
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, leave.NumberOfDays)
	})

	t.Run("Start after end is rejected", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()

		_, err := svc.Apply(ctx, 1, ApplyLeaveInput{
			LeaveType: "sick",
			StartDate: "2026-01-08",
			EndDate:   "2026-01-05",
		})
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "End date must be after start date", svcErr.Message)
	})

	t.Run("Malformed date is rejected", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()

		_, err := svc.Apply(ctx, 1, ApplyLeaveInput{
			LeaveType: "sick",
			StartDate: "05-01-2026",
			EndDate:   "2026-01-08",
		})
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Invalid dates provided", svcErr.Message)
	})

	typeTests := []struct {
		name     string
		input    string
		expected model.LeaveType
		wantErr  bool
	}{
		{name: "Lowercase passes through", input: "sick", expected: model.LeaveSick},
		{name: "Mixed case normalizes", input: "Sick", expected: model.LeaveSick},
		{name: "Whitespace trimmed", input: "  annual ", expected: model.LeaveAnnual},
		{name: "Paid maps to annual", input: "paid", expected: model.LeaveAnnual},
		{name: "Uppercase alias maps to annual", input: "PAID", expected: model.LeaveAnnual},
		{name: "Unknown type rejected", input: "sabbatical", wantErr: true},
	}

	for _, tt := range typeTests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newLeaveFixture()

			leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{
				LeaveType: tt.input,
				StartDate: "2026-01-05",
				EndDate:   "2026-01-06",
			})
			if tt.wantErr {
				var svcErr *Error
				assert.ErrorAs(t, err, &svcErr)
				assert.Equal(t, "Invalid leave type", svcErr.Message)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, leave.LeaveType)
		})
	}
}

func TestGetLeave(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newLeaveFixture()

	leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{LeaveType: "sick", StartDate: "2026-01-05", EndDate: "2026-01-06"})
	assert.NoError(t, err)

	owner := &model.User{ID: 1, Role: model.RoleEmployee}
	other := &model.User{ID: 2, Role: model.RoleEmployee}
	hr := &model.User{ID: 3, Role: model.RoleHR}

	t.Run("Owner may read", func(t *testing.T) {
		got, err := svc.Get(ctx, owner, leave.ID)
		assert.NoError(t, err)
		assert.Equal(t, leave.ID, got.ID)
	})

	t.Run("Another employee may not", func(t *testing.T) {
		_, err := svc.Get(ctx, other, leave.ID)
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 403, svcErr.Status)
	})

	t.Run("HR may read any", func(t *testing.T) {
		got, err := svc.Get(ctx, hr, leave.ID)
		assert.NoError(t, err)
		assert.Equal(t, leave.ID, got.ID)
	})

	t.Run("Missing leave is 404", func(t *testing.T) {
		_, err := svc.Get(ctx, hr, 999)
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
	})
}

func TestUpdateLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("Date change recomputes the day count", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()
		leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{LeaveType: "sick", StartDate: "2026-01-05", EndDate: "2026-01-06"})
		assert.NoError(t, err)

		updated, err := svc.Update(ctx, 1, leave.ID, UpdateLeaveInput{EndDate: "2026-01-09"})
		assert.NoError(t, err)
		assert.Equal(t, 5, updated.NumberOfDays)
	})

	t.Run("Only the owner may edit", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()
		leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{LeaveType: "sick", StartDate: "2026-01-05", EndDate: "2026-01-06"})
		assert.NoError(t, err)

		_, err = svc.Update(ctx, 2, leave.ID, UpdateLeaveInput{Reason: "nope"})
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 403, svcErr.Status)
	})

	t.Run("Decided leave cannot be edited", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()
		leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{LeaveType: "sick", StartDate: "2026-01-05", EndDate: "2026-01-06"})
		assert.NoError(t, err)
		_, err = svc.Review(ctx, 9, leave.ID, "Rejected", "no cover")
		assert.NoError(t, err)

		_, err = svc.Update(ctx, 1, leave.ID, UpdateLeaveInput{Reason: "please"})
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Cannot update leave with status: Rejected", svcErr.Message)
	})
}

func TestCancelLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner cancels a Pending leave", func(t *testing.T) {
		svc, leaves, _, _ := newLeaveFixture()
		leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{LeaveType: "sick", StartDate: "2026-01-05", EndDate: "2026-01-06"})
		assert.NoError(t, err)

		assert.NoError(t, svc.Cancel(ctx, 1, leave.ID))
		remaining, _ := leaves.FindByID(ctx, leave.ID)
		assert.Nil(t, remaining)
	})

	t.Run("Approved leave cannot be cancelled", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()
		leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{LeaveType: "sick", StartDate: "2026-01-05", EndDate: "2026-01-06"})
		assert.NoError(t, err)
		_, err = svc.Review(ctx, 9, leave.ID, "Approved", "")
		assert.NoError(t, err)

		err = svc.Cancel(ctx, 1, leave.ID)
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Cannot cancel leave with status: Approved", svcErr.Message)
	})
}

func TestReviewLeave(t *testing.T) {
	ctx := context.Background()

	// 2026-01-05 is a Monday; 2026-01-05..2026-01-11 spans a full week.
	apply := func(svc *LeaveService, start, end string) *model.Leave {
		leave, err := svc.Apply(ctx, 1, ApplyLeaveInput{LeaveType: "annual", StartDate: start, EndDate: end})
		if err != nil {
			panic(err)
		}
		return leave
	}

	t.Run("Invalid decision is rejected", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()
		leave := apply(svc, "2026-01-05", "2026-01-06")

		_, err := svc.Review(ctx, 9, leave.ID, "Maybe", "")
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Status must be either Approved or Rejected", svcErr.Message)
	})

	t.Run("Approval stamps reviewer and materializes weekday attendance", func(t *testing.T) {
		svc, _, attendance, notifier := newLeaveFixture()
		leave := apply(svc, "2026-01-05", "2026-01-11")

		reviewed, err := svc.Review(ctx, 9, leave.ID, "Approved", "enjoy")
		assert.NoError(t, err)
		assert.Equal(t, model.LeaveApproved, reviewed.Status)
		assert.NotNil(t, reviewed.ReviewedBy)
		assert.Equal(t, int64(9), *reviewed.ReviewedBy)
		assert.NotNil(t, reviewed.ReviewedAt)

		// Mon-Fri materialized, Sat/Sun skipped.
		records, err := attendance.FindRangeByUser(ctx, 1,
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Len(t, records, 5)
		for _, rec := range records {
			assert.Equal(t, model.StatusOnLeave, rec.Status)
			assert.NotNil(t, rec.LeaveID)
			assert.Equal(t, leave.ID, *rec.LeaveID)
		}

		assert.Len(t, notifier.calls, 1)
		assert.Equal(t, model.NotifyLeaveApproval, notifier.calls[0].Type)
		assert.Equal(t, int64(1), notifier.calls[0].RecipientID)
	})

	t.Run("Approval never overwrites an existing attendance row", func(t *testing.T) {
		svc, _, attendance, _ := newLeaveFixture()
		leave := apply(svc, "2026-01-05", "2026-01-07")

		// The employee already worked the 6th.
		checkIn := time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC)
		_, err := attendance.Create(ctx, &model.Attendance{
			UserID:  1,
			Date:    time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
			CheckIn: &checkIn,
			Status:  model.StatusPresent,
		})
		assert.NoError(t, err)

		_, err = svc.Review(ctx, 9, leave.ID, "Approved", "")
		assert.NoError(t, err)

		existing, err := attendance.FindByUserAndDate(ctx, 1, time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, model.StatusPresent, existing.Status)
		assert.Nil(t, existing.LeaveID)
	})

	t.Run("Rejection notifies without touching attendance", func(t *testing.T) {
		svc, _, attendance, notifier := newLeaveFixture()
		leave := apply(svc, "2026-01-05", "2026-01-07")

		reviewed, err := svc.Review(ctx, 9, leave.ID, "Rejected", "short staffed")
		assert.NoError(t, err)
		assert.Equal(t, model.LeaveRejected, reviewed.Status)

		records, err := attendance.FindRangeByUser(ctx, 1,
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Empty(t, records)

		assert.Len(t, notifier.calls, 1)
		assert.Equal(t, model.NotifyLeaveRejection, notifier.calls[0].Type)
		assert.Contains(t, notifier.calls[0].Message, "short staffed")
	})

	t.Run("Rejection without comments says no reason provided", func(t *testing.T) {
		svc, _, _, notifier := newLeaveFixture()
		leave := apply(svc, "2026-01-05", "2026-01-07")

		_, err := svc.Review(ctx, 9, leave.ID, "Rejected", "")
		assert.NoError(t, err)
		assert.Contains(t, notifier.calls[0].Message, "No reason provided")
	})

	t.Run("Review is one-shot", func(t *testing.T) {
		svc, _, _, _ := newLeaveFixture()
		leave := apply(svc, "2026-01-05", "2026-01-06")

		_, err := svc.Review(ctx, 9, leave.ID, "Approved", "")
		assert.NoError(t, err)

		_, err = svc.Review(ctx, 9, leave.ID, "Rejected", "changed my mind")
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Leave has already been Approved", svcErr.Message)
	})

	t.Run("Notifier failure does not fail the review", func(t *testing.T) {
		svc, leaves, _, notifier := newLeaveFixture()
		notifier.fail = true
		leave := apply(svc, "2026-01-05", "2026-01-06")

		reviewed, err := svc.Review(ctx, 9, leave.ID, "Approved", "")
		assert.NoError(t, err)
		assert.Equal(t, model.LeaveApproved, reviewed.Status)

		stored, _ := leaves.FindByID(ctx, leave.ID)
		assert.Equal(t, model.LeaveApproved, stored.Status)
	})
}

func TestAllLeaves(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newLeaveFixture()

	first, err := svc.Apply(ctx, 1, ApplyLeaveInput{LeaveType: "sick", StartDate: "2026-01-05", EndDate: "2026-01-06"})
	assert.NoError(t, err)
	_, err = svc.Apply(ctx, 2, ApplyLeaveInput{LeaveType: "annual", StartDate: "2026-02-02", EndDate: "2026-02-04"})
	assert.NoError(t, err)
	_, err = svc.Review(ctx, 9, first.ID, "Approved", "")
	assert.NoError(t, err)

	t.Run("Status filter", func(t *testing.T) {
		got, err := svc.All(ctx, "Pending", "", "")
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, model.LeavePending, got[0].Status)
	})

	t.Run("Start date window", func(t *testing.T) {
		got, err := svc.All(ctx, "", "2026-02-01", "2026-02-28")
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].EmployeeID)
	})

	t.Run("No filter returns everything", func(t *testing.T) {
		got, err := svc.All(ctx, "", "", "")
		assert.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Bad window date is rejected", func(t *testing.T) {
		_, err := svc.All(ctx, "", "February 1st", "")
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Invalid dates provided", svcErr.Message)
	})
}

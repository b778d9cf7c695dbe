package model

import (
	"time"
)

// Role is the access level assigned to a user account.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
)

// Privileged reports whether the role may read other users' data.
func (r Role) Privileged() bool {
	return r == RoleHR || r == RoleAdmin || r == RoleManager
}

// AttendanceStatus is the daily attendance outcome for a user.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusHalfDay AttendanceStatus = "Half-day"
	StatusOnLeave AttendanceStatus = "Leave"
)

// LeaveType enumerates the accepted leave categories.
type LeaveType string

const (
	LeaveSick      LeaveType = "sick"
	LeaveCasual    LeaveType = "casual"
	LeaveAnnual    LeaveType = "annual"
	LeaveUnpaid    LeaveType = "unpaid"
	LeaveMaternity LeaveType = "maternity"
	LeavePaternity LeaveType = "paternity"
)

// LeaveStatus is the lifecycle state of a leave application.
// Approved and Rejected are terminal.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

// NotificationType tags the origin of a notification.
type NotificationType string

const (
	NotifyLeaveApproval  NotificationType = "leave_approval"
	NotifyLeaveRejection NotificationType = "leave_rejection"
	NotifyPayrollUpdate  NotificationType = "payroll_update"
	NotifySystem         NotificationType = "system"
	NotifyAnnouncement   NotificationType = "announcement"
)

// EmailStatus defines the state of the notification email delivery job.
type EmailStatus string

const (
	StatusEmailPending   EmailStatus = "PENDING"
	StatusEmailCompleted EmailStatus = "COMPLETED"
	StatusEmailFailed    EmailStatus = "FAILED"
)

type User struct {
	ID           int64      `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Department   string     `json:"department,omitempty"`
	Position     string     `json:"position,omitempty"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	HireDate     *time.Time `json:"hireDate,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Attendance is one ledger row per (user, calendar day). Date is always a
// UTC midnight value; the (UserID, Date) pair is unique in the store.
type Attendance struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"userId"`
	Date          time.Time        `json:"date"`
	CheckIn       *time.Time       `json:"checkIn,omitempty"`
	CheckOut      *time.Time       `json:"checkOut,omitempty"`
	Status        AttendanceStatus `json:"status"`
	DurationHours float64          `json:"durationHours"`
	Notes         string           `json:"notes,omitempty"`
	LeaveID       *int64           `json:"leaveId,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Leave is a leave application. NumberOfDays is derived from the inclusive
// [StartDate, EndDate] range and recomputed on every save.
type Leave struct {
	ID           int64       `json:"id"`
	EmployeeID   int64       `json:"employeeId"`
	LeaveType    LeaveType   `json:"leaveType"`
	StartDate    time.Time   `json:"startDate"`
	EndDate      time.Time   `json:"endDate"`
	NumberOfDays int         `json:"numberOfDays"`
	Reason       string      `json:"reason"`
	Status       LeaveStatus `json:"status"`
	Comments     string      `json:"comments,omitempty"`
	ReviewedBy   *int64      `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time  `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Payroll is one record per (user, pay period). GrossPay and NetPay are
// derived server-side on every write, never trusted from caller input.
type Payroll struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	PayPeriod     string    `json:"payPeriod"` // YYYY-MM
	BaseSalary    float64   `json:"baseSalary"`
	Allowances    float64   `json:"allowances"`
	Deductions    float64   `json:"deductions"`
	GrossPay      float64   `json:"grossPay"`
	NetPay        float64   `json:"netPay"`
	EffectiveDate time.Time `json:"effectiveDate"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Recompute refreshes the derived pay fields from the inputs.
func (p *Payroll) Recompute() {
	p.GrossPay = p.BaseSalary + p.Allowances
	p.NetPay = p.GrossPay - p.Deductions
}

// Notification is an outbox row addressed to a single recipient. Reference
// points at the entity that produced it (a leave or a payroll record).
type Notification struct {
	ID              int64            `json:"id"`
	RecipientID     int64            `json:"recipientId"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	Type            NotificationType `json:"type"`
	ReferenceID     *int64           `json:"referenceId,omitempty"`
	ReferenceKind   string           `json:"referenceKind,omitempty"` // Leave | Payroll
	IsRead          bool             `json:"isRead"`
	ReadAt          *time.Time       `json:"readAt,omitempty"`
	Data            map[string]any   `json:"data,omitempty"`
	EmailStatus     EmailStatus      `json:"-"`
	EmailRetryCount int              `json:"-"`
	CreatedAt       time.Time        `json:"createdAt"`
}

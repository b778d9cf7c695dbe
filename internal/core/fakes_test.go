package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/repository"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*model.User{}, nextID: 1}
}

func (r *fakeUserRepo) add(u model.User) *model.User {
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	} else if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	stored := u
	r.users[u.ID] = &stored
	return &stored
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return 0, repository.ErrDuplicate
		}
	}
	stored := *u
	stored.ID = r.nextID
	r.nextID++
	r.users[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return fmt.Errorf("user %d not found", u.ID)
	}
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.users[id])
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

type fakeAttendanceRepo struct {
	records map[int64]*model.Attendance
	nextID  int64

	// When set, the next Create returns ErrDuplicate and inserts
	// raceWinner instead, simulating a concurrent writer winning the
	// unique constraint.
	raceWinner *model.Attendance
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[int64]*model.Attendance{}, nextID: 1}
}

func dayKey(userID int64, day time.Time) string {
	return fmt.Sprintf("%d/%s", userID, day.Format("2006-01-02"))
}

func (r *fakeAttendanceRepo) Create(_ context.Context, a *model.Attendance) (int64, error) {
	if r.raceWinner != nil {
		winner := *r.raceWinner
		winner.ID = r.nextID
		r.nextID++
		r.records[winner.ID] = &winner
		r.raceWinner = nil
		return 0, repository.ErrDuplicate
	}
	for _, existing := range r.records {
		if dayKey(existing.UserID, existing.Date) == dayKey(a.UserID, a.Date) {
			return 0, repository.ErrDuplicate
		}
	}
	stored := *a
	stored.ID = r.nextID
	r.nextID++
	r.records[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeAttendanceRepo) Update(_ context.Context, a *model.Attendance) error {
	if _, ok := r.records[a.ID]; !ok {
		return fmt.Errorf("attendance %d not found", a.ID)
	}
	stored := *a
	r.records[a.ID] = &stored
	return nil
}

func (r *fakeAttendanceRepo) FindByUserAndDate(_ context.Context, userID int64, day time.Time) (*model.Attendance, error) {
	for _, a := range r.records {
		if dayKey(a.UserID, a.Date) == dayKey(userID, day) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) FindRangeByUser(_ context.Context, userID int64, start, end time.Time) ([]model.Attendance, error) {
	var out []model.Attendance
	for _, a := range r.records {
		if a.UserID == userID && !a.Date.Before(start) && !a.Date.After(end) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeAttendanceRepo) FindRange(_ context.Context, start, end time.Time) ([]model.Attendance, error) {
	var out []model.Attendance
	for _, a := range r.records {
		if !a.Date.Before(start) && !a.Date.After(end) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type fakeLeaveRepo struct {
	leaves map[int64]*model.Leave
	nextID int64
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{leaves: map[int64]*model.Leave{}, nextID: 1}
}

func (r *fakeLeaveRepo) Create(_ context.Context, l *model.Leave) (int64, error) {
	stored := *l
	stored.ID = r.nextID
	r.nextID++
	r.leaves[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeLeaveRepo) FindByID(_ context.Context, id int64) (*model.Leave, error) {
	l, ok := r.leaves[id]
	if !ok {
		return nil, nil
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLeaveRepo) FindByEmployee(_ context.Context, employeeID int64) ([]model.Leave, error) {
	var out []model.Leave
	for _, l := range r.leaves {
		if l.EmployeeID == employeeID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeLeaveRepo) FindFiltered(_ context.Context, f repository.LeaveFilter) ([]model.Leave, error) {
	var out []model.Leave
	for _, l := range r.leaves {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.From != nil && l.StartDate.Before(*f.From) {
			continue
		}
		if f.To != nil && l.StartDate.After(*f.To) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeLeaveRepo) Update(_ context.Context, l *model.Leave) error {
	if _, ok := r.leaves[l.ID]; !ok {
		return fmt.Errorf("leave %d not found", l.ID)
	}
	stored := *l
	r.leaves[l.ID] = &stored
	return nil
}

func (r *fakeLeaveRepo) Delete(_ context.Context, id int64) error {
	delete(r.leaves, id)
	return nil
}

type fakePayrollRepo struct {
	records map[string]*model.Payroll
	nextID  int64
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{records: map[string]*model.Payroll{}, nextID: 1}
}

func payrollKey(userID int64, period string) string {
	return fmt.Sprintf("%d/%s", userID, period)
}

func (r *fakePayrollRepo) Upsert(_ context.Context, p *model.Payroll) (*model.Payroll, error) {
	key := payrollKey(p.UserID, p.PayPeriod)
	stored := *p
	if existing, ok := r.records[key]; ok {
		stored.ID = existing.ID
	} else {
		stored.ID = r.nextID
		r.nextID++
	}
	r.records[key] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakePayrollRepo) FindByUserAndPeriod(_ context.Context, userID int64, period string) (*model.Payroll, error) {
	p, ok := r.records[payrollKey(userID, period)]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakePayrollRepo) FindLatestByUser(_ context.Context, userID int64) (*model.Payroll, error) {
	all, _ := r.FindAllByUser(context.Background(), userID)
	if len(all) == 0 {
		return nil, nil
	}
	return &all[0], nil
}

func (r *fakePayrollRepo) FindAllByUser(_ context.Context, userID int64) ([]model.Payroll, error) {
	var out []model.Payroll
	for _, p := range r.records {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PayPeriod > out[j].PayPeriod })
	return out, nil
}

type fakeNotificationRepo struct {
	notifications map[int64]*model.Notification
	nextID        int64
	failCreate    bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[int64]*model.Notification{}, nextID: 1}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) (int64, error) {
	if r.failCreate {
		return 0, fmt.Errorf("store unavailable")
	}
	stored := *n
	stored.ID = r.nextID
	r.nextID++
	r.notifications[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeNotificationRepo) FindByID(_ context.Context, id int64) (*model.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, nil
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNotificationRepo) FindByRecipient(_ context.Context, recipientID int64, isRead *bool, limit, offset int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if isRead != nil && n.IsRead != *isRead {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountByRecipient(_ context.Context, recipientID int64, isRead *bool) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if isRead != nil && n.IsRead != *isRead {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id int64, at time.Time) error {
	n, ok := r.notifications[id]
	if !ok {
		return fmt.Errorf("notification %d not found", id)
	}
	n.IsRead = true
	n.ReadAt = &at
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID int64, at time.Time) error {
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id int64) error {
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) DeleteAllForRecipient(_ context.Context, recipientID int64) error {
	for id, n := range r.notifications {
		if n.RecipientID == recipientID {
			delete(r.notifications, id)
		}
	}
	return nil
}

func (r *fakeNotificationRepo) UpdateEmailStatus(_ context.Context, id int64, status model.EmailStatus, retryCount int) error {
	n, ok := r.notifications[id]
	if !ok {
		return fmt.Errorf("notification %d not found", id)
	}
	n.EmailStatus = status
	n.EmailRetryCount = retryCount
	return nil
}

// fakeNotifier records every Notify call. It can be told to fail, in which
// case it returns nil like the real one.
type fakeNotifier struct {
	calls []notifyCall
	fail  bool
}

type notifyCall struct {
	RecipientID int64
	Title       string
	Message     string
	Type        model.NotificationType
	ReferenceID int64
}

func (f *fakeNotifier) Notify(_ context.Context, recipientID int64, title, message string, typ model.NotificationType,
	referenceID int64, _ string, _ map[string]any) *model.Notification {
	f.calls = append(f.calls, notifyCall{
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Type:        typ,
		ReferenceID: referenceID,
	})
	if f.fail {
		return nil
	}
	return &model.Notification{ID: int64(len(f.calls)), RecipientID: recipientID, Title: title}
}

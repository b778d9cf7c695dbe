package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"hrm.service/internal/api/handler"
	"hrm.service/internal/core/model"
)

// Handlers bundles the per-resource handlers the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	Attendance   *handler.AttendanceHandler
	Leave        *handler.LeaveHandler
	Payroll      *handler.PayrollHandler
	Notification *handler.NotificationHandler
}

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(h Handlers, auth *AuthMiddleware) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	privileged := RequireRoles(model.RoleAdmin, model.RoleHR, model.RoleManager)
	adminOnly := RequireRoles(model.RoleAdmin)
	hrOnly := RequireRoles(model.RoleHR)

	// Public auth routes
	public := api.PathPrefix("/auth").Subrouter()
	public.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)

	// Protected auth routes
	users := api.PathPrefix("/auth").Subrouter()
	users.Use(auth.Protect)
	users.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	users.HandleFunc("/me", h.Auth.UpdateMe).Methods(http.MethodPut)
	users.Handle("/users", adminOnly(http.HandlerFunc(h.Auth.ListUsers))).Methods(http.MethodGet)
	users.Handle("/users/{id}", adminOnly(http.HandlerFunc(h.Auth.GetUser))).Methods(http.MethodGet)
	users.Handle("/users/{id}", adminOnly(http.HandlerFunc(h.Auth.UpdateUser))).Methods(http.MethodPut)
	users.Handle("/users/{id}", adminOnly(http.HandlerFunc(h.Auth.DeleteUser))).Methods(http.MethodDelete)

	attendance := api.PathPrefix("/attendance").Subrouter()
	attendance.Use(auth.Protect)
	attendance.HandleFunc("/checkin", h.Attendance.CheckIn).Methods(http.MethodPost)
	attendance.HandleFunc("/checkout", h.Attendance.CheckOut).Methods(http.MethodPost)
	attendance.HandleFunc("/me", h.Attendance.Me).Methods(http.MethodGet)
	attendance.Handle("/users/{userId}", privileged(http.HandlerFunc(h.Attendance.UserRange))).Methods(http.MethodGet)
	attendance.Handle("/{userId}/leave", privileged(http.HandlerFunc(h.Attendance.MarkLeave))).Methods(http.MethodPost)
	attendance.Handle("", privileged(http.HandlerFunc(h.Attendance.AllRange))).Methods(http.MethodGet)

	leaves := api.PathPrefix("/leaves").Subrouter()
	leaves.Use(auth.Protect)
	leaves.HandleFunc("", h.Leave.Apply).Methods(http.MethodPost)
	leaves.HandleFunc("/my-leaves", h.Leave.MyLeaves).Methods(http.MethodGet)
	leaves.Handle("", hrOnly(http.HandlerFunc(h.Leave.All))).Methods(http.MethodGet)
	leaves.Handle("/{id}/review", hrOnly(http.HandlerFunc(h.Leave.Review))).Methods(http.MethodPut)
	leaves.HandleFunc("/{id}", h.Leave.Get).Methods(http.MethodGet)
	leaves.HandleFunc("/{id}", h.Leave.Update).Methods(http.MethodPut)
	leaves.HandleFunc("/{id}", h.Leave.Cancel).Methods(http.MethodDelete)

	payroll := api.PathPrefix("/payroll").Subrouter()
	payroll.Use(auth.Protect)
	payroll.HandleFunc("/me", h.Payroll.Me).Methods(http.MethodGet)
	payroll.Handle("/users/{userId}", privileged(http.HandlerFunc(h.Payroll.User))).Methods(http.MethodGet)
	payroll.Handle("/users/{userId}", adminOnly(http.HandlerFunc(h.Payroll.Upsert))).Methods(http.MethodPut)

	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.Use(auth.Protect)
	notifications.HandleFunc("", h.Notification.List).Methods(http.MethodGet)
	notifications.HandleFunc("/count/unread", h.Notification.UnreadCount).Methods(http.MethodGet)
	notifications.HandleFunc("/mark-all-read", h.Notification.MarkAllRead).Methods(http.MethodPut)
	notifications.HandleFunc("/{id}/read", h.Notification.MarkRead).Methods(http.MethodPut)
	notifications.HandleFunc("/{id}", h.Notification.Get).Methods(http.MethodGet)
	notifications.HandleFunc("/{id}", h.Notification.Delete).Methods(http.MethodDelete)
	notifications.HandleFunc("", h.Notification.Clear).Methods(http.MethodDelete)

	return r
}

package handler

import (
	"net/http"
	"strconv"

	"hrm.service/internal/core"
)

type NotificationHandler struct {
	Service *core.NotificationService
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	var isRead *bool
	if raw := q.Get("isRead"); raw != "" {
		v := raw == "true"
		isRead = &v
	}

	notifications, pagination, err := h.Service.List(r.Context(), caller.ID, isRead, page, limit)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondPage(w, notifications, pagination)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	count, err := h.Service.UnreadCount(r.Context(), caller.ID)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int{"unreadCount": count})
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	caller := UserFromContext(r.Context())
	notification, err := h.Service.Get(r.Context(), caller.ID, id)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, notification)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	caller := UserFromContext(r.Context())
	notification, err := h.Service.MarkRead(r.Context(), caller.ID, id)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondMessageData(w, "Notification marked as read", notification)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	if err := h.Service.MarkAllRead(r.Context(), caller.ID); err != nil {
		RespondError(w, r, err)
		return
	}
	respondMessage(w, "All notifications marked as read")
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	caller := UserFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), caller.ID, id); err != nil {
		RespondError(w, r, err)
		return
	}
	respondMessage(w, "Notification deleted")
}

func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	if err := h.Service.Clear(r.Context(), caller.ID); err != nil {
		RespondError(w, r, err)
		return
	}
	respondMessage(w, "All notifications cleared")
}

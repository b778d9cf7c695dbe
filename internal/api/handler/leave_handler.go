package handler

import (
	"net/http"
	"strings"

	"hrm.service/internal/core"
)

type LeaveHandler struct {
	Service *core.LeaveService
}

type applyLeaveRequest struct {
	LeaveType string `json:"leaveType" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

type updateLeaveRequest struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

type reviewLeaveRequest struct {
	Status   string `json:"status" validate:"required"`
	Comments string `json:"comments"`
}

func (h *LeaveHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyLeaveRequest
	if err := decodeAndValidate(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	caller := UserFromContext(r.Context())
	leave, err := h.Service.Apply(r.Context(), caller.ID, core.ApplyLeaveInput{
		LeaveType: req.LeaveType,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, leave)
}

func (h *LeaveHandler) MyLeaves(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	leaves, err := h.Service.MyLeaves(r.Context(), caller.ID)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondList(w, leaves, len(leaves))
}

func (h *LeaveHandler) All(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	leaves, err := h.Service.All(r.Context(), q.Get("status"), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondList(w, leaves, len(leaves))
}

func (h *LeaveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	leave, err := h.Service.Get(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, leave)
}

func (h *LeaveHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	var req updateLeaveRequest
	if err := decodeAndValidate(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	caller := UserFromContext(r.Context())
	leave, err := h.Service.Update(r.Context(), caller.ID, id, core.UpdateLeaveInput{
		LeaveType: req.LeaveType,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, leave)
}

func (h *LeaveHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	caller := UserFromContext(r.Context())
	if err := h.Service.Cancel(r.Context(), caller.ID, id); err != nil {
		RespondError(w, r, err)
		return
	}
	respondMessage(w, "Leave cancelled successfully")
}

func (h *LeaveHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	var req reviewLeaveRequest
	if err := decodeAndValidate(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	caller := UserFromContext(r.Context())
	leave, err := h.Service.Review(r.Context(), caller.ID, id, req.Status, req.Comments)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondMessageData(w, "Leave "+strings.ToLower(string(leave.Status))+" successfully", leave)
}

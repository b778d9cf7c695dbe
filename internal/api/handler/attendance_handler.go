package handler

import (
	"net/http"
	"time"

	"hrm.service/internal/core"
)

type AttendanceHandler struct {
	Service *core.AttendanceService
}

type markLeaveRequest struct {
	Date  string `json:"date" validate:"required"`
	Notes string `json:"notes"`
}

func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	record, err := h.Service.CheckIn(r.Context(), caller.ID, time.Now())
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, record)
}

func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	record, err := h.Service.CheckOut(r.Context(), caller.ID, time.Now())
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, record)
}

// Me serves the caller's own attendance: a single day with ?date=, a range
// with ?start=&end=, today by default.
func (h *AttendanceHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())
	q := r.URL.Query()

	if date := q.Get("date"); date != "" {
		day, err := parseQueryDay(date)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		record, err := h.Service.DayRecord(r.Context(), caller.ID, day)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		respondData(w, http.StatusOK, record)
		return
	}

	if start, end := q.Get("start"), q.Get("end"); start != "" && end != "" {
		startDay, err := parseQueryDay(start)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		endDay, err := parseQueryDay(end)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		records, err := h.Service.RangeForUser(r.Context(), caller.ID, startDay, endDay)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		respondData(w, http.StatusOK, records)
		return
	}

	record, err := h.Service.DayRecord(r.Context(), caller.ID, time.Now())
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, record)
}

func (h *AttendanceHandler) MarkLeave(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	var req markLeaveRequest
	if err := decodeAndValidate(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	day, err := parseQueryDay(req.Date)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	record, err := h.Service.MarkLeave(r.Context(), userID, day, req.Notes)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, record)
}

func (h *AttendanceHandler) UserRange(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	start, end, err := requireRange(r)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	records, err := h.Service.RangeForUserChecked(r.Context(), userID, start, end)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, records)
}

func (h *AttendanceHandler) AllRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := requireRange(r)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	records, err := h.Service.RangeForAll(r.Context(), start, end)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, records)
}

func requireRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, &core.Error{Status: http.StatusBadRequest, Message: "start and end dates are required"}
	}

	startDay, err := parseQueryDay(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDay, err := parseQueryDay(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startDay, endDay, nil
}

func parseQueryDay(raw string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, &core.Error{Status: http.StatusBadRequest, Message: "Invalid dates provided"}
	}
	return day, nil
}

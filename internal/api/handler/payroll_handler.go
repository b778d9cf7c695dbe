package handler

import (
	"net/http"
	"time"

	"hrm.service/internal/core"
)

type PayrollHandler struct {
	Service *core.PayrollService
}

type salaryRequest struct {
	PayPeriod     string   `json:"payPeriod" validate:"required"`
	BaseSalary    *float64 `json:"baseSalary" validate:"required"`
	Allowances    float64  `json:"allowances"`
	Deductions    float64  `json:"deductions"`
	Notes         string   `json:"notes"`
	EffectiveDate string   `json:"effectiveDate"`
}

// Me serves the caller's own payroll: one period with ?period=, otherwise
// the most recent record.
func (h *PayrollHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())
	period := r.URL.Query().Get("period")

	if period != "" {
		record, err := h.Service.ForPeriod(r.Context(), caller.ID, period)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		respondData(w, http.StatusOK, record)
		return
	}

	record, err := h.Service.Latest(r.Context(), caller.ID)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, record)
}

// User serves another user's payroll for privileged callers: one period
// with ?period=, otherwise the full history newest first.
func (h *PayrollHandler) User(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		RespondError(w, r, err)
		return
	}
	period := r.URL.Query().Get("period")

	if period != "" {
		record, err := h.Service.PeriodChecked(r.Context(), userID, period)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		respondData(w, http.StatusOK, record)
		return
	}

	records, err := h.Service.History(r.Context(), userID)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, records)
}

func (h *PayrollHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	var req salaryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondBadRequest(w, "payPeriod and baseSalary are required")
		return
	}

	input := core.SalaryInput{
		PayPeriod:  req.PayPeriod,
		BaseSalary: *req.BaseSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
		Notes:      req.Notes,
	}
	if req.EffectiveDate != "" {
		effective, err := time.Parse("2006-01-02", req.EffectiveDate)
		if err != nil {
			respondBadRequest(w, "Invalid dates provided")
			return
		}
		input.EffectiveDate = &effective
	}

	record, err := h.Service.UpsertSalary(r.Context(), userID, input)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, record)
}

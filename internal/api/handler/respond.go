package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hrm.service/internal/core"
	"hrm.service/internal/core/model"
)

var validate = validator.New()

// response is the envelope shared by every endpoint.
type response struct {
	Status     string           `json:"status"`
	Data       any              `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Count      *int             `json:"count,omitempty"`
	Pagination *core.Pagination `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Status: "success", Data: data})
}

func respondList(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, response{Status: "success", Data: data, Count: &count})
}

func respondPage(w http.ResponseWriter, data any, p core.Pagination) {
	writeJSON(w, http.StatusOK, response{Status: "success", Data: data, Pagination: &p})
}

func respondMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, response{Status: "success", Message: message})
}

func respondMessageData(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, response{Status: "success", Message: message, Data: data})
}

// RespondError maps a service error to the envelope. Typed errors carry
// their own status; anything else surfaces as a 500 with the raw message.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *core.Error
	if errors.As(err, &svcErr) {
		writeJSON(w, svcErr.Status, response{Status: "error", Message: svcErr.Message})
		return
	}

	log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
	writeJSON(w, http.StatusInternalServerError, response{Status: "error", Message: err.Error()})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: message})
}

// decodeAndValidate parses the JSON body into dst and runs the validator
// tags over it. The returned error message is client-facing.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &core.Error{Status: http.StatusBadRequest, Message: "Invalid request body"}
	}
	if err := validate.Struct(dst); err != nil {
		return &core.Error{Status: http.StatusBadRequest, Message: "All fields are required"}
	}
	return nil
}

type contextKey string

const userContextKey contextKey = "currentUser"

// ContextWithUser stores the authenticated user on the request context.
func ContextWithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext retrieves the authenticated user resolved by the auth
// middleware. Returns nil when the request was not authenticated.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(userContextKey).(*model.User)
	return u
}

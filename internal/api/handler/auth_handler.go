package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"hrm.service/internal/core"
	"hrm.service/internal/core/model"
)

type AuthHandler struct {
	Service *core.AuthService
}

type registerRequest struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileUpdateRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"`
	Password    string `json:"password" validate:"omitempty,min=6"`
}

type adminUserUpdateRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" validate:"omitempty,email"`
	Role        string `json:"role"`
	Department  string `json:"department"`
	Position    string `json:"position"`
	PhoneNumber string `json:"phoneNumber"`
	HireDate    string `json:"hireDate"`
	IsActive    *bool  `json:"isActive"`
	Password    string `json:"password" validate:"omitempty,min=6"`
}

// authPayload is the user plus a fresh bearer token.
type authPayload struct {
	*model.User
	Token string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	user, tok, err := h.Service.Register(r.Context(), core.RegisterInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		RespondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, authPayload{User: user, Token: tok})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	user, tok, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, authPayload{User: user, Token: tok})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, UserFromContext(r.Context()))
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	update := core.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			respondBadRequest(w, "Invalid dates provided")
			return
		}
		update.DateOfBirth = &dob
	}

	caller := UserFromContext(r.Context())
	user, tok, err := h.Service.UpdateProfile(r.Context(), caller.ID, update)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, authPayload{User: user, Token: tok})
}

func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	var req adminUserUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	update := core.AdminUserUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Role:        req.Role,
		Department:  req.Department,
		Position:    req.Position,
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
		Password:    req.Password,
	}
	if req.HireDate != "" {
		hd, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			respondBadRequest(w, "Invalid dates provided")
			return
		}
		update.HireDate = &hd
	}

	user, err := h.Service.UpdateUser(r.Context(), id, update)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		RespondError(w, r, err)
		return
	}
	respondList(w, users, len(users))
}

func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		RespondError(w, r, err)
		return
	}
	respondMessage(w, "User deleted")
}

// pathID parses a numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, &core.Error{Status: http.StatusBadRequest, Message: "Invalid id"}
	}
	return id, nil
}

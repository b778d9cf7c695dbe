package core

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hrm.service/internal/core/model"
	"hrm.service/internal/ports/repository"
	"hrm.service/pkg/token"
)

// AuthService owns user registration, login and profile management.
type AuthService struct {
	users  repository.UserRepository
	tokens *token.Manager
}

// NewAuthService creates a new instance of the auth service, wiring up the
// user repository and the token manager.
func NewAuthService(users repository.UserRepository, tokens *token.Manager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Role       string
	Department string
	Position   string
}

type ProfileUpdate struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	DateOfBirth *time.Time
	Password    string
}

type AdminUserUpdate struct {
	FirstName   string
	LastName    string
	Email       string
	Role        string
	Department  string
	Position    string
	PhoneNumber string
	HireDate    *time.Time
	IsActive    *bool
	Password    string
}

// Register creates a new user account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", badRequest("User already exists")
	}

	role, err := parseRole(in.Role)
	if err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Department:   in.Department,
		Position:     in.Position,
		IsActive:     true,
	}

	id, err := s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, "", badRequest("User already exists")
	}
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	tok, err := s.tokens.Generate(id)
	if err != nil {
		return nil, "", err
	}
	return user, tok, nil
}

// Login verifies the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", unauthorized("Invalid email or password")
	}

	tok, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, tok, nil
}

// GetUser fetches a user by id, failing with 404 when absent.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("User not found")
	}
	return user, nil
}

// UpdateProfile applies the limited self-service edits and returns the user
// with a fresh token.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) (*model.User, string, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.PhoneNumber != "" {
		user.PhoneNumber = in.PhoneNumber
	}
	if in.DateOfBirth != nil {
		user.DateOfBirth = in.DateOfBirth
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", badRequest("Email already in use")
		}
		return nil, "", err
	}

	tok, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, tok, nil
}

// UpdateUser applies a privileged edit, which may touch every field
// including role and the active flag.
func (s *AuthService) UpdateUser(ctx context.Context, id int64, in AdminUserUpdate) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if in.Role != "" {
		role, err := parseRole(in.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if in.Department != "" {
		user.Department = in.Department
	}
	if in.Position != "" {
		user.Position = in.Position
	}
	if in.PhoneNumber != "" {
		user.PhoneNumber = in.PhoneNumber
	}
	if in.HireDate != nil {
		user.HireDate = in.HireDate
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, badRequest("Email already in use")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

func parseRole(raw string) (model.Role, error) {
	if raw == "" {
		return model.RoleEmployee, nil
	}
	switch role := model.Role(raw); role {
	case model.RoleEmployee, model.RoleHR, model.RoleAdmin, model.RoleManager:
		return role, nil
	default:
		return "", badRequest("Invalid role")
	}
}

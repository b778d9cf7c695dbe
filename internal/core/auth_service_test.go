package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hrm.service/internal/core/model"
	"hrm.service/pkg/token"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	tokens := token.NewManager("test-secret", time.Hour)
	return NewAuthService(users, tokens), users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates an active user and issues a token", func(t *testing.T) {
		svc, _ := newAuthFixture()

		user, tok, err := svc.Register(ctx, RegisterInput{
			FirstName: "Ana",
			LastName:  "Pop",
			Email:     "ana@corp.com",
			Password:  "s3cret!!",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, tok)
		assert.True(t, user.IsActive)
		assert.Equal(t, model.RoleEmployee, user.Role)
		assert.NotEqual(t, "s3cret!!", user.PasswordHash)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		svc, _ := newAuthFixture()

		_, _, err := svc.Register(ctx, RegisterInput{Email: "ana@corp.com", Password: "pw"})
		assert.NoError(t, err)

		_, _, err = svc.Register(ctx, RegisterInput{Email: "ana@corp.com", Password: "pw"})
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 400, svcErr.Status)
		assert.Equal(t, "User already exists", svcErr.Message)
	})

	t.Run("Invalid role is rejected", func(t *testing.T) {
		svc, _ := newAuthFixture()

		_, _, err := svc.Register(ctx, RegisterInput{Email: "x@corp.com", Password: "pw", Role: "superuser"})
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "Invalid role", svcErr.Message)
	})

	t.Run("Explicit role is honored", func(t *testing.T) {
		svc, _ := newAuthFixture()

		user, _, err := svc.Register(ctx, RegisterInput{Email: "hr@corp.com", Password: "pw", Role: "hr"})
		assert.NoError(t, err)
		assert.Equal(t, model.RoleHR, user.Role)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "ana@corp.com", Password: "s3cret!!"})
	assert.NoError(t, err)

	t.Run("Valid credentials issue a token", func(t *testing.T) {
		user, tok, err := svc.Login(ctx, "ana@corp.com", "s3cret!!")
		assert.NoError(t, err)
		assert.NotEmpty(t, tok)
		assert.Equal(t, "ana@corp.com", user.Email)
	})

	t.Run("Wrong password fails with 401", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ana@corp.com", "wrong")
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 401, svcErr.Status)
		assert.Equal(t, "Invalid email or password", svcErr.Message)
	})

	t.Run("Unknown email fails with the same message", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ghost@corp.com", "s3cret!!")
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 401, svcErr.Status)
		assert.Equal(t, "Invalid email or password", svcErr.Message)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	user, _, err := svc.Register(ctx, RegisterInput{Email: "ana@corp.com", Password: "pw"})
	assert.NoError(t, err)

	t.Run("Partial update keeps unset fields", func(t *testing.T) {
		updated, tok, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{PhoneNumber: "0700123456"})
		assert.NoError(t, err)
		assert.NotEmpty(t, tok)
		assert.Equal(t, "0700123456", updated.PhoneNumber)
		assert.Equal(t, "ana@corp.com", updated.Email)
	})

	t.Run("Password change invalidates the old one", func(t *testing.T) {
		_, _, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Password: "newpw"})
		assert.NoError(t, err)

		_, _, err = svc.Login(ctx, "ana@corp.com", "pw")
		assert.Error(t, err)
		_, _, err = svc.Login(ctx, "ana@corp.com", "newpw")
		assert.NoError(t, err)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	user, _, err := svc.Register(ctx, RegisterInput{Email: "ana@corp.com", Password: "pw"})
	assert.NoError(t, err)

	t.Run("Admin edit may change role and deactivate", func(t *testing.T) {
		inactive := false
		updated, err := svc.UpdateUser(ctx, user.ID, AdminUserUpdate{Role: "manager", IsActive: &inactive})
		assert.NoError(t, err)
		assert.Equal(t, model.RoleManager, updated.Role)
		assert.False(t, updated.IsActive)
	})

	t.Run("Missing user is 404", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, 999, AdminUserUpdate{Role: "hr"})
		var svcErr *Error
		assert.ErrorAs(t, err, &svcErr)
		assert.Equal(t, 404, svcErr.Status)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	user, _, err := svc.Register(ctx, RegisterInput{Email: "ana@corp.com", Password: "pw"})
	assert.NoError(t, err)

	assert.NoError(t, svc.DeleteUser(ctx, user.ID))

	_, err = svc.GetUser(ctx, user.ID)
	var svcErr *Error
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 404, svcErr.Status)

	err = svc.DeleteUser(ctx, user.ID)
	assert.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 404, svcErr.Status)
}

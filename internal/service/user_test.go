package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/repository"
	fbtest "github.com/templui/filebox/internal/testutil"
)

const strongPassword = "Xq7!mLp2#vRt9z"

func TestUserCreate(t *testing.T) {
	svc := NewUserService(repository.NewUserRepository(fbtest.NewDB(t)))
	ctx := t.Context()

	user, err := svc.Create(ctx, &CreateUserRequest{Username: " bob ", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, strongPassword, user.PasswordHash)

	_, err = svc.Create(ctx, &CreateUserRequest{Username: "bob", Password: strongPassword})
	assert.ErrorIs(t, err, domain.ErrConflict)

	for name, req := range map[string]*CreateUserRequest{
		"short password":  {Username: "carol", Password: "short"},
		"common password": {Username: "carol", Password: "mypassword1234"},
		"blank username":  {Username: " ", Password: strongPassword},
		"spaced username": {Username: "carol x", Password: strongPassword},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUserUpdatePassword(t *testing.T) {
	svc := NewUserService(repository.NewUserRepository(fbtest.NewDB(t)))
	ctx := t.Context()

	user, err := svc.Create(ctx, &CreateUserRequest{Username: "bob", Password: strongPassword})
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user.ID, "not the password", "Zr8$kWn3@pLq7y")
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.UpdatePassword(ctx, user.ID, strongPassword, "short")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, strongPassword, "Zr8$kWn3@pLq7y"))
	err = svc.UpdatePassword(ctx, user.ID, strongPassword, "Zr8$kWn3@pLq7y")
	assert.ErrorIs(t, err, domain.ErrValidation, "old password no longer matches")

	err = svc.UpdatePassword(ctx, "missing", strongPassword, "Zr8$kWn3@pLq7y")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserDeleteKeepsLastAdmin(t *testing.T) {
	svc := NewUserService(repository.NewUserRepository(fbtest.NewDB(t)))
	ctx := t.Context()

	first, err := svc.Create(ctx, &CreateUserRequest{Username: "root", Password: strongPassword, IsAdmin: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &CreateUserRequest{Username: "ops", Password: strongPassword, IsAdmin: true})
	require.NoError(t, err)
	plain, err := svc.Create(ctx, &CreateUserRequest{Username: "bob", Password: strongPassword})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, plain.ID))
	require.NoError(t, svc.Delete(ctx, second.ID))
	assert.ErrorIs(t, svc.Delete(ctx, first.ID), domain.ErrConflict)
	assert.ErrorIs(t, svc.Delete(ctx, plain.ID), domain.ErrNotFound)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Username)
}

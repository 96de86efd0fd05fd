package services

import (
	"context"
	"testing"

	"logistics_manager/internal/appstate"
	"logistics_manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) user(t *testing.T, username, role string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@rapido.test", Role: role, IsActive: true}
	require.NoError(t, f.users.CreateUser(context.Background(), user, "s3nha-forte"))
	return user
}

func TestCreateUserHashesPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "maria", "")

	assert.Equal(t, "operator", user.Role)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3nha-forte", user.PasswordHash)

	err := f.users.CreateUser(ctx, &models.User{Username: "maria", Email: "other@rapido.test"}, "s3nha-forte")
	assert.ErrorIs(t, err, ErrConflict)

	var verr *ValidationError
	err = f.users.CreateUser(ctx, &models.User{Username: "joao", Email: "joao@rapido.test"}, "curta")
	require.ErrorAs(t, err, &verr)
	err = f.users.CreateUser(ctx, &models.User{Username: "joao", Email: "joao@rapido.test", Role: "root"}, "s3nha-forte")
	require.ErrorAs(t, err, &verr)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "maria", "admin")

	got, err := f.users.Authenticate(ctx, " maria ", "s3nha-forte")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.LastLoginAt)

	_, err = f.users.Authenticate(ctx, "maria", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Authenticate(ctx, "ninguem", "s3nha-forte")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.users.PatchUser(ctx, user.ID, []byte(`{"isActive":false}`))
	require.NoError(t, err)
	_, err = f.users.Authenticate(ctx, "maria", "s3nha-forte")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "inactive users cannot log in")
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "maria", "")

	assert.ErrorIs(t, f.users.ChangePassword(ctx, user.ID, "errada", "nova-senha-1"), ErrInvalidCredentials)
	require.NoError(t, f.users.ChangePassword(ctx, user.ID, "s3nha-forte", "nova-senha-1"))

	_, err := f.users.Authenticate(ctx, "maria", "nova-senha-1")
	require.NoError(t, err)
}

func TestValidateUserRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.user(t, "vera", "viewer")
	admin := f.user(t, "ana", "admin")

	assert.Error(t, f.users.ValidateUserRole(ctx, viewer.ID, models.RoleOperator))
	assert.NoError(t, f.users.ValidateUserRole(ctx, admin.ID, models.RoleOperator))

	users, err := f.users.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestLoginSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "maria", "admin")

	res, err := f.auth.Login(ctx, LoginRequest{Username: "maria", Password: "s3nha-forte"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, user.ID, res.Session.UserID)
	assert.Equal(t, "admin", res.Session.Role)

	session, err := f.auth.Session(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "maria", session.Username)

	require.NoError(t, f.auth.Logout(ctx, res.SessionID))
	_, err = f.auth.Session(ctx, res.SessionID)
	assert.ErrorIs(t, err, appstate.ErrSessionNotFound)

	_, err = f.auth.Login(ctx, LoginRequest{Username: "maria", Password: "errada"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

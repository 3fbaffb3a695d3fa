package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/jwt"
	"github.com/pharmatrust/docvault/internal/service"
)

func TestUserLifecycleAndLogin(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	outsider := env.seedUser(t, model.RoleLab)

	email := fmt.Sprintf("qa-%d@test.local", time.Now().UnixNano())
	input := service.UserCreateInput{Name: "qa", Email: email, Password: "pass1234", Role: model.RoleManagement}

	_, err := env.userSvc.Create(ctx, outsider, input, testProv)
	require.ErrorIs(t, err, appErr.ErrForbidden)

	user, err := env.userSvc.Create(ctx, admin, input, testProv)
	require.NoError(t, err)
	require.Equal(t, model.RoleManagement, user.Role)

	// duplicate email is a conflict
	_, err = env.userSvc.Create(ctx, admin, input, testProv)
	require.ErrorIs(t, err, appErr.ErrConflict)

	result, err := env.auth.Login(ctx, email, "pass1234")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	claims, err := jwt.ParseToken(result.Token, []byte("test-secret"))
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)

	_, err = env.auth.Login(ctx, email, "wrong")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)

	// disabling ends both login and token resolution
	require.NoError(t, env.userSvc.Disable(ctx, admin, user.ID, testProv))
	_, err = env.auth.Login(ctx, email, "pass1234")
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
	_, err = env.auth.Actor(ctx, user.ID)
	require.ErrorIs(t, err, appErr.ErrUnauthorized)

	// admins cannot disable themselves
	require.ErrorIs(t, env.userSvc.Disable(ctx, admin, admin.ID, testProv), appErr.ErrConflict)
}

func TestUserRoleChangeInvalidatesActorCache(t *testing.T) {
	env, cleanup := newTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	admin := env.seedUser(t, model.RoleAdmin)
	member := env.seedUser(t, model.RoleLab)

	actor, err := env.auth.Actor(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoleLab, actor.Role)

	require.NoError(t, env.userSvc.UpdateRole(ctx, admin, member.ID, model.RoleManagement, testProv))

	actor, err = env.auth.Actor(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, model.RoleManagement, actor.Role)
}

package service

import (
	"context"
	"testing"

	"github.com/brehash/kscinventory-sub002/internal/model"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture() (UserService, *stubClaims, *stubUserRepo) {
	claims := &stubClaims{users: map[string]*auth.UserRecord{
		"u-2": {
			UserInfo:     &auth.UserInfo{UID: "u-2", Email: "sam@example.com", DisplayName: "Sam"},
			CustomClaims: map[string]interface{}{"role": "staff", "tenant": "ksc"},
		},
	}}
	repo := &stubUserRepo{}
	return NewUserService(repo, claims, NewActivityService(&stubActivityRepo{})), claims, repo
}

func TestSetRole_KeepsOtherClaims(t *testing.T) {
	svc, claims, repo := newUserFixture()
	admin := model.Actor{UID: "u-1", Role: model.RoleAdmin}

	resp, err := svc.SetRole(context.Background(), admin, "u-2", model.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, resp.Role)
	assert.Equal(t, "sam@example.com", resp.Email)
	assert.True(t, resp.Active)

	assert.Equal(t, map[string]interface{}{"role": "manager", "tenant": "ksc"}, claims.claims["u-2"])
	require.Contains(t, repo.users, "u-2")
	assert.Equal(t, model.RoleManager, repo.users["u-2"].Role)
}

func TestSetRole_Guards(t *testing.T) {
	svc, _, _ := newUserFixture()
	admin := model.Actor{UID: "u-1", Role: model.RoleAdmin}

	_, err := svc.SetRole(context.Background(), admin, "u-1", model.RoleStaff)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.SetRole(context.Background(), admin, "u-2", "owner")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetRole(context.Background(), admin, "ghost", model.RoleStaff)
	assert.Error(t, err)
}

func TestMe_CreatesProfileOnce(t *testing.T) {
	svc, _, repo := newUserFixture()

	resp, err := svc.Me(context.Background(), testActor)
	require.NoError(t, err)
	assert.Equal(t, testActor.Email, resp.Email)
	assert.Equal(t, model.RoleManager, resp.Role)
	require.Len(t, repo.users, 1)

	// the token decides the role even if the mirror is stale
	promoted := testActor
	promoted.Role = model.RoleAdmin
	resp, err = svc.Me(context.Background(), promoted)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.Role)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

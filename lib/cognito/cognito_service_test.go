package cognito

import (
	"context"
	"testing"
	"time"

	"userpoold/lib/apierr"
	"userpoold/lib/clock"
	"userpoold/lib/models"
	"userpoold/lib/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *CognitoService {
	t.Helper()
	dir := t.TempDir()
	factory := store.NewFactory(store.FileBackend{Dir: dir}, nil)
	clk := &clock.Fixed{At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(factory, clk, nil)
}

func Test_CreateUserPool_AssignsIdAndTimestamps(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()

	// Act
	pool, err := svc.CreateUserPool(ctx, models.UserPool{Name: "test-pool"})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, pool.Id)
	assert.Equal(t, "test-pool", pool.Name)
	assert.False(t, pool.CreationDate.IsZero())
}

func Test_GetUserPool_Missing_ReturnsResourceNotFound(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()

	// Act
	_, err := svc.GetUserPool(ctx, "does-not-exist")

	// Assert
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ResourceNotFoundError", apiErr.Type)
}

func Test_ListUserPools_ReturnsAllCreated(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()
	p1, err := svc.CreateUserPool(ctx, models.UserPool{Name: "pool-one"})
	require.NoError(t, err)
	p2, err := svc.CreateUserPool(ctx, models.UserPool{Name: "pool-two"})
	require.NoError(t, err)

	// Act
	pools, err := svc.ListUserPools(ctx)

	// Assert
	require.NoError(t, err)
	ids := []string{pools[0].Id, pools[1].Id}
	assert.ElementsMatch(t, []string{p1.Id, p2.Id}, ids)
}

func Test_DeleteUserPool_RemovesFromRegistryAndStorage(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()
	pool, err := svc.CreateUserPool(ctx, models.UserPool{Name: "transient"})
	require.NoError(t, err)

	// Act
	require.NoError(t, svc.DeleteUserPool(ctx, pool))

	// Assert
	_, err = svc.GetUserPool(ctx, pool.Id)
	require.Error(t, err)
	pools, err := svc.ListUserPools(ctx)
	require.NoError(t, err)
	assert.Empty(t, pools)
}

func Test_CreateAppClient_And_GetUserPoolForClientId(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()
	pool, err := svc.CreateUserPool(ctx, models.UserPool{Name: "pool-with-client"})
	require.NoError(t, err)
	poolSvc, err := svc.GetUserPool(ctx, pool.Id)
	require.NoError(t, err)

	// Act
	client, err := poolSvc.CreateAppClient(ctx, "web")
	require.NoError(t, err)
	resolved, err := svc.GetUserPoolForClientId(ctx, client.ClientId)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, pool.Id, resolved.Pool().Id)
}

func Test_SaveUser_GetUserByUsername_DirectLookup(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()
	pool, err := svc.CreateUserPool(ctx, models.UserPool{Name: "pool-users"})
	require.NoError(t, err)
	poolSvc, err := svc.GetUserPool(ctx, pool.Id)
	require.NoError(t, err)
	user := &models.User{Username: "alice", UserStatus: models.StatusConfirmed, Enabled: true}
	user.SetAttribute("sub", "sub-alice")

	// Act
	require.NoError(t, poolSvc.SaveUser(ctx, user))
	got, err := poolSvc.GetUserByUsername(ctx, "alice")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func Test_GetUserByUsername_AliasFallback_BySub(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()
	pool, err := svc.CreateUserPool(ctx, models.UserPool{Name: "pool-alias"})
	require.NoError(t, err)
	poolSvc, err := svc.GetUserPool(ctx, pool.Id)
	require.NoError(t, err)
	user := &models.User{Username: "alice", UserStatus: models.StatusConfirmed, Enabled: true}
	user.SetAttribute("sub", "sub-xyz")
	require.NoError(t, poolSvc.SaveUser(ctx, user))

	// Act
	got, err := poolSvc.GetUserByUsername(ctx, "sub-xyz")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func Test_GetUserByUsername_NotFound_ReturnsNil(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()
	pool, err := svc.CreateUserPool(ctx, models.UserPool{Name: "pool-empty"})
	require.NoError(t, err)
	poolSvc, err := svc.GetUserPool(ctx, pool.Id)
	require.NoError(t, err)

	// Act
	got, err := poolSvc.GetUserByUsername(ctx, "nobody")

	// Assert
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_StoreRefreshToken_GetUserByRefreshToken(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()
	pool, err := svc.CreateUserPool(ctx, models.UserPool{Name: "pool-refresh"})
	require.NoError(t, err)
	poolSvc, err := svc.GetUserPool(ctx, pool.Id)
	require.NoError(t, err)
	user := &models.User{Username: "alice", UserStatus: models.StatusConfirmed, Enabled: true}
	require.NoError(t, poolSvc.SaveUser(ctx, user))

	// Act
	require.NoError(t, poolSvc.StoreRefreshToken(ctx, "refresh-tok", user))
	got, err := poolSvc.GetUserByRefreshToken(ctx, "refresh-tok")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func Test_SaveGroup_GetGroup_And_Missing(t *testing.T) {
	// Arrange
	svc := newService(t)
	ctx := context.Background()
	pool, err := svc.CreateUserPool(ctx, models.UserPool{Name: "pool-groups"})
	require.NoError(t, err)
	poolSvc, err := svc.GetUserPool(ctx, pool.Id)
	require.NoError(t, err)

	// Act
	require.NoError(t, poolSvc.SaveGroup(ctx, &models.Group{GroupName: "admins"}))
	got, err := poolSvc.GetGroup(ctx, "admins")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "admins", got.GroupName)

	// Act: missing group
	_, err = poolSvc.GetGroup(ctx, "does-not-exist")

	// Assert
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ResourceNotFoundError", apiErr.Type)
}

package cognito

import (
	"context"
	"fmt"

	"userpoold/lib/apierr"
	"userpoold/lib/clock"
	"userpoold/lib/models"
	"userpoold/lib/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserPoolService owns one pool's document and borrows the shared clients
// document to register new AppClients.
type UserPoolService struct {
	pool         *models.UserPool
	poolStore    store.DataStore
	clientsStore store.DataStore
	clock        clock.Clock
	logger       *logrus.Logger
}

// Pool returns the bound pool's configuration.
func (s *UserPoolService) Pool() *models.UserPool { return s.pool }

// CreateAppClient generates a ClientId and registers a new AppClient for
// this pool in the shared clients store.
func (s *UserPoolService) CreateAppClient(ctx context.Context, name string) (*models.AppClient, error) {
	now := s.clock.Now()
	client := &models.AppClient{
		ClientId:             uuid.New().String(),
		ClientName:           name,
		UserPoolId:           s.pool.Id,
		RefreshTokenValidity: 30,
		CreationDate:         now,
		LastModifiedDate:     now,
	}
	if err := s.clientsStore.Set(ctx, store.K("Clients", client.ClientId), client); err != nil {
		return nil, err
	}
	return client, nil
}

// SaveUser upserts user under Users/<Username>. Callers are responsible
// for bumping UserLastModifiedDate before calling this.
func (s *UserPoolService) SaveUser(ctx context.Context, user *models.User) error {
	return s.poolStore.Set(ctx, store.K("Users", user.Username), user)
}

// DeleteUser removes user's record.
func (s *UserPoolService) DeleteUser(ctx context.Context, user *models.User) error {
	return s.poolStore.Delete(ctx, store.K("Users", user.Username))
}

// GetUserByUsername resolves username via direct lookup, then falls back
// to scanning for a matching sub or (if aliasing is enabled) email/phone.
func (s *UserPoolService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok, err := store.GetTyped[models.User](ctx, s.poolStore, store.K("Users", username)); err != nil {
		return nil, err
	} else if ok {
		return &user, nil
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Sub() == username {
			return u, nil
		}
	}
	if s.pool.HasUsernameAttribute("email") {
		for _, u := range users {
			if v, ok := u.Attribute("email"); ok && v == username {
				return u, nil
			}
		}
	}
	if s.pool.HasUsernameAttribute("phone_number") {
		for _, u := range users {
			if v, ok := u.Attribute("phone_number"); ok && v == username {
				return u, nil
			}
		}
	}
	return nil, nil
}

// GetUserByRefreshToken linear-scans users for membership of token.
func (s *UserPoolService) GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.HasRefreshToken(token) {
			return u, nil
		}
	}
	return nil, nil
}

// ListUsers returns every user in the pool in Go map-iteration order,
// which is unspecified and does not follow insertion order; only direct
// key lookups in GetUserByUsername have a deterministic result.
func (s *UserPoolService) ListUsers(ctx context.Context) ([]*models.User, error) {
	raw, _, err := store.GetTyped[map[string]models.User](ctx, s.poolStore, store.K("Users"))
	if err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(raw))
	for _, u := range raw {
		u := u
		users = append(users, &u)
	}
	return users, nil
}

// ListGroups returns every group in the pool.
func (s *UserPoolService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	raw, _, err := store.GetTyped[map[string]models.Group](ctx, s.poolStore, store.K("Groups"))
	if err != nil {
		return nil, err
	}
	groups := make([]*models.Group, 0, len(raw))
	for _, g := range raw {
		g := g
		groups = append(groups, &g)
	}
	return groups, nil
}

// SaveGroup upserts group under Groups/<GroupName>.
func (s *UserPoolService) SaveGroup(ctx context.Context, group *models.Group) error {
	return s.poolStore.Set(ctx, store.K("Groups", group.GroupName), group)
}

// GetGroup resolves groupName, or fails ResourceNotFoundError.
func (s *UserPoolService) GetGroup(ctx context.Context, groupName string) (*models.Group, error) {
	group, ok, err := store.GetTyped[models.Group](ctx, s.poolStore, store.K("Groups", groupName))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.ResourceNotFound(fmt.Sprintf("Group %s does not exist.", groupName))
	}
	return &group, nil
}

// StoreRefreshToken appends token to user's RefreshTokens and persists.
func (s *UserPoolService) StoreRefreshToken(ctx context.Context, token string, user *models.User) error {
	user.RefreshTokens = append(user.RefreshTokens, token)
	return s.SaveUser(ctx, user)
}

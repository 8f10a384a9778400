// Package cognito implements the user-pool registry and per-pool
// operations the targets compose against.
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

const (
	registryStoreId = "_registry"
	clientsStoreId  = "_clients"
)

// CognitoService is the registry of UserPools and the shared AppClients
// store. It is constructed once at startup and is safe for concurrent use
// by every in-flight request.
type CognitoService struct {
	factory *store.Factory
	clock   clock.Clock
	logger  *logrus.Logger
}

// New builds a CognitoService over factory.
func New(factory *store.Factory, clk clock.Clock, logger *logrus.Logger) *CognitoService {
	return &CognitoService{factory: factory, clock: clk, logger: logger}
}

func (c *CognitoService) registry(ctx context.Context) (store.DataStore, error) {
	return c.factory.Create(ctx, registryStoreId, map[string]interface{}{"UserPools": []interface{}{}})
}

func (c *CognitoService) clients(ctx context.Context) (store.DataStore, error) {
	return c.factory.Create(ctx, clientsStoreId, map[string]interface{}{"Clients": map[string]interface{}{}})
}

// CreateUserPool creates and persists a new UserPool, registering its id.
func (c *CognitoService) CreateUserPool(ctx context.Context, config models.UserPool) (*models.UserPool, error) {
	if config.Id == "" {
		config.Id = uuid.New().String()
	}
	now := c.clock.Now()
	config.CreationDate = now
	config.LastModifiedDate = now

	poolStore, err := c.factory.Create(ctx, config.Id, map[string]interface{}{
		"Pool":   config,
		"Users":  map[string]interface{}{},
		"Groups": map[string]interface{}{},
	})
	if err != nil {
		return nil, err
	}
	if err := poolStore.Set(ctx, store.K("Pool"), config); err != nil {
		return nil, err
	}

	reg, err := c.registry(ctx)
	if err != nil {
		return nil, err
	}
	ids, _, err := store.GetTyped[[]string](ctx, reg, store.K("UserPools"))
	if err != nil {
		return nil, err
	}
	ids = append(ids, config.Id)
	if err := reg.Set(ctx, store.K("UserPools"), ids); err != nil {
		return nil, err
	}

	return &config, nil
}

// ListUserPools returns every registered UserPool.
func (c *CognitoService) ListUserPools(ctx context.Context) ([]*models.UserPool, error) {
	reg, err := c.registry(ctx)
	if err != nil {
		return nil, err
	}
	ids, _, err := store.GetTyped[[]string](ctx, reg, store.K("UserPools"))
	if err != nil {
		return nil, err
	}
	pools := make([]*models.UserPool, 0, len(ids))
	for _, id := range ids {
		svc, err := c.GetUserPool(ctx, id)
		if err != nil {
			continue
		}
		pools = append(pools, svc.Pool())
	}
	return pools, nil
}

// GetUserPool resolves poolId to a bound UserPoolService, or fails
// ResourceNotFoundError.
func (c *CognitoService) GetUserPool(ctx context.Context, poolId string) (*UserPoolService, error) {
	ds, err := c.factory.Get(ctx, poolId)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, apierr.ResourceNotFound(fmt.Sprintf("User pool %s does not exist.", poolId))
	}
	pool, ok, err := store.GetTyped[models.UserPool](ctx, ds, store.K("Pool"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.ResourceNotFound(fmt.Sprintf("User pool %s does not exist.", poolId))
	}
	clientsStore, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}
	return &UserPoolService{pool: &pool, poolStore: ds, clientsStore: clientsStore, clock: c.clock, logger: c.logger}, nil
}

// GetAppClient resolves clientId via the shared clients store.
func (c *CognitoService) GetAppClient(ctx context.Context, clientId string) (*models.AppClient, error) {
	clientsStore, err := c.clients(ctx)
	if err != nil {
		return nil, err
	}
	client, ok, err := store.GetTyped[models.AppClient](ctx, clientsStore, store.K("Clients", clientId))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.ResourceNotFound(fmt.Sprintf("Client %s does not exist.", clientId))
	}
	return &client, nil
}

// GetUserPoolForClientId resolves clientId to its owning pool.
func (c *CognitoService) GetUserPoolForClientId(ctx context.Context, clientId string) (*UserPoolService, error) {
	client, err := c.GetAppClient(ctx, clientId)
	if err != nil {
		return nil, err
	}
	return c.GetUserPool(ctx, client.UserPoolId)
}

// DeleteAppClient removes client from the shared clients store.
func (c *CognitoService) DeleteAppClient(ctx context.Context, client *models.AppClient) error {
	clientsStore, err := c.clients(ctx)
	if err != nil {
		return err
	}
	return clientsStore.Delete(ctx, store.K("Clients", client.ClientId))
}

// DeleteUserPool removes poolId's backing store and registry entry.
func (c *CognitoService) DeleteUserPool(ctx context.Context, pool *models.UserPool) error {
	reg, err := c.registry(ctx)
	if err != nil {
		return err
	}
	ids, _, err := store.GetTyped[[]string](ctx, reg, store.K("UserPools"))
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != pool.Id {
			kept = append(kept, id)
		}
	}
	if err := reg.Set(ctx, store.K("UserPools"), kept); err != nil {
		return err
	}
	return c.factory.Delete(ctx, pool.Id)
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Baaaki/message-board/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const accountKeyPrefix = "account:"

// AccountCache keeps account views keyed by id.
type AccountCache struct {
	views *ViewCache[models.Account]
}

func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	return &AccountCache{
		views: NewViewCache[models.Account](client, accountKeyPrefix, ttl),
	}
}

func (c *AccountCache) Get(ctx context.Context, id uuid.UUID) (*models.Account, bool) {
	return c.views.Get(ctx, id.String())
}

func (c *AccountCache) Fill(ctx context.Context, account *models.Account) {
	c.views.Fill(ctx, account.ID.String(), account)
}

func (c *AccountCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.views.Invalidate(ctx, id.String()); err != nil {
		return fmt.Errorf("failed to invalidate cached account %s: %w", id, err)
	}
	return nil
}

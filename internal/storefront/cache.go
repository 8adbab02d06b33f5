package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

// CartCache keeps the last cart the storefront API confirmed for an owner.
// Owners are the identities the HTTP layer derives from a token, never a
// claim taken on trust.
type CartCache interface {
	Get(ctx context.Context, owner string) (*domain.Cart, error)
	Set(ctx context.Context, owner string, cart *domain.Cart) error
	Delete(ctx context.Context, owner string) error
}

var ErrCacheMiss = errors.New("cart not cached")

const (
	cartTTL       = 15 * time.Minute
	cartTTLJitter = 5 * time.Minute
)

// RedisCache stores carts as JSON, one key per owner.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
	jitter time.Duration
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client, ttl: cartTTL, jitter: cartTTLJitter}
}

func (c *RedisCache) Get(ctx context.Context, owner string) (*domain.Cart, error) {
	raw, err := c.client.Get(ctx, cartKey(owner)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("read cached cart: %w", err)
	}

	cart := new(domain.Cart)
	if err := json.Unmarshal(raw, cart); err != nil {
		return nil, fmt.Errorf("decode cached cart: %w", err)
	}
	return cart, nil
}

// Set writes the cart with a jittered TTL so carts cached in the same burst
// do not all expire together.
func (c *RedisCache) Set(ctx context.Context, owner string, cart *domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.client.Set(ctx, cartKey(owner), raw, c.expiry()).Err(); err != nil {
		return fmt.Errorf("write cached cart: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, owner string) error {
	if err := c.client.Del(ctx, cartKey(owner)).Err(); err != nil {
		return fmt.Errorf("drop cached cart: %w", err)
	}
	return nil
}

func (c *RedisCache) expiry() time.Duration {
	if c.jitter <= 0 {
		return c.ttl
	}
	return c.ttl + rand.N(c.jitter)
}

func cartKey(owner string) string {
	return "cart:" + owner
}

// Package sessions tracks revoked session tokens.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records token ids that must no longer be accepted.
type Denylist interface {
	// Deny refuses tokenID until the given instant. Past instants are ignored.
	Deny(ctx context.Context, tokenID string, until time.Time) error
	IsDenied(ctx context.Context, tokenID string) (bool, error)
}

// Noop is used when no Redis is configured; logout is then client side only.
type Noop struct{}

func (Noop) Deny(context.Context, string, time.Time) error { return nil }

func (Noop) IsDenied(context.Context, string) (bool, error) { return false, nil }

const keyPrefix = "session:denied:"

// RedisDenylist stores denied token ids as keys that expire with the token.
type RedisDenylist struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisDenylist(client redis.UniversalClient) *RedisDenylist {
	return &RedisDenylist{client: client, now: time.Now}
}

func (d *RedisDenylist) Deny(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("deny token: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsDenied(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, keyPrefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	}
	return false, fmt.Errorf("check token: %w", err)
}

// Connect opens a client and verifies it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Package redisstore keeps auth sessions in redis so browser clients survive restarts.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"lavapp/pkg/repository"
)

const keyPrefix = "lavapp:session:"

// Storage implements repository.TokenStorage.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.TokenStorage = (*Storage)(nil)

// New connects lazily; call Ping to check the server.
func New(addr, username, password string, db int, ttl time.Duration) *Storage {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})
	return &Storage{client: client, ttl: ttl}
}

func storageKey(key string) string {
	return keyPrefix + key
}

// expiration keeps an entry for the configured ttl, but never less than the
// remaining life of its access token.
func (s *Storage) expiration(session *repository.AuthSession, now time.Time) time.Duration {
	ttl := s.ttl
	if !session.ExpiresAt.IsZero() {
		if remaining := session.ExpiresAt.Sub(now); remaining > ttl {
			ttl = remaining
		}
	}
	return ttl
}

func (s *Storage) Load(ctx context.Context, key string) (*repository.AuthSession, error) {
	data, err := s.client.Get(ctx, storageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session repository.AuthSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) Save(ctx context.Context, key string, session *repository.AuthSession) error {
	if session == nil {
		return s.Delete(ctx, key)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, storageKey(key), data, s.expiration(session, time.Now())).Err()
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, storageKey(key)).Err()
}

// Clear removes every stored session.
func (s *Storage) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.client.Close()
}

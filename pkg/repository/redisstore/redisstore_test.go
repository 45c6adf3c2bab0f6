package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavapp/pkg/repository"
)

func TestExpiration(t *testing.T) {
	s := &Storage{ttl: time.Hour}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session repository.AuthSession
		want    time.Duration
	}{
		{"no expiry", repository.AuthSession{}, time.Hour},
		{"short token", repository.AuthSession{ExpiresAt: now.Add(10 * time.Minute)}, time.Hour},
		{"long token", repository.AuthSession{ExpiresAt: now.Add(48 * time.Hour)}, 48 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.expiration(&tt.session, now))
		})
	}
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "lavapp:session:abc", storageKey("abc"))
}

// TestStorage_RoundTrip runs against a live server when REDIS_TEST_ADDR is set.
func TestStorage_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	s := New(addr, "", "", 0, time.Minute)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Ping(ctx))

	session := &repository.AuthSession{
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		User:        repository.AuthUser{ID: "u1", Email: "ana@example.com"},
	}
	require.NoError(t, s.Save(ctx, "client-1", session))

	loaded, err := s.Load(ctx, "client-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "token", loaded.AccessToken)
	assert.Equal(t, "u1", loaded.User.ID)

	require.NoError(t, s.Save(ctx, "client-1", nil))
	loaded, err = s.Load(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, s.Save(ctx, "client-2", session))
	require.NoError(t, s.Clear(ctx))
	loaded, err = s.Load(ctx, "client-2")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

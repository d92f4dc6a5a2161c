package redis

import (
	"context"
	"testing"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Host: "cache", Port: "6380", DB: 2, PoolSize: 7}}

	opts := Options(cfg)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
}

func TestNewConnection_Unreachable(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Host: "127.0.0.1", Port: "1", PoolSize: 1}}

	client, err := NewConnection(cfg, logger.Discard())
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestDel_NoKeys(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Host: "127.0.0.1", Port: "1", PoolSize: 1}}
	client := New(goredis.NewClient(Options(cfg)))
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, client.Del(context.Background()))
}

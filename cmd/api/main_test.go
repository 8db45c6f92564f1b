package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medkb/billing-kb/internal/adapters/cache"
	redisclient "github.com/medkb/billing-kb/internal/infrastructure/clients/redis"
)

// The cache adapter takes the connection wrapper, not the raw go-redis client.
func TestRedisCacheWiring(t *testing.T) {
	var client *redisclient.Client
	require.NotNil(t, cache.NewRedisAdapter(client))
}

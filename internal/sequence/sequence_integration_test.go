package sequence

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const skipIntegrationTests = "PRODUCT_SKIP_INTEGRATION_TESTS"

func skipIfIntegrationDisabled(t *testing.T) {
	t.Helper()
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
}

// assertStrictlyIncreasing checks sequential calls and then concurrent uniqueness.
func assertStrictlyIncreasing(t *testing.T, seq Sequence) {
	t.Helper()
	ctx := context.Background()

	first, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)
	second, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	const n = 40
	values := make(chan int64, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := seq.Next(ctx)
			if assert.NoError(t, err) {
				values <- v
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]struct{}, n)
	for v := range values {
		assert.Greater(t, v, second)
		_, dup := seen[v]
		assert.False(t, dup, "value %d issued twice", v)
		seen[v] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestRedisCounter(t *testing.T) {
	skipIfIntegrationDisabled(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "Failed to run Redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	assertStrictlyIncreasing(t, NewRedisCounter(client, ProductIDName))
}

func TestMongoCounter(t *testing.T) {
	skipIfIntegrationDisabled(t)
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7.0")
	require.NoError(t, err, "Failed to run MongoDB container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	coll := client.Database("CRUD").Collection("Counters")
	assertStrictlyIncreasing(t, NewMongoCounter(coll, ProductIDName))

	// the counter document is a single record keyed by name
	count, err := coll.CountDocuments(ctx, map[string]any{"_id": ProductIDName})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

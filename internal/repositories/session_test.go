package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSessionRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	// Start Redis container
	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()

	require.NoError(t, rdb.Ping(ctx).Err())

	repo := NewSessionRepository(rdb, 2*time.Second)

	t.Run("Set and Get session", func(t *testing.T) {
		userID := uuid.New()

		err := repo.Set(ctx, "sid-1", userID)
		assert.NoError(t, err)

		got, ok, err := repo.Get(ctx, "sid-1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, userID, got)
	})

	t.Run("Unknown session is a miss", func(t *testing.T) {
		got, ok, err := repo.Get(ctx, "missing")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, got)
	})

	t.Run("Clear removes session", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "sid-2", uuid.New()))
		require.NoError(t, repo.Clear(ctx, "sid-2"))

		_, ok, err := repo.Get(ctx, "sid-2")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Session expires", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "sid-3", uuid.New()))

		time.Sleep(3 * time.Second)

		_, ok, err := repo.Get(ctx, "sid-3")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Corrupt value is an error", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "session:bad", "not-a-uuid", time.Minute).Err())

		_, ok, err := repo.Get(ctx, "bad")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// RedisStoreSuite поднимает Redis в контейнере на время набора тестов
type RedisStoreSuite struct {
	suite.Suite
	ctx         context.Context
	container   *tcredis.RedisContainer
	redisClient *redis.Client
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.container, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	connStr, err := s.container.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	opts, err := redis.ParseURL(connStr)
	require.NoError(s.T(), err)

	s.redisClient = redis.NewClient(opts)
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err(), "Failed to connect to test redis")
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx) //nolint:errcheck
	}
}

func (s *RedisStoreSuite) TestContract() {
	store := NewRedisStoreFromClient(s.redisClient, "penora-test:", zap.NewNop())
	exerciseStore(s.T(), store)

	// Ключи лежат под префиксом
	v, err := s.redisClient.Get(s.ctx, "penora-test:user").Result()
	s.Require().NoError(err)
	s.Equal("alice", v)
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

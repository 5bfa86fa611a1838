//go:build integration

package lookup

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisStoreSuite struct {
	suite.Suite
	client *redis.Client
	prefix string
}

func TestRedisStoreSuite(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	suite.Run(t, &RedisStoreSuite{prefix: "test-" + uuid.NewString()})
}

func (s *RedisStoreSuite) SetupSuite() {
	opts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	s.Require().NoError(err)
	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(context.Background()).Err())
}

func (s *RedisStoreSuite) TearDownSuite() {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		s.client.Del(ctx, iter.Val())
	}
	s.client.Close()
}

func (s *RedisStoreSuite) TestRecordsRoundTripThroughPush() {
	ctx := context.Background()
	src := NewMemoryStore(Contact, map[string]map[string]string{
		"12345": {"UFID": "12345", "FIRST_NAME": "jane"},
		"67890": {"UFID": "67890", "FIRST_NAME": "john"},
	})

	n, err := PushRecords(ctx, s.client, s.prefix, src)
	s.Require().NoError(err)
	s.Equal(2, n)

	store := NewRedisRecords(s.client, s.prefix, Contact)
	fields, ok, err := store.Get(ctx, "12345")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("jane", fields["FIRST_NAME"])

	_, ok, err = store.Get(ctx, "99999")
	s.Require().NoError(err)
	s.False(ok)

	keys, err := store.Keys(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"12345", "67890"}, keys)
}

func (s *RedisStoreSuite) TestSetRoundTripThroughPush() {
	ctx := context.Background()
	n, err := PushList(ctx, s.client, s.prefix, NewList(DeptExceptions, []string{"^6", "^27"}))
	s.Require().NoError(err)
	s.Equal(2, n)

	store := NewRedisSet(s.client, s.prefix, DeptExceptions)
	_, ok, err := store.Get(ctx, "^6")
	s.Require().NoError(err)
	s.True(ok)

	keys, err := store.Keys(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"^27", "^6"}, keys)
}

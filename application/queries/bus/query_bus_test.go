package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsQuery struct {
	UserID string
}

func (q statsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

type mapCache struct {
	values map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string]interface{})}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.values[key] = value
	return nil
}

func TestQueryBusDispatch(t *testing.T) {
	queryBus := NewQueryBus()

	require.NoError(t, queryBus.Register(statsQuery{}, QueryHandlerFunc(
		func(ctx context.Context, query Query) (interface{}, error) {
			return query.(statsQuery).UserID, nil
		})))

	result, err := queryBus.Ask(context.Background(), statsQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", result)
}

func TestQueryBusValidatesBeforeDispatch(t *testing.T) {
	queryBus := NewQueryBus()
	called := false

	require.NoError(t, queryBus.Register(statsQuery{}, QueryHandlerFunc(
		func(ctx context.Context, query Query) (interface{}, error) {
			called = true
			return nil, nil
		})))

	_, err := queryBus.Ask(context.Background(), statsQuery{})
	require.Error(t, err)
	assert.False(t, called)
}

func TestQueryBusUnknownQuery(t *testing.T) {
	queryBus := NewQueryBus()

	_, err := queryBus.Ask(context.Background(), statsQuery{UserID: "user-1"})
	assert.Error(t, err)
}

func TestQueryBusRejectsDuplicateRegistration(t *testing.T) {
	queryBus := NewQueryBus()
	handler := QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return nil, nil
	})

	require.NoError(t, queryBus.Register(statsQuery{}, handler))
	assert.Error(t, queryBus.Register(statsQuery{}, handler))
}

func TestCachingMiddlewareServesSecondCallFromCache(t *testing.T) {
	calls := 0
	handler := QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		calls++
		return calls, nil
	})

	cached := NewCachingMiddleware(newMapCache(), 30).Wrap(handler)

	first, err := cached.Handle(context.Background(), statsQuery{UserID: "user-1"})
	require.NoError(t, err)
	second, err := cached.Handle(context.Background(), statsQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestCachingMiddlewareKeysIncludeQueryFields(t *testing.T) {
	calls := 0
	handler := QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		calls++
		return query.(statsQuery).UserID, nil
	})

	cached := NewCachingMiddleware(newMapCache(), 30).Wrap(handler)

	_, err := cached.Handle(context.Background(), statsQuery{UserID: "user-1"})
	require.NoError(t, err)
	_, err = cached.Handle(context.Background(), statsQuery{UserID: "user-2"})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestCachingMiddlewareDoesNotCacheErrors(t *testing.T) {
	calls := 0
	handler := QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		calls++
		return nil, errors.New("boom")
	})

	cached := NewCachingMiddleware(newMapCache(), 30).Wrap(handler)

	_, err := cached.Handle(context.Background(), statsQuery{UserID: "user-1"})
	require.Error(t, err)
	_, err = cached.Handle(context.Background(), statsQuery{UserID: "user-1"})
	require.Error(t, err)

	assert.Equal(t, 2, calls)
}

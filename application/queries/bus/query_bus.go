package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"ideaforge-backend/pkg/observability"
)

// Query is a read-only request. Validate runs before dispatch.
type Query interface {
	Validate() error
}

// QueryHandler answers a single query type.
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc adapts a plain function to QueryHandler.
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// QueryBus routes queries to handlers keyed by the query's concrete
// type.
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]QueryHandler
}

// NewQueryBus creates an empty query bus.
func NewQueryBus() *QueryBus {
	return &QueryBus{handlers: make(map[reflect.Type]QueryHandler)}
}

// Register binds a handler to the query's concrete type.
func (b *QueryBus) Register(query Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(query)
	if _, dup := b.handlers[t]; dup {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}
	b.handlers[t] = handler
	return nil
}

// Ask validates the query, dispatches it, and returns the handler's
// result.
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("query validation failed: %w", err)
	}

	b.mu.RLock()
	handler, ok := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no handler registered for query type %T", query)
	}

	result, err := handler.Handle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query handler failed: %w", err)
	}
	return result, nil
}

// Cache is the storage behind CachingMiddleware. TTL is in seconds.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
}

// CachingMiddleware serves repeated queries from a cache. Errors are
// never cached.
type CachingMiddleware struct {
	cache Cache
	ttl   int
}

// NewCachingMiddleware creates a caching middleware with the given TTL
// in seconds.
func NewCachingMiddleware(cache Cache, ttl int) *CachingMiddleware {
	return &CachingMiddleware{cache: cache, ttl: ttl}
}

// Wrap adds caching around a query handler.
func (m *CachingMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		key := cacheKey(query)
		if cached, found := m.cache.Get(ctx, key); found {
			return cached, nil
		}

		result, err := next.Handle(ctx, query)
		if err != nil {
			return nil, err
		}

		m.cache.Set(ctx, key, result, m.ttl)
		return result, nil
	})
}

// cacheKey folds the query's type and every field into the key, so two
// queries differ in key whenever they differ in any parameter.
func cacheKey(query Query) string {
	return fmt.Sprintf("%T:%+v", query, query)
}

// MetricsMiddleware records a count and latency datum per query.
type MetricsMiddleware struct {
	metrics *observability.Metrics
}

// NewMetricsMiddleware creates a metrics middleware.
func NewMetricsMiddleware(metrics *observability.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Wrap adds metrics recording around a query handler.
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		name := "query." + reflect.TypeOf(query).Name()
		start := time.Now()

		result, err := next.Handle(ctx, query)

		m.metrics.CountOperation(name, err == nil)
		m.metrics.RecordDuration(name, time.Since(start))
		return result, err
	})
}

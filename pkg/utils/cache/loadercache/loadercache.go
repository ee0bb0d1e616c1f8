package loadercache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/mpapenbr/iracelog-tirestrategy/log"
	"github.com/mpapenbr/iracelog-tirestrategy/pkg/utils/cache"
)

type (
	Option[K comparable, V any] func(*config[K, V])
	item[T any]                 struct {
		data    T
		expires time.Time
	}
	config[K comparable, V any] struct {
		name       string
		expiration time.Duration
		maxItems   int
		now        func() time.Time
		l          *log.Logger
	}
	loaderCache[K comparable, V any] struct {
		mutex  sync.Mutex
		items  map[K]item[*V]
		config *config[K, V]
		flight singleflight.Group
		hits   int64
		misses int64
	}
)

func WithName[K comparable, V any](name string) Option[K, V] {
	return func(c *config[K, V]) {
		c.name = name
	}
}

func WithExpiration[K comparable, V any](expiration time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		c.expiration = expiration
	}
}

// WithMaxItems limits the number of entries. When the limit is reached expired
// entries are removed, if none expired the entry closest to expiry is dropped.
func WithMaxItems[K comparable, V any](maxItems int) Option[K, V] {
	return func(c *config[K, V]) {
		c.maxItems = maxItems
	}
}

func WithLogger[K comparable, V any](arg *log.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		c.l = arg
	}
}

func withClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *config[K, V]) {
		c.now = now
	}
}

func New[K comparable, V any](opts ...Option[K, V]) cache.Cache[K, V] {
	c := &config[K, V]{
		name:       "default",
		expiration: 5 * time.Minute,
		maxItems:   100,
		now:        time.Now,
		l:          log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	ret := &loaderCache[K, V]{
		items:  make(map[K]item[*V]),
		config: c,
	}
	ret.setupMetrics()
	return ret
}

func (c *loaderCache[K, V]) Get(ctx context.Context, key K) (*V, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

// GetOrLoad runs at most one load per key at a time. Concurrent callers for
// the same key wait for that load and share its result, other keys are not
// blocked.
func (c *loaderCache[K, V]) GetOrLoad(
	ctx context.Context,
	key K,
	load cache.LoadFunc[V],
) (*V, error) {
	c.mutex.Lock()
	v, ok := c.lookup(key)
	c.mutex.Unlock()
	if ok {
		return v, nil
	}
	res, err, _ := c.flight.Do(fmt.Sprint(key), func() (any, error) {
		c.mutex.Lock()
		cached, ok := c.items[key]
		c.mutex.Unlock()
		if ok && !cached.expires.Before(c.config.now()) {
			return cached.data, nil
		}
		v, err := load(ctx)
		c.config.l.Debug("loaderCache.load", log.Any("key", key))
		if err != nil {
			c.config.l.Debug("error loading entry", log.ErrorField(err))
			return nil, err
		}
		c.mutex.Lock()
		defer c.mutex.Unlock()
		c.evict()
		c.items[key] = item[*V]{data: v, expires: c.config.now().Add(c.config.expiration)}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*V), nil
}

func (c *loaderCache[K, V]) Invalidate(ctx context.Context, key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
	c.config.l.Debug("Invalidate",
		log.Any("key", key), log.Int("remain items", len(c.items)))
}

func (c *loaderCache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// lookup must be called with the lock held
func (c *loaderCache[K, V]) lookup(key K) (*V, bool) {
	cacheItem, ok := c.items[key]
	if ok && cacheItem.expires.Before(c.config.now()) {
		delete(c.items, key)
		ok = false
	}
	if ok {
		c.hits++
		return cacheItem.data, true
	}
	c.misses++
	return nil, false
}

// evict makes room for one more entry, must be called with the lock held
func (c *loaderCache[K, V]) evict() {
	if c.config.maxItems <= 0 || len(c.items) < c.config.maxItems {
		return
	}
	now := c.config.now()
	var oldest K
	var oldestExp time.Time
	first := true
	for k, v := range c.items {
		if v.expires.Before(now) {
			delete(c.items, k)
			continue
		}
		if first || v.expires.Before(oldestExp) {
			oldest, oldestExp, first = k, v.expires, false
		}
	}
	if len(c.items) >= c.config.maxItems && !first {
		delete(c.items, oldest)
	}
}

func (c *loaderCache[K, V]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter("tirestrat.cache")
	attrs := metric.WithAttributes(attribute.String("name", c.config.name))
	register := func(metricName, desc string, valueProvider func() int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				c.mutex.Lock()
				defer c.mutex.Unlock()
				o.Observe(valueProvider(), attrs)
				return nil
			})); err != nil {
			c.config.l.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	register("tirestrat.cache.hits", "Number of cache hits",
		func() int64 { return c.hits })
	register("tirestrat.cache.misses", "Number of cache misses",
		func() int64 { return c.misses })
	register("tirestrat.cache.items", "Number of cached entries",
		func() int64 { return int64(len(c.items)) })
}

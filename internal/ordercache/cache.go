package ordercache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/nikolayk812/orderpipe/internal/domain"
	"github.com/nikolayk812/orderpipe/internal/dto"
	"github.com/nikolayk812/orderpipe/internal/port"
	"github.com/samber/lo"
)

const (
	DefaultKey       = "orders:v1"
	DefaultMaxOrders = 10
	DefaultTTL       = 7 * 24 * time.Hour
)

// StoredOrderEntry is the persisted envelope; timestamps are Unix milliseconds.
type StoredOrderEntry struct {
	Order     dto.OrderRecord `json:"order"`
	StoredAt  int64           `json:"storedAt"`
	ExpiresAt int64           `json:"expiresAt"`
}

// Cache is a bounded, self-expiring local copy of recently placed orders.
// It is a convenience cache, never a source of truth: storage failures are
// logged and swallowed.
type Cache struct {
	store     port.KeyValueStore
	key       string
	maxOrders int
	ttl       time.Duration
	now       func() time.Time
	log       *slog.Logger
}

type Option func(*Cache)

func WithKey(key string) Option {
	return func(c *Cache) { c.key = key }
}

func WithMaxOrders(n int) Option {
	return func(c *Cache) { c.maxOrders = n }
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New returns a cache over store. A nil store behaves as an unavailable medium.
// Non-positive max orders or TTL fall back to the defaults.
func New(store port.KeyValueStore, opts ...Option) *Cache {
	c := &Cache{
		store:     store,
		key:       DefaultKey,
		maxOrders: DefaultMaxOrders,
		ttl:       DefaultTTL,
		now:       time.Now,
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxOrders <= 0 {
		c.maxOrders = DefaultMaxOrders
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}

	return c
}

// Add stores order as the newest entry. Expired entries and any entry with
// the same order id are dropped, then the set is trimmed to the most recent
// maxOrders entries and written back in one call.
func (c *Cache) Add(ctx context.Context, order domain.OrderRecord) {
	if c.store == nil {
		return
	}

	now := c.now().UnixMilli()

	existing, ok := c.readAll(ctx)
	if !ok {
		return
	}

	kept := lo.Filter(removeExpired(existing, now), func(e StoredOrderEntry, _ int) bool {
		return e.Order.ID != order.ID
	})

	updated := append([]StoredOrderEntry{{
		Order:     dto.MapOrderRecordFromDomain(order),
		StoredAt:  now,
		ExpiresAt: now + c.ttl.Milliseconds(),
	}}, kept...)

	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].StoredAt > updated[j].StoredAt
	})

	if len(updated) > c.maxOrders {
		updated = updated[:c.maxOrders]
	}

	c.writeAll(ctx, updated)
}

// List returns the orders that have not expired, newest first, and writes
// the pruned set back.
func (c *Cache) List(ctx context.Context) []domain.OrderRecord {
	if c.store == nil {
		return nil
	}

	entries, ok := c.readAll(ctx)
	if !ok {
		return nil
	}

	entries = removeExpired(entries, c.now().UnixMilli())

	c.writeAll(ctx, entries)

	orders := make([]domain.OrderRecord, 0, len(entries))
	for _, e := range entries {
		order, err := dto.MapOrderRecordToDomain(e.Order)
		if err != nil {
			c.log.Warn("skipping unreadable cached order",
				"method", "Cache.List",
				"order_id", e.Order.ID,
				"err", err)
			continue
		}
		orders = append(orders, order)
	}

	return orders
}

// readAll reports ok=false only when the medium is unusable. Missing or
// corrupt data reads as an empty set.
func (c *Cache) readAll(ctx context.Context) ([]StoredOrderEntry, bool) {
	raw, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.log.Warn("order cache read failed", "key", c.key, "err", err)
		return nil, false
	}

	if !found || raw == "" {
		return nil, true
	}

	var entries []StoredOrderEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.log.Debug("discarding corrupt order cache", "key", c.key, "err", err)
		return nil, true
	}

	return entries, true
}

func (c *Cache) writeAll(ctx context.Context, entries []StoredOrderEntry) {
	if entries == nil {
		entries = []StoredOrderEntry{}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		c.log.Error("order cache encode failed", "key", c.key, "err", err)
		return
	}

	err = c.store.Set(ctx, c.key, string(raw))
	switch {
	case err == nil:
	case errors.Is(err, port.ErrQuotaExceeded):
		c.log.Warn("order cache over quota, clearing", "key", c.key)
		if err := c.store.Remove(ctx, c.key); err != nil {
			c.log.Warn("order cache clear failed", "key", c.key, "err", err)
		}
	default:
		c.log.Warn("order cache write failed", "key", c.key, "err", err)
	}
}

func removeExpired(entries []StoredOrderEntry, now int64) []StoredOrderEntry {
	return lo.Filter(entries, func(e StoredOrderEntry, _ int) bool {
		return e.ExpiresAt > now
	})
}

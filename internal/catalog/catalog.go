package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ProductGetter fetches one product from the remote catalog.
type ProductGetter interface {
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
}

// Cache keeps recently fetched products so that add-to-cart does not hit
// the remote catalog for every request. Concurrent misses for the same
// product collapse into one upstream call.
type Cache struct {
	upstream ProductGetter
	ttl      time.Duration
	sfg      singleflight.Group

	mu       sync.RWMutex
	products map[int64]cachedProduct
}

type cachedProduct struct {
	product   domain.Product
	expiresAt time.Time
}

func NewCache(upstream ProductGetter) *Cache {
	return &Cache{
		upstream: upstream,
		ttl:      15 * time.Minute,
		products: make(map[int64]cachedProduct),
	}
}

func (c *Cache) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	c.mu.RLock()
	entry, ok := c.products[id]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.product, nil
	}

	v, err, _ := c.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		product, err := c.upstream.GetProduct(ctx, id)
		if err != nil {
			return domain.Product{}, err
		}

		c.mu.Lock()
		c.products[id] = cachedProduct{product: product, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()

		return product, nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return v.(domain.Product), nil
}

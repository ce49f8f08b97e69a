package movie

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultCacheTTL = 6 * time.Hour

// FactsCache stores movie details between requests.
type FactsCache interface {
	Get(ctx context.Context, id int) (*Facts, error)
	Set(ctx context.Context, facts Facts) error
}

// Cache keeps movie details in Redis so repeated extra-question requests for
// the same movie skip the provider.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ FactsCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(id int) string {
	return "movie:facts:" + strconv.Itoa(id)
}

func (c *Cache) Get(ctx context.Context, id int) (*Facts, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var facts Facts
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, err
	}
	return &facts, nil
}

func (c *Cache) Set(ctx context.Context, facts Facts) error {
	data, err := json.Marshal(facts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(facts.ID), data, c.ttl).Err()
}

// CachedProvider serves Details from a FactsCache before asking next.
// PopularMovie is random by nature and always goes upstream.
type CachedProvider struct {
	next   Provider
	cache  FactsCache
	logger zerolog.Logger
}

var _ Provider = (*CachedProvider)(nil)

func NewCachedProvider(next Provider, cache FactsCache, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		cache:  cache,
		logger: logger.With().Str("component", "movie_cache").Logger(),
	}
}

func (p *CachedProvider) PopularMovie(ctx context.Context) (Facts, error) {
	return p.next.PopularMovie(ctx)
}

func (p *CachedProvider) Details(ctx context.Context, id int) (Facts, error) {
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, id)
		if err != nil {
			p.logger.Warn().Err(err).Int("movie_id", id).Msg("facts cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	facts, err := p.next.Details(ctx, id)
	if err != nil {
		return Facts{}, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, facts); err != nil {
			p.logger.Warn().Err(err).Int("movie_id", id).Msg("facts cache write failed")
		}
	}
	return facts, nil
}

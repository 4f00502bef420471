package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/observability"
)

// CachedGeocoder memoizes successful lookups in redis. Location text repeats
// heavily (users copy city names), and provider calls sit on the request's
// critical path, so hits shave the slowest external dependency.
type CachedGeocoder struct {
	inner Geocoder
	c     *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedGeocoder(inner Geocoder, addr, password string, ttl time.Duration, log zerolog.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		inner: inner,
		c:     redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		ttl:   ttl,
		log:   log,
	}
}

// NewCachedGeocoderWithClient is used by tests to inject a miniredis-backed client.
func NewCachedGeocoderWithClient(inner Geocoder, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, c: client, ttl: ttl, log: log}
}

func (g *CachedGeocoder) Forward(ctx context.Context, query string) (*Result, error) {
	key := cacheKey(query)

	if data, err := g.c.Get(ctx, key).Bytes(); err == nil {
		var cached Result
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			observability.ObserveCache("geocode", "hit")
			return &cached, nil
		}
	} else if err != redis.Nil {
		// Redis being down must not break geocoding.
		g.log.Warn().Err(err).Msg("geocode cache read failed")
	} else {
		observability.ObserveCache("geocode", "miss")
	}

	result, err := g.inner.Forward(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(result); jsonErr == nil {
		if err := g.c.Set(ctx, key, data, g.ttl).Err(); err != nil {
			g.log.Warn().Err(err).Msg("geocode cache write failed")
		} else {
			observability.ObserveCache("geocode", "set")
		}
	}
	return result, nil
}

func cacheKey(query string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

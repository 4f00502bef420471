package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/DanielPodolsky/YelpCamp/internal/observability"
)

type Client struct {
	base string
	key  string
	hc   *http.Client
	rl   *rate.Limiter
}

func NewClient(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("geocode: API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		hc:   &http.Client{Timeout: 15 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// featureCollection mirrors the GeoJSON shape of the provider response. Only
// the first feature is consumed.
type featureCollection struct {
	Features []struct {
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		PlaceName string `json:"place_name"`
	} `json:"features"`
}

func (c *Client) Forward(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoResult
	}

	endpoint := fmt.Sprintf("%s/geocoding/%s.json?key=%s&limit=1",
		c.base, url.PathEscape(query), url.QueryEscape(c.key))

	var fc featureCollection
	if err := c.get(ctx, endpoint, &fc); err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, ErrNoResult
	}
	first := fc.Features[0]
	if len(first.Geometry.Coordinates) < 2 {
		return nil, fmt.Errorf("geocode: malformed geometry in response")
	}
	return &Result{
		Longitude:   first.Geometry.Coordinates[0],
		Latitude:    first.Geometry.Coordinates[1],
		DisplayName: first.PlaceName,
	}, nil
}

// get performs a GET with client-side rate limiting, retries on 429 and
// transient 5xx (honoring Retry-After), and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < 4; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "yelpcamp/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if attempt < 3 && sleepCtx(ctx, backoff(attempt)) {
				continue
			}
			return lastErr
		}
		observability.ObserveGeocode(resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			closeBody(resp)
			if err != nil {
				return fmt.Errorf("geocode: decode response: %w", err)
			}
			return nil
		case http.StatusUnauthorized, http.StatusForbidden:
			closeBody(resp)
			return ErrUnauthorized
		case http.StatusTooManyRequests:
			wait := retryAfter(resp, backoff(attempt))
			closeBody(resp)
			lastErr = fmt.Errorf("geocode: rate limited (429)")
			if attempt < 3 && sleepCtx(ctx, wait) {
				continue
			}
			return lastErr
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			closeBody(resp)
			lastErr = fmt.Errorf("geocode: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode >= 500 && attempt < 3 && sleepCtx(ctx, backoff(attempt)) {
				continue
			}
			return lastErr
		}
	}
	return lastErr
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * 250 * time.Millisecond
}

// sleepCtx sleeps for d and reports whether the context is still live.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

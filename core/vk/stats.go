package vk

import (
	"context"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// statsConcurrency caps simultaneous outbound stats calls during batch fetches.
const statsConcurrency = 5

// StatsResult aggregates click statistics for one short link.
// It is computed per request and never cached.
type StatsResult struct {
	TotalViews     int
	ViewsByCountry map[string]int
}

type linkStatsEnvelope struct {
	Response struct {
		Stats []struct {
			Views   int    `json:"views"`
			Country string `json:"country"`
		} `json:"stats"`
	} `json:"response"`
	Error *apiError `json:"error"`
}

// LinkStats fetches the daily-bucketed, country-extended statistics for a
// stats key and folds the buckets into a total plus a per-country breakdown.
// Statistics are best-effort: any failure yields a zero-valued result.
func (c *Client) LinkStats(ctx context.Context, statsKey string) StatsResult {
	result := StatsResult{ViewsByCountry: make(map[string]int)}

	params := url.Values{}
	params.Set("key", statsKey)
	params.Set("interval", "day")
	params.Set("extended", "1")

	var envelope linkStatsEnvelope
	if err := c.call(ctx, "utils.getLinkStats", params, &envelope); err != nil {
		return result
	}
	if envelope.Error != nil {
		c.log.Warn("vk api rejected stats request",
			zap.Int("code", envelope.Error.Code),
			zap.String("message", envelope.Error.Message),
		)
		return result
	}

	for _, bucket := range envelope.Response.Stats {
		result.TotalViews += bucket.Views
		if bucket.Country != "" && bucket.Views > 0 {
			result.ViewsByCountry[bucket.Country] += bucket.Views
		}
	}
	return result
}

// BatchStats fetches statistics for several keys concurrently, never keeping
// more than statsConcurrency calls in flight. Results keep the order of keys.
func (c *Client) BatchStats(ctx context.Context, statsKeys []string) []StatsResult {
	results := make([]StatsResult, len(statsKeys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(statsConcurrency)
	for i, key := range statsKeys {
		i, key := i, key
		g.Go(func() error {
			results[i] = c.LinkStats(ctx, key)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

type countryEnvelope struct {
	Response []struct {
		Name string `json:"name"`
	} `json:"response"`
	Error *apiError `json:"error"`
}

// CountryName resolves a country identifier to a display name. Lookups are
// best-effort; an unresolvable country falls back to the raw identifier.
func (c *Client) CountryName(ctx context.Context, countryID string) string {
	params := url.Values{}
	params.Set("country_ids", countryID)

	var envelope countryEnvelope
	if err := c.call(ctx, "database.getCountriesById", params, &envelope); err != nil {
		return countryID
	}
	if envelope.Error != nil || len(envelope.Response) == 0 || envelope.Response[0].Name == "" {
		return countryID
	}
	return envelope.Response[0].Name
}

// CountryNames resolves the distinct countries present in a stats result.
func (c *Client) CountryNames(ctx context.Context, stats StatsResult) map[string]string {
	names := make(map[string]string, len(stats.ViewsByCountry))
	for id := range stats.ViewsByCountry {
		names[id] = c.CountryName(ctx, id)
	}
	return names
}

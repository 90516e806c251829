package coingecko

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/internal/service/ratelimit"
	xhttp "CoinSight/pkg/http"
	"CoinSight/pkg/logger"
)

const rateKey = "coingecko"

// Client implements a PriceSource backed by the CoinGecko market_chart API.
type Client struct {
	baseURL    string
	apiKey     string
	vsCurrency string
	http       *xhttp.Client
	limiter    *ratelimit.Limiter
	logger     *logger.Logger

	// free tier allows roughly 30 calls/min
	rateCapacity float64
	ratePerSec   float64
}

// Option configures Client.
type Option func(*Client)

// WithAPIKey sets the API key sent in the x-cg-pro-api-key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithVSCurrency sets the quote currency.
func WithVSCurrency(cur string) Option {
	return func(c *Client) {
		if cur != "" {
			c.vsCurrency = cur
		}
	}
}

// WithHTTPTimeout sets the request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = xhttp.NewClient(xhttp.WithTimeout(d)) }
}

// WithRate overrides the token-bucket capacity and refill rate.
func WithRate(capacity, perSec float64) Option {
	return func(c *Client) {
		c.rateCapacity = capacity
		c.ratePerSec = perSec
	}
}

// New creates a CoinGecko price source.
func New(baseURL string, lgr *logger.Logger, opts ...Option) drepo.PriceSource {
	c := &Client{
		baseURL:      baseURL,
		vsCurrency:   "usd",
		http:         xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
		limiter:      ratelimit.New(),
		logger:       lgr,
		rateCapacity: 30,
		ratePerSec:   0.5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// marketChart mirrors the CoinGecko /coins/{id}/market_chart response:
// parallel [timestamp_ms, value] arrays.
type marketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// FetchHistory fetches up to days of daily history for one instrument.
// The result is deduplicated by timestamp and sorted ascending.
func (c *Client) FetchHistory(ctx context.Context, instrumentID string, days int) ([]models.PricePoint, error) {
	if err := c.limiter.Wait(ctx, rateKey, c.rateCapacity, c.ratePerSec); err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["x-cg-pro-api-key"] = c.apiKey
	}

	var chart marketChart
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, instrumentID),
		Headers: headers,
		QueryParams: map[string][]string{
			"vs_currency": {c.vsCurrency},
			"days":        {strconv.Itoa(days)},
			"interval":    {"daily"},
		},
	}, &chart)
	if err != nil {
		return nil, fmt.Errorf("coingecko market_chart %s: %w", instrumentID, wrapUpstream(err))
	}

	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("coingecko market_chart %s: %w", instrumentID, models.ErrUpstreamData)
	}

	caps := indexByTimestamp(chart.MarketCaps)
	vols := indexByTimestamp(chart.TotalVolumes)

	seen := make(map[int64]bool, len(chart.Prices))
	points := make([]models.PricePoint, 0, len(chart.Prices))
	for _, pv := range chart.Prices {
		ms := int64(pv[0])
		if seen[ms] {
			continue
		}
		seen[ms] = true
		points = append(points, models.PricePoint{
			InstrumentID: instrumentID,
			Timestamp:    time.UnixMilli(ms).UTC(),
			Price:        pv[1],
			MarketCap:    caps[ms],
			Volume:       vols[ms],
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	c.logger.Debug("coingecko history fetched",
		logger.String("instrument", instrumentID),
		logger.Int("days", days),
		logger.Int("points", len(points)))

	return points, nil
}

func indexByTimestamp(pairs [][2]float64) map[int64]float64 {
	m := make(map[int64]float64, len(pairs))
	for _, p := range pairs {
		m[int64(p[0])] = p[1]
	}
	return m
}

func wrapUpstream(err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: status %d", models.ErrUpstreamData, se.Code)
	}
	return err
}

// Package pricefeed provides a client for the hosted price snapshot feed
package pricefeed

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

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/models"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// The feed caps page size; larger product batches are split.
	maxProductsPerRequest = 100
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the PriceFeedClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// NewClient creates a new price feed client
func NewClient(cfg common.FeedConfig, logger *common.Logger) *Client {
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// snapshotRecord is the feed's wire format for one price observation.
type snapshotRecord struct {
	ProductID  string      `json:"product_id"`
	RecordedAt string      `json:"recorded_at"`
	Price      flexFloat64 `json:"usd_price"`
}

// GetPriceSnapshots returns every snapshot recorded at or after from for the
// given products. Results are raw: unordered, possibly duplicated per day,
// possibly carrying non-positive prices. Normalization is the caller's job.
func (c *Client) GetPriceSnapshots(ctx context.Context, productIDs []string, from time.Time) ([]models.PriceSnapshot, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	snapshots := make([]models.PriceSnapshot, 0, len(productIDs))
	for start := 0; start < len(productIDs); start += maxProductsPerRequest {
		end := start + maxProductsPerRequest
		if end > len(productIDs) {
			end = len(productIDs)
		}

		batch, err := c.fetchBatch(ctx, productIDs[start:end], from)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, batch...)
	}

	c.logger.Debug().Int("products", len(productIDs)).Int("snapshots", len(snapshots)).Msg("Price snapshots fetched")
	return snapshots, nil
}

func (c *Client) fetchBatch(ctx context.Context, productIDs []string, from time.Time) ([]models.PriceSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("products", strings.Join(productIDs, ","))
	if !from.IsZero() {
		params.Set("from", from.UTC().Format("2006-01-02"))
	}
	if c.apiKey != "" {
		params.Set("api_token", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s/price-history?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("price feed returned %d: %s", resp.StatusCode, string(body))
	}

	var records []snapshotRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}

	snapshots := make([]models.PriceSnapshot, 0, len(records))
	for _, rec := range records {
		recordedAt, ok := ParseFeedTimestamp(rec.RecordedAt)
		if !ok {
			c.logger.Warn().Str("product", rec.ProductID).Str("recorded_at", rec.RecordedAt).Msg("Skipping snapshot with unparseable timestamp")
			continue
		}
		snapshots = append(snapshots, models.PriceSnapshot{
			ProductID:  rec.ProductID,
			RecordedAt: recordedAt,
			Price:      float64(rec.Price),
		})
	}

	return snapshots, nil
}

// ParseFeedTimestamp accepts the timestamp shapes the feed has been seen to
// produce: RFC3339 with a zone, naive ISO timestamps (assumed UTC),
// date-only strings, and epoch seconds.
func ParseFeedTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	// Naive timestamps are UTC by feed convention.
	for _, layout := range []string{"2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC(), true
	}

	return time.Time{}, false
}

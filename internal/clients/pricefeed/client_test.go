package pricefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/common"
)

func TestFlexFloat64(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"number", `12.5`, 12.5},
		{"string number", `"12.5"`, 12.5},
		{"empty string", `""`, 0},
		{"not available", `"N/A"`, 0},
		{"garbage string", `"abc"`, 0},
		{"integer", `40`, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexFloat64
			require.NoError(t, json.Unmarshal([]byte(tt.input), &f))
			assert.Equal(t, tt.want, float64(f))
		})
	}
}

func TestParseFeedTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"rfc3339 zulu", "2026-03-01T12:30:00Z", time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"rfc3339 offset", "2026-03-01T08:30:00-04:00", time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"naive iso", "2026-03-01T12:30:00", time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"naive with micros", "2026-03-01T12:30:00.123456", time.Date(2026, 3, 1, 12, 30, 0, 123456000, time.UTC), true},
		{"space separated", "2026-03-01 12:30:00", time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), true},
		{"date only", "2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"epoch seconds", "1772368200", time.Unix(1772368200, 0).UTC(), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFeedTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetPriceSnapshots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price-history", r.URL.Path)
		assert.Equal(t, "p1,p2", r.URL.Query().Get("products"))
		assert.Equal(t, "2026-02-01", r.URL.Query().Get("from"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"product_id": "p1", "recorded_at": "2026-02-02T04:00:00Z", "usd_price": 129.99},
			{"product_id": "p2", "recorded_at": "2026-02-02", "usd_price": "84.50"},
			{"product_id": "p1", "recorded_at": "not-a-time", "usd_price": 10}
		]`))
	}))
	defer server.Close()

	cfg := common.FeedConfig{BaseURL: server.URL, APIKey: "test-key", RateLimit: 10}
	client := NewClient(cfg, common.NewSilentLogger())

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	snapshots, err := client.GetPriceSnapshots(context.Background(), []string{"p1", "p2"}, from)
	require.NoError(t, err)

	// The unparseable timestamp is skipped, not fatal.
	require.Len(t, snapshots, 2)
	assert.Equal(t, "p1", snapshots[0].ProductID)
	assert.Equal(t, 129.99, snapshots[0].Price)
	assert.Equal(t, 84.50, snapshots[1].Price)
}

func TestGetPriceSnapshotsEmptyInput(t *testing.T) {
	client := NewClient(common.FeedConfig{BaseURL: "http://unused"}, common.NewSilentLogger())

	snapshots, err := client.GetPriceSnapshots(context.Background(), nil, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestGetPriceSnapshotsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(common.FeedConfig{BaseURL: server.URL, RateLimit: 10}, common.NewSilentLogger())

	_, err := client.GetPriceSnapshots(context.Background(), []string{"p1"}, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

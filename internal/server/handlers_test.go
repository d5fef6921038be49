package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardfolio/cardfolio/internal/app"
	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/models"
	"github.com/cardfolio/cardfolio/internal/services/ranking"
	"github.com/cardfolio/cardfolio/internal/services/valuation"
	"github.com/cardfolio/cardfolio/internal/storage"
)

type stubFeed struct {
	snapshots []models.PriceSnapshot
}

func (f *stubFeed) GetPriceSnapshots(_ context.Context, _ []string, _ time.Time) ([]models.PriceSnapshot, error) {
	return f.snapshots, nil
}

func newTestServer(t *testing.T) (*Server, *app.App) {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Storage.Path = t.TempDir()
	config.Rates.Enabled = false
	logger := common.NewSilentLogger()

	manager, err := storage.NewManager(logger, config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	a := &app.App{
		Config:           config,
		Logger:           logger,
		Storage:          manager,
		RankingService:   ranking.NewService(manager, &stubFeed{}, nil, config, logger),
		ValuationService: valuation.NewService(manager, logger),
		StartupTime:      time.Now(),
	}

	return NewServer(a), a
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestVersionEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp["version"])
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodDelete, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodGet)
}

func TestRankingsEmpty(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/sets/rankings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 0, resp.Count)
}

func seedRankedSets(t *testing.T, a *app.App) {
	t.Helper()
	ctx := context.Background()
	end := models.Day(time.Now().UTC())

	for i := 0; i < 2; i++ {
		setID := fmt.Sprintf("set-%d", i)
		require.NoError(t, a.Storage.CatalogStore().SaveSet(ctx, &models.Set{
			ID: setID, Code: fmt.Sprintf("S%d", i), Name: fmt.Sprintf("Set %d", i),
		}))
		productID := setID + "-p0"
		require.NoError(t, a.Storage.CatalogStore().SaveProduct(ctx, &models.Product{
			ID: productID, Name: "Booster Box", SetID: setID,
		}))

		points := make([]models.PricePoint, 60)
		for j := range points {
			drift := float64(j)
			if i == 1 {
				drift = -drift
			}
			points[j] = models.PricePoint{Day: end.AddDate(0, 0, j-59), Price: 200 + drift}
		}
		require.NoError(t, a.Storage.PriceStore().SaveSeries(ctx, &models.PriceSeries{
			ProductID: productID, Points: points, UpdatedAt: time.Now().UTC(),
		}))
	}

	_, err := a.RankingService.ComputeRankings(ctx, time.Now().UTC())
	require.NoError(t, err)
}

func TestRankingsAndSetMetrics(t *testing.T) {
	s, a := newTestServer(t)
	seedRankedSets(t, a)

	rec := doRequest(t, s, http.MethodGet, "/api/sets/rankings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count    int                          `json:"count"`
		Rankings []*models.SetMetricsSnapshot `json:"rankings"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "S0", resp.Rankings[0].SetCode)
	assert.Equal(t, 1, resp.Rankings[0].Rank)

	rec = doRequest(t, s, http.MethodGet, "/api/sets/S1/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.SetMetricsSnapshot
	decodeBody(t, rec, &snap)
	assert.Equal(t, 2, snap.Rank)
}

func TestRankingsTimeframeValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/sets/rankings?timeframe=365d", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "365d", resp["timeframe"])

	rec = doRequest(t, s, http.MethodGet, "/api/sets/rankings?timeframe=7d", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetMetricsNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/sets/NOPE/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/refresh?force=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	assert.Equal(t, true, resp["force"])
}

func TestPortfolioLifecycle(t *testing.T) {
	s, a := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, a.Storage.CatalogStore().SaveSet(ctx, &models.Set{ID: "set-1", Code: "BS", Name: "Base Set"}))
	require.NoError(t, a.Storage.CatalogStore().SaveProduct(ctx, &models.Product{ID: "p1", Name: "Booster Box", SetID: "set-1"}))

	end := models.Day(time.Now().UTC())
	require.NoError(t, a.Storage.PriceStore().SaveSeries(ctx, &models.PriceSeries{
		ProductID: "p1",
		Points: []models.PricePoint{
			{Day: end.AddDate(0, 0, -3), Price: 100},
			{Day: end, Price: 120},
		},
	}))

	// Create
	rec := doRequest(t, s, http.MethodPost, "/api/portfolios", map[string]string{"name": "Main"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var portfolio models.Portfolio
	decodeBody(t, rec, &portfolio)
	require.NotEmpty(t, portfolio.ID)

	// Get
	rec = doRequest(t, s, http.MethodGet, "/api/portfolios/"+portfolio.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Add lot
	acquired := end.AddDate(0, 0, -3).Format("2006-01-02")
	rec = doRequest(t, s, http.MethodPost, "/api/portfolios/"+portfolio.ID+"/lots", map[string]interface{}{
		"product_id": "p1", "quantity": 2, "acquired_on": acquired,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// List lots
	rec = doRequest(t, s, http.MethodGet, "/api/portfolios/"+portfolio.ID+"/lots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lotsResp struct {
		Count int `json:"count"`
	}
	decodeBody(t, rec, &lotsResp)
	assert.Equal(t, 1, lotsResp.Count)

	// Valuation
	rec = doRequest(t, s, http.MethodGet, "/api/portfolios/"+portfolio.ID+"/valuation", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var valResp struct {
		Currency string                  `json:"currency"`
		Days     int                     `json:"days"`
		Series   []models.ValuationPoint `json:"series"`
	}
	decodeBody(t, rec, &valResp)
	assert.Equal(t, "USD", valResp.Currency)
	require.Equal(t, 4, valResp.Days)
	assert.Equal(t, 200.0, valResp.Series[0].Value)
	assert.Equal(t, 240.0, valResp.Series[3].Value)

	// Chart
	rec = doRequest(t, s, http.MethodGet, "/api/portfolios/"+portfolio.ID+"/valuation/chart.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestPortfolioNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/portfolios/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/portfolios/missing/valuation", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePortfolioRequiresName(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/portfolios", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddLotValidation(t *testing.T) {
	s, a := newTestServer(t)

	portfolio := &models.Portfolio{Name: "Main"}
	require.NoError(t, a.Storage.PortfolioStore().SavePortfolio(context.Background(), portfolio))

	t.Run("bad date", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/portfolios/"+portfolio.ID+"/lots", map[string]interface{}{
			"product_id": "p1", "quantity": 1, "acquired_on": "03/01/2026",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/portfolios/"+portfolio.ID+"/lots", map[string]interface{}{
			"product_id": "ghost", "quantity": 1, "acquired_on": "2026-03-01",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestValuationBadQueryParams(t *testing.T) {
	s, a := newTestServer(t)

	portfolio := &models.Portfolio{Name: "Main"}
	require.NoError(t, a.Storage.PortfolioStore().SavePortfolio(context.Background(), portfolio))

	rec := doRequest(t, s, http.MethodGet, "/api/portfolios/"+portfolio.ID+"/valuation?start=March", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/portfolios/"+portfolio.ID+"/valuation?currency=EUR", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", strings.NewReader(""))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

package server

import (
	"net/http"
	"time"

	"github.com/cardfolio/cardfolio/internal/interfaces"
	"github.com/cardfolio/cardfolio/internal/models"
)

// handlePortfolios handles GET and POST /api/portfolios.
func (s *Server) handlePortfolios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		portfolios, err := s.app.Storage.PortfolioStore().ListPortfolios(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to list portfolios: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"count":      len(portfolios),
			"portfolios": portfolios,
		})

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "Portfolio name is required")
			return
		}

		portfolio := &models.Portfolio{Name: req.Name}
		if err := s.app.Storage.PortfolioStore().SavePortfolio(r.Context(), portfolio); err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to save portfolio: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, portfolio)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePortfolioGet handles GET /api/portfolios/{id}.
func (s *Server) handlePortfolioGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/portfolios/", "")
	portfolio, err := s.app.Storage.PortfolioStore().GetPortfolio(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, "Portfolio '"+id+"' not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load portfolio: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, portfolio)
}

// handleLots handles GET and POST /api/portfolios/{id}/lots.
func (s *Server) handleLots(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/portfolios/", "/lots")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Portfolio id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		lots, err := s.app.ValuationService.ListLots(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to list lots: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"count": len(lots),
			"lots":  lots,
		})

	case http.MethodPost:
		var req struct {
			ProductID  string `json:"product_id"`
			Quantity   int64  `json:"quantity"`
			AcquiredOn string `json:"acquired_on"` // YYYY-MM-DD
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		acquired, err := time.ParseInLocation("2006-01-02", req.AcquiredOn, time.UTC)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "acquired_on must be YYYY-MM-DD")
			return
		}

		lot := &models.Lot{
			PortfolioID: id,
			ProductID:   req.ProductID,
			Quantity:    req.Quantity,
			AcquiredOn:  acquired,
		}
		if err := s.app.ValuationService.AddLot(r.Context(), lot); err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, lot)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// valuationOptions parses currency/start/end query parameters.
func valuationOptions(r *http.Request) (interfaces.ValuationOptions, error) {
	opts := interfaces.ValuationOptions{
		Currency: r.URL.Query().Get("currency"),
	}

	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return opts, err
		}
		opts.Start = start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return opts, err
		}
		opts.End = end
	}
	return opts, nil
}

// handleValuation handles GET /api/portfolios/{id}/valuation.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/portfolios/", "/valuation")
	opts, err := valuationOptions(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "start and end must be YYYY-MM-DD")
		return
	}

	series, err := s.app.ValuationService.GetValuation(r.Context(), id, opts)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, "Portfolio '"+id+"' not found")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	currency := opts.Currency
	if currency == "" {
		currency = "USD"
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio_id": id,
		"currency":     currency,
		"days":         len(series),
		"series":       series,
	})
}

// handleValuationChart handles GET /api/portfolios/{id}/valuation/chart.png.
func (s *Server) handleValuationChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/portfolios/", "/valuation/chart.png")
	opts, err := valuationOptions(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "start and end must be YYYY-MM-DD")
		return
	}

	png, err := s.app.ValuationService.RenderChart(r.Context(), id, opts)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, "Portfolio '"+id+"' not found")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

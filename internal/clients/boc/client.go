// Package boc fetches the USD to CAD noon rate from the Bank of Canada's
// published daily exchange rate table.
package boc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/cardfolio/cardfolio/internal/common"
	"github.com/cardfolio/cardfolio/internal/models"
)

const DefaultRatesURL = "https://www.bankofcanada.ca/rates/exchange/daily-exchange-rates/"

// Client scrapes the Bank of Canada daily exchange rate page.
type Client struct {
	url    string
	logger *common.Logger
}

// NewClient creates a new Bank of Canada rate client.
func NewClient(cfg common.RatesConfig, logger *common.Logger) *Client {
	url := cfg.URL
	if url == "" {
		url = DefaultRatesURL
	}
	return &Client{url: url, logger: logger}
}

// FetchLatestRate returns the most recent published USD to CAD rate. The
// page's daily table lists one column per business day, newest last; cells
// for bank holidays are blank or marked and are skipped.
func (c *Client) FetchLatestRate(ctx context.Context) (*models.ExchangeRate, error) {
	var (
		dates     []time.Time
		rates     []string
		scrapeErr error
	)

	collector := colly.NewCollector(colly.StdlibContext(ctx))

	collector.OnHTML("table#table_daily_1", func(table *colly.HTMLElement) {
		table.ForEach("thead th", func(_ int, th *colly.HTMLElement) {
			text := normalizeHyphens(strings.TrimSpace(th.Text))
			day, err := time.ParseInLocation("2006-01-02", text, time.UTC)
			if err != nil {
				return // the corner header is not a date
			}
			dates = append(dates, day)
		})

		table.ForEach("tbody tr", func(_ int, tr *colly.HTMLElement) {
			label := strings.TrimSpace(tr.ChildText("th"))
			if !strings.EqualFold(label, "US dollar") && !strings.HasPrefix(label, "US dollar") {
				return
			}
			tr.ForEach("td", func(_ int, td *colly.HTMLElement) {
				rates = append(rates, strings.TrimSpace(td.Text))
			})
		})
	})

	collector.OnError(func(resp *colly.Response, err error) {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		scrapeErr = fmt.Errorf("exchange rate page request failed (status %d): %w", status, err)
	})

	if err := collector.Visit(c.url); err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	collector.Wait()

	if scrapeErr != nil {
		return nil, scrapeErr
	}
	if len(rates) == 0 || len(dates) == 0 {
		return nil, fmt.Errorf("exchange rate table had no US dollar data")
	}

	rate, err := latestPublishedRate(dates, rates)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Float64("usd_to_cad", rate.USDToCAD).Time("recorded_at", rate.RecordedAt).Msg("Exchange rate fetched")
	return rate, nil
}

// latestPublishedRate walks the columns newest first and returns the first
// cell that holds an actual rate. Holiday columns carry "Bank holiday" or
// are empty.
func latestPublishedRate(dates []time.Time, cells []string) (*models.ExchangeRate, error) {
	n := len(cells)
	if len(dates) < n {
		n = len(dates)
	}

	for i := n - 1; i >= 0; i-- {
		cell := normalizeHyphens(cells[i])
		if cell == "" || strings.Contains(strings.ToLower(cell), "bank holiday") {
			continue
		}
		value, err := strconv.ParseFloat(cell, 64)
		if err != nil || value <= 0 {
			continue
		}
		return &models.ExchangeRate{USDToCAD: value, RecordedAt: dates[i]}, nil
	}

	return nil, fmt.Errorf("no published rate found in exchange rate table")
}

// normalizeHyphens replaces the unicode dashes the Bank of Canada site
// sometimes emits with plain ASCII hyphens so dates parse.
func normalizeHyphens(s string) string {
	replacer := strings.NewReplacer(
		"‐", "-", // hyphen
		"‑", "-", // non-breaking hyphen
		"‒", "-", // figure dash
		"–", "-", // en dash
		"—", "-", // em dash
	)
	return replacer.Replace(s)
}

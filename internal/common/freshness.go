// Package common provides shared utilities for Cardfolio
package common

import "time"

// Freshness TTLs for data components
const (
	FreshnessPriceSnapshot = 24 * time.Hour     // prices update once per day
	FreshnessExchangeRate  = 24 * time.Hour     // BoC publishes one rate per business day
	FreshnessSetMetrics    = 24 * time.Hour     // recomputed after each price collection
	FreshnessCatalog       = 7 * 24 * time.Hour // set/product metadata changes rarely
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}

// Package models defines data structures for Cardfolio
package models

import "time"

// Set represents a product group (e.g. a trading card expansion). Membership
// and display metadata come from the catalog feed; nothing here is computed.
type Set struct {
	ID          string    `json:"id" badgerhold:"key"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Generation  string    `json:"generation,omitempty"`
	ReleaseDate time.Time `json:"release_date,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product represents a single tracked collectible product.
type Product struct {
	ID          string    `json:"id" badgerhold:"key"`
	Name        string    `json:"name"`
	SetID       string    `json:"set_id" badgerhold:"index"`
	ProductType string    `json:"product_type,omitempty"` // e.g. "booster_box", "etb", "single"
	Variant     string    `json:"variant,omitempty"`      // e.g. "1st Edition", "Unlimited"
	Language    string    `json:"language,omitempty"`
	URL         string    `json:"url,omitempty"` // listing page the feed scrapes
	UpdatedAt   time.Time `json:"updated_at"`
}

package entity

import "time"

// Product mirrors the backend's product record. The front-end never mutates it.
type Product struct {
	ID           string `json:"product_id"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url"`
	CurrentPrice int64  `json:"current_price"`
	URL          string `json:"url"`
	Platform     string `json:"platform"`
}

// PriceHistoryEntry is a single recorded price. The backend returns them newest first.
type PriceHistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Price     int64     `json:"price"`
}

// ComparisonEntry is a price quote for the same product on another platform.
// Price and URL are nil when the platform had no match.
type ComparisonEntry struct {
	Platform string  `json:"platform"`
	Price    *int64  `json:"price"`
	URL      *string `json:"url"`
}

// TrackRequest is the payload for POST /products/track.
type TrackRequest struct {
	URL         string   `json:"url"`
	Email       string   `json:"email,omitempty"`
	TargetPrice *float64 `json:"targetPrice,omitempty"`
}

// WantsAlert reports whether the request carries both alert fields.
func (r TrackRequest) WantsAlert() bool {
	return r.Email != "" && r.TargetPrice != nil
}

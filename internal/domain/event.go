package domain

import (
	"strings"
	"time"
	"unicode"
)

// Event is a purchasable package, not a calendar entry.
type Event struct {
	ID              int64            `json:"id"`
	Slug            string           `json:"slug"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ImageURL        string           `json:"image_url,omitempty"`
	Location        string           `json:"location"`
	Date            string           `json:"date"`
	Category        string           `json:"category"`
	PriceCents      int64            `json:"price_cents"`
	DeliveryOptions []DeliveryOption `json:"delivery_options"`
	Items           []EventItem      `json:"items,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type DeliveryOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	ETA        string `json:"time"`
}

// EventItem describes package contents. It is informational only.
type EventItem struct {
	ID          int64  `json:"id"`
	EventID     int64  `json:"event_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
	ImageURL    string `json:"image_url,omitempty"`
	Category    string `json:"category,omitempty"`
}

// DefaultDeliveryOptions is returned for events stored without options.
func DefaultDeliveryOptions() []DeliveryOption {
	return []DeliveryOption{
		{ID: "delivery", Name: "Local Delivery", PriceCents: 1999, ETA: "2-3 days"},
		{ID: "express", Name: "Express Delivery", PriceCents: 3499, ETA: "24 hours"},
		{ID: "pickup", Name: "Self Pickup", PriceCents: 0, ETA: "Same day"},
	}
}

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

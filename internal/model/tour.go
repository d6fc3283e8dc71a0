package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Tour is a bookable excursion product template as stored in the
// `tours` table.  List-valued fields (Images, Includes, Excludes) are
// stored as JSON arrays in text columns; ParseStringList handles the
// legacy comma-separated form still found in imported data.
//
// Fields:
//  ID                – primary key identifier.
//  Title             – display title of the tour.
//  Slug              – unique URL-safe identifier derived from the title.
//  Description       – long description text.
//  PriceAdultCents   – base price per adult, in euro cents.
//  PriceChildCents   – price per child, in euro cents.
//  Language          – language the tour is guided in (e.g. "it", "en").
//  Itinerary         – free-form itinerary text.
//  DurationValue     – numeric duration value.
//  DurationUnit      – unit for DurationValue (e.g. "hours", "days").
//  CoverImage        – URL of the cover image.
//  Images            – gallery image URLs.
//  Includes          – what the price includes.
//  Excludes          – what the price does not include.
//  Terms             – terms and conditions text.
//  MaxSeats          – default capacity used when creating dates.
//  Difficulty        – difficulty rating (e.g. "easy", "medium", "hard").
//  GPXURL            – optional GPX track URL.
//  Lat, Lng          – optional meeting-point coordinates.
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type Tour struct {
	ID              uint64    // tours.id
	Title           string    // tours.title
	Slug            string    // tours.slug
	Description     string    // tours.description
	PriceAdultCents uint32    // tours.price_adult_cents
	PriceChildCents uint32    // tours.price_child_cents
	Language        string    // tours.language
	Itinerary       string    // tours.itinerary
	DurationValue   uint32    // tours.duration_value
	DurationUnit    string    // tours.duration_unit
	CoverImage      string    // tours.cover_image
	Images          []string  // tours.images (JSON column)
	Includes        []string  // tours.includes (JSON column)
	Excludes        []string  // tours.excludes (JSON column)
	Terms           string    // tours.terms
	MaxSeats        uint32    // tours.max_seats
	Difficulty      string    // tours.difficulty
	GPXURL          *string   // tours.gpx_url (nullable)
	Lat             *float64  // tours.lat (nullable)
	Lng             *float64  // tours.lng (nullable)
	CreatedAt       time.Time // tours.created_at
	UpdatedAt       time.Time // tours.updated_at
}

// ParseStringList decodes a list field coming either as a JSON array
// ("[\"a\",\"b\"]") or as a comma-separated string ("a, b").  Imported
// tours predate the JSON encoding, so both forms must be accepted.
// Empty input yields an empty, non-nil slice.
func ParseStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s := strings.TrimSpace(it); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	// fallback: comma-separated
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EncodeStringList serializes a list field for storage as a JSON array.
// A nil slice encodes as "[]" so the column never holds SQL NULL.
func EncodeStringList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

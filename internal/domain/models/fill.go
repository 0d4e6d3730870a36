package models

import "time"

// VenueHyperliquid is the only venue fills are pulled from.
const VenueHyperliquid = "Hyperliquid"

// RawFill is one fill row as the venue returned it. Keys are the venue's own
// field names; numbers are json.Number so magnitude and precision survive.
type RawFill map[string]any

// Fill is a raw fill after field names have been mapped to canonical ones.
type Fill struct {
	Asset     string
	PnL       any // number, numeric string, nil
	Timestamp any // epoch in an unknown unit
	Venue     string
}

// EnrichedFill is a Fill tagged with its calendar date and astro labels.
// Date is nil when the timestamp could not be parsed; Sun and Moon are empty
// in that case only.
type EnrichedFill struct {
	Fill
	Date     *time.Time
	Sun      string
	Moon     string
	PnLValue float64
}

// HasDate reports whether the row carries a usable date.
func (f EnrichedFill) HasDate() bool { return f.Date != nil }

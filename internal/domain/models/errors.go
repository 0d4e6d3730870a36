package models

import "errors"

var (
	// ErrFetch marks a network or remote failure while pulling fills.
	ErrFetch = errors.New("fetch failed")
	// ErrSchema marks fetched rows without any recognizable timestamp field.
	ErrSchema = errors.New("no timestamp field in fills")
	// ErrNotFetched is returned when enrichment is requested before any fetch.
	ErrNotFetched = errors.New("first fetch, then enrich")
	// ErrPriceUnavailable marks a price-history response without a USD price.
	ErrPriceUnavailable = errors.New("price unavailable")
)

package models

// PriceQuote is a historical USD price for one coin on one UTC day.
type PriceQuote struct {
	ID     string  `json:"id"`
	TS     int64   `json:"ts"`
	Date   string  `json:"date"`
	USD    float64 `json:"usd"`
	Cached bool    `json:"cached"`
}

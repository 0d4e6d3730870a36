package models

// Requests for dashboard HTTP endpoints.

type FetchRequest struct {
	Address string `json:"address" form:"address" validate:"omitempty,eth_addr"`
}

type EnrichRequest struct {
	AllLabels bool `json:"all_labels" query:"all_labels" form:"all_labels"`
}

type PriceRequest struct {
	ID string `query:"id" json:"id" default:"bitcoin" validate:"required,max=64"`
	TS int64  `query:"ts" json:"ts" validate:"required,gt=0"`
}

package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type OverviewRequest struct {
	Refresh bool `query:"refresh" json:"refresh"`
}

type IndicatorRequest struct {
	Name   string `param:"name" json:"name" validate:"required,oneof=pe_ttm cape buffett margin_yoy concentration_top10 sentiment"`
	Window string `query:"window" json:"window" default:"5y" validate:"oneof=1y 5y max"`
}

type TrendRequest struct {
	Symbol   string `query:"symbol" json:"symbol"`
	Fallback string `query:"fallback" json:"fallback"`
	Window   string `query:"window" json:"window" default:"1y" validate:"oneof=1y 5y max"`
}

type BrowseRequest struct {
	Class  string `query:"class" json:"class" default:"US"`
	Name   string `query:"name" json:"name" validate:"required"`
	Window string `query:"window" json:"window" default:"1y" validate:"oneof=1y 5y max"`
}

package dto

type AnalyticsStatsRequest struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

type DateRangeDTO struct {
	Start string `json:"start" example:"1970-01-01T00:00:00Z"`
	End   string `json:"end" example:"2026-01-15T10:30:00Z"`
}

type ShortLinkTotalsDTO struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type ClickTotalsDTO struct {
	Total     int64 `json:"total"`
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"this_week"`
	ThisMonth int64 `json:"this_month"`
}

type TopLinkDTO struct {
	ID          uint    `json:"id"`
	Code        string  `json:"code"`
	Title       *string `json:"title,omitempty"`
	Destination string  `json:"destination"`
	Clicks      int64   `json:"clicks"`
}

// BreakdownDTO is one bucket of a device or browser distribution
type BreakdownDTO struct {
	Label      string  `json:"label"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type AnalyticsStatsResponse struct {
	DateRange  DateRangeDTO       `json:"date_range"`
	ShortLinks ShortLinkTotalsDTO `json:"shortlinks"`
	Clicks     ClickTotalsDTO     `json:"clicks"`
	TopLinks   []TopLinkDTO       `json:"top_links"`
	Devices    []BreakdownDTO     `json:"devices"`
	Browsers   []BreakdownDTO     `json:"browsers"`
}

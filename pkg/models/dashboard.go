package models

import "github.com/shopspring/decimal"

type ChartPoint struct {
	Period string          `json:"period"`
	Value  decimal.Decimal `json:"value"`
}

type ChartSeries struct {
	Label  string       `json:"label"`
	Points []ChartPoint `json:"points"`
}

// DashboardSummary holds the counters shown above the charts.
type DashboardSummary struct {
	Products   int64           `json:"products"`
	Families   int64           `json:"families"`
	Orders     int64           `json:"orders"`
	PaidOrders int64           `json:"paidOrders"`
	Revenue    decimal.Decimal `json:"revenue"`
}

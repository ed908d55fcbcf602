package models

import "github.com/shopspring/decimal"

// ServiceDetail is one calculation table: material price rows, the labour
// constants of the service and a margin multiplier.
type ServiceDetail[R any, L any] struct {
	Rows   []R             `json:"rows"`
	Labour L               `json:"labour"`
	Margin decimal.Decimal `json:"margin"`
}

// ServiceCalculationConfig is fetched once and replaced table by table.
type ServiceCalculationConfig struct {
	Rebar   ServiceDetail[RebarRow, RebarLabour]     `json:"rebar"`
	Bending ServiceDetail[BendingRow, BendingLabour] `json:"bending"`
	Cutting ServiceDetail[CuttingRow, CuttingLabour] `json:"cutting"`
}

// RebarRow prices one bar diameter per material column.
type RebarRow struct {
	Diameter decimal.Decimal            `json:"diameter"`
	Prices   map[string]decimal.Decimal `json:"prices"`
}

// BendingRow prices one sheet thickness per material column.
type BendingRow struct {
	Thickness decimal.Decimal            `json:"thickness"`
	Prices    map[string]decimal.Decimal `json:"prices"`
}

// CuttingRow prices one sheet thickness per material column.
type CuttingRow struct {
	Thickness decimal.Decimal            `json:"thickness"`
	Prices    map[string]decimal.Decimal `json:"prices"`
}

type RebarLabour struct {
	StartingPrice decimal.Decimal `json:"startingPrice"`
	PricePerKg    decimal.Decimal `json:"pricePerKg"`
}

type CuttingLabour struct {
	StartingPrice decimal.Decimal `json:"startingPrice"`
	PriceInternal decimal.Decimal `json:"priceInternal"`
}

type BendingLabour struct {
	StartingPrice decimal.Decimal `json:"startingPrice"`
	PricePerBend  decimal.Decimal `json:"pricePerBend"`
}

// CalculationPayload replaces a whole table; Type selects which one.
type CalculationPayload[R any, L any] struct {
	Type   ServiceKind     `json:"type"`
	Rows   []R             `json:"rows"`
	Labour L               `json:"labour"`
	Margin decimal.Decimal `json:"margin"`
}

// Price and WithPrice let the calculation editor treat the three row types
// alike. WithPrice never mutates the receiver's map.

func (r RebarRow) Price(column string) (decimal.Decimal, bool) {
	v, ok := r.Prices[column]
	return v, ok
}

func (r RebarRow) WithPrice(column string, v decimal.Decimal) RebarRow {
	r.Prices = withPrice(r.Prices, column, v)
	return r
}

func (r BendingRow) Price(column string) (decimal.Decimal, bool) {
	v, ok := r.Prices[column]
	return v, ok
}

func (r BendingRow) WithPrice(column string, v decimal.Decimal) BendingRow {
	r.Prices = withPrice(r.Prices, column, v)
	return r
}

func (r CuttingRow) Price(column string) (decimal.Decimal, bool) {
	v, ok := r.Prices[column]
	return v, ok
}

func (r CuttingRow) WithPrice(column string, v decimal.Decimal) CuttingRow {
	r.Prices = withPrice(r.Prices, column, v)
	return r
}

func withPrice(prices map[string]decimal.Decimal, column string, v decimal.Decimal) map[string]decimal.Decimal {
	next := make(map[string]decimal.Decimal, len(prices)+1)
	for k, p := range prices {
		next[k] = p
	}
	next[column] = v
	return next
}

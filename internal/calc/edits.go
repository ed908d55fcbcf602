package calc

import "github.com/shopspring/decimal"

// CellEdit is one price change as sent by the calculation screen.
type CellEdit struct {
	Row    int             `json:"row" validate:"gte=0"`
	Column string          `json:"column" validate:"required"`
	Price  decimal.Decimal `json:"price"`
}

// Changes is a batch of edits against one table. Nil fields are left as they
// are.
type Changes[L any] struct {
	Cells  []CellEdit       `json:"cells" validate:"dive"`
	Labour *L               `json:"labour,omitempty"`
	Margin *decimal.Decimal `json:"margin,omitempty"`
}

// CellError reports a rejected cell edit.
type CellError struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Apply runs every change against e and collects rejected cells instead of
// stopping at the first one.
func Apply[R Row[R], L any](e *Editor[R, L], c Changes[L]) ([]CellError, error) {
	var rejected []CellError
	for _, cell := range c.Cells {
		if err := e.SetPrice(cell.Row, cell.Column, cell.Price); err != nil {
			rejected = append(rejected, CellError{Row: cell.Row, Column: cell.Column, Reason: err.Error()})
		}
	}
	if c.Labour != nil {
		e.SetLabour(*c.Labour)
	}
	if c.Margin != nil {
		if err := e.SetMargin(*c.Margin); err != nil {
			return rejected, err
		}
	}
	return rejected, nil
}

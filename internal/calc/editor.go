// Package calc edits service calculation tables: material price rows, labour
// constants and a margin, submitted back as a whole table.
package calc

import (
	"errors"
	"fmt"

	"metaladmin/pkg/models"

	"github.com/shopspring/decimal"
)

var (
	ErrRowOutOfRange  = errors.New("row index out of range")
	ErrNotApplicable  = errors.New("price does not apply to this combination")
	ErrUnknownColumn  = errors.New("column is not part of this table")
	ErrNegativePrice  = errors.New("price cannot be negative")
	ErrNegativeMargin = errors.New("margin cannot be negative")
)

// Row is a priced table row. WithPrice returns a copy and leaves the receiver
// untouched.
type Row[R any] interface {
	Price(column string) (decimal.Decimal, bool)
	WithPrice(column string, v decimal.Decimal) R
}

// Editor holds the working copy of one table next to the snapshot it was
// loaded from. Edits replace rows by index; neither the snapshot nor rows
// handed out earlier are ever mutated.
type Editor[R Row[R], L any] struct {
	kind     models.ServiceKind
	baseline models.ServiceDetail[R, L]
	rows     []R
	labour   L
	margin   decimal.Decimal
	dirty    bool
}

func NewEditor[R Row[R], L any](kind models.ServiceKind, detail models.ServiceDetail[R, L]) *Editor[R, L] {
	e := &Editor[R, L]{kind: kind, baseline: detail}
	e.Reset()
	return e
}

func (e *Editor[R, L]) Kind() models.ServiceKind { return e.kind }

// Rows returns the current rows. The slice is shared; callers must not write
// to it.
func (e *Editor[R, L]) Rows() []R { return e.rows }

func (e *Editor[R, L]) Labour() L { return e.labour }

func (e *Editor[R, L]) Margin() decimal.Decimal { return e.margin }

// Applicable reports whether a cell is editable. Only cells of the loaded
// grid qualify, and a price of exactly zero marks a combination that is not
// offered.
func (e *Editor[R, L]) Applicable(row int, column string) bool {
	if row < 0 || row >= len(e.baseline.Rows) {
		return false
	}
	v, ok := e.baseline.Rows[row].Price(column)
	return ok && !v.IsZero()
}

// SetPrice sets one cell.
func (e *Editor[R, L]) SetPrice(row int, column string, v decimal.Decimal) error {
	if row < 0 || row >= len(e.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if _, ok := e.baseline.Rows[row].Price(column); !ok {
		return fmt.Errorf("%w: row %d, %q", ErrUnknownColumn, row, column)
	}
	if !e.Applicable(row, column) {
		return fmt.Errorf("%w: row %d, %s", ErrNotApplicable, row, column)
	}
	if v.IsNegative() {
		return ErrNegativePrice
	}

	rows := make([]R, len(e.rows))
	copy(rows, e.rows)
	rows[row] = rows[row].WithPrice(column, v)
	e.rows = rows
	e.dirty = true
	return nil
}

func (e *Editor[R, L]) SetLabour(l L) {
	e.labour = l
	e.dirty = true
}

func (e *Editor[R, L]) SetMargin(m decimal.Decimal) error {
	if m.IsNegative() {
		return ErrNegativeMargin
	}
	e.margin = m
	e.dirty = true
	return nil
}

// Dirty reports whether anything changed since the last load or Reset.
func (e *Editor[R, L]) Dirty() bool { return e.dirty }

// Reset discards every edit.
func (e *Editor[R, L]) Reset() {
	e.rows = e.baseline.Rows
	e.labour = e.baseline.Labour
	e.margin = e.baseline.Margin
	e.dirty = false
}

// Detail returns the edited table.
func (e *Editor[R, L]) Detail() models.ServiceDetail[R, L] {
	return models.ServiceDetail[R, L]{Rows: e.rows, Labour: e.labour, Margin: e.margin}
}

// Payload is the whole-table replacement request. Zero cells are sent as
// they are; the not-applicable rule only governs editing.
func (e *Editor[R, L]) Payload() models.CalculationPayload[R, L] {
	rows := e.rows
	if rows == nil {
		rows = []R{}
	}
	return models.CalculationPayload[R, L]{
		Type:   e.kind,
		Rows:   rows,
		Labour: e.labour,
		Margin: e.margin,
	}
}

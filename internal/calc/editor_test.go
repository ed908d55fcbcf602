package calc

import (
	"errors"
	"testing"

	"metaladmin/pkg/models"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bendingDetail() models.ServiceDetail[models.BendingRow, models.BendingLabour] {
	return models.ServiceDetail[models.BendingRow, models.BendingLabour]{
		Rows: []models.BendingRow{
			{Thickness: d("1.5"), Prices: map[string]decimal.Decimal{"steel": d("2.10"), "aluminium": d("3.40")}},
			{Thickness: d("3"), Prices: map[string]decimal.Decimal{"steel": d("4.00"), "aluminium": d("0")}},
		},
		Labour: models.BendingLabour{StartingPrice: d("15"), PricePerBend: d("0.8")},
		Margin: d("1.2"),
	}
}

func TestSetPriceReplacesRowWithoutMutatingSnapshot(t *testing.T) {
	detail := bendingDetail()
	e := NewEditor(models.ServiceBending, detail)
	before := e.Rows()

	if err := e.SetPrice(0, "steel", d("2.50")); err != nil {
		t.Fatalf("SetPrice: %v", err)
	}

	if got, _ := e.Rows()[0].Price("steel"); !got.Equal(d("2.50")) {
		t.Errorf("edited price = %s", got)
	}
	if got, _ := detail.Rows[0].Price("steel"); !got.Equal(d("2.10")) {
		t.Errorf("snapshot mutated: %s", got)
	}
	if got, _ := before[0].Price("steel"); !got.Equal(d("2.10")) {
		t.Errorf("earlier rows slice mutated: %s", got)
	}
	if !e.Dirty() {
		t.Error("editor not dirty after an edit")
	}
}

func TestSetPriceErrors(t *testing.T) {
	tests := []struct {
		name   string
		row    int
		column string
		value  string
		want   error
	}{
		{"negative index", -1, "steel", "1", ErrRowOutOfRange},
		{"past the end", 2, "steel", "1", ErrRowOutOfRange},
		{"zero baseline", 1, "aluminium", "5", ErrNotApplicable},
		{"unknown column", 0, "copper", "5", ErrUnknownColumn},
		{"column with trailing space", 0, "steel ", "5", ErrUnknownColumn},
		{"negative price", 0, "steel", "-1", ErrNegativePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(models.ServiceBending, bendingDetail())
			err := e.SetPrice(tt.row, tt.column, d(tt.value))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if e.Dirty() {
				t.Error("rejected edit marked the editor dirty")
			}
		})
	}
}

func TestApplicable(t *testing.T) {
	e := NewEditor(models.ServiceBending, bendingDetail())

	if !e.Applicable(0, "aluminium") {
		t.Error("priced cell reported as not applicable")
	}
	if e.Applicable(1, "aluminium") {
		t.Error("zero cell reported as applicable")
	}
	if e.Applicable(0, "copper") {
		t.Error("column outside the table reported as applicable")
	}
	if e.Applicable(5, "steel") {
		t.Error("out of range row reported as applicable")
	}
}

func TestApplyRejectsColumnsOutsideTheGrid(t *testing.T) {
	e := NewEditor(models.ServiceBending, bendingDetail())

	rejected, err := Apply(e, Changes[models.BendingLabour]{Cells: []CellEdit{
		{Row: 0, Column: "steel ", Price: d("9")},
		{Row: 0, Column: "steel", Price: d("2.20")},
	}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(rejected) != 1 || rejected[0].Column != "steel " {
		t.Fatalf("rejected = %+v, want the padded column only", rejected)
	}
	for i, row := range e.Payload().Rows {
		if len(row.Prices) != 2 {
			t.Errorf("row %d has columns %v, want steel and aluminium", i, row.Prices)
		}
	}
}

func TestPayloadCarriesDiscriminantAndZeroCells(t *testing.T) {
	e := NewEditor(models.ServiceBending, bendingDetail())
	if err := e.SetMargin(d("1.35")); err != nil {
		t.Fatalf("SetMargin: %v", err)
	}
	e.SetLabour(models.BendingLabour{StartingPrice: d("20"), PricePerBend: d("1")})

	p := e.Payload()
	if p.Type != models.ServiceBending {
		t.Errorf("type = %q", p.Type)
	}
	if len(p.Rows) != 2 {
		t.Fatalf("rows = %d", len(p.Rows))
	}
	if v, ok := p.Rows[1].Price("aluminium"); !ok || !v.IsZero() {
		t.Errorf("zero cell not submitted: %s %v", v, ok)
	}
	if !p.Margin.Equal(d("1.35")) || !p.Labour.StartingPrice.Equal(d("20")) {
		t.Errorf("payload = %+v", p)
	}
}

func TestResetDiscardsEdits(t *testing.T) {
	e := NewEditor(models.ServiceBending, bendingDetail())
	_ = e.SetPrice(0, "steel", d("9"))
	_ = e.SetMargin(d("2"))

	e.Reset()

	if e.Dirty() {
		t.Error("dirty after reset")
	}
	if got, _ := e.Rows()[0].Price("steel"); !got.Equal(d("2.10")) {
		t.Errorf("price after reset = %s", got)
	}
	if !e.Margin().Equal(d("1.2")) {
		t.Errorf("margin after reset = %s", e.Margin())
	}
}

func TestSetMarginRejectsNegative(t *testing.T) {
	e := NewEditor(models.ServiceRebar, models.ServiceDetail[models.RebarRow, models.RebarLabour]{})
	if err := e.SetMargin(d("-0.1")); !errors.Is(err, ErrNegativeMargin) {
		t.Errorf("err = %v", err)
	}
	if p := e.Payload(); p.Rows == nil {
		t.Error("payload rows should be an empty list, not null")
	}
}

func TestApplyCollectsRejectedCells(t *testing.T) {
	e := NewEditor(models.ServiceBending, bendingDetail())
	margin := d("1.5")

	rejected, err := Apply(e, Changes[models.BendingLabour]{
		Cells: []CellEdit{
			{Row: 0, Column: "aluminium", Price: d("3.9")},
			{Row: 1, Column: "aluminium", Price: d("1")},
			{Row: 7, Column: "steel", Price: d("1")},
		},
		Margin: &margin,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(rejected) != 2 {
		t.Fatalf("rejected = %+v, want 2", rejected)
	}
	if rejected[0].Row != 1 || rejected[1].Row != 7 {
		t.Errorf("rejected rows = %d, %d", rejected[0].Row, rejected[1].Row)
	}
	if got, _ := e.Rows()[0].Price("aluminium"); !got.Equal(d("3.9")) {
		t.Errorf("accepted cell = %s", got)
	}
	if !e.Margin().Equal(margin) {
		t.Errorf("margin = %s", e.Margin())
	}
}

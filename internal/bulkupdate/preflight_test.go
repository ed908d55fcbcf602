package bulkupdate

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{"comma", "name,reference,price\nTube,T-1,10.5\nBar,B-2,3.2\n", ','},
		{"semicolon with comma decimals", "name;reference;price\nTube;T-1;10,5\nBar;B-2;3,2\n", ';'},
		{"tab", "name\treference\nTube\tT-1\n", '\t'},
		{"single column", "name\nTube\n", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectDelimiter([]byte(tt.input)); got != tt.want {
				t.Errorf("detectDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreflightCSV(t *testing.T) {
	input := "\xef\xbb\xbfProduct Name;REF;Price\n" +
		"Steel tube;T-40;12,5\n" +
		";;\n" +
		"Angle bar;A-20;7,1\n"

	sheet, err := Preflight(FormatCSV, []byte(input))
	if err != nil {
		t.Fatalf("Preflight: %v", err)
	}
	if sheet.Delimiter != ";" {
		t.Errorf("delimiter = %q", sheet.Delimiter)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	want := Row{Line: 3, ProductName: "Angle bar", Reference: "A-20"}
	if sheet.Rows[1] != want {
		t.Errorf("row = %+v, want %+v", sheet.Rows[1], want)
	}
}

func TestPreflightUnknownColumns(t *testing.T) {
	sheet, err := Preflight(FormatCSV, []byte("a,b\n1,2\n3,4\n"))
	if err != nil {
		t.Fatalf("Preflight: %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0].ProductName != "" || sheet.Rows[0].Reference != "" {
		t.Errorf("unexpected values: %+v", sheet.Rows[0])
	}
}

func TestPreflightHeaderOnly(t *testing.T) {
	sheet, err := Preflight(FormatCSV, []byte("name,reference\n"))
	if err != nil {
		t.Fatalf("Preflight: %v", err)
	}
	if len(sheet.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(sheet.Rows))
	}
}

func buildXLSX(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	for r, row := range rows {
		for c, value := range row {
			cell := excelize.ToAlphaString(c) + strconv.Itoa(r+1)
			f.SetCellValue("Sheet1", cell, value)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("writing xlsx: %v", err)
	}
	return buf.Bytes()
}

func TestPreflightXLSX(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"Reference", "Name", "Price"},
		{"R-8", "Rebar 8mm", "4.2"},
		{"R-10", "Rebar 10mm", "5.9"},
		{"R-12", "Rebar 12mm", "7.3"},
	})

	sheet, err := Preflight(FormatXLSX, data)
	if err != nil {
		t.Fatalf("Preflight: %v", err)
	}
	if len(sheet.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(sheet.Rows))
	}
	if got := sheet.Rows[2]; got.Reference != "R-12" || got.ProductName != "Rebar 12mm" || got.Line != 4 {
		t.Errorf("last row = %+v", got)
	}
}

func TestPreflightCorruptXLSX(t *testing.T) {
	if _, err := Preflight(FormatXLSX, []byte("not a zip")); err == nil {
		t.Error("expected an error for a corrupt workbook")
	}
}

package bulkupdate

import (
	"fmt"
	"strings"

	"metaladmin/pkg/models"
)

// Report is the view model of a finished bulk update: summary tiles, the
// expandable error list and any warnings about the server's counts.
type Report struct {
	Total         int           `json:"total"`
	Success       int           `json:"success"`
	Failed        int           `json:"failed"`
	Skipped       int           `json:"skipped"`
	Consistent    bool          `json:"consistent"`
	AllSucceeded  bool          `json:"allSucceeded"`
	Message       string        `json:"message"`
	Errors        []ReportError `json:"errors"`
	Warnings      []string      `json:"warnings,omitempty"`
	PreflightRows *int          `json:"preflightRows,omitempty"`
}

// ReportError is one entry of the error list. Line is set when the row could
// be located in the uploaded file.
type ReportError struct {
	Line        int    `json:"line,omitempty"`
	ProductName string `json:"productName,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Reason      string `json:"reason"`
}

// Reconcile turns the server report into a Report. The server counts are
// taken as given; rows neither updated nor failed are reported as skipped.
func Reconcile(res models.BulkUpdateResult, sheet *Sheet) Report {
	r := Report{
		Total:        res.TotalRows,
		Success:      res.Success,
		Failed:       res.Failed,
		Consistent:   res.Success+res.Failed <= res.TotalRows,
		AllSucceeded: len(res.Errors) == 0,
		Errors:       make([]ReportError, 0, len(res.Errors)),
	}

	if skipped := res.TotalRows - res.Success - res.Failed; skipped > 0 {
		r.Skipped = skipped
	}
	if !r.Consistent {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"the server reported %d updated and %d failed rows out of %d", res.Success, res.Failed, res.TotalRows))
	}
	if res.Failed != len(res.Errors) {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"the server reported %d failed rows but listed %d errors", res.Failed, len(res.Errors)))
	}

	var lookup rowIndex
	if sheet != nil {
		n := len(sheet.Rows)
		r.PreflightRows = &n
		if n != res.TotalRows {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"the file has %d data rows but the server processed %d", n, res.TotalRows))
		}
		lookup = indexRows(sheet.Rows)
	}

	for _, e := range res.Errors {
		re := ReportError{
			ProductName: e.ProductName,
			Reference:   e.Reference,
			Reason:      e.Reason,
		}
		if re.Reason == "" {
			re.Reason = "rejected without a reason"
		}
		re.Line = lookup.find(e)
		r.Errors = append(r.Errors, re)
	}

	r.Message = strings.TrimSpace(res.Message)
	if r.Message == "" {
		r.Message = summary(r)
	}
	return r
}

func summary(r Report) string {
	switch {
	case r.Total == 0:
		return "The file contained no products to update."
	case r.AllSucceeded && r.Skipped == 0:
		return fmt.Sprintf("All %d products were updated.", r.Success)
	}
	msg := fmt.Sprintf("%d of %d products updated, %d failed", r.Success, r.Total, r.Failed)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(", %d skipped", r.Skipped)
	}
	return msg + "."
}

type rowIndex struct {
	byReference map[string]int
	byName      map[string]int
}

func indexRows(rows []Row) rowIndex {
	idx := rowIndex{
		byReference: make(map[string]int),
		byName:      make(map[string]int),
	}
	for _, row := range rows {
		if k := normalize(row.Reference); k != "" {
			if _, seen := idx.byReference[k]; !seen {
				idx.byReference[k] = row.Line
			}
		}
		if k := normalize(row.ProductName); k != "" {
			if _, seen := idx.byName[k]; !seen {
				idx.byName[k] = row.Line
			}
		}
	}
	return idx
}

// find prefers the reference, which identifies a feature uniquely; names can
// repeat across rows.
func (idx rowIndex) find(e models.BulkUpdateRowError) int {
	if idx.byReference == nil {
		return 0
	}
	if line, ok := idx.byReference[normalize(e.Reference)]; ok {
		return line
	}
	if line, ok := idx.byName[normalize(e.ProductName)]; ok {
		return line
	}
	return 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

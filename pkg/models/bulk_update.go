package models

// BulkUpdateResult is the report returned by the bulk product update
// endpoint. Success+Failed is not guaranteed to equal TotalRows.
type BulkUpdateResult struct {
	TotalRows int                  `json:"totalRows"`
	Success   int                  `json:"success"`
	Failed    int                  `json:"failed"`
	Errors    []BulkUpdateRowError `json:"errors"`
	Message   string               `json:"message,omitempty"`
}

// BulkUpdateRowError describes one rejected spreadsheet row.
type BulkUpdateRowError struct {
	ProductName string `json:"productName,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Reason      string `json:"reason"`
}

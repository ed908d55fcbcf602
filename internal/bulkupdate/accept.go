package bulkupdate

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

// Format is the spreadsheet flavour of an uploaded file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MaxFileSize bounds uploads accepted by the pipeline.
const MaxFileSize = 10 << 20

var (
	ErrUnsupportedFile = errors.New("only .csv and .xlsx spreadsheets are accepted")
	ErrEmptyFile       = errors.New("the selected file is empty")
	ErrFileTooLarge    = errors.New("the selected file is too large")
)

var contentTypes = map[string]Format{
	"text/csv":        FormatCSV,
	"application/csv": FormatCSV,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
}

// msExcel is what Windows browsers send for .csv files and for legacy binary
// .xls workbooks alike.
const msExcel = "application/vnd.ms-excel"

var extensions = map[string]Format{
	".csv":  FormatCSV,
	".xlsx": FormatXLSX,
}

// File is an uploaded spreadsheet held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Detect reports the format of f. The extension wins over the content type.
// Without one, application/vnd.ms-excel is taken as CSV only when the bytes
// are text.
func Detect(f File) (Format, error) {
	if len(f.Data) == 0 {
		return "", ErrEmptyFile
	}
	if len(f.Data) > MaxFileSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	if format, ok := extensions[ext]; ok {
		return format, nil
	}
	if ext == ".xls" {
		return "", ErrUnsupportedFile
	}
	ct := strings.ToLower(strings.TrimSpace(strings.Split(f.ContentType, ";")[0]))
	if format, ok := contentTypes[ct]; ok {
		return format, nil
	}
	if ct == msExcel && !bytes.ContainsRune(f.Data, 0) {
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFile
}

// UploadContentType is the content type sent upstream for format.
func UploadContentType(format Format) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

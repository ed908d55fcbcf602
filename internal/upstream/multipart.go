package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FilePart is a file attached to a multipart request.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Reader      io.Reader
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody builds a body with an optional JSON part named dataField and
// the given files.
func multipartBody(dataField string, data interface{}, files ...FilePart) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if dataField != "" && data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal %s part: %w", dataField, err)
		}
		if err := w.WriteField(dataField, string(encoded)); err != nil {
			return nil, "", fmt.Errorf("failed to write %s part: %w", dataField, err)
		}
	}

	for _, f := range files {
		if f.Reader == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Filename)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create %s part: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", fmt.Errorf("failed to copy %s: %w", f.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

func multipartRequest(method, path, dataField string, data interface{}, files ...FilePart) (request, error) {
	body, contentType, err := multipartBody(dataField, data, files...)
	if err != nil {
		return request{}, err
	}
	return request{method: method, path: path, body: body, contentType: contentType}, nil
}

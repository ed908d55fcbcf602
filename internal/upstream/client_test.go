package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"metaladmin/pkg/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestListProductsQueryAndToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("search") != "chapa" || q.Get("page") != "2" || q.Get("limit") != "20" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"data":[{"id":"p1","name":"Chapa","familyId":"f1","unit":"m2","features":[{"reference":"R1","thickness":2}]}],"total":21}`))
	})

	ctx := WithToken(context.Background(), "tok-1")
	env, err := c.ListProducts(ctx, ListQuery{Search: "chapa", Page: 2, PageSize: 20})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].ID != "p1" {
		t.Fatalf("unexpected data %+v", env.Data)
	}
	if env.Total == nil || *env.Total != 21 {
		t.Errorf("total = %v", env.Total)
	}
	if env.TotalPages != nil {
		t.Errorf("totalPages should be absent, got %d", *env.TotalPages)
	}
}

func TestRequestIDForwarded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Request-ID"); got != "req-42" {
			t.Errorf("X-Request-ID = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := WithRequestID(WithToken(context.Background(), "tok-1"), "req-42")
	if err := c.DeleteFamily(ctx, "f1"); err != nil {
		t.Fatalf("DeleteFamily: %v", err)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Reference already exists"}`))
	})

	_, err := c.GetProduct(context.Background(), "p1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("status = %d", apiErr.Status)
	}
	if got := UserMessage(err, "generic"); got != "Reference already exists" {
		t.Errorf("UserMessage = %q", got)
	}
	if IsRetryable(err) {
		t.Error("409 should not be retryable")
	}
	if StatusOf(err) != http.StatusConflict {
		t.Errorf("StatusOf = %d", StatusOf(err))
	}
}

func TestUserMessageFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})

	err := c.DeleteProduct(context.Background(), "p1")
	if got := UserMessage(err, "Could not delete product"); got != "Could not delete product" {
		t.Errorf("UserMessage = %q", got)
	}
	if !IsRetryable(err) {
		t.Error("502 should be retryable")
	}
	if StatusOf(err) != http.StatusBadGateway {
		t.Errorf("StatusOf = %d", StatusOf(err))
	}
}

func TestTransportErrorIsRetryable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	err := c.DeleteProduct(context.Background(), "p1")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("transport errors should be retryable")
	}
}

func TestBulkUpdateMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/products/bulk-update" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "catalog.csv" || !strings.HasPrefix(string(data), "name,reference") {
			t.Errorf("unexpected upload %q: %q", header.Filename, data)
		}
		if ct := header.Header.Get("Content-Type"); ct != "text/csv" {
			t.Errorf("part content type = %q", ct)
		}
		w.Write([]byte(`{"totalRows":2,"success":1,"failed":1,"errors":[{"productName":"Tile B","reason":"Invalid price"}]}`))
	})

	res, err := c.BulkUpdateProducts(context.Background(), "catalog.csv", "text/csv", strings.NewReader("name,reference\nA,1\nB,2\n"))
	if err != nil {
		t.Fatalf("BulkUpdateProducts: %v", err)
	}
	if res.TotalRows != 2 || res.Failed != 1 || len(res.Errors) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestUpdateTemplateSendsDataPart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/services/rebar/templates/L-01" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if !strings.Contains(r.FormValue("data"), `"label":"Ele"`) {
			t.Errorf("data part = %q", r.FormValue("data"))
		}
		if len(r.MultipartForm.File) != 0 {
			t.Errorf("no image expected, got %v", r.MultipartForm.File)
		}
		w.Write([]byte(`{"code":"L-01","label":"Ele"}`))
	})

	out, err := c.UpdateTemplate(context.Background(), models.ServiceRebar, "L-01", TemplateUpdate{Code: "L-01", Label: "Ele"}, nil)
	if err != nil {
		t.Fatalf("UpdateTemplate: %v", err)
	}
	if out.Kind != models.ServiceRebar {
		t.Errorf("kind = %q", out.Kind)
	}
}

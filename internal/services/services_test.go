package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"metaladmin/internal/cache"
	"metaladmin/internal/config"
	"metaladmin/internal/forms"
	"metaladmin/internal/listview"
	"metaladmin/internal/templates"
	"metaladmin/internal/upstream"
	"metaladmin/pkg/models"
)

// fakeAPI is a scripted commerce API that counts requests per route.
type fakeAPI struct {
	mu     sync.Mutex
	hits   map[string]int
	bodies map[string][]byte
	mux    *http.ServeMux
}

func newFakeAPI(t *testing.T) (*fakeAPI, *upstream.Client) {
	t.Helper()
	api := &fakeAPI{hits: map[string]int{}, bodies: map[string][]byte{}, mux: http.NewServeMux()}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		route := r.Method + " " + r.URL.Path
		api.hits[route]++
		api.bodies[route] = body
		api.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		api.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return api, upstream.NewClient(srv.URL, 5*time.Second)
}

func (a *fakeAPI) handle(pattern, body string) {
	a.handleStatus(pattern, http.StatusOK, body)
}

func (a *fakeAPI) handleStatus(pattern string, status int, body string) {
	a.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func (a *fakeAPI) count(route string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[route]
}

func (a *fakeAPI) body(route string) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bodies[route]
}

func testCache() *cache.Cache {
	return cache.New(cache.Options{Retries: 1, RetryDelay: time.Millisecond})
}

const productPage = `{"data":[{"id":"p1","name":"Steel sheet","familyId":"f1","unit":"m2","features":[{"reference":"S-1","thickness":2}]}],"total":21}`

func TestProductListIsCachedUntilMutation(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /products", productPage)
	api.handle("DELETE /products/p1", `{}`)

	svc := NewProductService(client, testCache(), cache.Options{})
	ctx := upstream.WithToken(context.Background(), "tok")
	q := listview.Query{Page: 1, PageSize: 10}

	res, err := svc.List(ctx, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Pagination.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", res.Pagination.TotalPages)
	}
	if _, err := svc.List(ctx, q); err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := api.count("GET /products"); got != 1 {
		t.Fatalf("upstream list calls = %d, want 1", got)
	}

	if err := svc.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.List(ctx, q); err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := api.count("GET /products"); got != 2 {
		t.Errorf("upstream list calls after delete = %d, want 2", got)
	}
}

func TestCacheIsScopedByToken(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /products", productPage)

	svc := NewProductService(client, testCache(), cache.Options{})
	q := listview.Query{Page: 1, PageSize: 10}

	if _, err := svc.List(upstream.WithToken(context.Background(), "alice"), q); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.List(upstream.WithToken(context.Background(), "bob"), q); err != nil {
		t.Fatal(err)
	}
	if got := api.count("GET /products"); got != 2 {
		t.Errorf("upstream calls = %d, want one per token", got)
	}
}

func TestProductCreateValidatesFirst(t *testing.T) {
	api, client := newFakeAPI(t)
	svc := NewProductService(client, testCache(), cache.Options{})

	_, err := svc.Create(context.Background(), models.Product{Name: "Beam", FamilyID: "f1", Unit: "m"}, nil)
	var fe forms.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want field errors", err)
	}
	if _, ok := fe["features"]; !ok {
		t.Errorf("field errors = %v", fe)
	}
	if api.count("POST /products") != 0 {
		t.Error("invalid product was sent upstream")
	}
}

func TestOrderBulkDelete(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("POST /orders/bulk-delete", `{}`)
	svc := NewOrderService(client, testCache(), cache.Options{})

	n, err := svc.BulkDelete(context.Background(), []string{"o1", "o2", "o1", ""})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	var body struct{ IDs []string }
	if err := json.Unmarshal(api.body("POST /orders/bulk-delete"), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.IDs) != 2 {
		t.Errorf("sent ids = %v", body.IDs)
	}

	if _, err := svc.BulkDelete(context.Background(), nil); !errors.Is(err, ErrNoOrdersSelected) {
		t.Errorf("empty selection err = %v", err)
	}
}

func TestShippingUpdateKeepsMethodIdentity(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("PUT /shipping-policies/express", `{"method":"express","label":"Express","price":"25","estimatedDays":1}`)
	svc := NewShippingService(client, testCache(), cache.Options{})

	_, err := svc.Update(context.Background(), "express", models.ShippingPolicy{Method: "standard", Label: "Express", EstimatedDays: 1})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	var sent models.ShippingPolicy
	if err := json.Unmarshal(api.body("PUT /shipping-policies/express"), &sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.Method != "express" {
		t.Errorf("method = %q, path identity must win", sent.Method)
	}
}

func TestDashboardRejectsUnknownPeriod(t *testing.T) {
	_, client := newFakeAPI(t)
	svc := NewDashboardService(client, testCache(), cache.Options{})
	if _, err := svc.Charts(context.Background(), "decade"); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("err = %v", err)
	}
}

const cuttingTemplateJSON = `{"code":"C-1","label":"Flange","imageUrl":"https://cdn.example.com/c1.png",
	"dimensions":[{"key":"d","label":"Diameter","min":10,"max":500,"unit":"mm"}],
	"thicknesses":[2,4],"materials":["steel"]}`

func TestTemplateEditUsesNarrowEndpoints(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /services/cutting/templates/C-1", cuttingTemplateJSON)
	api.handle("PATCH /services/cutting/templates/C-1/dimensions", `{}`)
	api.handle("PATCH /services/cutting/templates/C-1/image", `{}`)
	svc := NewTemplateService(client, testCache(), cache.Options{})
	ctx := context.Background()

	orig, err := svc.Get(ctx, models.ServiceCutting, "C-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	f := templates.NewEditForm(*orig)
	key := f.Dimensions.Items()[0].Key
	_ = f.Dimensions.Update(key, func(d models.Dimension) models.Dimension {
		d.Max = 900
		return d
	})
	f.Materials.Append("aluminium")

	res, err := svc.Edit(ctx, models.ServiceCutting, "C-1", f)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !res.Plan.DimensionsOnly {
		t.Errorf("plan = %+v", res.Plan)
	}
	if api.count("PATCH /services/cutting/templates/C-1/dimensions") != 1 {
		t.Error("dimension endpoint not called")
	}
	if api.count("PUT /services/cutting/templates/C-1") != 0 {
		t.Error("full update called for a dimension-only edit")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "materials") {
		t.Errorf("warnings = %v", res.Warnings)
	}

	img := templates.NewEditForm(*orig)
	img.SetImage(&templates.Image{Filename: "c1.png", ContentType: "image/png", Data: []byte("png")})
	if _, err := svc.Edit(ctx, models.ServiceCutting, "C-1", img); err != nil {
		t.Fatalf("image edit: %v", err)
	}
	if api.count("PATCH /services/cutting/templates/C-1/image") != 1 {
		t.Error("image endpoint not called")
	}

	if _, err := svc.Edit(ctx, models.ServiceCutting, "C-1", templates.NewEditForm(*orig)); !errors.Is(err, ErrNothingToSave) {
		t.Errorf("unchanged edit err = %v", err)
	}
}

func TestTemplateCreateNeedsImage(t *testing.T) {
	api, client := newFakeAPI(t)
	svc := NewTemplateService(client, testCache(), cache.Options{})

	f := templates.NewCreateForm(models.ServiceRebar)
	f.Code, f.Label = "R-1", "Hook"
	_, err := svc.Create(context.Background(), f)

	var fe forms.FieldErrors
	if !errors.As(err, &fe) || fe["image"] == "" {
		t.Fatalf("err = %v", err)
	}
	if api.count("POST /services/rebar/templates") != 0 {
		t.Error("template without image sent upstream")
	}
}

const calculationJSON = `{
	"rebar":{"rows":[],"labour":{"startingPrice":"0","pricePerKg":"0"},"margin":"1"},
	"cutting":{"rows":[],"labour":{"startingPrice":"0","priceInternal":"0"},"margin":"1"},
	"bending":{"rows":[
		{"thickness":"1.5","prices":{"steel":"2.1","aluminium":"3.4"}},
		{"thickness":"3","prices":{"steel":"4","aluminium":"0"}}
	],"labour":{"startingPrice":"15","pricePerBend":"0.8"},"margin":"1.2"}
}`

func TestCalculationSubmit(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /services/calculations", calculationJSON)
	api.handle("PUT /services/calculations", `{}`)
	svc := NewCalculationService(client, testCache(), cache.Options{StaleTime: 10 * time.Minute})
	ctx := context.Background()

	res, err := svc.Submit(ctx, models.ServiceBending, json.RawMessage(`{"cells":[{"row":0,"column":"steel","price":"2.6"}],"margin":"1.3"}`))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Type != models.ServiceBending {
		t.Errorf("type = %q", res.Type)
	}

	var sent struct {
		Type   string `json:"type"`
		Margin string `json:"margin"`
		Rows   []models.BendingRow
	}
	if err := json.Unmarshal(api.body("PUT /services/calculations"), &sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sent.Type != "bending" || sent.Margin != "1.3" || len(sent.Rows) != 2 {
		t.Errorf("payload = %+v", sent)
	}
	if p, _ := sent.Rows[0].Price("steel"); p.String() != "2.6" {
		t.Errorf("steel price = %s", p)
	}

	_, err = svc.Submit(ctx, models.ServiceBending, json.RawMessage(`{"cells":[{"row":1,"column":"aluminium","price":"9"}]}`))
	var rejected *RejectedCellsError
	if !errors.As(err, &rejected) || len(rejected.Cells) != 1 {
		t.Fatalf("err = %v, want one rejected cell", err)
	}
	if api.count("PUT /services/calculations") != 1 {
		t.Error("table with rejected cells was submitted")
	}
}

func viewsConfig() config.ViewsConfig {
	return config.ViewsConfig{SearchDebounce: 10 * time.Millisecond, SessionTTL: time.Minute}
}

func TestViewSessions(t *testing.T) {
	api, client := newFakeAPI(t)
	api.handle("GET /products", productPage)
	api.handle("DELETE /products/p1", `{}`)

	c := testCache()
	products := NewProductService(client, c, cache.Options{})
	views := NewViewSessionService(products, nil, nil, c, viewsConfig())

	alice := upstream.WithToken(context.Background(), "alice")
	sess, err := views.Open(alice, ResourceProducts, listview.Query{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sess.Wait()

	state := sess.State().(listview.State[models.Product])
	if len(state.Items) != 1 || state.Pagination.TotalPages != 3 {
		t.Errorf("state = %+v", state)
	}

	if _, err := views.Get(upstream.WithToken(context.Background(), "mallory"), sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign token err = %v", err)
	}

	if err := products.Delete(alice, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	sess.Wait()
	if got := api.count("GET /products"); got != 2 {
		t.Errorf("list calls = %d, want a refetch after invalidation", got)
	}

	if _, err := views.Open(alice, "invoices", listview.Query{}); !errors.Is(err, ErrUnknownView) {
		t.Errorf("unknown view err = %v", err)
	}

	if n := views.Sweep(time.Now().Add(time.Hour)); n != 1 {
		t.Errorf("swept = %d", n)
	}
	if views.Len() != 0 {
		t.Error("session survived sweep")
	}
}

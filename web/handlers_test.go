package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pelagos/shoal/adapters/metrics"
	"github.com/pelagos/shoal/core/alert"
	"github.com/pelagos/shoal/core/method"
	"github.com/pelagos/shoal/core/schema"
)

type stubSource struct {
	alerts []alert.Alert
}

func (s *stubSource) Name() string { return "test.stub" }

func (s *stubSource) Check(ctx context.Context) ([]alert.Alert, error) {
	return s.alerts, nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	schemas := schema.NewSchemas()
	schemas.MustAdd(schema.NewDict("widget_create", []schema.Schema{
		schema.NewStr("name", schema.Required()),
		schema.NewStr("secret", schema.Private(), schema.Default("")),
	}))

	reg := method.NewRegistry(schemas, zerolog.Nop())
	err := reg.Register(&method.Method{
		Name:        "widget.create",
		Description: "Create a widget.",
		Accepts:     []schema.Schema{schema.NewRef("widget_create")},
		Returns:     schema.NewRenamedRef("widget_create", "widget_create_result"),
		Handler: func(ctx context.Context, args []any) (any, error) {
			return args[0], nil
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	alerts := alert.NewService(zerolog.Nop())
	alerts.AddSource(&stubSource{alerts: []alert.Alert{
		{Level: alert.LevelWarning, Title: "Something needs attention", Text: "details"},
	}})
	alerts.Process(context.Background())

	return NewHandler(Deps{
		Methods: reg,
		Alerts:  alerts,
		Logger:  zerolog.Nop(),
	})
}

func doRequest(t *testing.T, h *Handler, httpMethod, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(httpMethod, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(httpMethod, path, nil)
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestHandler(t), http.MethodGet, "/healthz", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestListSchemas(t *testing.T) {
	rec := doRequest(t, newTestHandler(t), http.MethodGet, "/api/schemas", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	schemas := body["schemas"].([]any)
	if len(schemas) != 1 {
		t.Fatalf("got %d schemas, want 1", len(schemas))
	}
	doc := schemas[0].(map[string]any)
	if doc["_name_"] != "widget_create" {
		t.Errorf("_name_ = %v", doc["_name_"])
	}
}

func TestGetSchema(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/schemas/widget_create", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	doc := decodeBody(t, rec)
	if doc["type"] != "object" {
		t.Errorf("type = %v, want object", doc["type"])
	}

	rec = doRequest(t, h, http.MethodGet, "/api/schemas/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListMethods(t *testing.T) {
	rec := doRequest(t, newTestHandler(t), http.MethodGet, "/api/methods", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	methods := body["methods"].([]any)
	if len(methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(methods))
	}
	info := methods[0].(map[string]any)
	if info["name"] != "widget.create" {
		t.Errorf("name = %v", info["name"])
	}
	if len(info["accepts"].([]any)) != 1 {
		t.Errorf("accepts = %v", info["accepts"])
	}
	if info["returns"] == nil {
		t.Error("returns missing")
	}
}

func TestCallMethod(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/methods/widget.create",
		`{"args":[{"name":"fin","secret":"hunter2"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	result := body["result"].(map[string]any)
	if result["name"] != "fin" {
		t.Errorf("result.name = %v", result["name"])
	}
	if result["secret"] != schema.Redacted {
		t.Errorf("result.secret = %v, want redacted", result["secret"])
	}
}

func TestCallMethodValidationError(t *testing.T) {
	rec := doRequest(t, newTestHandler(t), http.MethodPost, "/api/methods/widget.create",
		`{"args":[{"name":123}]}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	envelope := body["error"].(map[string]any)
	details := envelope["errors"].([]any)
	if len(details) == 0 {
		t.Fatal("no error details")
	}
	first := details[0].(map[string]any)
	if first["attribute"] != "widget_create.name" {
		t.Errorf("attribute = %v", first["attribute"])
	}
	if first["code"] != float64(schema.EINVAL) {
		t.Errorf("code = %v, want EINVAL", first["code"])
	}
}

func TestCallMethodUnknown(t *testing.T) {
	rec := doRequest(t, newTestHandler(t), http.MethodPost, "/api/methods/widget.destroy", `{"args":[]}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCallMethodBadBody(t *testing.T) {
	rec := doRequest(t, newTestHandler(t), http.MethodPost, "/api/methods/widget.create", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListAlerts(t *testing.T) {
	rec := doRequest(t, newTestHandler(t), http.MethodGet, "/api/alerts", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	alerts := body["alerts"].([]any)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	entry := alerts[0].(map[string]any)
	if entry["level"] != "WARNING" {
		t.Errorf("level = %v, want WARNING", entry["level"])
	}
	if entry["source"] != "test.stub" {
		t.Errorf("source = %v", entry["source"])
	}
}

func TestMetricsPath(t *testing.T) {
	base := newTestHandler(t)

	reg := prometheus.NewRegistry()
	h := NewHandler(Deps{
		Methods:     base.methods,
		Alerts:      base.alerts,
		Collector:   metrics.NewWithRegistry(reg),
		MetricsPath: "/internal/metrics",
		Logger:      zerolog.Nop(),
	})

	if rec := doRequest(t, h, http.MethodGet, "/internal/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("configured path status = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, h, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("default path status = %d, want 404 with a custom path", rec.Code)
	}

	// Without a collector the endpoint is not mounted at all.
	if rec := doRequest(t, base, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("no-collector status = %d, want 404", rec.Code)
	}
}

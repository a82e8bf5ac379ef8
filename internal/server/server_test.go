package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/demo"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/engine"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, st store.Store, opts Options) *Server {
	t.Helper()
	if st == nil {
		st = store.NewMemory()
	}
	srv := New("127.0.0.1:0", st, zap.NewNop(), opts)
	srv.now = func() time.Time { return testNow }
	return srv
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func demoBody(t *testing.T, mutate func(*model.Scan)) io.Reader {
	t.Helper()
	s := demo.Scan()
	if mutate != nil {
		mutate(s)
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(data)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

// failingStore answers every call with an error.
type failingStore struct{}

var errStoreDown = errors.New("database is locked")

func (failingStore) Save(context.Context, store.Record) error { return errStoreDown }
func (failingStore) Get(context.Context, string) (store.Record, error) {
	return store.Record{}, errStoreDown
}
func (failingStore) Latest(context.Context) (store.Record, error) {
	return store.Record{}, errStoreDown
}
func (failingStore) List(context.Context, int) ([]store.Summary, error) { return nil, errStoreDown }
func (failingStore) Ping(context.Context) error                         { return errStoreDown }
func (failingStore) Close() error                                       { return nil }

func TestHandleHealthz(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	w := do(t, srv.Handler(), "GET", "/healthz", http.NoBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body := decode[map[string]string](t, w); body["status"] != "alive" {
		t.Errorf("status = %q, want %q", body["status"], "alive")
	}
}

func TestHandleReadyz(t *testing.T) {
	w := do(t, newTestServer(t, nil, Options{}).Handler(), "GET", "/readyz", http.NoBody)
	if w.Code != http.StatusOK {
		t.Errorf("healthy store: status = %d", w.Code)
	}

	w = do(t, newTestServer(t, &failingStore{}, Options{}).Handler(), "GET", "/readyz", http.NoBody)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("failing store: status = %d, want 503", w.Code)
	}
	if body := decode[map[string]string](t, w); body["error"] != errStoreDown.Error() {
		t.Errorf("error = %q", body["error"])
	}
}

func TestCreateScanAndReadBack(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	h := srv.Handler()

	w := do(t, h, "POST", "/api/v1/scans", demoBody(t, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if loc := w.Header().Get("Location"); loc != "/api/v1/scans/"+demo.ScanID {
		t.Errorf("Location = %q", loc)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	report := decode[model.Report](t, w)
	want, _ := engine.Analyze(demo.Scan())
	if report.Score != want.Score {
		t.Errorf("score = %+v, want %+v", report.Score, want.Score)
	}
	if report.AnalyzedAt == nil || !report.AnalyzedAt.Equal(testNow) {
		t.Errorf("analyzed_at = %v", report.AnalyzedAt)
	}

	for _, path := range []string{"/api/v1/scans/latest", "/api/v1/scans/" + demo.ScanID} {
		w = do(t, h, "GET", path, http.NoBody)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: status = %d", path, w.Code)
		}
		got := decode[ScanResponse](t, w)
		if got.ScanID != demo.ScanID || got.Report == nil || got.Scan == nil {
			t.Errorf("GET %s: %+v", path, got)
		}
	}

	w = do(t, h, "GET", "/api/v1/scans", http.NoBody)
	list := decode[[]store.Summary](t, w)
	if len(list) != 1 || list[0].ID != demo.ScanID || list[0].Grade != want.Score.Grade {
		t.Errorf("list = %+v", list)
	}
}

func TestLegacyUploadPath(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	w := do(t, srv.Handler(), "POST", "/api/scan", demoBody(t, func(s *model.Scan) { s.ScanID = "" }))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	report := decode[model.Report](t, w)
	if report.ScanID == "" {
		t.Error("server should assign a scan id")
	}
	if _, err := srv.store.Get(context.Background(), report.ScanID); err != nil {
		t.Errorf("scan not stored: %v", err)
	}
}

func TestCreateScanInvalid(t *testing.T) {
	tests := []struct {
		name      string
		body      io.Reader
		wantType  string
		wantField string
	}{
		{"malformed json", strings.NewReader("{"), ProblemTypeBadRequest, ""},
		{"missing gpu", demoBody(t, func(s *model.Scan) { s.GPU = nil }), ProblemTypeInvalidScan, "gpu"},
		{"empty storage", demoBody(t, func(s *model.Scan) { s.Storage = nil }), ProblemTypeInvalidScan, "storage"},
		{"usage out of range", demoBody(t, func(s *model.Scan) { s.RAM.UsagePercent = model.Float(140) }), ProblemTypeInvalidScan, "ram.usage_percent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil, Options{})
			w := do(t, srv.Handler(), "POST", "/api/v1/scans", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q", ct)
			}
			p := decode[Problem](t, w)
			if p.Type != tt.wantType {
				t.Errorf("type = %q, want %q", p.Type, tt.wantType)
			}
			if tt.wantField != "" {
				if _, ok := p.Errors[tt.wantField]; !ok {
					t.Errorf("errors = %v, want key %q", p.Errors, tt.wantField)
				}
			}
			if list, _ := srv.store.List(context.Background(), 0); len(list) != 0 {
				t.Error("invalid scan must not be stored")
			}
		})
	}
}

func TestCreateScanTooLarge(t *testing.T) {
	srv := newTestServer(t, nil, Options{MaxBodyBytes: 64})
	w := do(t, srv.Handler(), "POST", "/api/v1/scans", demoBody(t, nil))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
}

func TestCreateScanStoreFailure(t *testing.T) {
	srv := newTestServer(t, &failingStore{}, Options{})
	w := do(t, srv.Handler(), "POST", "/api/v1/scans", demoBody(t, nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if p := decode[Problem](t, w); strings.Contains(p.Detail, errStoreDown.Error()) {
		t.Error("internal error details must not leak")
	}
}

func TestCreateScanDuplicateID(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	h := srv.Handler()

	w := do(t, h, "POST", "/api/v1/scans", demoBody(t, nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("first upload: status = %d, body = %s", w.Code, w.Body)
	}
	first, err := srv.store.Get(context.Background(), demo.ScanID)
	if err != nil {
		t.Fatal(err)
	}

	// Same id, different hardware: a healthy GPU temperature turns hot.
	hotter := func(s *model.Scan) { s.GPU.CurrentTempC = model.Float(92) }
	for _, path := range []string{"/api/v1/scans", "/api/scan"} {
		w := do(t, h, "POST", path, demoBody(t, hotter))
		if w.Code != http.StatusConflict {
			t.Fatalf("POST %s: status = %d, want 409", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("POST %s: Content-Type = %q", path, ct)
		}
		if p := decode[Problem](t, w); p.Type != ProblemTypeConflict || !strings.Contains(p.Detail, demo.ScanID) {
			t.Errorf("POST %s: problem = %+v", path, p)
		}
	}

	got, err := srv.store.Get(context.Background(), demo.ScanID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first.Report, got.Report); diff != "" {
		t.Errorf("stored report changed (-before +after):\n%s", diff)
	}
	if list, _ := srv.store.List(context.Background(), 0); len(list) != 1 {
		t.Errorf("list = %+v, want the single original scan", list)
	}
}

func TestAnalyzeDoesNotStore(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	w := do(t, srv.Handler(), "POST", "/api/v1/analyze", demoBody(t, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if _, err := srv.store.Latest(context.Background()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("analyze stored a scan: %v", err)
	}
}

func TestScanNotFound(t *testing.T) {
	h := newTestServer(t, nil, Options{}).Handler()
	for _, path := range []string{"/api/v1/scans/latest", "/api/v1/scans/missing"} {
		w := do(t, h, "GET", path, http.NoBody)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d, want 404", path, w.Code)
		}
	}
}

func TestListScansLimit(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	h := srv.Handler()
	for _, id := range []string{"a", "b", "c"} {
		w := do(t, h, "POST", "/api/v1/scans", demoBody(t, func(s *model.Scan) { s.ScanID = id }))
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", id, w.Code)
		}
	}

	w := do(t, h, "GET", "/api/v1/scans?limit=2", http.NoBody)
	if got := decode[[]store.Summary](t, w); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	for _, bad := range []string{"0", "-1", "abc", "100000"} {
		w := do(t, h, "GET", "/api/v1/scans?limit="+bad, http.NoBody)
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", bad, w.Code)
		}
	}

	w = do(t, newTestServer(t, &failingStore{}, Options{}).Handler(), "GET", "/api/v1/scans", http.NoBody)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("failing store: status = %d", w.Code)
	}
}

func TestDemoAndRules(t *testing.T) {
	h := newTestServer(t, nil, Options{}).Handler()

	w := do(t, h, "GET", "/api/v1/demo", http.NoBody)
	if w.Code != http.StatusOK {
		t.Fatalf("demo status = %d", w.Code)
	}
	if r := decode[model.Report](t, w); r.ScanID != demo.ScanID || len(r.Bottlenecks) == 0 {
		t.Errorf("demo report = %+v", r.Score)
	}

	w = do(t, h, "GET", "/api/v1/rules", http.NoBody)
	if rules := decode[[]engine.Rule](t, w); len(rules) != len(engine.Rules()) {
		t.Errorf("rules = %d, want %d", len(rules), len(engine.Rules()))
	}
}

func TestCatalog(t *testing.T) {
	h := newTestServer(t, nil, Options{}).Handler()

	w := do(t, h, "GET", "/api/v1/catalog/gpu?name=RTX+4060", http.NoBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	resp := decode[CatalogResponse](t, w)
	if !strings.Contains(resp.Match.Name, "4060") {
		t.Errorf("match = %q", resp.Match.Name)
	}
	if len(resp.Upgrades) > 0 && resp.PriceRange == "" {
		t.Error("price range missing")
	}

	w = do(t, h, "GET", "/api/v1/catalog/cpu", http.NoBody)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	for path, want := range map[string]int{
		"/api/v1/catalog/psu":                 http.StatusNotFound,
		"/api/v1/catalog/cpu?name=Quantum+Q9": http.StatusNotFound,
	} {
		if w := do(t, h, "GET", path, http.NoBody); w.Code != want {
			t.Errorf("GET %s: status = %d, want %d", path, w.Code, want)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil, Options{}).Handler()
	w := do(t, h, "DELETE", "/api/v1/scans", http.NoBody)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil, Options{}).Handler()
	do(t, h, "GET", "/api/v1/demo", http.NoBody)

	w := do(t, h, "GET", "/metrics", http.NoBody)
	body := w.Body.String()
	for _, name := range []string{"pcdiag_analyses_total", "pcdiag_bottlenecks_total", "pcdiag_http_requests_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics missing %s", name)
		}
	}
}

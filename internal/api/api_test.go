package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedsignal/pkg/cache"
	pio "github.com/matzehuels/pedsignal/pkg/io"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
	"github.com/matzehuels/pedsignal/pkg/pipeline"
	"github.com/matzehuels/pedsignal/pkg/store"
)

const loopTable = `Ind Father Mother
1 0 0
2 0 0
3 1 2
4 1 2
8 0 0
9 0 0
5 3 8
6 4 9
7 5 6
`

func setupTestServer(t *testing.T, withStore bool) http.Handler {
	t.Helper()
	g, err := pio.ReadPedigree(strings.NewReader(loopTable))
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
	if withStore {
		runner.WithStore(store.NewMemoryStore())
	}
	return New(runner, pipeline.NewPedigree(g), logger, "test").Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	h := setupTestServer(t, false)
	w := do(t, h, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[healthResponse](t, w)
	if resp.Status != "ok" || resp.Individuals != 9 || resp.Version != "test" {
		t.Errorf("health = %+v", resp)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestIndividual(t *testing.T) {
	h := setupTestServer(t, false)

	w := do(t, h, "GET", "/individuals/3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	ind := decode[individualResponse](t, w)
	if ind.Father != 1 || ind.Mother != 2 || !slices.Equal(ind.Offspring, []pedigree.ID{5}) {
		t.Errorf("individual 3 = %+v", ind)
	}
	if ind.Founder || ind.Proband {
		t.Errorf("3 is neither founder nor proband: %+v", ind)
	}

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/individuals/99", http.StatusNotFound, "UNKNOWN_INDIVIDUAL"},
		{"/individuals/abc", http.StatusBadRequest, "INVALID_INPUT"},
		{"/individuals/0", http.StatusBadRequest, "INVALID_INPUT"},
		{"/nowhere", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, h, "GET", tt.path, "")
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if body := decode[errorBody](t, w); body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestLineage(t *testing.T) {
	h := setupTestServer(t, false)

	w := do(t, h, "GET", "/individuals/7/lineage?ordered=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	ordered := decode[lineageResponse](t, w)
	if got := ordered.Distances[1]; !slices.Equal(got, []int{3, 3}) {
		t.Errorf("distances of 1 = %v, want [3 3]", got)
	}

	w = do(t, h, "GET", "/individuals/3/lineage", "")
	pre := decode[lineageResponse](t, w)
	if !slices.Equal(pre.Lineage, []pedigree.ID{3, 1, 2}) {
		t.Errorf("lineage = %v, want [3 1 2]", pre.Lineage)
	}
}

func TestDescendants(t *testing.T) {
	h := setupTestServer(t, false)

	w := do(t, h, "GET", "/individuals/1/descendants", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	desc := decode[lineageResponse](t, w)
	if got := desc.Distances[7]; !slices.Equal(got, []int{3, 3}) {
		t.Errorf("distances of 7 = %v, want [3 3]", got)
	}
}

func TestProbands(t *testing.T) {
	h := setupTestServer(t, false)

	resp := decode[probandsResponse](t, do(t, h, "GET", "/probands", ""))
	if resp.Total != 1 || !slices.Equal(resp.Probands, []pedigree.ID{7}) {
		t.Errorf("probands = %+v", resp)
	}
	if w := do(t, h, "GET", "/probands?limit=-2", ""); w.Code != http.StatusBadRequest {
		t.Errorf("negative limit: status = %d", w.Code)
	}
}

func TestCones(t *testing.T) {
	h := setupTestServer(t, false)

	w := do(t, h, "POST", "/cones", `{"ids":[5,6]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	resp := decode[struct {
		Cached bool                 `json:"cached"`
		Result pipeline.ConesResult `json:"result"`
	}](t, w)
	if resp.Cached {
		t.Error("first request should not be cached")
	}
	if !slices.Equal(resp.Result.Cones.CommonAncestors, []pedigree.ID{1, 2}) {
		t.Errorf("CommonAncestors = %v", resp.Result.Cones.CommonAncestors)
	}

	w = do(t, h, "POST", "/cones", `{"ids":[6,5]}`)
	if !decode[analysisResponse](t, w).Cached {
		t.Error("repeated request should be cached")
	}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty group", `{"ids":[]}`, http.StatusBadRequest},
		{"unknown", `{"ids":[5,77]}`, http.StatusNotFound},
		{"bad json", `{"ids":`, http.StatusBadRequest},
		{"unknown field", `{"ids":[5],"colour":"red"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, h, "POST", "/cones", tt.body); w.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.status, w.Body)
			}
		})
	}
}

func TestClimb(t *testing.T) {
	h := setupTestServer(t, false)

	w := do(t, h, "POST", "/climb", `{"samples":[7]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	resp := decode[struct {
		Result pipeline.ClimbResult `json:"result"`
	}](t, w)
	if resp.Result.Generations != 3 || resp.Result.WeightOf(1) != 2 {
		t.Errorf("climb = %+v", resp.Result)
	}

	if w := do(t, h, "POST", "/climb", `{"max_steps":-1}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative max_steps: status = %d", w.Code)
	}
	if w := do(t, h, "POST", "/climb", `{"samples":[7],"save":true}`); w.Code != http.StatusNotImplemented {
		t.Errorf("save without store: status = %d", w.Code)
	}
}

func TestReports(t *testing.T) {
	h := setupTestServer(t, true)

	w := do(t, h, "POST", "/climb", `{"samples":[7],"save":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	id := decode[analysisResponse](t, w).ReportID
	if !store.ValidID(id) {
		t.Fatalf("report_id = %q", id)
	}

	w = do(t, h, "GET", "/reports/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get report: status = %d", w.Code)
	}
	rep := decode[store.Report](t, w)
	if rep.Kind != store.KindClimb {
		t.Errorf("Kind = %q", rep.Kind)
	}

	list := decode[[]store.Report](t, do(t, h, "GET", "/reports?kind=climb", ""))
	if len(list) != 1 || list[0].ID != id {
		t.Errorf("list = %v", list)
	}

	if w := do(t, h, "GET", "/reports/6ba7b810-9dad-11d1-80b4-00c04fd430c8", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown report: status = %d", w.Code)
	}
	if w := do(t, h, "GET", "/reports/not-an-id", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad report id: status = %d", w.Code)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	g, _ := pio.ReadPedigree(strings.NewReader(loopTable))
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(pipeline.NewRunner(nil, nil, logger), pipeline.NewPedigree(g), logger, "test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := srv.ListenAndServe(ctx, "127.0.0.1:0", 0, 0); err != nil {
		t.Errorf("ListenAndServe after cancel = %v, want nil", err)
	}
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedsignal/pkg/cache"
	"github.com/matzehuels/pedsignal/pkg/errors"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
	"github.com/matzehuels/pedsignal/pkg/store"
)

// loopTable: 7 is the child of cousins 5 and 6, whose parents 3 and 4 are
// siblings. 8 and 9 marry in.
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

func writePedigree(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ped.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func newTestRunner(t *testing.T) (*Runner, *Pedigree) {
	t.Helper()
	r := NewRunner(cache.NewMemoryCache(), nil, quietLogger())
	p, err := r.Load(context.Background(), writePedigree(t, loopTable))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return r, p
}

func TestLoad(t *testing.T) {
	r, p := newTestRunner(t)
	if p.Graph.Len() != 9 {
		t.Errorf("Len() = %d, want 9", p.Graph.Len())
	}
	if len(p.Hash) != 64 {
		t.Errorf("Hash = %q", p.Hash)
	}

	_, err := r.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: code = %s", errors.GetCode(err))
	}
}

func TestCones(t *testing.T) {
	r, p := newTestRunner(t)
	ctx := context.Background()

	res, hit, err := r.ConesWithCacheInfo(ctx, p, ConesOptions{IDs: []pedigree.ID{5, 6}})
	if err != nil {
		t.Fatalf("Cones: %v", err)
	}
	if hit {
		t.Error("first call should miss the cache")
	}
	if got := res.Cones.CommonAncestors; !slices.Equal(got, []pedigree.ID{1, 2}) {
		t.Errorf("CommonAncestors = %v, want [1 2]", got)
	}
	if got := res.Cones.ConeInds[1].Sorted(); !slices.Equal(got, []pedigree.ID{1, 3, 4, 5, 6}) {
		t.Errorf("cone of 1 = %v, want [1 3 4 5 6]", got)
	}

	again, hit, err := r.ConesWithCacheInfo(ctx, p, ConesOptions{IDs: []pedigree.ID{6, 5}})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("reordered group should hit the cache")
	}
	if !slices.Equal(again.Cones.CommonAncestors, res.Cones.CommonAncestors) {
		t.Errorf("cached result differs: %v", again.Cones.CommonAncestors)
	}

	_, hit, _ = r.ConesWithCacheInfo(ctx, p, ConesOptions{IDs: []pedigree.ID{5, 6}, Refresh: true})
	if hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestConesErrors(t *testing.T) {
	r, p := newTestRunner(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ids  []pedigree.ID
		code errors.Code
	}{
		{"empty", nil, errors.ErrCodeInvalidInput},
		{"sentinel", []pedigree.ID{0}, errors.ErrCodeInvalidInput},
		{"unknown", []pedigree.ID{5, 99}, errors.ErrCodeUnknownIndividual},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Cones(ctx, p, ConesOptions{IDs: tt.ids})
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestClimb(t *testing.T) {
	r, p := newTestRunner(t)

	res, err := r.Climb(context.Background(), p, ClimbOptions{Samples: []pedigree.ID{7}})
	if err != nil {
		t.Fatalf("Climb: %v", err)
	}
	if res.State != "exhausted" || res.Generations != 3 {
		t.Errorf("State = %s, Generations = %d; want exhausted, 3", res.State, res.Generations)
	}

	var frontiers []int
	for _, s := range res.Trajectory {
		frontiers = append(frontiers, s.Frontier)
	}
	if !slices.Equal(frontiers, []int{2, 4, 2}) {
		t.Errorf("frontier sizes = %v, want [2 4 2]", frontiers)
	}

	want := map[pedigree.ID]float64{7: 1, 5: 1, 6: 1, 3: 1, 4: 1, 8: 1, 9: 1, 1: 2, 2: 2}
	for id, w := range want {
		if got := res.WeightOf(id); got != w {
			t.Errorf("WeightOf(%d) = %v, want %v", id, got, w)
		}
	}
	if top := res.Top(2); top[0].ID != 1 || top[1].ID != 2 {
		t.Errorf("Top(2) = %v, want founders 1 and 2 first", top)
	}
	if !res.Top(1)[0].Founder {
		t.Error("individual 1 should be flagged as a founder")
	}
}

func TestClimbMaxSteps(t *testing.T) {
	r, p := newTestRunner(t)

	res, err := r.Climb(context.Background(), p, ClimbOptions{Samples: []pedigree.ID{7}, MaxSteps: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Generations != 1 || res.State != "climbing" {
		t.Errorf("Generations = %d, State = %s; want 1, climbing", res.Generations, res.State)
	}
	if res.WeightOf(3) != 0 {
		t.Errorf("grandparent should be unreached after one step, got %v", res.WeightOf(3))
	}
}

func TestClimbRestrictCone(t *testing.T) {
	r, p := newTestRunner(t)
	ctx := context.Background()
	samples := []pedigree.ID{5, 6}

	free, err := r.Climb(ctx, p, ClimbOptions{Samples: samples})
	if err != nil {
		t.Fatal(err)
	}
	if free.WeightOf(8) != 1 {
		t.Errorf("unrestricted climb should reach 8, got %v", free.WeightOf(8))
	}

	cone, err := r.Climb(ctx, p, ClimbOptions{Samples: samples, RestrictCone: true})
	if err != nil {
		t.Fatal(err)
	}
	if !cone.ConeRestricted {
		t.Error("ConeRestricted should be set")
	}
	if cone.WeightOf(8) != 0 || cone.WeightOf(9) != 0 {
		t.Errorf("married-in parents are outside the cones: 8=%v 9=%v", cone.WeightOf(8), cone.WeightOf(9))
	}
	if cone.WeightOf(1) != 2 {
		t.Errorf("WeightOf(1) = %v, want 2", cone.WeightOf(1))
	}
}

func TestClimbProbandDefault(t *testing.T) {
	r, p := newTestRunner(t)

	res, err := r.Climb(context.Background(), p, ClimbOptions{Probands: 3})
	if err != nil {
		t.Fatal(err)
	}
	// 7 is the only proband.
	if !slices.Equal(res.Samples, []pedigree.ID{7}) {
		t.Errorf("Samples = %v, want [7]", res.Samples)
	}
}

func TestClimbInherited(t *testing.T) {
	r, p := newTestRunner(t)

	res, err := r.Climb(context.Background(), p, ClimbOptions{Samples: []pedigree.ID{3}, Inherited: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range res.Weights {
		if e.Inherited == nil {
			t.Fatalf("entry %d has no inherited weight", e.ID)
		}
	}
	// 3 has weight 1; parents 1 and 2 have weight 1 each at distance 1.
	for _, e := range res.Weights {
		if e.ID == 3 && *e.Inherited != 2 {
			t.Errorf("inherited weight of 3 = %v, want 2", *e.Inherited)
		}
	}
}

func TestClimbCache(t *testing.T) {
	r, p := newTestRunner(t)
	ctx := context.Background()
	opts := ClimbOptions{Samples: []pedigree.ID{7}}

	if _, hit, _ := r.ClimbWithCacheInfo(ctx, p, opts); hit {
		t.Error("first climb should miss")
	}
	res, hit, err := r.ClimbWithCacheInfo(ctx, p, opts)
	if err != nil || !hit {
		t.Fatalf("second climb: hit %v, err %v", hit, err)
	}
	if res.WeightOf(1) != 2 {
		t.Errorf("cached WeightOf(1) = %v", res.WeightOf(1))
	}

	if _, hit, _ := r.ClimbWithCacheInfo(ctx, p, ClimbOptions{Samples: []pedigree.ID{7}, MaxSteps: 2}); hit {
		t.Error("different MaxSteps should miss")
	}
}

func TestClimbErrors(t *testing.T) {
	r, p := newTestRunner(t)

	tests := []struct {
		name string
		opts ClimbOptions
		code errors.Code
	}{
		{"negative steps", ClimbOptions{MaxSteps: -1}, errors.ErrCodeInvalidInput},
		{"negative probands", ClimbOptions{Probands: -1}, errors.ErrCodeInvalidInput},
		{"sentinel sample", ClimbOptions{Samples: []pedigree.ID{0}}, errors.ErrCodeInvalidInput},
		{"unknown sample", ClimbOptions{Samples: []pedigree.ID{42}}, errors.ErrCodeUnknownIndividual},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Climb(context.Background(), p, tt.opts)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestClimbCanceled(t *testing.T) {
	r, p := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Climb(ctx, p, ClimbOptions{Samples: []pedigree.ID{7}})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("code = %s, want TIMEOUT", errors.GetCode(err))
	}
}

func TestReports(t *testing.T) {
	r, p := newTestRunner(t)
	ctx := context.Background()

	if _, err := r.Save(ctx, store.KindClimb, p, nil); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Save without store: code = %s", errors.GetCode(err))
	}

	r.WithStore(store.NewMemoryStore())
	res, _ := r.Climb(ctx, p, ClimbOptions{Samples: []pedigree.ID{7}})
	rep, err := r.Save(ctx, store.KindClimb, p, res)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := r.Report(ctx, rep.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	var decoded ClimbResult
	if err := json.Unmarshal(got.Body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.WeightOf(1) != 2 || got.PedigreeHash != p.Hash {
		t.Errorf("stored report = %+v", decoded)
	}

	_, err = r.Report(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown report: code = %s", errors.GetCode(err))
	}

	if err := r.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPutLogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	c := cache.NewMemoryCache()
	r := NewRunner(c, nil, log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel}))
	ctx := context.Background()

	r.put(ctx, "climb", "bad", math.Inf(1))

	if !strings.Contains(buf.String(), "cache encode failed") {
		t.Errorf("log output = %q, want an encode warning", buf.String())
	}
	if _, hit, _ := c.Get(ctx, "bad"); hit {
		t.Error("unencodable value was cached")
	}
}

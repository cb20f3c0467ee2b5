package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewReport(t *testing.T) {
	r, err := NewReport(KindClimb, "abc", map[string]int{"generation": 2})
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	if !ValidID(r.ID) {
		t.Errorf("ID %q is not a UUID", r.ID)
	}
	if r.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	var body map[string]int
	if err := r.Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["generation"] != 2 {
		t.Errorf("body = %v", body)
	}

	if _, err := NewReport(KindClimb, "abc", make(chan int)); err == nil {
		t.Error("NewReport should fail on unencodable bodies")
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"", false},
		{"../../etc/passwd", false},
		{"not-a-uuid", false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i, kind := range []string{KindCones, KindClimb, KindClimb} {
		r, _ := NewReport(kind, "ped-1", map[string]int{"i": i})
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, r.ID)
	}
	other, _ := NewReport(KindClimb, "ped-2", nil)
	other.CreatedAt = base.Add(-time.Hour)
	s.Save(ctx, other)

	got, err := s.Get(ctx, ids[1])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Kind != KindClimb || got.PedigreeHash != "ped-1" {
		t.Errorf("Get = %+v", got)
	}

	if _, err := s.Get(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown: err = %v, want ErrNotFound", err)
	}

	all, _ := s.List(ctx, ListOptions{})
	if len(all) != 4 {
		t.Fatalf("List() returned %d reports, want 4", len(all))
	}
	if all[0].ID != ids[2] {
		t.Errorf("List() should be newest first, got %s", all[0].ID)
	}

	climbs, _ := s.List(ctx, ListOptions{Kind: KindClimb, PedigreeHash: "ped-1"})
	if len(climbs) != 2 {
		t.Errorf("List(climb, ped-1) returned %d, want 2", len(climbs))
	}

	limited, _ := s.List(ctx, ListOptions{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("List(limit 1) returned %d", len(limited))
	}

	// Saving an existing ID replaces it.
	got.PedigreeHash = "ped-3"
	s.Save(ctx, got)
	again, _ := s.Get(ctx, got.ID)
	if again.PedigreeHash != "ped-3" {
		t.Errorf("Save should replace, got hash %q", again.PedigreeHash)
	}

	if err := s.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := &Report{Kind: KindCones, Body: []byte(`{"a":1}`)}
	s.Save(ctx, r)
	if r.ID == "" {
		t.Fatal("Save should assign an ID")
	}
	r.Body[2] = 'b'

	got, _ := s.Get(ctx, r.ID)
	if string(got.Body) != `{"a":1}` {
		t.Errorf("stored body changed with caller's slice: %s", got.Body)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "reports"))
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
}

func TestFileStoreSkipsJunk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, _ := NewFileStore(dir)

	os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	r, _ := NewReport(KindCones, "h", nil)
	s.Save(ctx, r)

	got, err := s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != r.ID {
		t.Errorf("List() = %v, want only %s", got, r.ID)
	}

	if _, err := s.Get(ctx, "../junk"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get with a path-like ID: err = %v, want ErrNotFound", err)
	}
}

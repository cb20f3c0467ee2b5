// Package store persists analysis reports so they can be fetched again by
// ID.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process, for tests and a single server instance
//   - [FileStore]: one JSON file per report, for the CLI's --save flag
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Reports carry their result as raw JSON, so the store does not depend on
// the shape of cone or climb results.
//
//	r, _ := store.NewReport(store.KindClimb, pedHash, result)
//	if err := s.Save(ctx, r); err != nil {
//	    return err
//	}
//	again, err := s.Get(ctx, r.ID)
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for an unknown report ID.
var ErrNotFound = errors.New("report not found")

// Report kinds.
const (
	KindCones = "cones"
	KindClimb = "climb"
)

// Report is one stored analysis result.
type Report struct {
	ID           string          `json:"id" bson:"_id"`
	Kind         string          `json:"kind" bson:"kind"`
	PedigreeHash string          `json:"pedigree_hash" bson:"pedigree_hash"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
	Body         json.RawMessage `json:"body" bson:"body"`
}

// NewReport encodes body and stamps a fresh ID and creation time.
func NewReport(kind, pedigreeHash string, body any) (*Report, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s report: %w", kind, err)
	}
	return &Report{
		ID:           uuid.NewString(),
		Kind:         kind,
		PedigreeHash: pedigreeHash,
		CreatedAt:    time.Now().UTC(),
		Body:         raw,
	}, nil
}

// Decode unmarshals the report body into v.
func (r *Report) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// ListOptions filters List. Zero values mean no filter.
type ListOptions struct {
	Kind         string
	PedigreeHash string
	Limit        int
}

func (o ListOptions) match(r *Report) bool {
	return (o.Kind == "" || r.Kind == o.Kind) &&
		(o.PedigreeHash == "" || r.PedigreeHash == o.PedigreeHash)
}

// Store is the interface for report storage backends.
type Store interface {
	// Save stores r, assigning an ID if r.ID is empty. Saving an existing
	// ID replaces the report.
	Save(ctx context.Context, r *Report) error

	// Get returns the report with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Report, error)

	// List returns matching reports, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Report, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

func ensureID(r *Report) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

// ValidID reports whether id has the UUID form NewReport assigns. It lets
// callers reject path-like IDs before touching a backend.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

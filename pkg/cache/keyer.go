package cache

import (
	"slices"
	"strconv"
)

// Keyer derives cache keys for analysis results.
type Keyer interface {
	// ConesKey identifies the descent cones of ids in the pedigree with
	// the given hash.
	ConesKey(pedigreeHash string, ids []int64) string

	// ClimbKey identifies a climb run over the pedigree with the given hash.
	ClimbKey(pedigreeHash string, opts ClimbKeyOpts) string
}

// ClimbKeyOpts holds every input that changes the outcome of a climb.
type ClimbKeyOpts struct {
	Samples      []int64 `json:"samples"`
	MaxSteps     int     `json:"max_steps"`
	RestrictCone bool    `json:"restrict_cone"`
	Inherited    bool    `json:"inherited"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ConesKey sorts ids first: a cone query does not depend on the order of
// the group.
func (DefaultKeyer) ConesKey(pedigreeHash string, ids []int64) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return hashKey("cones", pedigreeHash, sorted)
}

// ClimbKey keeps the sample order, which is reported back in the result.
func (DefaultKeyer) ClimbKey(pedigreeHash string, opts ClimbKeyOpts) string {
	return hashKey("climb", pedigreeHash, opts)
}

// PedigreeHash fingerprints the three parallel pedigree columns. Two
// graphs built from equal columns in equal order share a hash.
func PedigreeHash(ids, fathers, mothers []int64) string {
	buf := make([]byte, 0, len(ids)*24)
	for i := range ids {
		buf = strconv.AppendInt(buf, ids[i], 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, fathers[i], 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, mothers[i], 10)
		buf = append(buf, '\n')
	}
	return Hash(buf)
}

var _ Keyer = DefaultKeyer{}

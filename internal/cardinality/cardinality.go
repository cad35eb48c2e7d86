// Package cardinality decides whether a set of candidate exports is an
// acceptable match for an import's declared cardinality.
package cardinality

import (
	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/schema"
)

// Result is the outcome of a cardinality check.
type Result int

const (
	// Match means the candidates are acceptable.
	Match Result = iota
	// NoExports means no candidate was supplied but one is required.
	NoExports
	// TooManyExports means several candidates were supplied but at most one
	// is accepted.
	TooManyExports
)

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r {
	case Match:
		return "Match"
	case NoExports:
		return "NoExports"
	case TooManyExports:
		return "TooManyExports"
	default:
		return "Unknown"
	}
}

// Err maps a failed result to its composition failure kind.
func (r Result) Err() error {
	switch r {
	case NoExports:
		return composition.ErrNoExports
	case TooManyExports:
		return composition.ErrTooManyExports
	default:
		return nil
	}
}

// Check compares the number of candidate exports to the declared cardinality.
func Check(declared schema.Cardinality, exports []*schema.Export) Result {
	return CheckCount(declared, len(exports))
}

// CheckCount is Check for a bare count.
func CheckCount(declared schema.Cardinality, count int) Result {
	switch {
	case count <= 0:
		if declared.AcceptsZero() {
			return Match
		}
		return NoExports
	case count == 1:
		return Match
	default:
		if declared.AcceptsMany() {
			return Match
		}
		return TooManyExports
	}
}

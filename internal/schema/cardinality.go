// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
package schema

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/partgrid/internal/composition"
)

// Cardinality is how many exports may satisfy an import.
type Cardinality int

const (
	// ZeroOrOne accepts no export or a single one.
	ZeroOrOne Cardinality = iota
	// ExactlyOne requires a single export.
	ExactlyOne
	// ZeroOrMore accepts any number of exports.
	ZeroOrMore
)

// String returns the manifest spelling of the cardinality.
func (c Cardinality) String() string {
	switch c {
	case ZeroOrOne:
		return "zero_or_one"
	case ExactlyOne:
		return "exactly_one"
	case ZeroOrMore:
		return "zero_or_more"
	default:
		return fmt.Sprintf("cardinality(%d)", int(c))
	}
}

// IsValid reports whether c is one of the declared values.
func (c Cardinality) IsValid() bool {
	return c >= ZeroOrOne && c <= ZeroOrMore
}

// AcceptsZero reports whether an empty set of exports satisfies c.
func (c Cardinality) AcceptsZero() bool {
	return c == ZeroOrOne || c == ZeroOrMore
}

// AcceptsMany reports whether more than one export satisfies c.
func (c Cardinality) AcceptsMany() bool {
	return c == ZeroOrMore
}

// ParseCardinality parses the manifest spelling of a cardinality.
func ParseCardinality(s string) (Cardinality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zero_or_one":
		return ZeroOrOne, nil
	case "exactly_one", "":
		return ExactlyOne, nil
	case "zero_or_more":
		return ZeroOrMore, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected 'exactly_one', 'zero_or_one' or 'zero_or_more')", composition.ErrInvalidCardinality, s)
	}
}

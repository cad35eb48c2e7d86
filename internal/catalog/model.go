package catalog

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
)

// Model is the format-agnostic result of loading every manifest file.
type Model struct {
	Parts map[string]*PartManifest
}

// Names returns the manifest part names in sorted order.
func (m *Model) Names() []string {
	names := make([]string, 0, len(m.Parts))
	for name := range m.Parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PartManifest is the manifest of a single part.
type PartManifest struct {
	Name        string
	Description string
	// File is the manifest file the part was declared in.
	File    string
	Imports []*ImportManifest
	Exports []*ExportManifest
}

// ImportManifest declares one import of a part. Empty strings and nil
// pointers mean the attribute was omitted.
type ImportManifest struct {
	Member       string
	Contract     string
	Cardinality  string
	Prerequisite *bool
	Recomposable *bool
	// Constraint is nil when no constraint expression was given.
	Constraint hcl.Expression
}

// ExportManifest declares one export of a part.
type ExportManifest struct {
	Member   string
	Contract string
	Metadata map[string]any
}

package app

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/specialistvlad/partgrid/internal/caster"
	"github.com/specialistvlad/partgrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// PartSummary is the description of a registered part as shown by the CLI
// and served on /parts.
type PartSummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Manifest    string          `json:"manifest,omitempty"`
	Imports     []ImportSummary `json:"imports"`
	Exports     []ExportSummary `json:"exports"`
}

// ImportSummary describes one import of a part.
type ImportSummary struct {
	Member       string `json:"member"`
	Contract     string `json:"contract"`
	Cardinality  string `json:"cardinality"`
	Prerequisite bool   `json:"prerequisite"`
	Recomposable bool   `json:"recomposable"`
	Parameter    bool   `json:"parameter,omitempty"`
	Constrained  bool   `json:"constrained,omitempty"`
}

// ExportSummary describes one export of a part.
type ExportSummary struct {
	Member   string         `json:"member"`
	Contract string         `json:"contract"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Summaries returns the summaries of every registered part, sorted by name.
func (a *App) Summaries() []PartSummary {
	defs := a.registry.Definitions()
	out := make([]PartSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, a.summarize(def))
	}
	return out
}

func (a *App) summarize(def *registry.Definition) PartSummary {
	s := PartSummary{
		Name:        def.Name(),
		Description: def.Description(),
		Imports:     []ImportSummary{},
		Exports:     []ExportSummary{},
	}
	if pm, ok := a.catalog.Parts[def.Name()]; ok {
		s.Manifest = pm.File
	}
	for _, spec := range def.Imports() {
		d := spec.Definition
		s.Imports = append(s.Imports, ImportSummary{
			Member:       spec.Name,
			Contract:     d.ContractName(),
			Cardinality:  d.Cardinality().String(),
			Prerequisite: d.IsPrerequisite(),
			Recomposable: d.IsRecomposable(),
			Parameter:    spec.Parameter,
			Constrained:  d.ConstraintExpr() != nil,
		})
	}
	for _, spec := range def.Exports() {
		s.Exports = append(s.Exports, ExportSummary{
			Member:   spec.Name,
			Contract: spec.Definition.ContractName(),
			Metadata: plainMetadata(spec.Definition.Metadata()),
		})
	}
	return s
}

// plainMetadata decodes manifest values into plain Go values so they can be
// printed and encoded as JSON.
func plainMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		cv, ok := v.(cty.Value)
		if !ok {
			out[k] = v
			continue
		}
		out[k] = plainValue(k, cv)
	}
	return out
}

// plainValue decodes primitive values. Anything else, or a value that does
// not decode, is shown in its cty notation.
func plainValue(key string, cv cty.Value) any {
	if cv.IsNull() {
		return nil
	}
	var (
		v   any
		err error
	)
	switch {
	case cv.Type().Equals(cty.String):
		v, err = caster.Cast[string](key, cv)
	case cv.Type().Equals(cty.Number):
		v, err = caster.Cast[float64](key, cv)
	case cv.Type().Equals(cty.Bool):
		v, err = caster.Cast[bool](key, cv)
	default:
		return cv.GoString()
	}
	if err != nil {
		return cv.GoString()
	}
	return v
}

// Describe writes a human readable listing of the catalog to w.
func (a *App) Describe(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range a.Summaries() {
		fmt.Fprintf(tw, "part %s", s.Name)
		if s.Description != "" {
			fmt.Fprintf(tw, " (%s)", s.Description)
		}
		fmt.Fprintln(tw)
		for _, im := range s.Imports {
			fmt.Fprintf(tw, "  import\t%s\t<- %s\t%s\n", im.Member, im.Contract, importFlags(im))
		}
		for _, ex := range s.Exports {
			fmt.Fprintf(tw, "  export\t%s\t-> %s\t%s\n", ex.Member, ex.Contract, formatMetadata(ex.Metadata))
		}
	}
	return tw.Flush()
}

func importFlags(im ImportSummary) string {
	flags := []string{im.Cardinality}
	if im.Parameter {
		flags = append(flags, "parameter")
	} else if im.Prerequisite {
		flags = append(flags, "prerequisite")
	}
	if im.Recomposable {
		flags = append(flags, "recomposable")
	}
	if im.Constrained {
		flags = append(flags, "constrained")
	}
	return strings.Join(flags, ", ")
}

func formatMetadata(metadata map[string]any) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, metadata[k]))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/partgrid/internal/ctxlog"
	"github.com/specialistvlad/partgrid/internal/fsutil"
)

// Loader reads part manifests from .hcl and .yaml files.
type Loader struct{}

// NewLoader creates a new manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is the top-level shape of a manifest file.
type fileRoot struct {
	Parts []*partBlock `hcl:"part,block"`
}

type partBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Imports     []*importBlock `hcl:"import,block"`
	Exports     []*exportBlock `hcl:"export,block"`
}

type importBlock struct {
	Member       string         `hcl:"member,label"`
	Contract     string         `hcl:"contract,optional"`
	Cardinality  string         `hcl:"cardinality,optional"`
	Prerequisite *bool          `hcl:"prerequisite,optional"`
	Recomposable *bool          `hcl:"recomposable,optional"`
	Constraint   hcl.Expression `hcl:"constraint,optional"`
}

type exportBlock struct {
	Member   string         `hcl:"member,label"`
	Contract string         `hcl:"contract"`
	Metadata hcl.Expression `hcl:"metadata,optional"`
}

// manifestExtensions lists the file types Load reads.
var manifestExtensions = []string{".hcl", ".yaml", ".yml"}

// Load parses every manifest file found under paths. Paths may name files or
// directories; missing paths are skipped. Declaring the same part twice is
// an error, also across formats.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loader started.", "path_count", len(paths))

	var files []string
	for _, ext := range manifestExtensions {
		found, err := fsutil.CollectFiles(paths, ext)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	logger.Debug("Discovered manifest files.", "count", len(files))

	model := &Model{Parts: make(map[string]*PartManifest)}
	parser := hclparse.NewParser()

	for _, file := range files {
		var parts []*PartManifest
		var err error
		if filepath.Ext(file) == ".hcl" {
			parts, err = parseHCLFile(parser, file)
		} else {
			parts, err = parseYAMLFile(file)
		}
		if err != nil {
			return nil, err
		}

		for _, pm := range parts {
			if prev, exists := model.Parts[pm.Name]; exists {
				return nil, fmt.Errorf("part '%s' declared in %s is already declared in %s", pm.Name, file, prev.File)
			}
			if err := checkMembers(pm); err != nil {
				return nil, fmt.Errorf("invalid manifest in %s: %w", file, err)
			}
			model.Parts[pm.Name] = pm
		}
	}

	logger.Debug("Manifest loading complete.", "parts", len(model.Parts))
	return model, nil
}

func parseHCLFile(parser *hclparse.Parser, file string) ([]*PartManifest, error) {
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	parts := make([]*PartManifest, 0, len(root.Parts))
	for _, block := range root.Parts {
		pm, err := translatePart(block, file)
		if err != nil {
			return nil, fmt.Errorf("invalid manifest in %s: %w", file, err)
		}
		parts = append(parts, pm)
	}
	return parts, nil
}

// checkMembers rejects a part that declares an import or export twice.
func checkMembers(pm *PartManifest) error {
	seen := make(map[string]bool)
	for _, im := range pm.Imports {
		if seen[im.Member] {
			return fmt.Errorf("part '%s': import '%s' declared more than once", pm.Name, im.Member)
		}
		seen[im.Member] = true
	}
	seen = make(map[string]bool)
	for _, em := range pm.Exports {
		if seen[em.Member] {
			return fmt.Errorf("part '%s': export '%s' declared more than once", pm.Name, em.Member)
		}
		seen[em.Member] = true
	}
	return nil
}

func translatePart(block *partBlock, file string) (*PartManifest, error) {
	pm := &PartManifest{
		Name:        block.Name,
		Description: block.Description,
		File:        file,
	}
	for _, ib := range block.Imports {
		pm.Imports = append(pm.Imports, &ImportManifest{
			Member:       ib.Member,
			Contract:     ib.Contract,
			Cardinality:  ib.Cardinality,
			Prerequisite: ib.Prerequisite,
			Recomposable: ib.Recomposable,
			Constraint:   constraintExpr(ib.Constraint),
		})
	}
	for _, eb := range block.Exports {
		metadata, err := decodeMetadata(eb.Metadata)
		if err != nil {
			return nil, fmt.Errorf("part '%s': export '%s': %w", block.Name, eb.Member, err)
		}
		pm.Exports = append(pm.Exports, &ExportManifest{
			Member:   eb.Member,
			Contract: eb.Contract,
			Metadata: metadata,
		})
	}
	return pm, nil
}

// constraintExpr drops the null expression gohcl leaves behind for an
// omitted attribute. Expressions that reference variables are kept as-is;
// they are compiled when the import definition is built.
func constraintExpr(expr hcl.Expression) hcl.Expression {
	if expr == nil {
		return nil
	}
	if len(expr.Variables()) > 0 {
		return expr
	}
	v, diags := expr.Value(nil)
	if !diags.HasErrors() && v.IsNull() {
		return nil
	}
	return expr
}

// decodeMetadata evaluates a metadata object literal. Values are kept as
// cty.Value and decoded into Go types by the caster when read.
func decodeMetadata(expr hcl.Expression) (map[string]any, error) {
	if expr == nil {
		return nil, nil
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("metadata must be a literal object: %w", diags)
	}
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() || !(v.Type().IsObjectType() || v.Type().IsMapType()) {
		return nil, fmt.Errorf("metadata must be an object, got %s", v.Type().FriendlyName())
	}

	out := make(map[string]any)
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		out[k.AsString()] = ev
	}
	return out, nil
}

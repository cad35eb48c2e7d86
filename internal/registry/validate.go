package registry

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/specialistvlad/partgrid/internal/catalog"
	"github.com/specialistvlad/partgrid/internal/ctxlog"
	"github.com/specialistvlad/partgrid/internal/schema"
)

// ApplyManifests performs a strict parity check between manifests and Go
// definitions and folds the manifest policy into the registered definitions.
//
// Every import and export must be declared on both sides with the same
// contract and cardinality. A manifest may override the prerequisite and
// recomposable flags of member imports, attach a constraint expression, and
// add or override export metadata. Parts registered without a manifest keep
// their Go declarations.
func (r *Registry) ApplyManifests(ctx context.Context, model *catalog.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range model.Names() {
		pm := model.Parts[name]
		def, ok := r.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("manifest %s declares part '%s' which is not registered", pm.File, name))
			continue
		}

		reconciled, problems := reconcile(def, pm)
		if len(problems) > 0 {
			errs = append(errs, problems...)
			continue
		}
		r.replace(reconciled)
		logger.Debug("Applied part manifest.", "part", name, "file", pm.File)
	}

	for _, name := range r.Names() {
		if _, ok := model.Parts[name]; !ok {
			logger.Debug("Part has no manifest; using Go declarations.", "part", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func reconcile(def *Definition, pm *catalog.PartManifest) (*Definition, []string) {
	var errs []string
	out := def.clone()
	if out.description == "" {
		out.description = pm.Description
	}

	manifestImports := make(map[string]*catalog.ImportManifest, len(pm.Imports))
	for _, im := range pm.Imports {
		manifestImports[im.Member] = im
		if _, ok := out.ImportNamed(im.Member); !ok {
			errs = append(errs, fmt.Sprintf("part '%s': manifest declares import '%s' which is not found in Go definition", def.name, im.Member))
		}
	}
	for _, spec := range out.imports {
		im, ok := manifestImports[spec.Name]
		if !ok {
			errs = append(errs, fmt.Sprintf("part '%s': Go definition declares import '%s' which is not declared in manifest", def.name, spec.Name))
			continue
		}
		updated, problems := reconcileImport(def.name, spec, im)
		errs = append(errs, problems...)
		if updated != nil {
			spec.Definition = updated
		}
	}

	manifestExports := make(map[string]*catalog.ExportManifest, len(pm.Exports))
	for _, em := range pm.Exports {
		manifestExports[em.Member] = em
		if _, ok := out.ExportNamed(em.Member); !ok {
			errs = append(errs, fmt.Sprintf("part '%s': manifest declares export '%s' which is not found in Go definition", def.name, em.Member))
		}
	}
	for _, spec := range out.exports {
		em, ok := manifestExports[spec.Name]
		if !ok {
			errs = append(errs, fmt.Sprintf("part '%s': Go definition declares export '%s' which is not declared in manifest", def.name, spec.Name))
			continue
		}
		contract := spec.Definition.ContractName()
		if em.Contract != contract {
			errs = append(errs, fmt.Sprintf("part '%s', export '%s': contract mismatch. Manifest declares '%s' but Go definition exports '%s'", def.name, spec.Name, em.Contract, contract))
			continue
		}
		metadata := spec.Definition.Metadata()
		if metadata == nil {
			metadata = make(map[string]any, len(em.Metadata))
		}
		maps.Copy(metadata, em.Metadata)
		spec.Definition = schema.NewExportDefinition(contract, metadata)
	}

	return out, errs
}

func reconcileImport(part string, spec *ImportSpec, im *catalog.ImportManifest) (*schema.ImportDefinition, []string) {
	var errs []string
	current := spec.Definition
	prefix := fmt.Sprintf("part '%s', import '%s'", part, spec.Name)

	if im.Contract != "" && im.Contract != current.ContractName() {
		errs = append(errs, fmt.Sprintf("%s: contract mismatch. Manifest requires '%s' but Go definition imports '%s'", prefix, im.Contract, current.ContractName()))
	}
	if im.Cardinality != "" {
		c, err := schema.ParseCardinality(im.Cardinality)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("%s: %v", prefix, err))
		case c != current.Cardinality():
			errs = append(errs, fmt.Sprintf("%s: cardinality mismatch. Manifest declares '%s' but Go definition declares '%s'", prefix, c, current.Cardinality()))
		}
	}

	var opts []schema.ImportOption
	if im.Prerequisite != nil {
		if spec.Parameter && !*im.Prerequisite {
			errs = append(errs, fmt.Sprintf("%s: constructor parameters are always prerequisites", prefix))
		}
		opts = append(opts, schema.WithPrerequisite(*im.Prerequisite))
	}
	if im.Recomposable != nil {
		if spec.Parameter && *im.Recomposable {
			errs = append(errs, fmt.Sprintf("%s: constructor parameters cannot be recomposable", prefix))
		}
		opts = append(opts, schema.WithRecomposable(*im.Recomposable))
	}
	if im.Constraint != nil {
		opts = append(opts, schema.WithConstraintExpr(im.Constraint))
	}
	if len(errs) > 0 {
		return nil, errs
	}
	if len(opts) == 0 {
		return nil, nil
	}

	updated, err := current.With(opts...)
	if err != nil {
		return nil, []string{fmt.Sprintf("%s: %v", prefix, err)}
	}
	if _, err := updated.Constraint(); err != nil {
		return nil, []string{fmt.Sprintf("%s: invalid constraint: %v", prefix, err)}
	}
	return updated, nil
}

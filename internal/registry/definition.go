package registry

import (
	"github.com/specialistvlad/partgrid/internal/caster"
	"github.com/specialistvlad/partgrid/internal/collection"
	"github.com/specialistvlad/partgrid/internal/schema"
)

// Constructor creates a part instance. args holds one value per constructor
// parameter, indexed by position.
type Constructor func(args []any) (any, error)

// ImportSpec binds an import definition to the member or constructor
// parameter that receives it.
type ImportSpec struct {
	// Name is the member or parameter name used in diagnostics.
	Name       string
	Definition *schema.ImportDefinition
	// Parameter marks a constructor parameter; Position is its index.
	Parameter bool
	Position  int
	// Convert turns one resolved export into an element value.
	Convert caster.ExportFunc
	// Type is the declared collection type of a many-valued import.
	Type *collection.Type
	// Get reads the member from an instance; nil if it cannot be read.
	Get func(instance any) (any, error)
	// Set writes the member on an instance; nil if it cannot be written.
	Set func(instance, value any) error
}

// ExportSpec binds an export definition to the member that produces it.
type ExportSpec struct {
	Name       string
	Definition *schema.ExportDefinition
	// RequiresInstance is false for exports that are independent of any
	// instance, like constants and package-level factories.
	RequiresInstance bool
	Get              func(instance any) (any, error)
}

// Definition is the immutable description of a part type.
type Definition struct {
	name        string
	description string
	constructor Constructor
	imports     []*ImportSpec
	exports     []*ExportSpec
}

// Name returns the registered part name.
func (d *Definition) Name() string { return d.name }

// Description returns the human readable description, if any.
func (d *Definition) Description() string { return d.description }

// Constructor returns the instance constructor, nil if the part has none.
func (d *Definition) Constructor() Constructor { return d.constructor }

// Imports returns every import binding, members and parameters alike.
func (d *Definition) Imports() []*ImportSpec {
	return append([]*ImportSpec(nil), d.imports...)
}

// Members returns the import bindings delivered to instance members.
func (d *Definition) Members() []*ImportSpec {
	var out []*ImportSpec
	for _, spec := range d.imports {
		if !spec.Parameter {
			out = append(out, spec)
		}
	}
	return out
}

// Parameters returns the constructor parameter bindings ordered by position.
func (d *Definition) Parameters() []*ImportSpec {
	var out []*ImportSpec
	for _, spec := range d.imports {
		if spec.Parameter {
			out = append(out, spec)
		}
	}
	return out
}

// Exports returns every export binding.
func (d *Definition) Exports() []*ExportSpec {
	return append([]*ExportSpec(nil), d.exports...)
}

// ImportDefinitions returns the import definitions in declaration order.
func (d *Definition) ImportDefinitions() []*schema.ImportDefinition {
	out := make([]*schema.ImportDefinition, 0, len(d.imports))
	for _, spec := range d.imports {
		out = append(out, spec.Definition)
	}
	return out
}

// ExportDefinitions returns the export definitions in declaration order.
func (d *Definition) ExportDefinitions() []*schema.ExportDefinition {
	out := make([]*schema.ExportDefinition, 0, len(d.exports))
	for _, spec := range d.exports {
		out = append(out, spec.Definition)
	}
	return out
}

// Import finds the binding for an import definition by identity.
func (d *Definition) Import(def *schema.ImportDefinition) (*ImportSpec, bool) {
	for _, spec := range d.imports {
		if spec.Definition == def {
			return spec, true
		}
	}
	return nil, false
}

// Export finds the binding for an export definition by identity.
func (d *Definition) Export(def *schema.ExportDefinition) (*ExportSpec, bool) {
	for _, spec := range d.exports {
		if spec.Definition == def {
			return spec, true
		}
	}
	return nil, false
}

// ImportNamed finds an import binding by member or parameter name.
func (d *Definition) ImportNamed(name string) (*ImportSpec, bool) {
	for _, spec := range d.imports {
		if spec.Name == name {
			return spec, true
		}
	}
	return nil, false
}

// ExportNamed finds an export binding by member name.
func (d *Definition) ExportNamed(name string) (*ExportSpec, bool) {
	for _, spec := range d.exports {
		if spec.Name == name {
			return spec, true
		}
	}
	return nil, false
}

// RequiresActivation reports whether composing the part needs an instance.
func (d *Definition) RequiresActivation() bool {
	if len(d.imports) > 0 {
		return true
	}
	for _, spec := range d.exports {
		if spec.RequiresInstance {
			return true
		}
	}
	return false
}

// clone returns a shallow copy whose spec slices can be replaced.
func (d *Definition) clone() *Definition {
	c := *d
	c.imports = make([]*ImportSpec, len(d.imports))
	for i, spec := range d.imports {
		s := *spec
		c.imports[i] = &s
	}
	c.exports = make([]*ExportSpec, len(d.exports))
	for i, spec := range d.exports {
		s := *spec
		c.exports[i] = &s
	}
	return &c
}

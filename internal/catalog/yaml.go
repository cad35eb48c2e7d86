package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// yamlRoot is the top-level shape of a YAML manifest file. It carries the
// same information as the HCL form; constraints are HCL expression strings.
type yamlRoot struct {
	Parts []yamlPart `yaml:"parts"`
}

type yamlPart struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Imports     []yamlImport `yaml:"imports"`
	Exports     []yamlExport `yaml:"exports"`
}

type yamlImport struct {
	Member       string `yaml:"member"`
	Contract     string `yaml:"contract"`
	Cardinality  string `yaml:"cardinality"`
	Prerequisite *bool  `yaml:"prerequisite"`
	Recomposable *bool  `yaml:"recomposable"`
	Constraint   string `yaml:"constraint"`
}

type yamlExport struct {
	Member   string         `yaml:"member"`
	Contract string         `yaml:"contract"`
	Metadata map[string]any `yaml:"metadata"`
}

func parseYAMLFile(file string) ([]*PartManifest, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open YAML file %s: %w", file, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var root yamlRoot
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", file, err)
	}

	parts := make([]*PartManifest, 0, len(root.Parts))
	for i, yp := range root.Parts {
		if yp.Name == "" {
			return nil, fmt.Errorf("invalid manifest in %s: part #%d has no name", file, i+1)
		}
		pm, err := translateYAMLPart(yp, file)
		if err != nil {
			return nil, fmt.Errorf("invalid manifest in %s: %w", file, err)
		}
		parts = append(parts, pm)
	}
	return parts, nil
}

func translateYAMLPart(yp yamlPart, file string) (*PartManifest, error) {
	pm := &PartManifest{
		Name:        yp.Name,
		Description: yp.Description,
		File:        file,
	}
	for _, yi := range yp.Imports {
		im := &ImportManifest{
			Member:       yi.Member,
			Contract:     yi.Contract,
			Cardinality:  yi.Cardinality,
			Prerequisite: yi.Prerequisite,
			Recomposable: yi.Recomposable,
		}
		if yi.Constraint != "" {
			expr, diags := hclsyntax.ParseExpression([]byte(yi.Constraint), file, hcl.InitialPos)
			if diags.HasErrors() {
				return nil, fmt.Errorf("part '%s': import '%s': invalid constraint: %w", yp.Name, yi.Member, diags)
			}
			im.Constraint = expr
		}
		pm.Imports = append(pm.Imports, im)
	}
	for _, ye := range yp.Exports {
		em := &ExportManifest{Member: ye.Member, Contract: ye.Contract}
		if len(ye.Metadata) > 0 {
			em.Metadata = make(map[string]any, len(ye.Metadata))
			for k, v := range ye.Metadata {
				cv, err := yamlToCty(v)
				if err != nil {
					return nil, fmt.Errorf("part '%s': export '%s': metadata '%s': %w", yp.Name, ye.Member, k, err)
				}
				em.Metadata[k] = cv
			}
		}
		pm.Exports = append(pm.Exports, em)
	}
	return pm, nil
}

// yamlToCty converts a decoded YAML value so that YAML and HCL manifests
// hand the registry the same metadata representation.
func yamlToCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(t), nil
	case bool:
		return cty.BoolVal(t), nil
	case int:
		return cty.NumberIntVal(int64(t)), nil
	case int64:
		return cty.NumberIntVal(t), nil
	case uint64:
		return cty.NumberUIntVal(t), nil
	case float64:
		return cty.NumberFloatVal(t), nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(t))
		for i, e := range t {
			cv, err := yamlToCty(e)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = cv
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t))
		for k, e := range t {
			cv, err := yamlToCty(e)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported YAML value of type %T", v)
	}
}

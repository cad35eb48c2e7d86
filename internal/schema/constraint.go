// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Variables an HCL constraint expression may reference.
const (
	constraintContractVar = "contract"
	constraintMetadataVar = "metadata"
)

func compileConstraint(d *ImportDefinition) (Constraint, error) {
	var exprCheck Constraint
	if d.expr != nil && !isNullExpr(d.expr) {
		for _, traversal := range d.expr.Variables() {
			switch traversal.RootName() {
			case constraintContractVar, constraintMetadataVar:
			default:
				return nil, fmt.Errorf("constraint for '%s' references unknown variable '%s' at %s", d.contractName, traversal.RootName(), traversal.SourceRange())
			}
		}
		expr := d.expr
		exprCheck = func(exp *ExportDefinition) bool {
			return evalConstraintExpr(expr, exp)
		}
	}

	contract := d.contractName
	required := append([]string(nil), d.requiredMetadata...)
	predicate := d.predicate

	return func(exp *ExportDefinition) bool {
		if exp == nil {
			return false
		}
		if contract != "" && exp.contractName != contract {
			return false
		}
		for _, key := range required {
			if _, ok := exp.metadata[key]; !ok {
				return false
			}
		}
		if predicate != nil && !predicate(exp) {
			return false
		}
		if exprCheck != nil && !exprCheck(exp) {
			return false
		}
		return true
	}, nil
}

// isNullExpr reports whether expr is a static null, which is what gohcl
// leaves behind for an omitted optional expression attribute.
func isNullExpr(expr hcl.Expression) bool {
	if len(expr.Variables()) > 0 {
		return false
	}
	v, diags := expr.Value(nil)
	return !diags.HasErrors() && v.IsNull()
}

func evalConstraintExpr(expr hcl.Expression, exp *ExportDefinition) bool {
	md, err := MetadataValue(exp.metadata)
	if err != nil {
		return false
	}
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			constraintContractVar: cty.StringVal(exp.contractName),
			constraintMetadataVar: md,
		},
	}
	v, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return false
	}
	v, err = convert.Convert(v, cty.Bool)
	if err != nil || !v.IsKnown() || v.IsNull() {
		return false
	}
	return v.True()
}

// MetadataValue converts a metadata map into a cty object. Values that are
// already cty.Value are used as-is; others are converted with gocty.
func MetadataValue(metadata map[string]any) (cty.Value, error) {
	if len(metadata) == 0 {
		return cty.EmptyObjectVal, nil
	}
	attrs := make(map[string]cty.Value, len(metadata))
	for k, v := range metadata {
		cv, err := ToCtyValue(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("metadata '%s': %w", k, err)
		}
		attrs[k] = cv
	}
	return cty.ObjectVal(attrs), nil
}

// ToCtyValue converts a native Go value into its cty equivalent.
func ToCtyValue(v any) (cty.Value, error) {
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
package schema

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/partgrid/internal/composition"
)

// Constraint reports whether an export can satisfy an import.
type Constraint func(*ExportDefinition) bool

// ImportDefinition describes a requirement declared by a part. It is
// immutable once constructed; the constraint is compiled on first use and
// cached.
type ImportDefinition struct {
	contractName     string
	cardinality      Cardinality
	prerequisite     bool
	recomposable     bool
	requiredMetadata []string
	predicate        Constraint
	expr             hcl.Expression

	compileOnce sync.Once
	constraint  Constraint
	compileErr  error
}

// ImportOption configures an ImportDefinition.
type ImportOption func(*ImportDefinition)

// WithCardinality sets the cardinality. The default is ExactlyOne.
func WithCardinality(c Cardinality) ImportOption {
	return func(d *ImportDefinition) { d.cardinality = c }
}

// NotPrerequisite marks the import as optional for producing exports.
func NotPrerequisite() ImportOption {
	return func(d *ImportDefinition) { d.prerequisite = false }
}

// Recomposable allows the import to be set again after composition.
func Recomposable() ImportOption {
	return func(d *ImportDefinition) { d.recomposable = true }
}

// WithPrerequisite sets the prerequisite flag explicitly.
func WithPrerequisite(v bool) ImportOption {
	return func(d *ImportDefinition) { d.prerequisite = v }
}

// WithRecomposable sets the recomposable flag explicitly.
func WithRecomposable(v bool) ImportOption {
	return func(d *ImportDefinition) { d.recomposable = v }
}

// RequireMetadata restricts matching exports to those carrying every key.
func RequireMetadata(keys ...string) ImportOption {
	return func(d *ImportDefinition) { d.requiredMetadata = append(d.requiredMetadata, keys...) }
}

// WithConstraint adds a Go predicate to the import's constraint.
func WithConstraint(fn Constraint) ImportOption {
	return func(d *ImportDefinition) { d.predicate = fn }
}

// WithConstraintExpr adds an HCL expression to the import's constraint. The
// expression may reference `contract` and `metadata` and must evaluate to
// a bool.
func WithConstraintExpr(expr hcl.Expression) ImportOption {
	return func(d *ImportDefinition) { d.expr = expr }
}

// NewImportDefinition creates an import definition. An empty contract name
// matches any contract.
func NewImportDefinition(contractName string, opts ...ImportOption) (*ImportDefinition, error) {
	d := &ImportDefinition{
		contractName: contractName,
		cardinality:  ExactlyOne,
		prerequisite: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	if !d.cardinality.IsValid() {
		return nil, composition.Wrap(composition.ErrInvalidCardinality, "", contractName, fmt.Errorf("value %d", int(d.cardinality)))
	}
	return d, nil
}

// MustImportDefinition is NewImportDefinition that panics on error.
func MustImportDefinition(contractName string, opts ...ImportOption) *ImportDefinition {
	d, err := NewImportDefinition(contractName, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// With returns a new definition with the same settings plus opts applied.
// The receiver is not modified.
func (d *ImportDefinition) With(opts ...ImportOption) (*ImportDefinition, error) {
	base := []ImportOption{
		WithCardinality(d.cardinality),
		RequireMetadata(d.requiredMetadata...),
		WithConstraint(d.predicate),
		WithConstraintExpr(d.expr),
		func(n *ImportDefinition) {
			n.prerequisite = d.prerequisite
			n.recomposable = d.recomposable
		},
	}
	return NewImportDefinition(d.contractName, append(base, opts...)...)
}

// ContractName returns the required contract, empty meaning any.
func (d *ImportDefinition) ContractName() string { return d.contractName }

// Cardinality returns the declared cardinality.
func (d *ImportDefinition) Cardinality() Cardinality { return d.cardinality }

// IsPrerequisite reports whether the import must be set before instance
// exports can be read.
func (d *ImportDefinition) IsPrerequisite() bool { return d.prerequisite }

// IsRecomposable reports whether the import may be set after composition.
func (d *ImportDefinition) IsRecomposable() bool { return d.recomposable }

// ConstraintExpr returns the HCL constraint expression, if any.
func (d *ImportDefinition) ConstraintExpr() hcl.Expression { return d.expr }

// Constraint returns the compiled constraint.
func (d *ImportDefinition) Constraint() (Constraint, error) {
	d.compileOnce.Do(func() {
		d.constraint, d.compileErr = compileConstraint(d)
	})
	return d.constraint, d.compileErr
}

// IsConstraintSatisfiedBy reports whether exp can satisfy the import. A
// constraint that fails to compile is satisfied by nothing.
func (d *ImportDefinition) IsConstraintSatisfiedBy(exp *ExportDefinition) bool {
	c, err := d.Constraint()
	if err != nil {
		return false
	}
	return c(exp)
}

// String renders the contract and the flags of the import.
func (d *ImportDefinition) String() string {
	contract := d.contractName
	if contract == "" {
		contract = "*"
	}
	flags := []string{d.cardinality.String()}
	if d.prerequisite {
		flags = append(flags, "prerequisite")
	}
	if d.recomposable {
		flags = append(flags, "recomposable")
	}
	return fmt.Sprintf("%s (%s)", contract, strings.Join(flags, ", "))
}

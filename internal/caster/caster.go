// Package caster delivers raw exported values into statically typed import
// slots. A value that does not have the required shape is reported as a
// contract mismatch naming the element it came from.
//
// Values that cross the composition boundary as cty.Value (manifest literals
// and dynamically loaded plugins) are decoded with gocty, the same way module
// inputs are decoded from HCL.
package caster

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ExportFunc turns a resolved export into the value an import slot receives.
type ExportFunc func(exp *schema.Export) (any, error)

// Cast converts raw into T. A nil raw value yields the zero T.
func Cast[T any](element string, raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	if v, ok := raw.(T); ok {
		return v, nil
	}

	required := reflect.TypeFor[T]()
	if cv, ok := raw.(cty.Value); ok && required != reflect.TypeFor[cty.Value]() {
		if cv.IsNull() {
			return zero, nil
		}
		var out T
		if err := gocty.FromCtyValue(cv, &out); err != nil {
			return zero, composition.Wrap(composition.ErrContractMismatch, "", element,
				fmt.Errorf("cannot decode %s into %s: %w", cv.Type().FriendlyName(), required, err))
		}
		return out, nil
	}

	return zero, composition.Wrap(composition.ErrContractMismatch, "", element,
		fmt.Errorf("value of type %T cannot be used as %s", raw, required))
}

// Value reads an export and casts its value to T.
func Value[T any](element string, exp *schema.Export) (T, error) {
	raw, err := exp.Value()
	if err != nil {
		var zero T
		return zero, err
	}
	return Cast[T](element, raw)
}

// Lazy wraps an export in a deferred accessor. The export is not read until
// the accessor is called.
func Lazy[T any](element string, exp *schema.Export) func() (T, error) {
	return func() (T, error) {
		return Value[T](element, exp)
	}
}

// ValueOf returns an ExportFunc that reads and casts the export eagerly.
func ValueOf[T any](element string) ExportFunc {
	return func(exp *schema.Export) (any, error) {
		return Value[T](element, exp)
	}
}

// LazyOf returns an ExportFunc that produces a deferred accessor of type
// func() (T, error) without reading the export.
func LazyOf[T any](element string) ExportFunc {
	return func(exp *schema.Export) (any, error) {
		return Lazy[T](element, exp), nil
	}
}

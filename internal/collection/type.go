package collection

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/partgrid/internal/caster"
	"github.com/specialistvlad/partgrid/internal/composition"
)

// Type describes the declared type of a many-valued import.
type Type struct {
	name       string
	element    reflect.Type
	assignable bool
	build      func(items []any) (any, error)
	newFn      func() any
	view       func(v any) (Mutable, error)
}

// SliceOf describes a []T import. Slices are always assigned wholesale.
func SliceOf[T any]() *Type {
	name := reflect.TypeFor[[]T]().String()
	return &Type{
		name:       name,
		element:    reflect.TypeFor[T](),
		assignable: true,
		build: func(items []any) (any, error) {
			out := make([]T, 0, len(items))
			for _, item := range items {
				v, err := caster.Cast[T](name, item)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		},
	}
}

// Of describes an import into a part-owned collection C. newFn is the
// zero-argument constructor used when the slot is empty; it may be nil, in
// which case the part must provide the collection itself.
func Of[C Collection[T], T any](newFn func() C) *Type {
	name := reflect.TypeFor[C]().String()
	t := &Type{
		name:    name,
		element: reflect.TypeFor[T](),
		view: func(v any) (Mutable, error) {
			c, ok := v.(C)
			if !ok {
				return nil, fmt.Errorf("value of type %T is not a %s", v, name)
			}
			return &objectView[T]{coll: c, name: name}, nil
		},
	}
	if newFn != nil {
		t.newFn = func() any { return newFn() }
	}
	return t
}

// ListOf describes an import into a *List[T], created on demand.
func ListOf[T any]() *Type {
	return Of[*List[T], T](func() *List[T] { return NewList[T]() })
}

// Name returns the declared type name.
func (t *Type) Name() string { return t.name }

// Element returns the element type, nil when it cannot be determined.
func (t *Type) Element() reflect.Type { return t.element }

// Assignable reports whether a whole new collection can be assigned.
func (t *Type) Assignable() bool { return t.assignable }

// HasConstructor reports whether the type can be created empty.
func (t *Type) HasConstructor() bool { return t.newFn != nil }

// Build creates a whole collection value holding items.
func (t *Type) Build(items []any) (any, error) {
	if t.build == nil {
		return nil, fmt.Errorf("%s cannot be assigned wholesale", t.name)
	}
	return t.build(items)
}

// New creates an empty collection with the zero-argument constructor.
func (t *Type) New() (any, error) {
	if t.newFn == nil {
		return nil, fmt.Errorf("%s has no zero-argument constructor", t.name)
	}
	var v any
	err := composition.Guard(func() error {
		v = t.newFn()
		return nil
	})
	return v, err
}

// View wraps v in the uniform Mutable view.
func (t *Type) View(v any) (Mutable, error) {
	if t.view == nil {
		return nil, fmt.Errorf("%s cannot be modified in place", t.name)
	}
	return t.view(v)
}

// objectView adapts a Collection[T] to Mutable. Calls into the collection
// are guarded since they are user code.
type objectView[T any] struct {
	coll Collection[T]
	name string
}

func (v *objectView[T]) ReadOnly() (bool, error) {
	var ro bool
	err := composition.Guard(func() error {
		ro = v.coll.ReadOnly()
		return nil
	})
	return ro, err
}

func (v *objectView[T]) Clear() error {
	return composition.Guard(v.coll.Clear)
}

func (v *objectView[T]) Add(item any) error {
	typed, err := caster.Cast[T](v.name, item)
	if err != nil {
		return err
	}
	return composition.Guard(func() error { return v.coll.Add(typed) })
}

package collection

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/schema"
)

// Slot is the member of a part instance that receives an import's value.
// Get is nil for a slot that cannot be read; Set is nil for a slot that
// cannot be written.
type Slot struct {
	Part        string
	Name        string
	Cardinality schema.Cardinality
	Type        *Type
	Get         func() (any, error)
	Set         func(value any) error
}

// Writable reports whether the slot can be assigned.
func (s Slot) Writable() bool { return s.Set != nil }

// Write assigns value to the slot.
func (s Slot) Write(value any) error {
	if s.Set == nil {
		return composition.Wrap(composition.ErrMemberNotWritable, s.Part, s.Name, nil)
	}
	if err := composition.Guard(func() error { return s.Set(value) }); err != nil {
		return composition.WrapOp(composition.ErrMemberSetFailed, s.Part, s.Name, "set", err)
	}
	return nil
}

// RequiresNormalization reports whether a many-valued import must be merged
// into an existing collection instead of being assigned wholesale.
func RequiresNormalization(c schema.Cardinality, writable bool, t *Type) bool {
	if c != schema.ZeroOrMore {
		return false
	}
	return !writable || t == nil || !t.Assignable()
}

// Deliver writes the values of a many-valued import into the slot. Either
// the whole collection is replaced, or the existing collection is cleared and
// repopulated. Any failure aborts the delivery.
func Deliver(slot Slot, items []any) error {
	if !RequiresNormalization(slot.Cardinality, slot.Writable(), slot.Type) {
		value, err := slot.Type.Build(items)
		if err != nil {
			return composition.Wrap(composition.ErrContractMismatch, slot.Part, slot.Name, err)
		}
		return slot.Write(value)
	}
	return normalize(slot, items)
}

func normalize(slot Slot, items []any) error {
	if slot.Type == nil || slot.Type.Element() == nil {
		return composition.Wrap(composition.ErrCollectionNull, slot.Part, slot.Name,
			fmt.Errorf("cannot determine the collection element type"))
	}

	var current any
	if slot.Get != nil {
		err := composition.Guard(func() error {
			var err error
			current, err = slot.Get()
			return err
		})
		if err != nil {
			return composition.WrapOp(composition.ErrCollectionOperationFailed, slot.Part, slot.Name, "get", err)
		}
	}

	if isNil(current) {
		if !slot.Type.HasConstructor() {
			return composition.Wrap(composition.ErrCollectionNull, slot.Part, slot.Name,
				fmt.Errorf("slot holds no collection and %s has no zero-argument constructor; the part must provide one", slot.Type.Name()))
		}
		created, err := slot.Type.New()
		if err != nil {
			return composition.WrapOp(composition.ErrCollectionOperationFailed, slot.Part, slot.Name, "new", err)
		}
		if err := slot.Write(created); err != nil {
			return err
		}
		current = created
	}

	view, err := slot.Type.View(current)
	if err != nil {
		return composition.Wrap(composition.ErrCollectionNull, slot.Part, slot.Name, err)
	}

	readOnly, err := view.ReadOnly()
	if err != nil {
		return composition.WrapOp(composition.ErrCollectionOperationFailed, slot.Part, slot.Name, "ReadOnly", err)
	}
	if readOnly {
		return composition.Wrap(composition.ErrCollectionReadOnly, slot.Part, slot.Name, nil)
	}

	if err := view.Clear(); err != nil {
		return composition.WrapOp(composition.ErrCollectionOperationFailed, slot.Part, slot.Name, "Clear", err)
	}
	for _, item := range items {
		if err := view.Add(item); err != nil {
			return composition.WrapOp(composition.ErrCollectionOperationFailed, slot.Part, slot.Name, "Add", err)
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

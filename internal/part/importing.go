package part

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/partgrid/internal/collection"
	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/registry"
	"github.com/specialistvlad/partgrid/internal/schema"
)

// importingItem is the per-part view of an import binding.
type importingItem struct {
	part string
	spec *registry.ImportSpec
}

func (it *importingItem) name() string { return it.spec.Name }

func (it *importingItem) definition() *schema.ImportDefinition { return it.spec.Definition }

// castExports converts the exports supplied for the import into the value
// held until delivery: a single element (nil when absent) or, for a
// many-valued import, a []any of elements.
func (it *importingItem) castExports(exports []*schema.Export) (any, error) {
	if it.definition().Cardinality() == schema.ZeroOrMore {
		items := make([]any, 0, len(exports))
		for _, exp := range exports {
			v, err := it.convert(exp)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	}
	if len(exports) == 0 {
		return nil, nil
	}
	return it.convert(exports[0])
}

func (it *importingItem) convert(exp *schema.Export) (any, error) {
	v, err := it.spec.Convert(exp)
	if err == nil {
		return v, nil
	}
	var ce *composition.Error
	if errors.As(err, &ce) && ce.Part == "" {
		scoped := *ce
		scoped.Part = it.part
		return nil, &scoped
	}
	return nil, composition.Wrap(composition.ErrExportFailed, it.part, it.name(), err)
}

// emptyValue is the value delivered for a missing import that tolerates
// zero exports.
func (it *importingItem) emptyValue() any {
	if it.definition().Cardinality() == schema.ZeroOrMore {
		return []any{}
	}
	return nil
}

// parameterValue shapes a held value into a constructor argument.
func (it *importingItem) parameterValue(value any) (any, error) {
	if it.definition().Cardinality() != schema.ZeroOrMore {
		return value, nil
	}
	t := it.spec.Type
	if t == nil || !t.Assignable() {
		name := "undeclared type"
		if t != nil {
			name = t.Name()
		}
		return nil, composition.Wrap(composition.ErrInvalidConfiguration, it.part, it.name(),
			fmt.Errorf("many-valued constructor parameter of %s cannot be assigned a new collection", name))
	}
	items, _ := value.([]any)
	v, err := t.Build(items)
	if err != nil {
		return nil, composition.Wrap(composition.ErrContractMismatch, it.part, it.name(), err)
	}
	return v, nil
}

// deliver writes a held value into the member of instance.
func (it *importingItem) deliver(instance, value any) error {
	slot := collection.Slot{
		Part:        it.part,
		Name:        it.name(),
		Cardinality: it.definition().Cardinality(),
		Type:        it.spec.Type,
	}
	if get := it.spec.Get; get != nil {
		slot.Get = func() (any, error) { return get(instance) }
	}
	if set := it.spec.Set; set != nil {
		slot.Set = func(v any) error { return set(instance, v) }
	}

	if slot.Cardinality == schema.ZeroOrMore {
		items, _ := value.([]any)
		return collection.Deliver(slot, items)
	}
	return slot.Write(value)
}

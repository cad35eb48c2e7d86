package registry

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/specialistvlad/partgrid/internal/caster"
	"github.com/specialistvlad/partgrid/internal/collection"
	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/schema"
)

// SelfMember is the member name of an export that publishes the instance
// itself.
const SelfMember = "self"

// Args holds the constructor arguments of a part, indexed by position.
type Args []any

// Arg returns the argument at position as T. Arguments arrive already cast
// to the parameter's declared type, so a missing or empty argument yields
// the zero T.
func Arg[T any](args Args, position int) T {
	var zero T
	if position < 0 || position >= len(args) {
		return zero
	}
	v, ok := args[position].(T)
	if !ok {
		return zero
	}
	return v
}

// Builder assembles the Definition of a part whose instances are of type P.
// Configuration mistakes are collected and reported together by Build.
type Builder[P any] struct {
	def           *Definition
	ctorTakesArgs bool
	result        composition.Result
}

// NewPart starts the definition of a part named name.
func NewPart[P any](name string) *Builder[P] {
	return &Builder[P]{def: &Definition{name: name}}
}

// Describe sets the part's description.
func (b *Builder[P]) Describe(description string) *Builder[P] {
	b.def.description = description
	return b
}

// Constructor sets a zero-argument constructor.
func (b *Builder[P]) Constructor(fn func() (P, error)) *Builder[P] {
	b.ctorTakesArgs = false
	b.def.constructor = func([]any) (any, error) {
		p, err := fn()
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return b
}

// ConstructorWith sets a constructor that receives the parameters declared
// with Param and ParamMany.
func (b *Builder[P]) ConstructorWith(fn func(args Args) (P, error)) *Builder[P] {
	b.ctorTakesArgs = true
	b.def.constructor = func(args []any) (any, error) {
		p, err := fn(args)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return b
}

// AddImport appends a hand-assembled import binding. Parameters are
// positioned in the order they are added.
func (b *Builder[P]) AddImport(spec ImportSpec) *Builder[P] {
	if spec.Definition == nil {
		b.fail(spec.Name, errors.New("import has no definition"))
		return b
	}
	if spec.Convert == nil {
		b.fail(spec.Name, errors.New("import has no value conversion"))
		return b
	}
	if spec.Parameter {
		spec.Position = len(b.def.Parameters())
	}
	b.def.imports = append(b.def.imports, &spec)
	return b
}

// AddExport appends a hand-assembled export binding.
func (b *Builder[P]) AddExport(spec ExportSpec) *Builder[P] {
	if spec.Definition == nil {
		b.fail(spec.Name, errors.New("export has no definition"))
		return b
	}
	if spec.Get == nil {
		b.fail(spec.Name, errors.New("export has no getter"))
		return b
	}
	b.def.exports = append(b.def.exports, &spec)
	return b
}

// Build validates and returns the definition.
func (b *Builder[P]) Build() (*Definition, error) {
	result := b.result
	if b.def.name == "" {
		result = result.MergeError(composition.Wrap(composition.ErrInvalidConfiguration, "", "", errors.New("part has no name")))
	}

	importNames := make(map[string]bool)
	for _, spec := range b.def.imports {
		if importNames[spec.Name] {
			result = result.MergeError(b.configErr(spec.Name, errors.New("import declared more than once")))
		}
		importNames[spec.Name] = true

		if spec.Parameter && spec.Definition.IsRecomposable() {
			result = result.MergeError(b.configErr(spec.Name, errors.New("constructor parameters cannot be recomposable")))
		}
		if spec.Parameter && !spec.Definition.IsPrerequisite() {
			result = result.MergeError(b.configErr(spec.Name, errors.New("constructor parameters are always prerequisites")))
		}
	}

	exportNames := make(map[string]bool)
	for _, spec := range b.def.exports {
		if exportNames[spec.Name] {
			result = result.MergeError(b.configErr(spec.Name, errors.New("export declared more than once")))
		}
		exportNames[spec.Name] = true
	}

	if len(b.def.Parameters()) > 0 {
		switch {
		case b.def.constructor == nil:
			result = result.MergeError(b.configErr("", errors.New("constructor parameters declared without a constructor")))
		case !b.ctorTakesArgs:
			result = result.MergeError(b.configErr("", errors.New("constructor parameters declared but the constructor takes no arguments")))
		}
	}

	if err := result.Err(); err != nil {
		return nil, err
	}
	return b.def.clone(), nil
}

// MustBuild is like Build but panics on a configuration error. It is meant
// for package-level part declarations.
func (b *Builder[P]) MustBuild() *Definition {
	def, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("part '%s' is misconfigured: %v", b.def.name, err))
	}
	return def
}

func (b *Builder[P]) configErr(element string, cause error) error {
	return composition.Wrap(composition.ErrInvalidConfiguration, b.def.name, element, cause)
}

func (b *Builder[P]) fail(element string, cause error) {
	b.result = b.result.MergeError(b.configErr(element, cause))
}

func (b *Builder[P]) importDefinition(element, contract string, opts []schema.ImportOption) *schema.ImportDefinition {
	def, err := schema.NewImportDefinition(contract, opts...)
	if err != nil {
		b.fail(element, err)
		return nil
	}
	return def
}

func (b *Builder[P]) manyDefinition(element, contract string, opts []schema.ImportOption) *schema.ImportDefinition {
	opts = append([]schema.ImportOption{schema.WithCardinality(schema.ZeroOrMore)}, opts...)
	def := b.importDefinition(element, contract, opts)
	if def != nil && def.Cardinality() != schema.ZeroOrMore {
		b.fail(element, fmt.Errorf("many-valued import declared with cardinality %s", def.Cardinality()))
		return nil
	}
	return def
}

func (b *Builder[P]) singleDefinition(element, contract string, opts []schema.ImportOption) *schema.ImportDefinition {
	def := b.importDefinition(element, contract, opts)
	if def != nil && def.Cardinality() == schema.ZeroOrMore {
		b.fail(element, errors.New("many-valued imports must be declared with ImportMany, ImportInto or ParamMany"))
		return nil
	}
	return def
}

// bind asserts that an instance handed back by the engine is a P.
func bind[P any](part, element string, instance any) (P, error) {
	p, ok := instance.(P)
	if !ok {
		var zero P
		return zero, composition.Wrap(composition.ErrContractMismatch, part, element,
			fmt.Errorf("instance of type %T is not a %s", instance, reflect.TypeFor[P]()))
	}
	return p, nil
}

// Import declares a single-valued member import of contract. The resolved
// export is read eagerly and cast to T.
func Import[P, T any](b *Builder[P], member, contract string, set func(P, T), opts ...schema.ImportOption) *Builder[P] {
	def := b.singleDefinition(member, contract, opts)
	if def == nil {
		return b
	}
	return b.AddImport(ImportSpec{
		Name:       member,
		Definition: def,
		Convert:    caster.ValueOf[T](member),
		Set:        setter[P, T](b.def.name, member, set),
	})
}

// ImportLazy declares a single-valued member import that receives a deferred
// accessor. The export is only read when the accessor is called.
func ImportLazy[P, T any](b *Builder[P], member, contract string, set func(P, func() (T, error)), opts ...schema.ImportOption) *Builder[P] {
	def := b.singleDefinition(member, contract, opts)
	if def == nil {
		return b
	}
	return b.AddImport(ImportSpec{
		Name:       member,
		Definition: def,
		Convert:    caster.LazyOf[T](member),
		Set:        setter[P, func() (T, error)](b.def.name, member, set),
	})
}

// ImportMany declares a many-valued member import assigned as a []T.
func ImportMany[P, T any](b *Builder[P], member, contract string, set func(P, []T), opts ...schema.ImportOption) *Builder[P] {
	def := b.manyDefinition(member, contract, opts)
	if def == nil {
		return b
	}
	if set == nil {
		b.fail(member, errors.New("ImportMany requires a setter; use ImportInto for part-owned collections"))
		return b
	}
	return b.AddImport(ImportSpec{
		Name:       member,
		Definition: def,
		Convert:    caster.ValueOf[T](member),
		Type:       collection.SliceOf[T](),
		Set:        setter[P, []T](b.def.name, member, set),
	})
}

// ImportInto declares a many-valued import merged into a collection C owned
// by the part. The existing collection is cleared and repopulated; when the
// member is empty it is created with newFn and assigned with set. Both set
// and newFn may be nil.
func ImportInto[P any, C collection.Collection[T], T any](b *Builder[P], member, contract string, get func(P) C, set func(P, C), newFn func() C, opts ...schema.ImportOption) *Builder[P] {
	def := b.manyDefinition(member, contract, opts)
	if def == nil {
		return b
	}
	if get == nil {
		b.fail(member, errors.New("ImportInto requires a getter"))
		return b
	}
	part := b.def.name
	return b.AddImport(ImportSpec{
		Name:       member,
		Definition: def,
		Convert:    caster.ValueOf[T](member),
		Type:       collection.Of[C, T](newFn),
		Get: func(instance any) (any, error) {
			p, err := bind[P](part, member, instance)
			if err != nil {
				return nil, err
			}
			return get(p), nil
		},
		Set: setter[P, C](part, member, set),
	})
}

// Param declares a single-valued constructor parameter of contract.
func Param[P, T any](b *Builder[P], name, contract string, opts ...schema.ImportOption) *Builder[P] {
	def := b.singleDefinition(name, contract, opts)
	if def == nil {
		return b
	}
	return b.AddImport(ImportSpec{
		Name:       name,
		Definition: def,
		Parameter:  true,
		Convert:    caster.ValueOf[T](name),
	})
}

// ParamMany declares a many-valued constructor parameter passed as a []T.
func ParamMany[P, T any](b *Builder[P], name, contract string, opts ...schema.ImportOption) *Builder[P] {
	def := b.manyDefinition(name, contract, opts)
	if def == nil {
		return b
	}
	return b.AddImport(ImportSpec{
		Name:       name,
		Definition: def,
		Parameter:  true,
		Convert:    caster.ValueOf[T](name),
		Type:       collection.SliceOf[T](),
	})
}

// Export publishes the value returned by get under contract.
func Export[P, T any](b *Builder[P], member, contract string, get func(P) T, metadata map[string]any) *Builder[P] {
	part := b.def.name
	return b.AddExport(ExportSpec{
		Name:             member,
		Definition:       schema.NewExportDefinition(contract, metadata),
		RequiresInstance: true,
		Get: func(instance any) (any, error) {
			p, err := bind[P](part, member, instance)
			if err != nil {
				return nil, err
			}
			return get(p), nil
		},
	})
}

// ExportValue publishes a value that does not depend on an instance.
func ExportValue[P, T any](b *Builder[P], member, contract string, get func() T, metadata map[string]any) *Builder[P] {
	return b.AddExport(ExportSpec{
		Name:       member,
		Definition: schema.NewExportDefinition(contract, metadata),
		Get: func(any) (any, error) {
			return get(), nil
		},
	})
}

// ExportSelf publishes the part instance itself under contract.
func ExportSelf[P any](b *Builder[P], contract string, metadata map[string]any) *Builder[P] {
	return Export(b, SelfMember, contract, func(p P) P { return p }, metadata)
}

func setter[P, T any](part, member string, set func(P, T)) func(instance, value any) error {
	if set == nil {
		return nil
	}
	return func(instance, value any) error {
		p, err := bind[P](part, member, instance)
		if err != nil {
			return err
		}
		v, err := caster.Cast[T](member, value)
		if err != nil {
			return err
		}
		set(p, v)
		return nil
	}
}

package part

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/specialistvlad/partgrid/internal/cardinality"
	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/ctxlog"
	"github.com/specialistvlad/partgrid/internal/registry"
	"github.com/specialistvlad/partgrid/internal/schema"
	"golang.org/x/sync/singleflight"
)

// ImportsSatisfiedNotifier is implemented by instances that want to know
// when their imports have been delivered.
type ImportsSatisfiedNotifier interface {
	OnImportsSatisfied() error
}

// Option configures a Part.
type Option func(*Part)

// WithInstance composes a pre-existing instance instead of constructing one.
func WithInstance(instance any) Option {
	return func(p *Part) {
		if !isNil(instance) {
			p.instance.Store(&instanceBox{value: instance})
		}
	}
}

// ImportAssignment pairs an import definition with the exports resolved for it.
type ImportAssignment struct {
	Definition *schema.ImportDefinition
	Exports    []*schema.Export
}

type instanceBox struct {
	value any
}

// Part is a composable unit: a definition, its pending import values and,
// once needed, its instance. A Part is safe for concurrent use.
type Part struct {
	def    *registry.Definition
	id     string
	logger *slog.Logger

	mu                         sync.Mutex
	importValues               map[*schema.ImportDefinition]any
	importsCache               map[*schema.ImportDefinition]*importingItem
	exportsCache               map[*schema.ExportDefinition]*registry.ExportSpec
	initialCompositionComplete bool
	prerequisitesDelivered     bool
	invokeImportsSatisfied     bool
	invokingImportsSatisfied   bool
	prerequisiteErr            error

	instance atomic.Pointer[instanceBox]
	ready    atomic.Bool
	flight   singleflight.Group
}

// New creates a part for def. The logger is taken from ctx.
func New(ctx context.Context, def *registry.Definition, opts ...Option) *Part {
	p := &Part{
		def:                    def,
		id:                     uuid.NewString(),
		importValues:           make(map[*schema.ImportDefinition]any),
		importsCache:           make(map[*schema.ImportDefinition]*importingItem),
		exportsCache:           make(map[*schema.ExportDefinition]*registry.ExportSpec),
		invokeImportsSatisfied: true,
	}
	p.logger = ctxlog.FromContext(ctx).With("part", def.Name(), "part_id", p.id)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the unique id of this part.
func (p *Part) ID() string { return p.id }

// Definition returns the part's definition.
func (p *Part) Definition() *registry.Definition { return p.def }

// String returns the part name.
func (p *Part) String() string { return p.def.Name() }

// Instance returns the instance if one has been created or supplied.
func (p *Part) Instance() (any, bool) {
	box := p.instance.Load()
	if box == nil {
		return nil, false
	}
	return box.value, true
}

// SetImport stores the exports resolved for an import. The exports are
// checked against the import's cardinality and converted now; they reach
// the instance on the next Activate, or when the instance is created.
func (p *Part) SetImport(definition *schema.ImportDefinition, exports []*schema.Export) error {
	p.mu.Lock()
	item, err := p.importingItemLocked(definition)
	if err == nil {
		err = p.checkRecomposableLocked(item)
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}

	if res := cardinality.Check(definition.Cardinality(), exports); res != cardinality.Match {
		return composition.Wrap(res.Err(), p.String(), item.name(),
			fmt.Errorf("%d export(s) supplied for %s", len(exports), definition))
	}

	value, err := item.castExports(exports)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Initial composition may have completed while the exports were converted.
	if err := p.checkRecomposableLocked(item); err != nil {
		return err
	}
	p.importValues[definition] = value
	p.invokeImportsSatisfied = true
	p.logger.Debug("Import value set.", "import", item.name(), "exports", len(exports))
	return nil
}

// SetImports applies every assignment and reports all failures together.
func (p *Part) SetImports(assignments ...ImportAssignment) error {
	var result composition.Result
	for _, a := range assignments {
		result = result.MergeError(p.SetImport(a.Definition, a.Exports))
	}
	return result.Err()
}

// Activate completes composition. On the first call it ensures the instance
// exists, delivers prerequisite imports if they are still pending, then
// the remaining imports, and notifies the instance. Later calls deliver the
// imports set since, which is how recomposition is applied.
func (p *Part) Activate() error {
	p.mu.Lock()
	initial := !p.initialCompositionComplete
	p.mu.Unlock()

	if initial {
		if _, err := p.readyInstance(); err != nil {
			return err
		}
	}
	if err := p.setNonPrerequisiteImports(initial); err != nil {
		return err
	}
	if err := p.notifyImportsSatisfied(); err != nil {
		return err
	}

	p.mu.Lock()
	if !p.initialCompositionComplete {
		p.initialCompositionComplete = true
		p.logger.Debug("Initial composition complete.")
	}
	p.mu.Unlock()
	return nil
}

// GetExportedValue returns the value of one of the part's exports. Exports
// that need an instance create it on first use; this requires every
// prerequisite import to have been set.
func (p *Part) GetExportedValue(definition *schema.ExportDefinition) (any, error) {
	p.mu.Lock()
	spec, err := p.exportingMemberLocked(definition)
	if err == nil && spec.RequiresInstance {
		err = p.ensureGettableLocked()
	}
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var instance any
	if spec.RequiresInstance {
		if instance, err = p.readyInstance(); err != nil {
			return nil, err
		}
	}

	var value any
	err = composition.Guard(func() error {
		var err error
		value, err = spec.Get(instance)
		return err
	})
	if err != nil {
		return nil, composition.Wrap(composition.ErrExportFailed, p.String(), spec.Name, err)
	}
	return value, nil
}

// ExportFor returns a lazy Export bound to this part. Reading it calls
// GetExportedValue.
func (p *Part) ExportFor(definition *schema.ExportDefinition) (*schema.Export, error) {
	p.mu.Lock()
	_, err := p.exportingMemberLocked(definition)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return schema.NewExport(definition, func() (any, error) {
		return p.GetExportedValue(definition)
	}), nil
}

func (p *Part) checkRecomposableLocked(item *importingItem) error {
	if p.initialCompositionComplete && !item.definition().IsRecomposable() {
		return composition.Wrap(composition.ErrRecompositionNotAllowed, p.String(), item.name(), nil)
	}
	return nil
}

func (p *Part) importingItemLocked(definition *schema.ImportDefinition) (*importingItem, error) {
	if item, ok := p.importsCache[definition]; ok {
		return item, nil
	}
	spec, ok := p.def.Import(definition)
	if !ok {
		return nil, composition.Wrap(composition.ErrNotOnThisPart, p.String(), "",
			fmt.Errorf("import %s", definition))
	}
	item := &importingItem{part: p.String(), spec: spec}
	p.importsCache[definition] = item
	return item, nil
}

func (p *Part) exportingMemberLocked(definition *schema.ExportDefinition) (*registry.ExportSpec, error) {
	if spec, ok := p.exportsCache[definition]; ok {
		return spec, nil
	}
	spec, ok := p.def.Export(definition)
	if !ok {
		return nil, composition.Wrap(composition.ErrNotOnThisPart, p.String(), "",
			fmt.Errorf("export %s", definition))
	}
	p.exportsCache[definition] = spec
	return spec, nil
}

// ensureGettableLocked checks that instance exports can be produced: before
// the prerequisites reach the instance, each of them must hold a value.
func (p *Part) ensureGettableLocked() error {
	if p.initialCompositionComplete || p.prerequisitesDelivered {
		return nil
	}
	var result composition.Result
	for _, spec := range p.def.Imports() {
		if !spec.Definition.IsPrerequisite() {
			continue
		}
		if spec.Parameter && p.instance.Load() != nil {
			continue
		}
		if _, ok := p.importValues[spec.Definition]; !ok {
			result = result.MergeError(composition.Wrap(composition.ErrPrerequisiteNotSet, p.String(), spec.Name, nil))
		}
	}
	return result.Err()
}

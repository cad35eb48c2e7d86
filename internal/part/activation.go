package part

import (
	"errors"
	"reflect"

	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/schema"
)

const (
	instanceFlight = "instance"
	readyFlight    = "ready"
)

// pendingValue is an import value taken out of the part for delivery.
type pendingValue struct {
	item  *importingItem
	value any
}

// instanceActivatingIfNeeded returns the instance, constructing it on first
// use. Concurrent callers share a single construction.
func (p *Part) instanceActivatingIfNeeded() (any, error) {
	if box := p.instance.Load(); box != nil {
		return box.value, nil
	}
	v, err, _ := p.flight.Do(instanceFlight, p.activateInstance)
	return v, err
}

// readyInstance returns the instance once its prerequisite imports have
// been delivered. It is nil for parts that never need an instance.
func (p *Part) readyInstance() (any, error) {
	if p.ready.Load() {
		return p.loadInstance(), nil
	}
	v, err, _ := p.flight.Do(readyFlight, func() (any, error) {
		instance, err := p.instanceActivatingIfNeeded()
		if err != nil {
			return nil, err
		}
		if err := p.setPrerequisiteImports(); err != nil {
			return nil, err
		}
		p.ready.Store(true)
		return instance, nil
	})
	return v, err
}

func (p *Part) loadInstance() any {
	if box := p.instance.Load(); box != nil {
		return box.value
	}
	return nil
}

func (p *Part) activateInstance() (any, error) {
	p.mu.Lock()
	if box := p.instance.Load(); box != nil {
		p.mu.Unlock()
		return box.value, nil
	}
	if !p.def.RequiresActivation() {
		p.mu.Unlock()
		return nil, nil
	}
	ctor := p.def.Constructor()
	if ctor == nil {
		p.mu.Unlock()
		return nil, composition.Wrap(composition.ErrConstructorMissing, p.String(), "", nil)
	}
	args, consumed, err := p.constructorArgumentsLocked()
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Constructing part instance.", "args", len(args))
	var created any
	err = composition.Guard(func() error {
		var err error
		created, err = ctor(args)
		return err
	})
	if err == nil && isNil(created) {
		err = errors.New("constructor returned no instance")
	}
	if err != nil {
		return nil, composition.Wrap(composition.ErrConstructorFailed, p.String(), "", err)
	}

	if !p.instance.CompareAndSwap(nil, &instanceBox{value: created}) {
		p.logger.Debug("Discarding constructed instance; another one was published first.")
		return p.instance.Load().value, nil
	}

	p.mu.Lock()
	for _, def := range consumed {
		delete(p.importValues, def)
	}
	p.mu.Unlock()
	p.logger.Debug("Part instance published.")
	return created, nil
}

// constructorArgumentsLocked builds the constructor arguments from the
// parameter imports. It does not remove the values; the caller does once
// the instance is published.
func (p *Part) constructorArgumentsLocked() ([]any, []*schema.ImportDefinition, error) {
	params := p.def.Parameters()
	args := make([]any, len(params))
	var consumed []*schema.ImportDefinition
	var result composition.Result

	for _, spec := range params {
		item, err := p.importingItemLocked(spec.Definition)
		if err != nil {
			result = result.MergeError(err)
			continue
		}
		value, ok := p.importValues[spec.Definition]
		switch {
		case ok:
			consumed = append(consumed, spec.Definition)
		case spec.Definition.Cardinality() == schema.ExactlyOne:
			result = result.MergeError(composition.Wrap(composition.ErrImportNotSet, p.String(), spec.Name, nil))
			continue
		default:
			value = item.emptyValue()
		}

		arg, err := item.parameterValue(value)
		if err != nil {
			result = result.MergeError(err)
			continue
		}
		args[spec.Position] = arg
	}
	return args, consumed, result.Err()
}

// setPrerequisiteImports delivers prerequisite member imports once per
// part. A missing exactly-one prerequisite is an error that leaves every
// value in place, so the call can be retried; weaker cardinalities receive
// an empty value. A failed delivery is sticky.
func (p *Part) setPrerequisiteImports() error {
	p.mu.Lock()
	if p.prerequisitesDelivered {
		err := p.prerequisiteErr
		p.mu.Unlock()
		return err
	}
	var items []*importingItem
	var result composition.Result
	for _, spec := range p.def.Members() {
		if !spec.Definition.IsPrerequisite() {
			continue
		}
		item, _ := p.importingItemLocked(spec.Definition)
		items = append(items, item)
		if _, ok := p.importValues[spec.Definition]; !ok && spec.Definition.Cardinality() == schema.ExactlyOne {
			result = result.MergeError(composition.Wrap(composition.ErrImportNotSet, p.String(), spec.Name, nil))
		}
	}
	if err := result.Err(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.prerequisitesDelivered = true
	values := p.takeImportValuesLocked(items, true)
	p.mu.Unlock()

	if err := p.deliver(values); err != nil {
		p.mu.Lock()
		p.prerequisiteErr = err
		p.mu.Unlock()
		return err
	}
	return nil
}

// setNonPrerequisiteImports delivers the remaining member imports. During
// initial composition those are the non-prerequisite imports; afterwards it
// is whatever was set since. Imports without a value are skipped.
func (p *Part) setNonPrerequisiteImports(initial bool) error {
	p.mu.Lock()
	var items []*importingItem
	for _, spec := range p.def.Members() {
		if initial && spec.Definition.IsPrerequisite() {
			continue
		}
		item, _ := p.importingItemLocked(spec.Definition)
		items = append(items, item)
	}
	values := p.takeImportValuesLocked(items, false)
	p.mu.Unlock()

	return p.deliver(values)
}

// takeImportValuesLocked removes and returns the held values of items.
// Items without a value are skipped, or given their empty value when
// fillMissing is set.
func (p *Part) takeImportValuesLocked(items []*importingItem, fillMissing bool) []pendingValue {
	var out []pendingValue
	for _, item := range items {
		def := item.definition()
		if value, ok := p.importValues[def]; ok {
			delete(p.importValues, def)
			out = append(out, pendingValue{item: item, value: value})
			continue
		}
		if !fillMissing {
			p.logger.Debug("Skipping import without a value.", "import", item.name())
			continue
		}
		out = append(out, pendingValue{item: item, value: item.emptyValue()})
	}
	return out
}

// deliver writes values into the instance in order. On failure the value
// that failed and those after it are put back so a later Activate retries
// them.
func (p *Part) deliver(values []pendingValue) error {
	if len(values) == 0 {
		return nil
	}
	instance, err := p.instanceActivatingIfNeeded()
	if err != nil {
		p.restoreImportValues(values)
		return err
	}
	for i, pv := range values {
		if err := pv.item.deliver(instance, pv.value); err != nil {
			p.restoreImportValues(values[i:])
			return err
		}
		p.logger.Debug("Import delivered.", "import", pv.item.name())
	}
	return nil
}

// restoreImportValues returns undelivered values to the part. A value set
// for the same import in the meantime is newer and wins.
func (p *Part) restoreImportValues(values []pendingValue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pv := range values {
		def := pv.item.definition()
		if _, ok := p.importValues[def]; ok {
			continue
		}
		p.importValues[def] = pv.value
	}
}

// notifyImportsSatisfied calls OnImportsSatisfied at most once per batch
// of SetImport calls. A notification triggered from within the handler is
// suppressed and left pending for the next Activate.
func (p *Part) notifyImportsSatisfied() error {
	p.mu.Lock()
	pending := p.invokeImportsSatisfied && !p.invokingImportsSatisfied
	p.mu.Unlock()
	if !pending {
		return nil
	}

	instance, err := p.instanceActivatingIfNeeded()
	if err != nil {
		return err
	}
	notifier, ok := instance.(ImportsSatisfiedNotifier)
	if !ok {
		return nil
	}

	p.mu.Lock()
	if p.invokingImportsSatisfied || !p.invokeImportsSatisfied {
		p.mu.Unlock()
		return nil
	}
	p.invokingImportsSatisfied = true
	p.invokeImportsSatisfied = false
	p.mu.Unlock()

	p.logger.Debug("Notifying instance that imports are satisfied.")
	err = composition.Guard(notifier.OnImportsSatisfied)

	p.mu.Lock()
	p.invokingImportsSatisfied = false
	if err != nil {
		p.invokeImportsSatisfied = true
	}
	p.mu.Unlock()

	if err != nil {
		return composition.Wrap(composition.ErrImportsSatisfiedFailed, p.String(), "", err)
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

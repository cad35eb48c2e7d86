// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
package schema

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/partgrid/internal/composition"
)

// ExportDefinition describes a capability offered by a part.
type ExportDefinition struct {
	contractName string
	metadata     map[string]any
}

// NewExportDefinition creates an export definition. The metadata map is
// copied.
func NewExportDefinition(contractName string, metadata map[string]any) *ExportDefinition {
	return &ExportDefinition{
		contractName: contractName,
		metadata:     maps.Clone(metadata),
	}
}

// ContractName returns the contract the export offers.
func (d *ExportDefinition) ContractName() string {
	return d.contractName
}

// Metadata returns a copy of the export metadata.
func (d *ExportDefinition) Metadata() map[string]any {
	return maps.Clone(d.metadata)
}

// MetadataValue returns a single metadata value.
func (d *ExportDefinition) MetadataValue(key string) (any, bool) {
	v, ok := d.metadata[key]
	return v, ok
}

// String renders the contract and the metadata keys.
func (d *ExportDefinition) String() string {
	if len(d.metadata) == 0 {
		return d.contractName
	}
	keys := make([]string, 0, len(d.metadata))
	for k := range d.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s [%s]", d.contractName, strings.Join(keys, ", "))
}

// Export is an ExportDefinition bound to a deferred value accessor.
type Export struct {
	definition *ExportDefinition
	getter     func() (any, error)

	mu     sync.Mutex
	value  any
	cached bool
}

// NewExport binds a definition to a getter. The getter is invoked at most
// until it first succeeds; its value is then cached.
func NewExport(definition *ExportDefinition, getter func() (any, error)) *Export {
	return &Export{definition: definition, getter: getter}
}

// NewExportValue binds a definition to an already known value.
func NewExportValue(definition *ExportDefinition, value any) *Export {
	return &Export{definition: definition, value: value, cached: true}
}

// Definition returns the export's definition.
func (e *Export) Definition() *ExportDefinition {
	return e.definition
}

// Value returns the exported value, producing it on first use.
//
// The getter runs without holding the export's lock because it may recurse
// into other parts. When concurrent callers race, the first value published
// is kept and returned to everyone.
func (e *Export) Value() (any, error) {
	e.mu.Lock()
	if e.cached {
		v := e.value
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()

	if e.getter == nil {
		return nil, composition.Wrap(composition.ErrExportFailed, "", e.definition.String(), fmt.Errorf("export has no value accessor"))
	}
	v, err := e.getter()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cached {
		e.value = v
		e.cached = true
	}
	return e.value, nil
}

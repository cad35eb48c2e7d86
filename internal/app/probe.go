package app

import (
	"context"

	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/ctxlog"
	"github.com/specialistvlad/partgrid/internal/part"
	"github.com/specialistvlad/partgrid/internal/registry"
	"github.com/specialistvlad/partgrid/internal/schema"
)

// ProbeReport lists what a probe did with each registered part.
type ProbeReport struct {
	Activated []string
	Skipped   []string
}

// Probe composes every part whose imports all accept zero exports, with
// nothing supplied for them, then reads each of its exports. Parts with an
// exactly-one import need another part and are skipped; the catalog is not
// solved. Every failure is reported.
func (a *App) Probe(ctx context.Context) error {
	_, err := a.probe(ctx)
	return err
}

func (a *App) probe(ctx context.Context) (*ProbeReport, error) {
	logger := ctxlog.FromContext(ctx)
	report := &ProbeReport{}
	var result composition.Result

	for _, def := range a.registry.Definitions() {
		if required := requiredImports(def); len(required) > 0 {
			logger.Info("Probe skipped part; it requires imports.", "part", def.Name(), "imports", required)
			report.Skipped = append(report.Skipped, def.Name())
			continue
		}

		p := part.New(ctx, def)
		if err := probePart(p); err != nil {
			logger.Error("Probe failed.", "part", def.Name(), "error", err)
			result = result.MergeError(err)
			continue
		}
		logger.Info("Probe activated part.", "part", def.Name(), "part_id", p.ID(), "exports", len(def.Exports()))
		report.Activated = append(report.Activated, def.Name())
	}
	return report, result.Err()
}

func probePart(p *part.Part) error {
	def := p.Definition()
	assignments := make([]part.ImportAssignment, 0, len(def.Imports()))
	for _, spec := range def.Imports() {
		assignments = append(assignments, part.ImportAssignment{Definition: spec.Definition})
	}
	if err := p.SetImports(assignments...); err != nil {
		return err
	}
	if err := p.Activate(); err != nil {
		return err
	}

	var result composition.Result
	for _, spec := range def.Exports() {
		_, err := p.GetExportedValue(spec.Definition)
		result = result.MergeError(err)
	}
	return result.Err()
}

func requiredImports(def *registry.Definition) []string {
	var names []string
	for _, spec := range def.Imports() {
		if spec.Definition.Cardinality() == schema.ExactlyOne {
			names = append(names, spec.Name)
		}
	}
	return names
}

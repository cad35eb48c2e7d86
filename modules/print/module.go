package print

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/specialistvlad/partgrid/internal/collection"
	"github.com/specialistvlad/partgrid/internal/registry"
	"github.com/specialistvlad/partgrid/internal/schema"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed output. Defaults to os.Stdout.
	Out io.Writer
}

// Printer writes the lines and values composed into it each time its
// imports are satisfied.
type Printer struct {
	out io.Writer

	mu      sync.Mutex
	lines   *collection.List[string]
	values  map[string]string
	printed int
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, lines: collection.NewList[string]()}
}

// Lines returns the collection the line imports are delivered into.
func (p *Printer) Lines() *collection.List[string] { return p.lines }

// SetValues replaces the key/value pairs printed after the lines.
func (p *Printer) SetValues(values map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = values
}

// Printed returns how many times the printer has written its input.
func (p *Printer) Printed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printed
}

// OnImportsSatisfied prints the current input.
func (p *Printer) OnImportsSatisfied() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	slog.Debug("Printing input", "lines", p.lines.Len(), "values", len(p.values))

	p.printed++
	if p.lines.Len() == 0 && len(p.values) == 0 {
		_, err := fmt.Fprintln(p.out, "      (null)")
		return err
	}

	for _, line := range p.lines.Items() {
		if _, err := fmt.Fprintf(p.out, "      %s\n", line); err != nil {
			return err
		}
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(p.out, "      %s = %q\n", k, p.values[k]); err != nil {
			return err
		}
	}
	return nil
}

// Greeting is the line exported by the print.greeting part.
const Greeting = "Hello from partgrid!"

// Register registers the print parts.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}

	b := registry.NewPart[*Printer]("print").
		Describe("Prints the lines and values composed into it.").
		Constructor(func() (*Printer, error) { return NewPrinter(out), nil })
	registry.ImportInto[*Printer, *collection.List[string], string](b, "lines", "print.line",
		func(p *Printer) *collection.List[string] { return p.lines },
		nil,
		func() *collection.List[string] { return collection.NewList[string]() },
		schema.NotPrerequisite(), schema.Recomposable(),
	)
	registry.Import(b, "values", "env.vars", (*Printer).SetValues,
		schema.WithCardinality(schema.ZeroOrOne), schema.NotPrerequisite(), schema.Recomposable())
	registry.ExportSelf(b, "print.printer", nil)
	registry.Export(b, "printed", "print.count", (*Printer).Printed, nil)
	r.Register(b.MustBuild())

	g := registry.NewPart[struct{}]("print.greeting").
		Describe("Exports a greeting line.")
	registry.ExportValue(g, "line", "print.line", func() string { return Greeting }, map[string]any{"lang": "en"})
	r.Register(g.MustBuild())
}

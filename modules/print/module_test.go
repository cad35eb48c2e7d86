package print_test

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/partgrid/internal/part"
	"github.com/specialistvlad/partgrid/internal/registry"
	"github.com/specialistvlad/partgrid/internal/schema"
	"github.com/specialistvlad/partgrid/internal/testutil"
	"github.com/specialistvlad/partgrid/modules/env_vars"
	"github.com/specialistvlad/partgrid/modules/print"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportOf(t *testing.T, p *part.Part, member string) *schema.Export {
	t.Helper()
	spec, ok := p.Definition().ExportNamed(member)
	require.True(t, ok, "export %s", member)
	exp, err := p.ExportFor(spec.Definition)
	require.NoError(t, err)
	return exp
}

func importOf(t *testing.T, p *part.Part, member string) *schema.ImportDefinition {
	t.Helper()
	spec, ok := p.Definition().ImportNamed(member)
	require.True(t, ok, "import %s", member)
	return spec.Definition
}

func TestPrinterComposition(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	out := &bytes.Buffer{}

	reg := registry.New()
	(&print.Module{Out: out}).Register(reg)
	(&env_vars.Module{Environ: func() []string { return []string{"B=2", "A=1"} }}).Register(reg)

	newPart := func(name string) *part.Part {
		def, ok := reg.Lookup(name)
		require.True(t, ok, name)
		return part.New(ctx, def)
	}
	greeting := newPart("print.greeting")
	env := newPart("env.vars")
	printer := newPart("print")

	extra := schema.NewExport(schema.NewExportDefinition("print.line", nil), func() (any, error) { return "second", nil })
	require.NoError(t, printer.SetImports(
		part.ImportAssignment{Definition: importOf(t, printer, "lines"), Exports: []*schema.Export{exportOf(t, greeting, "line"), extra}},
		part.ImportAssignment{Definition: importOf(t, printer, "values"), Exports: []*schema.Export{exportOf(t, env, "all")}},
	))
	require.NoError(t, printer.Activate())

	want := "      " + print.Greeting + "\n      second\n      A = \"1\"\n      B = \"2\"\n"
	assert.Equal(t, want, out.String())

	printedDef, _ := printer.Definition().ExportNamed("printed")
	printed, err := printer.GetExportedValue(printedDef.Definition)
	require.NoError(t, err)
	assert.Equal(t, 1, printed)

	t.Run("recomposition prints again", func(t *testing.T) {
		out.Reset()
		require.NoError(t, printer.SetImport(importOf(t, printer, "lines"), nil))
		require.NoError(t, printer.SetImport(importOf(t, printer, "values"), nil))
		require.NoError(t, printer.Activate())
		assert.Equal(t, "      (null)\n", out.String())

		printed, err := printer.GetExportedValue(printedDef.Definition)
		require.NoError(t, err)
		assert.Equal(t, 2, printed)
	})

	t.Run("self export is the printer", func(t *testing.T) {
		self := exportOf(t, printer, registry.SelfMember)
		v, err := self.Value()
		require.NoError(t, err)
		instance, ok := printer.Instance()
		require.True(t, ok)
		assert.Same(t, instance, v)
	})
}

func TestPrinterEmpty(t *testing.T) {
	out := &bytes.Buffer{}
	p := print.NewPrinter(out)
	require.NoError(t, p.OnImportsSatisfied())
	assert.Equal(t, "      (null)\n", out.String())
	assert.Equal(t, 1, p.Printed())
}

func TestGreetingNeedsNoInstance(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	reg := registry.New()
	(&print.Module{Out: &bytes.Buffer{}}).Register(reg)

	def, ok := reg.Lookup("print.greeting")
	require.True(t, ok)
	assert.False(t, def.RequiresActivation())

	p := part.New(ctx, def)
	spec, _ := def.ExportNamed("line")
	v, err := p.GetExportedValue(spec.Definition)
	require.NoError(t, err)
	assert.Equal(t, print.Greeting, v)
	_, constructed := p.Instance()
	assert.False(t, constructed)
}

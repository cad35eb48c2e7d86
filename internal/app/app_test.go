package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/specialistvlad/partgrid/internal/composition"
	"github.com/specialistvlad/partgrid/internal/registry"
	"github.com/specialistvlad/partgrid/internal/schema"
	"github.com/specialistvlad/partgrid/internal/testutil"
	"github.com/specialistvlad/partgrid/modules/env_vars"
	"github.com/specialistvlad/partgrid/modules/print"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// shippedManifests is the manifest directory of the compiled modules.
const shippedManifests = "../../modules"

// moduleFunc adapts a function to the registry.Module interface.
type moduleFunc func(r *registry.Registry)

func (f moduleFunc) Register(r *registry.Registry) { f(r) }

type fixture struct {
	app     *App
	out     *testutil.SafeBuffer
	printed *bytes.Buffer
}

func newFixture(t *testing.T, cfg Config, extra ...registry.Module) *fixture {
	t.Helper()
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	config, err := NewConfig(cfg)
	require.NoError(t, err)

	f := &fixture{out: &testutil.SafeBuffer{}, printed: &bytes.Buffer{}}
	modules := []registry.Module{
		&print.Module{Out: f.printed},
		&env_vars.Module{Environ: func() []string { return []string{"PARTGRID=1"} }},
	}
	f.app = NewApp(f.out, config, append(modules, extra...)...)
	return f
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.ErrorContains(t, err, "CatalogPaths is a required configuration field")

	_, err = NewConfig(Config{CatalogPaths: []string{"x"}, HealthcheckPort: 70000})
	assert.ErrorContains(t, err, "out of range")

	cfg, err := NewConfig(Config{CatalogPaths: []string{"x"}, HealthcheckPort: 8080})
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HealthcheckPort)
}

func TestNewApp_ShippedManifests(t *testing.T) {
	f := newFixture(t, Config{CatalogPaths: []string{shippedManifests}})

	assert.Equal(t, []string{"env.vars", "print", "print.greeting"}, f.app.Registry().Names())
	def, ok := f.app.Registry().Lookup("print.greeting")
	require.True(t, ok)
	assert.Equal(t, "Exports a greeting line.", def.Description())
}

func TestNewApp_PanicsOnMismatch(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"extra.hcl": `
part "print.greeting" {
  export "line" {
    contract = "print.text"
  }
}
`,
	})
	cfg, err := NewConfig(Config{CatalogPaths: []string{dir}, LogLevel: "error"})
	require.NoError(t, err)

	assert.PanicsWithError(t, "failed to load part catalog: registry validation failed:\n"+
		"- part 'print.greeting', export 'line': contract mismatch. Manifest declares 'print.text' but Go definition exports 'print.line'",
		func() {
			NewApp(&testutil.SafeBuffer{}, cfg, &print.Module{Out: &bytes.Buffer{}})
		})
}

func TestDescribe(t *testing.T) {
	f := newFixture(t, Config{CatalogPaths: []string{shippedManifests}})

	var buf bytes.Buffer
	require.NoError(t, f.app.Describe(&buf))
	out := buf.String()

	assert.Contains(t, out, "part env.vars (Exports the process environment variables.)")
	assert.Contains(t, out, "<- print.line")
	assert.Contains(t, out, "zero_or_more, recomposable")
	assert.Contains(t, out, "<- env.vars")
	assert.Contains(t, out, "zero_or_one, recomposable")
	assert.Contains(t, out, "-> print.printer")
	assert.Contains(t, out, "{lang=en}")
	assert.Contains(t, out, "{source=process}")
}

func TestSummaries(t *testing.T) {
	f := newFixture(t, Config{CatalogPaths: []string{shippedManifests}})

	summaries := f.app.Summaries()
	require.Len(t, summaries, 3)
	printer := summaries[1]
	assert.Equal(t, "print", printer.Name)
	assert.Contains(t, printer.Manifest, "print.hcl")
	require.Len(t, printer.Imports, 2)
	assert.Equal(t, ImportSummary{
		Member:       "lines",
		Contract:     "print.line",
		Cardinality:  "zero_or_more",
		Recomposable: true,
	}, printer.Imports[0])

	greeting := summaries[2]
	require.Len(t, greeting.Exports, 1)
	assert.Equal(t, map[string]any{"lang": "en"}, greeting.Exports[0].Metadata)
}

func TestProbe(t *testing.T) {
	type consumer struct{ printer *print.Printer }
	needy := moduleFunc(func(r *registry.Registry) {
		b := registry.NewPart[*consumer]("test.needy").
			Constructor(func() (*consumer, error) { return &consumer{}, nil })
		registry.Import(b, "printer", "print.printer", func(c *consumer, p *print.Printer) { c.printer = p })
		r.Register(b.MustBuild())
	})
	broken := moduleFunc(func(r *registry.Registry) {
		b := registry.NewPart[*consumer]("test.broken").
			Constructor(func() (*consumer, error) { return nil, errors.New("boom") })
		registry.ExportSelf(b, "test.broken", nil)
		r.Register(b.MustBuild())
	})

	f := newFixture(t, Config{CatalogPaths: []string{shippedManifests}}, needy, broken)
	ctx, _ := testutil.LogContext(t)

	report, err := f.app.probe(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, composition.ErrConstructorFailed))
	assert.ErrorContains(t, err, "boom")

	assert.Equal(t, []string{"env.vars", "print", "print.greeting"}, report.Activated)
	assert.Equal(t, []string{"test.needy"}, report.Skipped)
	assert.Equal(t, "      (null)\n", f.printed.String())
}

func TestRun(t *testing.T) {
	f := newFixture(t, Config{CatalogPaths: []string{shippedManifests}, Probe: true})

	require.NoError(t, f.app.Run(context.Background()))
	assert.Contains(t, f.out.String(), "part print.greeting")
	assert.Contains(t, f.out.String(), "Probe activated part.")
	assert.Contains(t, f.out.String(), "partgrid finished.")
	assert.Equal(t, "      (null)\n", f.printed.String())
}

func TestHandler(t *testing.T) {
	f := newFixture(t, Config{CatalogPaths: []string{shippedManifests}})
	srv := httptest.NewServer(f.app.handler())
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("parts", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/parts")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var got []PartSummary
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got, 3)
		assert.Equal(t, "env.vars", got[0].Name)
		assert.Equal(t, schema.ZeroOrMore.String(), got[1].Imports[0].Cardinality)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestPlainMetadata(t *testing.T) {
	got := plainMetadata(map[string]any{
		"name":    cty.StringVal("x"),
		"weight":  cty.NumberIntVal(2),
		"on":      cty.True,
		"none":    cty.NullVal(cty.String),
		"pending": cty.UnknownVal(cty.String),
		"tags":    cty.TupleVal([]cty.Value{cty.StringVal("a")}),
		"plain":   7,
	})
	assert.Equal(t, "x", got["name"])
	assert.Equal(t, float64(2), got["weight"])
	assert.Equal(t, true, got["on"])
	assert.Nil(t, got["none"])
	assert.Equal(t, cty.UnknownVal(cty.String).GoString(), got["pending"])
	assert.Equal(t, cty.TupleVal([]cty.Value{cty.StringVal("a")}).GoString(), got["tags"])
	assert.Equal(t, 7, got["plain"])
	assert.Nil(t, plainMetadata(nil))
}

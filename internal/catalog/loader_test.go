package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/partgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const bannerManifest = `
part "console.banner" {
  description = "Prints a banner."

  import "writer" {
    contract = "console.writer"
  }

  import "lines" {
    contract     = "console.line"
    cardinality  = "zero_or_more"
    prerequisite = false
    recomposable = true
    constraint   = metadata.lang == "en"
  }

  export "self" {
    contract = "console.banner"
    metadata = { format = "text", width = 80 }
  }
}
`

func TestLoad(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := testutil.WriteFiles(t, map[string]string{
		"console/banner.hcl": bannerManifest,
		"writer.hcl": `
part "console.writer" {
  export "self" {
    contract = "console.writer"
  }
}
`,
	})

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"console.banner", "console.writer"}, model.Names())

	yes, no := true, false
	banner := model.Parts["console.banner"]
	require.NotNil(t, banner)
	require.Len(t, banner.Imports, 2)
	assert.NotNil(t, banner.Imports[1].Constraint)

	want := &PartManifest{
		Name:        "console.banner",
		Description: "Prints a banner.",
		File:        filepath.Join(dir, "console", "banner.hcl"),
		Imports: []*ImportManifest{
			{Member: "writer", Contract: "console.writer"},
			{Member: "lines", Contract: "console.line", Cardinality: "zero_or_more", Prerequisite: &no, Recomposable: &yes},
		},
		Exports: []*ExportManifest{
			{Member: "self", Contract: "console.banner", Metadata: map[string]any{
				"format": cty.StringVal("text"),
				"width":  cty.NumberIntVal(80),
			}},
		},
	}
	diff := cmp.Diff(want, banner,
		cmpopts.IgnoreFields(ImportManifest{}, "Constraint"),
		cmp.Comparer(func(a, b cty.Value) bool { return a.Type().Equals(b.Type()) && a.Equals(b).True() }),
	)
	assert.Empty(t, diff)

	writer := model.Parts["console.writer"]
	require.NotNil(t, writer)
	assert.Empty(t, writer.Imports)
	require.Len(t, writer.Exports, 1)
	assert.Nil(t, writer.Exports[0].Metadata)
}

func TestLoadSkipsMissingPaths(t *testing.T) {
	model, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, model.Parts)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "syntax error",
			files: map[string]string{"bad.hcl": `part "x" {`},
			want:  "failed to parse HCL file",
		},
		{
			name:  "unknown block",
			files: map[string]string{"bad.hcl": `runner "x" {}`},
			want:  "failed to decode HCL file",
		},
		{
			name: "duplicate part across files",
			files: map[string]string{
				"a.hcl": `part "x" {}`,
				"b.hcl": `part "x" {}`,
			},
			want: "part 'x' declared in",
		},
		{
			name: "duplicate import member",
			files: map[string]string{"a.hcl": `
part "x" {
  import "dep" {}
  import "dep" {}
}`},
			want: "import 'dep' declared more than once",
		},
		{
			name: "metadata is not an object",
			files: map[string]string{"a.hcl": `
part "x" {
  export "self" {
    contract = "x"
    metadata = "flat"
  }
}`},
			want: "metadata must be an object",
		},
		{
			name: "metadata is not a literal",
			files: map[string]string{"a.hcl": `
part "x" {
  export "self" {
    contract = "x"
    metadata = { env = var.env }
  }
}`},
			want: "metadata must be a literal object",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, tc.files)
			_, err := NewLoader().Load(context.Background(), dir)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

const greetingYAML = `
parts:
  - name: print.greeting
    description: Exports a greeting line.
    exports:
      - member: line
        contract: print.line
        metadata:
          lang: en
          weight: 2
          tags: [hello, world]
          nested: {enabled: true}
  - name: print
    imports:
      - member: lines
        contract: print.line
        cardinality: zero_or_more
        prerequisite: false
        recomposable: true
        constraint: metadata.lang == "en"
`

func TestLoadYAML(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	dir := testutil.WriteFiles(t, map[string]string{"print.yaml": greetingYAML})

	model, err := NewLoader().Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"print", "print.greeting"}, model.Names())

	yes, no := true, false
	want := &PartManifest{
		Name: "print",
		File: filepath.Join(dir, "print.yaml"),
		Imports: []*ImportManifest{
			{Member: "lines", Contract: "print.line", Cardinality: "zero_or_more", Prerequisite: &no, Recomposable: &yes},
		},
	}
	printer := model.Parts["print"]
	assert.Empty(t, cmp.Diff(want, printer, cmpopts.IgnoreFields(ImportManifest{}, "Constraint")))
	require.NotNil(t, printer.Imports[0].Constraint)
	assert.Len(t, printer.Imports[0].Constraint.Variables(), 1)

	greeting := model.Parts["print.greeting"]
	require.Len(t, greeting.Exports, 1)
	md := greeting.Exports[0].Metadata
	assert.True(t, md["lang"].(cty.Value).Equals(cty.StringVal("en")).True())
	assert.True(t, md["weight"].(cty.Value).Equals(cty.NumberIntVal(2)).True())
	assert.True(t, md["tags"].(cty.Value).Type().IsTupleType())
	nested := md["nested"].(cty.Value)
	assert.True(t, nested.GetAttr("enabled").True())
}

func TestLoadMixedFormats(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"a.hcl":  `part "x" {}`,
		"b.yml":  "parts:\n  - name: y\n",
		"c.yaml": "parts:\n  - name: x\n",
	})
	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, "part 'x' declared in "+filepath.Join(dir, "c.yaml"))

	dir = testutil.WriteFiles(t, map[string]string{
		"a.hcl": `part "x" {}`,
		"b.yml": "parts:\n  - name: y\n",
	})
	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, model.Names())
}

func TestLoadYAMLErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown field", content: "parts:\n  - name: x\n    runner: y\n", want: "failed to decode YAML file"},
		{name: "missing name", content: "parts:\n  - description: x\n", want: "part #1 has no name"},
		{name: "bad constraint", content: "parts:\n  - name: x\n    imports:\n      - member: a\n        constraint: \"metadata.lang ==\"\n", want: "invalid constraint"},
		{name: "duplicate export", content: "parts:\n  - name: x\n    exports:\n      - member: a\n        contract: c\n      - member: a\n        contract: c\n", want: "export 'a' declared more than once"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, map[string]string{"m.yaml": tc.content})
			_, err := NewLoader().Load(context.Background(), dir)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"empty.yaml": ""})
	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, model.Parts)
}

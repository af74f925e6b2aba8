package schema_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
	"github.com/Sumatoshi-tech/autodoc/pkg/autodoc"
	"github.com/Sumatoshi-tech/autodoc/pkg/observability"
	"github.com/Sumatoshi-tech/autodoc/pkg/schema"
)

const source = `"""Shapes."""
import math


class Circle(Shape):
    radius = 1

    @property
    def area(self) -> float:
        return math.pi * self.radius ** 2


async def fetch(url: str, *args, **kwargs):
    """Fetch a URL."""
`

func TestValidate_AnalyzerOutput(t *testing.T) {
	t.Parallel()

	for _, withMetrics := range []bool{false, true} {
		an := autodoc.NewAnalyzer(
			autodoc.WithLogger(observability.Discard()),
			autodoc.WithExtractor(extract.New(
				extract.WithLogger(observability.Discard()),
				extract.WithMetrics(withMetrics),
			)),
		)

		shapes, err := an.AnalyzeSource(context.Background(), "shapes.py", []byte(source))
		require.NoError(t, err)

		broken, err := an.AnalyzeSource(context.Background(), "broken.py", []byte("def (:\n"))
		require.NoError(t, err)

		report := &autodoc.Report{Files: []autodoc.FileResult{shapes, broken}}

		data, err := json.Marshal(report)
		require.NoError(t, err)

		res, err := schema.Validate(data)
		require.NoError(t, err)
		assert.True(t, res.Valid(), "%v", res.Errors)
		assert.Equal(t, 2, res.Files)
	}
}

func TestValidate_Violations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "not an object", doc: `[]`},
		{name: "missing fields", doc: `{"mod": {"path": "mod"}}`},
		{name: "error not a string", doc: `{"mod": {"error": 5}}`},
		{name: "args not objects", doc: `{"mod": {"path": "mod", "imports": [], "classes": {}, ` +
			`"functions": {"f": {"docstring": null, "args": ["x"], "returns": null, "decorators": [], ` +
			`"inferred_description": ""}}, "global_variables": [], "module_docstring": null, ` +
			`"inferred_description": ""}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := schema.Validate([]byte(tt.doc))
			require.NoError(t, err)
			assert.False(t, res.Valid())
			assert.NotEmpty(t, res.Errors)
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := schema.Validate([]byte(`{"mod": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestFieldError_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `mod.path: Invalid type (got "x")`,
		schema.FieldError{Field: "mod.path", Description: "Invalid type", Actual: "x"}.String())
	assert.Equal(t, "mod: Required", schema.FieldError{Field: "mod", Description: "Required"}.String())
}

package infer_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/infer"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "f", want: []string{"f"}},
		{in: "calculate_area", want: []string{"calculate", "area"}},
		{in: "getValue", want: []string{"get", "Value"}},
		{in: "HTTPServer", want: []string{"HTTP", "Server"}},
		{in: "parseJSON", want: []string{"parse", "JSON"}},
		{in: "Get_Value", want: []string{"Get", "Value"}},
		{in: "GET_value", want: []string{"value"}},
		{in: "value2", want: []string{"value", "2"}},
		{in: "MAX2", want: []string{"MAX", "2"}},
		{in: "__init__", want: []string{"init"}},
		{in: "", want: nil},
		{in: "___", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, infer.Tokenize(tt.in))
		})
	}
}

func TestInferPurpose_WithoutDictionary(t *testing.T) {
	t.Parallel()

	inf := infer.New(nil)

	got, ok := inf.InferPurpose("calculateArea")
	require.True(t, ok)
	assert.Equal(t, "calculate Area", got)

	_, ok = inf.InferPurpose("__")
	assert.False(t, ok)

	_, ok = inf.InferPurpose("")
	assert.False(t, ok)
}

func TestInferPurpose_WithDictionary(t *testing.T) {
	t.Parallel()

	inf := infer.New(infer.MapDictionary{"get": "obtain", "area": "a region"})

	got, ok := inf.InferPurpose("getAreaXyz")
	require.True(t, ok)
	assert.Equal(t, "obtain a region Xyz", got)
}

func TestInferPurpose_NilInferencer(t *testing.T) {
	t.Parallel()

	var inf *infer.Inferencer

	got, ok := inf.InferPurpose("load_file")
	require.True(t, ok)
	assert.Equal(t, "load file", got)
}

func TestMethodTags(t *testing.T) {
	t.Parallel()

	tags := infer.MethodTags([]string{"get_x", "getY", "set_x", "is_valid", "has_key", "calc", "compute_total", "run"})
	assert.ElementsMatch(t, []string{
		infer.TagRetrievesData,
		infer.TagModifiesData,
		infer.TagChecksConditions,
		infer.TagPerformsCalculations,
	}, tags)

	assert.Empty(t, infer.MethodTags([]string{"run", "Get_x"}))
	assert.Empty(t, infer.MethodFunctionality(nil))
	assert.Equal(t, infer.TagRetrievesData, infer.MethodFunctionality([]string{"get_x", "get_y"}))
}

func TestCallTag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "calls print", infer.CallTag("print", false))
	assert.Equal(t, "uses append", infer.CallTag("append", true))
}

func TestBuiltin(t *testing.T) {
	t.Parallel()

	dict := infer.Builtin()
	require.NotEmpty(t, dict)

	def, ok := dict.Lookup("Calculate")
	require.True(t, ok)
	assert.Equal(t, "make a mathematical calculation or computation", def)

	_, ok = dict.Lookup("zzzz")
	assert.False(t, ok)
}

func TestReadLexicon(t *testing.T) {
	t.Parallel()

	src := "# comment\nrun\t2\tsecond sense\nrun\t1\tfirst sense\n\nwalk\tuse one's feet\n"

	dict, err := infer.ReadLexicon(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, infer.MapDictionary{"run": "first sense", "walk": "use one's feet"}, dict)

	_, err = infer.ReadLexicon(strings.NewReader("bad line without tabs\n"))
	require.ErrorIs(t, err, infer.ErrMalformedLexicon)
}

type countingDictionary struct {
	calls int
}

func (d *countingDictionary) Lookup(word string) (string, bool) {
	d.calls++

	if word == "known" {
		return "a definition", true
	}

	return "", false
}

func TestCachedDictionary(t *testing.T) {
	t.Parallel()

	inner := &countingDictionary{}

	cached, err := infer.NewCachedDictionary(inner, 8)
	require.NoError(t, err)

	for range 3 {
		def, ok := cached.Lookup("known")
		assert.True(t, ok)
		assert.Equal(t, "a definition", def)

		_, ok = cached.Lookup("unknown")
		assert.False(t, ok)
	}

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestSQLiteDictionary(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lexicon.db")

	store, err := infer.CreateSQLite(path, nil)
	require.NoError(t, err)

	n, err := store.Import(context.Background(), strings.NewReader("area\t2\tlater sense\narea\t1\ta particular region\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, store.Close())

	reopened, err := infer.OpenSQLite(path, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	require.NoError(t, reopened.Ping(context.Background()))

	count, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	def, ok := reopened.Lookup("Area")
	require.True(t, ok)
	assert.Equal(t, "a particular region", def)

	_, ok = reopened.Lookup("volume")
	assert.False(t, ok)
}

func TestOpenDictionary(t *testing.T) {
	t.Parallel()

	t.Run("none", func(t *testing.T) {
		t.Parallel()

		dict, closer, err := infer.OpenDictionary(infer.Options{Source: infer.SourceNone})
		require.NoError(t, err)
		assert.Nil(t, dict)
		require.NoError(t, closer.Close())
	})

	t.Run("builtin", func(t *testing.T) {
		t.Parallel()

		dict, _, err := infer.OpenDictionary(infer.Options{Source: infer.SourceBuiltin})
		require.NoError(t, err)
		assert.NotNil(t, dict)
	})

	t.Run("missing_sqlite_falls_back", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger := slog.New(slog.NewTextHandler(&buf, nil))

		dict, closer, err := infer.OpenDictionary(infer.Options{
			Source: infer.SourceSQLite,
			Path:   filepath.Join(t.TempDir(), "missing.db"),
			Logger: logger,
		})
		require.NoError(t, err)
		assert.Nil(t, dict)
		require.NoError(t, closer.Close())
		assert.Contains(t, buf.String(), "lexicon not available")
	})

	t.Run("unknown_source", func(t *testing.T) {
		t.Parallel()

		_, _, err := infer.OpenDictionary(infer.Options{Source: "wordnet-online"})
		require.ErrorIs(t, err, infer.ErrUnknownSource)
	})
}

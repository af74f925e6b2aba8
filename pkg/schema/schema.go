// Package schema validates analysis reports against the embedded report
// JSON schema.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ReportSchema is the JSON schema of a serialized autodoc.Report.
//
//go:embed report-schema.json
var ReportSchema []byte

// FieldError is one schema violation.
type FieldError struct {
	Field       string
	Description string
	// Actual is the offending scalar value, when there is one.
	Actual string
}

func (e FieldError) String() string {
	if e.Actual != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Description, e.Actual)
	}

	return e.Field + ": " + e.Description
}

// Result is the outcome of validating one document.
type Result struct {
	Files  int
	Errors []FieldError
}

// Valid reports whether the document matched the schema.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks a JSON report. Malformed JSON is an error; schema
// violations are reported in the Result.
func Validate(data []byte) (*Result, error) {
	var doc any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err := dec.Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(ReportSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &Result{}
	if files, ok := doc.(map[string]any); ok {
		out.Files = len(files)
	}

	for _, verr := range res.Errors() {
		out.Errors = append(out.Errors, FieldError{
			Field:       verr.Field(),
			Description: verr.Description(),
			Actual:      actualValue(doc, verr.Field()),
		})
	}

	return out, nil
}

// actualValue follows a gojsonschema field path ("a.b.0.c") into doc.
// Path keys containing dots cannot be followed and yield "".
func actualValue(doc any, field string) string {
	current := doc

	for part := range strings.SplitSeq(field, ".") {
		switch typed := current.(type) {
		case map[string]any:
			val, found := typed[part]
			if !found {
				return ""
			}

			current = val
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(typed) {
				return ""
			}

			current = typed[idx]
		default:
			return ""
		}
	}

	switch typed := current.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

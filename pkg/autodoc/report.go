package autodoc

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/autodoc/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/autodoc/pkg/analyzers/extract"
)

// FileResult is the outcome for one file: either a SourceUnit or the
// message of the error that prevented it. It encodes as the unit itself or
// as {"error": message}.
type FileResult struct {
	Path  string
	Unit  *extract.SourceUnit
	Error string
}

type errorRecord struct {
	Error string `json:"error" yaml:"error"`
}

// Failed reports whether the file could not be analyzed.
func (r FileResult) Failed() bool {
	return r.Unit == nil
}

// MarshalJSON implements json.Marshaler.
func (r FileResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(errorRecord{Error: r.Error})
	}

	return json.Marshal(r.Unit)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *FileResult) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage

	err := json.Unmarshal(data, &probe)
	if err != nil {
		return fmt.Errorf("decode file result: %w", err)
	}

	if raw, ok := probe["error"]; ok {
		*r = FileResult{}

		return json.Unmarshal(raw, &r.Error)
	}

	var unit extract.SourceUnit

	err = json.Unmarshal(data, &unit)
	if err != nil {
		return fmt.Errorf("decode source unit: %w", err)
	}

	*r = FileResult{Path: unit.Path, Unit: &unit}

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r FileResult) MarshalYAML() (any, error) {
	if r.Failed() {
		return errorRecord{Error: r.Error}, nil
	}

	return r.Unit, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *FileResult) UnmarshalYAML(node *yaml.Node) error {
	var probe errorRecord

	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "error" {
				err := node.Content[i+1].Decode(&probe.Error)
				if err != nil {
					return fmt.Errorf("decode file error: %w", err)
				}

				*r = FileResult{Error: probe.Error}

				return nil
			}
		}
	}

	var unit extract.SourceUnit

	err := node.Decode(&unit)
	if err != nil {
		return fmt.Errorf("decode source unit: %w", err)
	}

	*r = FileResult{Path: unit.Path, Unit: &unit}

	return nil
}

// Report is the batch result, one entry per analyzed file in discovery
// order. It encodes as a mapping from path to FileResult.
type Report struct {
	Files []FileResult
}

// Failures counts files that could not be analyzed.
func (r *Report) Failures() int {
	failed := 0

	for _, f := range r.Files {
		if f.Failed() {
			failed++
		}
	}

	return failed
}

// Lookup finds the result for path.
func (r *Report) Lookup(path string) (FileResult, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}

	return FileResult{}, false
}

func (r Report) ordered() *mapx.OrderedMap[FileResult] {
	m := mapx.NewOrderedMap[FileResult](len(r.Files))
	for _, f := range r.Files {
		m.Set(f.Path, f)
	}

	return m
}

func (r *Report) fromOrdered(m *mapx.OrderedMap[FileResult]) {
	r.Files = make([]FileResult, 0, m.Len())

	for path, f := range m.All() {
		f.Path = path
		r.Files = append(r.Files, f)
	}
}

// MarshalJSON implements json.Marshaler.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ordered())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Report) UnmarshalJSON(data []byte) error {
	var m mapx.OrderedMap[FileResult]

	err := json.Unmarshal(data, &m)
	if err != nil {
		return fmt.Errorf("decode report: %w", err)
	}

	r.fromOrdered(&m)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r Report) MarshalYAML() (any, error) {
	return r.ordered().MarshalYAML()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Report) UnmarshalYAML(node *yaml.Node) error {
	var m mapx.OrderedMap[FileResult]

	err := m.UnmarshalYAML(node)
	if err != nil {
		return fmt.Errorf("decode report: %w", err)
	}

	r.fromOrdered(&m)

	return nil
}

// Package persist encodes analysis reports to files in JSON, YAML and
// LZ4-compressed variants of either.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// File extensions for supported codecs.
const (
	JSONExtension = ".json"
	YAMLExtension = ".yaml"
	LZ4Extension  = ".lz4"

	ymlExtension = ".yml"
)

const defaultIndent = "  "

// ErrUnknownFormat is returned for file names no codec handles.
var ErrUnknownFormat = errors.New("unknown report format")

// Codec defines how a value is serialized and deserialized.
type Codec interface {
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
	// Extension is the file suffix including the dot, e.g. ".json.lz4".
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent is the indentation string. Empty means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with 2-space indentation.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.
func (c *JSONCodec) Encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *JSONCodec) Decode(r io.Reader, v any) error {
	err := json.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *JSONCodec) Extension() string {
	return JSONExtension
}

// YAMLCodec implements Codec using YAML with 2-space indentation.
type YAMLCodec struct{}

// NewYAMLCodec creates a YAML codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Encode implements Codec.
func (c *YAMLCodec) Encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(len(defaultIndent))

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("yaml flush: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *YAMLCodec) Decode(r io.Reader, v any) error {
	err := yaml.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *YAMLCodec) Extension() string {
	return YAMLExtension
}

// LZ4Codec wraps another codec in an LZ4 frame.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec compresses the output of inner.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{Inner: inner}
}

// Encode implements Codec.
func (c *LZ4Codec) Encode(w io.Writer, v any) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, v)
	if err != nil {
		return err
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *LZ4Codec) Decode(r io.Reader, v any) error {
	return c.Inner.Decode(lz4.NewReader(r), v)
}

// Extension implements Codec.
func (c *LZ4Codec) Extension() string {
	return c.Inner.Extension() + LZ4Extension
}

// CodecFor picks a codec from a file name: .json, .yaml or .yml, each
// optionally followed by .lz4.
func CodecFor(path string) (Codec, error) {
	name := strings.ToLower(filepath.Base(path))

	compressed := strings.HasSuffix(name, LZ4Extension)
	name = strings.TrimSuffix(name, LZ4Extension)

	var codec Codec

	switch filepath.Ext(name) {
	case JSONExtension:
		codec = NewJSONCodec()
	case YAMLExtension, ymlExtension:
		codec = NewYAMLCodec()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	if compressed {
		codec = NewLZ4Codec(codec)
	}

	return codec, nil
}

// CodecForFormat returns the codec for an output format name, "json" or
// "yaml", compressed when compress is set.
func CodecForFormat(format string, compress bool) (Codec, error) {
	var codec Codec

	switch strings.ToLower(format) {
	case "json":
		codec = NewJSONCodec()
	case "yaml", "yml":
		codec = NewYAMLCodec()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if compress {
		codec = NewLZ4Codec(codec)
	}

	return codec, nil
}

// SaveFile encodes v into path, creating parent directories.
func SaveFile(path string, codec Codec, v any) (err error) {
	mkErr := os.MkdirAll(filepath.Dir(path), 0o750)
	if mkErr != nil {
		return fmt.Errorf("create report directory: %w", mkErr)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close report file: %w", closeErr)
		}
	}()

	err = codec.Encode(file, v)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}

// LoadFile decodes path into v, which must be a pointer.
func LoadFile(path string, codec Codec, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, v)
	if err != nil {
		return fmt.Errorf("decode report: %w", err)
	}

	return nil
}

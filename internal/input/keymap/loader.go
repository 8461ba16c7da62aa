package keymap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a mapping file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load reads and decodes a mapping file.
func Load(path string) (*Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file %s: %w", path, err)
	}
	return Parse(path, format, data)
}

// Parse decodes a mapping document in the given format. Source names the
// document in errors.
func Parse(source string, format Format, data []byte) (*Config, error) {
	doc, err := normalize(source, format, data)
	if err != nil {
		return nil, err
	}
	migrated, _, err := Migrate(string(doc))
	if err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return decode(source, migrated)
}

// normalize converts any supported format to JSON.
func normalize(source string, format Format, data []byte) ([]byte, error) {
	switch format {
	case FormatJSON:
		if json.Valid(data) {
			return data, nil
		}
		var v any
		err := json.Unmarshal(data, &v)
		perr := &ParseError{Path: source, Message: "invalid JSON", Err: err}
		var serr *json.SyntaxError
		if errors.As(err, &serr) {
			perr.Line, perr.Column = lineColumn(data, serr.Offset)
			perr.Message = serr.Error()
		}
		return nil, perr

	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			perr := &ParseError{Path: source, Message: err.Error(), Err: err}
			fmt.Sscanf(err.Error(), "yaml: line %d:", &perr.Line)
			return nil, perr
		}
		return marshal(source, v)

	case FormatTOML:
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			perr := &ParseError{Path: source, Message: err.Error(), Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return nil, perr
		}
		return marshal(source, v)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func marshal(source string, v any) ([]byte, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return out, nil
}

// lineColumn converts a byte offset to 1-based line and column numbers.
func lineColumn(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

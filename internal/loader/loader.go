// Package loader reads filter documents from YAML, JSON or CUE files.
//
// All three formats share one document shape (see Document). YAML and JSON
// decoding reject unknown fields so typos such as "childern:" fail loudly
// instead of silently dropping a branch of the where tree.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported filter file extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path))
	}
}

// PositionError is a decoding failure with a source position.
type PositionError struct {
	Message string
	Pos     token.Pos
}

func (e *PositionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads and decodes the document at path.
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read filter file: %w", err)
	}

	doc, err := decode(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", format, err)
	}
	return doc, nil
}

// Decode decodes a document held in memory.
func Decode(data []byte, format Format) (*Document, error) {
	return decode(data, format, "")
}

func decode(data []byte, format Format, filename string) (*Document, error) {
	var doc Document

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}

	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, err
		}

	case FormatCUE:
		var opts []cue.BuildOption
		if filename != "" {
			opts = append(opts, cue.Filename(filename))
		}
		v := cuecontext.New().CompileBytes(data, opts...)
		if err := v.Err(); err != nil {
			return nil, cueError(err)
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, cueError(err)
		}
		if err := v.Decode(&doc); err != nil {
			return nil, cueError(err)
		}

	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	return &doc, nil
}

// cueError keeps the first CUE error and its position.
func cueError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	e := &PositionError{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}

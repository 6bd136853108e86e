package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Format of a weapon configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml, toml or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown profile format %q", s)
}

// Source is one candidate configuration file.
type Source struct {
	Path   string
	Format Format
}

func (s Source) String() string { return s.Path }

// SourceFor infers the format from the file extension.
func SourceFor(path string) (Source, error) {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return Source{}, err
	}
	return Source{Path: path, Format: f}, nil
}

// BaseName is the file name (without extension) looked up in a plugin directory.
const BaseName = "weapons"

// SourcesIn lists the candidate files in dir in priority order: YAML, TOML, JSON.
func SourcesIn(dir string) []Source {
	return []Source{
		{Path: filepath.Join(dir, BaseName+".yaml"), Format: FormatYAML},
		{Path: filepath.Join(dir, BaseName+".toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, BaseName+".json"), Format: FormatJSON},
	}
}

// SourceError is the failure of a single source.
type SourceError struct {
	Source Source
	Err    error
}

func (e *SourceError) Error() string { return e.Source.Path + ": " + e.Err.Error() }
func (e *SourceError) Unwrap() error { return e.Err }

// ConfigError reports that no source produced a valid Set.
type ConfigError struct {
	Failures []*SourceError
}

// Error lists every source failure in priority order.
func (e *ConfigError) Error() string {
	if len(e.Failures) == 0 {
		return "no weapon configuration sources"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return "no usable weapon configuration: " + strings.Join(parts, "; ")
}

// Unwrap exposes each SourceError to errors.Is and errors.As.
func (e *ConfigError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Load tries each source in order and returns the first Set that reads, parses and
// validates. If every source fails it returns a *ConfigError describing each failure.
func Load(sources ...Source) (*Set, error) {
	cerr := &ConfigError{}
	for _, src := range sources {
		set, err := loadSource(src)
		if err == nil {
			return set, nil
		}
		cerr.Failures = append(cerr.Failures, &SourceError{Source: src, Err: err})
	}
	return nil, cerr
}

func loadSource(src Source) (*Set, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	set, err := Parse(data, src.Format)
	if err != nil {
		return nil, err
	}
	set.source = src
	return set, nil
}

type document struct {
	Weapons []Spec `yaml:"weapons" toml:"weapons" json:"weapons"`
}

// Parse decodes a document with a top-level "weapons" list. Unknown fields are errors.
func Parse(data []byte, format Format) (*Set, error) {
	var doc document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty document")
			}
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.NewDecoder(bytes.NewReader(data)).Strict(true).Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown profile format %q", format)
	}
	return FromSpecs(doc.Weapons)
}

// Marshal encodes weapons as a document in the given format.
func Marshal(weapons []Weapon, format Format) ([]byte, error) {
	doc := document{Weapons: make([]Spec, len(weapons))}
	for i, w := range weapons {
		doc.Weapons[i] = w.Spec()
	}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("unknown profile format %q", format)
}

// Sample returns the starter profiles written by "profiles init".
func Sample() []Weapon {
	f := func(v float64) *float64 { return &v }
	specs := []Spec{
		{Name: "default"},
		{Name: "ar", DefaultPull: f(4.0), InitialDuration: f(0.2), SteadyPull: f(2.2), SleepTime: f(8.0), Acceleration: f(200.0)},
		{Name: "smg", DefaultPull: f(2.5), InitialDuration: f(0.3), SteadyPull: f(1.8), SleepTime: f(6.0), Acceleration: f(150.0)},
		{Name: "lmg", DefaultPull: f(3.0), InitialDuration: f(0.6), SteadyPull: f(2.6), SleepTime: f(10.0), Acceleration: f(80.0), Curve: string(CurveExponential)},
	}
	out := make([]Weapon, len(specs))
	for i, s := range specs {
		w, err := New(s)
		if err != nil {
			panic(err)
		}
		out[i] = w
	}
	return out
}

// Package schema validates documents against the embedded JSON Schemas, one
// per collection, before they are written or after they are read back.
package schema

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var files embed.FS

// Validator holds the compiled schemas keyed by collection name.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := files.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, e := range entries {
		raw, err := files.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		v.schemas[strings.TrimSuffix(e.Name(), ".json")] = s
	}
	return v, nil
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Default returns the process-wide validator. The schemas are embedded, so a
// compile failure is a programming error.
func Default() *Validator {
	defaultOnce.Do(func() {
		v, err := New()
		if err != nil {
			panic(err)
		}
		defaultV = v
	})
	return defaultV
}

// Collections lists the names with a registered schema.
func (v *Validator) Collections() []string {
	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks a Go value (marshalled through its json tags) against the
// schema for collection.
func (v *Validator) Validate(collection string, doc any) error {
	return v.validate(collection, gojsonschema.NewGoLoader(doc))
}

// ValidateJSON checks raw JSON, typically a column read back from the store.
func (v *Validator) ValidateJSON(collection string, raw []byte) error {
	return v.validate(collection, gojsonschema.NewBytesLoader(raw))
}

func (v *Validator) validate(collection string, doc gojsonschema.JSONLoader) error {
	s, ok := v.schemas[collection]
	if !ok {
		return apperr.Invalid(fmt.Sprintf("no schema for collection %q", collection))
	}
	result, err := s.Validate(doc)
	if err != nil {
		return apperr.Invalid(collection+" document is not valid JSON", err.Error())
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		details = append(details, re.String())
	}
	return apperr.Invalid(collection+" document rejected", details...)
}

// Validate checks doc with the default validator.
func Validate(collection string, doc any) error {
	return Default().Validate(collection, doc)
}

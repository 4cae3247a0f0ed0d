// Package schema builds tool input schemas from Go types and adds the
// constraints struct tags cannot express.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Option adjusts an inferred schema.
type Option func(*jsonschema.Schema)

// For infers the JSON schema of T and applies opts. It panics when T
// cannot be described, which only happens for programming errors.
func For[T any](opts ...Option) *jsonschema.Schema {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		var zero T
		panic(fmt.Sprintf("inferring schema for %T: %v", zero, err))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enum restricts property prop to values.
func Enum[V any](prop string, values ...V) Option {
	return func(s *jsonschema.Schema) {
		p := property(s, prop)
		for _, v := range values {
			p.Enum = append(p.Enum, v)
		}
	}
}

// Default documents the value used when prop is omitted.
func Default(prop string, v any) Option {
	return func(s *jsonschema.Schema) {
		data, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("default for %s: %v", prop, err))
		}
		property(s, prop).Default = data
	}
}

// Range bounds the numeric property prop inclusively.
func Range(prop string, lo, hi float64) Option {
	return func(s *jsonschema.Schema) {
		p := property(s, prop)
		p.Minimum = &lo
		p.Maximum = &hi
	}
}

func property(s *jsonschema.Schema, name string) *jsonschema.Schema {
	p, ok := s.Properties[name]
	if !ok {
		panic(fmt.Sprintf("schema has no property %q", name))
	}
	return p
}

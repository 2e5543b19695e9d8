// SPDX-License-Identifier: MIT

// Package params holds the keyword-style parameter maps passed between the
// geometry store and its adjacency, affinity and Laplacian collaborators.
//
// A Params value is owned per pipeline stage. Every compute call merges the
// caller's overrides on top of what the stage already holds, so settings
// persist across calls until explicitly overwritten.
package params

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
)

// ErrBadParam is returned when a parameter has a type or value the reader
// cannot interpret.
var ErrBadParam = errors.New("params: invalid parameter")

// Params maps parameter names (e.g. "radius", "n_neighbors") to values.
type Params map[string]any

// Clone returns an independent shallow copy; nil stays nil.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}

	return maps.Clone(p)
}

// Merge returns a new map holding p overlaid by every override in order.
// Neither p nor the overrides are modified.
func (p Params) Merge(overrides ...Params) Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	for _, o := range overrides {
		maps.Copy(out, o)
	}

	return out
}

// Equal reports deep equality; nil and empty maps are equal.
func (p Params) Equal(other Params) bool {
	if len(p) == 0 && len(other) == 0 {
		return true
	}

	return reflect.DeepEqual(map[string]any(p), map[string]any(other))
}

// Has reports whether key is set.
func (p Params) Has(key string) bool {
	_, ok := p[key]

	return ok
}

// Float reads key as float64, accepting any Go numeric type.
// A missing key yields def.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	}

	return def, paramErrorf(key, v, "number")
}

// Int reads key as int. Floats are accepted when integral.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case uint:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float64:
		if x == float64(int(x)) {
			return int(x), nil
		}
	}

	return def, paramErrorf(key, v, "integer")
}

// Bool reads key as bool.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	if b, isBool := v.(bool); isBool {
		return b, nil
	}

	return def, paramErrorf(key, v, "bool")
}

// String reads key as string.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	if s, isString := v.(string); isString {
		return s, nil
	}

	return def, paramErrorf(key, v, "string")
}

func paramErrorf(key string, v any, want string) error {
	return fmt.Errorf("%q=%v (%T), want %s: %w", key, v, v, want, ErrBadParam)
}

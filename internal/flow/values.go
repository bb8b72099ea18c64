package flow

import (
	"fmt"
	"maps"
)

// Values is the caller-defined data collected by a flow.
type Values map[string]any

// Clone returns a shallow copy. A nil map clones to an empty one.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	maps.Copy(out, v)
	return out
}

// Merge returns a copy of v with partial shallow-merged on top.
func (v Values) Merge(partial Values) Values {
	out := v.Clone()
	maps.Copy(out, partial)
	return out
}

// Bool returns the value for key when it is a bool, false otherwise.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// String returns the value for key formatted as a string. Missing keys
// return "".
func (v Values) String(key string) string {
	val, ok := v[key]
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

// Has reports whether key is present.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

package flowfile

import (
	"fmt"
	"slices"

	"github.com/mark3labs/wizflow/internal/flow"
)

// Condition is a predicate over flow values. Every clause that is set must
// hold. A condition naming only a field tests that the field is truthy.
type Condition struct {
	Field     string      `yaml:"field"`
	Equals    any         `yaml:"equals"`
	NotEquals any         `yaml:"not_equals"`
	In        []any       `yaml:"in"`
	Set       *bool       `yaml:"set"`
	All       []Condition `yaml:"all"`
	Any       []Condition `yaml:"any"`
}

// Eval evaluates the condition. A nil condition holds.
func (c *Condition) Eval(values flow.Values) bool {
	if c == nil {
		return true
	}

	for i := range c.All {
		if !c.All[i].Eval(values) {
			return false
		}
	}
	if len(c.Any) > 0 && !slices.ContainsFunc(c.Any, func(sub Condition) bool { return sub.Eval(values) }) {
		return false
	}
	if c.Field == "" {
		return true
	}

	val, present := values[c.Field]
	constrained := false

	if c.Set != nil {
		constrained = true
		if *c.Set != (present && !isEmpty(val)) {
			return false
		}
	}
	if c.Equals != nil {
		constrained = true
		if !present || !same(val, c.Equals) {
			return false
		}
	}
	if c.NotEquals != nil {
		constrained = true
		if present && same(val, c.NotEquals) {
			return false
		}
	}
	if len(c.In) > 0 {
		constrained = true
		if !present || !slices.ContainsFunc(c.In, func(want any) bool { return same(val, want) }) {
			return false
		}
	}

	if !constrained {
		return present && truthy(val)
	}
	return true
}

// same compares YAML scalars and collected values by their string form, so
// that `equals: 3` matches an answer typed as "3".
func same(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && x != "false"
	}
	return true
}

func (c *Condition) fields() []string {
	if c == nil {
		return nil
	}
	var out []string
	if c.Field != "" {
		out = append(out, c.Field)
	}
	for i := range c.All {
		out = append(out, c.All[i].fields()...)
	}
	for i := range c.Any {
		out = append(out, c.Any[i].fields()...)
	}
	return out
}

package flowfile

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/mark3labs/wizflow/internal/flow"
)

// Check reports structural problems in the flow. It returns nil for a
// runnable flow; otherwise the joined problems, one per error.
func (f *File) Check() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if len(f.Steps) == 0 {
		add("flow has no steps")
	}
	if _, err := flow.ParsePolicy(f.Policy); err != nil {
		add("policy: %v", err)
	}
	if f.Stepper != "" && !slices.Contains(Steppers, f.Stepper) {
		add("stepper: unknown variant %q", f.Stepper)
	}

	ids := make(map[string]bool)
	known := make(map[string]bool)
	for k := range f.Values {
		known[k] = true
	}
	for i, s := range f.Steps {
		if s.ID == "" {
			add("step %d: missing id", i+1)
			continue
		}
		if ids[s.ID] {
			add("step %s: duplicate id", s.ID)
		}
		ids[s.ID] = true
		for _, fd := range s.Fields {
			known[fd.Name] = true
		}
	}

	for _, s := range f.Steps {
		if s.ID == "" {
			continue
		}
		names := make(map[string]bool)
		for _, fd := range s.Fields {
			switch {
			case fd.Name == "":
				add("step %s: field without name", s.ID)
				continue
			case names[fd.Name]:
				add("step %s: duplicate field %s", s.ID, fd.Name)
			}
			names[fd.Name] = true

			switch fd.FieldType() {
			case TypeText, TypeMultiline, TypeConfirm:
			case TypeChoice:
				if len(fd.Options) == 0 {
					add("step %s: choice field %s has no options", s.ID, fd.Name)
				}
			default:
				add("step %s: field %s has unknown type %q", s.ID, fd.Name, fd.Type)
			}
			if fd.Pattern != "" {
				if _, err := regexp.Compile(fd.Pattern); err != nil {
					add("step %s: field %s has invalid pattern: %v", s.ID, fd.Name, err)
				}
			}
		}

		for j, r := range s.Next {
			switch {
			case r.Goto == "" && !r.Finish:
				add("step %s: rule %d needs goto or finish", s.ID, j+1)
			case r.Goto != "" && r.Finish:
				add("step %s: rule %d sets both goto and finish", s.ID, j+1)
			case r.Goto != "" && !ids[r.Goto]:
				add("step %s: rule %d targets unknown step %s", s.ID, j+1, r.Goto)
			}
			for _, name := range r.When.fields() {
				if !known[name] {
					add("step %s: rule %d references unknown field %s", s.ID, j+1, name)
				}
			}
		}
		for _, name := range s.VisibleWhen.fields() {
			if !known[name] {
				add("step %s: visible_when references unknown field %s", s.ID, name)
			}
		}
	}

	return errors.Join(problems...)
}

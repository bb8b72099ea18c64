package flowfile

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/mark3labs/wizflow/internal/flow"
)

// Validate checks one field value. It returns "" when the value is valid.
func (fd Field) Validate(values flow.Values) string {
	val, present := values[fd.Name]
	if !present || isEmpty(val) {
		if fd.Required {
			return "is required"
		}
		return ""
	}

	switch fd.FieldType() {
	case TypeConfirm:
		if _, err := parseConfirm(val); err != nil {
			return err.Error()
		}
		if fd.Required {
			if b, _ := parseConfirm(val); !b {
				return "must be confirmed"
			}
		}
	case TypeChoice:
		if !slices.Contains(fd.Options, fmt.Sprint(val)) {
			return fmt.Sprintf("must be one of %s", strings.Join(fd.Options, ", "))
		}
	}

	if fd.Pattern != "" {
		re, err := regexp.Compile(fd.Pattern)
		if err != nil {
			return fmt.Sprintf("invalid pattern: %v", err)
		}
		if !re.MatchString(fmt.Sprint(val)) {
			return fmt.Sprintf("does not match %s", fd.Pattern)
		}
	}
	return ""
}

// Coerce converts raw text input to the value stored for the field.
// Confirm fields become bools; everything else stays a string.
func (fd Field) Coerce(raw string) (any, error) {
	if fd.FieldType() == TypeConfirm {
		if strings.TrimSpace(raw) == "" {
			return false, nil
		}
		return parseConfirm(raw)
	}
	return raw, nil
}

// Format renders a stored value as editable text.
func (fd Field) Format(val any) string {
	if val == nil {
		return ""
	}
	if fd.FieldType() == TypeConfirm {
		if b, err := parseConfirm(val); err == nil {
			if b {
				return "yes"
			}
			return "no"
		}
	}
	return fmt.Sprint(val)
}

func parseConfirm(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "y", "yes", "true", "1", "on":
			return true, nil
		case "n", "no", "false", "0", "off":
			return false, nil
		}
	}
	return false, errors.New("must be yes or no")
}

// validateStep runs the field checks of a step and collects field errors.
func validateStep(def StepDef, values flow.Values) flow.Validation {
	res := flow.Valid()
	for _, fd := range def.Fields {
		if msg := fd.Validate(values); msg != "" {
			res = res.WithFieldError(fd.Name, msg)
		}
	}
	return res
}

// Coerce converts raw answers keyed by field name using the declared field
// types. Keys that match no field are kept as strings.
func (f *File) Coerce(raw map[string]string) (flow.Values, error) {
	byName := make(map[string]Field)
	for _, s := range f.Steps {
		for _, fd := range s.Fields {
			byName[fd.Name] = fd
		}
	}

	out := make(flow.Values, len(raw))
	for k, v := range raw {
		fd, ok := byName[k]
		if !ok {
			out[k] = v
			continue
		}
		val, err := fd.Coerce(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

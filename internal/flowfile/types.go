// Package flowfile loads declarative YAML flow definitions and compiles
// them into engine steps.
package flowfile

import (
	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/hooks"
)

// Field types.
const (
	TypeText      = "text"
	TypeChoice    = "choice"
	TypeConfirm   = "confirm"
	TypeMultiline = "multiline"
)

// Stepper variants understood by the terminal host.
var Steppers = []string{"chevron", "circles", "status"}

// File is a parsed flow definition.
type File struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Policy      string         `yaml:"policy"`
	Stepper     string         `yaml:"stepper"`
	Labels      flow.Labels    `yaml:"labels"`
	FinishHook  *hooks.Hook    `yaml:"finish_hook"`
	Values      map[string]any `yaml:"values"`
	Steps       []StepDef      `yaml:"steps"`
}

// StepDef declares one step.
type StepDef struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Icon        string      `yaml:"icon"`
	Optional    bool        `yaml:"optional"`
	VisibleWhen *Condition  `yaml:"visible_when"`
	EnterHook   *hooks.Hook `yaml:"enter_hook"`
	ExitHook    *hooks.Hook `yaml:"exit_hook"`
	Fields      []Field     `yaml:"fields"`
	Next        []Rule      `yaml:"next"`
}

// Field is an input collected by a step. The value is stored under Name.
type Field struct {
	Name        string   `yaml:"name"`
	Label       string   `yaml:"label"`
	Type        string   `yaml:"type"` // text (default), choice, confirm, multiline
	Required    bool     `yaml:"required"`
	Pattern     string   `yaml:"pattern"`
	Options     []string `yaml:"options"`
	Default     any      `yaml:"default"`
	Placeholder string   `yaml:"placeholder"`
	Help        string   `yaml:"help"`
}

// Rule routes to the next step. The first rule whose When holds wins; a
// rule without When always holds.
type Rule struct {
	When   *Condition `yaml:"when"`
	Goto   string     `yaml:"goto"`
	Finish bool       `yaml:"finish"`
}

// Step returns the definition with the given id.
func (f *File) Step(id string) (StepDef, bool) {
	for _, s := range f.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return StepDef{}, false
}

// FieldType returns the effective type of a field.
func (fd Field) FieldType() string {
	if fd.Type == "" {
		return TypeText
	}
	return fd.Type
}

// DisplayLabel returns the label, falling back to the name.
func (fd Field) DisplayLabel() string {
	if fd.Label != "" {
		return fd.Label
	}
	return fd.Name
}

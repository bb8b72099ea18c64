package flowfile

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/hooks"
	"github.com/mark3labs/wizflow/internal/logger"
)

// Options control compilation.
type Options struct {
	// WorkDir is the working directory of hooks.
	WorkDir string

	// Policy overrides the flow's navigation policy when set.
	Policy string

	// Stepper overrides the flow's stepper variant when set.
	Stepper string
}

// Compile checks f and turns it into an engine configuration. The returned
// config has no observers; OnFinish runs the finish hook, if any.
func Compile(f *File, opts Options) (flow.Config, error) {
	if err := f.Check(); err != nil {
		return flow.Config{}, err
	}

	policyName := f.Policy
	if opts.Policy != "" {
		policyName = opts.Policy
	}
	policy, err := flow.ParsePolicy(policyName)
	if err != nil {
		return flow.Config{}, err
	}

	variant := f.Stepper
	if opts.Stepper != "" {
		variant = opts.Stepper
	}

	steps := make([]flow.Step, 0, len(f.Steps))
	for i := range f.Steps {
		steps = append(steps, compileStep(f.Steps, i, opts.WorkDir))
	}

	onFinish := func(context.Context, flow.Values) error { return nil }
	if f.FinishHook != nil {
		onFinish = hooks.FinishAction(f.FinishHook, opts.WorkDir)
	}

	return flow.Config{
		Steps:         steps,
		InitialValues: f.InitialValues(),
		Policy:        policy,
		OnFinish:      onFinish,
		Labels:        f.Labels,
		Variant:       variant,
	}, nil
}

// InitialValues returns the flow's values merged with field defaults.
// Explicit values win over defaults.
func (f *File) InitialValues() flow.Values {
	values := make(flow.Values)
	for _, s := range f.Steps {
		for _, fd := range s.Fields {
			if fd.Default != nil {
				values[fd.Name] = fd.Default
			}
		}
	}
	for k, v := range f.Values {
		values[k] = v
	}
	return values
}

func compileStep(defs []StepDef, idx int, workDir string) flow.Step {
	def := defs[idx]
	step := flow.Step{
		ID:          flow.StepID(def.ID),
		Title:       def.Title,
		Description: def.Description,
		Icon:        def.Icon,
		Optional:    def.Optional,
		Render:      renderStep(def),
	}
	if step.Title == "" {
		step.Title = def.ID
	}

	if def.VisibleWhen != nil {
		cond := def.VisibleWhen
		step.Visible = cond.Eval
	}
	if def.EnterHook != nil {
		step.CanEnter = hooks.EnterGuard(def.EnterHook, workDir)
	}
	if len(def.Fields) > 0 || def.ExitHook != nil {
		step.CanExit = exitGuard(def, workDir)
	}
	if len(def.Next) > 0 {
		step.Next = nextResolver(defs, idx)
	}
	return step
}

// exitGuard validates fields first and only runs the exit hook when they pass.
func exitGuard(def StepDef, workDir string) flow.ExitGuard {
	var hook flow.ExitGuard
	if def.ExitHook != nil {
		hook = hooks.ExitGuard(def.ExitHook, workDir)
	}
	return func(ctx context.Context, values flow.Values) (flow.Validation, error) {
		if res := validateStep(def, values); !res.OK {
			return res, nil
		}
		if hook == nil {
			return flow.Valid(), nil
		}
		return hook(ctx, values)
	}
}

// nextResolver applies the step's rules in order. When none matches it
// falls back to the next visible step in file order.
func nextResolver(defs []StepDef, idx int) flow.NextResolver {
	def := defs[idx]
	return flow.NextWhen(func(values flow.Values) flow.StepID {
		for _, r := range def.Next {
			if !r.When.Eval(values) {
				continue
			}
			if r.Finish {
				return ""
			}
			return flow.StepID(r.Goto)
		}
		logger.Debug("No next rule matched for step %s, using file order", def.ID)
		for _, later := range defs[idx+1:] {
			if later.VisibleWhen.Eval(values) {
				return flow.StepID(later.ID)
			}
		}
		return ""
	})
}

// renderStep renders a step as Markdown: title, description and the current
// value of each field.
func renderStep(def StepDef) flow.RenderFunc {
	return func(api flow.StepAPI) string {
		var b strings.Builder
		title := def.Title
		if title == "" {
			title = def.ID
		}
		fmt.Fprintf(&b, "## %s\n", title)
		if def.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(def.Description))
		}
		if len(def.Fields) > 0 {
			values := api.Values()
			b.WriteString("\n")
			for _, fd := range def.Fields {
				val := fd.Format(values[fd.Name])
				if val == "" {
					val = "_(empty)_"
				}
				fmt.Fprintf(&b, "- **%s**: %s\n", fd.DisplayLabel(), val)
			}
		}
		if errs := api.Errors(); errs != nil && !errs.OK {
			b.WriteString("\n")
			for _, msg := range errs.Messages() {
				fmt.Fprintf(&b, "> %s\n", msg)
			}
		}
		return b.String()
	}
}

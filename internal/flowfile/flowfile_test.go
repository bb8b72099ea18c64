package flowfile

import (
	"context"
	"testing"

	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const onboarding = `
title: Workspace Onboarding
policy: free
stepper: circles
labels: {next: Continue, finish: Create}
values: {plan: starter}
steps:
  - id: account
    title: Account
    description: Tell us who you are.
    fields:
      - {name: email, label: Email, required: true, pattern: "^.+@.+$"}
      - {name: plan, label: Plan, type: choice, options: [starter, enterprise]}
    next:
      - {when: {field: plan, equals: enterprise}, goto: sso}
  - id: team
    title: Team
    optional: true
    fields:
      - {name: size, type: choice, options: ["1", "10", "100"], default: "1"}
  - id: sso
    title: Single sign-on
    visible_when: {field: plan, equals: enterprise}
    fields:
      - {name: sso, label: Enable SSO, type: confirm, required: true}
    next:
      - {finish: true}
  - id: review
    title: Review
`

func writeFlow(t *testing.T, content string) (afero.Fs, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/flows/onboarding.yml", []byte(content), 0o644))
	return fs, "/flows/onboarding.yml"
}

func compileOnboarding(t *testing.T) (*File, *flow.Wizard) {
	t.Helper()
	fs, path := writeFlow(t, onboarding)
	f, err := Load(fs, path)
	require.NoError(t, err)

	cfg, err := Compile(f, Options{WorkDir: t.TempDir()})
	require.NoError(t, err)
	w, err := flow.New(cfg)
	require.NoError(t, err)
	return f, w
}

func TestLoad(t *testing.T) {
	f, w := compileOnboarding(t)

	require.Equal(t, "workspace-onboarding", f.Session())
	require.Len(t, f.Steps, 4)
	require.Equal(t, flow.PolicyFree, w.Policy())
	require.Equal(t, "circles", w.Variant())
	require.Equal(t, "Continue", w.Labels().Next)
	require.Equal(t, []flow.StepID{"account", "team", "review"}, w.VisibleStepIDs())
	require.Equal(t, flow.Values{"plan": "starter", "size": "1"}, w.Values())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/missing.yml")
	require.Error(t, err)

	_, err = Parse([]byte(""))
	require.EqualError(t, err, "flow file is empty")

	_, err = Parse([]byte("title: x\nstepz: []\n"))
	require.Error(t, err, "unknown keys are rejected")
}

func TestSession_Fallback(t *testing.T) {
	require.Equal(t, "flow", (&File{}).Session())
	require.Equal(t, "cafe-setup", (&File{Title: "Café Setup!"}).Session())
}

func TestCompiledFlow_Branching(t *testing.T) {
	ctx := context.Background()
	_, w := compileOnboarding(t)

	require.Equal(t, flow.OutcomeInvalid, w.Next(ctx))
	errs := w.Errors()
	require.Equal(t, "is required", errs.FieldErrors["email"])

	w.SetValues(flow.Values{"email": "nope"})
	require.Equal(t, flow.OutcomeInvalid, w.Next(ctx))
	require.Contains(t, w.Errors().FieldErrors["email"], "does not match")

	w.SetValues(flow.Values{"email": "ada@example.com", "plan": "enterprise"})
	require.Equal(t, []flow.StepID{"account", "team", "sso", "review"}, w.VisibleStepIDs())
	require.Equal(t, flow.OutcomeMoved, w.Next(ctx))
	require.Equal(t, flow.StepID("sso"), w.ActiveStepID())

	require.Equal(t, flow.OutcomeInvalid, w.Next(ctx))
	require.Equal(t, "is required", w.Errors().FieldErrors["sso"])

	w.SetValues(flow.Values{"sso": false})
	require.Equal(t, flow.OutcomeInvalid, w.Next(ctx))
	require.Equal(t, "must be confirmed", w.Errors().FieldErrors["sso"])

	w.SetValues(flow.Values{"sso": true})
	require.Equal(t, flow.OutcomeFinished, w.Next(ctx), "finish rule")
}

func TestCompiledFlow_FallsBackToFileOrder(t *testing.T) {
	ctx := context.Background()
	_, w := compileOnboarding(t)

	w.SetValues(flow.Values{"email": "ada@example.com"})
	require.Equal(t, flow.OutcomeMoved, w.Next(ctx))
	require.Equal(t, flow.StepID("team"), w.ActiveStepID())

	require.Equal(t, flow.OutcomeMoved, w.Skip(ctx))
	require.Equal(t, flow.StepID("review"), w.ActiveStepID())
	require.Equal(t, flow.StatusSkipped, w.StepStatus("team"))
}

func TestCompiledFlow_Render(t *testing.T) {
	ctx := context.Background()
	_, w := compileOnboarding(t)

	out := w.RenderActive(ctx)
	require.Contains(t, out, "## Account")
	require.Contains(t, out, "Tell us who you are.")
	require.Contains(t, out, "- **Email**: _(empty)_")
	require.Contains(t, out, "- **Plan**: starter")

	w.Next(ctx)
	require.Contains(t, w.RenderActive(ctx), "> email: is required")
}

func TestCompile_Overrides(t *testing.T) {
	fs, path := writeFlow(t, onboarding)
	f, err := Load(fs, path)
	require.NoError(t, err)

	cfg, err := Compile(f, Options{Policy: "visited-only", Stepper: "status"})
	require.NoError(t, err)
	require.Equal(t, flow.PolicyVisitedOnly, cfg.Policy)
	require.Equal(t, "status", cfg.Variant)

	_, err = Compile(f, Options{Policy: "sideways"})
	require.ErrorIs(t, err, flow.ErrUnknownPolicy)
}

func TestCompile_Hooks(t *testing.T) {
	ctx := context.Background()
	f, err := Parse([]byte(`
title: Hooks
finish_hook: {command: "test \"$WIZFLOW_NAME\" = ada || { echo 'wrong name'; exit 1; }"}
steps:
  - id: name
    fields: [{name: name, required: true}]
    exit_hook: {command: "test \"$WIZFLOW_NAME\" != root", message: "Reserved name"}
  - id: gate
    enter_hook: {command: "test -n \"$WIZFLOW_NAME\""}
`))
	require.NoError(t, err)
	cfg, err := Compile(f, Options{WorkDir: t.TempDir()})
	require.NoError(t, err)
	w, err := flow.New(cfg)
	require.NoError(t, err)

	w.SetValues(flow.Values{"name": "root"})
	require.Equal(t, flow.OutcomeInvalid, w.Next(ctx))
	require.Equal(t, []string{"Reserved name"}, w.Errors().Errors)

	w.SetValues(flow.Values{"name": "bob"})
	require.Equal(t, flow.OutcomeMoved, w.Next(ctx))
	require.Equal(t, flow.OutcomeFinishFailed, w.Finish(ctx))
	require.Equal(t, "finish hook: wrong name", w.Errors().String())

	w.SetValues(flow.Values{"name": "ada"})
	require.Equal(t, flow.OutcomeFinished, w.Finish(ctx))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "no steps",
			content: "title: x\n",
			want:    []string{"flow has no steps"},
		},
		{
			name: "structure",
			content: `
policy: anywhere
stepper: zigzag
steps:
  - id: a
    fields:
      - {name: x, type: slider}
      - {name: y, type: choice}
      - {name: z, pattern: "("}
      - {name: z}
    next:
      - {goto: nowhere}
      - {when: {field: ghost}, finish: true}
      - {}
      - {goto: a, finish: true}
  - id: a
  - title: missing id
    visible_when: {field: x, equals: 1}
`,
			want: []string{
				"unknown navigation policy",
				`unknown variant "zigzag"`,
				"step 3: missing id",
				"step a: duplicate id",
				`field x has unknown type "slider"`,
				"choice field y has no options",
				"field z has invalid pattern",
				"duplicate field z",
				"targets unknown step nowhere",
				"references unknown field ghost",
				"rule 3 needs goto or finish",
				"rule 4 sets both goto and finish",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.content))
			require.NoError(t, err)
			err = f.Check()
			require.Error(t, err)
			for _, want := range tt.want {
				require.Contains(t, err.Error(), want)
			}
		})
	}

	_, w := compileOnboarding(t)
	require.NotNil(t, w)
}

func TestCondition(t *testing.T) {
	yes, no := true, false
	values := flow.Values{"plan": "pro", "seats": 3, "sso": true, "empty": ""}

	tests := []struct {
		name string
		cond *Condition
		want bool
	}{
		{"nil", nil, true},
		{"truthy", &Condition{Field: "sso"}, true},
		{"missing is falsy", &Condition{Field: "nope"}, false},
		{"equals", &Condition{Field: "plan", Equals: "pro"}, true},
		{"equals number as text", &Condition{Field: "seats", Equals: "3"}, true},
		{"not equals", &Condition{Field: "plan", NotEquals: "pro"}, false},
		{"not equals missing", &Condition{Field: "nope", NotEquals: "pro"}, true},
		{"in", &Condition{Field: "plan", In: []any{"free", "pro"}}, true},
		{"not in", &Condition{Field: "plan", In: []any{"free"}}, false},
		{"set", &Condition{Field: "plan", Set: &yes}, true},
		{"empty is unset", &Condition{Field: "empty", Set: &no}, true},
		{"all", &Condition{All: []Condition{{Field: "sso"}, {Field: "plan", Equals: "pro"}}}, true},
		{"all fails", &Condition{All: []Condition{{Field: "sso"}, {Field: "plan", Equals: "free"}}}, false},
		{"any", &Condition{Any: []Condition{{Field: "nope"}, {Field: "sso"}}}, true},
		{"any fails", &Condition{Any: []Condition{{Field: "nope"}, {Field: "empty"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.cond.Eval(values))
		})
	}
}

func TestField(t *testing.T) {
	confirm := Field{Name: "ok", Type: TypeConfirm}
	v, err := confirm.Coerce("Yes")
	require.NoError(t, err)
	require.Equal(t, true, v)
	v, err = confirm.Coerce("")
	require.NoError(t, err)
	require.Equal(t, false, v)
	_, err = confirm.Coerce("maybe")
	require.Error(t, err)
	require.Equal(t, "yes", confirm.Format(true))
	require.Equal(t, "no", confirm.Format("n"))

	text := Field{Name: "name"}
	v, err = text.Coerce("ada")
	require.NoError(t, err)
	require.Equal(t, "ada", v)
	require.Equal(t, "", text.Format(nil))
	require.Equal(t, "name", text.DisplayLabel())

	choice := Field{Name: "c", Type: TypeChoice, Options: []string{"a", "b"}}
	require.Empty(t, choice.Validate(flow.Values{"c": "a"}))
	require.Equal(t, "must be one of a, b", choice.Validate(flow.Values{"c": "z"}))
	require.Empty(t, choice.Validate(flow.Values{}), "optional and empty")
}

func TestFile_Coerce(t *testing.T) {
	fs, path := writeFlow(t, onboarding)
	f, err := Load(fs, path)
	require.NoError(t, err)

	values, err := f.Coerce(map[string]string{"sso": "y", "email": "a@b.c", "extra": "1"})
	require.NoError(t, err)
	require.Equal(t, flow.Values{"sso": true, "email": "a@b.c", "extra": "1"}, values)

	_, err = f.Coerce(map[string]string{"sso": "perhaps"})
	require.ErrorContains(t, err, "sso")
}

func TestLoadValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "answers.yml", []byte("email: a@b.c\nsso: true\n"), 0o644))

	values, err := LoadValues(fs, "answers.yml")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"email": "a@b.c", "sso": true}, values)
}

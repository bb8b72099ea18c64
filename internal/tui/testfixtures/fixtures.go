// Package testfixtures provides flows and helpers for TUI tests.
package testfixtures

import (
	"context"
	"testing"

	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/flowfile"
	"github.com/stretchr/testify/require"
)

// OnboardingFlow collects a name, an optional team and a confirmation.
const OnboardingFlow = `
title: Onboarding
steps:
  - id: account
    title: Account
    description: Tell us **who** you are.
    fields:
      - name: name
        label: Name
        required: true
      - name: email
        label: Email
        pattern: "^[^@]+@[^@]+$"
  - id: team
    title: Team
    optional: true
    fields:
      - name: team
        type: choice
        options: [core, infra, design]
  - id: notes
    title: Notes
    fields:
      - name: bio
        type: multiline
  - id: review
    title: Review
    description: Check your answers.
`

// Build parses src, compiles it and creates a wizard whose finish handler
// is finish (or a no-op when nil).
func Build(t *testing.T, src string, finish func(context.Context, flow.Values) error) (*flowfile.File, *flow.Wizard) {
	t.Helper()

	f, err := flowfile.Parse([]byte(src))
	require.NoError(t, err)

	cfg, err := flowfile.Compile(f, flowfile.Options{WorkDir: t.TempDir()})
	require.NoError(t, err)
	if finish != nil {
		cfg.OnFinish = finish
	}

	w, err := flow.New(cfg)
	require.NoError(t, err)
	return f, w
}

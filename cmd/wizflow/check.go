package main

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/mark3labs/wizflow/internal/flowfile"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <flow.yml>",
	Short: "Validate a flow file and print its outline",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	file, err := flowfile.Load(afero.NewOsFs(), args[0])
	if err != nil {
		return err
	}
	if err := file.Check(); err != nil {
		return fmt.Errorf("%s is invalid:\n%w", args[0], err)
	}

	out := cmd.OutOrStdout()
	title := file.Title
	if title == "" {
		title = args[0]
	}
	policy := file.Policy
	if policy == "" {
		policy = "visited-only"
	}
	_, _ = fmt.Fprintf(out, "%s: %d steps, policy %s\n\n", title, len(file.Steps), policy)
	_, _ = fmt.Fprintln(out, outline(file))
	return nil
}

// outline renders one table row per step.
func outline(file *flowfile.File) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "TITLE", "FIELDS", "ROUTING", "FLAGS")

	for i, s := range file.Steps {
		t.Row(fmt.Sprint(i+1), s.ID, s.Title, fieldSummary(s.Fields), routeSummary(s.Next), flagSummary(s))
	}
	return t.String()
}

func fieldSummary(fields []flowfile.Field) string {
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.Name
		if fd.Required {
			names[i] += "*"
		}
		if t := fd.FieldType(); t != flowfile.TypeText {
			names[i] += " (" + t + ")"
		}
	}
	return strings.Join(names, ", ")
}

func routeSummary(rules []flowfile.Rule) string {
	if len(rules) == 0 {
		return "next"
	}
	parts := make([]string, len(rules))
	for i, r := range rules {
		target := r.Goto
		if r.Finish {
			target = "finish"
		}
		if r.When != nil {
			parts[i] = "if → " + target
		} else {
			parts[i] = "→ " + target
		}
	}
	return strings.Join(parts, "; ")
}

func flagSummary(s flowfile.StepDef) string {
	var flags []string
	if s.Optional {
		flags = append(flags, "optional")
	}
	if s.VisibleWhen != nil {
		flags = append(flags, "conditional")
	}
	if s.EnterHook != nil {
		flags = append(flags, "enter-hook")
	}
	if s.ExitHook != nil {
		flags = append(flags, "exit-hook")
	}
	return strings.Join(flags, ", ")
}

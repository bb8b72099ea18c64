package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/wizflow/internal/logger"
	"github.com/mark3labs/wizflow/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█ █ █ █ ▀█ █▀▀ █   █▀█ █ █ █"
	logoText2 = "▀▄▀▄▀ █ █▄ █▀  █▄▄ █▄█ ▀▄▀▄▀"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wizflow",
	Short: "Run multi-step flows defined in YAML, in the terminal or headless",
}

func renderLogo() string {
	t := theme.Current()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

wizflow runs step-by-step flows declared in YAML. Each step collects fields,
guards its entry and exit with validation or shell hooks, and routes to the
next step by rules over the answers gathered so far.

Runs are journaled to an embedded NATS JetStream store so an interrupted flow
can be resumed and inspected later.`

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(setupCmd)
}

package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/logger"
)

// Execute runs a hook command with the flow values exported as environment
// variables. {{field}} placeholders become quoted references to those
// variables, so answers never become part of the command text.
// A failing, timed out or missing command is reported through Result, not
// as an error. Only context cancellation is returned as an error.
func Execute(ctx context.Context, hook *Hook, workDir string, values flow.Values) (Result, error) {
	if hook == nil || hook.Command == "" {
		return Result{}, nil
	}

	command := expandVariables(hook.Command, values)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), Environ(values)...)
	// sh may leave children holding the output pipes after a kill
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("Hook command timed out after %ds: %s", timeout, command)
		return Result{
			Output:   fmt.Sprintf("hook timed out after %ds", timeout),
			ExitCode: -1,
			TimedOut: true,
		}, nil
	}

	output := strings.TrimSpace(stdout.String())
	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
		if output != "" {
			output += "\n"
		}
		output += strings.TrimSpace(stderr.String())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Debug("Hook command exited with status %d", exitErr.ExitCode())
			return Result{Output: output, ExitCode: exitErr.ExitCode()}, nil
		}
		logger.Warn("Hook command failed: %v", err)
		return Result{Output: err.Error(), ExitCode: -1}, nil
	}

	logger.Debug("Hook executed successfully, output length: %d bytes", len(output))
	return Result{Output: output}, nil
}

// Environ converts values into WIZFLOW_<FIELD>=value pairs, sorted by key.
func Environ(values flow.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, EnvName(k)+"="+values.String(k))
	}
	return env
}

// EnvName returns the environment variable name for a value key.
func EnvName(key string) string {
	var b strings.Builder
	b.WriteString(EnvPrefix)
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// expandVariables replaces {{field}} placeholders with "${WIZFLOW_FIELD}".
func expandVariables(command string, values flow.Values) string {
	result := command
	for k := range values {
		result = strings.ReplaceAll(result, "{{"+k+"}}", `"${`+EnvName(k)+`}"`)
	}
	return result
}

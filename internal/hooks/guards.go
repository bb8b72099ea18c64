package hooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/wizflow/internal/flow"
)

// EnterGuard adapts a hook into an entry guard. Exit status zero allows entry.
func EnterGuard(hook *Hook, workDir string) flow.EnterGuard {
	return func(ctx context.Context, values flow.Values) (bool, error) {
		res, err := Execute(ctx, hook, workDir, values)
		if err != nil {
			return false, err
		}
		return res.OK(), nil
	}
}

// ExitGuard adapts a hook into an exit guard. A non-zero exit status fails
// validation with the hook's message, or its output when no message is set.
func ExitGuard(hook *Hook, workDir string) flow.ExitGuard {
	return func(ctx context.Context, values flow.Values) (flow.Validation, error) {
		res, err := Execute(ctx, hook, workDir, values)
		if err != nil {
			return flow.Validation{}, err
		}
		if res.OK() {
			return flow.Valid(), nil
		}
		return flow.Invalid(rejection(hook, res)), nil
	}
}

// FinishAction adapts a hook into a finish handler.
func FinishAction(hook *Hook, workDir string) func(context.Context, flow.Values) error {
	return func(ctx context.Context, values flow.Values) error {
		res, err := Execute(ctx, hook, workDir, values)
		if err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("finish hook: %s", rejection(hook, res))
		}
		return nil
	}
}

func rejection(hook *Hook, res Result) string {
	if hook.Message != "" {
		return hook.Message
	}
	if out := strings.TrimSpace(res.Output); out != "" {
		return out
	}
	return fmt.Sprintf("hook exited with status %d", res.ExitCode)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/flowfile"
	"github.com/mark3labs/wizflow/internal/headless"
	"github.com/mark3labs/wizflow/internal/journal"
	"github.com/mark3labs/wizflow/internal/logger"
	"github.com/mark3labs/wizflow/internal/tui/wizard"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var runFlags struct {
	headless  bool
	set       []string
	values    string
	session   string
	resume    bool
	policy    string
	stepper   string
	noJournal bool
	dataDir   string
}

var runCmd = &cobra.Command{
	Use:   "run <flow.yml>",
	Short: "Run a flow",
	Long: `Run a flow interactively, or headless with --headless.

Answers can be supplied with --values (a YAML mapping) and --set key=value;
--set wins over --values. Interactive runs start with those answers filled in.

Every run is journaled under the data directory. --resume continues the most
recent unfinished run of the session from where it stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runFlags.headless, "headless", false, "Run without TUI, answering from --set and --values")
	runCmd.Flags().StringArrayVar(&runFlags.set, "set", nil, "Answer a field (key=value), repeatable")
	runCmd.Flags().StringVar(&runFlags.values, "values", "", "YAML file of answers")
	runCmd.Flags().StringVar(&runFlags.session, "session", "", "Journal session name (default: slug of the flow title)")
	runCmd.Flags().BoolVar(&runFlags.resume, "resume", false, "Resume the session's unfinished run")
	runCmd.Flags().StringVar(&runFlags.policy, "policy", "", "Navigation policy: visited-only or free")
	runCmd.Flags().StringVar(&runFlags.stepper, "stepper", "", "Stepper variant: chevron, circles or status")
	runCmd.Flags().BoolVar(&runFlags.noJournal, "no-journal", false, "Do not record the run")
	runCmd.Flags().StringVar(&runFlags.dataDir, "data-dir", ".wizflow", "Data directory for the journal and UI state")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, runFlags.dataDir)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = runFlags.headless
	}
	if runFlags.noJournal {
		cfg.Journal = false
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := afero.NewOsFs()
	path := args[0]
	file, err := flowfile.Load(fs, path)
	if err != nil {
		return err
	}

	answers, err := collectAnswers(fs, file, runFlags.values, runFlags.set)
	if err != nil {
		return err
	}

	policy := runFlags.policy
	if policy == "" && file.Policy == "" {
		policy = cfg.Policy
	}
	compiled, err := flowfile.Compile(file, flowfile.Options{
		WorkDir: filepath.Dir(path),
		Policy:  policy,
		Stepper: runFlags.stepper,
	})
	if err != nil {
		return err
	}

	session := runFlags.session
	if session == "" {
		session = file.Session()
	}
	if err := checkSession(session); err != nil {
		return err
	}

	var rec *journal.Recorder
	if cfg.Journal {
		bus, store, err := openJournal(ctx, cfg.DataDir)
		if err != nil {
			return err
		}
		defer func() { _ = bus.Close() }()

		if runFlags.resume {
			if err := applyResume(ctx, store, session, &compiled); err != nil {
				return err
			}
		}
		rec = journal.NewRecorder(ctx, store, session)
		attachRecorder(&compiled, rec)
	} else if runFlags.resume {
		return errors.New("--resume needs the journal; drop --no-journal")
	}

	w, err := flow.New(compiled)
	if err != nil {
		return fmt.Errorf("failed to start flow: %w", err)
	}
	if rec != nil {
		rec.Attach(w)
	}

	if cfg.Headless {
		return runHeadless(ctx, cmd.OutOrStdout(), file, w, answers)
	}

	if len(answers) > 0 {
		w.SetValues(answers)
		rec.ValuesChanged()
	}
	opts := wizard.Options{
		DataDir:        cfg.DataDir,
		Stepper:        runFlags.stepper,
		DefaultStepper: cfg.Stepper,
	}
	if rec != nil {
		opts.OnValues = rec.ValuesChanged
	}
	if err := wizard.Run(ctx, w, file, opts); err != nil {
		return err
	}
	return printValues(cmd.OutOrStdout(), file, w.Values())
}

func runHeadless(ctx context.Context, out io.Writer, file *flowfile.File, w *flow.Wizard, answers flow.Values) error {
	err := headless.Run(ctx, w, answers, headless.Options{
		Progress: func(step flow.Step, _ string) {
			logger.Info("Flow %q at step %s", file.Title, step.ID)
		},
	})
	if err != nil {
		return err
	}
	return printValues(out, file, w.Values())
}

// collectAnswers merges --values and --set, coercing --set text by field type.
func collectAnswers(fs afero.Fs, file *flowfile.File, valuesPath string, sets []string) (flow.Values, error) {
	answers := flow.Values{}
	if valuesPath != "" {
		loaded, err := flowfile.LoadValues(fs, valuesPath)
		if err != nil {
			return nil, err
		}
		answers = answers.Merge(loaded)
	}

	raw := make(map[string]string, len(sets))
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		raw[strings.TrimSpace(key)] = value
	}
	coerced, err := file.Coerce(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --set: %w", err)
	}
	return answers.Merge(coerced), nil
}

// applyResume restores the last snapshot of an unfinished session.
func applyResume(ctx context.Context, store *journal.Store, session string, cfg *flow.Config) error {
	st, err := store.Load(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", session, err)
	}
	switch {
	case st.Snapshot == nil:
		logger.Info("No journal for session %s, starting fresh", session)
	case st.Finished:
		logger.Info("Session %s already finished, starting fresh", session)
	default:
		logger.Info("Resuming session %s at step %s", session, st.Snapshot.ActiveStepID)
		cfg.Resume = st.Snapshot
	}
	return nil
}

// attachRecorder chains the recorder onto the flow observers.
func attachRecorder(cfg *flow.Config, rec *journal.Recorder) {
	onChange := cfg.OnStepChange
	cfg.OnStepChange = func(from, to flow.StepID, values flow.Values) {
		if onChange != nil {
			onChange(from, to, values)
		}
		rec.OnStepChange(from, to, values)
	}

	onCancel := cfg.OnCancel
	cfg.OnCancel = func() {
		if onCancel != nil {
			onCancel()
		}
		rec.OnCancel()
	}

	cfg.OnFinish = rec.WrapFinish(cfg.OnFinish)
}

// printValues writes the final answers as YAML.
func printValues(out io.Writer, file *flowfile.File, values flow.Values) error {
	data, err := yaml.Marshal(map[string]any(values))
	if err != nil {
		return fmt.Errorf("failed to encode values: %w", err)
	}
	title := file.Title
	if title == "" {
		title = "flow"
	}
	_, err = fmt.Fprintf(out, "# %s finished\n%s", title, data)
	return err
}

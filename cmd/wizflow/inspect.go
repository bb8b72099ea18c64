package main

import (
	"fmt"

	"github.com/mark3labs/wizflow/internal/journal"
	"github.com/spf13/cobra"
)

var inspectFlags struct {
	dataDir string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [session]",
	Short: "Show the journal of a session, or list sessions",
	Long: `Show every recorded event of a session with the value changes between
consecutive snapshots. Without a session name, list the recorded sessions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFlags.dataDir, "data-dir", ".wizflow", "Data directory holding the journal")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if err := checkSession(args[0]); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(cmd, inspectFlags.dataDir)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	bus, store, err := openJournal(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		sessions, err := store.Sessions(ctx)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			_, _ = fmt.Fprintln(out, "No sessions recorded.")
			return nil
		}
		for _, s := range sessions {
			_, _ = fmt.Fprintln(out, s)
		}
		return nil
	}

	st, err := store.Load(ctx, args[0])
	if err != nil {
		return err
	}
	if len(st.Events) == 0 {
		return fmt.Errorf("no events recorded for session %s", args[0])
	}

	_, _ = fmt.Fprintf(out, "Session %s: %s, %d events\n\n", st.Session, sessionStatus(st), len(st.Events))
	return journal.WriteTimeline(out, st)
}

func sessionStatus(st *journal.State) string {
	switch {
	case st.Finished:
		return "finished"
	case st.Cancelled:
		return "cancelled"
	case st.Snapshot != nil:
		return "in progress at " + string(st.Snapshot.ActiveStepID)
	default:
		return "in progress"
	}
}

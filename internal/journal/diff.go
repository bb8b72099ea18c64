package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/mark3labs/wizflow/internal/flow"
)

// ValuesDiff returns a unified diff between two value sets rendered as
// indented JSON. Equal sets produce "".
func ValuesDiff(before, after flow.Values) string {
	a := renderValues(before)
	b := renderValues(after)
	if a == b {
		return ""
	}
	return udiff.Unified("before", "after", a, b)
}

func renderValues(v flow.Values) string {
	if v == nil {
		v = flow.Values{}
	}
	// map keys are sorted by encoding/json
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<unrenderable: %v>\n", err)
	}
	return string(data) + "\n"
}

// WriteTimeline prints each event of state and the value changes between
// consecutive snapshots.
func WriteTimeline(w io.Writer, state *State) error {
	var prev flow.Values
	for i, ev := range state.Events {
		line := fmt.Sprintf("%3d  %s  %-13s", i+1, ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Type)
		if ev.Data != "" {
			line += "  " + ev.Data
		}
		if ev.Snapshot != nil && ev.Snapshot.ActiveStepID != "" {
			line += fmt.Sprintf("  [at %s]", ev.Snapshot.ActiveStepID)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}

		if ev.Snapshot == nil {
			continue
		}
		if prev != nil {
			if d := ValuesDiff(prev, ev.Snapshot.Values); d != "" {
				if _, err := fmt.Fprint(w, indent(d, "     ")); err != nil {
					return err
				}
			}
		}
		prev = ev.Snapshot.Values
		if prev == nil {
			prev = flow.Values{}
		}
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(l)
	}
	return b.String()
}

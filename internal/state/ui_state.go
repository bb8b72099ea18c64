package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/wizflow/internal/logger"
)

const fileName = "ui-state.json"

// UIState holds terminal preferences that carry across runs.
type UIState struct {
	Stepper StepperState `json:"stepper"`
}

// StepperState remembers the stepper variant last chosen with ctrl+t.
type StepperState struct {
	Variant string `json:"variant,omitempty"`
}

// DefaultUIState returns the state used before anything was saved.
func DefaultUIState() *UIState {
	return &UIState{}
}

// Load reads <dataDir>/ui-state.json, returning defaults when the file is
// missing or unreadable.
func Load(dataDir string) *UIState {
	path := filepath.Join(dataDir, fileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read UI state file: %v", err)
		}
		return DefaultUIState()
	}

	var state UIState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("Failed to parse UI state JSON: %v", err)
		return DefaultUIState()
	}
	return &state
}

// Save writes the UI state, creating dataDir if needed.
func Save(dataDir string, state *UIState) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, fileName)
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling UI state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing UI state file: %w", err)
	}

	logger.Debug("UI state saved to %s", path)
	return nil
}

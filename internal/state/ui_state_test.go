package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Missing(t *testing.T) {
	st := Load(filepath.Join(t.TempDir(), "absent"))
	require.Equal(t, DefaultUIState(), st)
	require.Empty(t, st.Stepper.Variant)
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	require.NoError(t, Save(dir, &UIState{Stepper: StepperState{Variant: "circles"}}))
	require.FileExists(t, filepath.Join(dir, "ui-state.json"))

	require.Equal(t, "circles", Load(dir).Stepper.Variant)
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ui-state.json"), []byte("invalid json {{{"), 0644))

	require.Equal(t, DefaultUIState(), Load(dir))
}

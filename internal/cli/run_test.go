package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/config"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/store"
)

const failingScenario = `
name: wrong_phase
description: Asserts a phase the session never reaches
problem:
  id: two-sum
steps:
  - dispatch: session.started
assertions:
  - type: phase
    phase: done
`

const presetlessScenario = `
name: presetless
description: Uses the configured default preset
problem:
  id: two-sum
steps:
  - dispatch: session.started
  - dispatch: coding.started
  - dispatch: nudge.requested
  - dispatch: nudge.requested
    expect_error: NUDGE_BUDGET_EXHAUSTED
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCommand_AllPass(t *testing.T) {
	out, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ happy_path (10 events, 1 rejected as expected)")
	assert.Contains(t, out, "✓ reflection_rules")
	assert.Contains(t, out, "5 passed, 0 failed, 5 total")
}

func TestRunCommand_JSON(t *testing.T) {
	out, err := execute(t, NewRunCommand(&RootOptions{Format: "json"}), scenariosDir)
	require.NoError(t, err)

	resp := decode[RunResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Data.Total)
	assert.Equal(t, 5, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 5)
	assert.Equal(t, "early_submission", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "scenario-early_submission", resp.Data.Scenarios[0].SessionID)
}

func TestRunCommand_Filter(t *testing.T) {
	out, err := execute(t, NewRunCommand(&RootOptions{Format: "json"}), scenariosDir, "--filter", "*_path")
	require.NoError(t, err)

	resp := decode[RunResult](t, out)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "happy_path", resp.Data.Scenarios[0].Name)
}

func TestRunCommand_InvalidFilter(t *testing.T) {
	_, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	out, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_phase")
	assert.Contains(t, out, "assertion 0:")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
	assert.Contains(t, out, "Error [E_SCENARIO]")
}

func TestRunCommand_LoadErrorReported(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\n")

	out, err := execute(t, NewRunCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	resp := decode[RunResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "broken", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "failed to load scenario")
}

func TestRunCommand_UnknownPreset(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "marathon.yaml", "name: m\ndescription: d\npreset: marathon\nproblem:\n  id: p\nsteps:\n  - tick: true\n")

	out, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, `unknown preset "marathon"`)
}

func TestRunCommand_DefaultPresetFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "presetless.yaml", presetlessScenario)

	cfg := config.Default()
	cfg.DefaultPreset = "high_pressure"
	out, err := execute(t, NewRunCommand(&RootOptions{Format: "text", Config: &cfg}), dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ presetless")
}

func TestRunCommand_MissingPath(t *testing.T) {
	_, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestRunCommand_EmptyDir(t *testing.T) {
	out, err := execute(t, NewRunCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestRunCommand_PersistsSessions(t *testing.T) {
	db := populate(t)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	sessions, err := st.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 5)

	rec, err := st.ReadSession(ctx, "scenario-nudge_budget")
	require.NoError(t, err)
	assert.Equal(t, ir.StatusAbandoned, rec.Status)
	assert.Equal(t, 4, rec.EventCount)
}

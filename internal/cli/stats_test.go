package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/store"
)

func TestStatsCommand_Text(t *testing.T) {
	db := populate(t)

	out, err := execute(t, NewStatsCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions: 5\n")
	assert.Contains(t, out, "Events:   34\n")
	assert.Contains(t, out, "By status:\n  abandoned_explicit   1\n  completed            3\n  in_progress          1\n")
	assert.Contains(t, out, "By preset:\n  high_pressure        1\n  no_assistance        1\n  standard             3\n")
	assert.Contains(t, out, "Completed: 3\n")
	assert.Contains(t, out, "Average nudges (completed): 0.33\n")
}

func TestStatsCommand_JSON(t *testing.T) {
	db := populate(t)

	out, err := execute(t, NewStatsCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)

	resp := decode[store.Stats](t, out)
	assert.Equal(t, 5, resp.Data.Sessions)
	assert.Equal(t, 3, resp.Data.ByStatus[ir.StatusCompleted])
	assert.Equal(t, 1, resp.Data.ByPreset[preset.Name("high_pressure")])
	assert.Equal(t, 1, resp.Data.NudgesUsed)
}

func TestStatsCommand_EmptyDatabase(t *testing.T) {
	db := testDB(t)
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, NewStatsCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions: 0\n")
	assert.NotContains(t, out, "By status:")
	assert.Contains(t, out, "Average nudges (completed): 0.00\n")
}

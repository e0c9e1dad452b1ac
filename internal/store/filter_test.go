package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/engine"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

func TestCompileWhere_Empty(t *testing.T) {
	sql, params, err := compileWhere(nil)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", sql)
	assert.Empty(t, params)
}

func TestCompileWhere_Single(t *testing.T) {
	sql, params, err := compileWhere([]Predicate{PresetIs(preset.HighPressure)})
	require.NoError(t, err)
	assert.Equal(t, "s.preset = ?", sql)
	assert.Equal(t, []any{"high_pressure"}, params)
}

func TestCompileWhere_Conjunction(t *testing.T) {
	sql, params, err := compileWhere([]Predicate{
		StatusIs(ir.StatusCompleted),
		And{Predicates: []Predicate{ProblemIs("two-sum"), And{}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "(s.status = ? AND (s.problem_id = ? AND 1 = 1))", sql)
	assert.Equal(t, []any{"completed", "two-sum"}, params)

	// Values are bound, never interpolated.
	assert.NotContains(t, sql, "two-sum")
}

func TestCompileWhere_IntValue(t *testing.T) {
	sql, params, err := compileWhere([]Predicate{Equals{Column: ColumnStatus, Value: ir.IRInt(3)}})
	require.NoError(t, err)
	assert.Equal(t, "s.status = ?", sql)
	assert.Equal(t, []any{int64(3)}, params)
}

func TestCompileWhere_Errors(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		want string
	}{
		{"unknown column", Equals{Column: "hash", Value: ir.IRString("x")}, `unknown filter column "hash"`},
		{"injection attempt", Equals{Column: "status; DROP TABLE events", Value: ir.IRString("x")}, "unknown filter column"},
		{"unsupported value", Equals{Column: ColumnStatus, Value: ir.IRBool(true)}, "unsupported value type"},
		{"nested error", And{Predicates: []Predicate{Equals{Column: "id"}}}, "unknown filter column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := compileWhere([]Predicate{tt.pred})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestListSessions_Filtered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	other := testMeta("c", preset.Standard)
	other.Problem = ir.Problem{ID: "lru-cache"}
	for i, meta := range []engine.Meta{
		testMeta("a", preset.Standard),
		testMeta("b", preset.HighPressure),
		other,
	} {
		require.NoError(t, s.CreateSession(ctx, meta, int64(i)))
	}

	ids := func(filters ...Predicate) []string {
		t.Helper()
		records, err := s.ListSessions(ctx, filters...)
		require.NoError(t, err)
		out := []string{}
		for _, r := range records {
			out = append(out, r.Meta.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids())
	assert.Equal(t, []string{"a", "c"}, ids(PresetIs(preset.Standard)))
	assert.Equal(t, []string{"a"}, ids(PresetIs(preset.Standard), ProblemIs("two-sum")))
	assert.Equal(t, []string{"a", "b", "c"}, ids(StatusIs(ir.StatusInProgress)))
	assert.Equal(t, []string{}, ids(StatusIs(ir.StatusCompleted)))

	_, err := s.ListSessions(ctx, Equals{Column: "created_at", Value: ir.IRInt(0)})
	require.Error(t, err)
}

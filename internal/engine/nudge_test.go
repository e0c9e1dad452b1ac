package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

func TestClassifyNudge(t *testing.T) {
	const duration = int64(900_000)

	tests := []struct {
		name    string
		elapsed int64
		want    ir.NudgeTiming
	}{
		{"start", 0, ir.NudgeEarly},
		{"early", 200_000, ir.NudgeEarly},
		{"just before one third", 299_999, ir.NudgeEarly},
		{"one third", 300_000, ir.NudgeMid},
		{"mid", 450_000, ir.NudgeMid},
		{"just before two thirds", 599_999, ir.NudgeMid},
		{"two thirds", 600_000, ir.NudgeLate},
		{"late", 800_000, ir.NudgeLate},
		{"end", duration, ir.NudgeLate},
		{"past end clamps", duration * 2, ir.NudgeLate},
		{"before start clamps", -50_000, ir.NudgeEarly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const start = int64(1_000_000)
			assert.Equal(t, tt.want, ClassifyNudge(start+tt.elapsed, start, duration))
		})
	}
}

func TestClassifyNudge_ZeroDuration(t *testing.T) {
	assert.Equal(t, ir.NudgeLate, ClassifyNudge(10, 10, 0))
}

func TestCheckNudgeBudget(t *testing.T) {
	st := State{Phase: ir.PhaseCoding, Preset: "standard", Nudges: NudgeState{Budget: 2, Used: 1}}
	assert.Nil(t, checkNudgeBudget(st))

	st.Nudges.Used = 2
	derr := checkNudgeBudget(st)
	if assert.NotNil(t, derr) {
		assert.Equal(t, CodeNudgeBudgetExhausted, derr.Code)
	}

	st.Nudges = NudgeState{Budget: 0}
	derr = checkNudgeBudget(st)
	if assert.NotNil(t, derr) {
		assert.Equal(t, CodeNudgesDisabled, derr.Code)
	}
}

package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

func TestBuiltin_Resolve(t *testing.T) {
	cfg, err := Builtin().Resolve(Standard)
	require.NoError(t, err)
	assert.Equal(t, ir.PresetConfig{
		PrepDuration:   300000,
		CodingDuration: 2100000,
		SilentDuration: 300000,
		NudgeBudget:    3,
	}, cfg)

	cfg, err = Builtin().Resolve(HighPressure)
	require.NoError(t, err)
	assert.Equal(t, int64(180000), cfg.PrepDuration)
	assert.Equal(t, int64(1500000), cfg.CodingDuration)
	assert.Equal(t, 1, cfg.NudgeBudget)

	cfg, err = Builtin().Resolve(NoAssistance)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.NudgeBudget)
}

func TestBuiltin_EmptyNameResolvesDefault(t *testing.T) {
	def, err := Builtin().Resolve(Default)
	require.NoError(t, err)
	got, err := Builtin().Resolve("")
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestBuiltin_UnknownPreset(t *testing.T) {
	_, err := Builtin().Resolve("marathon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preset")
}

func TestBuiltin_Names(t *testing.T) {
	assert.Equal(t, []Name{Standard, HighPressure, NoAssistance}, Builtin().Names())
	assert.True(t, Builtin().Has(NoAssistance))
	assert.False(t, Builtin().Has("marathon"))
}

func TestNewCatalog_RejectsDuplicatesAndInvalid(t *testing.T) {
	ok := ir.PresetConfig{PrepDuration: 1, CodingDuration: 1, SilentDuration: 1}

	_, err := NewCatalog(Entry{"a", ok}, Entry{"a", ok})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewCatalog(Entry{"", ok})
	assert.ErrorContains(t, err, "name is required")

	_, err = NewCatalog(Entry{"bad", ir.PresetConfig{}})
	assert.ErrorContains(t, err, ErrPrepDuration)
}

func TestCatalog_Merge(t *testing.T) {
	custom, err := NewCatalog(
		Entry{Standard, ir.PresetConfig{PrepDuration: 1, CodingDuration: 2, SilentDuration: 3, NudgeBudget: 4}},
		Entry{"marathon", ir.PresetConfig{PrepDuration: 10, CodingDuration: 20, SilentDuration: 30}},
	)
	require.NoError(t, err)

	merged := Builtin().Merge(custom)
	assert.Equal(t, []Name{Standard, HighPressure, NoAssistance, "marathon"}, merged.Names())

	cfg, err := merged.Resolve(Standard)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.NudgeBudget, "later catalog overrides")

	// Builtin is untouched.
	cfg, err = Builtin().Resolve(Standard)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.NudgeBudget)
}

func TestValidate(t *testing.T) {
	errs := Validate(ir.PresetConfig{PrepDuration: 1, CodingDuration: 1, SilentDuration: 1, NudgeBudget: 3})
	assert.Empty(t, errs)

	errs = Validate(ir.PresetConfig{PrepDuration: 0, CodingDuration: -1, SilentDuration: 1, NudgeBudget: 11})
	require.Len(t, errs, 3)
	assert.Equal(t, ErrPrepDuration, errs[0].Code)
	assert.Equal(t, ErrCodingDuration, errs[1].Code)
	assert.Equal(t, ErrNudgeBudget, errs[2].Code)
}

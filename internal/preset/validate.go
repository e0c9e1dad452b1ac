package preset

import (
	"fmt"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// MaxNudgeBudget bounds the nudge budget of any preset.
const MaxNudgeBudget = 10

// Validation error codes (P100-P199)
const (
	ErrPrepDuration   = "P101"
	ErrCodingDuration = "P102"
	ErrSilentDuration = "P103"
	ErrNudgeBudget    = "P104"
)

// ValidationError reports one invalid preset field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a resolved config. Returns all errors found.
func Validate(cfg ir.PresetConfig) []ValidationError {
	var errs []ValidationError

	durations := []struct {
		field string
		code  string
		value int64
	}{
		{"prep", ErrPrepDuration, cfg.PrepDuration},
		{"coding", ErrCodingDuration, cfg.CodingDuration},
		{"silent", ErrSilentDuration, cfg.SilentDuration},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, ValidationError{
				Field:   d.field,
				Message: fmt.Sprintf("duration must be positive, got %dms", d.value),
				Code:    d.code,
			})
		}
	}

	if cfg.NudgeBudget < 0 || cfg.NudgeBudget > MaxNudgeBudget {
		errs = append(errs, ValidationError{
			Field:   "nudges",
			Message: fmt.Sprintf("nudge budget must be between 0 and %d, got %d", MaxNudgeBudget, cfg.NudgeBudget),
			Code:    ErrNudgeBudget,
		})
	}

	return errs
}

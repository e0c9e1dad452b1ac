package preset

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// schemaSrc closes each preset so misspelled fields fail compilation.
const schemaSrc = `
#Preset: {
	prep:   string
	coding: string
	silent: string
	nudges: int & >=0 & <=10
}

presets: [string]: #Preset
`

// CompileError is a preset compilation failure with an optional CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileFile reads and compiles a CUE preset file.
func CompileFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}
	return Compile(src, path)
}

// Compile parses a CUE preset document into a Catalog.
// Presets keep their declaration order.
func Compile(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("preset-schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile preset schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	presetsVal := unified.LookupPath(cue.ParsePath("presets"))
	if !presetsVal.Exists() {
		return nil, &CompileError{Field: "presets", Message: "presets block is required", Pos: v.Pos()}
	}

	iter, err := presetsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var entries []Entry
	for iter.Next() {
		cfg, err := compilePreset(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: Name(iter.Label()), Config: cfg})
	}
	if len(entries) == 0 {
		return nil, &CompileError{Field: "presets", Message: "at least one preset is required", Pos: presetsVal.Pos()}
	}

	return NewCatalog(entries...)
}

func compilePreset(name string, v cue.Value) (ir.PresetConfig, error) {
	var cfg ir.PresetConfig
	var err error

	if cfg.PrepDuration, err = durationField(name, v, "prep"); err != nil {
		return cfg, err
	}
	if cfg.CodingDuration, err = durationField(name, v, "coding"); err != nil {
		return cfg, err
	}
	if cfg.SilentDuration, err = durationField(name, v, "silent"); err != nil {
		return cfg, err
	}

	nudges, err := v.LookupPath(cue.ParsePath("nudges")).Int64()
	if err != nil {
		return cfg, formatCUEError(err)
	}
	cfg.NudgeBudget = int(nudges)

	if errs := Validate(cfg); len(errs) > 0 {
		return cfg, &CompileError{
			Field:   fmt.Sprintf("presets.%s.%s", name, errs[0].Field),
			Message: errs[0].Message,
			Pos:     v.Pos(),
		}
	}
	return cfg, nil
}

// durationField reads a Go duration string ("90s", "5m") as milliseconds.
func durationField(preset string, v cue.Value, field string) (int64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	s, err := fv.String()
	if err != nil {
		return 0, formatCUEError(err)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &CompileError{
			Field:   fmt.Sprintf("presets.%s.%s", preset, field),
			Message: fmt.Sprintf("invalid duration %q", s),
			Pos:     fv.Pos(),
		}
	}
	return d.Milliseconds(), nil
}

// formatCUEError keeps the first CUE error together with its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &CompileError{Field: "cue", Message: first.Error()}
}

package store

import (
	"fmt"
	"strings"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/preset"
)

// Predicate filters session rows in ListSessions.
//
// This is a sealed interface: only Equals and And implement it, so the
// compiler below can switch over every case.
type Predicate interface {
	predicateNode()
}

// Column is a filterable sessions column.
type Column string

const (
	ColumnStatus  Column = "status"
	ColumnPreset  Column = "preset"
	ColumnProblem Column = "problem_id"
)

var filterColumns = map[Column]bool{
	ColumnStatus:  true,
	ColumnPreset:  true,
	ColumnProblem: true,
}

// Equals matches rows whose Column equals Value.
type Equals struct {
	Column Column
	Value  ir.IRValue
}

// And matches rows satisfying every predicate. An empty And matches all rows.
type And struct {
	Predicates []Predicate
}

func (Equals) predicateNode() {}
func (And) predicateNode()    {}

// StatusIs matches sessions with the given status.
func StatusIs(s ir.Status) Predicate {
	return Equals{Column: ColumnStatus, Value: ir.IRString(s)}
}

// PresetIs matches sessions run under the named preset.
func PresetIs(name preset.Name) Predicate {
	return Equals{Column: ColumnPreset, Value: ir.IRString(name)}
}

// ProblemIs matches sessions for one problem id.
func ProblemIs(id string) Predicate {
	return Equals{Column: ColumnProblem, Value: ir.IRString(id)}
}

// compileWhere turns predicates into a WHERE fragment over the sessions
// alias "s". Values are always bound as ? parameters.
func compileWhere(preds []Predicate) (string, []any, error) {
	if len(preds) == 0 {
		return "1 = 1", nil, nil
	}
	return compilePredicate(And{Predicates: preds})
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case And:
		return compileAnd(pred)
	case nil:
		return "1 = 1", nil, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq Equals) (string, []any, error) {
	if !filterColumns[eq.Column] {
		return "", nil, fmt.Errorf("unknown filter column %q", eq.Column)
	}
	param, err := valueParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("filter %s: %w", eq.Column, err)
	}
	return fmt.Sprintf("s.%s = ?", eq.Column), []any{param}, nil
}

func compileAnd(and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, ps, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	if len(parts) == 1 {
		return parts[0], params, nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", params, nil
}

func valueParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

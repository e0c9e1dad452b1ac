package engine

import (
	"fmt"
	"slices"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
)

func (k fieldKind) String() string {
	if k == kindInt {
		return "integer"
	}
	return "string"
}

type fieldSpec struct {
	kind     fieldKind
	required bool
}

type payloadSchema map[string]fieldSpec

var audioSchema = payloadSchema{
	"mimeType":   {kind: kindString},
	"durationMs": {kind: kindInt},
	"reason":     {kind: kindString},
}

var reflectionSchema = payloadSchema{
	ir.FieldClearApproach:       {kind: kindString, required: true},
	ir.FieldProlongedStall:      {kind: kindString, required: true},
	ir.FieldRecoveredFromStall:  {kind: kindString, required: true},
	ir.FieldTimePressure:        {kind: kindString, required: true},
	ir.FieldWouldChangeApproach: {kind: kindString, required: true},
}

// Event types missing from this table accept an empty payload only.
var payloadSchemas = map[ir.EventType]payloadSchema{
	ir.EventSessionStarted: {
		"problemId": {kind: kindString},
		"preset":    {kind: kindString},
	},
	ir.EventPrepInvariantsChanged: {"invariants": {kind: kindString, required: true}},
	ir.EventCodeChanged:           {"code": {kind: kindString, required: true}},
	ir.EventSessionAbandoned:      {"reason": {kind: kindString}},
	ir.EventReflectionSubmitted:   reflectionSchema,
	ir.EventAudioStarted:          audioSchema,
	ir.EventAudioStopped:          audioSchema,
	ir.EventAudioPermissionDenied: audioSchema,
	ir.EventAudioUnsupported:      audioSchema,
}

// checkPayloadStructure rejects unknown fields, missing required fields and
// values of the wrong kind. Keys are visited in sorted order so the reported
// field is deterministic.
func checkPayloadStructure(t ir.EventType, phase ir.Phase, payload ir.IRObject) *DispatchError {
	schema := payloadSchemas[t]
	for _, key := range payload.SortedKeys() {
		spec, ok := schema[key]
		if !ok {
			return newDispatchError(CodeInvalidPayload, t, phase, "unknown field %q", key)
		}
		if !kindMatches(spec.kind, payload[key]) {
			return newDispatchError(CodeInvalidPayload, t, phase, "field %q must be of type %s", key, spec.kind)
		}
	}
	for _, key := range sortedSchemaKeys(schema) {
		if !schema[key].required {
			continue
		}
		if _, ok := payload[key]; !ok {
			return newDispatchError(CodeInvalidPayload, t, phase, "missing required field %q", key)
		}
	}
	return nil
}

func kindMatches(kind fieldKind, v ir.IRValue) bool {
	switch kind {
	case kindInt:
		_, ok := v.(ir.IRInt)
		return ok
	default:
		_, ok := v.(ir.IRString)
		return ok
	}
}

func sortedSchemaKeys(schema payloadSchema) []string {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// checkPayloadSemantics runs after the structure check, so every field
// present is known to have the right kind.
func checkPayloadSemantics(meta Meta, t ir.EventType, phase ir.Phase, payload ir.IRObject) *DispatchError {
	switch {
	case t == ir.EventSessionStarted:
		if p, ok := payload.Str("preset"); ok && p != string(meta.Preset) {
			return newDispatchError(CodeValidationFailed, t, phase,
				"preset %q does not match session preset %q", p, meta.Preset)
		}
		if id, ok := payload.Str("problemId"); ok && id != meta.Problem.ID {
			return newDispatchError(CodeValidationFailed, t, phase,
				"problemId %q does not match session problem %q", id, meta.Problem.ID)
		}
	case t.IsAudio():
		if d, ok := payload.Int("durationMs"); ok && d < 0 {
			return newDispatchError(CodeValidationFailed, t, phase, "durationMs must be >= 0, got %d", d)
		}
	case t == ir.EventReflectionSubmitted:
		if msg := ValidateReflection(ir.ReflectionFromData(payload)); msg != "" {
			return newDispatchError(CodeValidationFailed, t, phase, "%s", msg)
		}
	}
	return nil
}

// ValidateReflection checks enumerations and the stall rule. It returns an
// empty string when r is acceptable.
func ValidateReflection(r ir.ReflectionResponses) string {
	values := map[string]string{
		ir.FieldClearApproach:       r.ClearApproach,
		ir.FieldProlongedStall:      r.ProlongedStall,
		ir.FieldRecoveredFromStall:  r.RecoveredFromStall,
		ir.FieldTimePressure:        r.TimePressure,
		ir.FieldWouldChangeApproach: r.WouldChangeApproach,
	}
	for _, field := range ir.ReflectionFields {
		if !slices.Contains(ir.ReflectionChoices[field], values[field]) {
			return fmt.Sprintf("%s: invalid value %q", field, values[field])
		}
	}

	// n/a is only meaningful when there was no stall to recover from.
	if r.RecoveredFromStall == "n/a" && r.ProlongedStall != "no" {
		return "recoveredFromStall: n/a requires prolongedStall=no"
	}
	return ""
}

// normalizePayload returns the payload as it will be stored.
func normalizePayload(meta Meta, t ir.EventType, payload ir.IRObject) ir.IRObject {
	data := payload.Clone()
	if t == ir.EventSessionStarted {
		if _, ok := data["preset"]; !ok {
			data["preset"] = ir.IRString(meta.Preset)
		}
		if _, ok := data["problemId"]; !ok {
			data["problemId"] = ir.IRString(meta.Problem.ID)
		}
	}
	return data
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/shetty4l/interview-conditioning-studio-sub002/internal/ir"
)

// marshalData converts an event payload to canonical JSON TEXT for storage.
func marshalData(data ir.IRObject) (string, error) {
	if data == nil {
		data = ir.IRObject{}
	}
	raw, err := ir.MarshalCanonical(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}
	return string(raw), nil
}

// unmarshalData parses canonical JSON TEXT to IRObject.
// ir.IRObject.UnmarshalJSON keeps large integers exact via json.Number.
func unmarshalData(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal data: %w", err)
	}
	return obj, nil
}

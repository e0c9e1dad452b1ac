package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Domain prefixes keep hashes of different record kinds apart.
const (
	DomainEvent = "studio/event/v1"
	DomainLog   = "studio/log/v1"
	DomainState = "studio/state/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventObject renders an event as an IRObject with snake_case keys.
// Used for hashing and golden traces.
func EventObject(e Event) IRObject {
	data := e.Data
	if data == nil {
		data = IRObject{}
	}
	return Obj(
		O("seq", IRInt(e.Seq)),
		O("type", IRString(e.Type)),
		O("timestamp", IRInt(e.Timestamp)),
		O("data", data),
	)
}

// EventHash is the content address of a single event within a session.
func EventHash(sessionID string, e Event) (string, error) {
	obj := EventObject(e)
	obj["session_id"] = IRString(sessionID)
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventHash: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// LogHash hashes an ordered event sequence. Equal logs hash equal;
// any reorder, edit or truncation changes the hash.
func LogHash(events []Event) (string, error) {
	arr := make(IRArray, len(events))
	for i, e := range events {
		arr[i] = EventObject(e)
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("LogHash: %w", err)
	}
	return hashWithDomain(DomainLog, canonical), nil
}

// StateHash hashes any JSON-serializable, float-free value through its
// canonical form. Used to compare projections across persistence round-trips.
func StateHash(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	var obj IRObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("StateHash: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

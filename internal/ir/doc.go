// Package ir defines the value and record types shared by the session engine,
// the store and the harness.
//
// This package contains type definitions and serialization only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Event payloads are IRObject values: string, int, bool, array, object.
//     NO floats (durations and timestamps are int64 milliseconds).
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for hashing and for persisted payloads.
//   - All JSON tags use camelCase, matching the event payload field names.
package ir

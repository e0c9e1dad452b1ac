// Package store keeps practice sessions in SQLite.
//
// Each session is one row (identity, preset, resolved durations, status)
// plus an append-only event log keyed by (session_id, seq). Payloads are
// stored as canonical JSON next to the event's content hash (ir.EventHash),
// so VerifyEvents can detect edits made behind the store's back. Appending a
// seq that is already stored is a no-op, which lets a Recorder re-run over a
// restored session safely.
//
// Reads return events ORDER BY seq ASC; LoadSession restores them into an
// engine session that reproduces the recorded state. ListSessions accepts
// Predicate filters compiled to parameterized SQL.
//
// The connection runs in WAL mode with synchronous=NORMAL, a 5 second busy
// timeout and foreign keys on. Schema changes are applied by numbered
// migrations tracked in PRAGMA user_version.
package store

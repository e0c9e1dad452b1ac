// Package engine implements the practice session engine.
//
// A Session owns one append-only event log. Every public operation either
// appends to that log or reads a projection of it; no derived field is ever
// stored and mutated on its own.
//
// Dispatch flow:
//  1. the phase guard checks the event is legal in the current phase
//  2. the payload is checked for structure, then for meaning
//  3. nudge requests are checked against the budget and classified
//  4. the event (and any follow-up event) is appended
//  5. listeners are notified with the event and the projected state
//
// Rejections are returned as *DispatchError values and never touch the log.
//
// Time:
// The engine reads time only through the Clock supplied at creation. Phase
// expiry is cooperative: the host calls Tick on its own timer and the engine
// appends the expiry event at most once. Nothing in this package starts a
// goroutine.
//
// Ownership:
// A Session is owned by a single caller and is not safe for concurrent
// Dispatch. Only Subscribe and unsubscribe may be called from listeners or
// other goroutines.
package engine

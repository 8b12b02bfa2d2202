// Package engine contains the puzzle session and its runtime.
// This is the heartbeat of "Echoes of Eternity".
//
// ARCHITECTURAL RULE: Only the Session mutates fragments and energy.
// The Ticker feeds it elapsed time; the Engine wires both to the EventLog
// and Metrics. Pure calculations live in domain/rules.
package engine

// Package engine is the stateful command-and-moderation core of the bot.
//
// An Engine owns, for one channel session, the bounded message log, per-user
// activity counters, AFK timestamps, daily check-in streaks and the mute
// store. Run drives everything from a single goroutine: inbound chat events
// (via Enqueue) and mute-sweep ticks are serialized onto one queue, so state
// needs no locking and effects happen strictly in arrival order.
//
// Per message the dispatcher trims the text, short-circuits muted speakers
// with a remaining-time notice, matches exact triggers before prefix
// triggers, scans for a first @mention of an AFK user, and finally records
// the line into the log and activity counters. Every handler failure (bad
// arguments, unknown message ID, missing authorization) degrades to a
// corrective outbound message; nothing in here is fatal to the loop.
//
// The clock, die roll, authorization predicate, export sink and archive hook
// are injected through Options so behavior is deterministic under test and
// policy stays out of the dispatcher.
package engine

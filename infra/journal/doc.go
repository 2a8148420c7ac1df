// Package journal is a durable outbox of value releases.
//
// Every time a journaled handle's last owner lets go of its value, a
// Recording deleter appends an Event to a pebble database. Records move
// through NEW -> SENT -> ACKED (or FAILED) as the broadcaster ships them.
package journal

// Package songservice is the song request board: admission of submitted
// songs, moderator status changes and one-vote-per-voter tallies.
//
// Use cases depend only on ports. Memory, Postgres and SQLite adapters
// implement the song repository; the composition root picks one.
package songservice

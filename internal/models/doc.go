// Package models defines the persistent entities of the tune library.
//
// Entities:
//   - [Tune] : A named notation string saved by the user
//   - [Play] : One playback of a notation, with its event count and length
//
// Only notation is persisted. Compiled events are rebuilt every time a tune is played.
//
// All persistent entities implement the Model interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models

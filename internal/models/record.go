// Package models defines the persisted metadata describing stored objects.
package models

// Record is the durable mapping from an opaque reference id to the
// object's current location and encryption key. Exactly one record
// exists per id; the id never changes, the key is set at creation and
// never rotated, and the location only ever moves Local -> Remote.
type Record struct {
	// ID is the opaque unique identifier handed out in references. It is
	// also the dedupe key for the upload pipeline.
	ID string

	// Location is where the ciphertext lives right now.
	Location Location

	// ContentType is a caller-supplied classification, opaque to the core.
	ContentType string

	// Key is the per-object symmetric key. Never transmitted in the clear.
	Key []byte
}

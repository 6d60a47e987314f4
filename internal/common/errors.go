// Package common defines shared sentinel errors and byte helpers used
// across the Hippo store layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Reference and record validation errors.
	ErrMalformedReference = errors.New("malformed reference")
	ErrNoSuchObject       = errors.New("no such object")
	ErrInvalidRecord      = errors.New("invalid object record")

	// Retrieval and decryption errors. ErrDecryptionFailed indicates
	// corruption or tampering and is never retried.
	ErrRemoteRetrieval  = errors.New("remote retrieval failure")
	ErrDecryptionFailed = errors.New("decryption failed")

	// Upload pipeline errors, one per step of the credential exchange.
	ErrCredentialExchange = errors.New("credential exchange failure")
	ErrUploadWrite        = errors.New("upload write failure")

	// Transport-level failure with no interpretable status.
	ErrUnexpected = errors.New("unexpected error")
)

package api

// CredentialsRequest is the body of the credential-exchange request
// identifying the object by owner and client reference.
type CredentialsRequest struct {
	ClientReferenceOwner string `json:"client_reference_owner"`
	ClientReferenceID    string `json:"client_reference_id"`
}

// UploadCredentials is the server's grant for one upload: a single-use,
// time-bounded PUT endpoint plus the durable location the object will
// have once written.
type UploadCredentials struct {
	// FutureURL is the remote location the record flips to after a
	// successful PUT.
	FutureURL string `json:"future_url"`
	// FuturePath is the server-side identifier for the object.
	FuturePath string `json:"future_path"`
	// PutURL is the pre-authorized write endpoint for the ciphertext.
	PutURL string `json:"put_url"`
	// ObjectSecret is server-side addressing material; the client does
	// not need it again after the exchange.
	ObjectSecret string `json:"object_secret"`
}

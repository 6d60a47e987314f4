package uploader

import "context"

// Observer receives terminal upload outcomes. The coordinator never
// surfaces failures to the caller of Save (it already returned), so this
// hook is the only way to learn about exhausted or permanent failures.
type Observer interface {
	// UploadSucceeded fires after the record flipped to Remote and the
	// local ciphertext was removed.
	UploadSucceeded(id string)

	// UploadFailed fires when an upload gives up: either the error is
	// permanent or the retry budget is exhausted. The record stays Local
	// and remains readable; the next recovery scan will try again.
	UploadFailed(id string, err error)
}

// NopObserver ignores all outcomes.
type NopObserver struct{}

func (NopObserver) UploadSucceeded(string) {}

func (NopObserver) UploadFailed(string, error) {}

// LogObserver reports outcomes through a logging function, for callers
// that want visibility without wiring their own hook.
type LogObserver struct {
	Log func(ctx context.Context, msg string, args ...any)
}

func (o LogObserver) UploadSucceeded(id string) {
	o.Log(context.Background(), "upload succeeded", "id", id)
}

func (o LogObserver) UploadFailed(id string, err error) {
	o.Log(context.Background(), "upload failed", "id", id, "error", err)
}

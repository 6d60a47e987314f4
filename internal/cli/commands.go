package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"
)

var errUsage = errors.New("usage: save <file> [content-type] | get <reference> [outfile] | fetch <id>")

// Save encrypts a file's contents into the store and prints the opaque
// reference. The content type defaults to a guess from the file
// extension.
func (a *App) Save(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	contentType := ""
	if len(args) > 1 {
		contentType = args[1]
	} else {
		contentType = mime.TypeByExtension(filepath.Ext(args[0]))
	}

	ref, err := a.store.Save(ctx, data, contentType)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, ref)
	return nil
}

// Get resolves a reference to plaintext and writes it to the given file,
// or to the output stream when no file is named.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	data, err := a.store.Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	if len(args) > 1 {
		return os.WriteFile(args[1], data, 0o600)
	}
	_, err = a.out.Write(data)
	return err
}

// Fetch retrieves an object from the service by its client reference id
// and prints the bytes.
func (a *App) Fetch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	data, err := a.store.FetchByReference(ctx, args[0])
	if err != nil {
		return err
	}

	_, err = a.out.Write(data)
	return err
}

// Sync triggers a recovery scan and waits until no object is left in
// local storage, or until the timeout passes. Objects whose uploads keep
// failing stay local; the command reports how many remain.
func (a *App) Sync(ctx context.Context) error {
	if err := a.store.SyncPending(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		_, local, err := a.store.Stats(ctx)
		if err != nil {
			return err
		}
		if local == 0 {
			fmt.Fprintln(a.out, "all objects uploaded")
			return nil
		}

		select {
		case <-ctx.Done():
			fmt.Fprintf(a.out, "%d object(s) still pending upload\n", local)
			return nil
		case <-ticker.C:
		}
	}
}

// Stats prints how many objects the store tracks and how many still
// await upload.
func (a *App) Stats(ctx context.Context) error {
	all, local, err := a.store.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "objects: %d total, %d pending upload\n", all, local)
	return nil
}

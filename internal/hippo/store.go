// Package hippo is the high-level interface to the encrypted object
// store: save bytes and get back an opaque reference, resolve a
// reference to plaintext regardless of where the ciphertext currently
// lives, and trigger recovery scans of pending uploads.
package hippo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hippostore/hippo/internal/api"
	"github.com/hippostore/hippo/internal/common"
	"github.com/hippostore/hippo/internal/cryptox"
	"github.com/hippostore/hippo/internal/filex"
	"github.com/hippostore/hippo/internal/logging"
	"github.com/hippostore/hippo/internal/models"
	"github.com/hippostore/hippo/internal/repositories/records"
	"github.com/hippostore/hippo/internal/uploader"
)

type Store struct {
	repo     records.Repository
	exchange *api.Client
	crypt    cryptox.Cryptographer
	coord    *uploader.Coordinator
	log      logging.Logger
	dataDir  string
	scheme   string
}

// NewStore wires the store facade. dataDir is where local ciphertext
// files live; scheme is the opaque reference scheme (e.g. "hippo").
func NewStore(
	repo records.Repository,
	exchange *api.Client,
	crypt cryptox.Cryptographer,
	coord *uploader.Coordinator,
	log logging.Logger,
	dataDir string,
	scheme string,
) *Store {
	return &Store{
		repo:     repo,
		exchange: exchange,
		crypt:    crypt,
		coord:    coord,
		log:      log,
		dataDir:  dataDir,
		scheme:   scheme,
	}
}

// Save encrypts data under a fresh per-object key, persists the
// ciphertext and its record locally, and returns the object's opaque
// reference. The upload to remote storage is handed to the coordinator
// and runs in the background; Save never waits for it.
func (s *Store) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if _, err := filex.EnsureDir(s.dataDir); err != nil {
		return "", err
	}

	id := uuid.NewString()
	key := cryptox.GenerateKey()

	sealed, err := s.crypt.Encrypt(data, key)
	if err != nil {
		return "", fmt.Errorf("encrypt object: %w", err)
	}

	// Ciphertext first, record second: a crash in between leaves an
	// orphan file, which is harmless, while a record without its file
	// would poison recovery scans.
	path := filepath.Join(s.dataDir, id)
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return "", fmt.Errorf("write ciphertext: %w", err)
	}

	rec := &models.Record{
		ID:          id,
		Location:    models.LocalLocation(path),
		ContentType: contentType,
		Key:         key,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("insert record: %w", err)
	}
	common.WipeByteArray(key)

	s.coord.Enqueue(id)
	s.log.Debug(ctx, "object saved", "id", id, "content_type", contentType)

	return FormatReference(s.scheme, id), nil
}

// Resolve returns the decrypted bytes for an opaque reference, reading
// from local disk or remote storage depending on the record's current
// location. It never mutates the record and never triggers an upload.
func (s *Store) Resolve(ctx context.Context, reference string) ([]byte, error) {
	data, _, err := s.ResolveContent(ctx, reference)
	return data, err
}

// ResolveContent is Resolve plus the record's content type, for callers
// that serve the bytes onward (e.g. the reference interceptor).
func (s *Store) ResolveContent(ctx context.Context, reference string) ([]byte, string, error) {
	id, err := ParseReference(s.scheme, reference)
	if err != nil {
		return nil, "", err
	}

	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, "", err
	}
	defer common.WipeByteArray(rec.Key)

	sealed, err := s.loadCiphertext(ctx, rec)
	if err != nil {
		return nil, "", err
	}

	plaintext, err := s.crypt.Decrypt(sealed, rec.Key)
	if err != nil {
		return nil, "", err
	}
	return plaintext, rec.ContentType, nil
}

func (s *Store) getRecord(ctx context.Context, id string) (*models.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", common.ErrNoSuchObject, id)
	}
	if err != nil {
		return nil, err
	}
	if len(rec.Key) == 0 {
		return nil, fmt.Errorf("%w: record %s has no key", common.ErrInvalidRecord, id)
	}
	return rec, nil
}

// loadCiphertext reads the sealed bytes from wherever the record
// snapshot points. If the local file vanished because an upload
// committed between our record read and the file read, one re-read of
// the record finds it Remote and the fetch proceeds there.
func (s *Store) loadCiphertext(ctx context.Context, rec *models.Record) ([]byte, error) {
	if !rec.Location.IsLocal() {
		return s.exchange.GetObject(ctx, rec.Location.URI)
	}

	sealed, err := os.ReadFile(rec.Location.Path)
	if err == nil {
		return sealed, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read local ciphertext: %w", err)
	}

	fresh, ferr := s.getRecord(ctx, rec.ID)
	if ferr == nil && !fresh.Location.IsLocal() {
		return s.exchange.GetObject(ctx, fresh.Location.URI)
	}
	return nil, fmt.Errorf("%w: local ciphertext missing for %s", common.ErrInvalidRecord, rec.ID)
}

// SyncPending re-enqueues every record still stored locally. Safe to
// call at any time, including concurrently with saves and uploads.
func (s *Store) SyncPending(ctx context.Context) error {
	return s.coord.SyncPending(ctx)
}

// Stats returns how many objects the store tracks and how many of them
// still await upload.
func (s *Store) Stats(ctx context.Context) (all int, local int, err error) {
	return s.repo.Count(ctx)
}

// FetchByReference retrieves an object's bytes from the service by its
// client reference. When a local record holds the object's key the
// bytes are decrypted; otherwise (an object of remote origin) they are
// returned as served.
func (s *Store) FetchByReference(ctx context.Context, id string) ([]byte, error) {
	body, err := s.exchange.GetObjectByReference(ctx, id)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return body, nil
		}
		return nil, err
	}
	if len(rec.Key) == 0 {
		return nil, fmt.Errorf("%w: record %s has no key", common.ErrInvalidRecord, id)
	}
	defer common.WipeByteArray(rec.Key)
	return s.crypt.Decrypt(body, rec.Key)
}

// FetchByPath retrieves an object's bytes from the service by its
// server-side path. No client-side key mapping exists for paths, so the
// bytes are returned as served.
func (s *Store) FetchByPath(ctx context.Context, path string) ([]byte, error) {
	return s.exchange.GetObjectByPath(ctx, path)
}

// Package uploader drives the background migration of locally stored
// ciphertext to durable remote storage. It guarantees at most one
// in-flight upload per object id, retries transient failures with
// exponential backoff, and rebuilds its queue from persisted record
// state after any interruption.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/hippostore/hippo/internal/api"
	"github.com/hippostore/hippo/internal/common"
	"github.com/hippostore/hippo/internal/logging"
	"github.com/hippostore/hippo/internal/models"
	"github.com/hippostore/hippo/internal/repositories/records"
)

// Exchange is the slice of the credential-exchange client the
// coordinator needs. It must be safe for concurrent use.
type Exchange interface {
	RequestUploadCredentials(ctx context.Context, id string) (*api.UploadCredentials, error)
	PutObject(ctx context.Context, putURL string, ciphertext io.Reader) error
}

// Options tune the coordinator. Zero values select the defaults.
type Options struct {
	// Workers is the number of concurrent upload workers (default 2).
	Workers int
	// MaxRetries bounds retries of transient failures per attempt
	// cycle (default 3). After exhaustion the record stays Local and is
	// picked up by the next recovery scan.
	MaxRetries uint64
	// BaseDelay is the initial backoff delay (default 500ms).
	BaseDelay time.Duration
	// Observer receives terminal outcomes (default: none).
	Observer Observer
}

type Coordinator struct {
	repo     records.Repository
	exchange Exchange
	log      logging.Logger
	observer Observer

	workers    int
	maxRetries uint64
	baseDelay  time.Duration

	mu      sync.Mutex
	tracked map[string]struct{}
	pending []string
	wake    chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCoordinator(repo records.Repository, exchange Exchange, log logging.Logger, opts Options) *Coordinator {
	if opts.Workers < 1 {
		opts.Workers = 2
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}

	return &Coordinator{
		repo:       repo,
		exchange:   exchange,
		log:        log,
		observer:   opts.Observer,
		workers:    opts.Workers,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		tracked:    make(map[string]struct{}),
		wake:       make(chan struct{}, 1),
	}
}

// Start launches the worker pool and runs a recovery scan so uploads
// interrupted by a previous shutdown complete. The scan error is
// returned but the workers keep running either way.
func (c *Coordinator) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx)
	}

	return c.SyncPending(ctx)
}

// Stop cancels in-flight work and waits for the workers to exit.
// Interrupted uploads leave their records Local; the next recovery scan
// finishes them.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Enqueue schedules an upload for id. It is idempotent: ids already
// queued or in flight are ignored, which makes concurrent triggers from
// Save and from recovery scans safe.
func (c *Coordinator) Enqueue(id string) {
	c.mu.Lock()
	if _, ok := c.tracked[id]; ok {
		c.mu.Unlock()
		return
	}
	c.tracked[id] = struct{}{}
	c.pending = append(c.pending, id)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// SyncPending enqueues every record still stored locally. The location
// tag is the single source of truth for pending work, so this scan is
// all that is needed to recover from a crash at any point in the
// pipeline. Safe to call concurrently with ongoing saves and uploads.
func (c *Coordinator) SyncPending(ctx context.Context) error {
	recs, err := c.repo.ListLocal(ctx)
	if err != nil {
		return fmt.Errorf("recovery scan: %w", err)
	}

	for _, rec := range recs {
		c.Enqueue(rec.ID)
	}

	if len(recs) > 0 {
		c.log.Debug(ctx, "recovery scan enqueued local records", "count", len(recs))
	}
	return nil
}

func (c *Coordinator) worker(ctx context.Context) {
	defer c.wg.Done()

	for {
		id, ok := c.next(ctx)
		if !ok {
			return
		}
		c.process(ctx, id)
	}
}

// next pops the oldest pending id, blocking until one is available or
// the context ends. The id stays tracked until process finishes.
func (c *Coordinator) next(ctx context.Context) (string, bool) {
	for {
		c.mu.Lock()
		if len(c.pending) > 0 {
			id := c.pending[0]
			c.pending = c.pending[1:]
			c.mu.Unlock()
			return id, true
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", false
		case <-c.wake:
		}
	}
}

// release marks the id Idle again and wakes a worker in case more ids
// are pending behind it.
func (c *Coordinator) release(id string) {
	c.mu.Lock()
	delete(c.tracked, id)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coordinator) process(ctx context.Context, id string) {
	defer c.release(id)

	rec, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			err = fmt.Errorf("%w: %s", common.ErrNoSuchObject, id)
		}
		c.log.Error(ctx, "upload aborted: record lookup failed", "id", id, "error", err)
		c.observer.UploadFailed(id, err)
		return
	}

	// Stale enqueue: a concurrent worker or a previous run already
	// migrated this object.
	if !rec.Location.IsLocal() {
		c.log.Debug(ctx, "skipping upload, record already remote", "id", id)
		return
	}

	if rec.Location.Path == "" || len(rec.Key) == 0 {
		err := fmt.Errorf("%w: %s", common.ErrInvalidRecord, id)
		c.log.Error(ctx, "upload aborted: invalid record", "id", id)
		c.observer.UploadFailed(id, err)
		return
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.baseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.uploadOnce(ctx, rec)
		if api.IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		c.log.Warn(ctx, "upload failed, record stays local", "id", id, "error", err)
		c.observer.UploadFailed(id, err)
		return
	}

	c.log.Info(ctx, "upload complete", "id", id, "location", rec.Location.URI)
	c.observer.UploadSucceeded(id)
}

// uploadOnce runs one full upload sequence: credential exchange, PUT of
// the on-disk ciphertext, record flip, ciphertext removal. The record is
// updated before the file is deleted so a concurrent reader never sees
// "Remote" without a reachable remote copy.
func (c *Coordinator) uploadOnce(ctx context.Context, rec *models.Record) error {
	creds, err := c.exchange.RequestUploadCredentials(ctx, rec.ID)
	if err != nil {
		return err
	}

	localPath := rec.Location.Path

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: open ciphertext: %v", common.ErrInvalidRecord, err)
	}

	err = c.exchange.PutObject(ctx, creds.PutURL, f)
	_ = f.Close()
	if err != nil {
		return err
	}

	rec.Location = models.RemoteLocation(creds.FutureURL)
	if err := c.repo.Update(ctx, rec); err != nil {
		return fmt.Errorf("record update after upload: %w", err)
	}

	if err := os.Remove(localPath); err != nil {
		// The record already points remote; a leftover file is harmless
		// and resolve ignores it.
		c.log.Warn(ctx, "could not remove local ciphertext", "id", rec.ID, "path", localPath, "error", err)
	}
	return nil
}

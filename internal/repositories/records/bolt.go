package records

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/hippostore/hippo/internal/common"
	"github.com/hippostore/hippo/internal/models"
)

var bucketRecords = []byte("records")

// BoltRepository persists records in a bbolt database, for deployments
// that prefer a single-file KV store over SQLite.
type BoltRepository struct {
	db *bbolt.DB
}

var _ Repository = (*BoltRepository)(nil)

// OpenBoltRepository opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltRepository(dbPath string) (*BoltRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("records: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("records: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("records: create bucket: %w", err)
	}

	return &BoltRepository{db: db}, nil
}

// Close closes the underlying database.
func (r *BoltRepository) Close() error { return r.db.Close() }

// boltRecord is the stored JSON shape; kept separate from models.Record
// so the on-disk encoding does not leak into the domain type.
type boltRecord struct {
	ID           string `json:"id"`
	LocationKind string `json:"location_kind"`
	Location     string `json:"location"`
	ContentType  string `json:"content_type"`
	Key          []byte `json:"enc_key"`
}

func encodeRecord(rec *models.Record) ([]byte, error) {
	return json.Marshal(boltRecord{
		ID:           rec.ID,
		LocationKind: string(rec.Location.Kind),
		Location:     rec.Location.Address(),
		ContentType:  rec.ContentType,
		Key:          rec.Key,
	})
}

func decodeRecord(data []byte) (*models.Record, error) {
	var br boltRecord
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, fmt.Errorf("records: decode: %w", err)
	}

	rec := &models.Record{ID: br.ID, ContentType: br.ContentType, Key: br.Key}
	switch models.LocationKind(br.LocationKind) {
	case models.LocationLocal:
		rec.Location = models.LocalLocation(br.Location)
	case models.LocationRemote:
		rec.Location = models.RemoteLocation(br.Location)
	default:
		return nil, fmt.Errorf("%w: unknown location kind %q", common.ErrInvalidRecord, br.LocationKind)
	}
	return rec, nil
}

func (r *BoltRepository) Insert(ctx context.Context, rec *models.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).Put([]byte(rec.ID), data)
	})
}

func (r *BoltRepository) Update(ctx context.Context, rec *models.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		if b.Get([]byte(rec.ID)) == nil {
			return common.ErrNotFound
		}
		return b.Put([]byte(rec.ID), data)
	})
}

func (r *BoltRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	var rec *models.Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(id))
		if data == nil {
			return common.ErrNotFound
		}
		var err error
		rec, err = decodeRecord(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *BoltRepository) ListLocal(ctx context.Context) ([]*models.Record, error) {
	var result []*models.Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return err
			}
			if rec.Location.IsLocal() {
				result = append(result, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *BoltRepository) Count(ctx context.Context) (int, int, error) {
	var all, local int
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return err
			}
			all++
			if rec.Location.IsLocal() {
				local++
			}
			return nil
		})
	})
	if err != nil {
		return 0, 0, err
	}
	return all, local, nil
}

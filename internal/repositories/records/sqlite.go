package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hippostore/hippo/internal/common"
	"github.com/hippostore/hippo/internal/dbx"
	"github.com/hippostore/hippo/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.Record) error {
	query := `INSERT INTO records (id, location_kind, location, content_type, enc_key)
	          VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, string(rec.Location.Kind), rec.Location.Address(), rec.ContentType, rec.Key)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, rec *models.Record) error {
	query := `UPDATE records SET location_kind = ?, location = ?, content_type = ?, enc_key = ?
	          WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		string(rec.Location.Kind), rec.Location.Address(), rec.ContentType, rec.Key, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	query := `SELECT id, location_kind, location, content_type, enc_key FROM records WHERE id = ?`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) ListLocal(ctx context.Context) ([]*models.Record, error) {
	query := `SELECT id, location_kind, location, content_type, enc_key FROM records
	          WHERE location_kind = ?`
	rows, err := r.db.QueryContext(ctx, query, string(models.LocationLocal))
	if err != nil {
		return nil, fmt.Errorf("failed to list local records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, int, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(location_kind = ?), 0) FROM records`
	var all, local int
	err := r.db.QueryRowContext(ctx, query, string(models.LocationLocal)).Scan(&all, &local)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count records: %w", err)
	}
	return all, local, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		rec     models.Record
		kind    string
		address string
	)
	if err := row.Scan(&rec.ID, &kind, &address, &rec.ContentType, &rec.Key); err != nil {
		return nil, err
	}

	switch models.LocationKind(kind) {
	case models.LocationLocal:
		rec.Location = models.LocalLocation(address)
	case models.LocationRemote:
		rec.Location = models.RemoteLocation(address)
	default:
		return nil, fmt.Errorf("%w: unknown location kind %q", common.ErrInvalidRecord, kind)
	}
	return &rec, nil
}

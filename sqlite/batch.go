package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/idmbatch"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ idmbatch.BatchService = (*BatchService)(nil)

// BatchService implements idmbatch.BatchService using SQLite.
type BatchService struct {
	db *DB
}

// NewBatchService creates a new BatchService.
func NewBatchService(db *DB) *BatchService {
	return &BatchService{db: db}
}

// CreateBatch records a dispatched batch.
func (s *BatchService) CreateBatch(ctx context.Context, batch *idmbatch.BatchRecord) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	batch.ID = uuid.New().String()
	batch.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO batches (id, session_id, source, link_offset, size, sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, batch.ID, batch.SessionID, batch.Source, batch.Offset, batch.Size, batch.Sent,
		formatTime(batch.CreatedAt))

	return err
}

// FindBatches retrieves batches matching the filter, newest first.
func (s *BatchService) FindBatches(ctx context.Context, filter idmbatch.BatchFilter) ([]*idmbatch.BatchRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, session_id, source, link_offset, size, sent, created_at FROM batches WHERE 1=1")

	if filter.SessionID != nil {
		query.WriteString(" AND session_id = ?")
		args = append(args, *filter.SessionID)
	}
	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}

	// rowid breaks ties between batches recorded in the same instant.
	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*idmbatch.BatchRecord
	for rows.Next() {
		var b idmbatch.BatchRecord
		var createdAt string

		if err := rows.Scan(&b.ID, &b.SessionID, &b.Source, &b.Offset, &b.Size, &b.Sent, &createdAt); err != nil {
			return nil, err
		}
		if b.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}

		batches = append(batches, &b)
	}

	return batches, rows.Err()
}

package idmbatch

import (
	"context"
	"time"
)

// BatchRecord is the history entry for one dispatched batch.
type BatchRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Source    string    `json:"source"`
	Offset    int       `json:"offset"`
	Size      int       `json:"size"`
	Sent      int       `json:"sent"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the record contains invalid fields.
func (b *BatchRecord) Validate() error {
	if b.SessionID == "" {
		return Errorf(EINVALID, "batch session ID required")
	}
	if b.Offset < 0 {
		return Errorf(EINVALID, "batch offset must not be negative")
	}
	if b.Size <= 0 {
		return Errorf(EINVALID, "batch size must be positive")
	}
	if b.Sent < 0 || b.Sent > b.Size {
		return Errorf(EINVALID, "batch sent count %d out of range [0, %d]", b.Sent, b.Size)
	}
	return nil
}

// BatchFilter represents a filter for FindBatches.
type BatchFilter struct {
	SessionID *string `json:"sessionId"`
	Source    *string `json:"source"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// BatchService records dispatched batches.
type BatchService interface {
	// CreateBatch stores a new record and assigns its ID and CreatedAt.
	CreateBatch(ctx context.Context, batch *BatchRecord) error

	// FindBatches returns records matching the filter, newest first.
	FindBatches(ctx context.Context, filter BatchFilter) ([]*BatchRecord, error)
}

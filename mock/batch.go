package mock

import (
	"context"

	"github.com/fwojciec/idmbatch"
)

var _ idmbatch.BatchService = (*BatchService)(nil)

// BatchService is a mock implementation of idmbatch.BatchService.
type BatchService struct {
	CreateBatchFn func(ctx context.Context, batch *idmbatch.BatchRecord) error
	FindBatchesFn func(ctx context.Context, filter idmbatch.BatchFilter) ([]*idmbatch.BatchRecord, error)
}

func (s *BatchService) CreateBatch(ctx context.Context, batch *idmbatch.BatchRecord) error {
	return s.CreateBatchFn(ctx, batch)
}

func (s *BatchService) FindBatches(ctx context.Context, filter idmbatch.BatchFilter) ([]*idmbatch.BatchRecord, error) {
	return s.FindBatchesFn(ctx, filter)
}

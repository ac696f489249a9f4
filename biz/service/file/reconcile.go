package file

import (
	"context"
	"fmt"

	"github.com/munify/doc_vault/biz/dal/model"
)

const defaultReconcileBatch = 200

// MissingBlobs walks every record, including soft-deleted ones, and returns
// those whose blob is absent from storage.
func (s *Service) MissingBlobs(ctx context.Context, batchSize int) ([]model.FileRecord, error) {
	if batchSize <= 0 {
		batchSize = defaultReconcileBatch
	}
	var missing []model.FileRecord
	err := s.logic.WalkFiles(ctx, batchSize, func(records []model.FileRecord) error {
		for _, record := range records {
			exists, err := s.storage.ObjectExists(ctx, record.StoragePath)
			if err != nil {
				return fmt.Errorf("check %s: %w", record.StoragePath, err)
			}
			if !exists {
				missing = append(missing, record)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return missing, nil
}

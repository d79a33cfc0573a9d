package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/aquacred-registry/internal/model"
)

var ErrSubmissionNotFound = errors.New("submission not found")

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, txHash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":  model.SubmissionConfirmed,
		"tx_hash": txHash,
	})
}

func (r *SubmissionRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        model.SubmissionFailed,
		"error_message": message,
	})
}

func (r *SubmissionRepository) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// List returns the most recent submissions first.
func (r *SubmissionRepository) List(ctx context.Context, limit int) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&submissions).Error
	return submissions, err
}

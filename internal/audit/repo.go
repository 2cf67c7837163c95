package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/gastrohub/console-backend/pkg/db/models"
)

// Repository persists refund audit entries and submission journal rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.RefundAuditEntry) error
	ListEntriesByIssueID(ctx context.Context, issueID string) ([]models.RefundAuditEntry, error)
	CreateSubmission(ctx context.Context, submission *models.RefundSubmission) error
	CompleteSubmission(ctx context.Context, submission *models.RefundSubmission) error
	ListOpenSubmissions(ctx context.Context, restaurantID string) ([]models.RefundSubmission, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed audit repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.RefundAuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntriesByIssueID(ctx context.Context, issueID string) ([]models.RefundAuditEntry, error) {
	var entries []models.RefundAuditEntry
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CreateSubmission(ctx context.Context, submission *models.RefundSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *repository) CompleteSubmission(ctx context.Context, submission *models.RefundSubmission) error {
	return r.db.WithContext(ctx).
		Model(submission).
		Select("completed", "succeeded", "failure_message", "completed_at").
		Updates(submission).Error
}

func (r *repository) ListOpenSubmissions(ctx context.Context, restaurantID string) ([]models.RefundSubmission, error) {
	var submissions []models.RefundSubmission
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND completed = false", restaurantID).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gastrohub/console-backend/pkg/db/models"
	"github.com/gastrohub/console-backend/pkg/enums"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	entries := `
CREATE TABLE IF NOT EXISTS refund_audit_entries (
  id TEXT PRIMARY KEY,
  issue_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  restaurant_id TEXT NOT NULL,
  outcome TEXT NOT NULL,
  refund_type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'eur',
  reason TEXT NOT NULL,
  processor_ref TEXT,
  idempotency_key TEXT NOT NULL UNIQUE,
  metadata TEXT,
  created_at DATETIME
);`
	submissions := `
CREATE TABLE IF NOT EXISTS refund_submissions (
  id TEXT PRIMARY KEY,
  issue_id TEXT NOT NULL,
  restaurant_id TEXT NOT NULL,
  refund_type TEXT NOT NULL,
  amount_cents INTEGER,
  idempotency_key TEXT NOT NULL UNIQUE,
  completed INTEGER NOT NULL DEFAULT 0,
  succeeded INTEGER NOT NULL DEFAULT 0,
  failure_message TEXT,
  created_at DATETIME,
  completed_at DATETIME
);`
	require.NoError(t, db.Exec(entries).Error)
	require.NoError(t, db.Exec(submissions).Error)
	return db
}

func createAuditEntry(t *testing.T, db *gorm.DB, issueID, key string, created time.Time) *models.RefundAuditEntry {
	t.Helper()

	entry := &models.RefundAuditEntry{
		ID:             uuid.New(),
		IssueID:        issueID,
		OrderID:        "ord-1",
		RestaurantID:   "rest-1",
		Outcome:        enums.RefundOutcomeProcessed,
		RefundType:     enums.RefundTypePartial,
		AmountCents:    1250,
		Currency:       "eur",
		Reason:         "Reklamation: Kaltes Essen",
		IdempotencyKey: key,
		CreatedAt:      created,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositoryListEntriesByIssueID(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createAuditEntry(t, db, "iss-1", "refund-key-1", now.Add(-time.Hour))
	newest := createAuditEntry(t, db, "iss-1", "refund-key-2", now)
	createAuditEntry(t, db, "iss-2", "refund-key-3", now)

	entries, err := repo.ListEntriesByIssueID(context.Background(), "iss-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newest.IdempotencyKey, entries[0].IdempotencyKey)
	assert.Equal(t, int64(1250), entries[0].AmountCents)
}

func TestRepositoryRejectsDuplicateIdempotencyKey(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createAuditEntry(t, db, "iss-1", "refund-key-1", now)

	dup := &models.RefundAuditEntry{
		ID:             uuid.New(),
		IssueID:        "iss-1",
		OrderID:        "ord-1",
		RestaurantID:   "rest-1",
		Outcome:        enums.RefundOutcomeProcessed,
		RefundType:     enums.RefundTypeFull,
		AmountCents:    2000,
		Currency:       "eur",
		Reason:         "Reklamation: Falsche Bestellung",
		IdempotencyKey: "refund-key-1",
		CreatedAt:      now,
	}
	assert.Error(t, repo.CreateEntry(context.Background(), dup))
}

func TestRepositorySubmissionJournal(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)

	amount := int64(750)
	submission := &models.RefundSubmission{
		ID:             uuid.New(),
		IssueID:        "iss-1",
		RestaurantID:   "rest-1",
		RefundType:     enums.RefundTypePartial,
		AmountCents:    &amount,
		IdempotencyKey: "refund-key-1",
	}
	require.NoError(t, repo.CreateSubmission(context.Background(), submission))

	open, err := repo.ListOpenSubmissions(context.Background(), "rest-1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "refund-key-1", open[0].IdempotencyKey)

	completedAt := time.Now().UTC()
	submission.Completed = true
	submission.Succeeded = true
	submission.CompletedAt = &completedAt
	require.NoError(t, repo.CompleteSubmission(context.Background(), submission))

	open, err = repo.ListOpenSubmissions(context.Background(), "rest-1")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestRepositoryListOpenSubmissionsScopedByRestaurant(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)

	for i, restaurant := range []string{"rest-1", "rest-2"} {
		submission := &models.RefundSubmission{
			ID:             uuid.New(),
			IssueID:        "iss-1",
			RestaurantID:   restaurant,
			RefundType:     enums.RefundTypeFull,
			IdempotencyKey: uuid.NewString(),
			CreatedAt:      time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.CreateSubmission(context.Background(), submission))
	}

	open, err := repo.ListOpenSubmissions(context.Background(), "rest-2")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "rest-2", open[0].RestaurantID)
}

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

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
	"github.com/angelmondragon/dealroom-backend/pkg/enums"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS status_transitions (
  id TEXT PRIMARY KEY,
  subject_kind TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  from_status TEXT,
  to_status TEXT NOT NULL,
  actor_id TEXT,
  notes TEXT,
  external_reference TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositoryAppendAndListOrdering(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)

	orderID := uuid.New()
	actorID := uuid.New()
	now := time.Now().UTC()

	pending := string(enums.OrderStatusPending)
	first := &models.StatusTransition{
		ID:          uuid.New(),
		SubjectKind: enums.TransitionSubjectOrder,
		SubjectID:   orderID,
		ToStatus:    pending,
		CreatedAt:   now.Add(-time.Minute),
	}
	second := &models.StatusTransition{
		ID:          uuid.New(),
		SubjectKind: enums.TransitionSubjectOrder,
		SubjectID:   orderID,
		FromStatus:  &pending,
		ToStatus:    string(enums.OrderStatusCompleted),
		ActorID:     &actorID,
		CreatedAt:   now,
	}
	require.NoError(t, repo.Append(context.Background(), second))
	require.NoError(t, repo.Append(context.Background(), first))

	history, err := repo.ListBySubject(context.Background(), enums.TransitionSubjectOrder, orderID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Oldest first regardless of insertion order.
	assert.Equal(t, first.ID, history[0].ID)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, second.ID, history[1].ID)
	require.NotNil(t, history[1].FromStatus)
	assert.Equal(t, pending, *history[1].FromStatus)
}

func TestRepositoryListScopesBySubject(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)

	orderID := uuid.New()
	userID := uuid.New()
	require.NoError(t, repo.Append(context.Background(), &models.StatusTransition{
		ID:          uuid.New(),
		SubjectKind: enums.TransitionSubjectOrder,
		SubjectID:   orderID,
		ToStatus:    string(enums.OrderStatusPending),
	}))
	require.NoError(t, repo.Append(context.Background(), &models.StatusTransition{
		ID:          uuid.New(),
		SubjectKind: enums.TransitionSubjectVerification,
		SubjectID:   userID,
		ToStatus:    string(enums.VerificationStatusVerified),
	}))

	history, err := repo.ListBySubject(context.Background(), enums.TransitionSubjectOrder, orderID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, orderID, history[0].SubjectID)
}

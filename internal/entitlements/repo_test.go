package entitlements

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealroom-backend/pkg/db/models"
)

func setupEntitlementsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS entitlement_activations (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  membership_id TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRecordActivationIsFirstWriterWins(t *testing.T) {
	db := setupEntitlementsTestDB(t)
	repo := NewRepository(db)

	orderID := uuid.New()
	membershipID := uuid.New()
	recorded, err := repo.RecordActivation(context.Background(), &models.EntitlementActivation{
		ID:           uuid.New(),
		OrderID:      orderID,
		MembershipID: membershipID,
	})
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = repo.RecordActivation(context.Background(), &models.EntitlementActivation{
		ID:           uuid.New(),
		OrderID:      orderID,
		MembershipID: membershipID,
	})
	require.NoError(t, err)
	assert.False(t, recorded, "second insert for the same order must be a no-op")
}

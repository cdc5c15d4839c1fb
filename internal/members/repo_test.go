package members

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
)

func setupMembersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	membersTable := `
CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  application_id TEXT,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  plan_id TEXT,
  stripe_customer_id TEXT,
  membership_expiry DATETIME,
  joined_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(membersTable).Error)
	t.Cleanup(func() {
		_ = db.Exec("DROP TABLE IF EXISTS members").Error
	})
	return db
}

func seedMember(t *testing.T, db *gorm.DB, status enums.MembershipStatus, expiry *time.Time) *models.Member {
	t.Helper()
	member := &models.Member{
		ID:               uuid.New(),
		FirstName:        "Jamie",
		LastName:         "Okafor",
		Email:            uuid.NewString() + "@example.com",
		Status:           status,
		MembershipExpiry: expiry,
		JoinedAt:         time.Now().UTC().Add(-30 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func TestListExpiredBeforeUsesStrictCutoff(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	expired := seedMember(t, db, enums.MembershipStatusActive, &past)
	current := seedMember(t, db, enums.MembershipStatusActive, &future)
	exact := seedMember(t, db, enums.MembershipStatusActive, &now)
	lifetime := seedMember(t, db, enums.MembershipStatusActive, nil)
	lapsed := seedMember(t, db, enums.MembershipStatusExpired, &past)

	got, err := repo.ListExpiredBefore(ctx, now)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, expired.ID, got[0].ID)

	for _, m := range got {
		assert.NotEqual(t, current.ID, m.ID)
		assert.NotEqual(t, exact.ID, m.ID, "expiry equal to cutoff must not count as expired")
		assert.NotEqual(t, lifetime.ID, m.ID, "lifetime members must never be listed")
		assert.NotEqual(t, lapsed.ID, m.ID, "already expired members must not be listed again")
	}
}

func TestListActiveWithExpirySkipsLifetime(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(7 * 24 * time.Hour)
	withExpiry := seedMember(t, db, enums.MembershipStatusActive, &future)
	seedMember(t, db, enums.MembershipStatusActive, nil)
	seedMember(t, db, enums.MembershipStatusCancelled, &future)

	got, err := repo.ListActiveWithExpiry(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, withExpiry.ID, got[0].ID)
}

func TestUpdateStatus(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	member := seedMember(t, db, enums.MembershipStatusActive, &past)

	require.NoError(t, repo.UpdateStatus(ctx, member.ID, enums.MembershipStatusExpired))

	reloaded, err := repo.FindByID(ctx, member.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, enums.MembershipStatusExpired, reloaded.Status)
}

func TestFindByEmail(t *testing.T) {
	db := setupMembersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	member := seedMember(t, db, enums.MembershipStatusActive, nil)

	found, err := repo.FindByEmail(ctx, member.Email)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, member.ID, found.ID)

	missing, err := repo.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

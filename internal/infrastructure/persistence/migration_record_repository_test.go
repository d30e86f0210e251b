package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/persistence/models"
)

func setupMigrationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.MigrationRecordModel{}, &models.ReferenceMappingModel{})
	require.NoError(t, err)
	return db
}

func newPendingRecord(t *testing.T, ownerID uuid.UUID, entityType migration.EntityType, sourceEntityID string, keys migration.NaturalKeys) *migration.MigrationRecord {
	t.Helper()
	record, err := migration.NewMigrationRecord(ownerID, "src-acct", "dst-acct", entityType, sourceEntityID, keys)
	require.NoError(t, err)
	return record
}

func TestMigrationRecordRepository_Stage(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("creates a pending row", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		record := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{Slug: "summer-shirt"})
		staged, err := repo.Stage(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, record.ID, staged.ID)
		assert.Equal(t, migration.StatusPending, staged.Status)
	})

	t.Run("staging the same tuple twice returns the first row", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		first := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{})
		staged1, err := repo.Stage(ctx, first)
		require.NoError(t, err)

		second := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{})
		staged2, err := repo.Stage(ctx, second)
		require.NoError(t, err)

		assert.Equal(t, staged1.ID, staged2.ID, "duplicate staging must converge on one row")

		var count int64
		db.Model(&models.MigrationRecordModel{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("distinct destinations stage independently", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		a, err := migration.NewMigrationRecord(ownerID, "src-acct", "dst-a", migration.EntityTypeProduct, "p-1", migration.NaturalKeys{})
		require.NoError(t, err)
		b, err := migration.NewMigrationRecord(ownerID, "src-acct", "dst-b", migration.EntityTypeProduct, "p-1", migration.NaturalKeys{})
		require.NoError(t, err)

		_, err = repo.Stage(ctx, a)
		require.NoError(t, err)
		_, err = repo.Stage(ctx, b)
		require.NoError(t, err)

		var count int64
		db.Model(&models.MigrationRecordModel{}).Count(&count)
		assert.Equal(t, int64(2), count)
	})
}

func TestMigrationRecordRepository_Claim(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	claimQuery := migration.ClaimQuery{
		OwnerID:              ownerID,
		SourceAccountID:      "src-acct",
		DestinationAccountID: "dst-acct",
		EntityType:           migration.EntityTypeProduct,
	}

	t.Run("claims the oldest pending row", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		older := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-old", migration.NaturalKeys{})
		older.CreatedAt = older.CreatedAt.Add(-time.Minute)
		newer := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-new", migration.NaturalKeys{})

		_, err := repo.Stage(ctx, older)
		require.NoError(t, err)
		_, err = repo.Stage(ctx, newer)
		require.NoError(t, err)

		claimed, err := repo.Claim(ctx, claimQuery)
		require.NoError(t, err)
		assert.Equal(t, "p-old", claimed.SourceEntityID)
		assert.NotNil(t, claimed.ClaimedAt)
	})

	t.Run("prefers an exact source entity match", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		for _, id := range []string{"p-1", "p-2", "p-3"} {
			_, err := repo.Stage(ctx, newPendingRecord(t, ownerID, migration.EntityTypeProduct, id, migration.NaturalKeys{}))
			require.NoError(t, err)
		}

		q := claimQuery
		q.SourceEntityID = "p-2"
		claimed, err := repo.Claim(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, "p-2", claimed.SourceEntityID)
	})

	t.Run("a claimed row is not claimed again", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		_, err := repo.Stage(ctx, newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{}))
		require.NoError(t, err)

		_, err = repo.Claim(ctx, claimQuery)
		require.NoError(t, err)

		_, err = repo.Claim(ctx, claimQuery)
		assert.ErrorIs(t, err, migration.ErrNoPendingRecords)
	})

	t.Run("returns ErrNoPendingRecords on an empty store", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		_, err := repo.Claim(ctx, claimQuery)
		assert.ErrorIs(t, err, migration.ErrNoPendingRecords)
	})

	t.Run("an exact claim never falls back to an unrelated row", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		for _, id := range []string{"p-1", "p-2"} {
			_, err := repo.Stage(ctx, newPendingRecord(t, ownerID, migration.EntityTypeProduct, id, migration.NaturalKeys{}))
			require.NoError(t, err)
		}

		q := claimQuery
		q.SourceEntityID = "p-2"
		_, err := repo.Claim(ctx, q)
		require.NoError(t, err)

		// p-2 is now held; a second exact claim for it must not be handed
		// the unrelated pending p-1 row
		_, err = repo.Claim(ctx, q)
		assert.ErrorIs(t, err, migration.ErrNoPendingRecords)

		remaining, err := repo.FindByKey(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeProduct, "p-1")
		require.NoError(t, err)
		assert.Nil(t, remaining.ClaimedAt, "the unrelated row stays claimable")
	})

	t.Run("an exact claim for an unstaged entity finds nothing", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		_, err := repo.Stage(ctx, newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{}))
		require.NoError(t, err)

		q := claimQuery
		q.SourceEntityID = "p-missing"
		_, err = repo.Claim(ctx, q)
		assert.ErrorIs(t, err, migration.ErrNoPendingRecords)
	})

	t.Run("concurrent claims hand out a row exactly once", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		// One pooled connection serializes the in-memory database, which
		// has no row locking of its own
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(1)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		_, err = repo.Stage(ctx, newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{}))
		require.NoError(t, err)

		q := claimQuery
		q.SourceEntityID = "p-1"

		type outcome struct {
			record *migration.MigrationRecord
			err    error
		}
		results := make(chan outcome, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				record, err := repo.Claim(ctx, q)
				results <- outcome{record: record, err: err}
			}()
		}
		wg.Wait()
		close(results)

		var won, lost int
		for res := range results {
			if res.err == nil {
				won++
				assert.Equal(t, "p-1", res.record.SourceEntityID)
			} else {
				lost++
				assert.ErrorIs(t, res.err, migration.ErrNoPendingRecords)
			}
		}
		assert.Equal(t, 1, won, "exactly one claimer wins")
		assert.Equal(t, 1, lost)
	})
}

func TestMigrationRecordRepository_ResolveOrMerge(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("adopts the exact identity when no competing row exists", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		claimed := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "placeholder", migration.NaturalKeys{})
		_, err := repo.Stage(ctx, claimed)
		require.NoError(t, err)

		resolved, err := repo.ResolveOrMerge(ctx, claimed, "p-exact")
		require.NoError(t, err)
		assert.Equal(t, claimed.ID, resolved.ID)
		assert.Equal(t, "p-exact", resolved.SourceEntityID)

		found, err := repo.FindByKey(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeProduct, "p-exact")
		require.NoError(t, err)
		assert.Equal(t, claimed.ID, found.ID)
	})

	t.Run("merges into an existing row for the exact tuple", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		existing := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-exact", migration.NaturalKeys{})
		_, err := repo.Stage(ctx, existing)
		require.NoError(t, err)

		claimed := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "placeholder", migration.NaturalKeys{})
		_, err = repo.Stage(ctx, claimed)
		require.NoError(t, err)

		winner, err := repo.ResolveOrMerge(ctx, claimed, "p-exact")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, winner.ID, "the pre-existing exact row is authoritative")
		assert.NotNil(t, winner.ClaimedAt, "taking over the exact row claims it")

		retired, err := repo.FindByKey(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeProduct, "placeholder")
		require.NoError(t, err)
		assert.Equal(t, migration.StatusSkipped, retired.Status)
	})

	t.Run("a held exact row retires the placeholder as a lost race", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		existing := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-exact", migration.NaturalKeys{})
		_, err := repo.Stage(ctx, existing)
		require.NoError(t, err)

		held, err := repo.Claim(ctx, migration.ClaimQuery{
			OwnerID:              ownerID,
			SourceAccountID:      "src-acct",
			DestinationAccountID: "dst-acct",
			EntityType:           migration.EntityTypeProduct,
			SourceEntityID:       "p-exact",
		})
		require.NoError(t, err)
		require.NotNil(t, held.ClaimedAt)

		placeholder := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "placeholder", migration.NaturalKeys{})
		_, err = repo.Stage(ctx, placeholder)
		require.NoError(t, err)

		winner, err := repo.ResolveOrMerge(ctx, placeholder, "p-exact")
		require.NoError(t, err)
		assert.Equal(t, placeholder.ID, winner.ID, "the holder keeps the entity")
		assert.Equal(t, migration.StatusSkipped, winner.Status)

		// The held row stays with its claimer, untouched
		stillHeld, err := repo.FindByKey(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeProduct, "p-exact")
		require.NoError(t, err)
		assert.Equal(t, migration.StatusPending, stillHeld.Status)
		assert.NotNil(t, stillHeld.ClaimedAt)
	})

	t.Run("no-op when identities already match", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		claimed := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{})
		_, err := repo.Stage(ctx, claimed)
		require.NoError(t, err)

		resolved, err := repo.ResolveOrMerge(ctx, claimed, "p-1")
		require.NoError(t, err)
		assert.Equal(t, claimed.ID, resolved.ID)
	})
}

func TestMigrationRecordRepository_Finalize(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("persists a success with the destination ID", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		record := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{})
		_, err := repo.Stage(ctx, record)
		require.NoError(t, err)

		require.NoError(t, record.MarkSuccess("dest-p-1"))
		require.NoError(t, repo.Finalize(ctx, record))

		found, err := repo.FindSucceeded(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeProduct, "p-1")
		require.NoError(t, err)
		assert.Equal(t, "dest-p-1", found.DestinationEntityID)
	})

	t.Run("persists a failure with its message", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		record := newPendingRecord(t, ownerID, migration.EntityTypeCoupon, "c-1", migration.NaturalKeys{Code: "SAVE10"})
		_, err := repo.Stage(ctx, record)
		require.NoError(t, err)

		require.NoError(t, record.MarkFailed("product-not-found"))
		require.NoError(t, repo.Finalize(ctx, record))

		found, err := repo.FindByKey(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeCoupon, "c-1")
		require.NoError(t, err)
		assert.Equal(t, migration.StatusFailed, found.Status)
		assert.Equal(t, "product-not-found", found.ErrorMessage)
	})

	t.Run("rejects finalizing a pending record", func(t *testing.T) {
		db := setupMigrationTestDB(t)
		repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

		record := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{})
		_, err := repo.Stage(ctx, record)
		require.NoError(t, err)

		err = repo.Finalize(ctx, record)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestMigrationRecordRepository_FindByNaturalKey(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	db := setupMigrationTestDB(t)
	repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

	bySlug := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-1", migration.NaturalKeys{Slug: "summer-shirt", Name: "Summer Shirt"})
	byName := newPendingRecord(t, ownerID, migration.EntityTypeProduct, "p-2", migration.NaturalKeys{Name: "Winter Coat"})
	_, err := repo.Stage(ctx, bySlug)
	require.NoError(t, err)
	_, err = repo.Stage(ctx, byName)
	require.NoError(t, err)

	t.Run("slug match wins over name match", func(t *testing.T) {
		found, err := repo.FindByNaturalKey(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeProduct,
			migration.NaturalKeys{Slug: "summer-shirt", Name: "Winter Coat"})
		require.NoError(t, err)
		assert.Equal(t, "p-1", found.SourceEntityID)
	})

	t.Run("falls through to name", func(t *testing.T) {
		found, err := repo.FindByNaturalKey(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeProduct,
			migration.NaturalKeys{Slug: "no-such-slug", Name: "Winter Coat"})
		require.NoError(t, err)
		assert.Equal(t, "p-2", found.SourceEntityID)
	})

	t.Run("not found when nothing matches", func(t *testing.T) {
		_, err := repo.FindByNaturalKey(ctx, ownerID, "src-acct", "dst-acct", migration.EntityTypeProduct,
			migration.NaturalKeys{Slug: "missing"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestMigrationRecordRepository_List(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	db := setupMigrationTestDB(t)
	repo := NewGormMigrationRecordRepositoryForSQLite(db, 3)

	for i, id := range []string{"p-1", "p-2"} {
		record := newPendingRecord(t, ownerID, migration.EntityTypeProduct, id, migration.NaturalKeys{})
		_, err := repo.Stage(ctx, record)
		require.NoError(t, err)
		if i == 0 {
			require.NoError(t, record.MarkSuccess("dest-1"))
			require.NoError(t, repo.Finalize(ctx, record))
		}
	}
	coupon := newPendingRecord(t, ownerID, migration.EntityTypeCoupon, "c-1", migration.NaturalKeys{})
	_, err := repo.Stage(ctx, coupon)
	require.NoError(t, err)

	t.Run("filters by entity type", func(t *testing.T) {
		records, total, err := repo.List(ctx, ownerID, migration.RecordFilter{EntityType: migration.EntityTypeProduct})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, records, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		records, total, err := repo.List(ctx, ownerID, migration.RecordFilter{Status: migration.StatusSuccess})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, records, 1)
		assert.Equal(t, "p-1", records[0].SourceEntityID)
	})

	t.Run("ignores other owners", func(t *testing.T) {
		_, total, err := repo.List(ctx, uuid.New(), migration.RecordFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

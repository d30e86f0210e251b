package migrationapp

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/persistence"
)

func TestParseSnapshot(t *testing.T) {
	t.Run("enveloped shape", func(t *testing.T) {
		snap, err := ParseSnapshot([]byte(`{
			"meta": {"source_account_id": "acct-1", "exported_at": "2026-08-01T00:00:00Z"},
			"products": [{"id": "p-1", "name": "Shirt"}],
			"collections": [{"id": "c-1", "name": "Summer"}]
		}`))
		require.NoError(t, err)
		assert.Equal(t, "acct-1", snap.Meta.SourceAccountID)
		assert.Len(t, snap.Products, 1)
		assert.Len(t, snap.Collections, 1)
	})

	t.Run("legacy flat shape", func(t *testing.T) {
		snap, err := ParseSnapshot([]byte(`{
			"source_account_id": "acct-legacy",
			"coupons": [{"id": "cp-1", "specification": {"name": "Sale", "code": "SALE"}}]
		}`))
		require.NoError(t, err)
		assert.Equal(t, "acct-legacy", snap.Meta.SourceAccountID)
		assert.Len(t, snap.Coupons, 1)
	})

	t.Run("missing account id", func(t *testing.T) {
		_, err := ParseSnapshot([]byte(`{"products": [{"id": "p-1"}]}`))
		var verr *migration.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := ParseSnapshot([]byte(`{"meta": `))
		assert.Error(t, err)
	})
}

func TestImporterStage(t *testing.T) {
	db := setupAppTestDB(t)
	records := persistence.NewGormMigrationRecordRepositoryForSQLite(db, 3)
	importer := NewImporter(records, zap.NewNop())
	ownerID := uuid.New()

	snap, err := ParseSnapshot([]byte(`{
		"meta": {"source_account_id": "acct-1"},
		"products": [{"id": "p-1", "name": "Shirt", "slug": "shirt"}, {"name": "no id"}],
		"collections": [{"id": "c-1", "name": "Summer", "slug": "summer"}],
		"coupons": [{"id": "cp-1", "specification": {"name": "Sale", "code": "SALE"}}],
		"gift_cards": [{"id": "g-1", "code": "GC-42"}]
	}`))
	require.NoError(t, err)

	staged, err := importer.Stage(context.Background(), ownerID, snap)
	require.NoError(t, err)
	assert.Equal(t, 4, staged, "entities without an ID are not staged")

	// Staged rows are export-only: no destination account yet
	rows, total, err := records.List(context.Background(), ownerID, migration.RecordFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	for _, row := range rows {
		assert.Empty(t, row.DestinationAccountID)
		assert.Equal(t, migration.StatusPending, row.Status)
	}

	// Re-staging the same snapshot is idempotent
	staged, err = importer.Stage(context.Background(), ownerID, snap)
	require.NoError(t, err)
	assert.Equal(t, 4, staged)
	_, total, err = records.List(context.Background(), ownerID, migration.RecordFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}

package migrationapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

type fakeCategoryCreator struct {
	created []*wix.Collection
}

func (f *fakeCategoryCreator) CreateCategory(_ context.Context, src *wix.Collection) (string, error) {
	f.created = append(f.created, src)
	return "dst-cat-1", nil
}

func TestWixDestinationLookupCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a category through the bound strategy", func(t *testing.T) {
		creator := &fakeCategoryCreator{}
		lookup := NewWixDestinationLookup(nil, nil)
		lookup.SetCategoryCreator(creator)

		id, err := lookup.Create(ctx, migration.RefTypeCategory, migration.RefDescriptor{
			Type: migration.RefTypeCategory,
			Name: "Accessories",
		})
		require.NoError(t, err)
		assert.Equal(t, "dst-cat-1", id)

		require.Len(t, creator.created, 1)
		assert.Equal(t, "Accessories", creator.created[0].Name)
		assert.True(t, creator.created[0].Visible)
	})

	t.Run("category auto-create is wired, not rejected", func(t *testing.T) {
		// Categories report auto-create support, so the creation arm must
		// exist; an unbound strategy is a configuration error, not an
		// unsupported type.
		require.True(t, migration.RefTypeCategory.SupportsAutoCreate())

		lookup := NewWixDestinationLookup(nil, nil)
		_, err := lookup.Create(ctx, migration.RefTypeCategory, migration.RefDescriptor{Name: "Accessories"})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "does not support creation")
	})
}

package migrationapp

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// CategoryAdapter migrates product collections. Platform-managed collections
// such as the automatic all-products collection exist on every store and are
// never migrated.
type CategoryAdapter struct {
	source        *wix.CollectionsAPI
	sourceVersion wix.CatalogVersion
	strategy      SchemaStrategy
	resolver      *Resolver
	paginator     *wix.Paginator
	logger        *zap.Logger
}

// NewCategoryAdapter creates the category adapter
func NewCategoryAdapter(source *wix.CollectionsAPI, sourceVersion wix.CatalogVersion, strategy SchemaStrategy, resolver *Resolver, paginator *wix.Paginator, logger *zap.Logger) *CategoryAdapter {
	return &CategoryAdapter{
		source:        source,
		sourceVersion: sourceVersion,
		strategy:      strategy,
		resolver:      resolver,
		paginator:     paginator,
		logger:        logger.Named("categories"),
	}
}

var _ EntityAdapter = (*CategoryAdapter)(nil)

// EntityType identifies this adapter's entity type
func (a *CategoryAdapter) EntityType() migration.EntityType {
	return migration.EntityTypeCategory
}

// FetchAll exhausts the source account's collection listing
func (a *CategoryAdapter) FetchAll(ctx context.Context) ([]SourceItem, error) {
	fetch := a.source.ListPage
	if a.sourceVersion.IsV3() {
		fetch = a.source.ListPageV3
	}

	raws, err := a.paginator.FetchAll(ctx, fetch)
	if err != nil {
		return nil, err
	}

	items := make([]SourceItem, 0, len(raws))
	for _, raw := range raws {
		col, err := wix.DecodeCollection(raw)
		if err != nil {
			return nil, err
		}
		item := SourceItem{
			ID:      col.ID,
			Keys:    migration.NaturalKeys{Slug: col.Slug, Name: col.Name},
			Payload: col,
		}
		if isProtectedCollection(col) {
			item.Protected = true
			item.ProtectedReason = "platform-managed collection"
		}
		items = append(items, item)
	}
	return items, nil
}

// Create transforms and creates one collection on the destination
func (a *CategoryAdapter) Create(ctx context.Context, item SourceItem) (string, error) {
	col, ok := item.Payload.(*wix.Collection)
	if !ok {
		return "", fmt.Errorf("categories: unexpected payload type %T", item.Payload)
	}

	destID, err := a.strategy.CreateCategory(ctx, col)
	if err != nil {
		return "", err
	}

	if err := a.resolver.RecordMigrated(ctx, migration.RefTypeCategory, col.ID, destID, col.Name, col.Slug); err != nil {
		a.logger.Warn("failed to record category mapping",
			zap.String("source_id", col.ID),
			zap.Error(err),
		)
	}
	return destID, nil
}

// isProtectedCollection reports whether a collection is platform-managed.
// Every store gets an automatic all-products collection that cannot be
// created via the API.
func isProtectedCollection(col *wix.Collection) bool {
	if col.Slug == "all-products" {
		return true
	}
	return strings.EqualFold(col.Name, "All Products")
}

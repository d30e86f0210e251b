package migrationapp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// ProductAdapter migrates catalog products
type ProductAdapter struct {
	source        *wix.ProductsAPI
	sourceVersion wix.CatalogVersion
	strategy      SchemaStrategy
	resolver      *Resolver
	paginator     *wix.Paginator
	logger        *zap.Logger
}

// NewProductAdapter creates the product adapter. The source catalog version
// decides the fetch endpoint; the strategy decides the creation schema.
func NewProductAdapter(source *wix.ProductsAPI, sourceVersion wix.CatalogVersion, strategy SchemaStrategy, resolver *Resolver, paginator *wix.Paginator, logger *zap.Logger) *ProductAdapter {
	return &ProductAdapter{
		source:        source,
		sourceVersion: sourceVersion,
		strategy:      strategy,
		resolver:      resolver,
		paginator:     paginator,
		logger:        logger.Named("products"),
	}
}

var _ EntityAdapter = (*ProductAdapter)(nil)

// EntityType identifies this adapter's entity type
func (a *ProductAdapter) EntityType() migration.EntityType {
	return migration.EntityTypeProduct
}

// FetchAll exhausts the source account's product listing
func (a *ProductAdapter) FetchAll(ctx context.Context) ([]SourceItem, error) {
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
		product, err := wix.DecodeProduct(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, SourceItem{
			ID:        product.ID,
			Keys:      migration.NaturalKeys{Slug: product.Slug, Name: product.Name},
			CreatedAt: ParseCreatedDate(product.CreatedDate),
			Payload:   product,
		})
	}
	return items, nil
}

// Create transforms and creates one product on the destination
func (a *ProductAdapter) Create(ctx context.Context, item SourceItem) (string, error) {
	product, ok := item.Payload.(*wix.Product)
	if !ok {
		return "", fmt.Errorf("products: unexpected payload type %T", item.Payload)
	}

	// Legacy listings omit variants; they live behind a sub-resource
	if !a.sourceVersion.IsV3() && len(product.ProductOptions) > 0 && len(product.Variants) == 0 {
		variants, err := a.source.GetVariants(ctx, product.ID)
		if err != nil {
			return "", fmt.Errorf("products: fetching variants for %s: %w", product.ID, err)
		}
		product.Variants = variants
	}

	destID, err := a.strategy.CreateProduct(ctx, product)
	if err != nil {
		return "", err
	}

	// Later coupon and order migration resolves product references through
	// this mapping
	if err := a.resolver.RecordMigrated(ctx, migration.RefTypeProduct, product.ID, destID, product.Name, product.Slug); err != nil {
		a.logger.Warn("failed to record product mapping",
			zap.String("source_id", product.ID),
			zap.Error(err),
		)
	}
	return destID, nil
}

package migrationapp

import (
	"context"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// SchemaStrategy adapts product and category creation to the destination
// account's catalog generation. The strategy is probed and selected once per
// run; every entity in the run flows through the same strategy.
type SchemaStrategy interface {
	Version() wix.CatalogVersion

	// CreateProduct transforms and creates one product on the destination,
	// returning the new destination ID
	CreateProduct(ctx context.Context, src *wix.Product) (string, error)

	// CreateCategory transforms and creates one category on the destination,
	// returning the new destination ID
	CreateCategory(ctx context.Context, src *wix.Collection) (string, error)
}

// SelectStrategy probes the destination account's catalog version and
// returns the matching strategy.
func SelectStrategy(
	ctx context.Context,
	destination *wix.Client,
	transformer *ProductTransformer,
	slugs *SlugRegistry,
) (SchemaStrategy, error) {
	version, err := wix.ProbeCatalogVersion(ctx, destination)
	if err != nil {
		return nil, err
	}

	products := wix.NewProductsAPI(destination)
	collections := wix.NewCollectionsAPI(destination)
	if version.IsV3() {
		return NewCatalogV3Strategy(products, collections, transformer, slugs), nil
	}
	return NewCatalogV1Strategy(products, collections, transformer, slugs), nil
}

// CatalogV1Strategy targets legacy-catalog destinations
type CatalogV1Strategy struct {
	products    *wix.ProductsAPI
	collections *wix.CollectionsAPI
	transformer *ProductTransformer
	slugs       *SlugRegistry
}

// NewCatalogV1Strategy creates the legacy-catalog strategy
func NewCatalogV1Strategy(products *wix.ProductsAPI, collections *wix.CollectionsAPI, transformer *ProductTransformer, slugs *SlugRegistry) *CatalogV1Strategy {
	return &CatalogV1Strategy{products: products, collections: collections, transformer: transformer, slugs: slugs}
}

var _ SchemaStrategy = (*CatalogV1Strategy)(nil)

// Version reports the catalog generation this strategy targets
func (s *CatalogV1Strategy) Version() wix.CatalogVersion {
	return wix.CatalogV1
}

// CreateProduct transforms and creates one legacy-catalog product
func (s *CatalogV1Strategy) CreateProduct(ctx context.Context, src *wix.Product) (string, error) {
	payload, err := s.transformer.TransformV1(ctx, src)
	if err != nil {
		return "", err
	}
	return s.products.Create(ctx, payload)
}

// CreateCategory transforms and creates one legacy-catalog collection
func (s *CatalogV1Strategy) CreateCategory(ctx context.Context, src *wix.Collection) (string, error) {
	if src.Name == "" {
		return "", migration.NewValidationError("name", "collection name is required")
	}
	payload := &wix.Collection{
		Name:        src.Name,
		Slug:        s.slugs.Reserve(DeriveSlug(categorySlugBasis(src), src.ID)),
		Description: src.Description,
		Visible:     src.Visible,
		Media:       src.Media,
	}
	return s.collections.Create(ctx, payload)
}

// CatalogV3Strategy targets current-catalog destinations
type CatalogV3Strategy struct {
	products    *wix.ProductsAPI
	collections *wix.CollectionsAPI
	transformer *ProductTransformer
	slugs       *SlugRegistry
}

// NewCatalogV3Strategy creates the current-catalog strategy
func NewCatalogV3Strategy(products *wix.ProductsAPI, collections *wix.CollectionsAPI, transformer *ProductTransformer, slugs *SlugRegistry) *CatalogV3Strategy {
	return &CatalogV3Strategy{products: products, collections: collections, transformer: transformer, slugs: slugs}
}

var _ SchemaStrategy = (*CatalogV3Strategy)(nil)

// Version reports the catalog generation this strategy targets
func (s *CatalogV3Strategy) Version() wix.CatalogVersion {
	return wix.CatalogV3
}

// CreateProduct transforms and creates one current-catalog product
func (s *CatalogV3Strategy) CreateProduct(ctx context.Context, src *wix.Product) (string, error) {
	payload, err := s.transformer.TransformV3(ctx, src)
	if err != nil {
		return "", err
	}
	return s.products.CreateV3(ctx, payload)
}

// CreateCategory transforms and creates one current-catalog category
func (s *CatalogV3Strategy) CreateCategory(ctx context.Context, src *wix.Collection) (string, error) {
	if src.Name == "" {
		return "", migration.NewValidationError("name", "category name is required")
	}
	payload := &wix.CategoryV3{
		Name:        src.Name,
		Slug:        s.slugs.Reserve(DeriveSlug(categorySlugBasis(src), src.ID)),
		Description: src.Description,
		Visible:     src.Visible,
	}
	return s.collections.CreateV3(ctx, payload)
}

func categorySlugBasis(src *wix.Collection) string {
	if src.Slug != "" {
		return src.Slug
	}
	return src.Name
}

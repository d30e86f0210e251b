package migrationapp

import (
	"context"
	"strings"
	"time"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// maxDescriptionLength bounds product descriptions to the platform's limit
const maxDescriptionLength = 8000

// ProductTransformer rewrites source products into destination creation
// payloads: slugs are re-derived and deduplicated, SKUs deduplicated,
// duplicate options merged, and cross-entity references remapped through the
// resolver. One transformer serves one run.
type ProductTransformer struct {
	resolver *Resolver
	slugs    *SlugRegistry
	skus     *SKURegistry
}

// NewProductTransformer creates a transformer owning the run's slug and SKU
// registries.
func NewProductTransformer(resolver *Resolver, slugs *SlugRegistry, skus *SKURegistry) *ProductTransformer {
	return &ProductTransformer{resolver: resolver, slugs: slugs, skus: skus}
}

// TransformV1 builds a legacy-catalog creation payload from a source product
func (t *ProductTransformer) TransformV1(ctx context.Context, src *wix.Product) (*wix.Product, error) {
	if src.Name == "" {
		return nil, migration.NewValidationError("name", "product name is required")
	}

	out := &wix.Product{
		Name:           src.Name,
		Slug:           t.slugs.Reserve(DeriveSlug(chooseSlugBasis(src), src.ID)),
		Description:    TruncateDescription(src.Description),
		SKU:            t.skus.Reserve(src.SKU),
		Ribbon:         src.Ribbon,
		Brand:          src.Brand,
		ProductType:    src.ProductType,
		Visible:        src.Visible,
		PriceData:      src.PriceData,
		Stock:          src.Stock,
		Media:          src.Media,
		ProductOptions: DedupeOptions(src.ProductOptions),
	}

	for _, v := range src.Variants {
		variant := v
		variant.ID = ""
		variant.SKU = t.skus.Reserve(v.SKU)
		out.Variants = append(out.Variants, variant)
	}

	for _, collectionID := range src.CollectionIDs {
		destID, err := t.resolver.Resolve(ctx, migration.RefDescriptor{
			Type:     migration.RefTypeCategory,
			SourceID: collectionID,
		})
		if err != nil {
			return nil, err
		}
		if destID != "" {
			out.CollectionIDs = append(out.CollectionIDs, destID)
		}
	}
	return out, nil
}

// TransformV3 builds a current-catalog creation payload. The V3 generation
// replaces free-text brand and ribbon with references, so both go through
// the resolver and may be auto-created on the destination.
func (t *ProductTransformer) TransformV3(ctx context.Context, src *wix.Product) (*wix.ProductV3, error) {
	if src.Name == "" {
		return nil, migration.NewValidationError("name", "product name is required")
	}

	out := &wix.ProductV3{
		Name:             src.Name,
		Slug:             t.slugs.Reserve(DeriveSlug(chooseSlugBasis(src), src.ID)),
		PlainDescription: TruncateDescription(src.Description),
		ProductType:      src.ProductType,
		Visible:          src.Visible,
		CreatedDate:      src.CreatedDate,
	}

	if src.Brand != "" {
		brandID, err := t.resolver.Resolve(ctx, migration.RefDescriptor{
			Type: migration.RefTypeBrand,
			Name: src.Brand,
		})
		if err != nil {
			return nil, err
		}
		out.BrandID = brandID
	}
	if src.Ribbon != "" {
		ribbonID, err := t.resolver.Resolve(ctx, migration.RefDescriptor{
			Type: migration.RefTypeRibbon,
			Name: src.Ribbon,
		})
		if err != nil {
			return nil, err
		}
		out.RibbonID = ribbonID
	}
	for _, collectionID := range src.CollectionIDs {
		destID, err := t.resolver.Resolve(ctx, migration.RefDescriptor{
			Type:     migration.RefTypeCategory,
			SourceID: collectionID,
		})
		if err != nil {
			return nil, err
		}
		if destID != "" {
			out.CategoryIDs = append(out.CategoryIDs, destID)
		}
	}

	for _, opt := range DedupeOptions(src.ProductOptions) {
		optV3 := wix.ProductOptionV3{Name: opt.Name}
		for _, choice := range opt.Choices {
			optV3.ChoicesSettings.Choices = append(optV3.ChoicesSettings.Choices,
				wix.ProductOptionChoiceV3{Name: choiceLabel(choice)})
		}
		out.Options = append(out.Options, optV3)
	}

	if len(src.Variants) > 0 {
		info := &wix.VariantsInfoV3{}
		for _, v := range src.Variants {
			variant := wix.ProductVariantV3{
				SKU:          t.skus.Reserve(v.SKU),
				ChoicesNames: v.Choices,
				Visible:      v.Visible,
			}
			if v.Price != nil {
				variant.Price = &wix.PriceV3{
					ActualPrice: wix.MoneyV3{
						Amount:   v.Price.Price.String(),
						Currency: v.Price.Currency,
					},
				}
			}
			info.Variants = append(info.Variants, variant)
		}
		out.VariantsInfo = info
	}
	return out, nil
}

// chooseSlugBasis prefers the source slug over re-deriving from the name, so
// store URLs survive migration when possible.
func chooseSlugBasis(src *wix.Product) string {
	if src.Slug != "" {
		return src.Slug
	}
	return src.Name
}

func choiceLabel(c wix.ProductOptionChoice) string {
	if c.Description != "" {
		return c.Description
	}
	return c.Value
}

// DedupeOptions merges options that share a name (case-insensitive),
// deduplicating their choices by value. Source catalogs accumulate duplicate
// axes that the destination rejects.
func DedupeOptions(options []wix.ProductOption) []wix.ProductOption {
	if len(options) == 0 {
		return nil
	}

	var out []wix.ProductOption
	index := make(map[string]int, len(options))
	seenChoice := make(map[string]struct{})

	for _, opt := range options {
		key := strings.ToLower(strings.TrimSpace(opt.Name))
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, wix.ProductOption{Name: opt.Name})
			i = len(out) - 1
		}
		for _, choice := range opt.Choices {
			choiceKey := key + "\x00" + strings.ToLower(choiceLabel(choice))
			if _, dup := seenChoice[choiceKey]; dup {
				continue
			}
			seenChoice[choiceKey] = struct{}{}
			out[i].Choices = append(out[i].Choices, choice)
		}
	}
	return out
}

// TruncateDescription bounds a description to the platform limit, cutting at
// a rune boundary.
func TruncateDescription(description string) string {
	if len(description) <= maxDescriptionLength {
		return description
	}
	runes := []rune(description)
	if len(runes) <= maxDescriptionLength {
		return description
	}
	return string(runes[:maxDescriptionLength])
}

// ParseCreatedDate derives the ordering timestamp of a source entity from
// its created-date field. Missing or malformed timestamps sort first.
func ParseCreatedDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

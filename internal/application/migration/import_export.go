package migrationapp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// SnapshotMeta describes where and when a snapshot was taken
type SnapshotMeta struct {
	SourceAccountID string    `json:"source_account_id"`
	ExportedAt      time.Time `json:"exported_at"`
}

// Snapshot is a portable export of one source account's store data. It can
// be imported later without access to the source account.
type Snapshot struct {
	Meta        SnapshotMeta      `json:"meta"`
	Products    []json.RawMessage `json:"products,omitempty"`
	Collections []json.RawMessage `json:"collections,omitempty"`
	Coupons     []json.RawMessage `json:"coupons,omitempty"`
	GiftCards   []json.RawMessage `json:"gift_cards,omitempty"`
}

// legacySnapshot is the flat shape written by earlier exports: the account
// ID sits at the top level instead of under meta.
type legacySnapshot struct {
	SourceAccountID string            `json:"source_account_id"`
	Products        []json.RawMessage `json:"products,omitempty"`
	Collections     []json.RawMessage `json:"collections,omitempty"`
	Coupons         []json.RawMessage `json:"coupons,omitempty"`
	GiftCards       []json.RawMessage `json:"gift_cards,omitempty"`
}

// ParseSnapshot reads a snapshot in either the current enveloped shape or
// the legacy flat shape.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: malformed JSON: %w", err)
	}
	if snap.Meta.SourceAccountID != "" {
		return &snap, nil
	}

	var legacy legacySnapshot
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("snapshot: malformed JSON: %w", err)
	}
	if legacy.SourceAccountID == "" {
		return nil, migration.NewValidationError("source_account_id", "snapshot does not identify its source account")
	}
	return &Snapshot{
		Meta:        SnapshotMeta{SourceAccountID: legacy.SourceAccountID},
		Products:    legacy.Products,
		Collections: legacy.Collections,
		Coupons:     legacy.Coupons,
		GiftCards:   legacy.GiftCards,
	}, nil
}

// Exporter captures a source account's store data into a snapshot
type Exporter struct {
	products    *wix.ProductsAPI
	collections *wix.CollectionsAPI
	coupons     *wix.CouponsAPI
	giftCards   *wix.GiftCardsAPI
	version     wix.CatalogVersion
	paginator   *wix.Paginator
	logger      *zap.Logger
}

// NewExporter creates an exporter for one source account
func NewExporter(source *wix.Client, version wix.CatalogVersion, paginator *wix.Paginator, logger *zap.Logger) *Exporter {
	return &Exporter{
		products:    wix.NewProductsAPI(source),
		collections: wix.NewCollectionsAPI(source),
		coupons:     wix.NewCouponsAPI(source),
		giftCards:   wix.NewGiftCardsAPI(source),
		version:     version,
		paginator:   paginator,
		logger:      logger.Named("exporter"),
	}
}

// Export fetches every exportable entity from the source account
func (e *Exporter) Export(ctx context.Context, sourceAccountID string) (*Snapshot, error) {
	snap := &Snapshot{
		Meta: SnapshotMeta{
			SourceAccountID: sourceAccountID,
			ExportedAt:      time.Now().UTC(),
		},
	}

	productFetch := e.products.ListPage
	collectionFetch := e.collections.ListPage
	if e.version.IsV3() {
		productFetch = e.products.ListPageV3
		collectionFetch = e.collections.ListPageV3
	}

	var err error
	if snap.Products, err = e.paginator.FetchAll(ctx, productFetch); err != nil {
		return nil, fmt.Errorf("exporting products: %w", err)
	}
	if snap.Collections, err = e.paginator.FetchAll(ctx, collectionFetch); err != nil {
		return nil, fmt.Errorf("exporting collections: %w", err)
	}
	if snap.Coupons, err = e.paginator.FetchAll(ctx, e.coupons.ListPage); err != nil {
		return nil, fmt.Errorf("exporting coupons: %w", err)
	}
	if snap.GiftCards, err = e.paginator.FetchAll(ctx, e.giftCards.ListPage); err != nil {
		return nil, fmt.Errorf("exporting gift cards: %w", err)
	}

	e.logger.Info("export complete",
		zap.String("source_account", sourceAccountID),
		zap.Int("products", len(snap.Products)),
		zap.Int("collections", len(snap.Collections)),
		zap.Int("coupons", len(snap.Coupons)),
		zap.Int("gift_cards", len(snap.GiftCards)),
	)
	return snap, nil
}

// Importer stages snapshot contents as export-only migration records: rows
// without a destination account that a later destination-targeted run can
// claim and resolve.
type Importer struct {
	records migration.RecordRepository
	logger  *zap.Logger
}

// NewImporter creates a snapshot importer
func NewImporter(records migration.RecordRepository, logger *zap.Logger) *Importer {
	return &Importer{records: records, logger: logger.Named("importer")}
}

// Stage creates export-only records for every entity in the snapshot and
// returns the number staged.
func (i *Importer) Stage(ctx context.Context, ownerID uuid.UUID, snap *Snapshot) (int, error) {
	staged := 0

	stageRaw := func(entityType migration.EntityType, raws []json.RawMessage) error {
		for _, raw := range raws {
			id, keys := snapshotIdentity(entityType, raw)
			if id == "" {
				continue
			}
			record, err := migration.NewMigrationRecord(ownerID, snap.Meta.SourceAccountID, "", entityType, id, keys)
			if err != nil {
				return err
			}
			if _, err := i.records.Stage(ctx, record); err != nil {
				return err
			}
			staged++
		}
		return nil
	}

	if err := stageRaw(migration.EntityTypeProduct, snap.Products); err != nil {
		return staged, err
	}
	if err := stageRaw(migration.EntityTypeCategory, snap.Collections); err != nil {
		return staged, err
	}
	if err := stageRaw(migration.EntityTypeCoupon, snap.Coupons); err != nil {
		return staged, err
	}
	if err := stageRaw(migration.EntityTypeGiftCard, snap.GiftCards); err != nil {
		return staged, err
	}

	i.logger.Info("snapshot staged",
		zap.String("source_account", snap.Meta.SourceAccountID),
		zap.Int("records", staged),
	)
	return staged, nil
}

func snapshotIdentity(entityType migration.EntityType, raw json.RawMessage) (string, migration.NaturalKeys) {
	switch entityType {
	case migration.EntityTypeProduct:
		if p, err := wix.DecodeProduct(raw); err == nil {
			return p.ID, migration.NaturalKeys{Slug: p.Slug, Name: p.Name}
		}
	case migration.EntityTypeCategory:
		if c, err := wix.DecodeCollection(raw); err == nil {
			return c.ID, migration.NaturalKeys{Slug: c.Slug, Name: c.Name}
		}
	case migration.EntityTypeCoupon:
		if c, err := wix.DecodeCoupon(raw); err == nil && c.Specification != nil {
			return c.ID, migration.NaturalKeys{Code: c.Specification.Code, Name: c.Specification.Name}
		}
	case migration.EntityTypeGiftCard:
		if g, err := wix.DecodeGiftCard(raw); err == nil {
			return g.ID, migration.NaturalKeys{Code: g.Code}
		}
	}
	return "", migration.NaturalKeys{}
}

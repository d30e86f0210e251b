package migrationapp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/audit"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/config"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// Service assembles and executes migration runs. It owns the wiring that a
// run needs once: account tokens, API clients, catalog version probes, the
// schema strategy and the per-entity adapters.
type Service struct {
	cfg      *config.Config
	records  migration.RecordRepository
	mappings migration.ReferenceMapRepository
	tokens   wix.TokenProvider
	audit    *audit.Logger
	logger   *zap.Logger
}

// NewService creates the migration service
func NewService(
	cfg *config.Config,
	records migration.RecordRepository,
	mappings migration.ReferenceMapRepository,
	tokens wix.TokenProvider,
	auditLog *audit.Logger,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:      cfg,
		records:  records,
		mappings: mappings,
		tokens:   tokens,
		audit:    auditLog,
		logger:   logger.Named("migration-service"),
	}
}

// RunInput describes a requested migration run
type RunInput struct {
	OwnerID              uuid.UUID
	SourceAccountID      string
	DestinationAccountID string
	// EntityTypes restricts the run; empty means every supported type in
	// dependency order.
	EntityTypes []migration.EntityType
	Mode        migration.ResolutionMode
	DryRun      bool
}

// RunResult carries the run identifier and the per-entity outcome summaries
type RunResult struct {
	RunID     string              `json:"run_id"`
	Summaries []migration.Summary `json:"summaries"`
}

// Run executes one migration run end to end. Token lookup, catalog probing
// and adapter construction failures abort the whole run; per-entity failures
// are reported in the summaries.
func (s *Service) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	if input.SourceAccountID == "" || input.DestinationAccountID == "" {
		return nil, migration.NewValidationError("account", "source and destination accounts are required")
	}
	if input.SourceAccountID == input.DestinationAccountID {
		return nil, migration.NewValidationError("account", "source and destination must differ")
	}

	mode := input.Mode
	if mode == "" {
		mode = migration.ResolutionMode(s.cfg.Migration.DefaultMode)
	}
	if !mode.IsValid() {
		return nil, migration.NewValidationError("mode", fmt.Sprintf("unknown resolution mode %q", mode))
	}

	sourceToken, err := s.tokens.AccessToken(ctx, input.SourceAccountID)
	if err != nil {
		return nil, fmt.Errorf("source account token: %w", err)
	}
	destToken, err := s.tokens.AccessToken(ctx, input.DestinationAccountID)
	if err != nil {
		return nil, fmt.Errorf("destination account token: %w", err)
	}

	source := wix.NewClient(&s.cfg.Wix, sourceToken, s.logger)
	destination := wix.NewClient(&s.cfg.Wix, destToken, s.logger)

	sourceVersion, err := wix.ProbeCatalogVersion(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("probing source catalog: %w", err)
	}

	lookup := NewWixDestinationLookup(wix.NewRefsAPI(destination), NewMediaFolderLookup(wix.NewMediaAPI(destination)))
	resolver := NewResolver(s.mappings, lookup, mode, input.OwnerID,
		input.SourceAccountID, input.DestinationAccountID, s.logger)

	slugs := NewSlugRegistry()
	transformer := NewProductTransformer(resolver, slugs, NewSKURegistry())
	strategy, err := SelectStrategy(ctx, destination, transformer, slugs)
	if err != nil {
		return nil, fmt.Errorf("probing destination catalog: %w", err)
	}
	lookup.SetCategoryCreator(strategy)

	adapters, err := s.buildAdapters(input.EntityTypes, source, destination, sourceVersion, strategy, resolver)
	if err != nil {
		return nil, err
	}

	runner := NewRunner(s.records, s.audit, s.logger)
	req := RunRequest{
		OwnerID:              input.OwnerID,
		SourceAccountID:      input.SourceAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Options:              migration.RunOptions{Mode: mode, DryRun: input.DryRun},
	}
	summaries, runErr := runner.Run(ctx, req, adapters)
	return &RunResult{RunID: req.RunID, Summaries: summaries}, runErr
}

// buildAdapters constructs adapters for the requested entity types in
// dependency order: categories before products, the catalog before anything
// that references it, orders last.
func (s *Service) buildAdapters(
	requested []migration.EntityType,
	source, destination *wix.Client,
	sourceVersion wix.CatalogVersion,
	strategy SchemaStrategy,
	resolver *Resolver,
) ([]EntityAdapter, error) {
	wanted := make(map[migration.EntityType]bool, len(requested))
	for _, t := range requested {
		wanted[t] = true
	}
	all := len(requested) == 0

	offset := func() *wix.Paginator {
		return wix.NewPaginator(wix.StrategyOffset, s.cfg.Wix.PageSize, s.cfg.Wix.MaxPages)
	}
	cursor := func() *wix.Paginator {
		return wix.NewPaginator(wix.StrategyCursor, s.cfg.Wix.PageSize, s.cfg.Wix.MaxPages)
	}
	catalog := func() *wix.Paginator {
		p := offset()
		if sourceVersion.IsV3() {
			p = cursor().WithFallback(wix.StrategyOffset)
		}
		return p
	}

	var adapters []EntityAdapter
	add := func(t migration.EntityType, build func() EntityAdapter) {
		if all || wanted[t] {
			adapters = append(adapters, build())
			delete(wanted, t)
		}
	}

	add(migration.EntityTypeMedia, func() EntityAdapter {
		return NewMediaAdapter(wix.NewMediaAPI(source), wix.NewMediaAPI(destination), resolver, cursor(), s.logger)
	})
	add(migration.EntityTypeCategory, func() EntityAdapter {
		return NewCategoryAdapter(wix.NewCollectionsAPI(source), sourceVersion, strategy, resolver, catalog(), s.logger)
	})
	add(migration.EntityTypeProduct, func() EntityAdapter {
		return NewProductAdapter(wix.NewProductsAPI(source), sourceVersion, strategy, resolver, catalog(), s.logger)
	})
	add(migration.EntityTypeCoupon, func() EntityAdapter {
		return NewCouponAdapter(wix.NewCouponsAPI(source), wix.NewCouponsAPI(destination), resolver, offset())
	})
	add(migration.EntityTypeDiscountRule, func() EntityAdapter {
		return NewDiscountRuleAdapter(wix.NewGiftCardsAPI(source), wix.NewGiftCardsAPI(destination), cursor())
	})
	add(migration.EntityTypeGiftCard, func() EntityAdapter {
		return NewGiftCardAdapter(wix.NewGiftCardsAPI(source), wix.NewGiftCardsAPI(destination), cursor())
	})
	add(migration.EntityTypeMember, func() EntityAdapter {
		return NewMemberAdapter(wix.NewMembersAPI(source), wix.NewMembersAPI(destination), cursor())
	})
	add(migration.EntityTypeOrder, func() EntityAdapter {
		return NewOrderAdapter(wix.NewOrdersAPI(source), wix.NewOrdersAPI(destination), resolver, cursor(), s.logger)
	})

	for t := range wanted {
		return nil, migration.NewValidationError("entity_types", fmt.Sprintf("unsupported entity type %q", t))
	}
	if len(adapters) == 0 {
		return nil, migration.NewValidationError("entity_types", "no entity types to migrate")
	}
	return adapters, nil
}

// Export captures the source account's store data as a portable snapshot
func (s *Service) Export(ctx context.Context, sourceAccountID string) (*Snapshot, error) {
	if sourceAccountID == "" {
		return nil, migration.NewValidationError("source_account_id", "source account is required")
	}
	token, err := s.tokens.AccessToken(ctx, sourceAccountID)
	if err != nil {
		return nil, fmt.Errorf("source account token: %w", err)
	}

	source := wix.NewClient(&s.cfg.Wix, token, s.logger)
	version, err := wix.ProbeCatalogVersion(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("probing source catalog: %w", err)
	}

	paginator := wix.NewPaginator(wix.StrategyOffset, s.cfg.Wix.PageSize, s.cfg.Wix.MaxPages)
	if version.IsV3() {
		paginator = wix.NewPaginator(wix.StrategyCursor, s.cfg.Wix.PageSize, s.cfg.Wix.MaxPages).
			WithFallback(wix.StrategyOffset)
	}

	exporter := NewExporter(source, version, paginator, s.logger)
	return exporter.Export(ctx, sourceAccountID)
}

// Import stages a previously exported snapshot as pending migration records
func (s *Service) Import(ctx context.Context, ownerID uuid.UUID, data []byte) (int, error) {
	snap, err := ParseSnapshot(data)
	if err != nil {
		return 0, err
	}
	importer := NewImporter(s.records, s.logger)
	return importer.Stage(ctx, ownerID, snap)
}

// ListRecords returns migration records for an owner, filtered and paged
func (s *Service) ListRecords(ctx context.Context, ownerID uuid.UUID, filter migration.RecordFilter) ([]*migration.MigrationRecord, int64, error) {
	return s.records.List(ctx, ownerID, filter)
}

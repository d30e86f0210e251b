package migrationapp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
)

// DestinationLookup searches and creates reference entities directly on the
// destination account. It is the live fallback consulted when the persisted
// mapping store has no answer.
type DestinationLookup interface {
	// FindByName returns the destination ID of an entity matching the name
	// or slug, or shared.ErrNotFound
	FindByName(ctx context.Context, refType migration.RefType, name string) (string, error)

	// Create creates the reference entity on the destination and returns
	// its ID. Only called for types that support auto-creation.
	Create(ctx context.Context, refType migration.RefType, ref migration.RefDescriptor) (string, error)
}

// Resolver maps source-side reference IDs embedded in entities to their
// destination-side counterparts. Lookups cascade: run cache, persisted
// mapping by source ID, persisted mapping by name, live destination search,
// and finally auto-creation for simple types. Every hit below the cache is
// written back so later lookups short-circuit.
//
// A resolver is owned by one run and is not safe for concurrent use.
type Resolver struct {
	mappings migration.ReferenceMapRepository
	lookup   DestinationLookup
	mode     migration.ResolutionMode
	logger   *zap.Logger

	ownerID              uuid.UUID
	sourceAccountID      string
	destinationAccountID string

	cache map[string]string
}

// NewResolver creates a resolver scoped to one run
func NewResolver(
	mappings migration.ReferenceMapRepository,
	lookup DestinationLookup,
	mode migration.ResolutionMode,
	ownerID uuid.UUID,
	sourceAccountID, destinationAccountID string,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		mappings:             mappings,
		lookup:               lookup,
		mode:                 mode,
		logger:               logger.Named("resolver"),
		ownerID:              ownerID,
		sourceAccountID:      sourceAccountID,
		destinationAccountID: destinationAccountID,
		cache:                make(map[string]string),
	}
}

func (r *Resolver) cacheKey(refType migration.RefType, sourceID, name string) string {
	if sourceID != "" {
		return string(refType) + "\x00id\x00" + sourceID
	}
	return string(refType) + "\x00name\x00" + name
}

// Resolve returns the destination ID for a reference. In strict mode an
// unresolvable reference yields a *migration.ResolutionError; in lenient
// mode it yields an empty ID and no error, dropping the reference.
func (r *Resolver) Resolve(ctx context.Context, ref migration.RefDescriptor) (string, error) {
	key := r.cacheKey(ref.Type, ref.SourceID, ref.Name)
	if destID, ok := r.cache[key]; ok {
		return destID, nil
	}

	destID, err := r.resolveUncached(ctx, ref)
	if err == nil && destID != "" {
		r.cache[key] = destID
		return destID, nil
	}
	if err != nil {
		return "", err
	}

	if r.mode == migration.ResolutionModeLenient {
		r.logger.Warn("dropping unresolvable reference",
			zap.String("ref_type", string(ref.Type)),
			zap.String("source_id", ref.SourceID),
			zap.String("name", ref.Name),
		)
		return "", nil
	}
	return "", &migration.ResolutionError{
		RefType:  ref.Type,
		SourceID: ref.SourceID,
		Reason:   reasonFor(ref.Type),
	}
}

// resolveUncached walks the persistent and live lookup steps. An empty ID
// with nil error means the reference could not be resolved.
func (r *Resolver) resolveUncached(ctx context.Context, ref migration.RefDescriptor) (string, error) {
	// Persisted mapping by immutable source ID
	if ref.SourceID != "" {
		mapping, err := r.mappings.Find(ctx, r.ownerID, r.sourceAccountID, r.destinationAccountID, ref.Type, ref.SourceID)
		if err == nil {
			return mapping.DestinationRefID, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return "", err
		}
	}

	// Persisted mapping by natural key
	for _, name := range []string{ref.Slug, ref.Name} {
		if name == "" {
			continue
		}
		mapping, err := r.mappings.FindByName(ctx, r.ownerID, r.sourceAccountID, r.destinationAccountID, ref.Type, name)
		if err == nil {
			r.backfill(ctx, ref, mapping.DestinationRefID)
			return mapping.DestinationRefID, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return "", err
		}
	}

	// Live search on the destination account
	if r.lookup != nil && ref.Name != "" {
		destID, err := r.lookup.FindByName(ctx, ref.Type, ref.Name)
		if err == nil {
			r.backfill(ctx, ref, destID)
			return destID, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return "", err
		}
	}

	// Auto-create simple entities that only need a name
	if r.lookup != nil && ref.Type.SupportsAutoCreate() && ref.Name != "" {
		destID, err := r.lookup.Create(ctx, ref.Type, ref)
		if err != nil {
			return "", err
		}
		r.logger.Info("auto-created reference entity",
			zap.String("ref_type", string(ref.Type)),
			zap.String("name", ref.Name),
			zap.String("destination_id", destID),
		)
		r.backfill(ctx, ref, destID)
		return destID, nil
	}

	return "", nil
}

// backfill persists a freshly learned mapping so later runs skip the live
// lookup. Failures are logged, not fatal: the mapping can be relearned.
func (r *Resolver) backfill(ctx context.Context, ref migration.RefDescriptor, destID string) {
	mapping, err := migration.NewReferenceMapping(r.ownerID, r.sourceAccountID, r.destinationAccountID, ref.Type, ref.SourceID, destID)
	if err != nil {
		return
	}
	mapping.Name = ref.Name
	mapping.Slug = ref.Slug
	if ref.SourceID == "" {
		// Without a source ID the mapping is only findable by name
		mapping.SourceRefID = "name:" + ref.Name
	}
	if err := r.mappings.Save(ctx, mapping); err != nil {
		r.logger.Warn("failed to persist reference mapping", zap.Error(err))
	}
}

// RecordMigrated registers a mapping for an entity this run just migrated,
// making it resolvable by its dependents without a lookup.
func (r *Resolver) RecordMigrated(ctx context.Context, refType migration.RefType, sourceID, destID, name, slug string) error {
	mapping, err := migration.NewReferenceMapping(r.ownerID, r.sourceAccountID, r.destinationAccountID, refType, sourceID, destID)
	if err != nil {
		return err
	}
	mapping.Name = name
	mapping.Slug = slug
	if err := r.mappings.Save(ctx, mapping); err != nil {
		return err
	}
	r.cache[r.cacheKey(refType, sourceID, name)] = destID
	return nil
}

func reasonFor(refType migration.RefType) string {
	switch refType {
	case migration.RefTypeProduct:
		return migration.ReasonProductNotFound
	case migration.RefTypeCategory:
		return migration.ReasonCategoryNotFound
	default:
		return string(refType) + "-not-found"
	}
}

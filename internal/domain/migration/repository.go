package migration

import (
	"context"

	"github.com/google/uuid"
)

// ClaimQuery narrows which pending record a caller wants to lock. When
// SourceEntityID is set the claim prefers an exact match, falling back to the
// oldest pending row; this supports the "claim now, resolve precise identity
// later" pattern used when the source ID is only learned after creation.
type ClaimQuery struct {
	OwnerID              uuid.UUID
	SourceAccountID      string
	DestinationAccountID string
	EntityType           EntityType
	SourceEntityID       string
}

// RecordFilter narrows record listings
type RecordFilter struct {
	EntityType           EntityType
	SourceAccountID      string
	DestinationAccountID string
	Status               Status
	Page                 int
	PageSize             int
}

// RecordRepository is the migration state store. Each method is independently
// transactional; all shared mutable state flows through these operations.
type RecordRepository interface {
	// Stage idempotently creates a pending row for the key tuple, returning
	// the existing row when one is already present. Concurrent staging of the
	// same tuple must not create duplicates.
	Stage(ctx context.Context, record *MigrationRecord) (*MigrationRecord, error)

	// Claim atomically locks and returns the oldest unclaimed pending row
	// matching the query. Returns ErrNoPendingRecords when none exist and
	// ErrClaimContention after bounded lock-retry exhaustion.
	Claim(ctx context.Context, q ClaimQuery) (*MigrationRecord, error)

	// ResolveOrMerge reconciles a claimed row with the exact source entity ID
	// learned during processing. If a distinct row already exists for the
	// exact tuple, that row is authoritative: the claimed row is marked
	// skipped and the existing row is returned.
	ResolveOrMerge(ctx context.Context, claimed *MigrationRecord, sourceEntityID string) (*MigrationRecord, error)

	// Finalize persists a terminal status set via MarkSuccess/MarkFailed/MarkSkipped
	Finalize(ctx context.Context, record *MigrationRecord) error

	// FindByKey returns the record for the exact key tuple, or shared.ErrNotFound
	FindByKey(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, entityType EntityType, sourceEntityID string) (*MigrationRecord, error)

	// FindSucceeded returns the successful record for a source entity, used
	// to make re-runs idempotent
	FindSucceeded(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, entityType EntityType, sourceEntityID string) (*MigrationRecord, error)

	// FindByNaturalKey matches previously migrated rows by slug, code or name
	FindByNaturalKey(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, entityType EntityType, keys NaturalKeys) (*MigrationRecord, error)

	// List returns records for an owner with optional filtering
	List(ctx context.Context, ownerID uuid.UUID, filter RecordFilter) ([]*MigrationRecord, int64, error)
}

// ReferenceMapRepository persists source-to-destination identity mappings
type ReferenceMapRepository interface {
	// Find returns the mapping for a source reference ID, or shared.ErrNotFound
	Find(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, refType RefType, sourceRefID string) (*ReferenceMapping, error)

	// FindByName matches a mapping by recorded name or slug
	FindByName(ctx context.Context, ownerID uuid.UUID, sourceAccountID, destinationAccountID string, refType RefType, name string) (*ReferenceMapping, error)

	// Save creates or updates a mapping
	Save(ctx context.Context, mapping *ReferenceMapping) error
}

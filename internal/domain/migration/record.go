package migration

import (
	"time"

	"github.com/google/uuid"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
)

// Status is the processing state of a migration record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// IsTerminal reports whether the status is a final state. A record never
// automatically leaves a terminal state; re-running against the same
// destination finds the terminal row and treats success as a no-op.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusSkipped
}

// NaturalKeys carries the secondary identifiers of a source entity used for
// fallback matching when the immutable source ID alone cannot resolve a row.
type NaturalKeys struct {
	Slug string
	Code string
	Name string
}

// MigrationRecord tracks the migration of one source entity to one
// destination account. Rows are append-only across runs and form the audit
// trail of everything the migrator has created.
type MigrationRecord struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	// SourceAccountID is the external account the entity was read from.
	SourceAccountID string
	// DestinationAccountID is empty for export-only rows that have not yet
	// been targeted at a destination.
	DestinationAccountID string
	EntityType           EntityType
	// SourceEntityID is the immutable identifier on the source account.
	SourceEntityID string
	SourceSlug     string
	SourceCode     string
	SourceName     string
	// DestinationEntityID is set if and only if Status is success.
	DestinationEntityID string
	Status              Status
	ErrorMessage        string
	ClaimedAt           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewMigrationRecord creates a pending record for a source entity
func NewMigrationRecord(
	ownerID uuid.UUID,
	sourceAccountID, destinationAccountID string,
	entityType EntityType,
	sourceEntityID string,
	keys NaturalKeys,
) (*MigrationRecord, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "owner ID is required")
	}
	if sourceAccountID == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "source account ID is required")
	}
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "unknown entity type: "+string(entityType))
	}

	now := time.Now()
	return &MigrationRecord{
		ID:                   uuid.New(),
		OwnerID:              ownerID,
		SourceAccountID:      sourceAccountID,
		DestinationAccountID: destinationAccountID,
		EntityType:           entityType,
		SourceEntityID:       sourceEntityID,
		SourceSlug:           keys.Slug,
		SourceCode:           keys.Code,
		SourceName:           keys.Name,
		Status:               StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// IsTerminal reports whether this record has reached a final state
func (r *MigrationRecord) IsTerminal() bool {
	return r.Status.IsTerminal()
}

// MarkSuccess transitions the record to success with the created destination
// entity ID. Only pending records may transition.
func (r *MigrationRecord) MarkSuccess(destinationEntityID string) error {
	if r.Status != StatusPending {
		return shared.ErrInvalidState
	}
	if destinationEntityID == "" {
		return shared.NewDomainError("INVALID_DESTINATION_ID", "destination entity ID is required on success")
	}
	r.Status = StatusSuccess
	r.DestinationEntityID = destinationEntityID
	r.ErrorMessage = ""
	r.UpdatedAt = time.Now()
	return nil
}

// MarkFailed transitions the record to failed with a diagnostic message
func (r *MigrationRecord) MarkFailed(errorMessage string) error {
	if r.Status != StatusPending {
		return shared.ErrInvalidState
	}
	r.Status = StatusFailed
	r.ErrorMessage = errorMessage
	r.UpdatedAt = time.Now()
	return nil
}

// MarkSkipped transitions the record to skipped. Used for protected system
// entities, merged duplicates, dry runs, and destination conflicts.
func (r *MigrationRecord) MarkSkipped(reason string) error {
	if r.Status != StatusPending {
		return shared.ErrInvalidState
	}
	r.Status = StatusSkipped
	r.ErrorMessage = reason
	r.UpdatedAt = time.Now()
	return nil
}

// Claimed marks the record as locked by the current run
func (r *MigrationRecord) Claimed() {
	now := time.Now()
	r.ClaimedAt = &now
	r.UpdatedAt = now
}

package migration

import (
	"time"

	"github.com/google/uuid"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
)

// RefType identifies a cross-referenced entity type that must be remapped
// from source-side identity to destination-side identity during migration.
type RefType string

const (
	RefTypeCategory    RefType = "category"
	RefTypeBrand       RefType = "brand"
	RefTypeRibbon      RefType = "ribbon"
	RefTypeProduct     RefType = "product"
	RefTypeCustomField RefType = "customization"
	RefTypeInfoSection RefType = "info_section"
	RefTypeMediaFolder RefType = "media_folder"
)

// IsValid checks if the reference type is valid
func (t RefType) IsValid() bool {
	switch t {
	case RefTypeCategory, RefTypeBrand, RefTypeRibbon, RefTypeProduct,
		RefTypeCustomField, RefTypeInfoSection, RefTypeMediaFolder:
		return true
	}
	return false
}

// SupportsAutoCreate reports whether a missing destination-side entity of
// this type may be created on demand with just a name/slug. Products and
// customizations are too structured for implicit creation.
func (t RefType) SupportsAutoCreate() bool {
	switch t {
	case RefTypeCategory, RefTypeBrand, RefTypeRibbon, RefTypeMediaFolder:
		return true
	}
	return false
}

// RefDescriptor identifies one cross-entity link embedded in an entity being
// migrated. SourceID may be empty when only a natural key is known.
type RefDescriptor struct {
	Type     RefType
	SourceID string
	Name     string
	Slug     string
}

// ReferenceMapping is one persisted source-to-destination identity mapping,
// built incrementally as reference entities are migrated and consulted when
// transforming their dependents.
type ReferenceMapping struct {
	ID                   uuid.UUID
	OwnerID              uuid.UUID
	SourceAccountID      string
	DestinationAccountID string
	RefType              RefType
	SourceRefID          string
	DestinationRefID     string
	Name                 string
	Slug                 string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewReferenceMapping creates a new reference mapping
func NewReferenceMapping(
	ownerID uuid.UUID,
	sourceAccountID, destinationAccountID string,
	refType RefType,
	sourceRefID, destinationRefID string,
) (*ReferenceMapping, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "owner ID is required")
	}
	if !refType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REF_TYPE", "unknown reference type: "+string(refType))
	}
	if destinationRefID == "" {
		return nil, shared.NewDomainError("INVALID_DESTINATION_ID", "destination reference ID is required")
	}

	now := time.Now()
	return &ReferenceMapping{
		ID:                   uuid.New(),
		OwnerID:              ownerID,
		SourceAccountID:      sourceAccountID,
		DestinationAccountID: destinationAccountID,
		RefType:              refType,
		SourceRefID:          sourceRefID,
		DestinationRefID:     destinationRefID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
)

// MigrationRecordModel is the persistence model for the MigrationRecord
// domain entity. A partial unique index on the key tuple makes staging
// idempotent under concurrency.
type MigrationRecordModel struct {
	ID                   uuid.UUID            `gorm:"type:uuid;primary_key"`
	OwnerID              uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_migration_key,priority:1"`
	SourceAccountID      string               `gorm:"type:varchar(64);not null;uniqueIndex:idx_migration_key,priority:2"`
	DestinationAccountID string               `gorm:"type:varchar(64);not null;default:'';uniqueIndex:idx_migration_key,priority:3"`
	EntityType           migration.EntityType `gorm:"type:varchar(32);not null;uniqueIndex:idx_migration_key,priority:4;index:idx_migration_claim,priority:1"`
	SourceEntityID       string               `gorm:"type:varchar(128);not null;uniqueIndex:idx_migration_key,priority:5"`
	SourceSlug           string               `gorm:"type:varchar(255);index"`
	SourceCode           string               `gorm:"type:varchar(255);index"`
	SourceName           string               `gorm:"type:varchar(255);index"`
	DestinationEntityID  string               `gorm:"type:varchar(128)"`
	Status               migration.Status     `gorm:"type:varchar(16);not null;default:'pending';index:idx_migration_claim,priority:2"`
	ErrorMessage         string               `gorm:"type:text"`
	ClaimedAt            *time.Time
	CreatedAt            time.Time            `gorm:"not null"`
	UpdatedAt            time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MigrationRecordModel) TableName() string {
	return "migration_records"
}

// ToDomain converts the persistence model to a domain MigrationRecord
func (m *MigrationRecordModel) ToDomain() *migration.MigrationRecord {
	return &migration.MigrationRecord{
		ID:                   m.ID,
		OwnerID:              m.OwnerID,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID,
		EntityType:           m.EntityType,
		SourceEntityID:       m.SourceEntityID,
		SourceSlug:           m.SourceSlug,
		SourceCode:           m.SourceCode,
		SourceName:           m.SourceName,
		DestinationEntityID:  m.DestinationEntityID,
		Status:               m.Status,
		ErrorMessage:         m.ErrorMessage,
		ClaimedAt:            m.ClaimedAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain MigrationRecord
func (m *MigrationRecordModel) FromDomain(r *migration.MigrationRecord) {
	m.ID = r.ID
	m.OwnerID = r.OwnerID
	m.SourceAccountID = r.SourceAccountID
	m.DestinationAccountID = r.DestinationAccountID
	m.EntityType = r.EntityType
	m.SourceEntityID = r.SourceEntityID
	m.SourceSlug = r.SourceSlug
	m.SourceCode = r.SourceCode
	m.SourceName = r.SourceName
	m.DestinationEntityID = r.DestinationEntityID
	m.Status = r.Status
	m.ErrorMessage = r.ErrorMessage
	m.ClaimedAt = r.ClaimedAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}

// ReferenceMappingModel is the persistence model for the ReferenceMapping
// domain entity.
type ReferenceMappingModel struct {
	ID                   uuid.UUID         `gorm:"type:uuid;primary_key"`
	OwnerID              uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_reference_key,priority:1"`
	SourceAccountID      string            `gorm:"type:varchar(64);not null;uniqueIndex:idx_reference_key,priority:2"`
	DestinationAccountID string            `gorm:"type:varchar(64);not null;default:'';uniqueIndex:idx_reference_key,priority:3"`
	RefType              migration.RefType `gorm:"type:varchar(32);not null;uniqueIndex:idx_reference_key,priority:4"`
	SourceRefID          string            `gorm:"type:varchar(128);not null;uniqueIndex:idx_reference_key,priority:5"`
	DestinationRefID     string            `gorm:"type:varchar(128);not null"`
	Name                 string            `gorm:"type:varchar(255);index"`
	Slug                 string            `gorm:"type:varchar(255);index"`
	CreatedAt            time.Time         `gorm:"not null"`
	UpdatedAt            time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReferenceMappingModel) TableName() string {
	return "reference_mappings"
}

// ToDomain converts the persistence model to a domain ReferenceMapping
func (m *ReferenceMappingModel) ToDomain() *migration.ReferenceMapping {
	return &migration.ReferenceMapping{
		ID:                   m.ID,
		OwnerID:              m.OwnerID,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID,
		RefType:              m.RefType,
		SourceRefID:          m.SourceRefID,
		DestinationRefID:     m.DestinationRefID,
		Name:                 m.Name,
		Slug:                 m.Slug,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain ReferenceMapping
func (m *ReferenceMappingModel) FromDomain(r *migration.ReferenceMapping) {
	m.ID = r.ID
	m.OwnerID = r.OwnerID
	m.SourceAccountID = r.SourceAccountID
	m.DestinationAccountID = r.DestinationAccountID
	m.RefType = r.RefType
	m.SourceRefID = r.SourceRefID
	m.DestinationRefID = r.DestinationRefID
	m.Name = r.Name
	m.Slug = r.Slug
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}

// AuditLogModel stores one best-effort audit event emitted during a run
type AuditLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	RunID      string    `gorm:"type:varchar(64);index"`
	Action     string    `gorm:"type:varchar(64);not null"`
	EntityType string    `gorm:"type:varchar(32)"`
	EntityID   string    `gorm:"type:varchar(128)"`
	Detail     string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

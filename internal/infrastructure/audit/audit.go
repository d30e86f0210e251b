// Package audit records migration actions both to the structured log and to
// a durable audit_logs table. Database writes are best effort: an audit
// failure never fails the operation being audited.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/persistence/models"
)

// Event is one auditable migration action
type Event struct {
	OwnerID    uuid.UUID
	RunID      string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
}

// Logger writes audit events
type Logger struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLogger creates an audit logger. db may be nil, in which case events go
// to the structured log only.
func NewLogger(db *gorm.DB, log *zap.Logger) *Logger {
	return &Logger{db: db, log: log.Named("audit")}
}

// Record writes one audit event
func (l *Logger) Record(ctx context.Context, event Event) {
	l.log.Info("migration action",
		zap.String("run_id", event.RunID),
		zap.String("action", event.Action),
		zap.String("entity_type", event.EntityType),
		zap.String("entity_id", event.EntityID),
		zap.String("detail", event.Detail),
	)

	if l.db == nil {
		return
	}

	model := models.AuditLogModel{
		ID:         uuid.New(),
		OwnerID:    event.OwnerID,
		RunID:      event.RunID,
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Detail:     event.Detail,
		CreatedAt:  time.Now(),
	}
	if err := l.db.WithContext(ctx).Create(&model).Error; err != nil {
		l.log.Warn("failed to persist audit event", zap.Error(err))
	}
}

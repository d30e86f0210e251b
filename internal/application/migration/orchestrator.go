package migrationapp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/audit"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

// SourceItem is one entity fetched from the source account, reduced to what
// the run loop needs; the adapter keeps the full payload for creation.
type SourceItem struct {
	ID        string
	Keys      migration.NaturalKeys
	CreatedAt time.Time
	// Protected marks system-managed entities that must never be migrated,
	// such as the automatic all-products collection.
	Protected       bool
	ProtectedReason string
	Payload         any
}

// EntityAdapter adapts one entity type to the generic run loop. Adapters
// fetch from the source account and create on the destination; everything
// between (staging, claiming, finalizing, tallying) is shared.
type EntityAdapter interface {
	EntityType() migration.EntityType
	FetchAll(ctx context.Context) ([]SourceItem, error)
	Create(ctx context.Context, item SourceItem) (string, error)
}

// RunRequest describes one migration run
type RunRequest struct {
	RunID                string
	OwnerID              uuid.UUID
	SourceAccountID      string
	DestinationAccountID string
	Options              migration.RunOptions
}

// Runner drives migration runs. One generic loop serves every entity type:
// fetch, sort oldest-first, stage, claim, create, finalize. Entity failures
// are isolated to their record; a run only aborts on whole-run
// preconditions.
type Runner struct {
	records migration.RecordRepository
	audit   *audit.Logger
	logger  *zap.Logger
}

// NewRunner creates a migration runner
func NewRunner(records migration.RecordRepository, auditLog *audit.Logger, logger *zap.Logger) *Runner {
	return &Runner{
		records: records,
		audit:   auditLog,
		logger:  logger.Named("runner"),
	}
}

// Run migrates every adapter's entities in the given order and returns one
// summary per entity type. A fetch failure skips that entity type and is
// reported in the joined error; item-level failures only mark their record.
func (r *Runner) Run(ctx context.Context, req RunRequest, adapters []EntityAdapter) ([]migration.Summary, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	log := r.logger.With(
		zap.String("run_id", req.RunID),
		zap.String("source_account", req.SourceAccountID),
		zap.String("destination_account", req.DestinationAccountID),
		zap.Bool("dry_run", req.Options.DryRun),
	)
	log.Info("migration run started")

	var runErr *multierror.Error
	summaries := make([]migration.Summary, 0, len(adapters))

	for _, adapter := range adapters {
		summary, err := r.runEntity(ctx, req, adapter, log)
		if err != nil {
			log.Error("entity migration aborted",
				zap.String("entity_type", string(adapter.EntityType())),
				zap.Error(err),
			)
			runErr = multierror.Append(runErr, fmt.Errorf("%s: %w", adapter.EntityType(), err))
		}
		summaries = append(summaries, summary)

		if ctx.Err() != nil {
			runErr = multierror.Append(runErr, ctx.Err())
			break
		}
	}

	log.Info("migration run finished", zap.Int("entity_types", len(summaries)))
	return summaries, runErr.ErrorOrNil()
}

func (r *Runner) runEntity(ctx context.Context, req RunRequest, adapter EntityAdapter, log *zap.Logger) (migration.Summary, error) {
	summary := migration.Summary{EntityType: adapter.EntityType()}

	items, err := adapter.FetchAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetching source entities: %w", err)
	}

	// Oldest first, so destination creation order mirrors source history
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	for _, item := range items {
		status, err := r.processItem(ctx, req, adapter, item)
		if err != nil {
			// Infrastructure failure: the record stays pending for the next run
			log.Error("record processing failed",
				zap.String("entity_type", string(adapter.EntityType())),
				zap.String("source_entity_id", item.ID),
				zap.Error(err),
			)
			continue
		}
		summary.Record(status)
	}

	log.Info("entity migration finished",
		zap.String("entity_type", string(adapter.EntityType())),
		zap.Int("imported", summary.Imported),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (r *Runner) processItem(ctx context.Context, req RunRequest, adapter EntityAdapter, item SourceItem) (migration.Status, error) {
	entityType := adapter.EntityType()

	// Re-runs are idempotent: an entity already migrated to this
	// destination is never created twice
	if _, err := r.records.FindSucceeded(ctx, req.OwnerID, req.SourceAccountID, req.DestinationAccountID, entityType, item.ID); err == nil {
		return migration.StatusSkipped, nil
	}

	record, err := migration.NewMigrationRecord(req.OwnerID, req.SourceAccountID, req.DestinationAccountID, entityType, item.ID, item.Keys)
	if err != nil {
		return "", err
	}
	staged, err := r.records.Stage(ctx, record)
	if err != nil {
		return "", err
	}
	if staged.IsTerminal() {
		// A previous run already settled this entity; terminal states hold
		return staged.Status, nil
	}

	claimed, err := r.records.Claim(ctx, migration.ClaimQuery{
		OwnerID:              req.OwnerID,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		EntityType:           entityType,
		SourceEntityID:       item.ID,
	})
	if errors.Is(err, migration.ErrNoPendingRecords) {
		// A concurrent run holds or already settled this entity's row
		return migration.StatusSkipped, nil
	}
	if err != nil {
		return "", err
	}
	claimed, err = r.records.ResolveOrMerge(ctx, claimed, item.ID)
	if err != nil {
		return "", err
	}
	if claimed.IsTerminal() {
		return claimed.Status, nil
	}

	if item.Protected {
		return r.finalizeSkipped(ctx, req, claimed, item.ProtectedReason)
	}
	if req.Options.DryRun {
		return r.finalizeSkipped(ctx, req, claimed, "dry run")
	}

	destID, createErr := adapter.Create(ctx, item)
	switch {
	case createErr == nil:
		if err := claimed.MarkSuccess(destID); err != nil {
			return "", err
		}
	case wix.IsConflict(createErr):
		// The destination already holds an equivalent entity
		return r.finalizeSkipped(ctx, req, claimed, "destination conflict: "+createErr.Error())
	default:
		if err := claimed.MarkFailed(failureMessage(createErr)); err != nil {
			return "", err
		}
	}

	if err := r.records.Finalize(ctx, claimed); err != nil {
		return "", err
	}
	r.recordAudit(ctx, req, claimed)
	return claimed.Status, nil
}

func (r *Runner) finalizeSkipped(ctx context.Context, req RunRequest, record *migration.MigrationRecord, reason string) (migration.Status, error) {
	if err := record.MarkSkipped(reason); err != nil {
		return "", err
	}
	if err := r.records.Finalize(ctx, record); err != nil {
		return "", err
	}
	r.recordAudit(ctx, req, record)
	return migration.StatusSkipped, nil
}

func (r *Runner) recordAudit(ctx context.Context, req RunRequest, record *migration.MigrationRecord) {
	if r.audit == nil {
		return
	}
	detail := record.DestinationEntityID
	if record.ErrorMessage != "" {
		detail = record.ErrorMessage
	}
	r.audit.Record(ctx, audit.Event{
		OwnerID:    req.OwnerID,
		RunID:      req.RunID,
		Action:     "migrate." + string(record.Status),
		EntityType: string(record.EntityType),
		EntityID:   record.SourceEntityID,
		Detail:     detail,
	})
}

// failureMessage prefers the stable reason code of a resolution failure over
// the raw error text, so records stay queryable by cause.
func failureMessage(err error) string {
	if re, ok := migration.AsResolutionError(err); ok {
		return re.Reason
	}
	if ve, ok := migration.AsValidationError(err); ok {
		return ve.Error()
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

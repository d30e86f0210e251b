package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	migrationapp "github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/application/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
)

// MigrationHandler exposes migration runs, record listings and
// snapshot export/import over HTTP.
type MigrationHandler struct {
	BaseHandler
	service *migrationapp.Service
}

// NewMigrationHandler creates a new MigrationHandler
func NewMigrationHandler(service *migrationapp.Service) *MigrationHandler {
	return &MigrationHandler{service: service}
}

// RegisterRoutes registers migration routes
func (h *MigrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/migrations")
	group.POST("/run", h.Run)
	group.GET("/records", h.ListRecords)
	group.POST("/export", h.Export)
	group.POST("/import", h.Import)
}

// RunMigrationRequest is the request body for starting a run
type RunMigrationRequest struct {
	SourceAccountID      string   `json:"source_account_id" binding:"required"`
	DestinationAccountID string   `json:"destination_account_id" binding:"required"`
	EntityTypes          []string `json:"entity_types"`
	Mode                 string   `json:"mode"`
	DryRun               bool     `json:"dry_run"`
}

// Run starts a migration run and returns the per-entity summaries
func (h *MigrationHandler) Run(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req RunMigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entityTypes := make([]migration.EntityType, 0, len(req.EntityTypes))
	for _, t := range req.EntityTypes {
		entityTypes = append(entityTypes, migration.EntityType(t))
	}

	result, err := h.service.Run(c.Request.Context(), migrationapp.RunInput{
		OwnerID:              ownerID,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		EntityTypes:          entityTypes,
		Mode:                 migration.ResolutionMode(req.Mode),
		DryRun:               req.DryRun,
	})
	if err != nil {
		// Run-level errors with partial summaries still return the result
		if result != nil && len(result.Summaries) > 0 {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"data":    result,
				"error":   gin.H{"code": "PARTIAL_FAILURE", "message": err.Error()},
			})
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MigrationRecordResponse is the API shape of one migration record
type MigrationRecordResponse struct {
	ID                   string `json:"id"`
	EntityType           string `json:"entity_type"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id,omitempty"`
	SourceEntityID       string `json:"source_entity_id"`
	DestinationEntityID  string `json:"destination_entity_id,omitempty"`
	Status               string `json:"status"`
	ErrorMessage         string `json:"error_message,omitempty"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

// ListRecords lists migration records for the owner, filtered and paged
func (h *MigrationHandler) ListRecords(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := migration.RecordFilter{
		EntityType:           migration.EntityType(c.Query("entity_type")),
		SourceAccountID:      c.Query("source_account_id"),
		DestinationAccountID: c.Query("destination_account_id"),
		Status:               migration.Status(c.Query("status")),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	records, total, err := h.service.ListRecords(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MigrationRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, MigrationRecordResponse{
			ID:                   r.ID.String(),
			EntityType:           string(r.EntityType),
			SourceAccountID:      r.SourceAccountID,
			DestinationAccountID: r.DestinationAccountID,
			SourceEntityID:       r.SourceEntityID,
			DestinationEntityID:  r.DestinationEntityID,
			Status:               string(r.Status),
			ErrorMessage:         r.ErrorMessage,
			CreatedAt:            r.CreatedAt.Format(time.RFC3339),
			UpdatedAt:            r.UpdatedAt.Format(time.RFC3339),
		})
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ExportRequest is the request body for exporting a snapshot
type ExportRequest struct {
	SourceAccountID string `json:"source_account_id" binding:"required"`
}

// Export captures a source account's store data as a snapshot
func (h *MigrationHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	snap, err := h.service.Export(c.Request.Context(), req.SourceAccountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snap)
}

// ImportResponse reports how many records a snapshot import staged
type ImportResponse struct {
	Staged int `json:"staged"`
}

// Import stages a previously exported snapshot as pending records
func (h *MigrationHandler) Import(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	staged, err := h.service.Import(c.Request.Context(), ownerID, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ImportResponse{Staged: staged})
}

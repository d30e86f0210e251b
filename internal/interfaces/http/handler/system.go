package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/persistence"
)

// SystemHandler serves health and liveness endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{db: db, startTime: time.Now()}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/system")
	group.GET("/health", h.Health)
	group.GET("/info", h.Info)
}

// HealthResponse reports service and database health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health checks the service and its database connection
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "ok"}
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
		}
	}
	h.Success(c, resp)
}

// InfoResponse reports basic service information
type InfoResponse struct {
	Name      string `json:"name"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Info returns service name, runtime version and uptime
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, InfoResponse{
		Name:      "wix-store-migrator",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/interfaces/http/dto"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDHeader); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// getOwnerID reads the owning account from the X-Owner-ID header. There is
// no user system here; runs are scoped by the caller-supplied owner.
func getOwnerID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("X-Owner-ID")
	if raw == "" {
		return uuid.Nil, errors.New("X-Owner-ID header is required")
	}
	return uuid.Parse(raw)
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps domain errors onto HTTP status codes
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var verr *migration.ValidationError
	if errors.As(err, &verr) {
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeValidation, verr.Error())
		return
	}

	switch {
	case errors.Is(err, shared.ErrNotFound):
		h.NotFound(c, err.Error())
	case errors.Is(err, shared.ErrMissingToken):
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeMissingToken, err.Error())
	default:
		var derr *shared.DomainError
		if errors.As(err, &derr) {
			h.Error(c, http.StatusConflict, derr.Code, derr.Message)
			return
		}
		h.InternalError(c, err.Error())
	}
}

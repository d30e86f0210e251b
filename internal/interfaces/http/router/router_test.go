package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func TestRouterSetup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	r := NewRouter(engine)
	r.Register(pingRegistrar{})
	r.Setup()

	req, err := http.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterAPIVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))
	r.Register(pingRegistrar{})
	r.Setup()

	req, _ := http.NewRequest(http.MethodGet, "/api/v2/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package base

import (
	"net/http"
	"time"

	"github.com/bitswalk/bazaar/src/common/version"
	"github.com/gin-gonic/gin"
)

var VersionInfo = version.New()

// SetVersionInfo sets the version info for the base package
func SetVersionInfo(v *version.Info) {
	if v != nil {
		VersionInfo = v
	}
}

// NewHandler creates a base handler. The health endpoint pings every
// non-nil dependency.
func NewHandler(pingers ...Pinger) *Handler {
	h := &Handler{}
	for _, p := range pingers {
		if p != nil {
			h.pingers = append(h.pingers, p)
		}
	}
	return h
}

// HandleRoot returns API discovery information
// @Summary      API root
// @Description  Returns a welcome message and the top-level endpoints
// @Tags         Base
// @Produce      json
// @Success      200  {object}  APIInfo
// @Router       / [get]
func (h *Handler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, APIInfo{
		Message: "Welcome to the bazaar marketplace API",
		Name:    "bazaard",
		Version: VersionInfo.Version,
		Endpoints: APIInfoEndpoints{
			Health:     "/health",
			Version:    "/version",
			Users:      "/users",
			Token:      "/users/token",
			Categories: "/categories",
			Products:   "/products",
			Reviews:    "/reviews",
			Docs:       "/swagger/index.html",
		},
	})
}

// HandleHealth returns the current health status of the server
// @Summary      Health check
// @Tags         Base
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (h *Handler) HandleHealth(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for _, p := range h.pingers {
		if err := p.Ping(); err != nil {
			response.Status = "unhealthy"
			response.Error = err.Error()
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
	}

	c.JSON(http.StatusOK, response)
}

// HandleVersion returns version and build information for the server
// @Summary      Version
// @Tags         Base
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (h *Handler) HandleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse(VersionInfo.Runtime()))
}

package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ecommerce-backend/internal/interface/http"
)

// DebugModule exposes the health probe and, when enabled, expvar metrics.
type DebugModule struct {
	Health         *handlers.HealthHandler
	MetricsEnabled bool
}

func NewDebugModule(health *handlers.HealthHandler, metricsEnabled bool) *DebugModule {
	return &DebugModule{Health: health, MetricsEnabled: metricsEnabled}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Health.Check)
	if m.MetricsEnabled {
		rg.GET("/debug/vars", perIP(120), gin.WrapH(expvar.Handler()))
	}
}

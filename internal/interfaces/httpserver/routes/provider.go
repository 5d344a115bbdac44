package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Azamsaif47/Alfred-app/internal/config"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/handlers"
	v1 "github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/routes/v1"
)

// Provider coordinates the public probes and the versioned API.
type Provider struct {
	public *publicRoutes
	V1     *v1.Routes
}

// NewProvider constructs the route provider. checks back the /readyz probe.
func NewProvider(cfg *config.Config, handlerProvider *handlers.Provider, checks map[string]ReadinessCheck) *Provider {
	return &Provider{
		public: &publicRoutes{serviceName: cfg.ServiceName, checks: checks},
		V1:     v1.NewRoutes(handlerProvider),
	}
}

// Register attaches all available routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.public.register(engine)
	p.V1.Register(engine)
}

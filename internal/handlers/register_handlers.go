package handlers

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/SscSPs/payledger/cmd/docs"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/middleware"
	"github.com/SscSPs/payledger/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	r.GET("/health", getHealth(services.Health))

	if err := setupWebhookRoutes(r, cfg, services); err != nil {
		return err
	}

	// Machine-triggered reconciliation, authenticated by the shared secret
	internal := r.Group("/internal/reconciliation", middleware.SharedSecretAuth(cfg.ReconcileSecret))
	RegisterReconcileTriggerRoutes(internal, services.Reconciliation, cfg.ReconcileDefaultLimit, cfg.ReconcileMaxLimit)

	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupWebhookRoutes configures the rate-limited provider webhook group.
func setupWebhookRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) error {
	limiterInstance, err := middleware.NewRateLimiter(cfg.WebhookRateLimit)
	if err != nil {
		return fmt.Errorf("invalid WEBHOOK_RATE_LIMIT %q: %w", cfg.WebhookRateLimit, err)
	}
	webhooks := r.Group("/webhooks", middleware.RateLimit(limiterInstance))
	RegisterWebhookRoutes(webhooks, services.WebhookIngest)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		v1.Use(cors.New(corsCfg))
	}
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	RegisterJournalRoutes(v1, services.Journal)
	RegisterReconciliationRoutes(v1, services.Reconciliation)
	RegisterWebhookEventRoutes(v1, services.WebhookLedger)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/dbpool"
	"github.com/corralhq/corral/internal/middleware"
	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log          *logrus.Logger
	Pool         *dbpool.Pool
	Hub          *ws.Hub
	Projects     RecordRepository[models.Project]
	Contacts     RecordRepository[models.Contact]
	Categories   RecordRepository[models.Category]
	Tasks        RecordRepository[models.Task]
	Domains      DomainRepository
	Audit        AuditRepository
	DomainLookup middleware.DomainLookup
	AdminKey     string
	CORSOrigins  []string
	Version      string
}

// Router-level limits.
const (
	maxBodySize = 10 << 20 // 10 MB
	rateLimit   = 100      // requests per second per IP
	rateBurst   = 200      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", middleware.DomainOverrideHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, log, deps.Version)
	projects := NewRecordHandler[models.Project, models.ProjectRequest](deps.Projects, "project", models.ErrProjectNotFound, log)
	contacts := NewRecordHandler[models.Contact, models.ContactRequest](deps.Contacts, "contact", models.ErrContactNotFound, log)
	categories := NewRecordHandler[models.Category, models.CategoryRequest](deps.Categories, "category", models.ErrCategoryNotFound, log)
	tasks := NewRecordHandler[models.Task, models.TaskRequest](deps.Tasks, "task", models.ErrTaskNotFound, log)
	domains := NewDomainHandler(deps.Domains, log)
	audit := NewAuditHandler(deps.Audit, log)
	stats := NewStatsHandler(deps.Pool, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require authentication.
	bfGuard := middleware.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(bfGuard))
	api.Use(middleware.AuthMiddleware(middleware.NewCachedDomainLookup(ctx, deps.DomainLookup), deps.AdminKey, log, bfGuard))

	// Records.
	projects.Register(api.Group("/projects"))
	contacts.Register(api.Group("/contacts"))
	categories.Register(api.Group("/categories"))
	tasks.Register(api.Group("/tasks"))

	// Audit.
	api.GET("/audit", audit.Query)

	// Stats.
	api.GET("/stats", stats.GetStats)

	// WebSocket endpoint.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins, deps.DomainLookup))

	// Admin: domain provisioning and audit retention.
	adm := api.Group("/admin", middleware.AdminOnly())
	domains.Register(adm.Group("/domains"))
	adm.DELETE("/audit", audit.Purge)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}

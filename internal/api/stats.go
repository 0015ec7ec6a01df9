package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/dbpool"
	"github.com/corralhq/corral/internal/domain"
	"github.com/corralhq/corral/internal/metrics"
)

// StatsHandler serves the per-domain record statistics endpoint.
type StatsHandler struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

// NewStatsHandler creates a StatsHandler with the given dependencies.
func NewStatsHandler(pool *dbpool.Pool, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{pool: pool, log: log}
}

// statsResponse is the JSON payload returned by the stats endpoint.
type statsResponse struct {
	Projects     int `json:"projects"`
	Contacts     int `json:"contacts"`
	Categories   int `json:"categories"`
	Tasks        int `json:"tasks"`
	AuditEntries int `json:"audit_entries"`
}

// GetStats handles GET /api/v1/stats — returns record counts for the active
// domain. Tasks carry no domain column and are counted through their project.
func (h *StatsHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	domainID, err := domain.Active(ctx)
	if err != nil {
		respondOpError(c, h.log, "stats", nil, err)

		return
	}

	var resp statsResponse

	// Single consolidated query for all domain-scoped counts.
	if err := h.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM projects WHERE domain_id = $1),
			(SELECT COUNT(*) FROM contacts WHERE domain_id = $1),
			(SELECT COUNT(*) FROM categories WHERE domain_id = $1),
			(SELECT COUNT(*) FROM tasks t JOIN projects p ON p.id = t.project_id WHERE p.domain_id = $1),
			(SELECT COUNT(*) FROM corral_audit_log WHERE domain_id = $1)`,
		domainID,
	).Scan(
		&resp.Projects, &resp.Contacts, &resp.Categories,
		&resp.Tasks, &resp.AuditEntries,
	); err != nil {
		h.log.WithError(err).Error("stats: consolidated query")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	// Refresh the record count gauges with the numbers just read.
	metrics.RecordCount.WithLabelValues("projects").Set(float64(resp.Projects))
	metrics.RecordCount.WithLabelValues("contacts").Set(float64(resp.Contacts))
	metrics.RecordCount.WithLabelValues("categories").Set(float64(resp.Categories))
	metrics.RecordCount.WithLabelValues("tasks").Set(float64(resp.Tasks))

	c.JSON(http.StatusOK, resp)
}

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/service"
)

// RecordRequest constrains a pointer to a request payload that validates
// itself and builds the record it describes.
type RecordRequest[T, R any] interface {
	*R
	Validate() error
	Record() *T
}

// RecordHandler serves the CRUD, query, neighbor and export endpoints for one
// record type. Instantiate with the record and request types; the pointer
// parameter is inferred, e.g. NewRecordHandler[models.Project, models.ProjectRequest].
type RecordHandler[T, R any, PR RecordRequest[T, R]] struct {
	repo     RecordRepository[T]
	name     string
	notFound error
	log      *logrus.Logger
}

// NewRecordHandler creates a RecordHandler. name appears in log lines and
// error messages; notFound is the sentinel the repository returns for lookup
// misses on this record type.
func NewRecordHandler[T, R any, PR RecordRequest[T, R]](repo RecordRepository[T], name string, notFound error, log *logrus.Logger) *RecordHandler[T, R, PR] {
	return &RecordHandler[T, R, PR]{repo: repo, name: name, notFound: notFound, log: log}
}

// Register mounts the record routes on g. Every POST route is a static
// segment and every route with a path parameter is GET, PUT or DELETE, so
// the per-method routing trees never mix the two.
func (h *RecordHandler[T, R, PR]) Register(g *gin.RouterGroup) {
	g.POST("", h.Create)
	g.POST("/bulk", h.BulkCreate)
	g.POST("/query", h.Query)
	g.POST("/neighbors", h.Neighbors)
	g.POST("/export", h.Export)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Replace)
	g.DELETE("/:id", h.Delete)
}

// Create handles POST /api/v1/{resource}.
func (h *RecordHandler[T, R, PR]) Create(c *gin.Context) {
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := PR(&req).Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	rec, err := h.repo.Create(c.Request.Context(), PR(&req).Record())
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.name + ".create"}).Info("audit")

	c.JSON(http.StatusCreated, rec)
}

// BulkCreate handles POST /api/v1/{resource}/bulk.
func (h *RecordHandler[T, R, PR]) BulkCreate(c *gin.Context) {
	var reqs []R
	if err := c.ShouldBindJSON(&reqs); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if len(reqs) == 0 {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "at least one record is required")

		return
	}

	if len(reqs) > 1000 {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "bulk request exceeds maximum of 1000 items")

		return
	}

	recs := make([]*T, len(reqs))
	for i := range reqs {
		if err := PR(&reqs[i]).Validate(); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeValidationError, "item "+strconv.Itoa(i)+": "+err.Error())

			return
		}
		recs[i] = PR(&reqs[i]).Record()
	}

	created, err := h.repo.BulkCreate(c.Request.Context(), recs)
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.name + ".bulk_create", "count": len(created)}).Info("audit")

	c.JSON(http.StatusCreated, gin.H{"items": created, "count": len(created)})
}

// Get handles GET /api/v1/{resource}/:id.
func (h *RecordHandler[T, R, PR]) Get(c *gin.Context) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	rec, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.name + ".get", "id": models.CanonicalID(id)}).Info("audit")

	c.JSON(http.StatusOK, rec)
}

// Replace handles PUT /api/v1/{resource}/:id. The full payload replaces the
// stored record; when nothing observable differs the write is skipped and
// the X-Record-Changed header reports false.
func (h *RecordHandler[T, R, PR]) Replace(c *gin.Context) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := PR(&req).Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	rec, changed, err := h.repo.Replace(c.Request.Context(), id, PR(&req).Record())
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.name + ".replace", "id": models.CanonicalID(id), "changed": changed}).Info("audit")

	c.Header("X-Record-Changed", strconv.FormatBool(changed))
	c.JSON(http.StatusOK, rec)
}

// Delete handles DELETE /api/v1/{resource}/:id.
func (h *RecordHandler[T, R, PR]) Delete(c *gin.Context) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.name + ".delete", "id": models.CanonicalID(id)}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Query handles POST /api/v1/{resource}/query. The matching records are the
// response body; the count before pagination and the applied offset travel
// in the X-Total-Count and X-Offset headers.
func (h *RecordHandler[T, R, PR]) Query(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	res, err := h.repo.Query(c.Request.Context(), &req)
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.name + ".query", "filters": len(req.Filters), "count": len(res.Items), "total": res.Total}).Info("audit")

	respondPage(c, res)
}

// List handles GET /api/v1/{resource}: a bare enumeration of the domain's
// records in primary-key order, honoring page and length query parameters.
func (h *RecordHandler[T, R, PR]) List(c *gin.Context) {
	var req models.QueryRequest
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "page must be a non-negative integer")

			return
		}
		req.Page = n
	}
	if v := c.Query("length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "length must be a positive integer")

			return
		}
		req.Length = &n
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	res, err := h.repo.Query(c.Request.Context(), &req)
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	respondPage(c, res)
}

// respondPage writes a record list with its pagination headers.
func respondPage[T any](c *gin.Context, res *service.QueryResult[T]) {
	items := res.Items
	if items == nil {
		items = []*T{}
	}

	c.Header("X-Total-Count", strconv.Itoa(res.Total))
	c.Header("X-Offset", strconv.Itoa(res.Offset))
	c.JSON(http.StatusOK, items)
}

// Neighbors handles POST /api/v1/{resource}/neighbors. The anchor travels in
// the body so the route stays static; the response is the anchor record with
// the adjacent records' cursors in the X-Next-Cursor and X-Previous-Cursor
// headers. An absent neighbor leaves its header unset.
func (h *RecordHandler[T, R, PR]) Neighbors(c *gin.Context) {
	var req models.NeighborRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	id, err := models.ParseID(req.ID)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	rec, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	res, err := h.repo.Neighbors(c.Request.Context(), &req)
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.name + ".neighbors", "id": models.CanonicalID(id)}).Info("audit")

	if res.Next != "" {
		c.Header("X-Next-Cursor", res.Next)
	}
	if res.Previous != "" {
		c.Header("X-Previous-Cursor", res.Previous)
	}
	c.JSON(http.StatusOK, rec)
}

// Export handles POST /api/v1/{resource}/export. The body carries the same
// query request as /query; pagination is ignored and the full filtered set
// is written in the format named by the format query parameter.
func (h *RecordHandler[T, R, PR]) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	if format != service.FormatCSV && format != service.FormatXLSX {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, fmt.Sprintf("unsupported export format %q", format))

		return
	}

	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	res, err := h.repo.Export(c.Request.Context(), &req, format)
	if err != nil {
		respondOpError(c, h.log, h.name, h.notFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": h.name + ".export", "format": string(format), "bytes": len(res.Data)}).Info("audit")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", res.Filename))
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

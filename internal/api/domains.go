package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/models"
)

// DomainHandler serves domain provisioning endpoints. All of its routes sit
// behind the admin key, never behind a domain API key.
type DomainHandler struct {
	repo DomainRepository
	log  *logrus.Logger
}

// NewDomainHandler creates a DomainHandler.
func NewDomainHandler(repo DomainRepository, log *logrus.Logger) *DomainHandler {
	return &DomainHandler{repo: repo, log: log}
}

// Register mounts the domain management routes on g.
func (h *DomainHandler) Register(g *gin.RouterGroup) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.POST("/:id/rotate", h.RotateKey)
	g.DELETE("/:id", h.Delete)
}

// Create handles POST /api/v1/admin/domains. The response carries the API
// key exactly once; only its hash is stored.
func (h *DomainHandler) Create(c *gin.Context) {
	var req models.CreateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	dom, err := h.repo.CreateDomain(c.Request.Context(), req)
	if err != nil {
		respondOpError(c, h.log, "domain", models.ErrDomainNotFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": "admin.domain.create", "domain_id": dom.ID, "name": dom.Name}).Info("audit")

	c.JSON(http.StatusCreated, dom)
}

// List handles GET /api/v1/admin/domains.
func (h *DomainHandler) List(c *gin.Context) {
	domains, err := h.repo.ListDomains(c.Request.Context())
	if err != nil {
		respondOpError(c, h.log, "domain", models.ErrDomainNotFound, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"domains": domains, "count": len(domains)})
}

// Get handles GET /api/v1/admin/domains/:id.
func (h *DomainHandler) Get(c *gin.Context) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	dom, err := h.repo.GetDomain(c.Request.Context(), id)
	if err != nil {
		respondOpError(c, h.log, "domain", models.ErrDomainNotFound, err)

		return
	}

	c.JSON(http.StatusOK, dom)
}

// Update handles PUT /api/v1/admin/domains/:id.
func (h *DomainHandler) Update(c *gin.Context) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.UpdateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	dom, err := h.repo.UpdateDomain(c.Request.Context(), id, req)
	if err != nil {
		respondOpError(c, h.log, "domain", models.ErrDomainNotFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": "admin.domain.update", "domain_id": dom.ID}).Info("audit")

	c.JSON(http.StatusOK, dom)
}

// RotateKey handles POST /api/v1/admin/domains/:id/rotate. The old key stops
// working immediately; the new key is returned exactly once.
func (h *DomainHandler) RotateKey(c *gin.Context) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	dom, err := h.repo.RotateDomainKey(c.Request.Context(), id)
	if err != nil {
		respondOpError(c, h.log, "domain", models.ErrDomainNotFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": "admin.domain.rotate_key", "domain_id": dom.ID}).Info("audit")

	c.JSON(http.StatusOK, dom)
}

// Delete handles DELETE /api/v1/admin/domains/:id. Records in the domain are
// removed with it.
func (h *DomainHandler) Delete(c *gin.Context) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	if err := h.repo.DeleteDomain(c.Request.Context(), id); err != nil {
		respondOpError(c, h.log, "domain", models.ErrDomainNotFound, err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": "admin.domain.delete", "domain_id": models.CanonicalID(id)}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/filter"
	"github.com/corralhq/corral/internal/httputil"
	"github.com/corralhq/corral/internal/metrics"
	"github.com/corralhq/corral/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeInvalidFilter   = "invalid_filter"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "domain_violation"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondOpError maps a service error onto the wire. The ordering matters: a
// domain violation must never degrade into a 404, and filter compilation
// problems are client errors that carry the offending path and action.
func respondOpError(c *gin.Context, log *logrus.Logger, entity string, notFound error, err error) {
	var fe *filter.Error
	switch {
	case errors.As(err, &fe):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidFilter, fe.Error())
	case errors.Is(err, models.ErrDomainViolation):
		metrics.DomainViolationsTotal.Inc()
		log.WithField("entity", entity).Warn("cross-domain access refused")
		respondError(c, http.StatusForbidden, ErrCodeForbidden, "record belongs to another domain")
	case errors.Is(err, models.ErrNoActiveDomain):
		respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "no active domain for this session")
	case errors.Is(err, models.ErrInvalidID):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, models.ErrDuplicateKey):
		respondError(c, http.StatusConflict, ErrCodeConflict, entity+" with this id or key already exists")
	case notFound != nil && errors.Is(err, notFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, entity+" not found")
	case errors.Is(err, models.ErrBadReference), errors.Is(err, models.ErrRecordNotFound):
		// A miss on a referenced record is a payload problem, not a miss
		// on the record being operated on.
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	default:
		log.WithError(err).Error(entity + " operation failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

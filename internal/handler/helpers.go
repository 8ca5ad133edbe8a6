package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/brehash/kscinventory-sub002/internal/apierror"
	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/infra"
	"github.com/brehash/kscinventory-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = dto.NewValidator()

// bindAndValidate binds the JSON body and runs go-playground/validator tags.
// Returns false after writing the error response; the caller returns at once.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidInput, "Invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidInput, "Invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidInput, err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// attached to the context for ErrorHandler to log and answered with a
// generic 500.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, apierror.CodeInternal
	var wooErr *infra.WooAPIError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, apierror.CodeNotFound
	case errors.Is(err, service.ErrInvalidInput):
		status, code = http.StatusBadRequest, apierror.CodeInvalidInput
	case errors.Is(err, service.ErrInsufficientStock):
		status, code = http.StatusConflict, apierror.CodeInsufficientStock
	case errors.Is(err, service.ErrInvalidTransition):
		status, code = http.StatusConflict, apierror.CodeInvalidTransition
	case errors.Is(err, service.ErrWooNotLinked):
		status, code = http.StatusConflict, apierror.CodeWooNotLinked
	case errors.Is(err, service.ErrSyncInProgress):
		status, code = http.StatusConflict, apierror.CodeSyncInProgress
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, apierror.CodeConflict
	case errors.Is(err, service.ErrInvalidSignature):
		status, code = http.StatusUnauthorized, apierror.CodeUnauthorized
	case errors.Is(err, service.ErrWooNotConfigured),
		errors.Is(err, infra.ErrCircuitOpen):
		status, code = http.StatusServiceUnavailable, apierror.CodeUnavailable
	case errors.As(err, &wooErr), errors.Is(err, infra.ErrWooNotFound):
		status, code = http.StatusBadGateway, apierror.CodeUpstream
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, apierror.WithCode(code, "Internal server error"))
		return
	}
	c.AbortWithStatusJSON(status, apierror.WithCode(code, err.Error()))
}

// intQuery reads an integer query parameter, falling back to def.
func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/Zeek-James/pem-zee/internal/apierror"
	"github.com/Zeek-James/pem-zee/internal/middleware"
	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return 0, false
	}
	return uint(id), true
}

// respondError maps service errors to HTTP statuses. Anything that is not a
// LedgerError is handed to ErrorHandler, which answers with a generic 500.
func respondError(c *gin.Context, err error) {
	var le *service.LedgerError
	if !errors.As(err, &le) {
		_ = c.Error(err)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(le.Kind, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(le.Kind, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(le.Kind, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(le.Kind, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Err(err).
			Msg("ledger integrity failure")
	}

	if le.Available != nil {
		c.JSON(status, apierror.WithAvailable(le.Message, le.Available.StringFixed(2)))
		return
	}
	c.JSON(status, apierror.New(le.Message))
}

package handler

import (
	"net/http"
	"reflect"

	"blendstock/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "validation error", "fields": fields})
		return false
	}
	return true
}

// parseID parses a :id path param as a UUID, writing the 400 response itself
// on failure.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps a service error to its HTTP status by kind. Unknown
// errors bubble to the ErrorHandler middleware as 500s without leaking
// internals.
func respondError(c *gin.Context, err error) {
	switch apierror.KindOf(err) {
	case apierror.KindNotFound:
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case apierror.KindConflict:
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case apierror.KindInvalidState:
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case apierror.KindValidation:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"shopinventory/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is a struct; expose it as a float so min=0 and friends work on it.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report json names in "fields" instead of Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate binds the JSON body and runs the validator tags.
// On failure it writes the 400 response and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithDetails("Invalid JSON body", err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery binds query parameters (with their defaults) and validates them.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithDetails("Invalid query parameters", err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:]] = fe.Tag()
	}
	c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
	return false
}

// paramID parses a uuid path parameter. Unknown ids are reported as 404, the
// same way a well-formed id with no row is.
func paramID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(what+" not found"))
		return uuid.Nil, false
	}
	return id, true
}

// fail answers a service error. Internal errors are handed to the ErrorHandler middleware.
func fail(c *gin.Context, err error) {
	if apierror.KindOf(err) == apierror.KindInternal {
		_ = c.Error(err)
		return
	}
	c.JSON(apierror.StatusOf(err), apierror.New(apierror.MessageOf(err)))
}

// respond writes the success envelope: {"success": true, ...body}.
func respond(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}

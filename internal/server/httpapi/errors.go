package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/dmitrijs2005/writerlab/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// formReply is the body returned for rejected form submissions.
type formReply struct {
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	FormErrors  []string          `json:"formErrors,omitempty"`
}

func formError(c *gin.Context, status int, msg string) {
	c.JSON(status, formReply{FormErrors: []string{msg}})
}

// bindingError answers 400 with per-field messages when err comes from
// validation, and a generic form error otherwise.
func bindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		formError(c, http.StatusBadRequest, "malformed request")
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	c.JSON(http.StatusBadRequest, formReply{FieldErrors: fields})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// serviceError maps service errors onto HTTP statuses. Anything unknown is
// logged and reported as a 500 without details.
func serviceError(c *gin.Context, log logging.Logger, err error) {
	var fe *services.FieldError
	switch {
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, formReply{FieldErrors: map[string]string{fe.Field: fe.Message}})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, common.ErrorIncorrectFields):
		formError(c, http.StatusBadRequest, "invalid input")
	case errors.Is(err, common.ErrDuplicateEmail):
		formError(c, http.StatusBadRequest, "A user already exists with this email")
	case errors.Is(err, common.ErrLoginRateLimited):
		formError(c, http.StatusTooManyRequests, common.ErrLoginRateLimited.Error())
	default:
		log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var tagNameOnce sync.Once

// useFormFieldNames makes validation errors name fields as the client sent
// them (form or json tag) instead of by Go field name.
func useFormFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.Split(f.Tag.Get(tag), ",")[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

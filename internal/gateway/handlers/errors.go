package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/relaydocs/relaygw/internal/backend/docservice"
)

// Response messages.
const (
	MessageInvalidRequest     = "Invalid request"
	MessageInvalidRequestBody = "Invalid request body"
	MessageUpstreamFailure    = "Upstream service failure"
	MessageUnexpectedError    = "Unexpected error"
	MessageAccountLocked      = "Account temporarily locked. Try again later."
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is a request body that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

var jsonNamesOnce sync.Once

// useJSONFieldNames makes validation errors name fields by their JSON tag.
func useJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes and validates the body into obj. Failures are returned as
// *ValidationError.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: ruleMessage(fe),
			})
		}
		return &ValidationError{Fields: fields}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{Fields: []FieldError{{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: "must be a " + typeErr.Type.String(),
		}}}
	}

	message := "malformed JSON body"
	if errors.Is(err, io.EOF) {
		message = "request body is required"
	}
	return &ValidationError{Fields: []FieldError{{Rule: "json", Message: message}}}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// respondError maps err to a status and JSON body. validationMessage is the
// message used for *ValidationError.
func respondError(c *gin.Context, logger *zap.Logger, err error, validationMessage string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage, "errors": verr.Fields})
		return
	}

	if de, ok := docservice.AsDownstreamError(err); ok {
		if de.IsClientError() {
			c.JSON(de.StatusCode, gin.H{"message": de.Message})
			return
		}
		logger.Warn("document service failure",
			zap.Int("status", de.StatusCode),
			zap.String("message", de.Message),
		)
		c.JSON(http.StatusBadGateway, gin.H{"message": MessageUpstreamFailure})
		return
	}

	logger.Error("request failed", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": MessageUnexpectedError})
}

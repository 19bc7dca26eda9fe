package api

import (
	"errors"   // Error inspection
	"io"       // Empty body detection
	"net/http" // HTTP status codes
	"reflect"  // Struct tag lookup
	"strings"  // String manipulation
	"sync"     // One-time validator setup

	"habit_tracker/internal/service" // Nullable request fields

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Request binding
	"github.com/go-playground/validator/v10" // Validation errors
)

var setupValidator sync.Once

// configureValidator makes validation errors report json names (tagIds, not
// TagIDs) and validates service.Nullable fields by their value
func configureValidator() {
	setupValidator.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterCustomTypeFunc(func(field reflect.Value) any {
				if n, ok := field.Interface().(service.Nullable); ok && n.Value != nil {
					return *n.Value
				}
				return nil // Absent or null: omitempty skips it
			}, service.Nullable{})
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				for _, tag := range []string{"json", "uri"} {
					name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
					if name == "-" {
						return ""
					}
					if name != "" {
						return name
					}
				}
				return fld.Name
			})
		}
	})
}

// FieldError describes one rejected field
type FieldError struct {
	Field   string `json:"field"`   // Offending field (json name)
	Message string `json:"message"` // What was wrong with it
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "hexcolor":
		return "must be a hex color such as #6B7280"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// validationFailed writes the 400 body shared by every bind failure
func validationFailed(c *gin.Context, err error) {
	var details []FieldError
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		for _, fe := range ves {
			details = append(details, FieldError{Field: fe.Field(), Message: describe(fe)})
		}
	} else {
		details = append(details, FieldError{Field: "body", Message: err.Error()})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
}

// bindJSON binds and validates the request body, answering 400 on failure
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		validationFailed(c, err)
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty
func bindOptionalJSON(c *gin.Context, dest any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		if err := binding.Validator.ValidateStruct(dest); err != nil {
			validationFailed(c, err)
			return false
		}
		return true
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		validationFailed(c, err)
		return false
	}
	return true
}

// habitParams are the path parameters of habit routes
type habitParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// habitTagParams are the path parameters of DELETE /habits/:id/tags/:tagId
type habitTagParams struct {
	ID    string `uri:"id" binding:"required,uuid"`
	TagID string `uri:"tagId" binding:"required,uuid"`
}

// tagParams are the path parameters of tag routes
type tagParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// byTagParams are the path parameters of GET /habits/tag/:tagId
type byTagParams struct {
	TagID string `uri:"tagId" binding:"required,uuid"`
}

// bindURI binds and validates path parameters, answering 400 on failure
func bindURI(c *gin.Context, dest any) bool {
	if err := c.ShouldBindUri(dest); err != nil {
		validationFailed(c, err)
		return false
	}
	return true
}

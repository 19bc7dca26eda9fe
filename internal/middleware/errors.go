package middleware

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"habit_tracker/internal/service" // Service error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// StatusFor maps a service error kind to its HTTP status
func StatusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindInactiveHabit:
		return http.StatusBadRequest
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindAuthorization:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler turns the last error a handler recorded with c.Error into a
// JSON response. Internal failures are logged and answered generically;
// exposeDetails adds the underlying error text (never in production).
func ErrorHandler(exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		kind := service.KindOf(err)
		status := StatusFor(kind)
		body := gin.H{}
		var se *service.Error
		errors.As(err, &se)
		if status >= http.StatusInternalServerError {
			fields := logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
				"kind":   kind.String(),
				"error":  err.Error(),
			}
			if id, ok := c.Get(ContextUserIDKey); ok {
				fields["user_id"] = id
			}
			logrus.WithFields(fields).Error("Unhandled error")
			body["error"] = "Internal Server Error"
			if se != nil && se.Message != "" {
				body["error"] = se.Message
			}
			if exposeDetails {
				body["details"] = err.Error()
			}
		} else {
			body["error"] = err.Error()
			if se != nil {
				body["error"] = se.Message
			}
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// NotFoundHandler answers unknown routes, echoing the path and query
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found - " + c.Request.URL.RequestURI()})
	}
}

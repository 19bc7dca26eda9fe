package api

import (
	"net/http" // HTTP status codes

	"habit_tracker/internal/middleware" // Context keys
	"habit_tracker/internal/service"    // Use-cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// respondError hands a service error to middleware.ErrorHandler
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// userID returns the caller id set by JWTAuthMiddleware
func userID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

// RegisterHandler creates an account and returns it with a fresh token
func RegisterHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		res, err := auth.Register(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": res.User, "token": res.Token})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.LoginInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		res, err := auth.Login(c.Request.Context(), req)
		if err != nil {
			// Unknown email and wrong password look the same
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": res.User, "token": res.Token})
	}
}

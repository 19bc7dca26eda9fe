package api

import (
	"net/http" // HTTP status codes

	"habit_tracker/internal/service" // Use-cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// ProfileHandler returns the caller's account
func ProfileHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Profile(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdateProfileHandler changes the caller's first and last name
func UpdateProfileHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateProfileInput
		if !bindJSON(c, &req) {
			return
		}
		user, err := auth.UpdateProfile(c.Request.Context(), userID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
	}
}

// ChangePasswordHandler replaces the caller's password. Tokens already
// issued stay valid until they expire.
func ChangePasswordHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ChangePasswordInput
		if !bindJSON(c, &req) {
			return
		}
		if err := auth.ChangePassword(c.Request.Context(), userID(c), req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
	}
}

package api

import (
	"habit_tracker/internal/middleware" // Auth, logging and error middleware
	"habit_tracker/internal/service"    // Use-cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// Services are the dependencies the router dispatches to
type Services struct {
	Auth   *service.AuthService
	Habits *service.HabitService
	Tags   *service.TagService
	Tokens middleware.TokenVerifier // Checks bearer tokens on protected routes
}

// NewRouter builds the HTTP surface. exposeDetails adds the underlying error
// text to 500 responses and must be false in production.
func NewRouter(s Services, exposeDetails bool) *gin.Engine {
	configureValidator()

	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.ErrorHandler(exposeDetails))
	r.NoRoute(middleware.NotFoundHandler())

	r.GET("/health", HealthHandler()) // Liveness endpoint

	auth := middleware.JWTAuthMiddleware(s.Tokens)
	apiGroup := r.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", RegisterHandler(s.Auth)) // Registration endpoint
	authGroup.POST("/login", LoginHandler(s.Auth))       // Login endpoint

	// Account routes (protected by JWT)
	userGroup := apiGroup.Group("/users", auth)
	userGroup.GET("/me", ProfileHandler(s.Auth))                 // Current account
	userGroup.PUT("/me", UpdateProfileHandler(s.Auth))           // Change names
	userGroup.PUT("/me/password", ChangePasswordHandler(s.Auth)) // Change password

	// Habit routes (protected by JWT)
	habitGroup := apiGroup.Group("/habits", auth)
	habitGroup.GET("", ListHabitsHandler(s.Habits))                   // List own habits
	habitGroup.POST("", CreateHabitHandler(s.Habits))                 // Create habit
	habitGroup.GET("/tag/:tagId", HabitsByTagHandler(s.Habits))       // Own habits by tag
	habitGroup.GET("/:id", GetHabitHandler(s.Habits))                 // Habit with recent entries
	habitGroup.PUT("/:id", UpdateHabitHandler(s.Habits))              // Partial update
	habitGroup.DELETE("/:id", DeleteHabitHandler(s.Habits))           // Delete habit
	habitGroup.POST("/:id/complete", CompleteHabitHandler(s.Habits))  // Record completion
	habitGroup.POST("/:id/tags", AddTagsHandler(s.Habits))            // Attach tags
	habitGroup.DELETE("/:id/tags/:tagId", RemoveTagHandler(s.Habits)) // Detach tag

	// Tag routes: reads are public, writes need a token
	tagGroup := apiGroup.Group("/tags")
	tagGroup.GET("", ListTagsHandler(s.Tags))                     // All tags
	tagGroup.GET("/popular", PopularTagsHandler(s.Tags))          // Most used tags
	tagGroup.GET("/:id", GetTagHandler(s.Tags))                   // One tag
	tagGroup.GET("/:id/habits", auth, TagHabitsHandler(s.Habits)) // Own habits carrying the tag
	tagGroup.POST("", auth, CreateTagHandler(s.Tags))             // Create tag
	tagGroup.PUT("/:id", auth, UpdateTagHandler(s.Tags))          // Update tag
	tagGroup.DELETE("/:id", auth, DeleteTagHandler(s.Tags))       // Delete tag

	return r
}

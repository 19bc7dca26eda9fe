package api

import (
	"net/http" // HTTP status codes

	"habit_tracker/internal/service" // Use-cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListHabitsHandler returns the caller's habits, newest first
func ListHabitsHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := habits.ListHabits(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"habits": list})
	}
}

// CreateHabitHandler creates a habit and attaches the requested tags in one transaction
func CreateHabitHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateHabitInput
		if !bindJSON(c, &req) {
			return
		}
		habit, err := habits.CreateHabit(c.Request.Context(), userID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Habit created successfully", "habit": habit})
	}
}

// GetHabitHandler returns one habit with its tags and recent entries
func GetHabitHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p habitParams
		if !bindURI(c, &p) {
			return
		}
		habit, err := habits.GetHabit(c.Request.Context(), userID(c), p.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"habit": habit})
	}
}

// UpdateHabitHandler applies a partial update; tagIds, when sent, replaces the tag set
func UpdateHabitHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p habitParams
		if !bindURI(c, &p) {
			return
		}
		var req service.UpdateHabitInput
		if !bindJSON(c, &req) {
			return
		}
		habit, err := habits.UpdateHabit(c.Request.Context(), userID(c), p.ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Habit updated successfully", "habit": habit})
	}
}

// DeleteHabitHandler removes a habit with its entries and tag links
func DeleteHabitHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p habitParams
		if !bindURI(c, &p) {
			return
		}
		if err := habits.DeleteHabit(c.Request.Context(), userID(c), p.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Habit deleted successfully"})
	}
}

// CompleteHabitHandler records a completion; the body is optional
func CompleteHabitHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p habitParams
		if !bindURI(c, &p) {
			return
		}
		var req service.CompleteHabitInput
		if !bindOptionalJSON(c, &req) {
			return
		}
		entry, err := habits.CompleteHabit(c.Request.Context(), userID(c), p.ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Habit completed successfully", "entry": entry})
	}
}

// AddTagsHandler attaches tags to a habit, skipping ones already attached
func AddTagsHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p habitParams
		if !bindURI(c, &p) {
			return
		}
		var req service.AddTagsInput
		if !bindJSON(c, &req) {
			return
		}
		if err := habits.AddTagsToHabit(c.Request.Context(), userID(c), p.ID, req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tags added successfully"})
	}
}

// RemoveTagHandler detaches one tag from a habit
func RemoveTagHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p habitTagParams
		if !bindURI(c, &p) {
			return
		}
		if err := habits.RemoveTagFromHabit(c.Request.Context(), userID(c), p.ID, p.TagID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tag removed successfully"})
	}
}

// HabitsByTagHandler lists the caller's habits carrying a tag
func HabitsByTagHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p byTagParams
		if !bindURI(c, &p) {
			return
		}
		list, err := habits.ListHabitsByTag(c.Request.Context(), userID(c), p.TagID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"habits": list})
	}
}

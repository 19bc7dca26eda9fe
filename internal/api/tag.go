package api

import (
	"net/http" // HTTP status codes

	"habit_tracker/internal/service" // Use-cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListTagsHandler returns every tag ordered by name
func ListTagsHandler(tags *service.TagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := tags.ListTags(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tags": list})
	}
}

// PopularTagsHandler returns the most used tags with their usage counts
func PopularTagsHandler(tags *service.TagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := tags.PopularTags(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tags": list})
	}
}

// GetTagHandler returns one tag with its usage count
func GetTagHandler(tags *service.TagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p tagParams
		if !bindURI(c, &p) {
			return
		}
		tag, err := tags.GetTag(c.Request.Context(), p.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tag": tag})
	}
}

// TagHabitsHandler returns a tag and the caller's habits carrying it
func TagHabitsHandler(habits *service.HabitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p tagParams
		if !bindURI(c, &p) {
			return
		}
		res, err := habits.TagHabits(c.Request.Context(), userID(c), p.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tag": res.Tag, "habits": res.Habits})
	}
}

// CreateTagHandler adds a tag
func CreateTagHandler(tags *service.TagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateTagInput
		if !bindJSON(c, &req) {
			return
		}
		tag, err := tags.CreateTag(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Tag created successfully", "tag": tag})
	}
}

// UpdateTagHandler renames or recolors a tag
func UpdateTagHandler(tags *service.TagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p tagParams
		if !bindURI(c, &p) {
			return
		}
		var req service.UpdateTagInput
		if !bindJSON(c, &req) {
			return
		}
		tag, err := tags.UpdateTag(c.Request.Context(), p.ID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tag updated successfully", "tag": tag})
	}
}

// DeleteTagHandler removes a tag no habit uses
func DeleteTagHandler(tags *service.TagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p tagParams
		if !bindURI(c, &p) {
			return
		}
		if err := tags.DeleteTag(c.Request.Context(), p.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
	}
}

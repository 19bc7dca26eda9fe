package service

import (
	"cmp"     // Ordering helpers
	"context" // Request scoped storage calls
	"slices"  // Sorting
	"time"    // Timestamps and cache TTL

	"habit_tracker/internal/domain" // Importing domain models
	"habit_tracker/internal/utils"  // Tag cache

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Cache keys for the global tag reads
const (
	cacheKeyTags    = "tags:all"
	cacheKeyPopular = "tags:popular"
	cacheKeyGen     = "tags:gen" // Bumped on every invalidation
	tagCacheTTL     = 60 * time.Second
)

var tagCacheKeys = []string{cacheKeyTags, cacheKeyPopular}

// PopularTagsLimit is the number of tags PopularTags returns
const PopularTagsLimit = 10

// CreateTagInput is a validated create request
type CreateTagInput struct {
	Name  string  `json:"name" binding:"required,min=1,max=50"`     // Unique tag name
	Color *string `json:"color" binding:"omitempty,len=7,hexcolor"` // #RRGGBB, defaults to gray
}

// UpdateTagInput carries only the fields the caller sent
type UpdateTagInput struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=50"`
	Color *string `json:"color" binding:"omitempty,len=7,hexcolor"`
}

// TagUsage is a tag with the number of habits carrying it
type TagUsage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	UsageCount int64     `json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TagService manages the global tag list. Tags have no owner.
type TagService struct {
	db    *gorm.DB     // Shared connection pool
	cache *utils.Cache // Read cache for ListTags and PopularTags
}

// NewTagService wires the tag store; cache may be nil
func NewTagService(db *gorm.DB, cache *utils.Cache) *TagService {
	return &TagService{db: db, cache: cache}
}

func (s *TagService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cacheKeyGen, tagCacheKeys...); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate tag cache")
	}
}

// cached serves key from the cache or fills it with load. The fill is
// dropped if a tag write invalidated the cache while load ran.
func cached[T any](ctx context.Context, cache *utils.Cache, key string, load func() (T, error)) (T, error) {
	var out T
	found, err := cache.Get(ctx, key, &out)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Tag cache read failed")
	}
	if found {
		return out, nil
	}
	gen, genErr := cache.Generation(ctx, cacheKeyGen)
	out, err = load()
	if err != nil {
		return out, err
	}
	if genErr != nil {
		logrus.WithError(genErr).WithField("key", key).Warn("Tag cache read failed")
		return out, nil // Unknown generation: do not cache
	}
	if _, err := cache.SetIfGeneration(ctx, cacheKeyGen, gen, key, out, tagCacheTTL); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Tag cache write failed")
	}
	return out, nil
}

// ListTags returns every tag ordered by name
func (s *TagService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return cached(ctx, s.cache, cacheKeyTags, func() ([]domain.Tag, error) {
		tags := []domain.Tag{}
		if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
			return nil, classify(err, MsgTagNotFound, "Failed to fetch tags")
		}
		return tags, nil
	})
}

// usageCounts returns association counts keyed by tag id
func usageCounts(tx *gorm.DB, tagIDs ...string) (map[string]int64, error) {
	var rows []struct {
		TagID      string
		UsageCount int64
	}
	q := tx.Model(&domain.HabitTag{}).Select("tag_id, COUNT(*) AS usage_count").Group("tag_id")
	if len(tagIDs) > 0 {
		q = q.Where("tag_id IN ?", tagIDs)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.TagID] = r.UsageCount
	}
	return out, nil
}

func newTagUsage(t domain.Tag, count int64) TagUsage {
	return TagUsage{ID: t.ID, Name: t.Name, Color: t.Color, UsageCount: count, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

// PopularTags returns the most used tags, ties ordered by name
func (s *TagService) PopularTags(ctx context.Context) ([]TagUsage, error) {
	return cached(ctx, s.cache, cacheKeyPopular, func() ([]TagUsage, error) {
		db := s.db.WithContext(ctx)
		var tags []domain.Tag
		if err := db.Order("name").Find(&tags).Error; err != nil {
			return nil, classify(err, MsgTagNotFound, "Failed to fetch popular tags")
		}
		counts, err := usageCounts(db)
		if err != nil {
			return nil, classify(err, MsgTagNotFound, "Failed to fetch popular tags")
		}
		out := make([]TagUsage, len(tags))
		for i, t := range tags {
			out[i] = newTagUsage(t, counts[t.ID])
		}
		slices.SortStableFunc(out, func(a, b TagUsage) int {
			return cmp.Compare(b.UsageCount, a.UsageCount)
		})
		if len(out) > PopularTagsLimit {
			out = out[:PopularTagsLimit]
		}
		return out, nil
	})
}

// GetTag returns a tag with its usage count
func (s *TagService) GetTag(ctx context.Context, id string) (*TagUsage, error) {
	db := s.db.WithContext(ctx)
	var tag domain.Tag
	if err := db.First(&tag, "id = ?", id).Error; err != nil {
		return nil, classify(err, MsgTagNotFound, "Failed to fetch tag")
	}
	counts, err := usageCounts(db, tag.ID)
	if err != nil {
		return nil, classify(err, MsgTagNotFound, "Failed to fetch tag")
	}
	usage := newTagUsage(tag, counts[tag.ID])
	return &usage, nil
}

// CreateTag adds a tag; names are unique
func (s *TagService) CreateTag(ctx context.Context, in CreateTagInput) (*domain.Tag, error) {
	db := s.db.WithContext(ctx)
	var taken int64 // Tags already using the name
	if err := db.Model(&domain.Tag{}).Where("name = ?", in.Name).Count(&taken).Error; err != nil {
		return nil, classify(err, MsgTagNotFound, "Failed to create tag")
	}
	if taken > 0 {
		return nil, newError(KindConflict, MsgTagExists, nil)
	}
	tag := domain.Tag{Name: in.Name, Color: domain.DefaultTagColor}
	if in.Color != nil {
		tag.Color = *in.Color
	}
	if err := db.Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, newError(KindConflict, MsgTagExists, err)
		}
		return nil, classify(err, MsgTagNotFound, "Failed to create tag")
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{
		"tag_id": tag.ID,
		"name":   tag.Name,
	}).Info("Tag created")
	return &tag, nil
}

// UpdateTag renames or recolors a tag
func (s *TagService) UpdateTag(ctx context.Context, id string, in UpdateTagInput) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tag, "id = ?", id).Error; err != nil {
			return err
		}
		updates := map[string]any{"updated_at": time.Now()}
		if in.Name != nil && *in.Name != tag.Name {
			var taken int64 // Other tags already using the new name
			if err := tx.Model(&domain.Tag{}).Where("name = ? AND id <> ?", *in.Name, id).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return newError(KindConflict, MsgTagExists, nil)
			}
			updates["name"] = *in.Name
		}
		if in.Color != nil {
			updates["color"] = *in.Color
		}
		if err := tx.Model(&tag).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(KindConflict, MsgTagExists, err)
			}
			return err
		}
		return tx.First(&tag, "id = ?", id).Error
	})
	if err != nil {
		return nil, classify(err, MsgTagNotFound, "Failed to update tag")
	}
	s.invalidate(ctx)
	logrus.WithField("tag_id", tag.ID).Info("Tag updated")
	return &tag, nil
}

// DeleteTag removes a tag that no habit references
func (s *TagService) DeleteTag(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64 // Associations referencing the tag
		if err := tx.Model(&domain.HabitTag{}).Where("tag_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return newError(KindConflict, MsgTagInUse, nil)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(KindNotFound, MsgTagNotFound, nil)
		}
		return nil
	})
	if err != nil {
		return classify(err, MsgTagNotFound, "Failed to delete tag")
	}
	s.invalidate(ctx)
	logrus.WithField("tag_id", id).Info("Tag deleted")
	return nil
}

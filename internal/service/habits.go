package service

import (
	"context"       // Request scoped storage calls
	"encoding/json" // Nullable field decoding
	"slices"        // Sorting and de-duplication
	"time"          // Timestamps

	"habit_tracker/internal/domain" // Importing domain models
	"habit_tracker/internal/utils"  // Tag cache

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// RecentEntriesLimit is how many entries GetHabit returns
const RecentEntriesLimit = 10

// CreateHabitInput is a validated create request
type CreateHabitInput struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`                   // Habit name
	Description *string  `json:"description" binding:"omitempty,max=2000"`                // Optional description
	Frequency   string   `json:"frequency" binding:"required,oneof=daily weekly monthly"` // Period
	TargetCount *int     `json:"targetCount" binding:"omitempty,min=1"`                   // Defaults to 1
	TagIDs      []string `json:"tagIds" binding:"omitempty,dive,uuid"`                    // Tags to attach
}

// UpdateHabitInput carries only the fields the caller sent. TagIDs nil
// leaves associations alone; a non-nil empty slice removes them all.
type UpdateHabitInput struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Description Nullable  `json:"description" binding:"omitempty,max=2000"` // null clears it
	Frequency   *string   `json:"frequency" binding:"omitempty,oneof=daily weekly monthly"`
	TargetCount *int      `json:"targetCount" binding:"omitempty,min=1"`
	IsActive    *bool     `json:"isActive"`
	TagIDs      *[]string `json:"tagIds" binding:"omitempty,dive,uuid"`
}

// Nullable is an optional string field that tells "absent" apart from an
// explicit null. Set is true whenever the key was present in the body.
type Nullable struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the key was sent; null leaves Value nil
func (n *Nullable) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// NullString is a present value; nil means an explicit null
func NullString(v *string) Nullable {
	return Nullable{Set: true, Value: v}
}

// CompleteHabitInput is a validated completion request
type CompleteHabitInput struct {
	Note *string `json:"note" binding:"omitempty,max=1000"`
}

// AddTagsInput is a validated request to attach tags
type AddTagsInput struct {
	TagIDs []string `json:"tagIds" binding:"required,min=1,dive,uuid"`
}

// HabitView is a habit with its tags
type HabitView struct {
	domain.Habit
	Tags []domain.Tag `json:"tags"`
}

// HabitDetail adds the most recent entries to a HabitView
type HabitDetail struct {
	HabitView
	Entries []domain.Entry `json:"entries"`
}

// TagHabits is a tag summary with the caller's habits that carry it
type TagHabits struct {
	Tag    TagSummary  `json:"tag"`
	Habits []HabitView `json:"habits"`
}

// TagSummary is the short form of a tag
type TagSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HabitService implements the habit use-cases. Every habit-scoped call
// checks ownership; a habit owned by someone else is reported as missing.
type HabitService struct {
	db    *gorm.DB         // Shared connection pool
	cache *utils.Cache     // Tag cache to invalidate when associations change
	now   func() time.Time // Clock, replaceable in tests
}

// NewHabitService wires the habit store; cache may be nil
func NewHabitService(db *gorm.DB, cache *utils.Cache) *HabitService {
	return &HabitService{db: db, cache: cache, now: time.Now}
}

// uniqueIDs drops repeated ids, keeping first occurrences in order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ownedHabit loads a habit only if owner owns it
func ownedHabit(tx *gorm.DB, owner, id string) (*domain.Habit, error) {
	var habit domain.Habit
	err := tx.Where("id = ? AND user_id = ?", id, owner).First(&habit).Error
	if err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to fetch habit")
	}
	return &habit, nil
}

// insertTags attaches tagIDs to a habit after checking every tag exists
func insertTags(tx *gorm.DB, habitID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	var found int64 // Number of referenced tags that exist
	if err := tx.Model(&domain.Tag{}).Where("id IN ?", tagIDs).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(tagIDs)) {
		return newError(KindValidation, MsgInvalidReference, nil)
	}
	rows := make([]domain.HabitTag, len(tagIDs))
	for i, tagID := range tagIDs {
		rows[i] = domain.HabitTag{HabitID: habitID, TagID: tagID}
	}
	return tx.Create(&rows).Error
}

// tagsByHabit returns the tags of each habit id, de-duplicated, in association order
func tagsByHabit(tx *gorm.DB, habitIDs []string) (map[string][]domain.Tag, error) {
	out := make(map[string][]domain.Tag, len(habitIDs))
	if len(habitIDs) == 0 {
		return out, nil
	}
	var links []domain.HabitTag
	if err := tx.Where("habit_id IN ?", habitIDs).Order("created_at, id").Find(&links).Error; err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return out, nil
	}
	tagIDs := make([]string, 0, len(links))
	for _, l := range links {
		tagIDs = append(tagIDs, l.TagID)
	}
	var tags []domain.Tag
	if err := tx.Where("id IN ?", uniqueIDs(tagIDs)).Find(&tags).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	for _, l := range links {
		tag, ok := byID[l.TagID]
		if !ok || slices.ContainsFunc(out[l.HabitID], func(t domain.Tag) bool { return t.ID == tag.ID }) {
			continue
		}
		out[l.HabitID] = append(out[l.HabitID], tag)
	}
	return out, nil
}

// views annotates habits with their tags
func views(tx *gorm.DB, habits []domain.Habit) ([]HabitView, error) {
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	tags, err := tagsByHabit(tx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]HabitView, len(habits))
	for i, h := range habits {
		out[i] = HabitView{Habit: h, Tags: tags[h.ID]}
		if out[i].Tags == nil {
			out[i].Tags = []domain.Tag{}
		}
	}
	return out, nil
}

// habitView annotates a single habit with its tags
func habitView(tx *gorm.DB, habit *domain.Habit) (*HabitView, error) {
	vs, err := views(tx, []domain.Habit{*habit})
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

func (s *HabitService) invalidateTags(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cacheKeyGen, tagCacheKeys...); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate tag cache")
	}
}

// CreateHabit inserts a habit and its tag associations atomically
func (s *HabitService) CreateHabit(ctx context.Context, owner string, in CreateHabitInput) (*HabitView, error) {
	targetCount := 1
	if in.TargetCount != nil {
		targetCount = *in.TargetCount
	}
	habit := domain.Habit{
		UserID:      owner,
		Name:        in.Name,
		Description: in.Description,
		Frequency:   in.Frequency,
		TargetCount: targetCount,
		IsActive:    true,
	}
	tagIDs := uniqueIDs(in.TagIDs)
	var view *HabitView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&habit).Error; err != nil {
			return err
		}
		if err := insertTags(tx, habit.ID, tagIDs); err != nil {
			return err // Rolls back the habit as well
		}
		var err error
		view, err = habitView(tx, &habit)
		return err
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": owner,
			"error":   err.Error(),
		}).Warn("Create habit failed")
		return nil, classify(err, MsgHabitNotFound, "Failed to create habit")
	}
	if len(tagIDs) > 0 {
		s.invalidateTags(ctx)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  owner,
		"habit_id": habit.ID,
		"tags":     len(tagIDs),
	}).Info("Habit created")
	return view, nil
}

// ListHabits returns the owner's habits with tags, newest first
func (s *HabitService) ListHabits(ctx context.Context, owner string) ([]HabitView, error) {
	db := s.db.WithContext(ctx)
	var habits []domain.Habit
	if err := db.Where("user_id = ?", owner).Order("created_at desc, id").Find(&habits).Error; err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to fetch habits")
	}
	out, err := views(db, habits)
	if err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to fetch habits")
	}
	return out, nil
}

// GetHabit returns one owned habit with tags and its most recent entries
func (s *HabitService) GetHabit(ctx context.Context, owner, id string) (*HabitDetail, error) {
	db := s.db.WithContext(ctx)
	habit, err := ownedHabit(db, owner, id)
	if err != nil {
		return nil, err
	}
	view, err := habitView(db, habit)
	if err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to fetch habit")
	}
	entries := []domain.Entry{}
	if err := db.Where("habit_id = ?", habit.ID).
		Order("completion_date desc, created_at desc").
		Limit(RecentEntriesLimit).
		Find(&entries).Error; err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to fetch habit")
	}
	return &HabitDetail{HabitView: *view, Entries: entries}, nil
}

// UpdateHabit applies the provided fields and, when TagIDs is set,
// replaces the tag set in the same transaction
func (s *HabitService) UpdateHabit(ctx context.Context, owner, id string, in UpdateHabitInput) (*HabitView, error) {
	updates := map[string]any{"updated_at": s.now()}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description.Set {
		updates["description"] = in.Description.Value // nil stores NULL
	}
	if in.Frequency != nil {
		updates["frequency"] = *in.Frequency
	}
	if in.TargetCount != nil {
		updates["target_count"] = *in.TargetCount
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	var view *HabitView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		habit, err := ownedHabit(tx, owner, id)
		if err != nil {
			return err
		}
		if err := tx.Model(habit).Updates(updates).Error; err != nil {
			return err
		}
		if in.TagIDs != nil {
			// Replace the whole association set
			if err := tx.Where("habit_id = ?", habit.ID).Delete(&domain.HabitTag{}).Error; err != nil {
				return err
			}
			if err := insertTags(tx, habit.ID, uniqueIDs(*in.TagIDs)); err != nil {
				return err
			}
		}
		fresh, err := ownedHabit(tx, owner, id)
		if err != nil {
			return err
		}
		view, err = habitView(tx, fresh)
		return err
	})
	if err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to update habit")
	}
	if in.TagIDs != nil {
		s.invalidateTags(ctx)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":      owner,
		"habit_id":     id,
		"tags_replace": in.TagIDs != nil,
	}).Info("Habit updated")
	return view, nil
}

// DeleteHabit removes an owned habit; entries and associations cascade
func (s *HabitService) DeleteHabit(ctx context.Context, owner, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&domain.Habit{})
	if res.Error != nil {
		return classify(res.Error, MsgHabitNotFound, "Failed to delete habit")
	}
	if res.RowsAffected == 0 {
		return newError(KindNotFound, MsgHabitNotFound, nil)
	}
	s.invalidateTags(ctx)
	logrus.WithFields(logrus.Fields{
		"user_id":  owner,
		"habit_id": id,
	}).Info("Habit deleted")
	return nil
}

// CompleteHabit records a completion now. Repeated calls on the same day
// each add an entry.
func (s *HabitService) CompleteHabit(ctx context.Context, owner, id string, in CompleteHabitInput) (*domain.Entry, error) {
	db := s.db.WithContext(ctx)
	habit, err := ownedHabit(db, owner, id)
	if err != nil {
		return nil, err
	}
	if !habit.IsActive {
		return nil, newError(KindInactiveHabit, MsgInactiveHabit, nil)
	}
	entry := domain.Entry{
		HabitID:        habit.ID,
		CompletionDate: s.now(),
		Note:           in.Note,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to complete habit")
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  owner,
		"habit_id": habit.ID,
		"entry_id": entry.ID,
	}).Info("Habit completed")
	return &entry, nil
}

// AddTagsToHabit attaches the tags the habit does not already carry
func (s *HabitService) AddTagsToHabit(ctx context.Context, owner, id string, in AddTagsInput) error {
	added := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		habit, err := ownedHabit(tx, owner, id)
		if err != nil {
			return err
		}
		var existing []string
		if err := tx.Model(&domain.HabitTag{}).Where("habit_id = ?", habit.ID).Pluck("tag_id", &existing).Error; err != nil {
			return err
		}
		var fresh []string
		for _, tagID := range uniqueIDs(in.TagIDs) {
			if !slices.Contains(existing, tagID) {
				fresh = append(fresh, tagID)
			}
		}
		added = len(fresh)
		return insertTags(tx, habit.ID, fresh)
	})
	if err != nil {
		return classify(err, MsgHabitNotFound, "Failed to add tags to habit")
	}
	if added > 0 {
		s.invalidateTags(ctx)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  owner,
		"habit_id": id,
		"added":    added,
	}).Info("Tags added to habit")
	return nil
}

// RemoveTagFromHabit detaches a tag; removing an absent tag is not an error
func (s *HabitService) RemoveTagFromHabit(ctx context.Context, owner, id, tagID string) error {
	db := s.db.WithContext(ctx)
	habit, err := ownedHabit(db, owner, id)
	if err != nil {
		return err
	}
	res := db.Where("habit_id = ? AND tag_id = ?", habit.ID, tagID).Delete(&domain.HabitTag{})
	if res.Error != nil {
		return classify(res.Error, MsgHabitNotFound, "Failed to remove tag from habit")
	}
	if res.RowsAffected > 0 {
		s.invalidateTags(ctx)
	}
	return nil
}

// ListHabitsByTag returns the owner's habits carrying tagID, newest first
func (s *HabitService) ListHabitsByTag(ctx context.Context, owner, tagID string) ([]HabitView, error) {
	db := s.db.WithContext(ctx)
	var habits []domain.Habit
	if err := db.Where("user_id = ? AND id IN (?)", owner,
		db.Model(&domain.HabitTag{}).Select("habit_id").Where("tag_id = ?", tagID)).
		Order("created_at desc, id").
		Find(&habits).Error; err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to fetch habits by tag")
	}
	out, err := views(db, habits)
	if err != nil {
		return nil, classify(err, MsgHabitNotFound, "Failed to fetch habits by tag")
	}
	return out, nil
}

// TagHabits returns a tag summary with the owner's habits that carry it
func (s *HabitService) TagHabits(ctx context.Context, owner, tagID string) (*TagHabits, error) {
	var tag domain.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", tagID).Error; err != nil {
		return nil, classify(err, MsgTagNotFound, "Failed to fetch tag")
	}
	habits, err := s.ListHabitsByTag(ctx, owner, tagID)
	if err != nil {
		return nil, err
	}
	return &TagHabits{
		Tag:    TagSummary{ID: tag.ID, Name: tag.Name, Color: tag.Color},
		Habits: habits,
	}, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"habit_tracker/internal/db/dbtest"
	"habit_tracker/internal/domain"
	"habit_tracker/internal/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	db     *gorm.DB
	tokens *utils.TokenService
	auth   *AuthService
	habits *HabitService
	tags   *TagService
}

func newTestEnv(t *testing.T, cache *utils.Cache) *testEnv {
	t.Helper()
	gdb := dbtest.New(t)
	tokens := utils.NewTokenService(testSecret, time.Hour)
	return &testEnv{
		db:     gdb,
		tokens: tokens,
		auth:   NewAuthService(gdb, tokens, utils.NewPasswordHasher(bcrypt.MinCost)),
		habits: NewHabitService(gdb, cache),
		tags:   NewTagService(gdb, cache),
	}
}

func (e *testEnv) user(t *testing.T, name string) string {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    name + "@example.com",
		Username: name,
		Password: "TestPassword123!",
	})
	require.NoError(t, err)
	return res.User.ID
}

func (e *testEnv) tag(t *testing.T, name string) string {
	t.Helper()
	tag, err := e.tags.CreateTag(context.Background(), CreateTagInput{Name: name})
	require.NoError(t, err)
	return tag.ID
}

func (e *testEnv) habit(t *testing.T, owner, name string, tagIDs ...string) *HabitView {
	t.Helper()
	h, err := e.habits.CreateHabit(context.Background(), owner, CreateHabitInput{
		Name:      name,
		Frequency: domain.FrequencyDaily,
		TagIDs:    tagIDs,
	})
	require.NoError(t, err)
	return h
}

func (e *testEnv) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func tagIDsOf(v HabitView) []string {
	out := make([]string, len(v.Tags))
	for i, t := range v.Tags {
		out[i] = t.ID
	}
	return out
}

func ptr[T any](v T) *T { return &v }

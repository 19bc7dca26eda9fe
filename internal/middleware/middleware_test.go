package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"habit_tracker/internal/service"
	"habit_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(tokens *utils.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/me", JWTAuthMiddleware(tokens), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "userID": c.GetString(ContextUserIDKey)})
	})
	return r
}

func call(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenService(testSecret, time.Hour)
	r := newProtectedRouter(tokens)
	good, err := tokens.Issue(utils.TokenIdentity{ID: "user-1", Email: "a@example.com", Username: "alice"})
	require.NoError(t, err)
	foreign, err := utils.NewTokenService("ffffffffffffffffffffffffffffffff", time.Hour).Issue(utils.TokenIdentity{ID: "user-1"})
	require.NoError(t, err)
	expired, err := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(utils.TokenIdentity{ID: "user-1"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + good, status: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusForbidden},
		{name: "other secret", header: "Bearer " + foreign, status: http.StatusForbidden},
		{name: "expired", header: "Bearer " + expired, status: http.StatusForbidden},
		{name: "valid", header: "Bearer " + good, status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + good, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := call(r, tc.header)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":"user-1","userID":"user-1"}`, w.Body.String())
			}
		})
	}
}

func TestCurrentUserWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentUser(c)
	assert.False(t, ok)
}

func TestErrorHandler(t *testing.T) {
	newRouter := func(expose bool, err error) *gin.Engine {
		r := gin.New()
		r.Use(ErrorHandler(expose))
		r.GET("/", func(c *gin.Context) { _ = c.Error(err) })
		return r
	}
	serve := func(r *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	notFound := &service.Error{Kind: service.KindNotFound, Message: service.MsgHabitNotFound}
	w := serve(newRouter(false, notFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Habit not found"}`, w.Body.String())

	inactive := &service.Error{Kind: service.KindInactiveHabit, Message: service.MsgInactiveHabit}
	assert.Equal(t, http.StatusBadRequest, serve(newRouter(false, inactive)).Code)

	conflict := &service.Error{Kind: service.KindConflict, Message: service.MsgTagInUse}
	assert.Equal(t, http.StatusConflict, serve(newRouter(false, conflict)).Code)

	internal := &service.Error{Kind: service.KindInternal, Message: "Failed to fetch habits", Err: errors.New("connection reset")}
	w = serve(newRouter(false, internal))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch habits"}`, w.Body.String())

	w = serve(newRouter(true, internal))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "connection reset")

	w = serve(newRouter(false, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusFor(service.KindAuthentication))
	assert.Equal(t, http.StatusForbidden, StatusFor(service.KindAuthorization))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(service.KindConfiguration))
}

func TestNotFoundHandlerEchoesQuery(t *testing.T) {
	r := gin.New()
	r.NoRoute(NotFoundHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/missing?limit=5", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found - /api/missing?limit=5"}`, w.Body.String())
}

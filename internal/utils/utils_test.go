package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testIdentity = TokenIdentity{ID: "3f1c2a9e-5b7d-4c1e-9a2b-8d6f4e3c2b1a", Email: "a@example.com", Username: "alice"}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, claims.Identity())
	assert.Equal(t, testIdentity.ID, claims.UserID)
	assert.Empty(t, claims.ID)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenPayloadKeepsUserIDSeparateFromJTI(t *testing.T) {
	token, err := NewTokenService(testSecret, time.Hour).Issue(testIdentity)
	require.NoError(t, err)

	payload := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, payload)
	require.NoError(t, err)
	assert.Equal(t, testIdentity.ID, payload["id"])
	assert.Equal(t, testIdentity.Email, payload["email"])
	assert.Equal(t, testIdentity.Username, payload["username"])
	assert.NotContains(t, payload, "jti")
}

func TestTokenExpires(t *testing.T) {
	issuedAt := time.Now()
	svc := NewTokenService(testSecret, time.Hour).WithClock(func() time.Time { return issuedAt })

	token, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	before := svc.WithClock(func() time.Time { return issuedAt.Add(59 * time.Minute) })
	_, err = before.Verify(token)
	require.NoError(t, err)

	after := svc.WithClock(func() time.Time { return issuedAt.Add(61 * time.Minute) })
	_, err = after.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewTokenService(testSecret, time.Hour).Issue(testIdentity)
	require.NoError(t, err)

	_, err = NewTokenService("ffffffffffffffffffffffffffffffff", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsMalformedAndUnsigned(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           testIdentity.ID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour).Issue(testIdentity)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenDefaultTTL(t *testing.T) {
	svc := NewTokenService(testSecret, 0)
	token, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("TestPassword123!")
	require.NoError(t, err)
	assert.NotEqual(t, "TestPassword123!", digest)
	assert.True(t, h.Verify("TestPassword123!", digest))
	assert.False(t, h.Verify("wrong-password", digest))

	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).Cost)
}

func TestCacheDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.False(t, c.Enabled())
	stored, err := c.SetIfGeneration(ctx, "gen", 0, "k", "v", time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)
	var out string
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, c.Invalidate(ctx, "gen", "k"))
}

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	gen, err := c.Generation(ctx, "tags:gen")
	require.NoError(t, err)
	assert.Zero(t, gen)
	stored, err := c.SetIfGeneration(ctx, "tags:gen", gen, "tags:popular", payload{Name: "Health", Count: 3}, time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	var got payload
	found, err := c.Get(ctx, "tags:popular", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "Health", Count: 3}, got)

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, "tags:popular", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheInvalidateRejectsStaleFill(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	stored, err := c.SetIfGeneration(ctx, "gen", 0, "a", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, stored)

	// A reader captures the generation, then a writer invalidates
	gen, err := c.Generation(ctx, "gen")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "gen", "a", "b"))
	assert.False(t, mr.Exists("a"))

	stored, err = c.SetIfGeneration(ctx, "gen", gen, "a", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("a"))

	// A reader that starts after the write may fill
	gen, err = c.Generation(ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	stored, err = c.SetIfGeneration(ctx, "gen", gen, "a", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestSetupLogger(t *testing.T) {
	prev := logrus.GetLevel()
	t.Cleanup(func() { logrus.SetLevel(prev) })

	require.NoError(t, SetupLogger("warn", true))
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	require.NoError(t, SetupLogger("debug", false))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	assert.Error(t, SetupLogger("loud", false))
}

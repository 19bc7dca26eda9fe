package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StageDev, cfg.AppStage)
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 12, cfg.BcryptRounds)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.IsProd)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.TrustedProxies)
}

func TestLoadConfigProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("APP_STAGE", "production")
	t.Setenv("JWT_EXPIRES_IN", "36h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 36*time.Hour, cfg.TokenTTL)
}

func TestLoadConfigRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		AppStage:     "staging",
		DBDriver:     "oracle",
		JWTSecret:    testSecret,
		BcryptRounds: 4,
		DBPoolMin:    5,
		DBPoolMax:    1,
		TokenTTL:     time.Hour,
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"APP_STAGE", "DB_DRIVER", "BCRYPT_ROUNDS", "DATABASE_POOL"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseTTL(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: "15m", want: 15 * time.Minute},
		{in: "xd", wantErr: true},
		{in: "forever", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseTTL(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBName: "habits"}
	assert.Equal(t, "u:p@tcp(db:3306)/habits?parseTime=true&charset=utf8mb4", cfg.DSN())

	cfg = &Config{DBDriver: "sqlite", DBPath: "local.db"}
	assert.Contains(t, cfg.DSN(), "local.db?_pragma=foreign_keys(1)")
}

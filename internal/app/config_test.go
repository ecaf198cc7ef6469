package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, "127.0.0.1:6379", cfg.Cache.Redis.Address)
	assert.Equal(t, 5*time.Second, cfg.Cache.Redis.Timeout)
	assert.Equal(t, "soundbay", cfg.Auth.JWT.Issuer)
	assert.Equal(t, 168*time.Hour, cfg.Auth.JWT.TTL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SOUNDBAY_SERVER_PORT", "9100")
	t.Setenv("SOUNDBAY_CACHE_REDIS_ENABLED", "true")
	t.Setenv("SOUNDBAY_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.True(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}

func TestConfigConverters(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Driver = "postgres"
	cfg.Database.Postgres.Host = "db.example.com"
	cfg.Database.Postgres.Port = 5433
	cfg.Database.Postgres.Database = "soundbay"
	cfg.Database.Postgres.Username = "svc"
	cfg.Database.Postgres.Password = "pw"

	dbCfg := cfg.DatabaseConnection()
	assert.Equal(t, "db.example.com", dbCfg.Host)
	assert.Equal(t, 5433, dbCfg.Port)
	assert.Equal(t, "soundbay", dbCfg.Name)

	cfg.Cache.Redis.Address = "redis:6379"
	cfg.Cache.Redis.DB = 2
	redisCfg := cfg.RedisConnection()
	assert.Equal(t, "redis:6379", redisCfg.Address)
	assert.Equal(t, 2, redisCfg.DB)

	cfg.Auth.JWT.Secret = "secret"
	cfg.Auth.JWT.TTL = time.Hour
	jwtCfg := cfg.JWTConfig()
	assert.Equal(t, "secret", jwtCfg.Secret)
	assert.Equal(t, time.Hour, jwtCfg.AccessTokenTTL)
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.NotNil(t, cfg)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "calendar.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "csv", cfg.Backups.Format)
	assert.Equal(t, 7*24*time.Hour, cfg.Backups.Retention)
	assert.Empty(t, cfg.Render.FontPath)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DB_DRIVER", "PostgreSQL")
	v.Set("CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("PURGE_CODE", "1035")
	v.Set("RENDER_FONT_PATH", " /fonts/NanumGothic.ttf ")

	cfg := fromViper(v)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "1035", cfg.Purge.Code)
	assert.Equal(t, "/fonts/NanumGothic.ttf", cfg.Render.FontPath)
}

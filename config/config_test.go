package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, time.Hour, c.JWTTTL)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, "log", c.MailTransport)
	assert.Equal(t, "sql", c.MenuStore)
	assert.Equal(t, 5*time.Minute, c.MenuCacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("MENU_STORE", "mongo")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 30*time.Minute, c.JWTTTL)
	assert.Equal(t, "mongo", c.MenuStore)
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	t.Setenv("MAIL_TRANSPORT", "pigeon")
	_, err := Load()
	assert.Error(t, err)
}

func TestOpenDB(t *testing.T) {
	db, err := OpenDB(Config{DBPath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.True(t, db.Migrator().HasTable("menu_items"))
	assert.True(t, db.Migrator().HasTable("restaurants"))
}

package spacetraveling

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	assert.Equal(t, "Space Traveling", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, "pt-BR", cfg.Locale)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "data/content.db", cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.Revalidate)
	assert.Equal(t, 1, cfg.RefreshAfter)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.BlockingFallback)
}

func TestValidate(t *testing.T) {
	valid := func() SiteConfig {
		cfg := SiteConfig{SessionSecret: "secret"}
		cfg.setDefaults()
		return cfg
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Locale = "fr-FR"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Revalidate = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spacetraveling.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
name = "Meu Blog"
url = "https://blog.example.com"
locale = "en-US"
api_endpoint = "https://spacetraveling.cdn.prismic.io/api/v2"
revalidate = "1h30m"
blocking_fallback = true
refresh_after = 3
comments_repo = "user/comments"
`), 0o644))

	cfg := SiteConfig{Name: "ignored", Addr: ":8080"}
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, "Meu Blog", cfg.Name)
	assert.Equal(t, "https://blog.example.com", cfg.URL)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, "https://spacetraveling.cdn.prismic.io/api/v2", cfg.APIEndpoint)
	assert.Equal(t, 90*time.Minute, cfg.Revalidate)
	assert.True(t, cfg.BlockingFallback)
	assert.Equal(t, 3, cfg.RefreshAfter)
	assert.Equal(t, "user/comments", cfg.CommentsRepo)
	assert.Equal(t, ":8080", cfg.Addr, "keys missing from the file are left alone")
}

func TestLoadConfigFileMissing(t *testing.T) {
	cfg := SiteConfig{Name: "keep"}
	require.NoError(t, LoadConfigFile(filepath.Join(t.TempDir(), "nope.toml"), &cfg))
	assert.Equal(t, "keep", cfg.Name)
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`revalidate = "soon"`), 0o644))

	var cfg SiteConfig
	assert.Error(t, LoadConfigFile(path, &cfg))
}

func TestViewConfig(t *testing.T) {
	cfg := SiteConfig{Name: "Space Traveling", Locale: "pt-BR", CommentsRepo: "a/b", RefreshAfter: 2}
	v := cfg.View()
	assert.Equal(t, "Space Traveling", v.Name)
	assert.Equal(t, "a/b", v.CommentsRepo)
	assert.Equal(t, 2, v.RefreshAfter)
}

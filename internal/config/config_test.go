package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeeny/internal/geo"
	"jeeny/internal/modules/placement"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/modules/quote"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, geo.DefaultRegion, cfg.Region)
	assert.Equal(t, pricing.DefaultRates(), cfg.Pricing)
	assert.Equal(t, placement.DefaultConfig(), cfg.Placement)
	assert.Equal(t, quote.DefaultConfig(), cfg.Quote)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JEENY_HTTP_ADDR", ":9090")
	t.Setenv("JEENY_MAPS_API_KEY", "maps-key")
	t.Setenv("JEENY_PRICING_PER_KM", "0.3")
	t.Setenv("JEENY_QUOTE_ROUTE_TIMEOUT", "5s")
	t.Setenv("JEENY_HTTP_ALLOWED_ORIGINS", "https://app.jeeny.jo,https://admin.jeeny.jo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "maps-key", cfg.Maps.APIKey)
	assert.InDelta(t, 0.3, cfg.Pricing.PerKm, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.Quote.RouteTimeout)
	assert.Equal(t, []string{"https://app.jeeny.jo", "https://admin.jeeny.jo"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "http:\n  addr: \":7070\"\nquote:\n  max_offset_m: 250\n  snap_to_road: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, 250, cfg.Quote.MaxOffsetM)
	assert.True(t, cfg.Quote.SnapToRoad)
	assert.Equal(t, 100, cfg.Quote.MinOffsetM)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	_, err := Load(t.TempDir())
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingMapsKey)

	cfg.Maps.APIKey = "k"
	assert.ErrorIs(t, cfg.Validate(), ErrMissingGeminiKey)

	cfg.AI.GeminiKey = "g"
	assert.NoError(t, cfg.Validate())

	cfg.Region.MinLat = 40
	assert.Error(t, cfg.Validate())
}

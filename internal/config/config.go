// README: Config loader; optional YAML file plus JEENY_* env overrides for HTTP, DB, Redis, providers and tuning.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"jeeny/internal/ai"
	"jeeny/internal/geo"
	"jeeny/internal/modules/aiusage"
	"jeeny/internal/modules/placement"
	"jeeny/internal/modules/pricing"
	"jeeny/internal/modules/quote"
	"jeeny/internal/modules/session"
)

const envPrefix = "JEENY"

var (
	ErrMissingMapsKey   = errors.New("maps api key is required")
	ErrMissingGeminiKey = errors.New("gemini api key is required")
)

type Config struct {
	HTTP struct {
		Addr           string   `mapstructure:"addr"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"http"`
	// DB and Redis are optional; empty values select the in-memory stores.
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	Session struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"session"`
	Maps struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"maps"`
	AI struct {
		GeminiKey string `mapstructure:"gemini_key"`
		Model     string `mapstructure:"model"`
		// SessionQuota caps assistant calls per session within QuotaWindow
		// on the HTTP API.
		SessionQuota int           `mapstructure:"session_quota"`
		QuotaWindow  time.Duration `mapstructure:"quota_window"`
	} `mapstructure:"ai"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Places struct {
		File string `mapstructure:"file"`
	} `mapstructure:"places"`
	Region    geo.Region       `mapstructure:"region"`
	Pricing   pricing.Rates    `mapstructure:"pricing"`
	Placement placement.Config `mapstructure:"placement"`
	Quote     quote.Config     `mapstructure:"quote"`
}

// Load reads config.yaml from the given directories (if any) and applies
// JEENY_* environment overrides, e.g. JEENY_HTTP_ADDR or JEENY_MAPS_API_KEY.
// A missing config file is not an error.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if len(paths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the API cannot run without.
func (c Config) Validate() error {
	if c.Maps.APIKey == "" {
		return ErrMissingMapsKey
	}
	if c.AI.GeminiKey == "" {
		return ErrMissingGeminiKey
	}
	if c.Region.MinLat >= c.Region.MaxLat || c.Region.MinLng >= c.Region.MaxLng {
		return fmt.Errorf("invalid region %+v", c.Region)
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("session.ttl", session.DefaultTTL)
	v.SetDefault("maps.api_key", "")
	v.SetDefault("ai.gemini_key", "")
	v.SetDefault("ai.model", ai.DefaultModel)
	v.SetDefault("ai.session_quota", aiusage.DefaultTokens)
	v.SetDefault("ai.quota_window", aiusage.DefaultWindow)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("places.file", "")

	r := geo.DefaultRegion
	v.SetDefault("region.min_lat", r.MinLat)
	v.SetDefault("region.max_lat", r.MaxLat)
	v.SetDefault("region.min_lng", r.MinLng)
	v.SetDefault("region.max_lng", r.MaxLng)

	rates := pricing.DefaultRates()
	v.SetDefault("pricing.base_fare", rates.BaseFare)
	v.SetDefault("pricing.per_km", rates.PerKm)
	v.SetDefault("pricing.per_min", rates.PerMin)
	v.SetDefault("pricing.currency", rates.Currency)

	pc := placement.DefaultConfig()
	v.SetDefault("placement.provider_timeout", pc.ProviderTimeout)
	v.SetDefault("placement.search_radius_factor", pc.SearchRadiusFactor)
	v.SetDefault("placement.search_radius_max_m", pc.SearchRadiusMaxM)
	v.SetDefault("placement.candidate_limit", pc.CandidateLimit)
	v.SetDefault("placement.candidate_tolerance", pc.CandidateTolerance)
	v.SetDefault("placement.short_offset_max_m", pc.ShortOffsetMaxM)
	v.SetDefault("placement.short_offset_factor", pc.ShortOffsetFactor)
	v.SetDefault("placement.probe_factor", pc.ProbeFactor)
	v.SetDefault("placement.probe_bearings", pc.ProbeBearings)
	v.SetDefault("placement.min_polyline_points", pc.MinPolylinePoints)
	v.SetDefault("placement.jitter_factor", pc.JitterFactor)
	v.SetDefault("placement.fixed_jitter_deg", pc.FixedJitterDeg)

	qc := quote.DefaultConfig()
	v.SetDefault("quote.min_offset_m", qc.MinOffsetM)
	v.SetDefault("quote.max_offset_m", qc.MaxOffsetM)
	v.SetDefault("quote.approach_speed_m_per_min", qc.ApproachSpeedMPerMin)
	v.SetDefault("quote.route_timeout", qc.RouteTimeout)
	v.SetDefault("quote.snap_to_road", qc.SnapToRoad)
	v.SetDefault("quote.snap_timeout", qc.SnapTimeout)
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the full process configuration. Every upstream tunable
// (timeouts, retries, backoff, TTLs) lives here rather than in code: observed
// deployments of the upstream differ enough that none of those numbers are
// load-bearing.
type Settings struct {
	App      App      `mapstructure:"app"`
	Site     Site     `mapstructure:"site"`
	Upstream Upstream `mapstructure:"upstream"`
	Cache    Cache    `mapstructure:"cache"`
	Log      Log      `mapstructure:"log"`
}

type App struct {
	Port int `mapstructure:"port"`
}

type Site struct {
	Name    string `mapstructure:"name"`
	Tagline string `mapstructure:"tagline"`
	BaseURL string `mapstructure:"baseUrl"` // canonical URL for meta/sitemap; derived from request when empty
}

type Upstream struct {
	BaseURL        string `mapstructure:"baseUrl"`
	Token          string `mapstructure:"token"`
	RequireToken   bool   `mapstructure:"requireToken"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	Retries        int    `mapstructure:"retries"`
	BackoffMillis  int    `mapstructure:"backoffMillis"`
}

type Cache struct {
	DefaultTTLSeconds     int `mapstructure:"defaultTtlSeconds"`
	PlayTTLCeilingSeconds int `mapstructure:"playTtlCeilingSeconds"`
	PlayTTLFloorSeconds   int `mapstructure:"playTtlFloorSeconds"`
	CoverTTLSeconds       int `mapstructure:"coverTtlSeconds"`
	CoverRepairMax        int `mapstructure:"coverRepairMax"`
}

type Log struct {
	File       string `mapstructure:"file"` // empty means stderr only
	MaxSizeMB  int    `mapstructure:"maxSizeMb"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
}

// Load reads config.json from the working directory (optional) and overlays
// environment variables (DRAMASTREAM_UPSTREAM_TOKEN, DRAMASTREAM_APP_PORT,
// ...). Defaults make a tokenless local run work out of the box.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	// Every key needs a default, even a zero one: AutomaticEnv only resolves
	// env vars for keys viper already knows about.
	v.SetDefault("app.port", 3000)
	v.SetDefault("site.name", "DramaStream")
	v.SetDefault("site.tagline", "Short drama streaming")
	v.SetDefault("site.baseUrl", "")
	v.SetDefault("upstream.baseUrl", "https://api.sansekai.my.id/api/dramabox")
	v.SetDefault("upstream.token", "")
	v.SetDefault("upstream.requireToken", false)
	v.SetDefault("upstream.timeoutSeconds", 30)
	v.SetDefault("upstream.retries", 2)
	v.SetDefault("upstream.backoffMillis", 500)
	v.SetDefault("cache.defaultTtlSeconds", 180)
	v.SetDefault("cache.playTtlCeilingSeconds", 120)
	v.SetDefault("cache.playTtlFloorSeconds", 5)
	v.SetDefault("cache.coverTtlSeconds", 1800)
	v.SetDefault("cache.coverRepairMax", 6)
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxSizeMb", 50)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("log.maxAgeDays", 28)

	v.SetEnvPrefix("dramastream")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// A negative retry count would wrap when converted to the retry layer's
	// unsigned attempt count.
	if s.Upstream.Retries < 0 {
		s.Upstream.Retries = 0
	}
	return &s, nil
}

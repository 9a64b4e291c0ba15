package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	Provider    ProviderConfig    `mapstructure:"provider"`
	ResultsSync ResultsSyncConfig `mapstructure:"results_sync"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Cron        CronConfig        `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type ProviderConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Referer  string        `mapstructure:"referer"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ResultsSyncConfig struct {
	// RefreshUnfinished controls the best-effort event re-fetch when any
	// category is not yet finished. Stored results are never re-fetched.
	RefreshUnfinished bool `mapstructure:"refresh_unfinished"`
}

type ScoringConfig struct {
	ExactFirst  int `mapstructure:"exact_first"`
	ExactSecond int `mapstructure:"exact_second"`
	ExactThird  int `mapstructure:"exact_third"`

	InPodiumEnabled bool `mapstructure:"in_podium_enabled"`
	InPodiumFirst   int  `mapstructure:"in_podium_first"`
	InPodiumSecond  int  `mapstructure:"in_podium_second"`
	InPodiumThird   int  `mapstructure:"in_podium_third"`
}

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ScoreEvents string `mapstructure:"score_events"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRUX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("provider.base_url", "https://components.ifsc-climbing.org/results-api.php")
	v.SetDefault("provider.referer", "https://ifsc.results.info")
	v.SetDefault("provider.timeout", "15s")
	v.SetDefault("provider.cache_ttl", "60s")
	v.SetDefault("results_sync.refresh_unfinished", true)
	v.SetDefault("scoring.exact_first", 20)
	v.SetDefault("scoring.exact_second", 15)
	v.SetDefault("scoring.exact_third", 10)
	v.SetDefault("scoring.in_podium_enabled", false)
	v.SetDefault("scoring.in_podium_first", 5)
	v.SetDefault("scoring.in_podium_second", 5)
	v.SetDefault("scoring.in_podium_third", 5)
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.score_events", "@every 10m")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

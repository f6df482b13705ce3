package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the resolved configuration for one process.
type Settings struct {
	GitHubToken   string
	GitHubAPIURL  string
	OSVAPIURL     string
	HTTPTimeout   time.Duration
	Port          int
	MetricsPort   int
	Verbose       bool
	LogFile       string
	CacheEnabled  bool
	CacheType     string
	CacheDSN      string
	CacheTTL      time.Duration
	SlackWebhook  string
	SlackChannel  string
	FailOnDefault string
}

// Load initializes the configuration from file and environment variables.
func Load(cfgFile string) {
	// explicit .env loading, ignored when absent
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DEPSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The conventional variable names win over nothing, never over the
	// prefixed ones.
	if os.Getenv("DEPSCAN_GITHUB_TOKEN") == "" && os.Getenv("GITHUB_TOKEN") != "" {
		viper.SetDefault("github_token", os.Getenv("GITHUB_TOKEN"))
	}
	if os.Getenv("DEPSCAN_SLACK_WEBHOOK") == "" && os.Getenv("SLACK_WEBHOOK_URL") != "" {
		viper.SetDefault("slack_webhook", os.Getenv("SLACK_WEBHOOK_URL"))
	}

	viper.SetDefault("github_api_url", "https://api.github.com")
	viper.SetDefault("osv_api_url", "https://api.osv.dev/v1/query")
	viper.SetDefault("http_timeout", 30)
	viper.SetDefault("port", 8080)
	viper.SetDefault("metrics_port", 2112)
	viper.SetDefault("verbose", false)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.type", "sqlite")
	viper.SetDefault("cache.dsn", ".depscan.db")
	viper.SetDefault("cache.ttl", 24*60*60)
	viper.SetDefault("slack_channel", "#security")
	viper.SetDefault("fail_on", "")

	// A missing config file is fine, defaults and env cover everything.
	_ = viper.ReadInConfig()
}

// FromViper snapshots the loaded configuration into a Settings value.
func FromViper() Settings {
	return Settings{
		GitHubToken:   viper.GetString("github_token"),
		GitHubAPIURL:  viper.GetString("github_api_url"),
		OSVAPIURL:     viper.GetString("osv_api_url"),
		HTTPTimeout:   secondsOrDuration("http_timeout"),
		Port:          viper.GetInt("port"),
		MetricsPort:   viper.GetInt("metrics_port"),
		Verbose:       viper.GetBool("verbose"),
		LogFile:       viper.GetString("log_file"),
		CacheEnabled:  viper.GetBool("cache.enabled"),
		CacheType:     viper.GetString("cache.type"),
		CacheDSN:      viper.GetString("cache.dsn"),
		CacheTTL:      secondsOrDuration("cache.ttl"),
		SlackWebhook:  viper.GetString("slack_webhook"),
		SlackChannel:  viper.GetString("slack_channel"),
		FailOnDefault: viper.GetString("fail_on"),
	}
}

// secondsOrDuration reads a key as a duration string, falling back to a
// bare integer interpreted as seconds.
func secondsOrDuration(key string) time.Duration {
	if d := viper.GetDuration(key); d >= time.Second {
		return d
	}
	if s := viper.GetInt(key); s > 0 {
		return time.Duration(s) * time.Second
	}
	return 0
}

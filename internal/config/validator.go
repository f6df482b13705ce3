package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// severityLevels are the accepted values for the fail_on threshold.
var severityLevels = map[string]bool{
	"":         true, // threshold disabled
	"LOW":      true,
	"MEDIUM":   true,
	"HIGH":     true,
	"CRITICAL": true,
}

// ValidateConfig validates configuration values and returns an error if
// any are invalid. Call after Load.
func ValidateConfig() error {
	var errors []string

	if viper.IsSet("http_timeout") {
		if t := secondsOrDuration("http_timeout"); t <= 0 {
			errors = append(errors, fmt.Sprintf("http_timeout must be positive, got: %v", t))
		}
	}

	for _, key := range []string{"port", "metrics_port"} {
		if !viper.IsSet(key) {
			continue
		}
		port := viper.GetInt(key)
		if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("%s must be between 1 and 65535, got: %d", key, port))
		}
	}

	if viper.IsSet("cache.ttl") {
		if ttl := secondsOrDuration("cache.ttl"); ttl <= 0 {
			errors = append(errors, fmt.Sprintf("cache.ttl must be positive, got: %v", ttl))
		}
	}

	if viper.IsSet("cache.type") {
		switch strings.ToLower(viper.GetString("cache.type")) {
		case "sqlite", "sqlite3", "postgres", "postgresql", "":
		default:
			errors = append(errors, fmt.Sprintf("cache.type must be sqlite or postgres, got: %s", viper.GetString("cache.type")))
		}
	}

	if viper.IsSet("fail_on") {
		if !severityLevels[strings.ToUpper(viper.GetString("fail_on"))] {
			errors = append(errors, fmt.Sprintf("fail_on must be LOW, MEDIUM, HIGH or CRITICAL, got: %s", viper.GetString("fail_on")))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}
	return nil
}

// ValidateAndExit validates the configuration and exits with a non-zero
// code if validation fails.
func ValidateAndExit() {
	if err := ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"depscan/internal/config"
	"depscan/internal/db"
	"depscan/internal/github"
	"depscan/internal/osv"
	"depscan/internal/scanner"
	"depscan/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "depscan",
	Short: "Dependency vulnerability scanner for GitHub repositories",
	Long: `depscan discovers dependency manifests in a GitHub repository,
parses them across ecosystems (npm, PyPI, RubyGems, Go, Packagist) and
checks every dependency against the OSV vulnerability database.`,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'depscan --help' for usage.")
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept snake_case spellings of flags, matching the config keys.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("token", "", "GitHub API token (overrides GITHUB_TOKEN)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("github_token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Load(cfgFile)
	config.ValidateAndExit()
	telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log_file"), false)
}

// buildScanner wires the pipeline from the loaded settings. metrics may
// be nil for one-shot CLI scans. The returned cleanup closes the cache
// store, if one was opened.
func buildScanner(settings config.Settings, metrics *telemetry.Metrics) (*scanner.Scanner, *github.Client, func()) {
	gh := github.NewClient(settings.GitHubToken, settings.HTTPTimeout)
	if settings.GitHubAPIURL != "" {
		gh.BaseURL = settings.GitHubAPIURL
	}

	osvClient := osv.NewClient(settings.HTTPTimeout)
	if settings.OSVAPIURL != "" {
		osvClient.APIURL = settings.OSVAPIURL
	}

	if metrics != nil {
		gh.OnRequest = func(outcome string) {
			metrics.GitHubRequests.WithLabelValues(outcome).Inc()
		}
		osvClient.OnRequest = func(outcome string) {
			metrics.OSVRequests.WithLabelValues(outcome).Inc()
		}
	}

	var cache osv.Cache
	cleanup := func() {}
	if settings.CacheEnabled {
		store, err := db.NewStore(db.StoreConfig{
			Type:             settings.CacheType,
			ConnectionString: settings.CacheDSN,
			TTL:              settings.CacheTTL,
		})
		if err != nil {
			slog.Warn("cache unavailable, scanning without it", "error", err)
		} else {
			cache = store
			cleanup = func() { store.Close() }
		}
	}

	return scanner.New(gh, osv.NewResolver(osvClient, cache)), gh, cleanup
}

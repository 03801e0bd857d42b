package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkgs-web/internal/adapters"
	"pkgs-web/internal/app"
	"pkgs-web/internal/core"
)

func newAppService() app.Service {
	return app.NewService()
}

// pipelineOptions are the flags shared by every command that runs the
// enrichment pipeline.
type pipelineOptions struct {
	URL              string
	Name             string
	SourceRoot       string
	BuildScriptsDir  string
	Workers          int
	Policy           string
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

func bindPipelineFlags(cmd *cobra.Command, opts *pipelineOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.URL, "url", "", "Repository base URL serving available-packages/packages.yaml")
	flags.StringVar(&opts.Name, "name", "", "Logical repository name")
	bindSourceFlags(cmd, &opts.SourceRoot, &opts.BuildScriptsDir)
	flags.IntVar(&opts.Workers, "workers", core.DefaultWorkers, "Concurrent package workers (0 = default)")
	flags.StringVar(&opts.Policy, "policy", "all-or-nothing", "Failure policy: all-or-nothing or best-effort")
	flags.IntVar(&opts.HTTPTimeoutSec, "http-timeout", 60, "HTTP timeout in seconds (0 = default)")
	flags.IntVar(&opts.HTTPRetries, "http-retries", 3, "HTTP retries (0 = default)")
	flags.IntVar(&opts.HTTPRetryDelayMs, "http-retry-delay-ms", 200, "HTTP retry base delay in ms (0 = default)")

	_ = viper.BindPFlag("url", flags.Lookup("url"))
	_ = viper.BindPFlag("name", flags.Lookup("name"))
	_ = viper.BindPFlag("workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("policy", flags.Lookup("policy"))
	_ = viper.BindPFlag("http_timeout_sec", flags.Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", flags.Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", flags.Lookup("http-retry-delay-ms"))
}

func bindSourceFlags(cmd *cobra.Command, sourceRoot *string, buildScriptsDir *string) {
	flags := cmd.Flags()
	flags.StringVar(sourceRoot, "source-root", ".", "Git checkout holding the build definitions")
	flags.StringVar(buildScriptsDir, "build-scripts-dir", adapters.DefaultBuildScriptsDir, "Build definition directory relative to the source root")
	_ = viper.BindPFlag("source_root", flags.Lookup("source-root"))
	_ = viper.BindPFlag("build_scripts_dir", flags.Lookup("build-scripts-dir"))
}

func resolvePipeline(cmd *cobra.Command, opts pipelineOptions) app.PipelineRequest {
	return app.PipelineRequest{
		URL:              resolveString(cmd, opts.URL, "url", "url"),
		Name:             resolveString(cmd, opts.Name, "name", "name"),
		SourceRoot:       resolveString(cmd, opts.SourceRoot, "source_root", "source-root"),
		BuildScriptsDir:  resolveString(cmd, opts.BuildScriptsDir, "build_scripts_dir", "build-scripts-dir"),
		Workers:          resolveInt(cmd, opts.Workers, "workers", "workers"),
		Policy:           resolveString(cmd, opts.Policy, "policy", "policy"),
		HTTPTimeoutSec:   resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout_sec", "http-timeout"),
		HTTPRetries:      resolveInt(cmd, opts.HTTPRetries, "http_retries", "http-retries"),
		HTTPRetryDelayMs: resolveInt(cmd, opts.HTTPRetryDelayMs, "http_retry_delay_ms", "http-retry-delay-ms"),
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}

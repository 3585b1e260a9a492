package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/sitecheck/internal/checker"
	consts "github.com/khanhnv2901/sitecheck/internal/shared/constants"
)

const (
	defaultTimeoutSeconds  = 10
	defaultServeAddr       = "127.0.0.1:8080"
	defaultRateLimit       = 1
	defaultRateBurst       = 5
	defaultShutdownTimeout = 30 * time.Second
	defaultLogLevel        = "warn"
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Scan  ScanRuntimeConfig
	Serve ServeRuntimeConfig
	Log   LogConfig
}

// ScanRuntimeConfig consolidates flag-driven settings for the probes.
type ScanRuntimeConfig struct {
	TimeoutSecs             int
	FollowRedirects         bool
	CheckContentTypeOptions bool
	ExpiryWarningDays       int
	JSON                    bool
	NoBanner                bool
	FailInsecure            bool
}

// ServeRuntimeConfig holds the HTTP server settings.
type ServeRuntimeConfig struct {
	Addr            string
	AuthToken       string
	CORSOrigins     []string
	RateLimit       int
	RateBurst       int
	TrustProxy      bool
	ShutdownTimeout time.Duration
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level string
	Debug bool
}

type configOverrides struct {
	TimeoutSecs             *int
	FollowRedirects         *bool
	CheckContentTypeOptions *bool
	ExpiryWarningDays       *int
	ServeAddr               string
	RateLimit               *int
	RateBurst               *int
	TrustProxy              *bool
	LogLevel                string
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Scan: ScanRuntimeConfig{
			TimeoutSecs:             defaultTimeoutSeconds,
			FollowRedirects:         true,
			CheckContentTypeOptions: true,
			ExpiryWarningDays:       consts.ExpiryWarningDays,
		},
		Serve: ServeRuntimeConfig{
			Addr:            defaultServeAddr,
			RateLimit:       defaultRateLimit,
			RateBurst:       defaultRateBurst,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Log: LogConfig{Level: defaultLogLevel},
	}
}

func loadConfigOverrides(v *viper.Viper) configOverrides {
	overrides := configOverrides{}

	if v.IsSet("scan.timeout_secs") {
		val := v.GetInt("scan.timeout_secs")
		overrides.TimeoutSecs = &val
	}
	if v.IsSet("scan.follow_redirects") {
		val := v.GetBool("scan.follow_redirects")
		overrides.FollowRedirects = &val
	}
	if v.IsSet("scan.check_content_type_options") {
		val := v.GetBool("scan.check_content_type_options")
		overrides.CheckContentTypeOptions = &val
	}
	if v.IsSet("scan.expiry_warning_days") {
		val := v.GetInt("scan.expiry_warning_days")
		overrides.ExpiryWarningDays = &val
	}
	if v.IsSet("serve.addr") {
		overrides.ServeAddr = v.GetString("serve.addr")
	}
	if v.IsSet("serve.rate_limit") {
		val := v.GetInt("serve.rate_limit")
		overrides.RateLimit = &val
	}
	if v.IsSet("serve.rate_burst") {
		val := v.GetInt("serve.rate_burst")
		overrides.RateBurst = &val
	}
	if v.IsSet("serve.trust_proxy") {
		val := v.GetBool("serve.trust_proxy")
		overrides.TrustProxy = &val
	}
	if v.IsSet("log.level") {
		overrides.LogLevel = v.GetString("log.level")
	}

	return overrides
}

// applyConfigDefaults merges config file and environment values into the
// runtime config when the user did not explicitly set the corresponding flag.
func applyConfigDefaults(v *viper.Viper, cfg *CLIConfig) {
	overrides := loadConfigOverrides(v)
	persistent := rootCmd.PersistentFlags()
	serveFlags := serveCmd.Flags()

	if overrides.TimeoutSecs != nil {
		applyIntDefault(persistent, "timeout", *overrides.TimeoutSecs, func(v int) {
			cfg.Scan.TimeoutSecs = v
		})
	}
	if overrides.FollowRedirects != nil {
		applyBoolDefault(persistent, "follow-redirects", *overrides.FollowRedirects, func(v bool) {
			cfg.Scan.FollowRedirects = v
		})
	}
	if overrides.CheckContentTypeOptions != nil {
		applyBoolDefault(persistent, "check-nosniff", *overrides.CheckContentTypeOptions, func(v bool) {
			cfg.Scan.CheckContentTypeOptions = v
		})
	}
	if overrides.ExpiryWarningDays != nil {
		applyIntDefault(persistent, "expiry-warning-days", *overrides.ExpiryWarningDays, func(v int) {
			cfg.Scan.ExpiryWarningDays = v
		})
	}
	if overrides.ServeAddr != "" {
		applyStringDefault(serveFlags, "addr", overrides.ServeAddr, func(v string) {
			cfg.Serve.Addr = v
		})
	}
	if overrides.RateLimit != nil {
		applyIntDefault(serveFlags, "rate-limit", *overrides.RateLimit, func(v int) {
			cfg.Serve.RateLimit = v
		})
	}
	if overrides.RateBurst != nil {
		applyIntDefault(serveFlags, "rate-burst", *overrides.RateBurst, func(v int) {
			cfg.Serve.RateBurst = v
		})
	}
	if overrides.TrustProxy != nil {
		applyBoolDefault(serveFlags, "trust-proxy", *overrides.TrustProxy, func(v bool) {
			cfg.Serve.TrustProxy = v
		})
	}
	if overrides.LogLevel != "" {
		applyStringDefault(persistent, "log-level", overrides.LogLevel, func(v string) {
			cfg.Log.Level = v
		})
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

// validateScanConfig rejects probe settings outside the supported bounds.
func validateScanConfig(cfg ScanRuntimeConfig) error {
	minSecs := int(consts.MinProbeTimeout / time.Second)
	maxSecs := int(consts.MaxProbeTimeout / time.Second)
	if cfg.TimeoutSecs < minSecs || cfg.TimeoutSecs > maxSecs {
		return &InvalidConfigError{
			Key:    "timeout",
			Reason: fmt.Sprintf("must be between %d and %d seconds, got %d", minSecs, maxSecs, cfg.TimeoutSecs),
		}
	}
	if cfg.ExpiryWarningDays < 1 {
		return &InvalidConfigError{
			Key:    "expiry-warning-days",
			Reason: fmt.Sprintf("must be positive, got %d", cfg.ExpiryWarningDays),
		}
	}
	return nil
}

// checkerConfig converts the CLI settings into the inspector configuration.
func (c ScanRuntimeConfig) checkerConfig() checker.Config {
	cfg := checker.DefaultConfig()
	cfg.Timeout = time.Duration(c.TimeoutSecs) * time.Second
	cfg.FollowRedirects = c.FollowRedirects
	cfg.CheckContentTypeOptions = c.CheckContentTypeOptions
	cfg.ExpiryWarningDays = c.ExpiryWarningDays
	cfg.UserAgent = "sitecheck/" + Version
	return cfg
}

func registerScanFlags(cmd *cobra.Command, cfg *ScanRuntimeConfig) {
	flags := cmd.PersistentFlags()
	flags.IntVar(&cfg.TimeoutSecs, "timeout", cfg.TimeoutSecs, "Per-probe network timeout in seconds")
	flags.BoolVar(&cfg.FollowRedirects, "follow-redirects", cfg.FollowRedirects, "Follow redirects before inspecting headers")
	flags.BoolVar(&cfg.CheckContentTypeOptions, "check-nosniff", cfg.CheckContentTypeOptions, "Require the X-Content-Type-Options header")
	flags.IntVar(&cfg.ExpiryWarningDays, "expiry-warning-days", cfg.ExpiryWarningDays, "Warn when the certificate expires within this many days")
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfgFile string
var logger *zap.SugaredLogger

// AppContext carries per-invocation dependencies into subcommands.
type AppContext struct {
	Logger *zap.Logger
	Config *CLIConfig
}

type appContextKey struct{}

var globalAppContext *AppContext

var rootCmd = &cobra.Command{
	Use:   "sitecheck",
	Short: "Website security self-assessment: HTTPS, certificate, headers and cookies",
	Long: `sitecheck inspects a single website and reports whether it follows basic
transport security practices: HTTPS usage, certificate validity, standard
security response headers and cookie attributes.

Only scan sites you own or are authorized to assess.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = initApp

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sitecheck.yaml)")
	rootCmd.PersistentFlags().BoolVar(&cliConfig.Log.Debug, "debug", false, "Enable development logging")
	rootCmd.PersistentFlags().StringVar(&cliConfig.Log.Level, "log-level", cliConfig.Log.Level, "Log level (debug, info, warn, error)")
	registerScanFlags(rootCmd, &cliConfig.Scan)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

func initApp(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if err := loadConfigFile(v, cfgFile); err != nil {
		return err
	}
	applyConfigDefaults(v, cliConfig)

	l, err := newLogger(cliConfig.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger = l.Sugar()
	logger.Debugw("configuration loaded", "config_file", v.ConfigFileUsed())

	storeAppContext(cmd, &AppContext{Logger: l, Config: cliConfig})
	return nil
}

// loadConfigFile reads the YAML config and enables SITECHECK_* environment
// overrides. A missing default config file is not an error.
func loadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("$HOME")
		v.SetConfigName(".sitecheck")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SITECHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func newLogger(cfg LogConfig) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func storeAppContext(cmd *cobra.Command, appCtx *AppContext) {
	globalAppContext = appCtx
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, appCtx))
}

func getAppContext(cmd *cobra.Command) *AppContext {
	if ctx := cmd.Context(); ctx != nil {
		if appCtx, ok := ctx.Value(appContextKey{}).(*AppContext); ok {
			return appCtx
		}
	}
	if globalAppContext != nil {
		return globalAppContext
	}
	return &AppContext{Logger: zap.NewNop(), Config: newCLIConfig()}
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/getlawrence/prdgate/internal/backlog"
	"github.com/getlawrence/prdgate/internal/config"
	"github.com/getlawrence/prdgate/internal/logger"
	"github.com/spf13/cobra"
)

type contextKey string

// Context key for configuration
const configKey contextKey = "config"

// AppConfig holds all the shared configuration and dependencies
type AppConfig struct {
	Config *config.Config
	Logger logger.Logger
	Reader *backlog.Reader

	zap *logger.ZapLogger
}

// Close flushes the logger
func (a *AppConfig) Close() {
	if a.zap != nil {
		_ = a.zap.Sync()
	}
}

func appConfigFrom(cmd *cobra.Command) *AppConfig {
	if cmd.Context() == nil {
		return nil
	}
	app, _ := cmd.Context().Value(configKey).(*AppConfig)
	return app
}

// loadAppConfig fills the AppConfig stored in the command context
func loadAppConfig(cmd *cobra.Command, args []string) error {
	app := appConfigFrom(cmd)
	if app == nil {
		return fmt.Errorf("command context is missing app config")
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cmd.Context(), configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Output = strings.ToLower(output)
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cfg.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	zl, err := logger.NewZapLogger(cfg.LogLevel, verbose)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		zl.Debugf("loaded config from %s", cfg.Path)
	}

	app.Config = cfg
	app.Logger = zl
	app.Reader = backlog.NewReader(zl)
	app.Reader.Stdin = cmd.InOrStdin()
	app.zap = zl
	return nil
}

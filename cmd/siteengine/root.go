package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/siteengine"
)

type cli struct {
	cfgFile string
	verbose bool
	cfg     siteengine.SiteConfig
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "siteengine",
		Short:         "Agency marketing site with an admin panel and AI tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(c), newSeedCmd(c), newVersionCmd())
	return root
}

// envKeys maps config keys to the environment variables that override them.
var envKeys = map[string]string{
	"name":           "SITEENGINE_NAME",
	"url":            "SITEENGINE_URL",
	"description":    "SITEENGINE_DESCRIPTION",
	"author":         "SITEENGINE_AUTHOR",
	"addr":           "SITEENGINE_ADDR",
	"persistence":    "SITEENGINE_PERSISTENCE",
	"databasePath":   "SITEENGINE_DATABASE_PATH",
	"postgresDSN":    "SITEENGINE_POSTGRES_DSN",
	"blob":           "SITEENGINE_BLOB",
	"uploadsDir":     "SITEENGINE_UPLOADS_DIR",
	"s3.bucket":      "SITEENGINE_S3_BUCKET",
	"s3.region":      "SITEENGINE_S3_REGION",
	"s3.endpoint":    "SITEENGINE_S3_ENDPOINT",
	"s3.pathStyle":   "SITEENGINE_S3_PATH_STYLE",
	"s3.prefix":      "SITEENGINE_S3_PREFIX",
	"genAIAPIKey":    "SITEENGINE_GENAI_API_KEY",
	"genAIModel":     "SITEENGINE_GENAI_MODEL",
	"imageModel":     "SITEENGINE_IMAGE_MODEL",
	"feedbackDelay":  "SITEENGINE_FEEDBACK_DELAY",
	"allowedOrigins": "SITEENGINE_ALLOWED_ORIGINS",
	"adminPassword":  "SITEENGINE_ADMIN_PASSWORD",
	"sessionSecret":  "SITEENGINE_SESSION_SECRET",
	"cookieSecure":   "SITEENGINE_COOKIE_SECURE",
	"toolRateLimit":  "SITEENGINE_TOOL_RATE_LIMIT",
	"toolRateWindow": "SITEENGINE_TOOL_RATE_WINDOW",
}

func (c *cli) init() error {
	logger, err := newLogger(c.verbose)
	if err != nil {
		return err
	}
	c.logger = logger

	v := viper.New()
	if c.cfgFile != "" {
		v.SetConfigFile(c.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("SITEENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || c.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Debug("no config file found, using defaults and environment")
	} else {
		logger.Info("using config file", zap.String("path", v.ConfigFileUsed()))
	}

	if err := v.Unmarshal(&c.cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	// Comma separated origins from the environment arrive as one string.
	if len(c.cfg.AllowedOrigins) == 1 {
		c.cfg.AllowedOrigins = siteengine.SplitList(c.cfg.AllowedOrigins[0])
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the siteengine version",
		// The version needs no configuration.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "siteengine %s\n", version)
		},
	}
}

// Package cmd provides the command-line interface for unidom.
//
// Configuration System:
//
//	Settings are read from several sources, highest priority first:
//	1. Command-line flags (--output, --strict, ...)
//	2. Individual environment variables (UNIDOM_BUILD_OUTPUT_DIR, ...)
//	3. The configuration file: --config, then UNIDOM_CONFIG_FILE, then
//	   .unidom.yml in the working directory or the project root
//	4. Built-in defaults
//
// Environment Variables:
//
//	UNIDOM_CONFIG_FILE: Path to a configuration file
//	UNIDOM_BUILD_OUTPUT_DIR: Override the build directory
//	UNIDOM_COMPILER_STRICT: Fail on unbalanced braces
//	And the rest following the UNIDOM_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/unidom/internal/config"
	"github.com/conneroisu/unidom/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configName = ".unidom"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "unidom",
	Short: "Compile brace-annotated markup into static HTML and a bootstrap script",
	Long: `unidom compiles an application root document and its components into
static markup plus a script that mounts the extracted behavior at runtime.

Closures are written inline as {expression} or inside a <script> child.
They are removed from the markup and recorded in an execution tree that
mirrors the element structure.

Quick Start:
  unidom build                    Build the project in the working directory
  unidom watch                    Rebuild on every change under src/
  unidom inspect --format table   Show the execution tree and components
  unidom config show              Show the effective configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .unidom.yml, can also use UNIDOM_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig points viper at the configuration file and enables
// UNIDOM_ environment overrides. A missing default file is not an error;
// the project root is searched again once it is known.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("UNIDOM_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(configName)
	}

	viper.SetEnvPrefix("UNIDOM")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	_ = viper.ReadInConfig()
}

// newLogger builds the command logger from the persistent flags.
func newLogger(cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	format := viper.GetString("log-format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("unsupported log format: %s (supported: text, json)", format)
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    format,
		Output:    cmd.ErrOrStderr(),
		Component: "cli",
	}), nil
}

// loadProject resolves the project root from args, reads its
// configuration and logs validation warnings.
func loadProject(ctx context.Context, args []string, logger logging.Logger) (*config.Config, error) {
	v := viper.GetViper()
	config.SetDefaults(v)

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	root, err := config.ResolveRoot(arg, v.GetString("source.dir"))
	if err != nil {
		return nil, err
	}

	if v.ConfigFileUsed() == "" {
		if path := filepath.Join(root, configName+".yml"); fileExists(path) {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		if !fileExists(used) {
			return nil, fmt.Errorf("config file not found: %s", used)
		}
		logger.Debug(ctx, "Using config file", "path", used)
	}

	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, err
	}
	cfg.RootDir = root

	for _, w := range config.ValidateConfigWithDetails(cfg).Warnings {
		logger.Warn(ctx, nil, w.Message, "field", w.Field)
	}
	return cfg, nil
}

// commandContext returns the command's context, which is unset when a run
// function is called directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

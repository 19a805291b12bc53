package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/conneroisu/unidom/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect unidom configuration",
	Long: `Inspect unidom configuration files and settings.

Examples:
  unidom config validate                        # Validate .unidom.yml in the project
  unidom config validate --file site.yml        # Validate a specific file
  unidom config show                            # Show the effective configuration`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [root]",
	Short: "Validate a configuration file",
	Long: `Validate a unidom configuration file and report errors and warnings.

This command checks for:
- Relative, traversal-free source and output paths
- An output directory that does not contain the sources
- Valid element names for the behavior, template and root tags
- A known component collision policy
- Valid glob patterns

Examples:
  unidom config validate                        # Validate .unidom.yml
  unidom config validate --file site.yml        # Validate a specific file
  unidom config validate --strict               # Treat warnings as errors`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show [root]",
	Short: "Show the effective configuration",
	Long: `Display the configuration after loading the configuration file, applying
UNIDOM_ environment overrides and filling defaults.

Examples:
  unidom config show                  # Show as YAML
  unidom config show --format json    # Show as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigShow,
}

var (
	configFile   string
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: .unidom.yml in the project root)")
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")

	choiceFlag(configShowCmd.Flags(), &configFormat, "format", "", "yaml", "Output format", "yaml", "json")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	targetFile := configFile
	if targetFile == "" {
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}
		root, err := config.ResolveRoot(arg, "src")
		if err != nil {
			return err
		}
		targetFile = filepath.Join(root, configName+".yml")
	}
	if !fileExists(targetFile) {
		return fmt.Errorf("configuration file %s does not exist", targetFile)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🔍 Validating configuration file: %s\n", targetFile)

	v := viper.New()
	v.SetConfigFile(targetFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}
	config.SetDefaults(v)

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	validation := config.ValidateConfigWithDetails(&cfg)
	if validation.Valid && !validation.HasWarnings() {
		fmt.Fprintln(out, "✅ Configuration is valid!")
		return nil
	}

	fmt.Fprint(out, validation.String())
	if validation.HasErrors() {
		return fmt.Errorf("configuration validation failed with %d errors", len(validation.Errors))
	}
	if configStrict {
		return fmt.Errorf("configuration validation failed in strict mode with %d warnings", len(validation.Warnings))
	}

	fmt.Fprintf(out, "✅ Configuration is valid with %d warnings. Use --strict to treat warnings as errors.\n",
		len(validation.Warnings))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadProject(commandContext(cmd), args, logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return writeConfig(cmd.OutOrStdout(), cfg, configFormat)
}

func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return errors.New("unsupported format: " + format + " (supported: yaml, json)")
	}
}

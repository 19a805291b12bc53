// Package config provides configuration management for unidom using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the UNIDOM_ prefix, defaults, and validation. It covers the
// source layout of a project, the build output, the compiler's tag names and
// strictness, the component collision policy and the watch debounce.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Source     SourceConfig     `mapstructure:"source" yaml:"source" json:"source"`
	Build      BuildConfig      `mapstructure:"build" yaml:"build" json:"build"`
	Compiler   CompilerConfig   `mapstructure:"compiler" yaml:"compiler" json:"compiler"`
	Components ComponentsConfig `mapstructure:"components" yaml:"components" json:"components"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch" json:"watch"`
	RootDir    string           `mapstructure:"-" yaml:"-" json:"-"` // CLI argument, not from config file
}

type SourceConfig struct {
	Dir           string `mapstructure:"dir" yaml:"dir" json:"dir"`
	RootDocument  string `mapstructure:"root_document" yaml:"root_document" json:"root_document"`
	ComponentsDir string `mapstructure:"components_dir" yaml:"components_dir" json:"components_dir"`
}

type BuildConfig struct {
	OutputDir      string   `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	RuntimeLibrary string   `mapstructure:"runtime_library" yaml:"runtime_library" json:"runtime_library"`
	RuntimeGlobal  string   `mapstructure:"runtime_global" yaml:"runtime_global" json:"runtime_global"`
	Minify         bool     `mapstructure:"minify" yaml:"minify" json:"minify"`
	MinifyHTML     bool     `mapstructure:"minify_html" yaml:"minify_html" json:"minify_html"`
	Manifest       bool     `mapstructure:"manifest" yaml:"manifest" json:"manifest"`
	Ignore         []string `mapstructure:"ignore" yaml:"ignore" json:"ignore"`
}

type CompilerConfig struct {
	BehaviorTag  string `mapstructure:"behavior_tag" yaml:"behavior_tag" json:"behavior_tag"`
	TemplateTag  string `mapstructure:"template_tag" yaml:"template_tag" json:"template_tag"`
	RootSelector string `mapstructure:"root_selector" yaml:"root_selector" json:"root_selector"`
	RootContext  string `mapstructure:"root_context" yaml:"root_context" json:"root_context"`
	Strict       bool   `mapstructure:"strict" yaml:"strict" json:"strict"`
}

type ComponentsConfig struct {
	Collision       string   `mapstructure:"collision" yaml:"collision" json:"collision"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

// SetDefaults registers the default value of every key on v, so that
// environment overrides apply to keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.dir", "src")
	v.SetDefault("source.root_document", "app.uni")
	v.SetDefault("source.components_dir", "components")

	v.SetDefault("build.output_dir", "build")
	v.SetDefault("build.runtime_library", "")
	v.SetDefault("build.runtime_global", "uniDOM")
	v.SetDefault("build.minify", true)
	v.SetDefault("build.minify_html", false)
	v.SetDefault("build.manifest", true)
	v.SetDefault("build.ignore", []string{".git", "**/.DS_Store"})

	v.SetDefault("compiler.behavior_tag", "script")
	v.SetDefault("compiler.template_tag", "template")
	v.SetDefault("compiler.root_selector", "body")
	v.SetDefault("compiler.root_context", "document.body")
	v.SetDefault("compiler.strict", false)

	v.SetDefault("components.collision", "last-wins")
	v.SetDefault("components.exclude_patterns", []string{"*.bak", ".*"})

	v.SetDefault("watch.debounce", 300*time.Millisecond)
}

// Load reads the global viper instance into a validated Config.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads v into a validated Config.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set via environment variables (viper keeps them as one
	// space separated string)
	if v.IsSet("build.ignore") {
		config.Build.Ignore = v.GetStringSlice("build.ignore")
	}
	if v.IsSet("components.exclude_patterns") {
		config.Components.ExcludePatterns = v.GetStringSlice("components.exclude_patterns")
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	config, err := LoadFrom(viper.New())
	if err != nil {
		// defaults always validate
		panic(err)
	}
	return config
}

// SourcePath returns the source directory.
func (c *Config) SourcePath() string {
	return filepath.Join(c.RootDir, c.Source.Dir)
}

// RootDocumentPath returns the application root document.
func (c *Config) RootDocumentPath() string {
	return filepath.Join(c.SourcePath(), c.Source.RootDocument)
}

// ComponentsPath returns the components directory.
func (c *Config) ComponentsPath() string {
	return filepath.Join(c.SourcePath(), c.Source.ComponentsDir)
}

// OutputPath returns the build directory. An absolute output_dir is used
// as is.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Build.OutputDir) {
		return c.Build.OutputDir
	}
	return filepath.Join(c.RootDir, c.Build.OutputDir)
}

// validateConfig returns the first error ValidateConfigWithDetails reports.
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if result.HasErrors() {
		return &result.Errors[0]
	}
	return nil
}

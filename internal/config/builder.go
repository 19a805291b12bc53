package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ConfigBuilder provides a fluent interface for building configurations
// programmatically, starting from the defaults.
//
// Usage:
//
//	config, err := NewConfigBuilder().
//	    WithRootDir(dir).
//	    WithStrict(true).
//	    Build()
type ConfigBuilder struct {
	config     *Config
	validators []ValidatorFunc
}

// ValidatorFunc represents a configuration validation function
type ValidatorFunc func(*Config) error

// NewConfigBuilder creates a new configuration builder with the defaults
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config:     Default(),
		validators: []ValidatorFunc{},
	}
}

// FromViper replaces the current settings with those held by v.
func (cb *ConfigBuilder) FromViper(v *viper.Viper) *ConfigBuilder {
	SetDefaults(v)
	var viperConfig Config
	if err := v.Unmarshal(&viperConfig); err == nil {
		viperConfig.RootDir = cb.config.RootDir
		cb.config = &viperConfig
	}
	return cb
}

// WithRootDir sets the project root.
func (cb *ConfigBuilder) WithRootDir(dir string) *ConfigBuilder {
	cb.config.RootDir = dir
	return cb
}

// WithSource sets the source directory layout.
func (cb *ConfigBuilder) WithSource(dir, rootDocument, componentsDir string) *ConfigBuilder {
	cb.config.Source = SourceConfig{
		Dir:           dir,
		RootDocument:  rootDocument,
		ComponentsDir: componentsDir,
	}
	return cb
}

// WithOutputDir sets the build directory.
func (cb *ConfigBuilder) WithOutputDir(dir string) *ConfigBuilder {
	cb.config.Build.OutputDir = dir
	return cb
}

// WithRuntimeLibrary sets the runtime library copied into the build.
func (cb *ConfigBuilder) WithRuntimeLibrary(path string) *ConfigBuilder {
	cb.config.Build.RuntimeLibrary = path
	return cb
}

// WithMinify toggles script and markup minification.
func (cb *ConfigBuilder) WithMinify(script, markup bool) *ConfigBuilder {
	cb.config.Build.Minify = script
	cb.config.Build.MinifyHTML = markup
	return cb
}

// WithManifest toggles build-manifest.json.
func (cb *ConfigBuilder) WithManifest(enabled bool) *ConfigBuilder {
	cb.config.Build.Manifest = enabled
	return cb
}

// WithIgnore sets the resource ignore globs.
func (cb *ConfigBuilder) WithIgnore(patterns ...string) *ConfigBuilder {
	cb.config.Build.Ignore = patterns
	return cb
}

// WithStrict toggles strict closure scanning.
func (cb *ConfigBuilder) WithStrict(strict bool) *ConfigBuilder {
	cb.config.Compiler.Strict = strict
	return cb
}

// WithTags sets the behavior and template tag names.
func (cb *ConfigBuilder) WithTags(behavior, template string) *ConfigBuilder {
	cb.config.Compiler.BehaviorTag = behavior
	cb.config.Compiler.TemplateTag = template
	return cb
}

// WithCollision sets the component collision policy.
func (cb *ConfigBuilder) WithCollision(policy string) *ConfigBuilder {
	cb.config.Components.Collision = policy
	return cb
}

// WithExcludePatterns sets the component exclude globs.
func (cb *ConfigBuilder) WithExcludePatterns(patterns ...string) *ConfigBuilder {
	cb.config.Components.ExcludePatterns = patterns
	return cb
}

// WithDebounce sets the watch debounce.
func (cb *ConfigBuilder) WithDebounce(d time.Duration) *ConfigBuilder {
	cb.config.Watch.Debounce = d
	return cb
}

// AddValidator adds a custom validation function
func (cb *ConfigBuilder) AddValidator(validator ValidatorFunc) *ConfigBuilder {
	cb.validators = append(cb.validators, validator)
	return cb
}

// Build creates the final configuration after running all validations
func (cb *ConfigBuilder) Build() (*Config, error) {
	for _, validator := range cb.validators {
		if err := validator(cb.config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	if err := validateConfig(cb.config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cb.config, nil
}

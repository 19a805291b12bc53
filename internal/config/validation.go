package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/conneroisu/unidom/internal/registry"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    - %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    - %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateSourceConfigDetails(&config.Source, result)
	validateBuildConfigDetails(&config.Build, result)
	validateCompilerConfigDetails(&config.Compiler, result)
	validateComponentsConfigDetails(&config.Components, result)

	if overlaps(config.Build.OutputDir, config.Source.Dir) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "build.output_dir",
			Value:   config.Build.OutputDir,
			Message: "output directory cannot contain the source directory, it is emptied before every build",
			Suggestions: []string{
				"Keep output and sources in sibling directories such as 'build' and 'src'",
			},
		})
	}

	if config.Watch.Debounce < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "watch.debounce",
			Value:   config.Watch.Debounce,
			Message: "debounce cannot be negative",
			Suggestions: []string{
				"Use a value such as '300ms'",
			},
		})
	}

	result.Valid = !result.HasErrors()

	return result
}

func validateSourceConfigDetails(config *SourceConfig, result *ValidationResult) {
	fields := []struct {
		name  string
		value string
	}{
		{"source.dir", config.Dir},
		{"source.root_document", config.RootDocument},
		{"source.components_dir", config.ComponentsDir},
	}

	for _, f := range fields {
		if err := validatePath(f.value); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   f.name,
				Value:   f.value,
				Message: err.Error(),
				Suggestions: []string{
					"Use a path relative to the project root",
					"Avoid parent directory references (..)",
				},
			})
			continue
		}
		if filepath.IsAbs(f.value) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   f.name,
				Value:   f.value,
				Message: "path must be relative",
				Suggestions: []string{
					"Source locations are resolved against the project root",
				},
			})
		}
	}
}

func validateBuildConfigDetails(config *BuildConfig, result *ValidationResult) {
	if err := validatePath(config.OutputDir); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "build.output_dir",
			Value:   config.OutputDir,
			Message: err.Error(),
			Suggestions: []string{
				"Use 'build' for the default layout",
				"Avoid parent directory references (..)",
			},
		})
	} else if filepath.Clean(config.OutputDir) == "." {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "build.output_dir",
			Value:   config.OutputDir,
			Message: "output directory cannot be the project root, it is emptied before every build",
			Suggestions: []string{
				"Use a dedicated directory such as 'build'",
			},
		})
	}

	if config.RuntimeLibrary == "" {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "build.runtime_library",
			Value:   config.RuntimeLibrary,
			Message: "no runtime library configured, unidom.js will not be written",
			Suggestions: []string{
				"Point runtime_library at the packaged uniDOM.js",
			},
		})
	}

	if !isIdentifier(config.RuntimeGlobal) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "build.runtime_global",
			Value:   config.RuntimeGlobal,
			Message: "runtime global must be a JavaScript identifier",
			Suggestions: []string{
				"Use 'uniDOM' for the packaged runtime",
			},
		})
	}

	if !config.Minify {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "build.minify",
			Value:   config.Minify,
			Message: "minification disabled, main.js is not syntax checked",
		})
	}

	if config.MinifyHTML {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "build.minify_html",
			Value:   config.MinifyHTML,
			Message: "markup minification can drop whitespace between block elements, which shifts sibling indices",
			Suggestions: []string{
				"Check the built page before enabling this for production",
			},
		})
	}

	validatePatterns("build.ignore", config.Ignore, result)
}

func validateCompilerConfigDetails(config *CompilerConfig, result *ValidationResult) {
	tags := []struct {
		name  string
		value string
	}{
		{"compiler.behavior_tag", config.BehaviorTag},
		{"compiler.template_tag", config.TemplateTag},
		{"compiler.root_selector", config.RootSelector},
	}

	for _, tag := range tags {
		if !tagNameRegex.MatchString(strings.ToLower(tag.value)) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   tag.name,
				Value:   tag.value,
				Message: fmt.Sprintf("%q is not a valid element name", tag.value),
				Suggestions: []string{
					"Element names start with a letter and contain letters, digits or '-'",
				},
			})
		}
	}

	if strings.EqualFold(config.BehaviorTag, config.TemplateTag) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "compiler.behavior_tag",
			Value:   config.BehaviorTag,
			Message: "behavior tag and template tag must differ",
		})
	}

	if config.RootContext == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "compiler.root_context",
			Value:   config.RootContext,
			Message: "root context cannot be empty",
			Suggestions: []string{
				"Use 'document.body' to mount on the page body",
			},
		})
	}
}

func validateComponentsConfigDetails(config *ComponentsConfig, result *ValidationResult) {
	if _, err := registry.ParseCollisionPolicy(config.Collision); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "components.collision",
			Value:   config.Collision,
			Message: err.Error(),
			Suggestions: []string{
				"'last-wins' keeps the file listed last",
				"'first-wins' keeps the file listed first",
				"'reject' fails the build",
			},
		})
	}

	validatePatterns("components.exclude_patterns", config.ExcludePatterns, result)
}

func validatePatterns(field string, patterns []string, result *ValidationResult) {
	for i, pattern := range patterns {
		if _, err := doublestar.Match(pattern, ""); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}
}

// Helper validation functions

var (
	tagNameRegex    = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	identifierRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// overlaps reports whether the relative directory outer equals or contains
// inner.
func overlaps(outer, inner string) bool {
	if outer == "" || inner == "" || filepath.IsAbs(outer) {
		return false
	}
	o := filepath.ToSlash(filepath.Clean(outer))
	i := filepath.ToSlash(filepath.Clean(inner))
	return o == i || strings.HasPrefix(i, o+"/")
}

func isIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("path contains traversal: %s", path)
		}
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/conneroisu/unidom/internal/compiler"
	"github.com/conneroisu/unidom/internal/errors"
	"github.com/conneroisu/unidom/internal/registry"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ComponentName returns the registry key of a component file: its base
// name up to the first dot, lower-cased. "Nav.min.html" is "nav".
func ComponentName(file string) string {
	name, _, _ := strings.Cut(filepath.Base(file), ".")
	return cases.Lower(language.Und).String(name)
}

// BuildComponentMap compiles every component file directly inside dir. A
// missing directory yields an empty registry. Files are compiled in
// directory-listing order and name collisions follow the configured policy.
func (p *Pipeline) BuildComponentMap(ctx context.Context, dir string) (*registry.ComponentRegistry, error) {
	ctx, span := p.tracer.Start(ctx, "unidom.components")
	defer span.End()

	policy, err := registry.ParseCollisionPolicy(p.config.Components.Collision)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, err.Error())
	}
	components := registry.NewComponentRegistry(policy)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		p.logger.Debug(ctx, "No components directory", "dir", dir)
		p.cache.Clear()
		return components, nil
	}
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileRead, "reading components directory", err).WithFile(dir)
	}

	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || p.excluded(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		seen[path] = true
		name := ComponentName(entry.Name())
		if name == "" {
			p.warn(ctx, path, "", "component file has no name, skipping")
			continue
		}

		component, err := p.compileComponent(ctx, name, path)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		outcome, err := components.Register(component)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if outcome != registry.OutcomeAdded {
			p.warn(ctx, path, name, fmt.Sprintf("component name collision, %s entry %s (policy %s)", outcome, name, policy))
		}
	}

	p.cache.Retain(seen)
	p.checkCycles(ctx, components)

	stats := p.cache.Stats()
	span.SetAttributes(
		attribute.Int("unidom.components", components.Count()),
		attribute.Int64("unidom.cache.hits", stats.Hits),
	)
	p.logger.Debug(ctx, "Built component map", "dir", dir, "components", components.Count())
	return components, nil
}

func (p *Pipeline) compileComponent(ctx context.Context, name, path string) (*registry.ComponentEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileRead, "reading component", err).
			WithComponent(name).
			WithFile(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileRead, "reading component", err).
			WithComponent(name).
			WithFile(path)
	}

	res, err := p.compileCached(ctx, name, path, content)
	if err != nil {
		return nil, err
	}

	return &registry.ComponentEntry{
		Name:          name,
		FilePath:      path,
		LastMod:       info.ModTime(),
		ExecutionTree: res.Tree,
		Markup:        res.Markup,
	}, nil
}

// compileCached reuses the previous compilation of path when its content is
// unchanged, replaying the diagnostics it raised.
func (p *Pipeline) compileCached(ctx context.Context, name, path string, content []byte) (*compiler.Result, error) {
	hash := p.cache.Hash(content)
	if res, diags, ok := p.cache.Get(path, hash); ok {
		for _, d := range diags {
			p.collector.Add(d)
		}
		p.logger.Debug(ctx, "Component unchanged", "component", name)
		return res, nil
	}

	before := len(p.collector.Diagnostics())
	res, err := p.compiler.CompileComponent(ctx, compiler.Source{Name: name, Path: path, Content: string(content)})
	if err != nil {
		return nil, err
	}
	p.cache.Set(path, hash, res, p.collector.Diagnostics()[before:])
	return res, nil
}

func (p *Pipeline) excluded(name string) bool {
	for _, pattern := range p.config.Components.ExcludePatterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// checkCycles warns about components that mount each other.
func (p *Pipeline) checkCycles(ctx context.Context, components *registry.ComponentRegistry) {
	cycles, err := registry.NewDependencyAnalyzer(components).DetectCircularDependencies()
	if err != nil {
		p.logger.Warn(ctx, err, "Dependency analysis failed")
		return
	}
	for _, cycle := range cycles {
		p.warn(ctx, "", cycle[0], "circular component dependency: "+strings.Join(cycle, " -> "))
	}
}

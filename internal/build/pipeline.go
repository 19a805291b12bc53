// Package build turns a unidom project into its deployable artifacts.
//
// A Pipeline compiles the application root document and every component
// file, composes the bootstrap script, minifies it and only then replaces
// the contents of the output directory. A failure at any stage before
// writing leaves the previous build untouched.
package build

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/conneroisu/unidom/internal/bootstrap"
	"github.com/conneroisu/unidom/internal/compiler"
	"github.com/conneroisu/unidom/internal/config"
	"github.com/conneroisu/unidom/internal/errors"
	"github.com/conneroisu/unidom/internal/logging"
	"github.com/conneroisu/unidom/internal/registry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Output file names.
const (
	MarkupFile  = "index.html"
	ScriptFile  = "main.js"
	RuntimeFile = "unidom.js"
)

const tracerName = "github.com/conneroisu/unidom/internal/build"

// Artifacts are the in-memory results of one compilation.
type Artifacts struct {
	Markup      string
	Script      string
	Tree        *compiler.ExecutionTree
	Components  *registry.ComponentRegistry
	Diagnostics []errors.Diagnostic
}

// BuildResult describes a finished build, successful or not.
type BuildResult struct {
	Artifacts *Artifacts
	Manifest  *Manifest
	// Files lists the written files relative to the output directory.
	Files    []string
	Duration time.Duration
	Finished time.Time
	Error    error
}

// Pipeline runs builds for one configured project. It is not safe for
// concurrent use; watch mode runs its builds one after another.
type Pipeline struct {
	config    *config.Config
	compiler  *compiler.Compiler
	assembler bootstrap.Assembler
	optimizer *AssetOptimizer
	logger    logging.Logger
	collector *errors.ErrorCollector
	cache     *ComponentCache
	metrics   *BuildMetrics
	tracer    trace.Tracer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithAssembler replaces the runtime assembler.
func WithAssembler(a bootstrap.Assembler) Option {
	return func(p *Pipeline) { p.assembler = a }
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// NewPipeline creates a pipeline for cfg.
func NewPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:    cfg,
		optimizer: NewAssetOptimizer(),
		logger:    logging.NopLogger{},
		collector: errors.NewErrorCollector(),
		cache:     NewComponentCache(),
		metrics:   NewBuildMetrics(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.assembler == nil {
		p.assembler = bootstrap.NewRuntimeAssembler(cfg.Build.RuntimeGlobal)
	}

	p.compiler = compiler.New(compiler.Options{
		BehaviorTag: cfg.Compiler.BehaviorTag,
		TemplateTag: cfg.Compiler.TemplateTag,
		Strict:      cfg.Compiler.Strict,
		Logger:      p.logger.WithComponent("compiler"),
		Collector:   p.collector,
	})
	return p
}

// Metrics returns the metrics accumulated over every Build call.
func (p *Pipeline) Metrics() *BuildMetrics {
	return p.metrics
}

// CacheStats reports how often component compilations were reused.
func (p *Pipeline) CacheStats() CacheStats {
	return p.cache.Stats()
}

// Compile produces the static markup and bootstrap script of the project
// without touching the file system beyond reading sources.
func (p *Pipeline) Compile(ctx context.Context) (*Artifacts, error) {
	ctx, span := p.tracer.Start(ctx, "unidom.compile")
	defer span.End()

	p.collector.Clear()

	rootPath := p.config.RootDocumentPath()
	content, err := os.ReadFile(rootPath)
	if os.IsNotExist(err) {
		return nil, p.fail(span, errors.NewIOError(errors.ErrCodeRootNotFound, "root document not found", err).
			WithFile(rootPath))
	}
	if err != nil {
		return nil, p.fail(span, errors.NewIOError(errors.ErrCodeFileRead, "reading root document", err).
			WithFile(rootPath))
	}

	components, err := p.BuildComponentMap(ctx, p.config.ComponentsPath())
	if err != nil {
		return nil, p.fail(span, err)
	}

	doc, err := p.compiler.CompileDocument(ctx,
		compiler.Source{Name: p.config.Source.RootDocument, Path: rootPath, Content: string(content)},
		p.config.Compiler.RootSelector,
		p.config.Compiler.RootContext,
	)
	if err != nil {
		return nil, p.fail(span, err)
	}

	script, err := bootstrap.Compose(p.assembler, components, doc.Tree)
	if err != nil {
		return nil, p.fail(span, errors.NewBuildError(errors.ErrCodeInternalError, "composing bootstrap script", err))
	}

	artifacts := &Artifacts{
		Markup:      doc.Markup,
		Script:      script,
		Tree:        doc.Tree,
		Components:  components,
		Diagnostics: p.collector.Diagnostics(),
	}
	span.SetAttributes(
		attribute.Int("unidom.closures", doc.Tree.ClosureCount()),
		attribute.Int("unidom.warnings", len(artifacts.Diagnostics)),
	)
	return artifacts, nil
}

// Build compiles the project and replaces the output directory with the
// results. Every artifact is produced in memory before the output
// directory is emptied.
func (p *Pipeline) Build(ctx context.Context) (*BuildResult, error) {
	ctx, span := p.tracer.Start(ctx, "unidom.build")
	defer span.End()

	perf := logging.StartOperation(p.logger, "build")
	start := time.Now()

	result, err := p.build(ctx)
	if result == nil {
		result = &BuildResult{}
	}
	result.Finished = time.Now()
	result.Duration = result.Finished.Sub(start)
	result.Error = err
	p.metrics.RecordBuild(result)

	if err != nil {
		perf.EndWithError(ctx, err)
		return result, p.fail(span, err)
	}
	perf.End(ctx)

	span.SetAttributes(attribute.Int("unidom.files", len(result.Files)))
	p.logger.Info(ctx, "Build completed",
		"output", p.config.OutputPath(),
		"components", result.Artifacts.Components.Count(),
		"warnings", len(result.Artifacts.Diagnostics),
		"duration", result.Duration.String(),
	)
	return result, nil
}

func (p *Pipeline) build(ctx context.Context) (*BuildResult, error) {
	artifacts, err := p.Compile(ctx)
	if err != nil {
		return nil, err
	}
	result := &BuildResult{Artifacts: artifacts}

	script, markup, err := p.optimize(ctx, artifacts)
	if err != nil {
		return result, err
	}

	runtime, err := p.readRuntime(ctx)
	if err != nil {
		return result, err
	}

	writer := p.newWriter()
	if err := writer.Clean(); err != nil {
		return result, err
	}

	outputs := []output{
		{MarkupFile, []byte(markup)},
		{ScriptFile, []byte(script)},
	}
	if runtime != nil {
		outputs = append(outputs, output{RuntimeFile, runtime})
	}
	for _, out := range outputs {
		if err := writer.WriteFile(out.name, out.data); err != nil {
			return result, err
		}
		result.Files = append(result.Files, out.name)
	}

	copied, err := writer.CopyResources()
	if err != nil {
		return result, err
	}
	result.Files = append(result.Files, copied...)

	artifacts.Diagnostics = p.collector.Diagnostics()
	if p.config.Build.Manifest {
		result.Manifest = newManifest(artifacts, result.Files, p.config.Compiler.Strict, p.config.Build.Minify, time.Now())
		if err := writer.WriteJSON(ManifestFile, result.Manifest); err != nil {
			return result, err
		}
	}

	return result, nil
}

type output struct {
	name string
	data []byte
}

func (p *Pipeline) optimize(ctx context.Context, artifacts *Artifacts) (script, markup string, err error) {
	_, span := p.tracer.Start(ctx, "unidom.minify")
	defer span.End()

	script, markup = artifacts.Script, artifacts.Markup
	if p.config.Build.Minify {
		if script, err = p.optimizer.MinifyScript(script); err != nil {
			return "", "", p.fail(span, err)
		}
	}
	if p.config.Build.MinifyHTML {
		if markup, err = p.optimizer.MinifyMarkup(markup); err != nil {
			return "", "", p.fail(span, err)
		}
	}
	return script, markup, nil
}

// readRuntime loads the configured runtime library. With none configured
// it returns nil and the copy is skipped.
func (p *Pipeline) readRuntime(ctx context.Context) ([]byte, error) {
	lib := p.config.Build.RuntimeLibrary
	if lib == "" {
		p.warn(ctx, "", "", "no runtime library configured, "+RuntimeFile+" not written")
		return nil, nil
	}
	if !filepath.IsAbs(lib) {
		lib = filepath.Join(p.config.RootDir, lib)
	}
	data, err := os.ReadFile(lib)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileRead, "reading runtime library", err).WithFile(lib)
	}
	return data, nil
}

func (p *Pipeline) newWriter() *OutputWriter {
	return NewOutputWriter(
		p.config.OutputPath(),
		p.config.SourcePath(),
		[]string{p.config.Source.RootDocument, p.config.Source.ComponentsDir},
		p.config.Build.Ignore,
	)
}

// Clean empties the output directory and forgets cached components.
func (p *Pipeline) Clean(ctx context.Context) error {
	p.logger.Info(ctx, "Cleaning output directory", "output", p.config.OutputPath())
	p.cache.Clear()
	return p.newWriter().Clean()
}

// warn logs a build diagnostic and records it for the final report.
func (p *Pipeline) warn(ctx context.Context, file, component, msg string) {
	p.logger.Warn(ctx, nil, msg, "file", file, "component", component)
	p.collector.Add(errors.Diagnostic{
		Component: component,
		File:      file,
		Message:   msg,
		Severity:  errors.ErrorSeverityWarning,
	})
}

func (p *Pipeline) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

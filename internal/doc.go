// Package internal contains the implementation packages of the unidom
// compiler.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - scanner: Closure region scanning over raw text
//   - markup: HTML parsing and rendering helpers
//   - compiler: Behavior tag extraction and execution tree construction
//   - registry: Component map, collision policy and dependency analysis
//   - bootstrap: Composition of the bootstrap script
//   - build: Build pipeline with component caching, minification and metrics
//   - config: Configuration loading, validation and project root resolution
//   - errors: Typed errors and diagnostic collection
//   - logging: Structured logging on log/slog
//   - watcher: File system monitoring with debouncing
//   - version: Build stamp reporting
//
// # Data Flow
//
// The build pipeline reads the root document and every component file. The
// compiler turns each into static markup and an execution tree, with the
// scanner locating closures inside text. Component results populate the
// registry, the bootstrap package serializes registry and tree into the
// script, and the pipeline writes everything to the output directory. In
// watch mode the watcher triggers that pipeline once per batch of changes.
package internal

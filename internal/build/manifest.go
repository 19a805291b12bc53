package build

import (
	"time"

	"github.com/conneroisu/unidom/internal/version"
	"github.com/google/uuid"
)

// ManifestFile is the name of the manifest written next to the outputs.
const ManifestFile = "build-manifest.json"

// Manifest describes one build.
type Manifest struct {
	BuildID    string    `json:"build_id"`
	BuildTime  time.Time `json:"build_time"`
	Version    string    `json:"version"`
	Strict     bool      `json:"strict"`
	Minified   bool      `json:"minified"`
	Components []string  `json:"components"`
	Closures   int       `json:"closures"`
	Files      []string  `json:"files"`
	Warnings   []string  `json:"warnings,omitempty"`
}

func newManifest(artifacts *Artifacts, files []string, strict, minified bool, at time.Time) *Manifest {
	m := &Manifest{
		BuildID:    uuid.NewString(),
		BuildTime:  at.UTC(),
		Version:    version.GetVersion(),
		Strict:     strict,
		Minified:   minified,
		Components: []string{},
		Files:      files,
	}
	if artifacts.Components != nil {
		m.Components = artifacts.Components.Names()
	}
	if artifacts.Tree != nil {
		m.Closures = artifacts.Tree.ClosureCount()
	}
	for _, d := range artifacts.Diagnostics {
		m.Warnings = append(m.Warnings, d.Error())
	}
	return m
}

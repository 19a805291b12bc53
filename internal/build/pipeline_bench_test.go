package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/unidom/internal/config"
)

func benchmarkProject(b *testing.B, components int) *config.Config {
	b.Helper()
	root := b.TempDir()
	dir := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(dir, 0755); err != nil {
		b.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "app.uni"), []byte("<body><p>{count}</p></body>"), 0644); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < components; i++ {
		content := fmt.Sprintf("<template><div><button>{inc%d}</button><span>{label}</span></div></template>", i)
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("c%03d.uni", i)), []byte(content), 0644); err != nil {
			b.Fatal(err)
		}
	}

	cfg, err := config.NewConfigBuilder().WithRootDir(root).Build()
	if err != nil {
		b.Fatal(err)
	}
	return cfg
}

func BenchmarkPipeline_CompileCold(b *testing.B) {
	cfg := benchmarkProject(b, 100)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewPipeline(cfg).Compile(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPipeline_CompileCached(b *testing.B) {
	cfg := benchmarkProject(b, 100)
	ctx := context.Background()
	p := NewPipeline(cfg)
	if _, err := p.Compile(ctx); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Compile(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

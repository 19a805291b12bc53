package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conneroisu/unidom/internal/config"
	"github.com/conneroisu/unidom/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentName(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"counter.uni", "counter"},
		{"Counter.uni", "counter"},
		{"TodoList.html", "todolist"},
		{"noext", "noext"},
		{"my.widget.uni", "my"},
		{"Nav.min.html", "nav"},
		{".hidden.uni", ""},
		{"ÜBER.uni", "über"},
		{"dir/Nav.uni", "nav"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, ComponentName(tt.file))
		})
	}
}

func TestBuildComponentMap(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/components/counter.uni":     "<template><button>{increment}</button></template>",
		"src/components/TodoList.uni":    "<template>\n  <ul><li>{item}</li></ul>\n</template>",
		"src/components/counter.uni.bak": "<template><i></i></template>",
		"src/components/.hidden.uni":     "<template><i></i></template>",
		"src/components/nested/deep.uni": "<template><i></i></template>",
	})
	p := NewPipeline(projectConfig(t, root))

	components, err := p.BuildComponentMap(context.Background(), filepath.Join(root, "src", "components"))
	require.NoError(t, err)

	assert.Equal(t, []string{"counter", "todolist"}, components.Names())

	counter, ok := components.Get("counter")
	require.True(t, ok)
	assert.Equal(t, "<button></button>", counter.Markup)
	assert.Equal(t, "increment", counter.ExecutionTree.Closure)
	assert.Equal(t, filepath.Join(root, "src", "components", "counter.uni"), counter.FilePath)
	assert.False(t, counter.LastMod.IsZero())

	todo, ok := components.Get("todolist")
	require.True(t, ok)
	assert.Equal(t, "<ul><li></li></ul>", strings.TrimSpace(todo.Markup))
	assert.Equal(t, 1, todo.ExecutionTree.ClosureCount())
}

func TestBuildComponentMap_MissingDirectory(t *testing.T) {
	root := writeProject(t, nil)
	p := NewPipeline(projectConfig(t, root))

	components, err := p.BuildComponentMap(context.Background(), filepath.Join(root, "src", "components"))
	require.NoError(t, err)
	assert.Equal(t, 0, components.Count())
}

func TestBuildComponentMap_InvalidComponent(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/components/broken.uni": "<template><a></a><b></b></template>",
	})
	p := NewPipeline(projectConfig(t, root))

	_, err := p.BuildComponentMap(context.Background(), filepath.Join(root, "src", "components"))
	require.Error(t, err)
	assert.True(t, errors.HasErrorCode(err, errors.ErrCodeTemplateArity))
}

// Two files that fold to the same name: "counter.html" lists before
// "counter.uni".
func TestBuildComponentMap_Collisions(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/components/counter.html": "<template><em></em></template>",
		"src/components/counter.uni":  "<template><strong></strong></template>",
	})
	dir := filepath.Join(root, "src", "components")

	tests := []struct {
		policy     string
		wantMarkup string
		wantErr    bool
	}{
		{policy: "last-wins", wantMarkup: "<strong></strong>"},
		{policy: "first-wins", wantMarkup: "<em></em>"},
		{policy: "reject", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			p := NewPipeline(projectConfig(t, root, func(b *config.ConfigBuilder) {
				b.WithCollision(tt.policy)
			}))

			components, err := p.BuildComponentMap(context.Background(), dir)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasErrorCode(err, errors.ErrCodeDuplicateComponent))
				return
			}
			require.NoError(t, err)

			entry, ok := components.Get("counter")
			require.True(t, ok)
			assert.Equal(t, tt.wantMarkup, entry.Markup)

			diags := p.collector.Diagnostics()
			require.Len(t, diags, 1)
			assert.Contains(t, diags[0].Message, "collision")
		})
	}
}

func TestBuildComponentMap_CaseFolding(t *testing.T) {
	root := writeProject(t, nil)
	dir := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Foo.uni"), []byte("<template><em></em></template>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.uni"), []byte("<template><strong></strong></template>"), 0644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	if len(entries) != 2 {
		t.Skip("file system is case-insensitive")
	}

	p := NewPipeline(projectConfig(t, root))
	components, err := p.BuildComponentMap(context.Background(), dir)
	require.NoError(t, err)

	entry, ok := components.Get("foo")
	require.True(t, ok)
	assert.Equal(t, "<strong></strong>", entry.Markup)
	assert.Equal(t, 1, components.Count())
}

func TestBuildComponentMap_Cycles(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/components/alpha.uni": "<template><div><beta></beta></div></template>",
		"src/components/beta.uni":  "<template><section><alpha></alpha></section></template>",
	})
	p := NewPipeline(projectConfig(t, root))

	components, err := p.BuildComponentMap(context.Background(), filepath.Join(root, "src", "components"))
	require.NoError(t, err)
	assert.Equal(t, 2, components.Count())

	diags := p.collector.Diagnostics()
	require.NotEmpty(t, diags)
	assert.True(t, strings.HasPrefix(diags[0].Message, "circular component dependency"))
}

package bootstrap

import (
	"errors"
	"testing"

	"github.com/conneroisu/unidom/internal/compiler"
	"github.com/conneroisu/unidom/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootTree() *compiler.ExecutionTree {
	return &compiler.ExecutionTree{
		Context: compiler.Named("document.body"),
		Children: []*compiler.ExecutionTree{
			{Context: compiler.Index(0), Closure: "count", Children: []*compiler.ExecutionTree{}},
		},
	}
}

type fixedAssembler struct {
	prologue string
	err      error
}

func (f fixedAssembler) Prologue(*registry.ComponentRegistry) (string, error) { return f.prologue, f.err }
func (f fixedAssembler) Epilogue() string { return "run();" }

func TestCompose(t *testing.T) {
	script, err := Compose(fixedAssembler{prologue: "init();"}, nil, rootTree())
	require.NoError(t, err)

	assert.Equal(t,
		`init();const execTree = {"context":"document.body","closure":"","children":[{"context":0,"closure":"count","children":[]}]};run();`,
		script)
}

func TestCompose_PrologueError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Compose(fixedAssembler{err: boom}, nil, rootTree())
	assert.ErrorIs(t, err, boom)
}

func TestCompose_Deterministic(t *testing.T) {
	components := registry.NewComponentRegistry(registry.CollisionLastWins)
	for _, name := range []string{"nav", "card", "button"} {
		_, err := components.Register(&registry.ComponentEntry{
			Name:          name,
			ExecutionTree: &compiler.ExecutionTree{Context: compiler.Index(0), Children: []*compiler.ExecutionTree{}},
			Markup:        "<" + name + "></" + name + ">",
		})
		require.NoError(t, err)
	}

	a := NewRuntimeAssembler("")
	first, err := Compose(a, components, rootTree())
	require.NoError(t, err)
	second, err := Compose(a, components, rootTree())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRuntimeAssembler(t *testing.T) {
	components := registry.NewComponentRegistry(registry.CollisionLastWins)
	_, err := components.Register(&registry.ComponentEntry{
		Name:          "counter",
		ExecutionTree: &compiler.ExecutionTree{Context: compiler.Index(0), Closure: "n", Children: []*compiler.ExecutionTree{}},
		Markup:        "<p>&amp;</p>",
	})
	require.NoError(t, err)

	a := NewRuntimeAssembler("")
	assert.Equal(t, DefaultGlobal, a.Global)

	prologue, err := a.Prologue(components)
	require.NoError(t, err)
	assert.Equal(t,
		`const componentMap = {"counter":{"execTree":{"context":0,"closure":"n","children":[]},"markup":"<p>&amp;</p>"}};`,
		prologue)
	assert.Equal(t, "uniDOM.mount(execTree, componentMap);", a.Epilogue())

	empty, err := a.Prologue(nil)
	require.NoError(t, err)
	assert.Equal(t, "const componentMap = {};", empty)

	assert.Equal(t, "rt.mount(execTree, componentMap);", NewRuntimeAssembler("rt").Epilogue())
}

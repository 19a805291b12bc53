package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryWith(t *testing.T, markups map[string]string) *ComponentRegistry {
	t.Helper()
	registry := NewComponentRegistry(CollisionLastWins)
	for name, m := range markups {
		_, err := registry.Register(entry(name, name+".uni", m))
		require.NoError(t, err)
	}
	return registry
}

func TestDependencyAnalyzer_Uses(t *testing.T) {
	registry := registryWith(t, map[string]string{
		"button": "<button></button>",
		"card":   "<div><button></button></div>",
	})
	da := NewDependencyAnalyzer(registry)

	uses, err := da.Uses("<body><Card></Card><card></card><nav></nav></body>", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"card"}, uses)

	uses, err = da.Uses("<button><button></button></button>", "button")
	require.NoError(t, err)
	assert.Empty(t, uses)
}

func TestDependencyAnalyzer_Graph(t *testing.T) {
	registry := registryWith(t, map[string]string{
		"button": "<button></button>",
		"card":   "<div><button></button></div>",
		"page":   "<main><card></card><button></button></main>",
	})
	da := NewDependencyAnalyzer(registry)

	graph, err := da.GetDependencyGraph()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"button": {},
		"card":   {"button"},
		"page":   {"button", "card"},
	}, graph)

	dependents, err := da.GetDependents("button")
	require.NoError(t, err)
	assert.Equal(t, []string{"card", "page"}, dependents)

	cycles, err := da.DetectCircularDependencies()
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestDependencyAnalyzer_Cycles(t *testing.T) {
	registry := registryWith(t, map[string]string{
		"alpha": "<div><beta></beta></div>",
		"beta":  "<div><alpha></alpha></div>",
	})

	cycles, err := NewDependencyAnalyzer(registry).DetectCircularDependencies()
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"alpha", "beta", "alpha"}, cycles[0])
}

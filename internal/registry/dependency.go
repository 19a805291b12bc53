package registry

import (
	"sort"

	"github.com/conneroisu/unidom/internal/markup"
	"golang.org/x/net/html"
)

// DependencyAnalyzer finds which components a piece of markup mounts. A
// component is used wherever an element carries its registry name.
type DependencyAnalyzer struct {
	registry *ComponentRegistry
}

// NewDependencyAnalyzer creates a new dependency analyzer
func NewDependencyAnalyzer(registry *ComponentRegistry) *DependencyAnalyzer {
	return &DependencyAnalyzer{
		registry: registry,
	}
}

// Uses returns the sorted names of registered components referenced by
// source, excluding self.
func (da *DependencyAnalyzer) Uses(source, self string) ([]string, error) {
	doc, err := markup.Parse(source)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if markup.IsElement(n) && n.Data != self {
			if _, exists := da.registry.Get(n.Data); exists {
				found[n.Data] = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result := make([]string, 0, len(found))
	for name := range found {
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

// GetDependencyGraph maps every component to the components its markup
// uses.
func (da *DependencyAnalyzer) GetDependencyGraph() (map[string][]string, error) {
	graph := make(map[string][]string)
	for _, entry := range da.registry.GetAll() {
		deps, err := da.Uses(entry.Markup, entry.Name)
		if err != nil {
			return nil, err
		}
		graph[entry.Name] = deps
	}
	return graph, nil
}

// GetDependents returns the sorted names of components that use name.
func (da *DependencyAnalyzer) GetDependents(name string) ([]string, error) {
	graph, err := da.GetDependencyGraph()
	if err != nil {
		return nil, err
	}

	var dependents []string
	for component, deps := range graph {
		for _, dep := range deps {
			if dep == name {
				dependents = append(dependents, component)
				break
			}
		}
	}
	sort.Strings(dependents)
	return dependents, nil
}

// DetectCircularDependencies returns every cycle reachable in the graph.
// Each cycle starts and ends with the same name.
func (da *DependencyAnalyzer) DetectCircularDependencies() ([][]string, error) {
	graph, err := da.GetDependencyGraph()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(graph))
	for name := range graph {
		names = append(names, name)
	}
	sort.Strings(names)

	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	for _, component := range names {
		if !visited[component] {
			if cycle := detectCycleDFS(component, graph, visited, recStack, nil); cycle != nil {
				cycles = append(cycles, cycle)
			}
		}
	}

	return cycles, nil
}

func detectCycleDFS(component string, graph map[string][]string, visited, recStack map[string]bool, path []string) []string {
	visited[component] = true
	recStack[component] = true
	path = append(path, component)

	for _, dep := range graph[component] {
		if !visited[dep] {
			if cycle := detectCycleDFS(dep, graph, visited, recStack, path); cycle != nil {
				return cycle
			}
		} else if recStack[dep] {
			for i, p := range path {
				if p == dep {
					cycle := make([]string, len(path)-i+1)
					copy(cycle, path[i:])
					cycle[len(cycle)-1] = dep
					return cycle
				}
			}
		}
	}

	recStack[component] = false
	return nil
}

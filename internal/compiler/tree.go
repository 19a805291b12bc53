// Package compiler turns parsed markup into an execution tree and the
// static markup left after every inline closure is stripped.
//
// Behavior code is attached to an element in one of two ways: a behavior tag
// (a <script> child by default) or a curly-brace region at the start of the
// element's text. The tag wins when both are present. Compilation happens in
// two passes over a parsed document: the first walks it read-only and plans
// every extraction, the second applies the planned edits in one batch. The
// static markup is serialized only after the second pass.
package compiler

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type contextKind uint8

const (
	contextNone contextKind = iota
	contextIndex
	contextName
)

// Context identifies where a tree node sits. Nested nodes carry their index
// among their parent's children; the application root carries a name such
// as "document.body". The zero Context means no context has been
// established yet, which is how component files are compiled.
type Context struct {
	kind  contextKind
	index int
	name  string
}

// NoContext is the unset context.
var NoContext = Context{}

// Index returns a sibling-index context.
func Index(i int) Context {
	return Context{kind: contextIndex, index: i}
}

// Named returns a semantic-name context.
func Named(name string) Context {
	return Context{kind: contextName, name: name}
}

// IsSet reports whether a context has been established.
func (c Context) IsSet() bool {
	return c.kind != contextNone
}

// IndexValue returns the sibling index and whether c is an index context.
func (c Context) IndexValue() (int, bool) {
	return c.index, c.kind == contextIndex
}

// Name returns the semantic name and whether c is a named context.
func (c Context) Name() (string, bool) {
	return c.name, c.kind == contextName
}

func (c Context) String() string {
	switch c.kind {
	case contextIndex:
		return strconv.Itoa(c.index)
	case contextName:
		return c.name
	default:
		return ""
	}
}

func (c Context) value() interface{} {
	if c.kind == contextIndex {
		return c.index
	}
	return c.String()
}

// MarshalJSON encodes an index context as a number and any other context as
// a string.
func (c Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.value())
}

// UnmarshalJSON accepts a number or a string.
func (c *Context) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*c = Index(int(v))
	case string:
		if v == "" {
			*c = NoContext
		} else {
			*c = Named(v)
		}
	default:
		return fmt.Errorf("context must be a number or a string, got %s", data)
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML output.
func (c Context) MarshalYAML() (interface{}, error) {
	return c.value(), nil
}

// ExecutionTree is one node of the compiled tree. Its shape mirrors the
// element structure of the source markup.
type ExecutionTree struct {
	Context  Context          `json:"context" yaml:"context"`
	Closure  string           `json:"closure" yaml:"closure"`
	Children []*ExecutionTree `json:"children" yaml:"children"`
}

func newNode(ctx Context) *ExecutionTree {
	return &ExecutionTree{
		Context:  ctx,
		Children: []*ExecutionTree{},
	}
}

// Count returns the number of nodes in the tree.
func (t *ExecutionTree) Count() int {
	if t == nil {
		return 0
	}
	n := 1
	for _, c := range t.Children {
		n += c.Count()
	}
	return n
}

// ClosureCount returns the number of nodes with a non-empty closure.
func (t *ExecutionTree) ClosureCount() int {
	if t == nil {
		return 0
	}
	n := 0
	if t.Closure != "" {
		n++
	}
	for _, c := range t.Children {
		n += c.ClosureCount()
	}
	return n
}

// Package bootstrap composes the script that hands the execution tree and
// the component map to the runtime library.
package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/conneroisu/unidom/internal/compiler"
	"github.com/conneroisu/unidom/internal/registry"
)

// DefaultGlobal is the name the runtime library installs itself under.
const DefaultGlobal = "uniDOM"

// Assembler produces the code placed around the serialized execution tree.
type Assembler interface {
	// Prologue runs before the tree is declared and may refer to the
	// compiled components.
	Prologue(components *registry.ComponentRegistry) (string, error)
	// Epilogue runs after the tree is declared.
	Epilogue() string
}

// RuntimeAssembler declares the component map and mounts the tree through
// the runtime library's global.
type RuntimeAssembler struct {
	Global string
}

// NewRuntimeAssembler returns an assembler for the runtime installed as
// global; an empty name selects DefaultGlobal.
func NewRuntimeAssembler(global string) *RuntimeAssembler {
	if global == "" {
		global = DefaultGlobal
	}
	return &RuntimeAssembler{Global: global}
}

// Prologue implements Assembler.
func (a *RuntimeAssembler) Prologue(components *registry.ComponentRegistry) (string, error) {
	entries := map[string]*registry.ComponentEntry{}
	if components != nil {
		entries = components.Snapshot()
	}
	data, err := marshalValue(entries)
	if err != nil {
		return "", fmt.Errorf("encoding component map: %w", err)
	}
	return "const componentMap = " + string(data) + ";", nil
}

// Epilogue implements Assembler.
func (a *RuntimeAssembler) Epilogue() string {
	return a.Global + ".mount(execTree, componentMap);"
}

// Compose returns prologue, tree declaration and epilogue concatenated. It
// depends only on its arguments.
func Compose(a Assembler, components *registry.ComponentRegistry, tree *compiler.ExecutionTree) (string, error) {
	prologue, err := a.Prologue(components)
	if err != nil {
		return "", err
	}

	data, err := marshalValue(tree)
	if err != nil {
		return "", fmt.Errorf("encoding execution tree: %w", err)
	}

	return prologue + "const execTree = " + string(data) + ";" + a.Epilogue(), nil
}

// marshalValue encodes value as JSON without HTML escaping.
func marshalValue(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(value); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

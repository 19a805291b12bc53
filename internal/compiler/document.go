package compiler

import (
	"context"
	"fmt"

	"github.com/conneroisu/unidom/internal/errors"
	"github.com/conneroisu/unidom/internal/markup"
)

// Result is a compiled document: its execution tree and the static markup
// that remains once closures are stripped.
type Result struct {
	Tree   *ExecutionTree
	Markup string
}

// CompileDocument compiles an application root document. The tree is rooted
// at the first element matching selector and carries rootContext as its
// name; the markup is the whole serialized document.
func (c *Compiler) CompileDocument(ctx context.Context, src Source, selector, rootContext string) (*Result, error) {
	doc, err := markup.Parse(src.Content)
	if err != nil {
		return nil, errors.NewBuildError(errors.ErrCodeMarkupParse, "parsing root document", err).
			WithFile(src.Path)
	}

	target := markup.Find(doc, selector)
	if target == nil {
		return nil, errors.NewBuildError(errors.ErrCodeRootElement,
			fmt.Sprintf("root document has no <%s> element", selector), nil).
			WithFile(src.Path)
	}

	tree, err := c.buildTree(ctx, src, target, Named(rootContext))
	if err != nil {
		return nil, err
	}

	out, err := markup.Render(doc)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "serializing root document", err).
			WithFile(src.Path)
	}

	return &Result{Tree: tree, Markup: out}, nil
}

// CompileComponent compiles a component file. The file must hold a template
// wrapper with exactly one top-level element; the wrapper itself appears in
// neither the tree nor the markup.
func (c *Compiler) CompileComponent(ctx context.Context, src Source) (*Result, error) {
	doc, err := markup.Parse(src.Content)
	if err != nil {
		return nil, errors.NewBuildError(errors.ErrCodeMarkupParse, "parsing component", err).
			WithComponent(src.Name).
			WithFile(src.Path)
	}

	wrapper := markup.Find(doc, c.templateTag)
	if wrapper == nil {
		return nil, errors.NewBuildError(errors.ErrCodeTemplateNotFound,
			fmt.Sprintf("component has no <%s> element", c.templateTag), nil).
			WithComponent(src.Name).
			WithFile(src.Path)
	}

	tree, err := c.buildTree(ctx, src, wrapper, NoContext)
	if err != nil {
		return nil, err
	}

	if tree.Closure != "" {
		c.warn(ctx, src, nil, fmt.Sprintf("closure on <%s> is discarded", c.templateTag))
	}

	root, err := unwrapSingleChild(tree)
	if err != nil {
		return nil, errors.NewBuildError(errors.ErrCodeTemplateArity, err.Error(), nil).
			WithComponent(src.Name).
			WithFile(src.Path)
	}

	out, err := markup.RenderChildren(wrapper)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError, "serializing component", err).
			WithComponent(src.Name).
			WithFile(src.Path)
	}

	return &Result{Tree: root, Markup: out}, nil
}

// unwrapSingleChild replaces a wrapper node by its only child.
func unwrapSingleChild(tree *ExecutionTree) (*ExecutionTree, error) {
	if n := len(tree.Children); n != 1 {
		return nil, fmt.Errorf("template must contain exactly one top-level element, found %d", n)
	}
	return tree.Children[0], nil
}

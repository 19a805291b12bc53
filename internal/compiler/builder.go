package compiler

import (
	"context"
	"strings"

	"github.com/conneroisu/unidom/internal/errors"
	"github.com/conneroisu/unidom/internal/logging"
	"github.com/conneroisu/unidom/internal/markup"
	"github.com/conneroisu/unidom/internal/scanner"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultTemplateTag is the wrapper element of a component file.
const DefaultTemplateTag = "template"

// Options configures a Compiler.
type Options struct {
	// BehaviorTag names the element holding explicit behavior code.
	BehaviorTag string
	// TemplateTag names the wrapper element of a component file.
	TemplateTag string
	// Strict turns an unbalanced brace region into an error instead of a
	// warning.
	Strict bool
	// Logger receives warnings; defaults to a no-op logger.
	Logger logging.Logger
	// Collector, when set, records every warning as a diagnostic.
	Collector *errors.ErrorCollector
}

// Compiler builds execution trees. It holds no per-document state and may
// be reused for any number of documents.
type Compiler struct {
	behaviorTag string
	templateTag string
	strict      bool
	logger      logging.Logger
	collector   *errors.ErrorCollector
}

// New creates a compiler, filling unset options with defaults.
func New(opts Options) *Compiler {
	c := &Compiler{
		behaviorTag: strings.ToLower(opts.BehaviorTag),
		templateTag: strings.ToLower(opts.TemplateTag),
		strict:      opts.Strict,
		logger:      opts.Logger,
		collector:   opts.Collector,
	}
	if c.behaviorTag == "" {
		c.behaviorTag = DefaultBehaviorTag
	}
	if c.templateTag == "" {
		c.templateTag = DefaultTemplateTag
	}
	if c.logger == nil {
		c.logger = logging.NopLogger{}
	}
	return c
}

// Source is one markup file to compile.
type Source struct {
	// Name identifies the source in diagnostics; for components it is also
	// the registry key.
	Name string
	// Path is the file the content was read from, if any.
	Path    string
	Content string
}

// edit is one planned change to the working tree. A tag edit detaches the
// behavior tag of parent; a span edit deletes span from the text node.
type edit struct {
	parent *html.Node
	text   *html.Node
	span   scanner.Span
}

// builder carries the state of a single BuildTree call.
type builder struct {
	c      *Compiler
	ctx    context.Context
	source Source
	edits  []edit
}

// BuildTree builds the execution tree rooted at element and then strips
// every extracted closure from element's document. Pass NoContext to
// compile a component root; nested nodes always receive index contexts.
func (c *Compiler) BuildTree(ctx context.Context, element *html.Node, tctx Context) (*ExecutionTree, error) {
	return c.buildTree(ctx, Source{}, element, tctx)
}

func (c *Compiler) buildTree(ctx context.Context, src Source, element *html.Node, tctx Context) (*ExecutionTree, error) {
	b := &builder{c: c, ctx: ctx, source: src}

	tree, err := b.plan(element, tctx)
	if err != nil {
		return nil, err
	}
	b.apply()

	return tree, nil
}

// plan walks n without modifying it and records the edits its closures need.
func (b *builder) plan(n *html.Node, tctx Context) (*ExecutionTree, error) {
	node := newNode(tctx)

	tag := FindBehaviorTag(n, b.c.behaviorTag)
	if tag != nil {
		closure, err := markup.InnerText(tag)
		if err != nil {
			return nil, errors.NewInternalError(errors.ErrCodeInternalError, "reading behavior tag", err).
				WithComponent(b.source.Name).
				WithFile(b.source.Path)
		}
		node.Closure = closure
		b.edits = append(b.edits, edit{parent: n})
	} else if first := n.FirstChild; markup.IsText(first) && !isRawText(n) {
		closure, err := b.planBraces(first)
		if err != nil {
			return nil, err
		}
		node.Closure = closure
	}

	// Indices are counted as the children will stand once the behavior tag
	// is gone.
	i := 0
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child == tag {
			continue
		}
		if markup.IsElement(child) || (markup.IsRootLike(child) && !tctx.IsSet()) {
			sub, err := b.plan(child, Index(i))
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, sub)
		}
		i++
	}

	return node, nil
}

func (b *builder) planBraces(text *html.Node) (string, error) {
	span, err := scanner.Scan(text.Data)
	if err != nil {
		return "", b.unbalanced(text, err)
	}
	if !span.Found() {
		return "", nil
	}
	b.edits = append(b.edits, edit{text: text, span: span})
	return span.Inner(text.Data), nil
}

func (b *builder) unbalanced(text *html.Node, cause error) error {
	snippet := []rune(strings.TrimSpace(text.Data))
	if len(snippet) > 40 {
		snippet = append(snippet[:40], []rune("...")...)
	}

	if b.c.strict {
		return errors.NewBuildError(errors.ErrCodeUnbalancedClosure, "unbalanced closure delimiters", cause).
			WithComponent(b.source.Name).
			WithFile(b.source.Path).
			WithContext("text", string(snippet))
	}

	b.c.warn(b.ctx, b.source, cause, "brace region does not balance, compiling element without a closure", "text", string(snippet))
	return nil
}

// apply performs every planned edit. Each text node carries at most one
// span edit, so spans still refer to the original offsets.
func (b *builder) apply() {
	for _, e := range b.edits {
		if e.text == nil {
			RemoveBehaviorTag(e.parent, b.c.behaviorTag)
			continue
		}
		data := e.text.Data
		e.text.Data = data[:e.span.Start] + data[e.span.End+1:]
	}
	b.edits = nil
}

func (c *Compiler) warn(ctx context.Context, src Source, err error, msg string, fields ...interface{}) {
	logger := c.logger
	if src.Name != "" {
		logger = logger.WithComponent(src.Name)
	}
	logger.Warn(ctx, err, msg, append([]interface{}{"file", src.Path}, fields...)...)

	if c.collector != nil {
		c.collector.Add(errors.Diagnostic{
			Component: src.Name,
			File:      src.Path,
			Message:   msg,
			Severity:  errors.ErrorSeverityWarning,
		})
	}
}

// isRawText reports elements whose text is code or data in its own
// language, where braces never delimit a closure.
func isRawText(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style:
		return true
	}
	return false
}

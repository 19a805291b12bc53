package compiler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/conneroisu/unidom/internal/errors"
	"github.com/conneroisu/unidom/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func compileRoot(t *testing.T, c *Compiler, src string) *Result {
	t.Helper()
	res, err := c.CompileDocument(context.Background(), Source{Name: "app", Path: "app.uni", Content: src}, "body", "document.body")
	require.NoError(t, err)
	return res
}

func TestCompileDocument_EndToEnd(t *testing.T) {
	res := compileRoot(t, New(Options{}), "<body><p>{count}</p></body>")

	assert.Equal(t, "<html><head></head><body><p></p></body></html>", res.Markup)

	data, err := json.Marshal(res.Tree)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"context":"document.body","closure":"","children":[{"context":0,"closure":"count","children":[]}]}`,
		string(data))
}

func TestBuildTree_ClosureSyntaxes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantClosure string
		wantMarkup  string
	}{
		{
			name:        "brace region",
			body:        "<p>Hello {name}</p>",
			wantClosure: "name",
			wantMarkup:  "<p>Hello </p>",
		},
		{
			name:        "nested braces keep the outer pair",
			body:        "<p>a{f({x:1})}b</p>",
			wantClosure: "f({x:1})",
			wantMarkup:  "<p>ab</p>",
		},
		{
			name:        "quoted closer",
			body:        `<p>{x:"}"}</p>`,
			wantClosure: `x:"}"`,
			wantMarkup:  "<p></p>",
		},
		{
			name:        "behavior tag",
			body:        "<p><script>this.count = 0;</script>text</p>",
			wantClosure: "this.count = 0;",
			wantMarkup:  "<p>text</p>",
		},
		{
			name:        "tag wins over braces",
			body:        "<p>{a}<script>b()</script></p>",
			wantClosure: "b()",
			wantMarkup:  "<p>{a}</p>",
		},
		{
			name:        "brace not in first child is ignored",
			body:        "<p><b>x</b>{y}</p>",
			wantClosure: "",
			wantMarkup:  "<p><b>x</b>{y}</p>",
		},
		{
			name:        "no behavior code",
			body:        "<p>plain</p>",
			wantClosure: "",
			wantMarkup:  "<p>plain</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compileRoot(t, New(Options{}), "<body>"+tt.body+"</body>")

			require.Len(t, res.Tree.Children, 1)
			assert.Equal(t, tt.wantClosure, res.Tree.Children[0].Closure)
			assert.Equal(t, "<html><head></head><body>"+tt.wantMarkup+"</body></html>", res.Markup)
		})
	}
}

func TestBuildTree_RawTextElementsAreNotScanned(t *testing.T) {
	res := compileRoot(t, New(Options{}), "<body><style>p { color: red }</style></body>")

	require.Len(t, res.Tree.Children, 1)
	assert.Equal(t, "", res.Tree.Children[0].Closure)
	assert.Contains(t, res.Markup, "<style>p { color: red }</style>")
}

func TestBuildTree_LeadingCommentIsNotScanned(t *testing.T) {
	res := compileRoot(t, New(Options{}), "<body><div><!-- {c} --></div></body>")

	require.Len(t, res.Tree.Children, 1)
	assert.Equal(t, "", res.Tree.Children[0].Closure)
	assert.Contains(t, res.Markup, "<div><!-- {c} --></div>")
}

func TestCompileDocument_StaticTextIsReescaped(t *testing.T) {
	res := compileRoot(t, New(Options{}), "<body><p>it's {x} &amp; more</p></body>")

	require.Len(t, res.Tree.Children, 1)
	assert.Equal(t, "x", res.Tree.Children[0].Closure)
	assert.Equal(t, "<html><head></head><body><p>it&#39;s  &amp; more</p></body></html>", res.Markup)
}

func TestBuildTree_ChildContexts(t *testing.T) {
	t.Run("text nodes count toward the index", func(t *testing.T) {
		res := compileRoot(t, New(Options{}), "<body>lead<p></p><span></span></body>")

		require.Len(t, res.Tree.Children, 2)
		idx0, ok := res.Tree.Children[0].Context.IndexValue()
		require.True(t, ok)
		idx1, _ := res.Tree.Children[1].Context.IndexValue()
		assert.Equal(t, 1, idx0)
		assert.Equal(t, 2, idx1)
	})

	t.Run("behavior tag does not count", func(t *testing.T) {
		res := compileRoot(t, New(Options{}), "<body><script>init()</script><p></p></body>")

		assert.Equal(t, "init()", res.Tree.Closure)
		require.Len(t, res.Tree.Children, 1)
		idx, _ := res.Tree.Children[0].Context.IndexValue()
		assert.Equal(t, 0, idx)
		assert.Equal(t, "<html><head></head><body><p></p></body></html>", res.Markup)
	})
}

func TestBuildTree_StructuralMirroring(t *testing.T) {
	src := `<body>
  <header><h1>{title}</h1></header>
  <main>
    <ul><li>{a}</li><li>b</li><li><script>c()</script></li></ul>
    text
    <section><article><p>{deep}</p></article></section>
  </main>
</body>`

	doc, err := markup.Parse(src)
	require.NoError(t, err)
	body := markup.Find(doc, "body")

	// snapshot element counts before the tree is edited
	want := map[*html.Node]int{}
	var count func(n *html.Node)
	count = func(n *html.Node) {
		k := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if markup.IsElement(c) && c.Data != "script" {
				k++
				count(c)
			}
		}
		want[n] = k
	}
	count(body)

	tree, err := New(Options{}).BuildTree(context.Background(), body, Named("document.body"))
	require.NoError(t, err)

	var check func(n *html.Node, node *ExecutionTree)
	check = func(n *html.Node, node *ExecutionTree) {
		require.Equal(t, want[n], len(node.Children), "children of <%s>", n.Data)
		i := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if markup.IsElement(c) {
				check(c, node.Children[i])
				i++
			}
		}
	}
	check(body, tree)

	assert.Equal(t, 4, tree.ClosureCount())
}

func TestBuildTree_Idempotent(t *testing.T) {
	src := "<body><div>{a}<p>{b({c:1})}</p><script>d()</script></div><span>'{e}'</span></body>"
	c := New(Options{})

	first := compileRoot(t, c, src)
	second := compileRoot(t, c, src)

	assert.Equal(t, first.Tree, second.Tree)
	assert.Equal(t, first.Markup, second.Markup)
}

func TestBuildTree_RootLikeOnlyAtTop(t *testing.T) {
	build := func(tctx Context) *ExecutionTree {
		wrapper := &html.Node{Type: html.ElementNode, Data: "template"}
		fragment := &html.Node{Type: html.DocumentNode}
		fragment.AppendChild(&html.Node{Type: html.ElementNode, Data: "div"})
		wrapper.AppendChild(fragment)

		tree, err := New(Options{}).BuildTree(context.Background(), wrapper, tctx)
		require.NoError(t, err)
		return tree
	}

	top := build(NoContext)
	require.Len(t, top.Children, 1)
	require.Len(t, top.Children[0].Children, 1)
	idx, ok := top.Children[0].Context.IndexValue()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	nested := build(Index(3))
	assert.Empty(t, nested.Children)
}

func TestBuildTree_Unbalanced(t *testing.T) {
	src := "<body><p>{ let a = 1;</p></body>"

	t.Run("lenient keeps markup and warns", func(t *testing.T) {
		collector := errors.NewErrorCollector()
		res := compileRoot(t, New(Options{Collector: collector}), src)

		assert.Equal(t, "", res.Tree.Children[0].Closure)
		assert.Contains(t, res.Markup, "<p>{ let a = 1;</p>")

		diags := collector.Diagnostics()
		require.Len(t, diags, 1)
		assert.Equal(t, "app.uni", diags[0].File)
		assert.Equal(t, errors.ErrorSeverityWarning, diags[0].Severity)
	})

	t.Run("strict fails", func(t *testing.T) {
		_, err := New(Options{Strict: true}).CompileDocument(context.Background(),
			Source{Name: "app", Path: "app.uni", Content: src}, "body", "document.body")
		require.Error(t, err)
		assert.True(t, errors.HasErrorCode(err, errors.ErrCodeUnbalancedClosure))
	})

	t.Run("no opener is not a warning", func(t *testing.T) {
		collector := errors.NewErrorCollector()
		compileRoot(t, New(Options{Strict: true, Collector: collector}), "<body><p>closing } only</p></body>")
		assert.Empty(t, collector.Diagnostics())
	})
}

func TestBuildTree_CustomBehaviorTag(t *testing.T) {
	c := New(Options{BehaviorTag: "Behavior"})
	res := compileRoot(t, c, "<body><div><behavior>a &amp;&amp; b</behavior><script>kept()</script></div></body>")

	assert.Equal(t, "a && b", res.Tree.Children[0].Closure)
	assert.Contains(t, res.Markup, "<div><script>kept()</script></div>")
}

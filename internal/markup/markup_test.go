package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nethtml "golang.org/x/net/html"
)

func TestParseAndRender(t *testing.T) {
	doc, err := Parse("<body><p>hi</p></body>")
	require.NoError(t, err)

	out, err := Render(doc)
	require.NoError(t, err)
	assert.Equal(t, "<html><head></head><body><p>hi</p></body></html>", out)
}

func TestFind(t *testing.T) {
	doc, err := Parse("<template><div><span>a</span></div></template>")
	require.NoError(t, err)

	tmpl := Find(doc, "template")
	require.NotNil(t, tmpl)
	assert.Equal(t, "template", tmpl.Data)

	span := Find(doc, "span")
	require.NotNil(t, span)
	assert.Equal(t, "a", span.FirstChild.Data)

	assert.Nil(t, Find(doc, "section"))
	assert.Nil(t, Find(nil, "div"))
}

func TestRenderChildren(t *testing.T) {
	doc, err := Parse("<template><div>x</div><p>y</p></template>")
	require.NoError(t, err)

	out, err := RenderChildren(Find(doc, "template"))
	require.NoError(t, err)
	assert.Equal(t, "<div>x</div><p>y</p>", out)
}

func TestDetach(t *testing.T) {
	doc, err := Parse("<body><a></a><b></b><i></i></body>")
	require.NoError(t, err)

	body := Find(doc, "body")
	Detach(Find(body, "b"))

	kids := Children(body)
	require.Len(t, kids, 2)
	assert.Equal(t, "a", kids[0].Data)
	assert.Equal(t, "i", kids[1].Data)

	// detaching twice is harmless
	orphan := &nethtml.Node{Type: nethtml.ElementNode, Data: "em"}
	Detach(orphan)
	Detach(nil)
}

func TestInnerText(t *testing.T) {
	t.Run("script content is verbatim", func(t *testing.T) {
		doc, err := Parse(`<body><script>if (a < b && c) { x = "&amp;" }</script></body>`)
		require.NoError(t, err)

		text, err := InnerText(Find(doc, "script"))
		require.NoError(t, err)
		assert.Equal(t, `if (a < b && c) { x = "&amp;" }`, text)
	})

	t.Run("other elements are unescaped", func(t *testing.T) {
		doc, err := Parse(`<body><behavior>a &amp;&amp; b</behavior></body>`)
		require.NoError(t, err)

		text, err := InnerText(Find(doc, "behavior"))
		require.NoError(t, err)
		assert.Equal(t, "a && b", text)
	})
}

func TestNodeKinds(t *testing.T) {
	doc, err := Parse("<body>text<p></p></body>")
	require.NoError(t, err)

	body := Find(doc, "body")
	assert.True(t, IsRootLike(doc))
	assert.True(t, IsElement(body))
	assert.True(t, IsText(body.FirstChild))
	assert.False(t, IsElement(body.FirstChild))
	assert.False(t, IsRootLike(body))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, `"quoted" & <tag>`, Unescape("&#34;quoted&#34; &amp; &lt;tag&gt;"))
}

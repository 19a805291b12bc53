package build

import (
	"regexp"

	"github.com/conneroisu/unidom/internal/errors"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

const (
	mimeJS   = "application/javascript"
	mimeHTML = "text/html"
)

// AssetOptimizer minifies the generated script and, optionally, the static
// markup.
type AssetOptimizer struct {
	minifier *minify.M
}

// NewAssetOptimizer creates an optimizer. The markup minifier keeps
// comments, document tags and end tags.
func NewAssetOptimizer() *AssetOptimizer {
	m := minify.New()
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	m.Add(mimeHTML, &html.Minifier{
		KeepComments:        true,
		KeepDefaultAttrVals: true,
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
		KeepWhitespace:      true,
	})
	return &AssetOptimizer{minifier: m}
}

// MinifyScript minifies a bootstrap script. A parse failure means the
// extracted closures do not form valid code and is reported as
// ErrCodeScriptSyntax.
func (o *AssetOptimizer) MinifyScript(script string) (string, error) {
	out, err := o.minifier.String(mimeJS, script)
	if err != nil {
		return "", errors.NewBuildError(errors.ErrCodeScriptSyntax, "bootstrap script does not parse", err)
	}
	return out, nil
}

// MinifyMarkup minifies static markup.
func (o *AssetOptimizer) MinifyMarkup(markup string) (string, error) {
	out, err := o.minifier.String(mimeHTML, markup)
	if err != nil {
		return "", errors.NewBuildError(errors.ErrCodeMarkupParse, "minifying static markup", err)
	}
	return out, nil
}

//go:build property

package compiler

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// generated is a random body plus the counts it was built from.
type generated struct {
	body     string
	elements int
	closures int
}

// render turns a list of opcodes into well-nested markup.
func render(ops []int) generated {
	var (
		sb    strings.Builder
		stack []string
		g     generated
	)
	for _, op := range ops {
		switch op % 4 {
		case 0:
			sb.WriteString("<section>")
			stack = append(stack, "section")
			g.elements++
		case 1:
			sb.WriteString("<div>{c}")
			stack = append(stack, "div")
			g.elements++
			g.closures++
		case 2:
			if len(stack) == 0 {
				sb.WriteString("t")
				continue
			}
			sb.WriteString("</" + stack[len(stack)-1] + ">")
			stack = stack[:len(stack)-1]
		case 3:
			sb.WriteString("<span><script>s()</script></span>")
			g.elements++
			g.closures++
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteString("</" + stack[i] + ">")
	}
	g.body = "<body>" + sb.String() + "</body>"
	return g
}

func TestBuildTreeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.MaxSize = 40

	properties := gopter.NewProperties(parameters)
	opsGen := gen.SliceOf(gen.IntRange(0, 3))

	properties.Property("tree mirrors element structure", prop.ForAll(
		func(ops []int) bool {
			g := render(ops)
			res, err := New(Options{}).CompileDocument(context.Background(), Source{Content: g.body}, "body", "document.body")
			if err != nil {
				return false
			}
			return res.Tree.Count() == g.elements+1 && res.Tree.ClosureCount() == g.closures
		},
		opsGen,
	))

	properties.Property("closures are stripped from markup", prop.ForAll(
		func(ops []int) bool {
			g := render(ops)
			res, err := New(Options{}).CompileDocument(context.Background(), Source{Content: g.body}, "body", "document.body")
			if err != nil {
				return false
			}
			return !strings.Contains(res.Markup, "{c}") && !strings.Contains(res.Markup, "s()")
		},
		opsGen,
	))

	properties.Property("compilation is deterministic", prop.ForAll(
		func(ops []int) bool {
			g := render(ops)
			c := New(Options{})
			a, errA := c.CompileDocument(context.Background(), Source{Content: g.body}, "body", "document.body")
			b, errB := c.CompileDocument(context.Background(), Source{Content: g.body}, "body", "document.body")
			if errA != nil || errB != nil {
				return false
			}
			return reflect.DeepEqual(a.Tree, b.Tree) && a.Markup == b.Markup
		},
		opsGen,
	))

	properties.TestingRun(t)
}

package render_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"cssn/ast"
	"cssn/parser"
	"cssn/render"
)

func flatten(t *testing.T, src string) string {
	t.Helper()
	tree, err := parser.NewParser(zap.NewNop()).Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	out, err := render.NewRenderer(zap.NewNop()).Render(tree)
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	return out
}

func flattenErr(t *testing.T, src string) *render.Error {
	t.Helper()
	tree, err := parser.NewParser(zap.NewNop()).Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	_, err = render.NewRenderer(zap.NewNop()).Render(tree)
	if err == nil {
		t.Fatalf("expected render error for %q", src)
	}
	var rerr *render.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *render.Error, got %T", err)
	}
	return rerr
}

func TestRender_FlatInputRoundTrip(t *testing.T) {
	got := flatten(t, "a { b: 1; }\nc { d: 2; }")
	want := "a{b:1}c{d:2}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_AmpersandSubstitution(t *testing.T) {
	got := flatten(t, `.a{&:hover{color:red;}}`)
	want := ".a:hover{color:red}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_DescendantCombination(t *testing.T) {
	got := flatten(t, `.a{.b{color:red;}}`)
	want := ".a .b{color:red}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_GroupedSelectorsCrossProduct(t *testing.T) {
	got := flatten(t, `.a,.b{.c,&.d{x:1;}}`)
	want := ".a .c,.a.d,.b .c,.b.d{x:1}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_DeepNestingAccumulatesParents(t *testing.T) {
	got := flatten(t, `.a{.b{.c{x:1;}}}`)
	want := ".a .b .c{x:1}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_PureStructureBlockEmitsNothing(t *testing.T) {
	got := flatten(t, `.a{.b{x:1;}}`)
	if got != ".a .b{x:1}" {
		t.Errorf("structure-only parent must not emit a fragment, got %q", got)
	}
}

func TestRender_ResponsiveMediaQuery(t *testing.T) {
	got := flatten(t, `.a{color:red;@media screen and (min-width:600px){color:blue;}}`)
	want := ".a{color:red}@media screen and (min-width:600px){.a{color:blue}}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_ColorSchemeStandalone(t *testing.T) {
	got := flatten(t, `@media (prefers-color-scheme:dark){.a{color:#fff;}}`)
	want := "@media (prefers-color-scheme:dark){.a{color:#fff}}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// Characterization: the merged context name glues "and" to its neighbors
// with no spaces. That is observable output we keep stable on purpose.
func TestRender_ColorSchemeMergesIntoResponsiveContext(t *testing.T) {
	got := flatten(t, `@media screen and (min-width:600px){@media (prefers-color-scheme:dark){.a{color:#000;}}}`)
	want := "@media screen and (min-width:600px)and(prefers-color-scheme:dark){.a{color:#000}}"
	if got != want {
		t.Errorf("expected single merged context %q, got %q", want, got)
	}
}

func TestRender_OtherAtRuleResetsParents(t *testing.T) {
	got := flatten(t, `.a{@font-face{src:url(x);}}`)
	want := "@font-face{src:url(x);}"
	if got != want {
		t.Errorf("expected at-rule declarations scoped to itself, got %q", got)
	}
}

func TestRender_EmptyContextsOmitted(t *testing.T) {
	got := flatten(t, `@media screen and (min-width:600px){.a{}}`)
	if got != "" {
		t.Errorf("expected empty output for fragment-less contexts, got %q", got)
	}
}

func TestRender_RootEmittedBeforeAtRuleContexts(t *testing.T) {
	got := flatten(t, `@media screen and (x){.a{b:1;}}.c{d:2;}`)
	want := ".c{d:2}@media screen and (x){.a{b:1}}"
	if got != want {
		t.Errorf("expected root context first, got %q", got)
	}
}

func TestRender_NestingViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			"responsive inside responsive",
			`@media screen and (a){@media screen and (b){.x{c:1;}}}`,
		},
		{
			"responsive inside color-scheme",
			`@media (prefers-color-scheme:dark){@media screen and (a){.x{c:1;}}}`,
		},
		{
			"color-scheme inside color-scheme",
			`@media (prefers-color-scheme:dark){@media (prefers-color-scheme:light){.x{c:1;}}}`,
		},
		{
			"at-rule inside at-rule",
			`@media screen and (a){@font-face{src:url(x);}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flattenErr(t, tt.src)
		})
	}
}

func TestRender_AcceptedNestings(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"responsive at top level", `@media screen and (a){.x{c:1;}}`},
		{"color-scheme at top level", `@media (prefers-color-scheme:dark){.x{c:1;}}`},
		{"color-scheme inside responsive", `@media screen and (a){@media (prefers-color-scheme:dark){.x{c:1;}}}`},
		{"at-rule at top level", `@font-face{src:url(x);}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := flatten(t, tt.src); out == "" {
				t.Error("expected non-empty output")
			}
		})
	}
}

func TestRender_ColorSchemeMergeRequiresCondition(t *testing.T) {
	outer := &ast.Block{Selectors: []string{"@media screen and (a)"}}
	outer.AppendChild(&ast.Block{
		Selectors:  []string{"@media prefers-color-scheme dark"},
		Properties: []ast.Property{{Name: "color", Value: "#000"}},
	})
	tree := &ast.Tree{}
	tree.Append(outer)

	_, err := render.NewRenderer(nil).Render(tree)
	if err == nil {
		t.Fatal("expected error for condition-less color-scheme prelude")
	}
	var rerr *render.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *render.Error, got %T", err)
	}
	if !strings.Contains(rerr.Msg, "parenthesised condition") {
		t.Errorf("unexpected message %q", rerr.Msg)
	}
}

func TestRender_ErrorCarriesBlockPosition(t *testing.T) {
	rerr := flattenErr(t, "@media screen and (a){\n@media screen and (b){.x{c:1;}}}")
	if rerr.Line != 2 {
		t.Errorf("expected offending block line 2, got %d", rerr.Line)
	}
}

func TestRender_HandConstructedTreeWithoutLocation(t *testing.T) {
	tree := &ast.Tree{}
	tree.Append(&ast.Block{
		Selectors:  []string{".a"},
		Properties: []ast.Property{{Name: "color", Value: "red"}},
	})

	out, err := render.NewRenderer(nil).Render(tree)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != ".a{color:red}" {
		t.Errorf("expected '.a{color:red}', got %q", out)
	}
}

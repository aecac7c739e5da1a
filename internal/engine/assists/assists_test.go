package assists

import (
	"strings"
	"testing"

	"crateview/internal/engine/edit"
	"crateview/internal/engine/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkAssist runs assist at the `<|>` marker in before and compares the
// result, with the cursor marked, against after.
func checkAssist(t *testing.T, assist func(*syntax.File, uint32) *edit.LocalEdit, before, after string) {
	t.Helper()
	offset := strings.Index(before, "<|>")
	require.GreaterOrEqual(t, offset, 0, "missing cursor marker")
	text := before[:offset] + before[offset+3:]

	le := assist(syntax.Parse(text), uint32(offset))
	require.NotNil(t, le, "assist not applicable")

	got, err := le.Edit.Apply(text)
	require.NoError(t, err)
	if le.CursorPosition != nil {
		c := *le.CursorPosition
		got = got[:c] + "<|>" + got[c:]
	}
	assert.Equal(t, after, got)
}

func checkNotApplicable(t *testing.T, assist func(*syntax.File, uint32) *edit.LocalEdit, before string) {
	t.Helper()
	offset := strings.Index(before, "<|>")
	text := before[:offset] + before[offset+3:]
	assert.Nil(t, assist(syntax.Parse(text), uint32(offset)))
}

func TestFlipComma(t *testing.T) {
	checkAssist(t, FlipComma,
		"fn foo(x: i32,<|> y: Result<(), ()>) {}",
		"fn foo(y: Result<(), ()>, x: i32) {}",
	)
	checkAssist(t, FlipComma,
		"fn main() { f(a<|>, b); }",
		"fn main() { f(b, a); }",
	)
}

func TestFlipComma_NotApplicable(t *testing.T) {
	checkNotApplicable(t, FlipComma, "fn f(<|>a: u8) {}")
	checkNotApplicable(t, FlipComma, "fn main() { f(a,<|>); }")
}

func TestAddDerive(t *testing.T) {
	checkAssist(t, AddDerive,
		"struct Foo { a: i32, <|>}",
		"#[derive(<|>)]\nstruct Foo { a: i32, }",
	)
	checkAssist(t, AddDerive,
		"struct Foo { <|> a: i32, }",
		"#[derive(<|>)]\nstruct Foo {  a: i32, }",
	)
}

func TestAddDerive_ExistingAttribute(t *testing.T) {
	checkAssist(t, AddDerive,
		"#[derive(Clone)]\nstruct Foo { a: i32<|>, }",
		"#[derive(Clone<|>)]\nstruct Foo { a: i32, }",
	)
}

func TestAddDerive_NotApplicable(t *testing.T) {
	checkNotApplicable(t, AddDerive, "fn main() { <|> }")
}

func TestAddImpl(t *testing.T) {
	checkAssist(t, AddImpl,
		"struct Foo {<|>}\n",
		"struct Foo {}\n\nimpl Foo {\n<|>\n}\n",
	)
	checkAssist(t, AddImpl,
		"enum E<|> { A }",
		"enum E { A }\n\nimpl E {\n<|>\n}",
	)
	checkAssist(t, AddImpl,
		"struct Foo<T: Clone> {<|>}",
		"struct Foo<T: Clone> {}\n\nimpl<T: Clone> Foo<T> {\n<|>\n}",
	)
	checkAssist(t, AddImpl,
		"struct Foo<'a, T> {<|> x: &'a T }",
		"struct Foo<'a, T> { x: &'a T }\n\nimpl<'a, T> Foo<'a, T> {\n<|>\n}",
	)
}

func TestDefault(t *testing.T) {
	labels := make([]string, 0, 3)
	for _, a := range Default() {
		labels = append(labels, a.Label)
	}
	assert.Equal(t, []string{"flip comma", "add `#[derive]`", "add impl"}, labels)
}

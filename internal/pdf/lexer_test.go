package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src string) []Object {
	t.Helper()
	lx := newLexer([]byte(src), 0)
	var out []Object
	for {
		lx.skipSpace()
		if lx.eof() {
			return out
		}
		obj, err := lx.readObject()
		require.NoError(t, err)
		out = append(out, obj)
	}
}

func TestLexerScalars(t *testing.T) {
	objs := readAll(t, "true false null 42 -17 3.14 .5")
	require.Len(t, objs, 7)
	assert.Equal(t, Boolean(true), objs[0])
	assert.Equal(t, Boolean(false), objs[1])
	assert.Equal(t, Null{}, objs[2])
	assert.Equal(t, Number(42), objs[3])
	assert.Equal(t, Number(-17), objs[4])
	assert.Equal(t, Number(3.14), objs[5])
	assert.Equal(t, Number(0.5), objs[6])
}

func TestLexerNames(t *testing.T) {
	objs := readAll(t, "/Type /Name#20With#20Spaces /A#42")
	require.Len(t, objs, 3)
	assert.Equal(t, Name("Type"), objs[0])
	assert.Equal(t, Name("Name With Spaces"), objs[1])
	assert.Equal(t, Name("AB"), objs[2])
}

func TestLexerLiteralStrings(t *testing.T) {
	objs := readAll(t, `(simple) (with (nested) parens) (esc\)aped) (octal \101\102) (tab\there)`)
	require.Len(t, objs, 5)
	assert.Equal(t, String_("simple"), objs[0])
	assert.Equal(t, String_("with (nested) parens"), objs[1])
	assert.Equal(t, String_("esc)aped"), objs[2])
	assert.Equal(t, String_("octal AB"), objs[3])
	assert.Equal(t, String_("tab\there"), objs[4])
}

func TestLexerLiteralStringLineContinuation(t *testing.T) {
	objs := readAll(t, "(one\\\ntwo)")
	require.Len(t, objs, 1)
	assert.Equal(t, String_("onetwo"), objs[0])
}

func TestLexerUnterminatedString(t *testing.T) {
	lx := newLexer([]byte("(never closed"), 0)
	_, err := lx.readObject()
	assert.Error(t, err)
}

func TestLexerHexStrings(t *testing.T) {
	objs := readAll(t, "<48656C6C6F> <48 65 6C> <414>")
	require.Len(t, objs, 3)
	assert.Equal(t, String_("Hello"), objs[0])
	assert.Equal(t, String_("Hel"), objs[1])
	// Odd digit count: the final nibble is padded with zero.
	assert.Equal(t, String_{0x41, 0x40}, objs[2])
}

func TestLexerArraysAndDicts(t *testing.T) {
	objs := readAll(t, "[1 (two) /Three [4]] << /Key (value) /Nested << /N 1 >> >>")
	require.Len(t, objs, 2)

	arr, ok := objs[0].(Array)
	require.True(t, ok)
	require.Len(t, arr, 4)
	assert.Equal(t, Number(1), arr[0])
	assert.Equal(t, String_("two"), arr[1])
	assert.Equal(t, Name("Three"), arr[2])

	dict, ok := objs[1].(Dict)
	require.True(t, ok)
	assert.Equal(t, String_("value"), dict["Key"])
	nested, ok := dict["Nested"].(Dict)
	require.True(t, ok)
	assert.Equal(t, Number(1), nested["N"])
}

func TestLexerIndirectReferences(t *testing.T) {
	objs := readAll(t, "12 0 R [1 0 R 2 5 R] 7 (not a ref)")
	require.Len(t, objs, 4)
	assert.Equal(t, Ref{Num: 12, Gen: 0}, objs[0])

	arr := objs[1].(Array)
	assert.Equal(t, Ref{Num: 1, Gen: 0}, arr[0])
	assert.Equal(t, Ref{Num: 2, Gen: 5}, arr[1])

	// Integer not followed by "gen R" stays a number.
	assert.Equal(t, Number(7), objs[2])
	assert.Equal(t, String_("not a ref"), objs[3])
}

func TestLexerRefNotGreedy(t *testing.T) {
	// "1 0 Rogue" must not parse as a reference: R is part of a longer
	// keyword.
	objs := readAll(t, "1 0 Rogue")
	require.Len(t, objs, 3)
	assert.Equal(t, Number(1), objs[0])
	assert.Equal(t, Number(0), objs[1])
	assert.Equal(t, Keyword("Rogue"), objs[2])
}

func TestLexerComments(t *testing.T) {
	objs := readAll(t, "42 % this comment runs to end of line\n/After")
	require.Len(t, objs, 2)
	assert.Equal(t, Number(42), objs[0])
	assert.Equal(t, Name("After"), objs[1])
}

func TestLexerKeywords(t *testing.T) {
	objs := readAll(t, "obj endobj Tj BT")
	require.Len(t, objs, 4)
	assert.Equal(t, Keyword("obj"), objs[0])
	assert.Equal(t, Keyword("Tj"), objs[2])
}

package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFontDefaultEncoding(t *testing.T) {
	d := &Document{}
	f, err := d.loadFont(Dict{
		"Type":     Name("Font"),
		"Subtype":  Name("Type1"),
		"BaseFont": Name("Helvetica"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Helvetica", f.BaseFont)
	assert.Equal(t, "Hello, world!", f.Decode([]byte("Hello, world!")))
	// Latin-1 high bytes pass through.
	assert.Equal(t, "é", f.Decode([]byte{0xE9}))
}

func TestLoadFontWinAnsi(t *testing.T) {
	d := &Document{}
	f, err := d.loadFont(Dict{
		"Subtype":  Name("Type1"),
		"BaseFont": Name("Helvetica"),
		"Encoding": Name("WinAnsiEncoding"),
	})
	require.NoError(t, err)
	assert.Equal(t, "text", f.Decode([]byte("text")))
}

func TestLoadFontMacRoman(t *testing.T) {
	d := &Document{}
	f, err := d.loadFont(Dict{
		"Subtype":  Name("Type1"),
		"BaseFont": Name("Times-Roman"),
		"Encoding": Name("MacRomanEncoding"),
	})
	require.NoError(t, err)
	// 0x8E is e-acute in MacRoman, not in Latin-1.
	assert.Equal(t, "é", f.Decode([]byte{0x8E}))
	assert.Equal(t, "plain", f.Decode([]byte("plain")))
}

func TestLoadFontDifferences(t *testing.T) {
	d := &Document{}
	f, err := d.loadFont(Dict{
		"Subtype":  Name("Type1"),
		"BaseFont": Name("Custom"),
		"Encoding": Dict{
			"BaseEncoding": Name("WinAnsiEncoding"),
			"Differences": Array{
				Number(65), Name("eacute"), Name("ccedilla"),
				Number(97), Name("uni20AC"),
			},
		},
	})
	require.NoError(t, err)
	// Consecutive names take consecutive codes from the last number.
	assert.Equal(t, "éç", f.Decode([]byte{65, 66}))
	assert.Equal(t, "€", f.Decode([]byte{97}))
	// Untouched codes keep the base encoding.
	assert.Equal(t, "C", f.Decode([]byte{67}))
}

func TestLoadFontUnknownGlyphName(t *testing.T) {
	d := &Document{}
	f, err := d.loadFont(Dict{
		"Subtype":  Name("Type1"),
		"BaseFont": Name("Custom"),
		"Encoding": Dict{
			"Differences": Array{Number(65), Name("g123notreal")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "�", f.Decode([]byte{65}))
}

func TestLoadFontUnsupportedEncodingName(t *testing.T) {
	d := &Document{}
	_, err := d.loadFont(Dict{
		"Subtype":  Name("Type1"),
		"BaseFont": Name("Exotic"),
		"Encoding": Name("Identity-H"),
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "font encoding unsupported"))
}

func TestLoadFontType0WithoutToUnicode(t *testing.T) {
	d := &Document{}
	_, err := d.loadFont(Dict{
		"Subtype":  Name("Type0"),
		"BaseFont": Name("Composite"),
		"Encoding": Name("Identity-H"),
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "font encoding unsupported"))
}

func TestGlyphRuneForms(t *testing.T) {
	assert.Equal(t, 'A', glyphRune("A"))
	assert.Equal(t, ' ', glyphRune("space"))
	assert.Equal(t, '€', glyphRune("Euro"))
	assert.Equal(t, rune(0x20AC), glyphRune("uni20AC"))
	assert.Equal(t, rune(0x1D11E), glyphRune("u1D11E"))
	assert.Equal(t, '�', glyphRune("completelyunknown"))
}

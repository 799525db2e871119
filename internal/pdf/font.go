package pdf

import (
	"fmt"
	"strconv"
	"strings"
)

// Font maps glyph codes appearing in a content stream to text. Simple
// fonts use a 256-entry code table assembled from the base encoding and
// /Differences; composite (Type0) fonts rely entirely on /ToUnicode.
type Font struct {
	BaseFont  string
	Subtype   Name
	toUnicode *CMap
	table     *[256]rune
}

// loadFont builds a Font from a font dictionary. An error means the
// font's encoding cannot be decoded; callers treat that as a page-level
// failure, never a document-level one.
func (d *Document) loadFont(obj Object) (*Font, error) {
	dict, ok := toDict(d.Resolve(obj))
	if !ok {
		return nil, fmt.Errorf("font resource is %T, want dictionary", d.Resolve(obj))
	}

	f := &Font{}
	if bf, ok := toName(d.Resolve(dict["BaseFont"])); ok {
		f.BaseFont = string(bf)
	}
	f.Subtype, _ = toName(d.Resolve(dict["Subtype"]))

	if tu, ok := d.Resolve(dict["ToUnicode"]).(Stream); ok {
		data, err := d.StreamData(tu)
		if err != nil {
			return nil, fmt.Errorf("font %s: reading ToUnicode stream: %w", f.BaseFont, err)
		}
		cmap, err := ParseToUnicode(data)
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", f.BaseFont, err)
		}
		f.toUnicode = cmap
	}

	if f.Subtype == "Type0" {
		// Composite fonts index CIDs whose meaning lives in external
		// CMaps; without a ToUnicode map the codes are opaque.
		if f.toUnicode == nil {
			return nil, fmt.Errorf("font encoding unsupported: composite font %s has no ToUnicode map", f.BaseFont)
		}
		return f, nil
	}

	table, err := d.buildEncodingTable(dict)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", f.BaseFont, err)
	}
	f.table = table
	return f, nil
}

// buildEncodingTable assembles the simple-font code table from the base
// encoding plus any /Differences overrides.
func (d *Document) buildEncodingTable(dict Dict) (*[256]rune, error) {
	var table [256]rune
	fill := func(base Name) {
		for i := range table {
			table[i] = rune(i) // StandardEncoding and WinAnsi are Latin-1 compatible here
		}
		if base == "MacRomanEncoding" {
			copy(table[128:], macRomanHigh[:])
		}
	}
	fill("")

	switch enc := d.Resolve(dict["Encoding"]).(type) {
	case nil:
	case Null:
	case Name:
		switch enc {
		case "WinAnsiEncoding", "StandardEncoding", "MacRomanEncoding", "PDFDocEncoding":
			fill(enc)
		default:
			return nil, fmt.Errorf("font encoding unsupported: /%s", enc)
		}
	case Dict:
		if base, ok := toName(d.Resolve(enc["BaseEncoding"])); ok {
			fill(base)
		}
		diffs, ok := toArray(d.Resolve(enc["Differences"]))
		if !ok {
			break
		}
		code := 0
		for _, item := range diffs {
			switch v := d.Resolve(item).(type) {
			case Number:
				code = int(v)
			case Name:
				if code < 0 || code > 255 {
					return nil, fmt.Errorf("font encoding unsupported: /Differences code %d out of range", code)
				}
				table[code] = glyphRune(v)
				code++
			default:
				return nil, fmt.Errorf("font encoding unsupported: /Differences entry is %T", item)
			}
		}
	default:
		return nil, fmt.Errorf("font encoding unsupported: /Encoding is %T", enc)
	}

	return &table, nil
}

// Decode turns a text-showing operand's raw bytes into text.
func (f *Font) Decode(raw []byte) string {
	if f.toUnicode != nil {
		return f.toUnicode.Decode(raw)
	}
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		sb.WriteRune(f.table[b])
	}
	return sb.String()
}

// glyphRune resolves a PostScript glyph name to a rune. Unknown names
// decode to U+FFFD rather than dropping the character.
func glyphRune(name Name) rune {
	s := string(name)
	if len(s) == 1 {
		return rune(s[0])
	}
	if r, ok := glyphToRune[s]; ok {
		return r
	}
	// uniXXXX / uXXXX[XX] name forms
	if strings.HasPrefix(s, "uni") && len(s) >= 7 {
		if v, err := strconv.ParseUint(s[3:7], 16, 32); err == nil {
			return rune(v)
		}
	}
	if strings.HasPrefix(s, "u") && len(s) >= 5 && len(s) <= 7 {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return rune(v)
		}
	}
	return '�'
}

// glyphToRune covers the Standard/WinAnsi glyph names that appear in
// /Differences arrays of text-bearing documents.
var glyphToRune = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"quoteright": '’', "quoteleft": '‘', "parenleft": '(',
	"parenright": ')', "asterisk": '*', "plus": '+', "comma": ',',
	"hyphen": '-', "minus": '−', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "asciicircum": '^',
	"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|',
	"braceright": '}', "asciitilde": '~',
	"quotedblleft": '“', "quotedblright": '”',
	"quotesinglbase": '‚', "quotedblbase": '„',
	"endash": '–', "emdash": '—', "bullet": '•',
	"dagger": '†', "daggerdbl": '‡', "ellipsis": '…',
	"fi": 'ﬁ', "fl": 'ﬂ', "florin": 'ƒ',
	"fraction": '⁄', "guilsinglleft": '‹', "guilsinglright": '›',
	"guillemotleft": '«', "guillemotright": '»',
	"perthousand": '‰', "trademark": '™', "copyright": '©',
	"registered": '®', "degree": '°', "plusminus": '±',
	"multiply": '×', "divide": '÷', "cent": '¢',
	"sterling": '£', "yen": '¥', "Euro": '€',
	"currency": '¤', "section": '§', "paragraph": '¶',
	"exclamdown": '¡', "questiondown": '¿',
	"agrave": 'à', "aacute": 'á', "acircumflex": 'â',
	"atilde": 'ã', "adieresis": 'ä', "aring": 'å',
	"ae": 'æ', "ccedilla": 'ç', "egrave": 'è',
	"eacute": 'é', "ecircumflex": 'ê', "edieresis": 'ë',
	"igrave": 'ì', "iacute": 'í', "icircumflex": 'î',
	"idieresis": 'ï', "ntilde": 'ñ', "ograve": 'ò',
	"oacute": 'ó', "ocircumflex": 'ô', "otilde": 'õ',
	"odieresis": 'ö', "oslash": 'ø', "ugrave": 'ù',
	"uacute": 'ú', "ucircumflex": 'û', "udieresis": 'ü',
	"yacute": 'ý', "ydieresis": 'ÿ', "eth": 'ð',
	"thorn": 'þ', "germandbls": 'ß', "scaron": 'š',
	"Scaron": 'Š', "zcaron": 'ž', "Zcaron": 'Ž',
	"oe": 'œ', "OE": 'Œ', "Ydieresis": 'Ÿ',
	"Agrave": 'À', "Aacute": 'Á', "Acircumflex": 'Â',
	"Atilde": 'Ã', "Adieresis": 'Ä', "Aring": 'Å',
	"AE": 'Æ', "Ccedilla": 'Ç', "Egrave": 'È',
	"Eacute": 'É', "Ecircumflex": 'Ê', "Edieresis": 'Ë',
	"Igrave": 'Ì', "Iacute": 'Í', "Icircumflex": 'Î',
	"Idieresis": 'Ï', "Ntilde": 'Ñ', "Ograve": 'Ò',
	"Oacute": 'Ó', "Ocircumflex": 'Ô', "Otilde": 'Õ',
	"Odieresis": 'Ö', "Oslash": 'Ø', "Ugrave": 'Ù',
	"Uacute": 'Ú', "Ucircumflex": 'Û', "Udieresis": 'Ü',
	"Yacute": 'Ý', "Eth": 'Ð', "Thorn": 'Þ',
	"dotlessi": 'ı', "circumflex": 'ˆ', "caron": 'ˇ',
	"tilde": '˜', "breve": '˘', "dotaccent": '˙',
	"ring": '˚', "cedilla": '¸', "hungarumlaut": '˝',
	"ogonek": '˛', "macron": '¯', "brokenbar": '¦',
	"logicalnot": '¬', "mu": 'µ', "middot": '·',
	"periodcentered": '·', "onesuperior": '¹',
	"twosuperior": '²', "threesuperior": '³',
	"onequarter": '¼', "onehalf": '½', "threequarters": '¾',
	"ordfeminine": 'ª', "ordmasculine": 'º',
	"nbspace": ' ',
}

// macRomanHigh is the upper half (0x80..0xFF) of MacRomanEncoding.
var macRomanHigh = [128]rune{
	'Ä', 'Å', 'Ç', 'É', 'Ñ', 'Ö', 'Ü', 'á',
	'à', 'â', 'ä', 'ã', 'å', 'ç', 'é', 'è',
	'ê', 'ë', 'í', 'ì', 'î', 'ï', 'ñ', 'ó',
	'ò', 'ô', 'ö', 'õ', 'ú', 'ù', 'û', 'ü',
	'†', '°', '¢', '£', '§', '•', '¶', 'ß',
	'®', '©', '™', '´', '¨', '≠', 'Æ', 'Ø',
	'∞', '±', '≤', '≥', '¥', 'µ', '∂', '∑',
	'∏', 'π', '∫', 'ª', 'º', 'Ω', 'æ', 'ø',
	'¿', '¡', '¬', '√', 'ƒ', '≈', '∆', '«',
	'»', '…', ' ', 'À', 'Ã', 'Õ', 'Œ', 'œ',
	'–', '—', '“', '”', '‘', '’', '÷', '◊',
	'ÿ', 'Ÿ', '⁄', '€', '‹', '›', 'ﬁ', 'ﬂ',
	'‡', '·', '‚', '„', '‰', 'Â', 'Ê', 'Á',
	'Ë', 'È', 'Í', 'Î', 'Ï', 'Ì', 'Ó', 'Ô',
	'', 'Ò', 'Ú', 'Û', 'Ù', 'ı', 'ˆ', '˜',
	'¯', '˘', '˙', '˚', '¸', '˝', '˛', 'ˇ',
}

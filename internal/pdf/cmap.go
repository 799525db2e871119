package pdf

import (
	"fmt"
	"unicode/utf16"
)

// CMap is a parsed /ToUnicode character map: codespace ranges defining
// how many bytes one code takes, plus bfchar/bfrange mappings from
// codes to Unicode text.
type CMap struct {
	codespaces []codespace
	chars      map[string]string
	ranges     []bfrange
}

type codespace struct {
	lo, hi []byte // equal length, 1..4 bytes
}

type bfrange struct {
	lo, hi []byte
	base   []byte   // UTF-16BE base value, incremented across the range
	list   []string // explicit per-code values, when given as an array
}

// Decode maps raw string bytes through the cmap. Codes outside every
// mapping decode to U+FFFD so downstream output stays valid UTF-8.
func (m *CMap) Decode(raw []byte) string {
	var out []rune
	for i := 0; i < len(raw); {
		n := m.codeLen(raw[i:])
		code := raw[i : i+n]
		i += n

		if s, ok := m.chars[string(code)]; ok {
			out = append(out, []rune(s)...)
			continue
		}
		if s, ok := m.lookupRange(code); ok {
			out = append(out, []rune(s)...)
			continue
		}
		out = append(out, '�')
	}
	return string(out)
}

// codeLen determines how many bytes the next code occupies, preferring
// the shortest codespace that matches. Without codespace information a
// code is assumed to be as wide as the mapped keys (2 bytes is the
// common case for ToUnicode cmaps; 1 byte for simple fonts).
func (m *CMap) codeLen(raw []byte) int {
	for _, cs := range m.codespaces {
		n := len(cs.lo)
		if n > len(raw) {
			continue
		}
		if inRange(raw[:n], cs.lo, cs.hi) {
			return n
		}
	}
	// No codespace matched; fall back to a mapped key width.
	for n := 1; n <= 4 && n <= len(raw); n++ {
		if _, ok := m.chars[string(raw[:n])]; ok {
			return n
		}
		for _, r := range m.ranges {
			if len(r.lo) == n && inRange(raw[:n], r.lo, r.hi) {
				return n
			}
		}
	}
	if len(m.codespaces) > 0 {
		n := len(m.codespaces[0].lo)
		if n <= len(raw) {
			return n
		}
	}
	return 1
}

func (m *CMap) lookupRange(code []byte) (string, bool) {
	for _, r := range m.ranges {
		if len(r.lo) != len(code) || !inRange(code, r.lo, r.hi) {
			continue
		}
		delta := decodeBE(code) - decodeBE(r.lo)
		if r.list != nil {
			if delta < len(r.list) {
				return r.list[delta], true
			}
			return "", false
		}
		base := decodeBE(r.base)
		return utf16BEString(encodeBE(base+delta, len(r.base))), true
	}
	return "", false
}

func inRange(code, lo, hi []byte) bool {
	v := decodeBE(code)
	return v >= decodeBE(lo) && v <= decodeBE(hi)
}

func encodeBE(v, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// utf16BEString decodes UTF-16BE bytes without a byte-order mark.
func utf16BEString(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}
	u16 := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u16 = append(u16, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(u16))
}

// ParseToUnicode parses the decoded bytes of a /ToUnicode cmap stream.
func ParseToUnicode(data []byte) (*CMap, error) {
	m := &CMap{chars: make(map[string]string)}
	lx := newLexer(data, 0)
	var operands []Object

	for {
		lx.skipSpace()
		if lx.eof() {
			break
		}
		obj, err := lx.readObject()
		if err != nil {
			return nil, fmt.Errorf("cmap syntax: %w", err)
		}
		kw, ok := obj.(Keyword)
		if !ok {
			operands = append(operands, obj)
			continue
		}
		switch kw {
		case "begincodespacerange":
			if err := m.parseCodespaces(lx); err != nil {
				return nil, err
			}
		case "beginbfchar":
			if err := m.parseBfChars(lx); err != nil {
				return nil, err
			}
		case "beginbfrange":
			if err := m.parseBfRanges(lx); err != nil {
				return nil, err
			}
		}
		operands = operands[:0]
	}
	_ = operands

	if len(m.chars) == 0 && len(m.ranges) == 0 {
		return nil, fmt.Errorf("cmap carries no bfchar or bfrange mappings")
	}
	return m, nil
}

func (m *CMap) parseCodespaces(lx *lexer) error {
	for {
		lo, done, err := readCMapOperand(lx, "endcodespacerange")
		if done || err != nil {
			return err
		}
		hi, done, err := readCMapOperand(lx, "endcodespacerange")
		if done {
			return fmt.Errorf("odd operand count in codespacerange")
		}
		if err != nil {
			return err
		}
		if len(lo) == 0 || len(lo) != len(hi) || len(lo) > 4 {
			return fmt.Errorf("malformed codespace range")
		}
		m.codespaces = append(m.codespaces, codespace{lo: lo, hi: hi})
	}
}

func (m *CMap) parseBfChars(lx *lexer) error {
	for {
		code, done, err := readCMapOperand(lx, "endbfchar")
		if done || err != nil {
			return err
		}
		dst, done, err := readCMapOperand(lx, "endbfchar")
		if done {
			return fmt.Errorf("odd operand count in bfchar")
		}
		if err != nil {
			return err
		}
		if len(code) == 0 {
			return fmt.Errorf("empty bfchar code")
		}
		m.chars[string(code)] = utf16BEString(dst)
	}
}

func (m *CMap) parseBfRanges(lx *lexer) error {
	for {
		lx.skipSpace()
		if lx.eof() {
			return fmt.Errorf("unterminated bfrange")
		}
		obj, err := lx.readObject()
		if err != nil {
			return err
		}
		if kw, ok := obj.(Keyword); ok {
			if kw == "endbfrange" {
				return nil
			}
			return fmt.Errorf("unexpected keyword %s in bfrange", kw)
		}
		lo, ok := obj.(String_)
		if !ok {
			return fmt.Errorf("bfrange low bound is %T", obj)
		}
		hiObj, err := lx.readObject()
		if err != nil {
			return err
		}
		hi, ok := hiObj.(String_)
		if !ok || len(hi) != len(lo) || len(lo) == 0 {
			return fmt.Errorf("malformed bfrange bounds")
		}
		dstObj, err := lx.readObject()
		if err != nil {
			return err
		}
		r := bfrange{lo: []byte(lo), hi: []byte(hi)}
		switch dst := dstObj.(type) {
		case String_:
			r.base = []byte(dst)
		case Array:
			for _, item := range dst {
				s, ok := item.(String_)
				if !ok {
					return fmt.Errorf("bfrange array item is %T", item)
				}
				r.list = append(r.list, utf16BEString(s))
			}
		default:
			return fmt.Errorf("bfrange destination is %T", dstObj)
		}
		m.ranges = append(m.ranges, r)
	}
}

// readCMapOperand reads one hex-string operand or the section-ending
// keyword.
func readCMapOperand(lx *lexer, endKeyword string) ([]byte, bool, error) {
	lx.skipSpace()
	if lx.eof() {
		return nil, false, fmt.Errorf("unterminated cmap section")
	}
	obj, err := lx.readObject()
	if err != nil {
		return nil, false, err
	}
	if kw, ok := obj.(Keyword); ok {
		if string(kw) == endKeyword {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("unexpected keyword %s in cmap section", kw)
	}
	s, ok := obj.(String_)
	if !ok {
		return nil, false, fmt.Errorf("cmap operand is %T, want hex string", obj)
	}
	return []byte(s), false, nil
}

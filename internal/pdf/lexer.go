package pdf

import (
	"fmt"
	"strconv"
)

// lexer reads PDF objects from a byte slice. The same machinery parses
// file-level objects, xref sections, and page content streams; indirect
// references (1 0 R) only appear at file level but recognizing them is
// harmless elsewhere.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte, pos int) *lexer {
	return &lexer{data: data, pos: pos}
}

func isWhitespace(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(b byte) bool {
	return !isWhitespace(b) && !isDelimiter(b)
}

func (l *lexer) eof() bool { return l.pos >= len(l.data) }

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.data[l.pos]
}

// skipSpace skips whitespace and %-comments.
func (l *lexer) skipSpace() {
	for !l.eof() {
		b := l.data[l.pos]
		if isWhitespace(b) {
			l.pos++
			continue
		}
		if b == '%' {
			for !l.eof() && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		break
	}
}

// readObject reads the next object, resolving the "num gen R" indirect
// reference pattern via lookahead.
func (l *lexer) readObject() (Object, error) {
	l.skipSpace()
	if l.eof() {
		return nil, fmt.Errorf("unexpected end of data")
	}

	b := l.data[l.pos]
	switch {
	case b == '/':
		return l.readName()
	case b == '(':
		return l.readLiteralString()
	case b == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			return l.readDict()
		}
		return l.readHexString()
	case b == '[':
		return l.readArray()
	case b == ']' || b == '>' || b == ')' || b == '{' || b == '}':
		return nil, fmt.Errorf("unexpected delimiter %q at offset %d", b, l.pos)
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		return l.readNumberOrRef()
	default:
		return l.readKeyword()
	}
}

func (l *lexer) readName() (Object, error) {
	l.pos++ // consume '/'
	start := l.pos
	var buf []byte
	for !l.eof() && isRegular(l.data[l.pos]) {
		b := l.data[l.pos]
		if b == '#' && l.pos+2 < len(l.data) {
			if v, err := strconv.ParseUint(string(l.data[l.pos+1:l.pos+3]), 16, 8); err == nil {
				if buf == nil {
					buf = append(buf, l.data[start:l.pos]...)
				}
				buf = append(buf, byte(v))
				l.pos += 3
				continue
			}
		}
		if buf != nil {
			buf = append(buf, b)
		}
		l.pos++
	}
	if buf != nil {
		return Name(buf), nil
	}
	return Name(l.data[start:l.pos]), nil
}

func (l *lexer) readLiteralString() (Object, error) {
	l.pos++ // consume '('
	var out []byte
	depth := 1
	for !l.eof() {
		b := l.data[l.pos]
		l.pos++
		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				return String_(out), nil
			}
			out = append(out, b)
		case '\\':
			if l.eof() {
				return nil, fmt.Errorf("unterminated string escape")
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\r':
				// line continuation; swallow optional LF
				if !l.eof() && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && !l.eof(); i++ {
						c := l.data[l.pos]
						if c < '0' || c > '7' {
							break
						}
						v = v<<3 | int(c-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, b)
		}
	}
	return nil, fmt.Errorf("unterminated literal string")
}

func (l *lexer) readHexString() (Object, error) {
	l.pos++ // consume '<'
	var out []byte
	var hi byte
	have := false
	for !l.eof() {
		b := l.data[l.pos]
		l.pos++
		if b == '>' {
			if have {
				out = append(out, hi<<4)
			}
			return String_(out), nil
		}
		var v byte
		switch {
		case b >= '0' && b <= '9':
			v = b - '0'
		case b >= 'a' && b <= 'f':
			v = b - 'a' + 10
		case b >= 'A' && b <= 'F':
			v = b - 'A' + 10
		default:
			continue // whitespace inside hex strings is allowed
		}
		if have {
			out = append(out, hi<<4|v)
			have = false
		} else {
			hi = v
			have = true
		}
	}
	return nil, fmt.Errorf("unterminated hex string")
}

func (l *lexer) readArray() (Object, error) {
	l.pos++ // consume '['
	arr := Array{}
	for {
		l.skipSpace()
		if l.eof() {
			return nil, fmt.Errorf("unterminated array")
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return arr, nil
		}
		obj, err := l.readObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (l *lexer) readDict() (Object, error) {
	l.pos += 2 // consume '<<'
	d := Dict{}
	for {
		l.skipSpace()
		if l.eof() {
			return nil, fmt.Errorf("unterminated dictionary")
		}
		if l.data[l.pos] == '>' {
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
				l.pos += 2
				return d, nil
			}
			return nil, fmt.Errorf("malformed dictionary close at offset %d", l.pos)
		}
		keyObj, err := l.readObject()
		if err != nil {
			return nil, err
		}
		key, ok := keyObj.(Name)
		if !ok {
			return nil, fmt.Errorf("dictionary key is %T, want name", keyObj)
		}
		val, err := l.readObject()
		if err != nil {
			return nil, err
		}
		d[key] = val
	}
}

func (l *lexer) readNumberOrRef() (Object, error) {
	first, isInt, err := l.readNumber()
	if err != nil {
		return nil, err
	}
	if !isInt || first < 0 {
		return Number(first), nil
	}

	// Lookahead for "gen R".
	save := l.pos
	l.skipSpace()
	if !l.eof() && l.data[l.pos] >= '0' && l.data[l.pos] <= '9' {
		gen, genInt, err := l.readNumber()
		if err == nil && genInt {
			l.skipSpace()
			if !l.eof() && l.data[l.pos] == 'R' {
				next := l.pos + 1
				if next >= len(l.data) || !isRegular(l.data[next]) {
					l.pos = next
					return Ref{Num: int(first), Gen: int(gen)}, nil
				}
			}
		}
	}
	l.pos = save
	return Number(first), nil
}

// readNumber parses an integer or real. isInt reports whether the
// token had no fractional part.
func (l *lexer) readNumber() (float64, bool, error) {
	start := l.pos
	if b := l.peek(); b == '+' || b == '-' {
		l.pos++
	}
	isInt := true
	for !l.eof() {
		b := l.data[l.pos]
		if b >= '0' && b <= '9' {
			l.pos++
		} else if b == '.' {
			isInt = false
			l.pos++
		} else {
			break
		}
	}
	tok := string(l.data[start:l.pos])
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed number %q at offset %d", tok, start)
	}
	return v, isInt, nil
}

func (l *lexer) readKeyword() (Object, error) {
	start := l.pos
	for !l.eof() && isRegular(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return nil, fmt.Errorf("unexpected byte %q at offset %d", l.data[l.pos], l.pos)
	}
	switch kw := string(l.data[start:l.pos]); kw {
	case "true":
		return Boolean(true), nil
	case "false":
		return Boolean(false), nil
	case "null":
		return Null{}, nil
	default:
		return Keyword(kw), nil
	}
}

// expectKeyword consumes the next token and checks it is the given
// keyword.
func (l *lexer) expectKeyword(kw string) error {
	obj, err := l.readObject()
	if err != nil {
		return err
	}
	if k, ok := obj.(Keyword); !ok || string(k) != kw {
		return fmt.Errorf("expected keyword %q, got %v", kw, obj)
	}
	return nil
}

package pdf

import (
	"bytes"
	"fmt"
)

// Operation is a single content-stream command: an operator preceded by
// its operands.
type Operation struct {
	Operator string
	Operands []Object
}

// parseContent splits a decoded content stream into operations. Inline
// images (BI ... EI) carry arbitrary binary data and are skipped whole.
func parseContent(data []byte) ([]Operation, error) {
	lx := newLexer(data, 0)
	var ops []Operation
	var operands []Object

	for {
		lx.skipSpace()
		if lx.eof() {
			break
		}
		obj, err := lx.readObject()
		if err != nil {
			return nil, fmt.Errorf("content stream at offset %d: %w", lx.pos, err)
		}

		kw, ok := obj.(Keyword)
		if !ok {
			operands = append(operands, obj)
			continue
		}

		if kw == "BI" {
			if err := skipInlineImage(lx); err != nil {
				return nil, err
			}
			operands = operands[:0]
			continue
		}

		ops = append(ops, Operation{
			Operator: string(kw),
			Operands: append([]Object(nil), operands...),
		})
		operands = operands[:0]
	}

	return ops, nil
}

// skipInlineImage advances past an inline image's dictionary entries
// and binary payload, leaving the lexer just after the EI operator.
func skipInlineImage(lx *lexer) error {
	// Image dictionary entries up to the ID operator.
	for {
		lx.skipSpace()
		if lx.eof() {
			return fmt.Errorf("unterminated inline image dictionary")
		}
		obj, err := lx.readObject()
		if err != nil {
			return fmt.Errorf("inline image dictionary: %w", err)
		}
		if kw, ok := obj.(Keyword); ok && kw == "ID" {
			break
		}
	}
	// One whitespace byte separates ID from the binary payload.
	if !lx.eof() && isWhitespace(lx.data[lx.pos]) {
		lx.pos++
	}
	// Find EI delimited by whitespace on both sides.
	for {
		i := bytes.Index(lx.data[lx.pos:], []byte("EI"))
		if i < 0 {
			return fmt.Errorf("unterminated inline image data")
		}
		at := lx.pos + i
		end := at + 2
		before := at == 0 || isWhitespace(lx.data[at-1])
		after := end >= len(lx.data) || isWhitespace(lx.data[end]) || isDelimiter(lx.data[end])
		if before && after {
			lx.pos = end
			return nil
		}
		lx.pos = at + 2
	}
}

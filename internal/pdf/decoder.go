package pdf

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Matrix is a 3x3 transform matrix (last row implicitly 0,0,1).
type Matrix [6]float64

func identityMatrix() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// mult multiplies matrix a by matrix b.
func (a Matrix) mult(b Matrix) Matrix {
	return Matrix{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

// textState tracks the text-specific content stream parameters.
type textState struct {
	font        *Font
	fontSize    float64
	charSpacing float64
	wordSpacing float64
	scale       float64
	leading     float64

	tm  Matrix // text matrix
	tlm Matrix // text line matrix
}

// extractor walks one page's operations and accumulates plain text,
// inserting line breaks on vertical movement and spaces on horizontal
// gaps.
type extractor struct {
	doc  *Document
	page *Page

	fonts    map[Name]*Font
	fontErrs map[Name]error

	ctm    Matrix
	gStack []Matrix
	ts     textState

	lastX, lastY float64
	haveLast     bool

	sb  strings.Builder
	err error
}

// ExtractPageText decodes the drawn text of one page. Errors are local
// to the page: malformed content streams and unsupported font encodings
// never invalidate the rest of the document.
func (d *Document) ExtractPageText(p *Page) (string, error) {
	content, err := d.contentData(p)
	if err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", nil
	}
	ops, err := parseContent(content)
	if err != nil {
		return "", err
	}

	e := &extractor{
		doc:      d,
		page:     p,
		fonts:    make(map[Name]*Font),
		fontErrs: make(map[Name]error),
		ctm:      identityMatrix(),
		ts:       textState{tm: identityMatrix(), tlm: identityMatrix(), scale: 100},
	}
	for _, op := range ops {
		e.processOp(op)
		if e.err != nil {
			return "", e.err
		}
	}

	out := norm.NFC.String(e.sb.String())
	return strings.TrimRight(out, " \n"), nil
}

func (e *extractor) processOp(op Operation) {
	switch op.Operator {
	case "q":
		e.gStack = append(e.gStack, e.ctm)
	case "Q":
		if n := len(e.gStack); n > 0 {
			e.ctm = e.gStack[n-1]
			e.gStack = e.gStack[:n-1]
		}
	case "cm":
		if len(op.Operands) == 6 {
			e.ctm = argsToMatrix(op.Operands).mult(e.ctm)
		}
	case "BT":
		e.ts.tm = identityMatrix()
		e.ts.tlm = identityMatrix()
	case "Tc":
		e.ts.charSpacing = number(operand(op, 0))
	case "Tw":
		e.ts.wordSpacing = number(operand(op, 0))
	case "Tz":
		e.ts.scale = number(operand(op, 0))
	case "TL":
		e.ts.leading = number(operand(op, 0))
	case "Tf":
		e.setFont(op)
	case "Td":
		e.moveLine(number(operand(op, 0)), number(operand(op, 1)))
	case "TD":
		ty := number(operand(op, 1))
		e.ts.leading = -ty
		e.moveLine(number(operand(op, 0)), ty)
	case "Tm":
		if len(op.Operands) == 6 {
			e.ts.tm = argsToMatrix(op.Operands)
			e.ts.tlm = e.ts.tm
		}
	case "T*":
		e.moveLine(0, -e.ts.leading)
	case "Tj":
		if len(op.Operands) > 0 {
			e.showText(op.Operands[0])
		}
	case "TJ":
		e.showTextArray(op)
	case "'":
		e.moveLine(0, -e.ts.leading)
		if len(op.Operands) > 0 {
			e.showText(op.Operands[0])
		}
	case "\"":
		if len(op.Operands) == 3 {
			e.ts.wordSpacing = number(op.Operands[0])
			e.ts.charSpacing = number(op.Operands[1])
			e.moveLine(0, -e.ts.leading)
			e.showText(op.Operands[2])
		}
	}
}

func (e *extractor) setFont(op Operation) {
	if len(op.Operands) != 2 {
		return
	}
	name, ok := op.Operands[0].(Name)
	if !ok {
		return
	}
	e.ts.fontSize = number(op.Operands[1])

	if f, ok := e.fonts[name]; ok {
		e.ts.font = f
		return
	}
	if _, failed := e.fontErrs[name]; failed {
		e.ts.font = nil
		return
	}

	f, err := e.lookupFont(name)
	if err != nil {
		// Remembered and surfaced only if text is actually drawn with
		// this font.
		e.fontErrs[name] = err
		e.ts.font = nil
		return
	}
	e.fonts[name] = f
	e.ts.font = f
}

func (e *extractor) lookupFont(name Name) (*Font, error) {
	res := e.page.Resources
	fonts, ok := toDict(e.doc.Resolve(res["Font"]))
	if !ok {
		return nil, fmt.Errorf("page %d has no font resources", e.page.Number)
	}
	ref, ok := fonts[name]
	if !ok {
		return nil, fmt.Errorf("page %d references undefined font /%s", e.page.Number, name)
	}
	return e.doc.loadFont(ref)
}

// moveLine advances the text line matrix and breaks the output line
// when the move is vertical.
func (e *extractor) moveLine(tx, ty float64) {
	m := Matrix{1, 0, 0, 1, tx, ty}
	e.ts.tlm = m.mult(e.ts.tlm)
	e.ts.tm = e.ts.tlm
}

func (e *extractor) showTextArray(op Operation) {
	if len(op.Operands) == 0 {
		return
	}
	arr, ok := op.Operands[0].(Array)
	if !ok {
		return
	}
	for _, item := range arr {
		if adj, ok := item.(Number); ok {
			// Horizontal adjustment in thousandths of an em; a large
			// negative shift reads as an inter-word gap.
			shift := -float64(adj) / 1000.0 * e.ts.fontSize * (e.ts.scale / 100.0)
			if float64(adj) < -180 {
				e.writeSpace()
			}
			e.ts.tm[4] += shift * e.ts.tm[0]
			e.ts.tm[5] += shift * e.ts.tm[1]
			continue
		}
		e.showText(item)
	}
}

func (e *extractor) showText(obj Object) {
	raw, ok := obj.(String_)
	if !ok {
		return
	}

	// A font that failed to load poisons only text drawn with it.
	if e.ts.font == nil {
		for _, err := range e.fontErrs {
			e.err = err
			return
		}
	}

	fm := e.ts.tm.mult(e.ctm)
	x, y := fm[4], fm[5]

	lineHeight := e.ts.fontSize
	if lineHeight == 0 {
		lineHeight = 1
	}
	if e.haveLast {
		if math.Abs(y-e.lastY) > lineHeight*0.5 {
			e.writeNewline()
		} else if gap := x - e.lastX; gap > lineHeight*0.3 {
			e.writeSpace()
		}
	}

	var decoded string
	if e.ts.font != nil {
		decoded = e.ts.font.Decode(raw)
	} else {
		decoded = string(raw) // no Tf seen; best effort
	}
	e.sb.WriteString(decoded)

	// Without full width tables, advance by a half-em per glyph; only
	// the gap heuristics consume this.
	width := float64(len([]rune(decoded))) * e.ts.fontSize * 0.5 * (e.ts.scale / 100.0)
	e.ts.tm[4] += width * e.ts.tm[0]
	e.ts.tm[5] += width * e.ts.tm[1]

	e.lastX = x + width
	e.lastY = y
	e.haveLast = true
}

func (e *extractor) writeNewline() {
	if e.sb.Len() > 0 {
		s := e.sb.String()
		if !strings.HasSuffix(s, "\n") {
			e.sb.WriteString("\n")
		}
	}
}

func (e *extractor) writeSpace() {
	if e.sb.Len() > 0 {
		s := e.sb.String()
		if !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, " ") {
			e.sb.WriteString(" ")
		}
	}
}

// Helpers

func operand(op Operation, i int) Object {
	if i < len(op.Operands) {
		return op.Operands[i]
	}
	return Null{}
}

func number(o Object) float64 {
	if n, ok := o.(Number); ok {
		return float64(n)
	}
	return 0
}

func argsToMatrix(args []Object) Matrix {
	return Matrix{
		number(args[0]), number(args[1]),
		number(args[2]), number(args[3]),
		number(args[4]), number(args[5]),
	}
}

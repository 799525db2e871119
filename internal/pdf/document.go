// Package pdf implements read-only parsing of PDF files: cross-reference
// tables, indirect object resolution, page-tree flattening, and text
// decoding of page content streams.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"unicode/utf16"

	apperrors "pdf-extract-service/pkg/errors"
)

const (
	// tail window searched for the final startxref pointer
	startxrefWindow = 1024
	// resolution depth guard against reference cycles
	maxResolveDepth = 32
	// nesting guard for object streams whose container entries cycle
	maxObjStmDepth = 32
)

// xrefEntry locates one indirect object: either a byte offset into the
// file, or a slot inside a compressed object stream.
type xrefEntry struct {
	offset    int64
	inStream  bool
	streamNum int
	streamIdx int
	free      bool
}

// Document is the parsed, immutable handle for one PDF file. After Open
// returns, the underlying bytes and cross-reference table never change;
// the object cache is guarded so a handle can be shared by concurrent
// page decodes.
type Document struct {
	data      []byte
	xref      map[int]xrefEntry
	trailer   Dict
	encrypted bool

	mu       sync.Mutex
	objCache map[int]Object

	pagesOnce sync.Once
	pages     []Page
	pagesErr  error
}

// Open reads and structurally validates the PDF at path. The returned
// handle is still usable for metadata when the document is encrypted;
// content decoding is rejected separately.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewNotFound(path)
	}
	return Load(data)
}

// Load parses an in-memory PDF.
func Load(data []byte) (*Document, error) {
	// The header may be preceded by junk bytes; offsets are then
	// relative to the header position.
	idx := bytes.Index(head(data, 1024), []byte("%PDF-"))
	if idx < 0 {
		return nil, apperrors.NewInvalidFormat("missing %PDF header")
	}
	data = data[idx:]

	d := &Document{
		data:     data,
		xref:     make(map[int]xrefEntry),
		objCache: make(map[int]Object),
	}

	start, err := d.findStartXref()
	if err != nil {
		return nil, apperrors.NewParseFailed("locating cross-reference table", err)
	}
	if err := d.readXrefChain(start); err != nil {
		return nil, apperrors.NewParseFailed("reading cross-reference table", err)
	}
	if d.trailer == nil {
		return nil, apperrors.NewParseFailed("missing trailer dictionary", nil)
	}
	if _, ok := d.trailer["Root"]; !ok {
		return nil, apperrors.NewParseFailed("trailer has no document catalog", nil)
	}
	d.encrypted = d.trailer["Encrypt"] != nil

	return d, nil
}

// Encrypted reports whether the document carries a security dictionary.
// Content decoding requires credentials this package does not handle.
func (d *Document) Encrypted() bool { return d.encrypted }

// Trailer returns the document trailer dictionary.
func (d *Document) Trailer() Dict { return d.trailer }

func head(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}

func (d *Document) findStartXref() (int64, error) {
	tail := d.data
	base := 0
	if len(tail) > startxrefWindow {
		base = len(tail) - startxrefWindow
		tail = tail[base:]
	}
	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("missing final startxref")
	}
	lx := newLexer(d.data, base+i)
	if err := lx.expectKeyword("startxref"); err != nil {
		return 0, err
	}
	obj, err := lx.readObject()
	if err != nil {
		return 0, err
	}
	off, ok := toInt(obj)
	if !ok || off < 0 || off >= len(d.data) {
		return 0, fmt.Errorf("startxref offset %v out of bounds", obj)
	}
	return int64(off), nil
}

// readXrefChain reads the cross-reference section at offset and follows
// /Prev pointers. Entries from newer sections win.
func (d *Document) readXrefChain(offset int64) error {
	seen := make(map[int64]bool)
	for {
		if seen[offset] {
			return fmt.Errorf("cross-reference sections form a cycle at offset %d", offset)
		}
		seen[offset] = true

		trailer, err := d.readXrefSection(offset)
		if err != nil {
			return err
		}
		if d.trailer == nil {
			d.trailer = Dict{}
		}
		// First-seen keys win; newer sections shadow older ones.
		for k, v := range trailer {
			if _, ok := d.trailer[k]; !ok {
				d.trailer[k] = v
			}
		}

		prev, ok := toInt(trailer["Prev"])
		if !ok {
			return nil
		}
		offset = int64(prev)
	}
}

// readXrefSection parses a single classic xref table or xref stream and
// returns the section's trailer dictionary.
func (d *Document) readXrefSection(offset int64) (Dict, error) {
	if offset < 0 || offset >= int64(len(d.data)) {
		return nil, fmt.Errorf("cross-reference offset %d out of bounds", offset)
	}
	lx := newLexer(d.data, int(offset))
	lx.skipSpace()
	if bytes.HasPrefix(d.data[lx.pos:], []byte("xref")) {
		entries, trailer, err := d.readXrefTable(lx)
		if err != nil {
			return nil, err
		}
		// Hybrid-reference files point at an extra xref stream whose
		// entries shadow this section's table entries; the table marks
		// the stream-packed objects free.
		if stm, ok := toInt(trailer["XRefStm"]); ok {
			if stm < 0 || int64(stm) >= int64(len(d.data)) {
				return nil, fmt.Errorf("hybrid xref stream offset %d out of bounds", stm)
			}
			slx := newLexer(d.data, stm)
			slx.skipSpace()
			if _, err := d.readXrefStream(slx); err != nil {
				return nil, fmt.Errorf("hybrid xref stream: %w", err)
			}
		}
		for num, e := range entries {
			if _, exists := d.xref[num]; !exists {
				d.xref[num] = e
			}
		}
		return trailer, nil
	}
	return d.readXrefStream(lx)
}

func (d *Document) readXrefTable(lx *lexer) (map[int]xrefEntry, Dict, error) {
	if err := lx.expectKeyword("xref"); err != nil {
		return nil, nil, err
	}
	entries := make(map[int]xrefEntry)
	for {
		lx.skipSpace()
		if bytes.HasPrefix(d.data[lx.pos:], []byte("trailer")) {
			break
		}
		startObj, err := lx.readObject()
		if err != nil {
			return nil, nil, err
		}
		start, ok := toInt(startObj)
		if !ok {
			return nil, nil, fmt.Errorf("xref subsection start is %v, want integer", startObj)
		}
		countObj, err := lx.readObject()
		if err != nil {
			return nil, nil, err
		}
		count, ok := toInt(countObj)
		if !ok || count < 0 {
			return nil, nil, fmt.Errorf("xref subsection count is %v, want integer", countObj)
		}
		for i := 0; i < count; i++ {
			offObj, err := lx.readObject()
			if err != nil {
				return nil, nil, err
			}
			genObj, err := lx.readObject()
			if err != nil {
				return nil, nil, err
			}
			kindObj, err := lx.readObject()
			if err != nil {
				return nil, nil, err
			}
			off, ok1 := toInt(offObj)
			_, ok2 := toInt(genObj)
			kind, ok3 := kindObj.(Keyword)
			if !ok1 || !ok2 || !ok3 {
				return nil, nil, fmt.Errorf("malformed xref entry %v %v %v", offObj, genObj, kindObj)
			}
			num := start + i
			if _, seen := entries[num]; seen {
				continue
			}
			switch kind {
			case "n":
				entries[num] = xrefEntry{offset: int64(off)}
			case "f":
				entries[num] = xrefEntry{free: true}
			default:
				return nil, nil, fmt.Errorf("unknown xref entry kind %q", kind)
			}
		}
	}
	if err := lx.expectKeyword("trailer"); err != nil {
		return nil, nil, err
	}
	obj, err := lx.readObject()
	if err != nil {
		return nil, nil, err
	}
	trailer, ok := toDict(obj)
	if !ok {
		return nil, nil, fmt.Errorf("xref table not followed by trailer dictionary")
	}
	return entries, trailer, nil
}

func (d *Document) readXrefStream(lx *lexer) (Dict, error) {
	_, _, obj, err := d.parseIndirect(lx)
	if err != nil {
		return nil, err
	}
	stm, ok := obj.(Stream)
	if !ok {
		return nil, fmt.Errorf("cross-reference offset points at %T, want stream", obj)
	}
	if typ, _ := toName(stm.Header["Type"]); typ != "XRef" {
		return nil, fmt.Errorf("cross-reference stream has type /%s, want /XRef", typ)
	}

	data, err := d.StreamData(stm)
	if err != nil {
		return nil, fmt.Errorf("decoding cross-reference stream: %w", err)
	}

	size, ok := toInt(stm.Header["Size"])
	if !ok {
		return nil, fmt.Errorf("cross-reference stream missing /Size")
	}

	warr, ok := toArray(stm.Header["W"])
	if !ok || len(warr) < 3 {
		return nil, fmt.Errorf("cross-reference stream missing /W")
	}
	w := make([]int, len(warr))
	total := 0
	for i, wo := range warr {
		wi, ok := toInt(wo)
		if !ok || wi < 0 {
			return nil, fmt.Errorf("invalid /W array %v", warr)
		}
		w[i] = wi
		total += wi
	}
	if total == 0 {
		return nil, fmt.Errorf("empty /W array")
	}

	index := Array{Number(0), Number(size)}
	if ia, ok := toArray(stm.Header["Index"]); ok {
		index = ia
	}
	if len(index)%2 != 0 {
		return nil, fmt.Errorf("odd /Index array %v", index)
	}

	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		start, ok1 := toInt(index[i])
		count, ok2 := toInt(index[i+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("malformed /Index pair %v %v", index[i], index[i+1])
		}
		for j := 0; j < count; j++ {
			if pos+total > len(data) {
				return nil, fmt.Errorf("cross-reference stream data truncated")
			}
			f1 := decodeBE(data[pos : pos+w[0]])
			f2 := decodeBE(data[pos+w[0] : pos+w[0]+w[1]])
			f3 := decodeBE(data[pos+w[0]+w[1] : pos+total])
			pos += total
			if w[0] == 0 {
				f1 = 1 // default entry type
			}
			num := start + j
			if _, exists := d.xref[num]; exists {
				continue
			}
			switch f1 {
			case 0:
				d.xref[num] = xrefEntry{free: true}
			case 1:
				d.xref[num] = xrefEntry{offset: int64(f2)}
			case 2:
				d.xref[num] = xrefEntry{inStream: true, streamNum: f2, streamIdx: f3}
			}
		}
	}

	return stm.Header, nil
}

// decodeBE reads a big-endian integer from b. Empty slices decode to 0.
func decodeBE(b []byte) int {
	x := 0
	for _, c := range b {
		x = x<<8 | int(c)
	}
	return x
}

// parseIndirect reads "num gen obj ... endobj" at the lexer position,
// including the raw data of stream objects.
func (d *Document) parseIndirect(lx *lexer) (num, gen int, obj Object, err error) {
	numObj, err := lx.readObject()
	if err != nil {
		return 0, 0, nil, err
	}
	num, ok := toInt(numObj)
	if !ok {
		return 0, 0, nil, fmt.Errorf("object number is %v, want integer", numObj)
	}
	genObj, err := lx.readObject()
	if err != nil {
		return 0, 0, nil, err
	}
	gen, ok = toInt(genObj)
	if !ok {
		return 0, 0, nil, fmt.Errorf("object generation is %v, want integer", genObj)
	}
	if err := lx.expectKeyword("obj"); err != nil {
		return 0, 0, nil, err
	}
	obj, err = lx.readObject()
	if err != nil {
		return 0, 0, nil, err
	}

	save := lx.pos
	lx.skipSpace()
	if !bytes.HasPrefix(d.data[lx.pos:], []byte("stream")) {
		lx.pos = save
		return num, gen, obj, nil
	}

	hdr, ok := toDict(obj)
	if !ok {
		return 0, 0, nil, fmt.Errorf("stream keyword not preceded by dictionary")
	}
	lx.pos += len("stream")
	// EOL after the stream keyword: CRLF or LF
	if lx.peek() == '\r' {
		lx.pos++
	}
	if lx.peek() == '\n' {
		lx.pos++
	}
	dataStart := lx.pos

	length, haveLen := toInt(d.Resolve(hdr["Length"]))
	if haveLen && dataStart+length <= len(d.data) {
		tail := d.data[dataStart+length:]
		rest := bytes.TrimLeft(head(tail, 32), "\r\n \t")
		if bytes.HasPrefix(rest, []byte("endstream")) {
			return num, gen, Stream{Header: hdr, Raw: d.data[dataStart : dataStart+length]}, nil
		}
	}
	// /Length missing or wrong: scan for the endstream marker.
	end := bytes.Index(d.data[dataStart:], []byte("endstream"))
	if end < 0 {
		return 0, 0, nil, fmt.Errorf("unterminated stream in object %d", num)
	}
	raw := bytes.TrimRight(d.data[dataStart:dataStart+end], "\r\n")
	return num, gen, Stream{Header: hdr, Raw: raw}, nil
}

// Resolve follows indirect references until a direct object is reached.
// Unresolvable references yield Null, matching the PDF convention that
// a missing object reads as null.
func (d *Document) Resolve(obj Object) Object {
	for depth := 0; depth < maxResolveDepth; depth++ {
		ref, ok := obj.(Ref)
		if !ok {
			return obj
		}
		resolved, err := d.object(ref.Num)
		if err != nil {
			return Null{}
		}
		obj = resolved
	}
	return Null{}
}

func (d *Document) object(num int) (Object, error) {
	return d.objectDepth(num, 0)
}

// objectDepth bounds the object-stream container chain: a corrupt xref
// may mark an object stream as stored inside itself (or a cycle of
// streams), and the cache cannot break the loop because entries land in
// it only after a successful load.
func (d *Document) objectDepth(num, depth int) (Object, error) {
	if depth > maxObjStmDepth {
		return nil, fmt.Errorf("object %d: object stream containers form a cycle", num)
	}

	d.mu.Lock()
	if obj, ok := d.objCache[num]; ok {
		d.mu.Unlock()
		return obj, nil
	}
	d.mu.Unlock()

	entry, ok := d.xref[num]
	if !ok || entry.free {
		return Null{}, nil
	}

	var obj Object
	var err error
	if entry.inStream {
		obj, err = d.objectFromStream(num, entry, depth)
	} else {
		obj, err = d.objectAt(num, entry.offset)
	}
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.objCache[num] = obj
	d.mu.Unlock()
	return obj, nil
}

func (d *Document) objectAt(num int, offset int64) (Object, error) {
	if offset < 0 || offset >= int64(len(d.data)) {
		return nil, fmt.Errorf("object %d offset %d out of bounds", num, offset)
	}
	lx := newLexer(d.data, int(offset))
	gotNum, _, obj, err := d.parseIndirect(lx)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	if gotNum != num {
		return nil, fmt.Errorf("object %d points at object %d", num, gotNum)
	}
	return obj, nil
}

// objectFromStream extracts one object from a compressed object stream
// (/Type /ObjStm). The whole stream is decoded once; all of its objects
// land in the cache together.
func (d *Document) objectFromStream(num int, entry xrefEntry, depth int) (Object, error) {
	container, err := d.objectDepth(entry.streamNum, depth+1)
	if err != nil {
		return nil, err
	}
	stm, ok := container.(Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is %T, want stream", entry.streamNum, container)
	}
	data, err := d.StreamData(stm)
	if err != nil {
		return nil, fmt.Errorf("decoding object stream %d: %w", entry.streamNum, err)
	}
	n, ok := toInt(d.Resolve(stm.Header["N"]))
	if !ok {
		return nil, fmt.Errorf("object stream %d missing /N", entry.streamNum)
	}
	first, ok := toInt(d.Resolve(stm.Header["First"]))
	if !ok {
		return nil, fmt.Errorf("object stream %d missing /First", entry.streamNum)
	}

	lx := newLexer(data, 0)
	type slot struct{ num, off int }
	slots := make([]slot, 0, n)
	for i := 0; i < n; i++ {
		numObj, err := lx.readObject()
		if err != nil {
			return nil, err
		}
		offObj, err := lx.readObject()
		if err != nil {
			return nil, err
		}
		objNum, ok1 := toInt(numObj)
		objOff, ok2 := toInt(offObj)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("object stream %d: malformed index pair", entry.streamNum)
		}
		slots = append(slots, slot{objNum, objOff})
	}

	var result Object = Null{}
	found := false
	for _, s := range slots {
		pos := first + s.off
		if pos < 0 || pos >= len(data) {
			continue
		}
		olx := newLexer(data, pos)
		obj, err := olx.readObject()
		if err != nil {
			continue
		}
		d.mu.Lock()
		if _, cached := d.objCache[s.num]; !cached {
			d.objCache[s.num] = obj
		}
		d.mu.Unlock()
		if s.num == num {
			result = obj
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("object %d not present in object stream %d", num, entry.streamNum)
	}
	return result, nil
}

// DecodeTextString interprets a PDF text string: UTF-16BE when it
// carries a byte-order mark, PDFDocEncoding (treated as Latin-1)
// otherwise.
func DecodeTextString(s String_) string {
	b := []byte(s)
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		u16 := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			u16 = append(u16, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u16))
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

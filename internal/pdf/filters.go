package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// StreamData decodes a stream's raw bytes by applying its /Filter
// chain. Streams without filters are returned as-is.
func (d *Document) StreamData(s Stream) ([]byte, error) {
	data := s.Raw

	var filters []Name
	switch f := d.Resolve(s.Header["Filter"]).(type) {
	case Name:
		filters = []Name{f}
	case Array:
		for _, fo := range f {
			if n, ok := toName(d.Resolve(fo)); ok {
				filters = append(filters, n)
			}
		}
	}

	var parms []Dict
	switch p := d.Resolve(s.Header["DecodeParms"]).(type) {
	case Dict:
		parms = []Dict{p}
	case Array:
		for _, po := range p {
			dp, _ := toDict(d.Resolve(po))
			parms = append(parms, dp)
		}
	}

	for i, f := range filters {
		var parm Dict
		if i < len(parms) {
			parm = parms[i]
		}
		var err error
		switch f {
		case "FlateDecode", "Fl":
			data, err = flateDecode(data)
		case "LZWDecode", "LZW":
			data, err = lzwDecode(data)
		case "ASCIIHexDecode", "AHx":
			data, err = asciiHexDecode(data)
		case "ASCII85Decode", "A85":
			data, err = ascii85Decode(data)
		case "RunLengthDecode", "RL":
			data, err = runLengthDecode(data)
		case "DCTDecode", "JPXDecode", "CCITTFaxDecode", "JBIG2Decode":
			// image filters; no text to recover here
			return nil, fmt.Errorf("unsupported stream filter %s", f)
		default:
			return nil, fmt.Errorf("unknown stream filter %s", f)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s stream: %w", f, err)
		}
		if parm != nil {
			data, err = d.applyPredictor(data, parm)
			if err != nil {
				return nil, fmt.Errorf("predictor for %s stream: %w", f, err)
			}
		}
	}

	return data, nil
}

func flateDecode(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil && len(out) == 0 {
		return nil, err
	}
	// Tolerate truncated tails; some writers omit the final checksum.
	return out, nil
}

func lzwDecode(data []byte) ([]byte, error) {
	// PDF LZW defaults to EarlyChange=1, the TIFF variant.
	r := lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return nil, err
	}
	return out, nil
}

func asciiHexDecode(data []byte) ([]byte, error) {
	var out []byte
	var hi byte
	have := false
	for _, b := range data {
		if b == '>' {
			break
		}
		var v byte
		switch {
		case b >= '0' && b <= '9':
			v = b - '0'
		case b >= 'a' && b <= 'f':
			v = b - 'a' + 10
		case b >= 'A' && b <= 'F':
			v = b - 'A' + 10
		case isWhitespace(b):
			continue
		default:
			return nil, fmt.Errorf("invalid hex digit %q", b)
		}
		if have {
			out = append(out, hi<<4|v)
			have = false
		} else {
			hi = v
			have = true
		}
	}
	if have {
		out = append(out, hi<<4)
	}
	return out, nil
}

func ascii85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	data = bytes.TrimSuffix(data, []byte("~>"))
	dec := ascii85.NewDecoder(bytes.NewReader(data))
	return io.ReadAll(dec)
}

func runLengthDecode(data []byte) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(data) {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			end := i + n + 1
			if end > len(data) {
				return nil, fmt.Errorf("run length literal overruns data")
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("run length repeat overruns data")
			}
			for j := 0; j < 257-n; j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}

// applyPredictor undoes the PNG/TIFF row predictors used by Flate and
// LZW streams (most commonly on cross-reference streams).
func (d *Document) applyPredictor(data []byte, parm Dict) ([]byte, error) {
	pred, ok := toInt(d.Resolve(parm["Predictor"]))
	if !ok || pred <= 1 {
		return data, nil
	}

	colors := 1
	if v, ok := toInt(d.Resolve(parm["Colors"])); ok {
		colors = v
	}
	bpc := 8
	if v, ok := toInt(d.Resolve(parm["BitsPerComponent"])); ok {
		bpc = v
	}
	columns := 1
	if v, ok := toInt(d.Resolve(parm["Columns"])); ok {
		columns = v
	}
	bytesPerPixel := (colors*bpc + 7) / 8
	rowLen := (colors*bpc*columns + 7) / 8
	if rowLen <= 0 {
		return nil, fmt.Errorf("invalid predictor row length")
	}

	if pred == 2 {
		// TIFF predictor: horizontal differencing per row.
		if bpc != 8 {
			return nil, fmt.Errorf("unsupported TIFF predictor bit depth %d", bpc)
		}
		for r := 0; r+rowLen <= len(data); r += rowLen {
			row := data[r : r+rowLen]
			for i := bytesPerPixel; i < len(row); i++ {
				row[i] += row[i-bytesPerPixel]
			}
		}
		return data, nil
	}

	// PNG predictors: each row is prefixed with a filter-type byte.
	if (len(data))%(rowLen+1) != 0 {
		return nil, fmt.Errorf("predictor data length %d not a multiple of row size %d", len(data), rowLen+1)
	}
	rows := len(data) / (rowLen + 1)
	out := make([]byte, 0, rows*rowLen)
	prev := make([]byte, rowLen)
	row := make([]byte, rowLen)
	for r := 0; r < rows; r++ {
		ft := data[r*(rowLen+1)]
		copy(row, data[r*(rowLen+1)+1:(r+1)*(rowLen+1)])
		switch ft {
		case 0: // None
		case 1: // Sub
			for i := bytesPerPixel; i < rowLen; i++ {
				row[i] += row[i-bytesPerPixel]
			}
		case 2: // Up
			for i := 0; i < rowLen; i++ {
				row[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowLen; i++ {
				left := 0
				if i >= bytesPerPixel {
					left = int(row[i-bytesPerPixel])
				}
				row[i] += byte((left + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowLen; i++ {
				var left, upLeft byte
				if i >= bytesPerPixel {
					left = row[i-bytesPerPixel]
					upLeft = prev[i-bytesPerPixel]
				}
				row[i] += paeth(left, prev[i], upLeft)
			}
		default:
			return nil, fmt.Errorf("unknown PNG filter type %d", ft)
		}
		out = append(out, row...)
		copy(prev, row)
	}
	return out, nil
}

// paeth is the PNG Paeth predictor function.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

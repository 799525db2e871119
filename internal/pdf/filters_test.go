package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestStreamDataNoFilter(t *testing.T) {
	d := &Document{}
	out, err := d.StreamData(Stream{Header: Dict{}, Raw: []byte("plain data")})
	require.NoError(t, err)
	assert.Equal(t, []byte("plain data"), out)
}

func TestStreamDataFlate(t *testing.T) {
	d := &Document{}
	payload := []byte("BT (compressed content) Tj ET")
	s := Stream{
		Header: Dict{"Filter": Name("FlateDecode")},
		Raw:    zlibCompress(t, payload),
	}
	out, err := d.StreamData(s)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestStreamDataASCIIHex(t *testing.T) {
	d := &Document{}
	s := Stream{
		Header: Dict{"Filter": Name("ASCIIHexDecode")},
		Raw:    []byte("48 65 6C 6C 6F>"),
	}
	out, err := d.StreamData(s)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), out)
}

func TestStreamDataASCII85(t *testing.T) {
	payload := []byte("some reasonably long payload for ascii85")
	var buf bytes.Buffer
	enc := ascii85.NewEncoder(&buf)
	_, err := enc.Write(payload)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	buf.WriteString("~>")

	d := &Document{}
	s := Stream{
		Header: Dict{"Filter": Name("ASCII85Decode")},
		Raw:    buf.Bytes(),
	}
	out, err := d.StreamData(s)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestStreamDataRunLength(t *testing.T) {
	// literal "ab", then 'c' repeated 4 times, then EOD
	raw := []byte{1, 'a', 'b', 253, 'c', 128}
	d := &Document{}
	s := Stream{
		Header: Dict{"Filter": Name("RunLengthDecode")},
		Raw:    raw,
	}
	out, err := d.StreamData(s)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcccc"), out)
}

func TestStreamDataFilterChain(t *testing.T) {
	payload := []byte("chained payload")
	compressed := zlibCompress(t, payload)
	hexed := make([]byte, 0, len(compressed)*2+1)
	const digits = "0123456789ABCDEF"
	for _, b := range compressed {
		hexed = append(hexed, digits[b>>4], digits[b&0xF])
	}
	hexed = append(hexed, '>')

	d := &Document{}
	s := Stream{
		Header: Dict{"Filter": Array{Name("ASCIIHexDecode"), Name("FlateDecode")}},
		Raw:    hexed,
	}
	out, err := d.StreamData(s)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestStreamDataUnknownFilter(t *testing.T) {
	d := &Document{}
	_, err := d.StreamData(Stream{
		Header: Dict{"Filter": Name("NoSuchFilter")},
		Raw:    []byte("x"),
	})
	assert.Error(t, err)
}

func TestStreamDataImageFilterRejected(t *testing.T) {
	d := &Document{}
	_, err := d.StreamData(Stream{
		Header: Dict{"Filter": Name("DCTDecode")},
		Raw:    []byte{0xFF, 0xD8},
	})
	assert.Error(t, err)
}

func TestPNGPredictorUp(t *testing.T) {
	// Two rows of 3 columns, both using the Up filter. The first row's
	// "previous row" is all zeros, so it decodes to itself.
	rows := []byte{
		2, 10, 20, 30,
		2, 1, 1, 1,
	}
	d := &Document{}
	s := Stream{
		Header: Dict{
			"Filter":      Name("FlateDecode"),
			"DecodeParms": Dict{"Predictor": Number(12), "Columns": Number(3)},
		},
		Raw: zlibCompress(t, rows),
	}
	out, err := d.StreamData(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 11, 21, 31}, out)
}

func TestPNGPredictorSub(t *testing.T) {
	rows := []byte{1, 5, 3, 2}
	d := &Document{}
	s := Stream{
		Header: Dict{
			"Filter":      Name("FlateDecode"),
			"DecodeParms": Dict{"Predictor": Number(11), "Columns": Number(3)},
		},
		Raw: zlibCompress(t, rows),
	}
	out, err := d.StreamData(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 8, 10}, out)
}

func TestTIFFPredictor(t *testing.T) {
	row := []byte{5, 3, 2}
	d := &Document{}
	s := Stream{
		Header: Dict{
			"Filter":      Name("FlateDecode"),
			"DecodeParms": Dict{"Predictor": Number(2), "Columns": Number(3)},
		},
		Raw: zlibCompress(t, row),
	}
	out, err := d.StreamData(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 8, 10}, out)
}

func TestPredictorBadRowSize(t *testing.T) {
	d := &Document{}
	s := Stream{
		Header: Dict{
			"Filter":      Name("FlateDecode"),
			"DecodeParms": Dict{"Predictor": Number(12), "Columns": Number(10)},
		},
		Raw: zlibCompress(t, []byte{0, 1, 2}),
	}
	_, err := d.StreamData(s)
	assert.Error(t, err)
}

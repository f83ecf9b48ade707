package loader

import (
	"bytes"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func lz4Bytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotliBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecompress(t *testing.T) {
	plain := []byte("name,age\nAlice,30\nBob,25\n")

	tests := []struct {
		name     string
		file     string
		encoding string
		data     []byte
		want     Compression
	}{
		{"plain", "people.csv", "", plain, None},
		{"gzip", "people.csv.gz", "", gzipBytes(t, plain), Gzip},
		{"gzip without suffix", "people.csv", "", gzipBytes(t, plain), Gzip},
		{"zstd", "people.csv.zst", "", zstdBytes(t, plain), Zstd},
		{"lz4", "people.csv.lz4", "", lz4Bytes(t, plain), LZ4},
		{"brotli suffix", "people.csv.br", "", brotliBytes(t, plain), Brotli},
		{"brotli encoding", "https://host/people.csv", "br", brotliBytes(t, plain), Brotli},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DetectCompression(tt.file, tt.encoding, tt.data)
			require.Equal(t, tt.want, c)

			out, err := Decompress(c, tt.data, 0)
			require.NoError(t, err)
			assert.Equal(t, plain, out)
		})
	}
}

func TestDecompress_Errors(t *testing.T) {
	plain := bytes.Repeat([]byte("a,b\n"), 100)

	_, err := Decompress(Gzip, gzipBytes(t, plain), 10)
	assert.ErrorIs(t, err, ErrTooLarge)

	out, err := Decompress(Gzip, gzipBytes(t, plain), int64(len(plain)))
	require.NoError(t, err)
	assert.Len(t, out, len(plain))

	_, err = Decompress(Gzip, []byte{0x1f, 0x8b, 0x00}, 0)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decompress(Brotli, []byte("not brotli at all"), 0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestTrimCompressionSuffix(t *testing.T) {
	tests := map[string]string{
		"people.csv":          "people.csv",
		"people.csv.gz":       "people.csv",
		"people.parquet.ZST":  "people.parquet",
		"people.tsv.zstd":     "people.tsv",
		"people.csv.br":       "people.csv",
		"https://h/x.csv.lz4": "https://h/x.csv",
	}
	for in, want := range tests {
		assert.Equal(t, want, TrimCompressionSuffix(in), in)
	}
}

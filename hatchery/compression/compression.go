// Package compression holds the codecs used for blob payloads: zstd for
// the per-token records and the contract descriptor, brotli for catalog
// template bodies that are written once and only read on selection.
package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Errorf("failed to create zstd encoder: %w", err))
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Errorf("failed to create zstd decoder: %w", err))
	}
}

func ZstdCompress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

func ZstdDecompress(data []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(data, nil)
}

func BrotliCompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	buf := bytes.NewBuffer(nil)
	writer := brotli.NewWriterV2(buf, 9)

	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write data to brotli compressor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close brotli compressor: %w", err)
	}

	return buf.Bytes(), nil
}

func BrotliDecompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
}

package payload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"coc-war-tracker/internal/domain"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Decode reads exactly one JSON object from r. Numbers are kept as
// json.Number so that integer fields survive intact.
func Decode(r io.Reader) (domain.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return domain.AsRecord(v)
}

// ReadFile decodes a payload file. Files ending in .zst or .gz are
// decompressed on the fly.
func ReadFile(path string) (domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		return Decode(zr)
	case ".gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gr.Close()
		return Decode(gr)
	}
	return Decode(f)
}

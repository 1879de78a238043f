package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"crmadmin/internal/model"

	"github.com/klauspost/compress/zstd"
)

// IsCompressed reports whether path should be zstd-encoded.
func IsCompressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".zst")
}

// WriteJSONL writes one record per line, zstd-compressed when compress is set.
func WriteJSONL(w io.Writer, records []model.LogRecord, compress bool) error {
	out := w
	var enc *zstd.Encoder
	if compress {
		var err error
		enc, err = zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("create zstd writer: %w", err)
		}
		out = enc
	}

	je := json.NewEncoder(out)
	for _, r := range records {
		if err := je.Encode(r); err != nil {
			if enc != nil {
				enc.Close() //nolint:errcheck
			}
			return err
		}
	}
	if enc != nil {
		return enc.Close()
	}
	return nil
}

// ReadResult holds decoded records and non-fatal warnings for lines that
// could not be parsed.
type ReadResult struct {
	Records  []model.LogRecord
	Warnings []error
}

// ReadJSONL reads records written by WriteJSONL.
func ReadJSONL(r io.Reader, compressed bool) (ReadResult, error) {
	in := r
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return ReadResult{}, fmt.Errorf("create zstd reader: %w", err)
		}
		defer dec.Close()
		in = dec
	}

	var result ReadResult
	scanner := newScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}
		var rec model.LogRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if rec.ID == "" {
			result.Warnings = append(result.Warnings, fmt.Errorf("line %d: record has no id", line))
			continue
		}
		result.Records = append(result.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("scan records: %w", err)
	}
	return result, nil
}

// ExportFile writes records to path, compressing when it ends in .zst.
func ExportFile(path string, records []model.LogRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := WriteJSONL(f, records, IsCompressed(path)); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}

// ImportFile reads records from path, decompressing when it ends in .zst.
func ImportFile(path string) (ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("open import: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return ReadJSONL(f, IsCompressed(path))
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Allow large details payloads.
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}

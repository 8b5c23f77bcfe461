package artifact

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/spikegen/internal/ir"
)

// Format identifies an artifact encoding.
type Format string

const (
	FormatMAT   Format = "mat"
	FormatJSON  Format = "json"
	FormatArrow Format = "arrow"
)

// ValidFormats lists the supported formats.
var ValidFormats = []Format{FormatMAT, FormatJSON, FormatArrow}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, v := range ValidFormats {
		if f == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown artifact format %q: must be one of %v", s, ValidFormats)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mat":
		return FormatMAT, nil
	case ".json":
		return FormatJSON, nil
	case ".arrow", ".arrows", ".ipc", ".feather":
		return FormatArrow, nil
	default:
		return "", fmt.Errorf("cannot infer artifact format from %q", path)
	}
}

// Encode writes the bundle to w in the given format.
func Encode(w io.Writer, b *ir.Bundle, format Format) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	switch format {
	case FormatMAT:
		return encodeMAT(w, b)
	case FormatJSON:
		return encodeJSON(w, b)
	case FormatArrow:
		return encodeArrow(w, b)
	default:
		return fmt.Errorf("encode: unknown format %q", format)
	}
}

// Decode reads a bundle from r in the given format. The result satisfies
// the same invariants Encode enforces.
func Decode(r io.Reader, format Format) (*ir.Bundle, error) {
	var (
		b   *ir.Bundle
		err error
	)
	switch format {
	case FormatMAT:
		b, err = decodeMAT(r)
	case FormatJSON:
		b, err = decodeJSON(r)
	case FormatArrow:
		data, readErr := io.ReadAll(r)
		if readErr != nil {
			return nil, fmt.Errorf("decode arrow: %w", readErr)
		}
		b, err = decodeArrow(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("decode: unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return b, nil
}

// WriteFile atomically writes the bundle to path.
//
// The bundle is encoded into a temporary file next to path, synced to disk
// and renamed into place. On any error the temporary file is removed and
// path is left untouched.
func WriteFile(path string, b *ir.Bundle, format Format) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = Encode(bw, b, format); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("write artifact: flush: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("write artifact: sync: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("write artifact: chmod: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write artifact: close: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write artifact: rename: %w", err)
	}
	return nil
}

// ReadFile decodes the artifact at path, inferring the format from its
// extension.
func ReadFile(path string) (*ir.Bundle, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f), format)
}

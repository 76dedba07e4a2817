// Package cachefile encodes the small binary records axes keeps next to each
// project: the local identity mirror, the resolved-config cache and the
// last-used-child record.
//
// On-disk envelope:
//
//	magic    "AXC1"
//	checksum blake2b-256 of the compressed payload
//	payload  zstd(gob(value))
//
// Any mismatch while reading yields ErrCorrupt so callers can treat the file
// as a soft miss and rebuild it.
package cachefile

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

var magic = []byte("AXC1")

// Shared by every record; EncodeAll and DecodeAll are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
)

// ErrCorrupt reports an unreadable cache record.
var ErrCorrupt = errors.New("cache record corrupt")

// Marshal encodes v into the envelope format.
func Marshal(v any) ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(v); err != nil {
		return nil, fmt.Errorf("cachefile: encode: %w", err)
	}
	payload := encoder.EncodeAll(raw.Bytes(), nil)
	sum := blake2b.Sum256(payload)

	out := make([]byte, 0, len(magic)+len(sum)+len(payload))
	out = append(out, magic...)
	out = append(out, sum[:]...)
	out = append(out, payload...)
	return out, nil
}

// Unmarshal decodes an envelope produced by Marshal into v.
func Unmarshal(data []byte, v any) error {
	header := len(magic) + blake2b.Size256
	if len(data) < header || !bytes.Equal(data[:len(magic)], magic) {
		return fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	payload := data[header:]
	sum := blake2b.Sum256(payload)
	if !bytes.Equal(sum[:], data[len(magic):header]) {
		return fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	raw, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return fmt.Errorf("%w: decompress: %v", ErrCorrupt, err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrCorrupt, err)
	}
	return nil
}

// Read loads the record at path into v. A missing file is reported with an
// error satisfying os.IsNotExist; an undecodable one with ErrCorrupt.
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := Unmarshal(data, v); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// Write atomically replaces the record at path, creating parent directories
// as needed.
func Write(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0o644)
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write %s: mkdir: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: tmpfile: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: close: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: chmod: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: rename: %w", path, err)
	}
	return nil
}

// Package byteview provides bounds-checked, explicitly little-endian reads
// of fixed-layout records and null-terminated strings from an immutable
// byte buffer. It never relies on the host platform's struct alignment.
package byteview

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Image is an immutable, random-access byte buffer.
type Image struct {
	data []byte
}

// NewImage wraps raw bytes as an Image. The slice is not copied; callers
// must not mutate it afterwards.
func NewImage(data []byte) *Image {
	return &Image{data: data}
}

// Len returns the number of bytes in the image.
func (img *Image) Len() int {
	return len(img.data)
}

// Bytes returns the raw backing slice. Callers must treat it as read-only.
func (img *Image) Bytes() []byte {
	return img.data
}

// BadRecordError is returned when a fixed-size record would read past the
// end of the image.
type BadRecordError struct {
	Label  string
	Offset uint32
}

func (e *BadRecordError) Error() string {
	return fmt.Sprintf("bad record %q at offset 0x%x: out of bounds", e.Label, e.Offset)
}

// UnterminatedStringError is returned when read_cstring runs off the end
// of the image before finding a NUL.
type UnterminatedStringError struct {
	Offset uint32
}

func (e *UnterminatedStringError) Error() string {
	return fmt.Sprintf("unterminated string at offset 0x%x", e.Offset)
}

// Slice returns size bytes starting at offset, or BadRecordError if that
// range would exceed the image.
func (img *Image) Slice(offset uint32, size int, label string) ([]byte, error) {
	start := int(offset)
	if start < 0 || size < 0 || start+size > len(img.data) {
		return nil, &BadRecordError{Label: label, Offset: offset}
	}
	return img.data[start : start+size], nil
}

// ReadRecord decodes a fixed-size, packed, little-endian record of type T
// at offset. T must contain only fields encoding/binary.Read can decode
// (no sub-byte bitfields); records with bitfields are decoded by hand by
// their owning package instead of relying on Go struct layout.
func ReadRecord[T any](img *Image, offset uint32, label string) (T, error) {
	var rec T
	size := binary.Size(rec)
	if size < 0 {
		return rec, fmt.Errorf("byteview: type %T has no fixed binary size", rec)
	}
	raw, err := img.Slice(offset, size, label)
	if err != nil {
		return rec, err
	}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &rec); err != nil {
		return rec, fmt.Errorf("byteview: failed to decode %q: %w", label, err)
	}
	return rec, nil
}

// ReadCString returns the bytes starting at offset up to (but excluding)
// the next NUL byte.
func (img *Image) ReadCString(offset uint32) (string, error) {
	start := int(offset)
	if start < 0 || start > len(img.data) {
		return "", &UnterminatedStringError{Offset: offset}
	}
	end := bytes.IndexByte(img.data[start:], 0)
	if end < 0 {
		return "", &UnterminatedStringError{Offset: offset}
	}
	return string(img.data[start : start+end]), nil
}

// ReadUint32LE reads a little-endian u32 at offset, returning
// BadRecordError with label if it would run past the image; used by
// callers decoding bitfield words by hand.
func (img *Image) ReadUint32LE(offset uint32, label string) (uint32, error) {
	raw, err := img.Slice(offset, 4, label)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// ReadInt16LE reads a little-endian s16 at offset.
func (img *Image) ReadInt16LE(offset uint32, label string) (int16, error) {
	raw, err := img.Slice(offset, 2, label)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(raw)), nil
}

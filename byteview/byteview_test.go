package byteview

import (
	"encoding/binary"
	"errors"
	"testing"
)

type testRecord struct {
	A uint32
	B int16
	C int16
}

func buildImage() *Image {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:], 0xdeadbeef)
	negFive := int16(-5)
	binary.LittleEndian.PutUint16(buf[4:], uint16(negFive))
	binary.LittleEndian.PutUint16(buf[6:], 7)
	copy(buf[8:], "hello\x00world")
	return NewImage(buf)
}

func TestReadRecord(t *testing.T) {
	img := buildImage()

	rec, err := ReadRecord[testRecord](img, 0, "test record")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.A != 0xdeadbeef || rec.B != -5 || rec.C != 7 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestReadRecordOutOfBounds(t *testing.T) {
	img := buildImage()

	_, err := ReadRecord[testRecord](img, uint32(img.Len()-2), "test record")
	var badRecord *BadRecordError
	if !errors.As(err, &badRecord) {
		t.Fatalf("expected BadRecordError, got %v", err)
	}
	if badRecord.Label != "test record" {
		t.Fatalf("unexpected label: %s", badRecord.Label)
	}
}

func TestReadCString(t *testing.T) {
	img := buildImage()

	s, err := img.ReadCString(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "hello" {
		t.Fatalf("got %q, want %q", s, "hello")
	}
}

func TestReadCStringUnterminated(t *testing.T) {
	buf := []byte("no nul here")
	img := NewImage(buf)

	_, err := img.ReadCString(0)
	var unterminated *UnterminatedStringError
	if !errors.As(err, &unterminated) {
		t.Fatalf("expected UnterminatedStringError, got %v", err)
	}
}

func TestReadCStringAtEndOfImage(t *testing.T) {
	img := NewImage([]byte("abc"))
	_, err := img.ReadCString(3)
	var unterminated *UnterminatedStringError
	if !errors.As(err, &unterminated) {
		t.Fatalf("expected UnterminatedStringError, got %v", err)
	}
}

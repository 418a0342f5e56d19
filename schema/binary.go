package schema

import (
	"math"

	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"google.golang.org/protobuf/encoding/protowire"
)

// BinaryWriter accumulates the compact binary form of a value. Integers are zigzag varints,
// strings and nested records are length-delimited, floats are little-endian fixed64.
type BinaryWriter struct {
	buf []byte
}

// Bytes returns the encoded buffer.
func (w *BinaryWriter) Bytes() []byte {
	return w.buf
}

func (w *BinaryWriter) WriteVarint(v uint64) {
	w.buf = protowire.AppendVarint(w.buf, v)
}

func (w *BinaryWriter) WriteInt(v int64) {
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeZigZag(v))
}

func (w *BinaryWriter) WriteBool(v bool) {
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeBool(v))
}

func (w *BinaryWriter) WriteFloat(v float64) {
	w.buf = protowire.AppendFixed64(w.buf, math.Float64bits(v))
}

func (w *BinaryWriter) WriteString(v string) {
	w.buf = protowire.AppendString(w.buf, v)
}

func (w *BinaryWriter) WriteBytes(v []byte) {
	w.buf = protowire.AppendBytes(w.buf, v)
}

// WriteRecord writes a length-delimited record tagged with num.
func (w *BinaryWriter) WriteRecord(num int, write func(w *BinaryWriter)) {
	var nested BinaryWriter
	write(&nested)
	w.buf = protowire.AppendTag(w.buf, protowire.Number(num), protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, nested.buf)
}

// BinaryReader consumes a buffer produced by BinaryWriter.
type BinaryReader struct {
	buf []byte
}

// NewBinaryReader returns a reader positioned at the start of data.
func NewBinaryReader(data []byte) *BinaryReader {
	return &BinaryReader{buf: data}
}

// Len reports the number of unread bytes.
func (r *BinaryReader) Len() int {
	return len(r.buf)
}

func (r *BinaryReader) ReadVarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(r.buf)
	if n < 0 {
		return 0, malformedBinary(n)
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *BinaryReader) ReadInt() (int64, error) {
	v, err := r.ReadVarint()
	return protowire.DecodeZigZag(v), err
}

func (r *BinaryReader) ReadBool() (bool, error) {
	v, err := r.ReadVarint()
	return protowire.DecodeBool(v), err
}

func (r *BinaryReader) ReadFloat() (float64, error) {
	v, n := protowire.ConsumeFixed64(r.buf)
	if n < 0 {
		return 0, malformedBinary(n)
	}
	r.buf = r.buf[n:]
	return math.Float64frombits(v), nil
}

func (r *BinaryReader) ReadString() (string, error) {
	v, n := protowire.ConsumeString(r.buf)
	if n < 0 {
		return "", malformedBinary(n)
	}
	r.buf = r.buf[n:]
	return v, nil
}

// ReadBytes returns a copy of the next length-delimited payload.
func (r *BinaryReader) ReadBytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		return nil, malformedBinary(n)
	}
	r.buf = r.buf[n:]
	return append([]byte(nil), v...), nil
}

// ReadRecord returns the tag number of the next record and a reader over its payload.
func (r *BinaryReader) ReadRecord() (int, *BinaryReader, error) {
	num, typ, n := protowire.ConsumeTag(r.buf)
	if n < 0 {
		return 0, nil, malformedBinary(n)
	}
	if typ != protowire.BytesType {
		return 0, nil, &errortypes.BadInput{Message: "binary record has unexpected wire type"}
	}
	r.buf = r.buf[n:]
	payload, n := protowire.ConsumeBytes(r.buf)
	if n < 0 {
		return 0, nil, malformedBinary(n)
	}
	r.buf = r.buf[n:]
	return int(num), &BinaryReader{buf: payload}, nil
}

// ReadVersion reads a version header and checks it against the reader's version.
func (r *BinaryReader) ReadVersion(typeName string, expected int) error {
	v, err := r.ReadVarint()
	if err != nil {
		return err
	}
	if int(v) != expected {
		return &errortypes.VersionMismatch{Type: typeName, Expected: expected, Found: int(v)}
	}
	return nil
}

func malformedBinary(n int) error {
	return &errortypes.BadInput{Message: "malformed binary payload: " + protowire.ParseError(n).Error()}
}

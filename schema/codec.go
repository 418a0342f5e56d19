package schema

import (
	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
)

// Codec is the entry point for parsing and printing whole documents of type T.
type Codec[T any] struct {
	desc Description[T]
}

// NewCodec wraps a description.
func NewCodec[T any](desc Description[T]) *Codec[T] {
	return &Codec[T]{desc: desc}
}

// Description returns the wrapped description.
func (c *Codec[T]) Description() Description[T] {
	return c.desc
}

// Parse builds a new T from a JSON document. The returned errors hold every diagnostic raised
// during the parse; the value is nil if any of them is fatal.
func (c *Codec[T]) Parse(data []byte) (*T, []error) {
	ctx := NewParseContext()
	v := new(T)
	if err := c.ParseWithContext(ctx, data, v); err != nil {
		return nil, append(ctx.Diagnostics(), err)
	}
	return v, ctx.Diagnostics()
}

// ParseWithContext parses data into v, recording warnings on ctx. v is reset to the
// description's defaults first.
func (c *Codec[T]) ParseWithContext(ctx *ParseContext, data []byte, v *T) error {
	value, vt, _, err := jsonparser.Get(data)
	if err != nil {
		return &errortypes.BadInput{Message: "malformed JSON: " + err.Error()}
	}
	var zero T
	*v = zero
	setDefault(c.desc, v)
	return c.desc.ParseJSON(ctx, value, vt, v)
}

// Print renders v as JSON.
func (c *Codec[T]) Print(v *T) ([]byte, error) {
	return printJSON(c.desc, v)
}

// MarshalBinary renders v in the compact binary form.
func (c *Codec[T]) MarshalBinary(v *T) []byte {
	var w BinaryWriter
	c.desc.WriteBinary(&w, v)
	return w.Bytes()
}

// UnmarshalBinary reads data into v. Trailing bytes are an error.
func (c *Codec[T]) UnmarshalBinary(data []byte, v *T) error {
	var zero T
	*v = zero
	setDefault(c.desc, v)
	r := NewBinaryReader(data)
	if err := c.desc.ReadBinary(r, v); err != nil {
		return err
	}
	if r.Len() != 0 {
		return &errortypes.BadInput{Message: "trailing bytes after binary payload"}
	}
	return nil
}

// IsDefault reports whether v equals the description's default.
func (c *Codec[T]) IsDefault(v *T) bool {
	return c.desc.IsDefault(v)
}

func printJSON[T any](desc Description[T], v *T) ([]byte, error) {
	stream := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowStream(nil)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnStream(stream)

	desc.PrintJSON(stream, v)
	if stream.Error != nil {
		return nil, &errortypes.FailedToMarshal{Message: stream.Error.Error()}
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

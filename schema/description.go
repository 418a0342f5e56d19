// Package schema provides declarative descriptions of Go types which parse and print JSON and
// read and write a compact, versioned binary form.
//
// Descriptions are composed from primitives, optional and defaulted wrappers, collections,
// enumerations and structures. They are stateless once built and may be shared by any number
// of concurrent parses.
package schema

import (
	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
)

// Description is the parse/print/serialize contract for values of type T.
//
// ParseJSON receives a value as returned by jsonparser: strings arrive without their quotes and
// still escaped, all other kinds arrive as raw JSON text.
type Description[T any] interface {
	ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error
	PrintJSON(s *jsoniter.Stream, v *T)
	IsDefault(v *T) bool
	WriteBinary(w *BinaryWriter, v *T)
	ReadBinary(r *BinaryReader, v *T) error
}

// defaulter is implemented by descriptions whose default is not the zero value.
type defaulter[T any] interface {
	SetDefault(v *T)
}

func setDefault[T any](desc Description[T], v *T) {
	if d, ok := desc.(defaulter[T]); ok {
		d.SetDefault(v)
	}
}

func typeMismatch(ctx *ParseContext, expected string, found jsonparser.ValueType) error {
	return &errortypes.TypeMismatch{Path: ctx.Path(), Expected: expected, Found: found.String()}
}

// malformed wraps errors raised by the tokenizer itself.
func malformed(ctx *ParseContext, err error) error {
	if _, ok := err.(errortypes.Coder); ok {
		return err
	}
	path := ctx.Path()
	if path == "" {
		return &errortypes.BadInput{Message: "malformed JSON: " + err.Error()}
	}
	return &errortypes.BadInput{Message: "malformed JSON at " + path + ": " + err.Error()}
}

package schema

import (
	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
)

type optionalDescription[T any] struct {
	inner Description[T]
}

// Optional describes a value which may be absent. JSON null leaves it nil. A value which fails
// to parse is recorded as a warning on the context and also leaves it nil, so a broken optional
// field never aborts the enclosing structure.
func Optional[T any](inner Description[T]) Description[*T] {
	return optionalDescription[T]{inner: inner}
}

func (d optionalDescription[T]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v **T) error {
	*v = nil
	if vt == jsonparser.Null {
		return nil
	}
	value := new(T)
	setDefault(d.inner, value)
	if err := d.inner.ParseJSON(ctx, data, vt, value); err != nil {
		ctx.Warn(errortypes.Recovered(ctx.Path(), err))
		return nil
	}
	*v = value
	return nil
}

func (d optionalDescription[T]) PrintJSON(s *jsoniter.Stream, v **T) {
	if *v == nil {
		s.WriteNil()
		return
	}
	d.inner.PrintJSON(s, *v)
}

func (d optionalDescription[T]) IsDefault(v **T) bool {
	return *v == nil
}

func (d optionalDescription[T]) WriteBinary(w *BinaryWriter, v **T) {
	w.WriteBool(*v != nil)
	if *v != nil {
		d.inner.WriteBinary(w, *v)
	}
}

func (d optionalDescription[T]) ReadBinary(r *BinaryReader, v **T) error {
	present, err := r.ReadBool()
	if err != nil {
		return err
	}
	if !present {
		*v = nil
		return nil
	}
	value := new(T)
	setDefault(d.inner, value)
	if err := d.inner.ReadBinary(r, value); err != nil {
		return err
	}
	*v = value
	return nil
}

type defaultedDescription[T comparable] struct {
	inner Description[T]
	def   T
}

// Default describes a value with a declared default. The default is applied before parsing,
// is restored when the JSON value is null or fails to parse (with a warning), and is omitted
// when printing the enclosing structure.
func Default[T comparable](inner Description[T], def T) Description[T] {
	return defaultedDescription[T]{inner: inner, def: def}
}

func (d defaultedDescription[T]) SetDefault(v *T) {
	*v = d.def
}

func (d defaultedDescription[T]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error {
	if vt == jsonparser.Null {
		*v = d.def
		return nil
	}
	value := d.def
	if err := d.inner.ParseJSON(ctx, data, vt, &value); err != nil {
		ctx.Warn(errortypes.Recovered(ctx.Path(), err))
		*v = d.def
		return nil
	}
	*v = value
	return nil
}

func (d defaultedDescription[T]) PrintJSON(s *jsoniter.Stream, v *T) {
	d.inner.PrintJSON(s, v)
}

func (d defaultedDescription[T]) IsDefault(v *T) bool {
	return *v == d.def
}

func (d defaultedDescription[T]) WriteBinary(w *BinaryWriter, v *T) {
	d.inner.WriteBinary(w, v)
}

func (d defaultedDescription[T]) ReadBinary(r *BinaryReader, v *T) error {
	return d.inner.ReadBinary(r, v)
}

type bestEffortDescription[T any] struct {
	inner Description[T]
}

// BestEffort gives a value without a comparable default, such as a list, the same failure
// policy as Default: on error the value is reset and a warning is recorded.
func BestEffort[T any](inner Description[T]) Description[T] {
	return bestEffortDescription[T]{inner: inner}
}

func (d bestEffortDescription[T]) SetDefault(v *T) {
	setDefault(d.inner, v)
}

func (d bestEffortDescription[T]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error {
	var value T
	setDefault(d.inner, &value)
	if vt == jsonparser.Null {
		*v = value
		return nil
	}
	if err := d.inner.ParseJSON(ctx, data, vt, &value); err != nil {
		ctx.Warn(errortypes.Recovered(ctx.Path(), err))
		var zero T
		setDefault(d.inner, &zero)
		*v = zero
		return nil
	}
	*v = value
	return nil
}

func (d bestEffortDescription[T]) PrintJSON(s *jsoniter.Stream, v *T) { d.inner.PrintJSON(s, v) }
func (d bestEffortDescription[T]) IsDefault(v *T) bool                { return d.inner.IsDefault(v) }
func (d bestEffortDescription[T]) WriteBinary(w *BinaryWriter, v *T)  { d.inner.WriteBinary(w, v) }
func (d bestEffortDescription[T]) ReadBinary(r *BinaryReader, v *T) error {
	return d.inner.ReadBinary(r, v)
}

type alwaysDescription[T any] struct {
	inner Description[T]
}

// Always makes the enclosing structure print the value even when it equals the zero value.
func Always[T any](inner Description[T]) Description[T] {
	return alwaysDescription[T]{inner: inner}
}

func (d alwaysDescription[T]) SetDefault(v *T) {
	setDefault(d.inner, v)
}

func (d alwaysDescription[T]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error {
	return d.inner.ParseJSON(ctx, data, vt, v)
}

func (d alwaysDescription[T]) PrintJSON(s *jsoniter.Stream, v *T) { d.inner.PrintJSON(s, v) }
func (d alwaysDescription[T]) IsDefault(*T) bool                  { return false }
func (d alwaysDescription[T]) WriteBinary(w *BinaryWriter, v *T)  { d.inner.WriteBinary(w, v) }
func (d alwaysDescription[T]) ReadBinary(r *BinaryReader, v *T) error {
	return d.inner.ReadBinary(r, v)
}

package schema

import (
	"cmp"
	"slices"
	"sort"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
)

type listDescription[T any] struct {
	elem Description[T]
	// scalar accepts a bare element and prints one-element lists without brackets.
	scalar bool
}

// List describes a JSON array. Null is read as an empty list.
func List[T any](elem Description[T]) Description[[]T] {
	return listDescription[T]{elem: elem}
}

// ListOrScalar describes a list which exchanges may also send as a single bare element, as
// OpenRTB 2.1 banners do with "w" and "h". A one-element list prints as the bare element.
func ListOrScalar[T any](elem Description[T]) Description[[]T] {
	return listDescription[T]{elem: elem, scalar: true}
}

func (d listDescription[T]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *[]T) error {
	*v = nil
	switch vt {
	case jsonparser.Null:
		return nil
	case jsonparser.Array:
	default:
		if !d.scalar {
			return typeMismatch(ctx, "array", vt)
		}
		var elem T
		setDefault(d.elem, &elem)
		if err := d.elem.ParseJSON(ctx, data, vt, &elem); err != nil {
			return err
		}
		*v = []T{elem}
		return nil
	}

	var out []T
	err := ForEachElement(ctx, data, vt, func(value []byte, dataType jsonparser.ValueType) error {
		var elem T
		setDefault(d.elem, &elem)
		if err := d.elem.ParseJSON(ctx, value, dataType, &elem); err != nil {
			return err
		}
		out = append(out, elem)
		return nil
	})
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func (d listDescription[T]) PrintJSON(s *jsoniter.Stream, v *[]T) {
	if d.scalar && len(*v) == 1 {
		d.elem.PrintJSON(s, &(*v)[0])
		return
	}
	s.WriteArrayStart()
	for i := range *v {
		if i > 0 {
			s.WriteMore()
		}
		d.elem.PrintJSON(s, &(*v)[i])
	}
	s.WriteArrayEnd()
}

func (d listDescription[T]) IsDefault(v *[]T) bool {
	return len(*v) == 0
}

func (d listDescription[T]) WriteBinary(w *BinaryWriter, v *[]T) {
	w.WriteVarint(uint64(len(*v)))
	for i := range *v {
		w.WriteRecord(i+1, func(w *BinaryWriter) {
			d.elem.WriteBinary(w, &(*v)[i])
		})
	}
}

func (d listDescription[T]) ReadBinary(r *BinaryReader, v *[]T) error {
	n, err := r.ReadVarint()
	if err != nil {
		return err
	}
	*v = nil
	if n == 0 {
		return nil
	}
	out := make([]T, 0, min(n, uint64(r.Len())))
	for i := uint64(0); i < n; i++ {
		_, elemReader, err := r.ReadRecord()
		if err != nil {
			return err
		}
		var elem T
		setDefault(d.elem, &elem)
		if err := d.elem.ReadBinary(elemReader, &elem); err != nil {
			return err
		}
		out = append(out, elem)
	}
	*v = out
	return nil
}

type setDescription[T cmp.Ordered] struct {
	listDescription[T]
}

// Set describes an array kept sorted and free of duplicates.
func Set[T cmp.Ordered](elem Description[T]) Description[[]T] {
	return setDescription[T]{listDescription[T]{elem: elem}}
}

func (d setDescription[T]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *[]T) error {
	if err := d.listDescription.ParseJSON(ctx, data, vt, v); err != nil {
		return err
	}
	slices.Sort(*v)
	*v = slices.Compact(*v)
	return nil
}

type mapDescription[V any] struct {
	elem Description[V]
}

// Map describes a JSON object with arbitrary keys. Keys are printed in sorted order so output
// is deterministic.
func Map[V any](elem Description[V]) Description[map[string]V] {
	return mapDescription[V]{elem: elem}
}

func (d mapDescription[V]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *map[string]V) error {
	*v = nil
	if vt == jsonparser.Null {
		return nil
	}
	if vt != jsonparser.Object {
		return typeMismatch(ctx, "object", vt)
	}

	out := make(map[string]V)
	err := ForEachMember(ctx, data, vt, func(key string, value []byte, dataType jsonparser.ValueType) error {
		var elem V
		setDefault(d.elem, &elem)
		if err := d.elem.ParseJSON(ctx, value, dataType, &elem); err != nil {
			return err
		}
		out[key] = elem
		return nil
	})
	if err != nil {
		return err
	}
	if len(out) > 0 {
		*v = out
	}
	return nil
}

func (d mapDescription[V]) PrintJSON(s *jsoniter.Stream, v *map[string]V) {
	s.WriteObjectStart()
	for i, key := range sortedKeys(*v) {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(key)
		elem := (*v)[key]
		d.elem.PrintJSON(s, &elem)
	}
	s.WriteObjectEnd()
}

func (d mapDescription[V]) IsDefault(v *map[string]V) bool {
	return len(*v) == 0
}

func (d mapDescription[V]) WriteBinary(w *BinaryWriter, v *map[string]V) {
	keys := sortedKeys(*v)
	w.WriteVarint(uint64(len(keys)))
	for i, key := range keys {
		w.WriteRecord(i+1, func(w *BinaryWriter) {
			elem := (*v)[key]
			w.WriteString(key)
			d.elem.WriteBinary(w, &elem)
		})
	}
}

func (d mapDescription[V]) ReadBinary(r *BinaryReader, v *map[string]V) error {
	n, err := r.ReadVarint()
	if err != nil {
		return err
	}
	*v = nil
	if n == 0 {
		return nil
	}
	out := make(map[string]V)
	for i := uint64(0); i < n; i++ {
		_, entry, err := r.ReadRecord()
		if err != nil {
			return err
		}
		key, err := entry.ReadString()
		if err != nil {
			return err
		}
		var elem V
		setDefault(d.elem, &elem)
		if err := d.elem.ReadBinary(entry, &elem); err != nil {
			return err
		}
		out[key] = elem
	}
	*v = out
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func objectKey(key []byte) string {
	if slices.Contains(key, '\\') {
		if s, err := jsonparser.ParseString(key); err == nil {
			return s
		}
	}
	return string(key)
}

// ForEachMember walks the members of a JSON object, keeping the context path in step. It is
// the building block for descriptions of types which are not plain structures or maps.
func ForEachMember(ctx *ParseContext, data []byte, vt jsonparser.ValueType, fn func(key string, value []byte, vt jsonparser.ValueType) error) error {
	if vt == jsonparser.Null {
		return nil
	}
	if vt != jsonparser.Object {
		return typeMismatch(ctx, "object", vt)
	}
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := objectKey(key)
		ctx.pushField(name)
		defer ctx.pop()
		return fn(name, value, dataType)
	})
	if err != nil {
		return malformed(ctx, err)
	}
	return nil
}

// ForEachElement walks the elements of a JSON array, keeping the context path in step.
// Iteration stops at the first error.
func ForEachElement(ctx *ParseContext, data []byte, vt jsonparser.ValueType, fn func(value []byte, vt jsonparser.ValueType) error) error {
	if vt == jsonparser.Null {
		return nil
	}
	if vt != jsonparser.Array {
		return typeMismatch(ctx, "array", vt)
	}
	var (
		index    int
		firstErr error
	)
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if firstErr != nil {
			return
		}
		ctx.pushIndex(index)
		defer ctx.pop()
		index++
		firstErr = fn(value, dataType)
	})
	if firstErr != nil {
		return firstErr
	}
	if err != nil {
		return malformed(ctx, err)
	}
	return nil
}

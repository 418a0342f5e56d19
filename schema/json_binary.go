package schema

import (
	"github.com/buger/jsonparser"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
)

type jsonBinaryDescription[T any] struct {
	Description[T]
	name    string
	version int
}

// BinaryAsJSON keeps the JSON behaviour of desc but writes the binary form as a version header
// followed by the JSON text, trading space for a layout that never drifts from the JSON one.
func BinaryAsJSON[T any](name string, version int, desc Description[T]) Description[T] {
	return jsonBinaryDescription[T]{Description: desc, name: name, version: version}
}

func (d jsonBinaryDescription[T]) SetDefault(v *T) {
	setDefault(d.Description, v)
}

func (d jsonBinaryDescription[T]) WriteBinary(w *BinaryWriter, v *T) {
	w.WriteVarint(uint64(d.version))
	text, err := printJSON[T](d.Description, v)
	if err != nil {
		// unprintable values, such as NaN floats, are written as an empty document
		text = []byte("{}")
	}
	w.WriteBytes(text)
}

func (d jsonBinaryDescription[T]) ReadBinary(r *BinaryReader, v *T) error {
	if err := r.ReadVersion(d.name, d.version); err != nil {
		return err
	}
	text, err := r.ReadBytes()
	if err != nil {
		return err
	}
	value, vt, _, err := jsonparser.Get(text)
	if err != nil {
		return &errortypes.BadInput{Message: d.name + ": malformed JSON in binary payload: " + err.Error()}
	}
	return d.Description.ParseJSON(NewParseContext(), value, vt, v)
}

package schema

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
)

// Unparseable holds JSON members which no description models, keyed by their path from the
// document root.
type Unparseable map[string]json.RawMessage

type field[T any] struct {
	name       string
	aliases    []string
	parse      func(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error
	print      func(s *jsoniter.Stream, v *T)
	isDefault  func(v *T) bool
	setDefault func(v *T)
	write      func(w *BinaryWriter, v *T)
	read       func(r *BinaryReader, v *T) error
}

// StructDescription describes a Go struct as a JSON object with named members. Fields are
// declared with AddField and AddParent; their declaration order fixes both the JSON print order
// and the binary record numbers.
type StructDescription[T any] struct {
	name         string
	version      int
	nullAccepted bool
	fields       []*field[T]
	byName       map[string]*field[T]
	markerValue  string
	unparseable  func(v *T) *Unparseable
}

// NewStruct starts a structure description. The version is written at the head of the binary
// form and checked when reading it back.
func NewStruct[T any](name string, version int) *StructDescription[T] {
	return &StructDescription[T]{
		name:    name,
		version: version,
		byName:  make(map[string]*field[T]),
	}
}

// AcceptNull makes a JSON null parse as "absent, use defaults" instead of a type mismatch.
func (d *StructDescription[T]) AcceptNull() *StructDescription[T] {
	d.nullAccepted = true
	return d
}

// Marker prints {"!!CV": value} as the first member. Members whose path contains the marker
// key are skipped when parsing.
func (d *StructDescription[T]) Marker(value string) *StructDescription[T] {
	d.markerValue = value
	return d
}

// CaptureUnknown stores every member the structure, or any structure nested within it, does
// not declare into the bag returned by get.
func (d *StructDescription[T]) CaptureUnknown(get func(v *T) *Unparseable) *StructDescription[T] {
	d.unparseable = get
	return d
}

// Name returns the type name used in diagnostics.
func (d *StructDescription[T]) Name() string {
	return d.name
}

// FieldOption customizes a declared field.
type FieldOption func(names *[]string)

// Alias accepts additional member names on parse. The field is always printed under its
// primary name.
func Alias(names ...string) FieldOption {
	return func(aliases *[]string) {
		*aliases = append(*aliases, names...)
	}
}

// AddField declares a member of T stored at the location returned by get.
func AddField[T, F any](d *StructDescription[T], name string, get func(v *T) *F, desc Description[F], opts ...FieldOption) {
	f := &field[T]{
		name: name,
		parse: func(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error {
			return desc.ParseJSON(ctx, data, vt, get(v))
		},
		print:     func(s *jsoniter.Stream, v *T) { desc.PrintJSON(s, get(v)) },
		isDefault: func(v *T) bool { return desc.IsDefault(get(v)) },
		setDefault: func(v *T) {
			setDefault(desc, get(v))
		},
		write: func(w *BinaryWriter, v *T) { desc.WriteBinary(w, get(v)) },
		read:  func(r *BinaryReader, v *T) error { return desc.ReadBinary(r, get(v)) },
	}
	for _, opt := range opts {
		opt(&f.aliases)
	}
	d.addField(f)
}

// AddParent declares every field of parent as a field of T, for structures which extend another
// one, e.g. an ad spot extending an impression.
func AddParent[T, P any](d *StructDescription[T], get func(v *T) *P, parent *StructDescription[P]) {
	for _, pf := range parent.fields {
		pf := pf
		d.addField(&field[T]{
			name:    pf.name,
			aliases: pf.aliases,
			parse: func(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error {
				return pf.parse(ctx, data, vt, get(v))
			},
			print:      func(s *jsoniter.Stream, v *T) { pf.print(s, get(v)) },
			isDefault:  func(v *T) bool { return pf.isDefault(get(v)) },
			setDefault: func(v *T) { pf.setDefault(get(v)) },
			write:      func(w *BinaryWriter, v *T) { pf.write(w, get(v)) },
			read:       func(r *BinaryReader, v *T) error { return pf.read(r, get(v)) },
		})
	}
}

func (d *StructDescription[T]) addField(f *field[T]) {
	for _, name := range append([]string{f.name}, f.aliases...) {
		if _, ok := d.byName[name]; ok {
			panic("schema: field " + strconv.Quote(name) + " declared twice on " + d.name)
		}
		d.byName[name] = f
	}
	d.fields = append(d.fields, f)
}

func (d *StructDescription[T]) SetDefault(v *T) {
	for _, f := range d.fields {
		f.setDefault(v)
	}
}

func (d *StructDescription[T]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error {
	if vt == jsonparser.Null && d.nullAccepted {
		return nil
	}
	if vt != jsonparser.Object {
		return typeMismatch(ctx, d.name+" object", vt)
	}

	if d.unparseable != nil {
		bag := d.unparseable(v)
		ctx.pushCapture(func(path string, raw json.RawMessage) {
			if *bag == nil {
				*bag = make(Unparseable)
			}
			(*bag)[path] = raw
		})
		defer ctx.popCapture()
	}

	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := objectKey(key)
		ctx.pushField(name)
		defer ctx.pop()

		if f, ok := d.byName[name]; ok {
			return f.parse(ctx, value, dataType, v)
		}
		d.unknownField(ctx, value, dataType)
		return nil
	})
	if err != nil {
		return malformed(ctx, err)
	}
	return nil
}

func (d *StructDescription[T]) unknownField(ctx *ParseContext, value []byte, vt jsonparser.ValueType) {
	path := ctx.Path()
	if strings.Contains(path, MarkerKey) {
		return
	}
	if ctx.capture(rawValue(value, vt)) {
		ctx.Warn(&errortypes.UnparseableField{Path: path})
		return
	}
	ctx.Warn(&errortypes.Warning{
		Message:     path + ": unknown field on " + d.name + " ignored",
		WarningCode: errortypes.UnknownFieldWarningCode,
	})
}

func (d *StructDescription[T]) PrintJSON(s *jsoniter.Stream, v *T) {
	s.WriteObjectStart()
	first := true
	if d.markerValue != "" {
		s.WriteObjectField(MarkerKey)
		s.WriteString(d.markerValue)
		first = false
	}
	for _, f := range d.fields {
		if f.isDefault(v) {
			continue
		}
		if !first {
			s.WriteMore()
		}
		first = false
		s.WriteObjectField(f.name)
		f.print(s, v)
	}
	s.WriteObjectEnd()
}

func (d *StructDescription[T]) IsDefault(v *T) bool {
	for _, f := range d.fields {
		if !f.isDefault(v) {
			return false
		}
	}
	return true
}

func (d *StructDescription[T]) WriteBinary(w *BinaryWriter, v *T) {
	w.WriteVarint(uint64(d.version))
	for i, f := range d.fields {
		w.WriteRecord(i+1, func(w *BinaryWriter) {
			f.write(w, v)
		})
	}
}

func (d *StructDescription[T]) ReadBinary(r *BinaryReader, v *T) error {
	if err := r.ReadVersion(d.name, d.version); err != nil {
		return err
	}
	for r.Len() > 0 {
		num, record, err := r.ReadRecord()
		if err != nil {
			return err
		}
		if num < 1 || num > len(d.fields) {
			return &errortypes.BadInput{Message: d.name + ": unknown binary field " + strconv.Itoa(num)}
		}
		if err := d.fields[num-1].read(record, v); err != nil {
			return err
		}
		if record.Len() != 0 {
			return &errortypes.BadInput{Message: d.name + "." + d.fields[num-1].name + ": trailing bytes in binary field"}
		}
	}
	return nil
}

type unparseableDescription struct {
	mapDescription[json.RawMessage]
}

// UnparseableBag describes the object holding captured members.
func UnparseableBag() Description[Unparseable] {
	return unparseableDescription{mapDescription[json.RawMessage]{elem: RawJSON()}}
}

// ParseJSON merges into the bag, which may already hold members captured earlier in the document.
func (d unparseableDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *Unparseable) error {
	var parsed map[string]json.RawMessage
	if err := d.mapDescription.ParseJSON(ctx, data, vt, &parsed); err != nil {
		return err
	}
	for path, raw := range parsed {
		if *v == nil {
			*v = make(Unparseable, len(parsed))
		}
		(*v)[path] = raw
	}
	return nil
}

func (d unparseableDescription) PrintJSON(s *jsoniter.Stream, v *Unparseable) {
	d.mapDescription.PrintJSON(s, (*map[string]json.RawMessage)(v))
}

func (d unparseableDescription) IsDefault(v *Unparseable) bool {
	return len(*v) == 0
}

func (d unparseableDescription) WriteBinary(w *BinaryWriter, v *Unparseable) {
	d.mapDescription.WriteBinary(w, (*map[string]json.RawMessage)(v))
}

func (d unparseableDescription) ReadBinary(r *BinaryReader, v *Unparseable) error {
	return d.mapDescription.ReadBinary(r, (*map[string]json.RawMessage)(v))
}

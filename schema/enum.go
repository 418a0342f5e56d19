package schema

import (
	"strconv"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
)

// EnumValue names one value of an enumeration. The first name is the printed one; the others
// are accepted as aliases on parse.
type EnumValue[E Integer] struct {
	Value E
	Names []string
}

type enumDescription[E Integer] struct {
	intDescription[E]
	byName map[string]E
	names  map[E]string
}

// StringEnum describes an integer enumeration which is printed by name. Parsing accepts any of
// the declared names or a bare integer; values without a name are printed as integers.
func StringEnum[E Integer](values ...EnumValue[E]) Description[E] {
	d := enumDescription[E]{
		byName: make(map[string]E),
		names:  make(map[E]string),
	}
	for _, value := range values {
		for i, name := range value.Names {
			d.byName[name] = value.Value
			if i == 0 {
				d.names[value.Value] = name
			}
		}
	}
	return d
}

func (d enumDescription[E]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *E) error {
	if vt == jsonparser.String {
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return malformed(ctx, err)
		}
		if value, ok := d.byName[s]; ok {
			*v = value
			return nil
		}
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			return &errortypes.TypeMismatch{Path: ctx.Path(), Expected: "enumeration value", Found: strconv.Quote(s)}
		}
	}
	return d.intDescription.ParseJSON(ctx, data, vt, v)
}

func (d enumDescription[E]) PrintJSON(s *jsoniter.Stream, v *E) {
	if name, ok := d.names[*v]; ok {
		s.WriteString(name)
		return
	}
	d.intDescription.PrintJSON(s, v)
}

type namedIntDescription[E Integer] struct {
	enumDescription[E]
}

// NamedInt parses like StringEnum but always prints the integer value.
func NamedInt[E Integer](values ...EnumValue[E]) Description[E] {
	return namedIntDescription[E]{StringEnum(values...).(enumDescription[E])}
}

func (d namedIntDescription[E]) PrintJSON(s *jsoniter.Stream, v *E) {
	d.intDescription.PrintJSON(s, v)
}

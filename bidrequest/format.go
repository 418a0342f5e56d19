package bidrequest

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/schema"
)

// Format is a creative size in pixels.
type Format struct {
	Width  int
	Height int
}

// ParseFormat reads a "WxH" string. The whole string must be consumed.
func ParseFormat(s string) (Format, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return Format{}, fmt.Errorf("couldn't parse format string %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Format{}, fmt.Errorf("couldn't parse format string %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Format{}, fmt.Errorf("couldn't parse format string %q", s)
	}
	return Format{Width: width, Height: height}, nil
}

func (f Format) String() string {
	return strconv.Itoa(f.Width) + "x" + strconv.Itoa(f.Height)
}

// Compare orders formats by width, then height.
func (f Format) Compare(other Format) int {
	if c := cmp.Compare(f.Width, other.Width); c != 0 {
		return c
	}
	return cmp.Compare(f.Height, other.Height)
}

// FormatSet is the ordered list of sizes an ad spot accepts.
type FormatSet []Format

// Sort orders the set by width, then height.
func (fs FormatSet) Sort() {
	slices.SortFunc(fs, Format.Compare)
}

// Contains reports whether f is one of the accepted sizes.
func (fs FormatSet) Contains(f Format) bool {
	return slices.Contains(fs, f)
}

// String prints a single format bare and anything else as a bracketed list,
// e.g. "300x250" or "[300x250, 728x90]".
func (fs FormatSet) String() string {
	if len(fs) == 1 {
		return fs[0].String()
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type formatDescription struct{}

func (formatDescription) ParseJSON(ctx *schema.ParseContext, data []byte, vt jsonparser.ValueType, v *Format) error {
	switch vt {
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return &errortypes.BadInput{Message: ctx.Path() + ": " + err.Error()}
		}
		f, err := ParseFormat(s)
		if err != nil {
			return &errortypes.TypeMismatch{Path: ctx.Path(), Expected: "WxH format", Found: strconv.Quote(s)}
		}
		*v = f
		return nil
	case jsonparser.Object:
		return formatObjectDescription().ParseJSON(ctx, data, vt, v)
	default:
		return &errortypes.TypeMismatch{Path: ctx.Path(), Expected: "WxH format", Found: vt.String()}
	}
}

func (formatDescription) PrintJSON(s *jsoniter.Stream, v *Format) { s.WriteString(v.String()) }
func (formatDescription) IsDefault(v *Format) bool                { return *v == Format{} }

func (formatDescription) WriteBinary(w *schema.BinaryWriter, v *Format) {
	w.WriteInt(int64(v.Width))
	w.WriteInt(int64(v.Height))
}

func (formatDescription) ReadBinary(r *schema.BinaryReader, v *Format) error {
	width, err := r.ReadInt()
	if err != nil {
		return err
	}
	height, err := r.ReadInt()
	if err != nil {
		return err
	}
	*v = Format{Width: int(width), Height: int(height)}
	return nil
}

// formatObjectDescription reads the {"width":300,"height":250} form.
var formatObjectDescription = sync.OnceValue(func() *schema.StructDescription[Format] {
	d := schema.NewStruct[Format]("Format", 0)
	schema.AddField(d, "width", func(f *Format) *int { return &f.Width }, schema.Int[int]())
	schema.AddField(d, "height", func(f *Format) *int { return &f.Height }, schema.Int[int]())
	return d
})

type formatSetDescription struct {
	list schema.Description[[]Format]
}

// FormatSetDescription parses a single "WxH" string or an array of formats, and always prints
// an array.
func FormatSetDescription() schema.Description[FormatSet] {
	return formatSetDescription{list: schema.List[Format](formatDescription{})}
}

func (d formatSetDescription) ParseJSON(ctx *schema.ParseContext, data []byte, vt jsonparser.ValueType, v *FormatSet) error {
	if vt == jsonparser.String {
		var f Format
		if err := (formatDescription{}).ParseJSON(ctx, data, vt, &f); err != nil {
			return err
		}
		*v = FormatSet{f}
		return nil
	}
	if vt != jsonparser.Array {
		return &errortypes.TypeMismatch{Path: ctx.Path(), Expected: "format set", Found: vt.String()}
	}
	return d.list.ParseJSON(ctx, data, vt, (*[]Format)(v))
}

func (d formatSetDescription) PrintJSON(s *jsoniter.Stream, v *FormatSet) {
	d.list.PrintJSON(s, (*[]Format)(v))
}

func (d formatSetDescription) IsDefault(v *FormatSet) bool {
	return len(*v) == 0
}

func (d formatSetDescription) WriteBinary(w *schema.BinaryWriter, v *FormatSet) {
	d.list.WriteBinary(w, (*[]Format)(v))
}

func (d formatSetDescription) ReadBinary(r *schema.BinaryReader, v *FormatSet) error {
	return d.list.ReadBinary(r, (*[]Format)(v))
}

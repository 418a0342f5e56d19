package bidrequest

import (
	"slices"
	"strconv"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/schema"
)

// SegmentResult is the answer to a segment presence query.
type SegmentResult int

const (
	// SegPresent means the provider sent the segment.
	SegPresent SegmentResult = iota
	// SegNotPresent means the provider sent data, but not this segment.
	SegNotPresent
	// SegMissing means the provider sent no data at all.
	SegMissing
)

func (r SegmentResult) String() string {
	switch r {
	case SegPresent:
		return "PRESENT"
	case SegNotPresent:
		return "NOT_PRESENT"
	case SegMissing:
		return "MISSING"
	}
	return "SegmentResult(" + strconv.Itoa(int(r)) + ")"
}

// SegmentList holds one provider's segment tokens. Numeric tokens are stored as integers,
// whether they arrived as JSON numbers or as strings.
type SegmentList struct {
	Ints    []int
	Strings []string
}

// Add stores a token, as an integer when it is one.
func (l *SegmentList) Add(token string) {
	if i, err := strconv.Atoi(token); err == nil {
		l.Ints = append(l.Ints, i)
		return
	}
	l.Strings = append(l.Strings, token)
}

func (l *SegmentList) AddInt(i int) {
	l.Ints = append(l.Ints, i)
}

func (l *SegmentList) Contains(token string) bool {
	if i, err := strconv.Atoi(token); err == nil {
		return l.ContainsInt(i)
	}
	return slices.Contains(l.Strings, token)
}

func (l *SegmentList) ContainsInt(i int) bool {
	return slices.Contains(l.Ints, i)
}

// Len returns the number of tokens.
func (l *SegmentList) Len() int {
	return len(l.Ints) + len(l.Strings)
}

// Sort orders the tokens and drops duplicates.
func (l *SegmentList) Sort() {
	slices.Sort(l.Ints)
	l.Ints = slices.Compact(l.Ints)
	slices.Sort(l.Strings)
	l.Strings = slices.Compact(l.Strings)
}

// Segments maps a data provider to the segments it sent about the user. The same structure
// carries restrictions.
type Segments map[string]*SegmentList

// AddStrings appends tokens to the provider's list, creating it if needed.
func (s *Segments) AddStrings(provider string, tokens []string) {
	list := s.list(provider)
	for _, token := range tokens {
		list.Add(token)
	}
}

// AddInts appends integer tokens to the provider's list, creating it if needed.
func (s *Segments) AddInts(provider string, values []int) {
	list := s.list(provider)
	list.Ints = append(list.Ints, values...)
}

func (s *Segments) list(provider string) *SegmentList {
	if *s == nil {
		*s = make(Segments)
	}
	list, ok := (*s)[provider]
	if !ok {
		list = &SegmentList{}
		(*s)[provider] = list
	}
	return list
}

// Present answers whether provider sent token. It distinguishes a provider which sent other
// segments from one which sent nothing.
func (s Segments) Present(provider, token string) SegmentResult {
	list, ok := s[provider]
	if !ok {
		return SegMissing
	}
	if list.Contains(token) {
		return SegPresent
	}
	return SegNotPresent
}

// PresentInt is Present for an integer segment.
func (s Segments) PresentInt(provider string, segment int) SegmentResult {
	list, ok := s[provider]
	if !ok {
		return SegMissing
	}
	if list.ContainsInt(segment) {
		return SegPresent
	}
	return SegNotPresent
}

// SortAll sorts every provider's list.
func (s Segments) SortAll() {
	for _, list := range s {
		list.Sort()
	}
}

type segmentListDescription struct{}

func (segmentListDescription) ParseJSON(ctx *schema.ParseContext, data []byte, vt jsonparser.ValueType, v *SegmentList) error {
	*v = SegmentList{}
	return schema.ForEachElement(ctx, data, vt, func(value []byte, vt jsonparser.ValueType) error {
		switch vt {
		case jsonparser.Number:
			var i int
			if err := schema.Int[int]().ParseJSON(ctx, value, vt, &i); err != nil {
				return err
			}
			v.AddInt(i)
		case jsonparser.String:
			var token string
			if err := schema.String().ParseJSON(ctx, value, vt, &token); err != nil {
				return err
			}
			v.Add(token)
		default:
			return &errortypes.TypeMismatch{Path: ctx.Path(), Expected: "segment", Found: vt.String()}
		}
		return nil
	})
}

func (segmentListDescription) PrintJSON(s *jsoniter.Stream, v *SegmentList) {
	s.WriteArrayStart()
	for i, value := range v.Ints {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteInt(value)
	}
	for i, value := range v.Strings {
		if i > 0 || len(v.Ints) > 0 {
			s.WriteMore()
		}
		s.WriteString(value)
	}
	s.WriteArrayEnd()
}

func (segmentListDescription) IsDefault(v *SegmentList) bool {
	return v.Len() == 0
}

func (segmentListDescription) WriteBinary(w *schema.BinaryWriter, v *SegmentList) {
	schema.List(schema.Int[int]()).WriteBinary(w, &v.Ints)
	schema.List(schema.String()).WriteBinary(w, &v.Strings)
}

func (segmentListDescription) ReadBinary(r *schema.BinaryReader, v *SegmentList) error {
	if err := schema.List(schema.Int[int]()).ReadBinary(r, &v.Ints); err != nil {
		return err
	}
	return schema.List(schema.String()).ReadBinary(r, &v.Strings)
}

type segmentsDescription struct {
	providers schema.Description[map[string]*SegmentList]
}

// SegmentsDescription describes segments as an object of provider to token array.
func SegmentsDescription() schema.Description[Segments] {
	return segmentsDescription{providers: schema.Map(schema.Optional[SegmentList](segmentListDescription{}))}
}

func (d segmentsDescription) ParseJSON(ctx *schema.ParseContext, data []byte, vt jsonparser.ValueType, v *Segments) error {
	if err := d.providers.ParseJSON(ctx, data, vt, (*map[string]*SegmentList)(v)); err != nil {
		return err
	}
	// providers whose list was null or unreadable sent nothing usable
	for provider, list := range *v {
		if list == nil {
			delete(*v, provider)
		}
	}
	if len(*v) == 0 {
		*v = nil
	}
	return nil
}

func (d segmentsDescription) PrintJSON(s *jsoniter.Stream, v *Segments) {
	d.providers.PrintJSON(s, (*map[string]*SegmentList)(v))
}

func (d segmentsDescription) IsDefault(v *Segments) bool {
	return len(*v) == 0
}

func (d segmentsDescription) WriteBinary(w *schema.BinaryWriter, v *Segments) {
	d.providers.WriteBinary(w, (*map[string]*SegmentList)(v))
}

func (d segmentsDescription) ReadBinary(r *schema.BinaryReader, v *Segments) error {
	return d.providers.ReadBinary(r, (*map[string]*SegmentList)(v))
}

package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Integer is the set of types Int can describe, including named enumerations.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type stringDescription struct{}

// String describes a JSON string.
func String() Description[string] {
	return stringDescription{}
}

func (stringDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *string) error {
	if vt != jsonparser.String {
		return typeMismatch(ctx, "string", vt)
	}
	s, err := jsonparser.ParseString(data)
	if err != nil {
		return malformed(ctx, err)
	}
	*v = s
	return nil
}

func (stringDescription) PrintJSON(s *jsoniter.Stream, v *string) { s.WriteString(*v) }
func (stringDescription) IsDefault(v *string) bool                { return *v == "" }
func (stringDescription) WriteBinary(w *BinaryWriter, v *string)  { w.WriteString(*v) }

func (stringDescription) ReadBinary(r *BinaryReader, v *string) (err error) {
	*v, err = r.ReadString()
	return
}

type idDescription struct {
	stringDescription
}

// ID describes an identifier which exchanges send either as a string or as a number. It is
// always printed as a string.
func ID() Description[string] {
	return idDescription{}
}

func (d idDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *string) error {
	if vt == jsonparser.Number {
		*v = string(data)
		return nil
	}
	if vt != jsonparser.String {
		return typeMismatch(ctx, "string or number", vt)
	}
	return d.stringDescription.ParseJSON(ctx, data, vt, v)
}

type intDescription[T Integer] struct{}

// Int describes an integer. Numeric strings are accepted and converted.
func Int[T Integer]() Description[T] {
	return intDescription[T]{}
}

func (intDescription[T]) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *T) error {
	var text string
	switch vt {
	case jsonparser.Number:
		text = string(data)
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return malformed(ctx, err)
		}
		text = strings.TrimSpace(s)
	default:
		return typeMismatch(ctx, "integer", vt)
	}

	n, err := parseInteger(text)
	if err != nil || int64(T(n)) != n {
		return &errortypes.InvalidNumber{Path: ctx.Path(), Value: text}
	}
	*v = T(n)
	return nil
}

func parseInteger(text string) (int64, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return n, nil
	}
	// "300.0" and "3e2" are integral numbers too
	f, ferr := strconv.ParseFloat(text, 64)
	if ferr != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, err
	}
	return int64(f), nil
}

func (intDescription[T]) PrintJSON(s *jsoniter.Stream, v *T) { s.WriteInt64(int64(*v)) }
func (intDescription[T]) IsDefault(v *T) bool                { return *v == 0 }
func (intDescription[T]) WriteBinary(w *BinaryWriter, v *T)  { w.WriteInt(int64(*v)) }
func (intDescription[T]) ReadBinary(r *BinaryReader, v *T) error {
	n, err := r.ReadInt()
	*v = T(n)
	return err
}

type floatDescription struct{}

// Float describes a floating point number. Numeric strings are accepted and converted.
func Float() Description[float64] {
	return floatDescription{}
}

func (floatDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *float64) error {
	var text string
	switch vt {
	case jsonparser.Number:
		text = string(data)
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return malformed(ctx, err)
		}
		text = strings.TrimSpace(s)
	default:
		return typeMismatch(ctx, "number", vt)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return &errortypes.InvalidNumber{Path: ctx.Path(), Value: text}
	}
	*v = f
	return nil
}

func (floatDescription) PrintJSON(s *jsoniter.Stream, v *float64) { s.WriteFloat64(*v) }
func (floatDescription) IsDefault(v *float64) bool                { return *v == 0 }
func (floatDescription) WriteBinary(w *BinaryWriter, v *float64)  { w.WriteFloat(*v) }
func (floatDescription) ReadBinary(r *BinaryReader, v *float64) (err error) {
	*v, err = r.ReadFloat()
	return
}

type boolDescription struct{}

// Bool describes a boolean. Besides true and false it accepts integers, where any non-zero
// value is true, either as JSON numbers or as strings.
func Bool() Description[bool] {
	return boolDescription{}
}

func (boolDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *bool) error {
	switch vt {
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(data)
		if err != nil {
			return malformed(ctx, err)
		}
		*v = b
		return nil
	case jsonparser.Number, jsonparser.String:
		text := string(data)
		if vt == jsonparser.String {
			s, err := jsonparser.ParseString(data)
			if err != nil {
				return malformed(ctx, err)
			}
			text = strings.TrimSpace(s)
		}
		if b, err := strconv.ParseBool(text); err == nil {
			*v = b
			return nil
		}
		n, err := parseInteger(text)
		if err != nil {
			return &errortypes.InvalidNumber{Path: ctx.Path(), Value: text}
		}
		*v = n != 0
		return nil
	default:
		return typeMismatch(ctx, "boolean", vt)
	}
}

func (boolDescription) PrintJSON(s *jsoniter.Stream, v *bool) { s.WriteBool(*v) }
func (boolDescription) IsDefault(v *bool) bool                { return !*v }
func (boolDescription) WriteBinary(w *BinaryWriter, v *bool)  { w.WriteBool(*v) }
func (boolDescription) ReadBinary(r *BinaryReader, v *bool) (err error) {
	*v, err = r.ReadBool()
	return
}

type decimalDescription struct{}

// Decimal describes an exact decimal amount, printed as a JSON number.
func Decimal() Description[decimal.Decimal] {
	return decimalDescription{}
}

func (decimalDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *decimal.Decimal) error {
	text := string(data)
	switch vt {
	case jsonparser.Number:
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return malformed(ctx, err)
		}
		text = strings.TrimSpace(s)
	default:
		return typeMismatch(ctx, "number", vt)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return &errortypes.InvalidNumber{Path: ctx.Path(), Value: text}
	}
	*v = d
	return nil
}

func (decimalDescription) PrintJSON(s *jsoniter.Stream, v *decimal.Decimal) { s.WriteRaw(v.String()) }
func (decimalDescription) IsDefault(v *decimal.Decimal) bool                { return v.IsZero() }

func (decimalDescription) WriteBinary(w *BinaryWriter, v *decimal.Decimal) {
	w.WriteString(v.Coefficient().String())
	w.WriteInt(int64(v.Exponent()))
}

func (decimalDescription) ReadBinary(r *BinaryReader, v *decimal.Decimal) error {
	coefficient, err := r.ReadString()
	if err != nil {
		return err
	}
	exp, err := r.ReadInt()
	if err != nil {
		return err
	}
	d, err := decimal.NewFromString(coefficient)
	if err != nil {
		return &errortypes.BadInput{Message: "malformed binary decimal: " + err.Error()}
	}
	*v = d.Shift(int32(exp))
	return nil
}

type currencyDescription struct{}

// Currency describes an ISO 4217 currency code. The zero currency.Unit is the default.
func Currency() Description[currency.Unit] {
	return currencyDescription{}
}

func (currencyDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *currency.Unit) error {
	if vt != jsonparser.String {
		return typeMismatch(ctx, "currency code", vt)
	}
	s, err := jsonparser.ParseString(data)
	if err != nil {
		return malformed(ctx, err)
	}
	unit, err := currency.ParseISO(s)
	if err != nil {
		return &errortypes.TypeMismatch{Path: ctx.Path(), Expected: "ISO 4217 currency code", Found: strconv.Quote(s)}
	}
	*v = unit
	return nil
}

func (currencyDescription) PrintJSON(s *jsoniter.Stream, v *currency.Unit) { s.WriteString(v.String()) }
func (currencyDescription) IsDefault(v *currency.Unit) bool                { return *v == currency.Unit{} }

func (currencyDescription) WriteBinary(w *BinaryWriter, v *currency.Unit) {
	if *v == (currency.Unit{}) {
		w.WriteString("")
		return
	}
	w.WriteString(v.String())
}

func (currencyDescription) ReadBinary(r *BinaryReader, v *currency.Unit) error {
	code, err := r.ReadString()
	if err != nil || code == "" {
		return err
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return &errortypes.BadInput{Message: "malformed binary currency: " + err.Error()}
	}
	*v = unit
	return nil
}

type timeDescription struct{}

// Time describes an instant. It parses RFC 3339 strings, numeric strings and numbers as
// seconds since the epoch (fractions allowed), and prints RFC 3339 with nanoseconds in UTC.
func Time() Description[time.Time] {
	return timeDescription{}
}

func (timeDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *time.Time) error {
	text := string(data)
	switch vt {
	case jsonparser.Number:
	case jsonparser.String:
		s, err := jsonparser.ParseString(data)
		if err != nil {
			return malformed(ctx, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			*v = t.UTC()
			return nil
		}
		text = strings.TrimSpace(s)
	default:
		return typeMismatch(ctx, "timestamp", vt)
	}

	seconds, err := decimal.NewFromString(text)
	if err != nil {
		return &errortypes.InvalidNumber{Path: ctx.Path(), Value: text}
	}
	whole := seconds.IntPart()
	nanos := seconds.Sub(decimal.NewFromInt(whole)).Shift(9).IntPart()
	*v = time.Unix(whole, nanos).UTC()
	return nil
}

func (timeDescription) PrintJSON(s *jsoniter.Stream, v *time.Time) {
	s.WriteString(v.UTC().Format(time.RFC3339Nano))
}

func (timeDescription) IsDefault(v *time.Time) bool { return v.IsZero() }

func (timeDescription) WriteBinary(w *BinaryWriter, v *time.Time) {
	w.WriteBool(!v.IsZero())
	if !v.IsZero() {
		w.WriteInt(v.Unix())
		w.WriteInt(int64(v.Nanosecond()))
	}
}

func (timeDescription) ReadBinary(r *BinaryReader, v *time.Time) error {
	present, err := r.ReadBool()
	if err != nil || !present {
		return err
	}
	sec, err := r.ReadInt()
	if err != nil {
		return err
	}
	nsec, err := r.ReadInt()
	if err != nil {
		return err
	}
	*v = time.Unix(sec, nsec).UTC()
	return nil
}

type rawDescription struct{}

// RawJSON keeps a value as raw JSON text, e.g. an "ext" object whose layout belongs to the exchange.
func RawJSON() Description[json.RawMessage] {
	return rawDescription{}
}

func (rawDescription) ParseJSON(ctx *ParseContext, data []byte, vt jsonparser.ValueType, v *json.RawMessage) error {
	if vt == jsonparser.NotExist || vt == jsonparser.Unknown {
		return typeMismatch(ctx, "JSON value", vt)
	}
	*v = rawValue(data, vt)
	return nil
}

func (rawDescription) PrintJSON(s *jsoniter.Stream, v *json.RawMessage) {
	if len(*v) == 0 {
		s.WriteNil()
		return
	}
	s.WriteRaw(string(*v))
}

func (rawDescription) IsDefault(v *json.RawMessage) bool { return len(*v) == 0 }

func (rawDescription) WriteBinary(w *BinaryWriter, v *json.RawMessage) { w.WriteBytes(*v) }

func (rawDescription) ReadBinary(r *BinaryReader, v *json.RawMessage) error {
	b, err := r.ReadBytes()
	if err != nil {
		return err
	}
	if len(b) > 0 {
		*v = b
	}
	return nil
}

// rawValue restores the JSON text of a value handed out by jsonparser, which strips the quotes
// from strings.
func rawValue(data []byte, vt jsonparser.ValueType) json.RawMessage {
	if vt == jsonparser.String {
		raw := make(json.RawMessage, 0, len(data)+2)
		raw = append(raw, '"')
		raw = append(raw, data...)
		return append(raw, '"')
	}
	return append(json.RawMessage(nil), data...)
}

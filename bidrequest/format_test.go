package bidrequest

import (
	"math"
	"testing"

	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input       string
		expected    Format
		expectError bool
	}{
		{input: "300x250", expected: Format{Width: 300, Height: 250}},
		{input: "1x1", expected: Format{Width: 1, Height: 1}},
		{input: "300x250x1", expectError: true},
		{input: "300X250", expectError: true},
		{input: "300x", expectError: true},
		{input: "x250", expectError: true},
		{input: "300x250 ", expectError: true},
		{input: "", expectError: true},
	}

	for _, test := range testCases {
		t.Run(test.input, func(t *testing.T) {
			f, err := ParseFormat(test.input)
			if test.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, f)
			assert.Equal(t, test.input, f.String())
		})
	}
}

func TestFormatSetString(t *testing.T) {
	assert.Equal(t, "[]", FormatSet{}.String())
	assert.Equal(t, "300x250", FormatSet{{300, 250}}.String())
	assert.Equal(t, "[300x250, 728x90]", FormatSet{{300, 250}, {728, 90}}.String())
}

func TestFormatSetSort(t *testing.T) {
	fs := FormatSet{{728, 90}, {300, 600}, {300, 250}}
	fs.Sort()
	assert.Equal(t, FormatSet{{300, 250}, {300, 600}, {728, 90}}, fs)
	assert.True(t, fs.Contains(Format{300, 600}))
	assert.False(t, fs.Contains(Format{600, 300}))
}

func TestFormatCompare(t *testing.T) {
	testCases := []struct {
		name     string
		a        Format
		b        Format
		expected int
	}{
		{name: "equal", a: Format{300, 250}, b: Format{300, 250}, expected: 0},
		{name: "narrower", a: Format{300, 600}, b: Format{728, 90}, expected: -1},
		{name: "same-width-taller", a: Format{300, 600}, b: Format{300, 250}, expected: 1},
		{name: "extreme-width", a: Format{math.MinInt, 1}, b: Format{math.MaxInt, 1}, expected: -1},
		{name: "extreme-height", a: Format{1, math.MaxInt}, b: Format{1, math.MinInt}, expected: 1},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.a.Compare(test.b))
			assert.Equal(t, -test.expected, test.b.Compare(test.a))
		})
	}
}

func TestFormatSetJSON(t *testing.T) {
	codec := schema.NewCodec(FormatSetDescription())

	testCases := []struct {
		name     string
		payload  string
		expected FormatSet
		printed  string
	}{
		{name: "single-string", payload: `"300x250"`, expected: FormatSet{{300, 250}}, printed: `["300x250"]`},
		{name: "array", payload: `["300x250","728x90"]`, expected: FormatSet{{300, 250}, {728, 90}}, printed: `["300x250","728x90"]`},
		{name: "objects", payload: `[{"width":160,"height":"600"}]`, expected: FormatSet{{160, 600}}, printed: `["160x600"]`},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			fs, errs := codec.Parse([]byte(test.payload))
			require.Empty(t, errs)
			assert.Equal(t, test.expected, *fs)

			out, err := codec.Print(fs)
			require.NoError(t, err)
			assert.Equal(t, test.printed, string(out))
		})
	}
}

func TestFormatSetJSONErrors(t *testing.T) {
	codec := schema.NewCodec(FormatSetDescription())

	testCases := []struct {
		name    string
		payload string
	}{
		{name: "nested-array", payload: `[[300,250]]`},
		{name: "bad-string", payload: `["big"]`},
		{name: "number", payload: `300`},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			fs, errs := codec.Parse([]byte(test.payload))
			assert.Nil(t, fs)
			require.Len(t, errs, 1)
			assert.Equal(t, errortypes.TypeMismatchErrorCode, errortypes.ReadCode(errs[0]))
		})
	}
}

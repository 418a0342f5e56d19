package schema

import (
	"testing"
	"time"

	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestBoolCoercion(t *testing.T) {
	codec := NewCodec(Bool())

	testCases := []struct {
		payload  string
		expected bool
	}{
		{payload: `true`, expected: true},
		{payload: `false`, expected: false},
		{payload: `1`, expected: true},
		{payload: `0`, expected: false},
		{payload: `"1"`, expected: true},
		{payload: `"0"`, expected: false},
		{payload: `"true"`, expected: true},
		{payload: `2`, expected: true},
	}

	for _, test := range testCases {
		t.Run(test.payload, func(t *testing.T) {
			v, errs := codec.Parse([]byte(test.payload))
			require.Empty(t, errs)
			assert.Equal(t, test.expected, *v)
		})
	}

	_, errs := codec.Parse([]byte(`"yes"`))
	require.Len(t, errs, 1)
	assert.Equal(t, errortypes.InvalidNumberErrorCode, errortypes.ReadCode(errs[0]))
}

func TestIntRange(t *testing.T) {
	_, errs := NewCodec(Int[int8]()).Parse([]byte(`300`))
	require.Len(t, errs, 1)
	assert.Equal(t, &errortypes.InvalidNumber{Value: "300"}, errs[0])

	_, errs = NewCodec(Int[int]()).Parse([]byte(`1.5`))
	require.Len(t, errs, 1)
	assert.Equal(t, errortypes.InvalidNumberErrorCode, errortypes.ReadCode(errs[0]))
}

func TestTime(t *testing.T) {
	codec := NewCodec(Time())
	expected := time.Date(2024, 3, 1, 12, 30, 0, 500000000, time.UTC)

	for _, payload := range []string{`"2024-03-01T12:30:00.5Z"`, `1709296200.5`, `"1709296200.5"`, `"2024-03-01T13:30:00.5+01:00"`} {
		t.Run(payload, func(t *testing.T) {
			v, errs := codec.Parse([]byte(payload))
			require.Empty(t, errs)
			assert.True(t, expected.Equal(*v))
			assert.Equal(t, time.UTC, v.Location())
		})
	}

	out, err := codec.Print(&expected)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:30:00.5Z"`, string(out))

	var decoded time.Time
	require.NoError(t, codec.UnmarshalBinary(codec.MarshalBinary(&expected), &decoded))
	assert.Equal(t, expected, decoded)
}

func TestDecimal(t *testing.T) {
	codec := NewCodec(Decimal())

	v, errs := codec.Parse([]byte(`"1.50"`))
	require.Empty(t, errs)
	assert.True(t, decimal.RequireFromString("1.5").Equal(*v))

	out, err := codec.Print(v)
	require.NoError(t, err)
	assert.Equal(t, `1.5`, string(out))

	var decoded decimal.Decimal
	require.NoError(t, codec.UnmarshalBinary(codec.MarshalBinary(v), &decoded))
	assert.Equal(t, v.String(), decoded.String())
	assert.Equal(t, v.Exponent(), decoded.Exponent())
}

func TestCurrency(t *testing.T) {
	codec := NewCodec(Currency())

	v, errs := codec.Parse([]byte(`"EUR"`))
	require.Empty(t, errs)
	assert.Equal(t, currency.EUR, *v)

	_, errs = codec.Parse([]byte(`"EURO"`))
	require.Len(t, errs, 1)
	assert.Equal(t, errortypes.TypeMismatchErrorCode, errortypes.ReadCode(errs[0]))

	var decoded currency.Unit
	require.NoError(t, codec.UnmarshalBinary(codec.MarshalBinary(v), &decoded))
	assert.Equal(t, currency.EUR, decoded)
}

func TestID(t *testing.T) {
	codec := NewCodec(ID())

	v, errs := codec.Parse([]byte(`12345`))
	require.Empty(t, errs)
	assert.Equal(t, "12345", *v)

	_, errs = codec.Parse([]byte(`{}`))
	require.Len(t, errs, 1)
	assert.Equal(t, errortypes.TypeMismatchErrorCode, errortypes.ReadCode(errs[0]))
}

func TestStringUnescapes(t *testing.T) {
	v, errs := NewCodec(String()).Parse([]byte(`"a\"bé"`))
	require.Empty(t, errs)
	assert.Equal(t, "a\"bé", *v)
}

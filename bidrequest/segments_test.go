package bidrequest

import (
	"testing"

	"github.com/prebid/prebid-rtb-gateway/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentPresent(t *testing.T) {
	req := BidRequest{}
	req.Segments.AddStrings("provider1", []string{"sports", "123"})
	req.Segments.AddInts("provider2", []int{7})

	testCases := []struct {
		name     string
		provider string
		token    string
		expected SegmentResult
	}{
		{name: "missing-provider", provider: "missingProvider", token: "x", expected: SegMissing},
		{name: "present-string", provider: "provider1", token: "sports", expected: SegPresent},
		{name: "present-numeric-string", provider: "provider1", token: "123", expected: SegPresent},
		{name: "not-present", provider: "provider1", token: "news", expected: SegNotPresent},
		{name: "present-int", provider: "provider2", token: "7", expected: SegPresent},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, req.SegmentPresent(test.provider, test.token))
		})
	}

	assert.Equal(t, SegPresent, req.Segments.PresentInt("provider1", 123))
	assert.Equal(t, SegMissing, req.Segments.PresentInt("provider3", 123))
	assert.Equal(t, "NOT_PRESENT", SegNotPresent.String())
}

func TestSegmentsJSON(t *testing.T) {
	codec := schema.NewCodec(SegmentsDescription())

	segments, errs := codec.Parse([]byte(`{"p1":["b",3,"a","1",3],"p2":null}`))
	require.Empty(t, errs)
	require.Len(t, *segments, 1)
	assert.Equal(t, &SegmentList{Ints: []int{3, 1, 3}, Strings: []string{"b", "a"}}, (*segments)["p1"])

	segments.SortAll()
	out, err := codec.Print(segments)
	require.NoError(t, err)
	assert.Equal(t, `{"p1":[1,3,"a","b"]}`, string(out))

	var decoded Segments
	require.NoError(t, codec.UnmarshalBinary(codec.MarshalBinary(segments), &decoded))
	assert.Equal(t, *segments, decoded)
}

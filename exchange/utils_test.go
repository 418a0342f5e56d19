package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeAvailableMs(t *testing.T) {
	testCases := []struct {
		description string
		payload     string
		expected    int64
	}{
		{description: "declared", payload: `{"id":"a","tmax":120}`, expected: 120},
		{description: "absent", payload: `{"id":"a"}`, expected: 10},
		{description: "zero", payload: `{"tmax":0}`, expected: 10},
		{description: "negative", payload: `{"tmax":-5}`, expected: 10},
		{description: "fractional", payload: `{"tmax":12.5}`, expected: 10},
		{description: "string", payload: `{"tmax":"120"}`, expected: 10},
		{description: "nested only", payload: `{"ext":{"tmax":50}}`, expected: 10},
		{description: "not json", payload: `{"tmax":120`, expected: 10},
		{description: "empty", payload: ``, expected: 10},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			assert.Equal(t, test.expected, TimeAvailableMs([]byte(test.payload), 10))
		})
	}
}

package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeInfoReader struct {
	files map[string]string
	err   error
}

func (r fakeInfoReader) Read(source string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	data, ok := r.files[source]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(data), nil
}

func TestExchangeInfosLoad(t *testing.T) {
	reader := fakeInfoReader{files: map[string]string{
		"smaato":  "dialect: openrtb\nprovider: smaato-prov\ndefaultCurrency: EUR\nseat: s1\n",
		"off":     "disabled: true\n",
		"broken":  "dialect: [",
		"badcurr": "defaultCurrency: dollars\n",
	}}

	testCases := []struct {
		description string
		source      string
		expected    Exchange
		expectedOK  bool
		expectError bool
	}{
		{
			description: "present",
			source:      "smaato",
			expected:    Exchange{Dialect: "openrtb", Provider: "smaato-prov", DefaultCurrency: "EUR", Seat: "s1"},
			expectedOK:  true,
		},
		{description: "missing", source: "nobody"},
		{description: "disabled", source: "off", expected: Exchange{Disabled: true}},
		{description: "malformed-yaml", source: "broken", expectError: true},
		{description: "bad-currency", source: "badcurr", expectError: true},
		{description: "path-traversal", source: "../etc/passwd", expectError: true},
	}

	infos := &ExchangeInfos{reader: reader}
	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			exchange, ok, err := infos.Load(test.source)
			if test.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expectedOK, ok)
			assert.Equal(t, test.expected, exchange)
		})
	}
}

func TestExchangeInfosReadError(t *testing.T) {
	infos := &ExchangeInfos{reader: fakeInfoReader{err: errors.New("disk on fire")}}

	_, ok, err := infos.Load("smaato")
	assert.False(t, ok)
	assert.EqualError(t, err, "disk on fire")
}

func TestExchangeInfosFromDisk(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(dir+"/local.yaml", []byte("provider: local\n"), 0o644))

	exchange, ok, err := NewExchangeInfos(dir).Load("local")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "local", exchange.Provider)
	assert.Equal(t, DefaultDialect, exchange.DialectOrDefault())
}

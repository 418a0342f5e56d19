package bidrequest

import (
	"testing"

	"github.com/prebid/prebid-rtb-gateway/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestFullLocationString(t *testing.T) {
	loc := Location{CountryCode: "CA", RegionCode: "QC", CityName: "Montreal", PostalCode: "H2X", DMA: 0}
	assert.Equal(t, "CA:QC:Montreal:H2X:0", loc.FullLocationString())
	assert.Equal(t, "::::0", (&Location{}).FullLocationString())
}

func TestLocationJSON(t *testing.T) {
	codec := schema.NewCodec[Location](locationDescription())

	loc, errs := codec.Parse([]byte(`null`))
	require.Empty(t, errs)
	assert.Equal(t, Location{}, *loc)

	loc, errs = codec.Parse([]byte(`{"countryCode":"US","postalCode":10001,"dma":"501"}`))
	require.Empty(t, errs)
	assert.Equal(t, Location{CountryCode: "US", PostalCode: "10001", DMA: 501}, *loc)

	out, err := codec.Print(loc)
	require.NoError(t, err)
	assert.Equal(t, `{"countryCode":"US","postalCode":"10001","dma":501}`, string(out))
}

func TestAmount(t *testing.T) {
	price := MicroUSD(1500)
	assert.Equal(t, "0.0015 USD", price.String())
	assert.Equal(t, "1.5 USD", price.CPM().String())
	assert.False(t, price.IsZero())
	assert.True(t, Amount{}.IsZero())
	assert.Equal(t, currency.USD, price.CPM().Currency)
}

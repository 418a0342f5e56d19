package bidrequest

import (
	"strconv"
	"sync"

	"github.com/prebid/prebid-rtb-gateway/schema"
)

// Location is where the user is, as far as the exchange knows.
type Location struct {
	CountryCode           string
	RegionCode            string
	CityName              string
	PostalCode            string
	DMA                   int
	TimezoneOffsetMinutes int
}

// FullLocationString joins the location as "country:region:city:postal:dma".
func (l *Location) FullLocationString() string {
	return l.CountryCode + ":" + l.RegionCode + ":" + l.CityName + ":" + l.PostalCode + ":" + strconv.Itoa(l.DMA)
}

var locationDescription = sync.OnceValue(func() *schema.StructDescription[Location] {
	d := schema.NewStruct[Location]("Location", 0).AcceptNull()
	schema.AddField(d, "countryCode", func(l *Location) *string { return &l.CountryCode }, schema.String())
	schema.AddField(d, "regionCode", func(l *Location) *string { return &l.RegionCode }, schema.String())
	schema.AddField(d, "cityName", func(l *Location) *string { return &l.CityName }, schema.String())
	schema.AddField(d, "postalCode", func(l *Location) *string { return &l.PostalCode }, schema.ID())
	schema.AddField(d, "dma", func(l *Location) *int { return &l.DMA }, schema.Int[int]())
	schema.AddField(d, "timezoneOffsetMinutes", func(l *Location) *int { return &l.TimezoneOffsetMinutes }, schema.Int[int]())
	return d
})

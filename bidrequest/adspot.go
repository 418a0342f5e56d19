package bidrequest

import (
	"sync"

	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/prebid-rtb-gateway/openrtb"
	"github.com/prebid/prebid-rtb-gateway/schema"
)

const adSpotVersion = 2

// AdSpot is an impression together with the sizes it accepts and where it was historically
// placed on the page.
type AdSpot struct {
	openrtb.Impression

	Formats FormatSet
	// Position is nil when the exchange did not say. adcom1.PlacementPosition(0) means the
	// exchange said the position is unknown.
	Position     *adcom1.PlacementPosition
	ReservePrice Amount
}

// Format prints the accepted sizes, e.g. "[300x250, 728x90]".
func (s *AdSpot) Format() string {
	return s.Formats.String()
}

// FirstFormat returns the first accepted size, if any.
func (s *AdSpot) FirstFormat() (Format, bool) {
	if len(s.Formats) == 0 {
		return Format{}, false
	}
	return s.Formats[0], true
}

// historicalPosition accepts the names used by older canonical payloads as well as the OpenRTB
// integer, and always prints the integer.
func historicalPosition() schema.Description[adcom1.PlacementPosition] {
	return schema.NamedInt(
		schema.EnumValue[adcom1.PlacementPosition]{Value: adcom1.PlacementPosition(0), Names: []string{"NONE", "None", "none"}},
		schema.EnumValue[adcom1.PlacementPosition]{Value: adcom1.PositionAboveFold, Names: []string{"ABOVE_FOLD", "above"}},
		schema.EnumValue[adcom1.PlacementPosition]{Value: adcom1.PositionBelowFold, Names: []string{"BELOW_FOLD", "below"}},
	)
}

var adSpotFields = sync.OnceValue(func() *schema.StructDescription[AdSpot] {
	d := schema.NewStruct[AdSpot]("AdSpot", adSpotVersion)
	schema.AddParent(d, func(s *AdSpot) *openrtb.Impression { return &s.Impression }, openrtb.ImpressionDescription())
	schema.AddField(d, "formats", func(s *AdSpot) *FormatSet { return &s.Formats }, FormatSetDescription())
	schema.AddField(d, "position", func(s *AdSpot) **adcom1.PlacementPosition { return &s.Position }, schema.Optional(historicalPosition()))
	schema.AddField(d, "reservePrice", func(s *AdSpot) *Amount { return &s.ReservePrice }, schema.BestEffort[Amount](amountDescription()))
	return d
})

// adSpotDescription stores ad spots as their JSON text in the binary form.
var adSpotDescription = sync.OnceValue(func() schema.Description[AdSpot] {
	return schema.BinaryAsJSON[AdSpot]("AdSpot", adSpotVersion, adSpotFields())
})

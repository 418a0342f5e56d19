// Package bidrequest holds the canonical bid request every exchange dialect is normalized into,
// its JSON and binary codecs, and the registry resolving a source name to a parser.
package bidrequest

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/openrtb"
	"github.com/prebid/prebid-rtb-gateway/schema"
	"golang.org/x/text/currency"
)

// AuctionType is the pricing rule of the auction.
type AuctionType int

const (
	AuctionTypeUnknown AuctionType = iota
	AuctionTypeFirstPrice
	AuctionTypeSecondPrice
)

const (
	// bidRequestVersion heads the binary form.
	bidRequestVersion = 2
	// canonicalMarker is printed as the first member of canonical JSON.
	canonicalMarker = "0.1"
)

// BidRequest is the exchange independent view of one auction.
type BidRequest struct {
	AuctionID       string
	AuctionType     AuctionType
	TimeAvailableMs int64
	Timestamp       time.Time
	IsTest          bool
	ProtocolVersion string
	Exchange        string
	Provider        string

	URL       string
	IPAddress string
	UserAgent string
	Language  string

	Imp    []AdSpot
	Site   *openrtb.Site
	App    *openrtb.App
	Device *openrtb.Device
	User   *openrtb.User

	Location     Location
	UserIds      UserIds
	Segments     Segments
	Restrictions Segments

	BidCurrency   []currency.Unit
	WinSurcharges map[string]Amount
	Meta          json.RawMessage
	Ext           json.RawMessage
	Unparseable   schema.Unparseable
}

// SegmentPresent answers whether provider sent the segment token for this user.
func (r *BidRequest) SegmentPresent(provider, token string) SegmentResult {
	return r.Segments.Present(provider, token)
}

// SortAll puts segments and restrictions in canonical order.
func (r *BidRequest) SortAll() {
	r.Segments.SortAll()
	r.Restrictions.SortAll()
}

// UserID returns the id of a distinguished domain.
func (r *BidRequest) UserID(domain IDDomain) string {
	switch domain {
	case IDProvider:
		return r.UserIds.ProviderID
	case IDExchange:
		return r.UserIds.ExchangeID
	}
	id, _ := r.UserIds.Get(string(domain))
	return id
}

var bidRequestDescription = sync.OnceValue(func() *schema.StructDescription[BidRequest] {
	d := schema.NewStruct[BidRequest]("BidRequest", bidRequestVersion).Marker(canonicalMarker)

	// binary record numbers follow declaration order
	schema.AddField(d, "id", func(r *BidRequest) *string { return &r.AuctionID }, schema.ID())
	schema.AddField(d, "language", func(r *BidRequest) *string { return &r.Language }, schema.String())
	schema.AddField(d, "protocolVersion", func(r *BidRequest) *string { return &r.ProtocolVersion }, schema.String())
	schema.AddField(d, "exchange", func(r *BidRequest) *string { return &r.Exchange }, schema.String())
	schema.AddField(d, "provider", func(r *BidRequest) *string { return &r.Provider }, schema.String())
	schema.AddField(d, "timestamp", func(r *BidRequest) *time.Time { return &r.Timestamp }, schema.Time())
	schema.AddField(d, "isTest", func(r *BidRequest) *bool { return &r.IsTest }, schema.Bool())
	schema.AddField(d, "location", func(r *BidRequest) *Location { return &r.Location }, locationDescription())
	schema.AddField(d, "userIds", func(r *BidRequest) *UserIds { return &r.UserIds }, schema.Description[UserIds](userIdsDescription{}))
	schema.AddField(d, "imp", func(r *BidRequest) *[]AdSpot { return &r.Imp }, schema.List(adSpotDescription()), schema.Alias("spots"))
	schema.AddField(d, "url", func(r *BidRequest) *string { return &r.URL }, schema.String())
	schema.AddField(d, "ipAddress", func(r *BidRequest) *string { return &r.IPAddress }, schema.String())
	schema.AddField(d, "userAgent", func(r *BidRequest) *string { return &r.UserAgent }, schema.String())
	schema.AddField(d, "restrictions", func(r *BidRequest) *Segments { return &r.Restrictions }, SegmentsDescription())
	schema.AddField(d, "segments", func(r *BidRequest) *Segments { return &r.Segments }, SegmentsDescription())
	schema.AddField(d, "meta", func(r *BidRequest) *json.RawMessage { return &r.Meta }, schema.RawJSON())
	schema.AddField(d, "winSurcharges", func(r *BidRequest) *map[string]Amount { return &r.WinSurcharges },
		schema.Map[Amount](amountDescription()), schema.Alias("winSurchargeMicros", "winSurchageMicros"))

	schema.AddField(d, "auctionType", func(r *BidRequest) *AuctionType { return &r.AuctionType }, schema.StringEnum(
		schema.EnumValue[AuctionType]{Value: AuctionTypeFirstPrice, Names: []string{"FIRST_PRICE", "first"}},
		schema.EnumValue[AuctionType]{Value: AuctionTypeSecondPrice, Names: []string{"SECOND_PRICE", "second"}},
	))
	schema.AddField(d, "timeAvailableMs", func(r *BidRequest) *int64 { return &r.TimeAvailableMs }, schema.Int[int64]())
	schema.AddField(d, "site", func(r *BidRequest) **openrtb.Site { return &r.Site }, schema.Optional[openrtb.Site](openrtb.SiteDescription()))
	schema.AddField(d, "app", func(r *BidRequest) **openrtb.App { return &r.App }, schema.Optional[openrtb.App](openrtb.AppDescription()))
	schema.AddField(d, "device", func(r *BidRequest) **openrtb.Device { return &r.Device }, schema.Optional[openrtb.Device](openrtb.DeviceDescription()))
	schema.AddField(d, "user", func(r *BidRequest) **openrtb.User { return &r.User }, schema.Optional[openrtb.User](openrtb.UserDescription()))
	schema.AddField(d, "bidCurrency", func(r *BidRequest) *[]currency.Unit { return &r.BidCurrency }, schema.List(schema.Currency()))
	schema.AddField(d, "ext", func(r *BidRequest) *json.RawMessage { return &r.Ext }, schema.RawJSON())
	schema.AddField(d, "unparseable", func(r *BidRequest) *schema.Unparseable { return &r.Unparseable }, schema.UnparseableBag())
	d.CaptureUnknown(func(r *BidRequest) *schema.Unparseable { return &r.Unparseable })
	return d
})

var canonicalCodec = sync.OnceValue(func() *schema.Codec[BidRequest] {
	return schema.NewCodec[BidRequest](bidRequestDescription())
})

// Parse reads canonical JSON. The request is nil if any returned error is fatal; otherwise the
// errors are warnings about data which was skipped or captured as unparseable.
func Parse(data []byte) (*BidRequest, []error) {
	req, errs := canonicalCodec().Parse(data)
	if req == nil {
		return nil, errs
	}
	if err := req.checkContext(); err != nil {
		return nil, append(errs, err)
	}
	return req, errs
}

// checkContext enforces that a request comes from a site or an app, never both.
func (r *BidRequest) checkContext() error {
	if r.Site != nil && r.App != nil {
		return &errortypes.ConflictingContext{Message: "bid request can't have both site and app"}
	}
	return nil
}

// MarshalJSON prints canonical JSON, led by the canonical marker. Members at their default are
// omitted.
func (r *BidRequest) MarshalJSON() ([]byte, error) {
	return canonicalCodec().Print(r)
}

// UnmarshalJSON reads canonical JSON, dropping warnings. Use Parse to see them.
func (r *BidRequest) UnmarshalJSON(data []byte) error {
	if err := canonicalCodec().ParseWithContext(schema.NewParseContext(), data, r); err != nil {
		return err
	}
	return r.checkContext()
}

// MarshalBinary writes the versioned binary form.
func (r *BidRequest) MarshalBinary() ([]byte, error) {
	return canonicalCodec().MarshalBinary(r), nil
}

// UnmarshalBinary reads the binary form. Payloads of another version are rejected.
func (r *BidRequest) UnmarshalBinary(data []byte) error {
	if err := canonicalCodec().UnmarshalBinary(data, r); err != nil {
		return err
	}
	return r.checkContext()
}

package openrtb

import (
	"encoding/json"
	"sync"

	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/openrtb/v20/openrtb3"
	"github.com/prebid/prebid-rtb-gateway/schema"
)

var bidDescription = sync.OnceValue(func() *schema.StructDescription[openrtb2.Bid] {
	d := schema.NewStruct[openrtb2.Bid]("Bid", 0)
	schema.AddField(d, "id", func(b *openrtb2.Bid) *string { return &b.ID }, schema.Always(schema.ID()))
	schema.AddField(d, "impid", func(b *openrtb2.Bid) *string { return &b.ImpID }, schema.Always(schema.ID()))
	schema.AddField(d, "price", func(b *openrtb2.Bid) *float64 { return &b.Price }, schema.Always(schema.Float()))
	schema.AddField(d, "adid", func(b *openrtb2.Bid) *string { return &b.AdID }, str())
	schema.AddField(d, "nurl", func(b *openrtb2.Bid) *string { return &b.NURL }, str())
	schema.AddField(d, "adm", func(b *openrtb2.Bid) *string { return &b.AdM }, str())
	schema.AddField(d, "adomain", func(b *openrtb2.Bid) *[]string { return &b.ADomain }, list(schema.String()))
	schema.AddField(d, "iurl", func(b *openrtb2.Bid) *string { return &b.IURL }, str())
	schema.AddField(d, "cid", func(b *openrtb2.Bid) *string { return &b.CID }, str())
	schema.AddField(d, "crid", func(b *openrtb2.Bid) *string { return &b.CrID }, str())
	schema.AddField(d, "attr", func(b *openrtb2.Bid) *[]adcom1.CreativeAttribute { return &b.Attr }, list(schema.Int[adcom1.CreativeAttribute]()))
	schema.AddField(d, "dealid", func(b *openrtb2.Bid) *string { return &b.DealID }, str())
	schema.AddField(d, "w", func(b *openrtb2.Bid) *int64 { return &b.W }, num[int64]())
	schema.AddField(d, "h", func(b *openrtb2.Bid) *int64 { return &b.H }, num[int64]())
	schema.AddField(d, "ext", func(b *openrtb2.Bid) *json.RawMessage { return &b.Ext }, ext())
	return d
})

var seatBidDescription = sync.OnceValue(func() *schema.StructDescription[openrtb2.SeatBid] {
	d := schema.NewStruct[openrtb2.SeatBid]("SeatBid", 0)
	schema.AddField(d, "bid", func(s *openrtb2.SeatBid) *[]openrtb2.Bid { return &s.Bid }, schema.List[openrtb2.Bid](bidDescription()))
	schema.AddField(d, "seat", func(s *openrtb2.SeatBid) *string { return &s.Seat }, str())
	schema.AddField(d, "group", func(s *openrtb2.SeatBid) *int8 { return &s.Group }, num[int8]())
	schema.AddField(d, "ext", func(s *openrtb2.SeatBid) *json.RawMessage { return &s.Ext }, ext())
	return d
})

var bidResponseDescription = sync.OnceValue(func() *schema.StructDescription[openrtb2.BidResponse] {
	d := schema.NewStruct[openrtb2.BidResponse]("BidResponse", 0)
	schema.AddField(d, "id", func(r *openrtb2.BidResponse) *string { return &r.ID }, schema.ID())
	schema.AddField(d, "seatbid", func(r *openrtb2.BidResponse) *[]openrtb2.SeatBid { return &r.SeatBid }, schema.List[openrtb2.SeatBid](seatBidDescription()))
	schema.AddField(d, "bidid", func(r *openrtb2.BidResponse) *string { return &r.BidID }, str())
	schema.AddField(d, "cur", func(r *openrtb2.BidResponse) *string { return &r.Cur }, str())
	schema.AddField(d, "customdata", func(r *openrtb2.BidResponse) *string { return &r.CustomData }, str())
	schema.AddField(d, "nbr", func(r *openrtb2.BidResponse) **openrtb3.NoBidReason { return &r.NBR }, schema.Optional(schema.Int[openrtb3.NoBidReason]()))
	schema.AddField(d, "ext", func(r *openrtb2.BidResponse) *json.RawMessage { return &r.Ext }, ext())
	return d
})

var bidResponseCodec = sync.OnceValue(func() *schema.Codec[openrtb2.BidResponse] {
	return schema.NewCodec[openrtb2.BidResponse](bidResponseDescription())
})

// PrintBidResponse serializes a response with OpenRTB 2.1 member names. Empty members are
// omitted, except the required bid id, impid and price.
func PrintBidResponse(resp *openrtb2.BidResponse) ([]byte, error) {
	return bidResponseCodec().Print(resp)
}

// ParseBidResponse is the inverse of PrintBidResponse.
func ParseBidResponse(data []byte) (*openrtb2.BidResponse, []error) {
	return bidResponseCodec().Parse(data)
}

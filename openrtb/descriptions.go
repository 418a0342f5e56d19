package openrtb

import (
	"encoding/json"
	"sync"

	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/prebid-rtb-gateway/schema"
	"golang.org/x/text/currency"
)

func str() schema.Description[string] {
	return schema.Default(schema.String(), "")
}

func flag() schema.Description[bool] {
	return schema.Default(schema.Bool(), false)
}

func num[T schema.Integer]() schema.Description[T] {
	return schema.Default(schema.Int[T](), 0)
}

func list[T any](elem schema.Description[T]) schema.Description[[]T] {
	return schema.BestEffort(schema.List(elem))
}

func ext() schema.Description[json.RawMessage] {
	return schema.BestEffort(schema.RawJSON())
}

var bannerDescription = sync.OnceValue(func() *schema.StructDescription[Banner] {
	d := schema.NewStruct[Banner]("Banner", 0)
	schema.AddField(d, "w", func(b *Banner) *[]int64 { return &b.W }, schema.BestEffort(schema.ListOrScalar(schema.Int[int64]())))
	schema.AddField(d, "h", func(b *Banner) *[]int64 { return &b.H }, schema.BestEffort(schema.ListOrScalar(schema.Int[int64]())))
	schema.AddField(d, "id", func(b *Banner) *string { return &b.ID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "pos", func(b *Banner) **adcom1.PlacementPosition { return &b.Pos }, schema.Optional(schema.Int[adcom1.PlacementPosition]()))
	schema.AddField(d, "btype", func(b *Banner) *[]openrtb2.BannerAdType { return &b.BType }, list(schema.Int[openrtb2.BannerAdType]()))
	schema.AddField(d, "battr", func(b *Banner) *[]adcom1.CreativeAttribute { return &b.BAttr }, list(schema.Int[adcom1.CreativeAttribute]()))
	schema.AddField(d, "mimes", func(b *Banner) *[]string { return &b.Mimes }, list(schema.String()))
	schema.AddField(d, "topframe", func(b *Banner) *bool { return &b.TopFrame }, flag())
	schema.AddField(d, "expdir", func(b *Banner) *[]adcom1.ExpandableDirection { return &b.ExpDir }, list(schema.Int[adcom1.ExpandableDirection]()))
	schema.AddField(d, "api", func(b *Banner) *[]adcom1.APIFramework { return &b.API }, list(schema.Int[adcom1.APIFramework]()))
	schema.AddField(d, "ext", func(b *Banner) *json.RawMessage { return &b.Ext }, ext())
	return d
})

var videoDescription = sync.OnceValue(func() *schema.StructDescription[Video] {
	d := schema.NewStruct[Video]("Video", 0)
	schema.AddField(d, "mimes", func(v *Video) *[]string { return &v.Mimes }, list(schema.String()))
	schema.AddField(d, "linearity", func(v *Video) *adcom1.LinearityMode { return &v.Linearity }, num[adcom1.LinearityMode]())
	schema.AddField(d, "minduration", func(v *Video) *int64 { return &v.MinDuration }, num[int64]())
	schema.AddField(d, "maxduration", func(v *Video) *int64 { return &v.MaxDuration }, num[int64]())
	schema.AddField(d, "protocol", func(v *Video) *adcom1.MediaCreativeSubtype { return &v.Protocol }, num[adcom1.MediaCreativeSubtype]())
	schema.AddField(d, "w", func(v *Video) *int64 { return &v.W }, num[int64]())
	schema.AddField(d, "h", func(v *Video) *int64 { return &v.H }, num[int64]())
	schema.AddField(d, "startdelay", func(v *Video) **adcom1.StartDelay { return &v.StartDelay }, schema.Optional(schema.Int[adcom1.StartDelay]()))
	schema.AddField(d, "sequence", func(v *Video) *int64 { return &v.Sequence }, schema.Default(schema.Int[int64](), 1))
	schema.AddField(d, "battr", func(v *Video) *[]adcom1.CreativeAttribute { return &v.BAttr }, list(schema.Int[adcom1.CreativeAttribute]()))
	schema.AddField(d, "maxextended", func(v *Video) *int64 { return &v.MaxExtended }, num[int64]())
	schema.AddField(d, "minbitrate", func(v *Video) *int64 { return &v.MinBitrate }, num[int64]())
	schema.AddField(d, "maxbitrate", func(v *Video) *int64 { return &v.MaxBitrate }, num[int64]())
	schema.AddField(d, "boxingallowed", func(v *Video) *bool { return &v.BoxingAllowed }, schema.Default(schema.Bool(), true))
	schema.AddField(d, "playbackmethod", func(v *Video) *[]adcom1.PlaybackMethod { return &v.PlaybackMethod }, list(schema.Int[adcom1.PlaybackMethod]()))
	schema.AddField(d, "delivery", func(v *Video) *[]adcom1.DeliveryMethod { return &v.Delivery }, list(schema.Int[adcom1.DeliveryMethod]()))
	schema.AddField(d, "pos", func(v *Video) **adcom1.PlacementPosition { return &v.Pos }, schema.Optional(schema.Int[adcom1.PlacementPosition]()))
	schema.AddField(d, "companionad", func(v *Video) *[]Banner { return &v.CompanionAd }, list[Banner](bannerDescription()))
	schema.AddField(d, "api", func(v *Video) *[]adcom1.APIFramework { return &v.API }, list(schema.Int[adcom1.APIFramework]()))
	schema.AddField(d, "companiontype", func(v *Video) *[]adcom1.CompanionType { return &v.CompanionType }, list(schema.Int[adcom1.CompanionType]()))
	schema.AddField(d, "ext", func(v *Video) *json.RawMessage { return &v.Ext }, ext())
	return d
})

var impressionDescription = sync.OnceValue(func() *schema.StructDescription[Impression] {
	d := schema.NewStruct[Impression]("Impression", 0)
	schema.AddField(d, "id", func(i *Impression) *string { return &i.ID }, schema.ID())
	schema.AddField(d, "banner", func(i *Impression) **Banner { return &i.Banner }, schema.Optional[Banner](bannerDescription()))
	schema.AddField(d, "video", func(i *Impression) **Video { return &i.Video }, schema.Optional[Video](videoDescription()))
	schema.AddField(d, "displaymanager", func(i *Impression) *string { return &i.DisplayManager }, str())
	schema.AddField(d, "displaymanagerver", func(i *Impression) *string { return &i.DisplayManagerVer }, str())
	schema.AddField(d, "instl", func(i *Impression) *bool { return &i.Instl }, flag())
	schema.AddField(d, "tagid", func(i *Impression) *string { return &i.TagID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "bidfloor", func(i *Impression) *float64 { return &i.BidFloor }, schema.Default(schema.Float(), 0))
	schema.AddField(d, "bidfloorcur", func(i *Impression) *currency.Unit { return &i.BidFloorCur }, schema.Default(schema.Currency(), currency.USD))
	schema.AddField(d, "iframebuster", func(i *Impression) *[]string { return &i.IFrameBuster }, list(schema.String()))
	schema.AddField(d, "ext", func(i *Impression) *json.RawMessage { return &i.Ext }, ext())
	return d
})

var publisherDescription = sync.OnceValue(func() *schema.StructDescription[Publisher] {
	d := schema.NewStruct[Publisher]("Publisher", 0)
	schema.AddField(d, "id", func(p *Publisher) *string { return &p.ID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "name", func(p *Publisher) *string { return &p.Name }, str())
	schema.AddField(d, "cat", func(p *Publisher) *[]string { return &p.Cat }, list(schema.String()))
	schema.AddField(d, "domain", func(p *Publisher) *string { return &p.Domain }, str())
	schema.AddField(d, "ext", func(p *Publisher) *json.RawMessage { return &p.Ext }, ext())
	return d
})

var contentDescription = sync.OnceValue(func() *schema.StructDescription[Content] {
	d := schema.NewStruct[Content]("Content", 0)
	schema.AddField(d, "id", func(c *Content) *string { return &c.ID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "episode", func(c *Content) *int64 { return &c.Episode }, num[int64]())
	schema.AddField(d, "title", func(c *Content) *string { return &c.Title }, str())
	schema.AddField(d, "series", func(c *Content) *string { return &c.Series }, str())
	schema.AddField(d, "season", func(c *Content) *string { return &c.Season }, str())
	schema.AddField(d, "url", func(c *Content) *string { return &c.URL }, str())
	schema.AddField(d, "cat", func(c *Content) *[]string { return &c.Cat }, list(schema.String()))
	schema.AddField(d, "keywords", func(c *Content) *string { return &c.Keywords }, str())
	schema.AddField(d, "contentrating", func(c *Content) *string { return &c.ContentRating }, str())
	schema.AddField(d, "userrating", func(c *Content) *string { return &c.UserRating }, str())
	schema.AddField(d, "livestream", func(c *Content) *bool { return &c.LiveStream }, flag())
	schema.AddField(d, "sourcerelationship", func(c *Content) *bool { return &c.SourceRelationship }, flag())
	schema.AddField(d, "len", func(c *Content) *int64 { return &c.Len }, num[int64]())
	schema.AddField(d, "language", func(c *Content) *string { return &c.Language }, str())
	schema.AddField(d, "embeddable", func(c *Content) *bool { return &c.Embeddable }, flag())
	schema.AddField(d, "ext", func(c *Content) *json.RawMessage { return &c.Ext }, ext())
	return d
})

var contextDescription = sync.OnceValue(func() *schema.StructDescription[Context] {
	d := schema.NewStruct[Context]("Context", 0)
	schema.AddField(d, "id", func(c *Context) *string { return &c.ID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "name", func(c *Context) *string { return &c.Name }, str())
	schema.AddField(d, "domain", func(c *Context) *string { return &c.Domain }, str())
	schema.AddField(d, "cat", func(c *Context) *[]string { return &c.Cat }, list(schema.String()))
	schema.AddField(d, "sectioncat", func(c *Context) *[]string { return &c.SectionCat }, list(schema.String()))
	schema.AddField(d, "pagecat", func(c *Context) *[]string { return &c.PageCat }, list(schema.String()))
	schema.AddField(d, "privacypolicy", func(c *Context) *bool { return &c.PrivacyPolicy }, flag())
	schema.AddField(d, "publisher", func(c *Context) **Publisher { return &c.Publisher }, schema.Optional[Publisher](publisherDescription()))
	schema.AddField(d, "content", func(c *Context) **Content { return &c.Content }, schema.Optional[Content](contentDescription()))
	schema.AddField(d, "keywords", func(c *Context) *string { return &c.Keywords }, str())
	schema.AddField(d, "ext", func(c *Context) *json.RawMessage { return &c.Ext }, ext())
	return d
})

var siteDescription = sync.OnceValue(func() *schema.StructDescription[Site] {
	d := schema.NewStruct[Site]("Site", 0).AcceptNull()
	schema.AddParent(d, func(s *Site) *Context { return &s.Context }, contextDescription())
	schema.AddField(d, "page", func(s *Site) *string { return &s.Page }, str())
	schema.AddField(d, "ref", func(s *Site) *string { return &s.Ref }, str())
	schema.AddField(d, "search", func(s *Site) *string { return &s.Search }, str())
	return d
})

var appDescription = sync.OnceValue(func() *schema.StructDescription[App] {
	d := schema.NewStruct[App]("App", 0).AcceptNull()
	schema.AddParent(d, func(a *App) *Context { return &a.Context }, contextDescription())
	schema.AddField(d, "ver", func(a *App) *string { return &a.Ver }, str())
	schema.AddField(d, "bundle", func(a *App) *string { return &a.Bundle }, str())
	schema.AddField(d, "paid", func(a *App) *bool { return &a.Paid }, flag())
	schema.AddField(d, "storeurl", func(a *App) *string { return &a.StoreURL }, str())
	return d
})

var geoDescription = sync.OnceValue(func() *schema.StructDescription[Geo] {
	d := schema.NewStruct[Geo]("Geo", 0)
	schema.AddField(d, "lat", func(g *Geo) **float64 { return &g.Lat }, schema.Optional(schema.Float()))
	schema.AddField(d, "lon", func(g *Geo) **float64 { return &g.Lon }, schema.Optional(schema.Float()))
	schema.AddField(d, "country", func(g *Geo) *string { return &g.Country }, str())
	schema.AddField(d, "region", func(g *Geo) *string { return &g.Region }, str())
	schema.AddField(d, "regionfips104", func(g *Geo) *string { return &g.RegionFIPS104 }, str())
	schema.AddField(d, "metro", func(g *Geo) *string { return &g.Metro }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "city", func(g *Geo) *string { return &g.City }, str())
	schema.AddField(d, "zip", func(g *Geo) *string { return &g.Zip }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "type", func(g *Geo) *adcom1.LocationType { return &g.Type }, num[adcom1.LocationType]())
	schema.AddField(d, "ext", func(g *Geo) *json.RawMessage { return &g.Ext }, ext())
	return d
})

var deviceDescription = sync.OnceValue(func() *schema.StructDescription[Device] {
	d := schema.NewStruct[Device]("Device", 0)
	schema.AddField(d, "dnt", func(dv *Device) *bool { return &dv.DNT }, flag())
	schema.AddField(d, "ua", func(dv *Device) *string { return &dv.UA }, str())
	schema.AddField(d, "ip", func(dv *Device) *string { return &dv.IP }, str())
	schema.AddField(d, "geo", func(dv *Device) **Geo { return &dv.Geo }, schema.Optional[Geo](geoDescription()))
	schema.AddField(d, "didsha1", func(dv *Device) *string { return &dv.DIDSHA1 }, str())
	schema.AddField(d, "didmd5", func(dv *Device) *string { return &dv.DIDMD5 }, str())
	schema.AddField(d, "dpidsha1", func(dv *Device) *string { return &dv.DPIDSHA1 }, str())
	schema.AddField(d, "dpidmd5", func(dv *Device) *string { return &dv.DPIDMD5 }, str())
	schema.AddField(d, "ipv6", func(dv *Device) *string { return &dv.IPv6 }, str())
	schema.AddField(d, "carrier", func(dv *Device) *string { return &dv.Carrier }, str())
	schema.AddField(d, "language", func(dv *Device) *string { return &dv.Language }, str())
	schema.AddField(d, "make", func(dv *Device) *string { return &dv.Make }, str())
	schema.AddField(d, "model", func(dv *Device) *string { return &dv.Model }, str())
	schema.AddField(d, "os", func(dv *Device) *string { return &dv.OS }, str())
	schema.AddField(d, "osv", func(dv *Device) *string { return &dv.OSV }, str())
	schema.AddField(d, "js", func(dv *Device) *bool { return &dv.JS }, flag())
	schema.AddField(d, "connectiontype", func(dv *Device) **adcom1.ConnectionType { return &dv.ConnectionType }, schema.Optional(schema.Int[adcom1.ConnectionType]()))
	schema.AddField(d, "devicetype", func(dv *Device) *adcom1.DeviceType { return &dv.DeviceType }, num[adcom1.DeviceType]())
	schema.AddField(d, "flashver", func(dv *Device) *string { return &dv.FlashVer }, str())
	schema.AddField(d, "ext", func(dv *Device) *json.RawMessage { return &dv.Ext }, ext())
	return d
})

var segmentDescription = sync.OnceValue(func() *schema.StructDescription[Segment] {
	d := schema.NewStruct[Segment]("Segment", 0)
	schema.AddField(d, "id", func(s *Segment) *string { return &s.ID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "name", func(s *Segment) *string { return &s.Name }, str())
	schema.AddField(d, "value", func(s *Segment) *string { return &s.Value }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "ext", func(s *Segment) *json.RawMessage { return &s.Ext }, ext())
	return d
})

var dataDescription = sync.OnceValue(func() *schema.StructDescription[Data] {
	d := schema.NewStruct[Data]("Data", 0)
	schema.AddField(d, "id", func(dt *Data) *string { return &dt.ID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "name", func(dt *Data) *string { return &dt.Name }, str())
	schema.AddField(d, "segment", func(dt *Data) *[]Segment { return &dt.Segment }, list[Segment](segmentDescription()))
	schema.AddField(d, "ext", func(dt *Data) *json.RawMessage { return &dt.Ext }, ext())
	return d
})

var userDescription = sync.OnceValue(func() *schema.StructDescription[User] {
	d := schema.NewStruct[User]("User", 0)
	schema.AddField(d, "id", func(u *User) *string { return &u.ID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "buyeruid", func(u *User) *string { return &u.BuyerUID }, schema.Default(schema.ID(), ""))
	schema.AddField(d, "yob", func(u *User) *int64 { return &u.Yob }, num[int64]())
	schema.AddField(d, "gender", func(u *User) *string { return &u.Gender }, str())
	schema.AddField(d, "keywords", func(u *User) *string { return &u.Keywords }, str())
	schema.AddField(d, "customdata", func(u *User) *string { return &u.CustomData }, str())
	schema.AddField(d, "geo", func(u *User) **Geo { return &u.Geo }, schema.Optional[Geo](geoDescription()))
	schema.AddField(d, "data", func(u *User) *[]Data { return &u.Data }, list[Data](dataDescription()))
	schema.AddField(d, "ext", func(u *User) *json.RawMessage { return &u.Ext }, ext())
	return d
})

var bidRequestDescription = sync.OnceValue(func() *schema.StructDescription[BidRequest] {
	d := schema.NewStruct[BidRequest]("BidRequest", 0)
	schema.AddField(d, "id", func(r *BidRequest) *string { return &r.ID }, schema.ID())
	schema.AddField(d, "imp", func(r *BidRequest) *[]Impression { return &r.Imp }, schema.List[Impression](impressionDescription()))
	schema.AddField(d, "site", func(r *BidRequest) **Site { return &r.Site }, schema.Optional[Site](siteDescription()))
	schema.AddField(d, "app", func(r *BidRequest) **App { return &r.App }, schema.Optional[App](appDescription()))
	schema.AddField(d, "device", func(r *BidRequest) **Device { return &r.Device }, schema.Optional[Device](deviceDescription()))
	schema.AddField(d, "user", func(r *BidRequest) **User { return &r.User }, schema.Optional[User](userDescription()))
	schema.AddField(d, "at", func(r *BidRequest) *int64 { return &r.AT }, schema.Default(schema.Int[int64](), 2))
	schema.AddField(d, "tmax", func(r *BidRequest) *int64 { return &r.TMax }, num[int64]())
	schema.AddField(d, "wseat", func(r *BidRequest) *[]string { return &r.WSeat }, list(schema.String()))
	schema.AddField(d, "allimps", func(r *BidRequest) *bool { return &r.AllImps }, flag())
	schema.AddField(d, "cur", func(r *BidRequest) *[]string { return &r.Cur }, list(schema.String()))
	schema.AddField(d, "bcat", func(r *BidRequest) *[]string { return &r.BCat }, list(schema.String()))
	schema.AddField(d, "badv", func(r *BidRequest) *[]string { return &r.BAdv }, list(schema.String()))
	schema.AddField(d, "ext", func(r *BidRequest) *json.RawMessage { return &r.Ext }, ext())
	schema.AddField(d, "unparseable", func(r *BidRequest) *schema.Unparseable { return &r.Unparseable }, schema.UnparseableBag())
	d.CaptureUnknown(func(r *BidRequest) *schema.Unparseable { return &r.Unparseable })
	return d
})

var bidRequestCodec = sync.OnceValue(func() *schema.Codec[BidRequest] {
	return schema.NewCodec[BidRequest](bidRequestDescription())
})

// ParseBidRequest parses an OpenRTB 2.1 bid request. Recovered anomalies are returned as
// warnings alongside the request; the request is nil if any returned error is fatal.
func ParseBidRequest(data []byte) (*BidRequest, []error) {
	return bidRequestCodec().Parse(data)
}

// PrintBidRequest renders a request back to OpenRTB JSON.
func PrintBidRequest(req *BidRequest) ([]byte, error) {
	return bidRequestCodec().Print(req)
}

func ImpressionDescription() *schema.StructDescription[Impression] { return impressionDescription() }
func SiteDescription() *schema.StructDescription[Site]             { return siteDescription() }
func AppDescription() *schema.StructDescription[App]               { return appDescription() }
func DeviceDescription() *schema.StructDescription[Device]         { return deviceDescription() }
func UserDescription() *schema.StructDescription[User]             { return userDescription() }

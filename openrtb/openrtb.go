// Package openrtb models the OpenRTB 2.1 bid request as exchanges send it. Fields keep their
// wire names; leaf values which fail to parse are recorded as warnings and left at their
// default, so one broken field does not cost the whole auction.
package openrtb

import (
	"encoding/json"

	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/prebid-rtb-gateway/schema"
	"golang.org/x/text/currency"
)

// Banner describes a display placement. W and H may carry several sizes, paired by index.
type Banner struct {
	W        []int64
	H        []int64
	ID       string
	Pos      *adcom1.PlacementPosition
	BType    []openrtb2.BannerAdType
	BAttr    []adcom1.CreativeAttribute
	Mimes    []string
	TopFrame bool
	ExpDir   []adcom1.ExpandableDirection
	API      []adcom1.APIFramework
	Ext      json.RawMessage
}

type Video struct {
	Mimes          []string
	Linearity      adcom1.LinearityMode
	MinDuration    int64
	MaxDuration    int64
	Protocol       adcom1.MediaCreativeSubtype
	W              int64
	H              int64
	StartDelay     *adcom1.StartDelay
	Sequence       int64
	BAttr          []adcom1.CreativeAttribute
	MaxExtended    int64
	MinBitrate     int64
	MaxBitrate     int64
	BoxingAllowed  bool
	PlaybackMethod []adcom1.PlaybackMethod
	Delivery       []adcom1.DeliveryMethod
	Pos            *adcom1.PlacementPosition
	CompanionAd    []Banner
	API            []adcom1.APIFramework
	CompanionType  []adcom1.CompanionType
	Ext            json.RawMessage
}

type Impression struct {
	ID                string
	Banner            *Banner
	Video             *Video
	DisplayManager    string
	DisplayManagerVer string
	Instl             bool
	TagID             string
	BidFloor          float64
	BidFloorCur       currency.Unit
	IFrameBuster      []string
	Ext               json.RawMessage
}

type Publisher struct {
	ID     string
	Name   string
	Cat    []string
	Domain string
	Ext    json.RawMessage
}

type Content struct {
	ID                 string
	Episode            int64
	Title              string
	Series             string
	Season             string
	URL                string
	Cat                []string
	Keywords           string
	ContentRating      string
	UserRating         string
	LiveStream         bool
	SourceRelationship bool
	Len                int64
	Language           string
	Embeddable         bool
	Ext                json.RawMessage
}

// Context holds the members Site and App share.
type Context struct {
	ID            string
	Name          string
	Domain        string
	Cat           []string
	SectionCat    []string
	PageCat       []string
	PrivacyPolicy bool
	Publisher     *Publisher
	Content       *Content
	Keywords      string
	Ext           json.RawMessage
}

type Site struct {
	Context
	Page   string
	Ref    string
	Search string
}

type App struct {
	Context
	Ver      string
	Bundle   string
	Paid     bool
	StoreURL string
}

type Geo struct {
	Lat           *float64
	Lon           *float64
	Country       string
	Region        string
	RegionFIPS104 string
	Metro         string
	City          string
	Zip           string
	Type          adcom1.LocationType
	Ext           json.RawMessage
}

type Device struct {
	DNT            bool
	UA             string
	IP             string
	Geo            *Geo
	DIDSHA1        string
	DIDMD5         string
	DPIDSHA1       string
	DPIDMD5        string
	IPv6           string
	Carrier        string
	Language       string
	Make           string
	Model          string
	OS             string
	OSV            string
	JS             bool
	ConnectionType *adcom1.ConnectionType
	DeviceType     adcom1.DeviceType
	FlashVer       string
	Ext            json.RawMessage
}

type Segment struct {
	ID    string
	Name  string
	Value string
	Ext   json.RawMessage
}

// Data is one data provider's segments about the user.
type Data struct {
	ID      string
	Name    string
	Segment []Segment
	Ext     json.RawMessage
}

type User struct {
	ID         string
	BuyerUID   string
	Yob        int64
	Gender     string
	Keywords   string
	CustomData string
	Geo        *Geo
	Data       []Data
	Ext        json.RawMessage
}

// BidRequest is the top level OpenRTB 2.1 request. Members the model does not know are kept
// in Unparseable, keyed by path.
type BidRequest struct {
	ID          string
	Imp         []Impression
	Site        *Site
	App         *App
	Device      *Device
	User        *User
	AT          int64
	TMax        int64
	WSeat       []string
	AllImps     bool
	Cur         []string
	BCat        []string
	BAdv        []string
	Ext         json.RawMessage
	Unparseable schema.Unparseable
}

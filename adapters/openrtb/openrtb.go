// Package openrtb normalizes OpenRTB 2.1 bid requests into canonical bid requests.
package openrtb

import (
	"fmt"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/buger/jsonparser"
	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	ortb "github.com/prebid/prebid-rtb-gateway/openrtb"
	"github.com/prebid/prebid-rtb-gateway/util/ptrutil"
	"golang.org/x/text/currency"
)

// Options holds what the mapping needs beyond the request itself.
type Options struct {
	// Clock stamps the request with the time it was normalized. Defaults to the wall clock.
	Clock clock.Clock
	// DefaultCurrency is used when the request does not declare the currencies it accepts.
	// Defaults to USD.
	DefaultCurrency currency.Unit
}

// Builder builds the parser of an exchange speaking OpenRTB 2.1.
func Builder(source string, cfg config.Exchange) (bidrequest.Parser, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = source
	}
	parser := &Parser{
		Provider: provider,
		Exchange: source,
		Options: Options{
			Clock:           clock.New(),
			DefaultCurrency: cfg.Currency(),
		},
	}
	return parser.Parse, nil
}

// Parser reads OpenRTB payloads of one exchange.
type Parser struct {
	Provider string
	Exchange string
	Options  Options
}

// Parse reads an OpenRTB payload and normalizes it. Warnings of both steps are returned; the
// request is nil when any error is fatal.
func (p *Parser) Parse(payload []byte) (*bidrequest.BidRequest, []error) {
	req, errs := ortb.ParseBidRequest(payload)
	if errortypes.ContainsFatalError(errs) {
		return nil, errs
	}
	result, mapErrs := FromOpenRTB(req, p.Provider, p.Exchange, p.Options)
	errs = append(errs, mapErrs...)
	if result == nil {
		return nil, errs
	}
	return result, errs
}

// FromOpenRTB builds the canonical request of an OpenRTB request. The OpenRTB request hands
// over its sub-objects and must not be used afterwards. exchange defaults to provider.
func FromOpenRTB(req *ortb.BidRequest, provider, exchange string, opts Options) (*bidrequest.BidRequest, []error) {
	if req.ID == "" {
		return nil, []error{&errortypes.BadInput{Message: "bid request id is required"}}
	}
	if req.Site != nil && req.App != nil {
		return nil, []error{&errortypes.ConflictingContext{Message: "bid request can't have both site and app"}}
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.DefaultCurrency == (currency.Unit{}) {
		opts.DefaultCurrency = currency.USD
	}
	if exchange == "" {
		exchange = provider
	}

	var errs []error
	result := &bidrequest.BidRequest{
		AuctionID:       req.ID,
		AuctionType:     bidrequest.AuctionTypeSecondPrice,
		TimeAvailableMs: req.TMax,
		Timestamp:       opts.Clock.Now().UTC(),
		Provider:        provider,
		Exchange:        exchange,
		Unparseable:     req.Unparseable,
		Ext:             req.Ext,
	}

	result.Imp = make([]bidrequest.AdSpot, 0, len(req.Imp))
	for i, imp := range req.Imp {
		spot := bidrequest.AdSpot{Impression: imp, Position: position(imp)}
		errs = appendFormats(&spot, i, errs)
		result.Imp = append(result.Imp, spot)
	}

	mapContext(result, req)
	mapDevice(result, req.Device)
	if err := mapUser(result, req.User, &errs); err != nil {
		return nil, append(errs, err)
	}
	errs = mapCurrencies(result, req.Cur, opts.DefaultCurrency, errs)
	return result, errs
}

// position is the banner's position, or the video's for video only impressions.
func position(imp ortb.Impression) *adcom1.PlacementPosition {
	if imp.Banner != nil && imp.Banner.Pos != nil {
		return ptrutil.Clone(imp.Banner.Pos)
	}
	if imp.Video != nil {
		return ptrutil.Clone(imp.Video.Pos)
	}
	return nil
}

// appendFormats pairs the banner's widths and heights by index.
func appendFormats(spot *bidrequest.AdSpot, index int, errs []error) []error {
	banner := spot.Banner
	if banner == nil {
		return errs
	}
	n := min(len(banner.W), len(banner.H))
	if len(banner.W) != len(banner.H) {
		errs = append(errs, &errortypes.Warning{
			Message:     fmt.Sprintf("imp[%d].banner: %d widths but %d heights, unpaired sizes ignored", index, len(banner.W), len(banner.H)),
			WarningCode: errortypes.InvalidOptionalFieldWarningCode,
		})
	}
	for i := 0; i < n; i++ {
		spot.Formats = append(spot.Formats, bidrequest.Format{Width: int(banner.W[i]), Height: int(banner.H[i])})
	}
	return errs
}

func mapContext(result *bidrequest.BidRequest, req *ortb.BidRequest) {
	switch {
	case req.Site != nil:
		result.Site = req.Site
		if req.Site.Page != "" {
			result.URL = req.Site.Page
		} else if req.Site.ID != "" {
			result.URL = "http://" + req.Site.ID + ".siteid/"
		}
	case req.App != nil:
		result.App = req.App
		if req.App.Bundle != "" {
			result.URL = req.App.Bundle
		} else if req.App.ID != "" {
			result.URL = "http://" + req.App.ID + ".appid/"
		}
	}
}

func mapDevice(result *bidrequest.BidRequest, device *ortb.Device) {
	if device == nil {
		return
	}
	result.Device = device
	result.Language = device.Language
	result.UserAgent = device.UA
	if device.IP != "" {
		result.IPAddress = device.IP
	} else {
		result.IPAddress = device.IPv6
	}

	if geo := device.Geo; geo != nil {
		loc := &result.Location
		loc.CountryCode = geo.Country
		if geo.Region != "" {
			loc.RegionCode = geo.Region
		} else {
			loc.RegionCode = geo.RegionFIPS104
		}
		loc.CityName = geo.City
		loc.PostalCode = geo.Zip
		if dma, err := strconv.Atoi(geo.Metro); err == nil {
			loc.DMA = dma
		}
	}
}

// mapUser flattens the user's data segments and registers the user's ids. The returned error
// is fatal; recovered problems are appended to errs.
func mapUser(result *bidrequest.BidRequest, user *ortb.User, errs *[]error) error {
	if user == nil {
		return nil
	}
	result.User = user

	for _, data := range user.Data {
		provider := data.ID
		if provider == "" {
			provider = data.Name
		}
		values := make([]string, 0, len(data.Segment))
		for _, segment := range data.Segment {
			if segment.ID != "" {
				values = append(values, segment.ID)
			} else if segment.Name != "" {
				values = append(values, segment.Name)
			}
		}
		result.Segments.AddStrings(provider, values)
	}

	if len(user.Ext) > 0 {
		tz, err := jsonparser.GetInt(user.Ext, "tz")
		switch err {
		case nil:
			result.Location.TimezoneOffsetMinutes = int(tz)
		case jsonparser.KeyPathNotFoundError:
		default:
			*errs = append(*errs, errortypes.Recovered("user.ext.tz", err))
		}
	}

	if user.ID != "" {
		if err := result.UserIds.AddDomain(bidrequest.IDExchange, user.ID); err != nil {
			return err
		}
	}
	if user.BuyerUID != "" {
		if err := result.UserIds.AddDomain(bidrequest.IDProvider, user.BuyerUID); err != nil {
			return err
		}
	}
	return nil
}

func mapCurrencies(result *bidrequest.BidRequest, codes []string, def currency.Unit, errs []error) []error {
	for i, code := range codes {
		unit, err := currency.ParseISO(code)
		if err != nil {
			errs = append(errs, &errortypes.Warning{
				Message:     fmt.Sprintf("cur[%d]: %q is not an ISO 4217 currency code", i, code),
				WarningCode: errortypes.InvalidCurrencyWarningCode,
			})
			continue
		}
		result.BidCurrency = append(result.BidCurrency, unit)
	}
	if len(result.BidCurrency) == 0 {
		result.BidCurrency = []currency.Unit{def}
	}
	return errs
}

package exchange

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/golang/glog"
	jsoniter "github.com/json-iterator/go"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/prebid/prebid-rtb-gateway/config"
	"github.com/prebid/prebid-rtb-gateway/errortypes"
	"github.com/prebid/prebid-rtb-gateway/openrtb"
)

// Response is the HTTP answer sent back to an exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// droppedBody answers requests which were not auctioned.
var droppedBody = []byte("{}")

// ResponseAssembler turns auction results into OpenRTB bid responses.
type ResponseAssembler struct {
	cfg            *config.Configuration
	bidIDGenerator BidIDGenerator
}

func NewResponseAssembler(cfg *config.Configuration, idGen BidIDGenerator) *ResponseAssembler {
	return &ResponseAssembler{
		cfg:            cfg,
		bidIDGenerator: idGen,
	}
}

// BuildBidResponse builds the response carrying the winning bids, all in a single seat. It
// returns nil when nothing was won. Winners must bid on impressions of req, at most once each,
// and in a single currency the request accepts.
func (a *ResponseAssembler) BuildBidResponse(source string, req *bidrequest.BidRequest, result *AuctionResult) (*openrtb2.BidResponse, error) {
	if !result.HasWinners() {
		return nil, nil
	}

	imps := make(map[string]bool, len(req.Imp))
	for _, spot := range req.Imp {
		imps[spot.ID] = false
	}
	cur := result.Winners[0].Price.Currency
	if len(req.BidCurrency) > 0 && !slices.Contains(req.BidCurrency, cur) {
		return nil, &errortypes.BadInput{Message: fmt.Sprintf("bid request %s does not accept bids in %s", req.AuctionID, cur)}
	}

	bids := make([]openrtb2.Bid, 0, len(result.Winners))
	for i, winner := range result.Winners {
		won, ok := imps[winner.ImpID]
		if !ok {
			return nil, &errortypes.BadInput{Message: fmt.Sprintf("winners[%d]: impression %q is not part of bid request %s", i, winner.ImpID, req.AuctionID)}
		}
		if won {
			return nil, &errortypes.BadInput{Message: fmt.Sprintf("winners[%d]: impression %q was won twice", i, winner.ImpID)}
		}
		imps[winner.ImpID] = true
		if winner.Price.Currency != cur {
			return nil, &errortypes.BadInput{Message: fmt.Sprintf("winners[%d]: price in %s but the response is in %s", i, winner.Price.Currency, cur)}
		}

		price, _ := winner.Price.CPM().Value.Float64()
		bids = append(bids, openrtb2.Bid{
			ID:      req.AuctionID + ":" + winner.ImpID,
			ImpID:   winner.ImpID,
			Price:   price,
			NURL:    winner.NURL,
			AdM:     winner.AdMarkup,
			ADomain: winner.ADomain,
			CID:     winner.Agent,
			CrID:    winner.CreativeID,
			DealID:  winner.DealID,
			W:       winner.W,
			H:       winner.H,
		})
	}

	seatBid := openrtb2.SeatBid{Bid: bids}
	if exchange, ok := a.cfg.Exchange(source); ok {
		seatBid.Seat = exchange.Seat
	}
	resp := &openrtb2.BidResponse{
		ID:      req.AuctionID,
		SeatBid: []openrtb2.SeatBid{seatBid},
		Cur:     cur.String(),
	}
	if a.bidIDGenerator.Enabled() {
		if bidID, err := a.bidIDGenerator.New(); err == nil {
			resp.BidID = bidID
		} else {
			glog.Warningf("Failed to generate a bid id for auction %s: %v", req.AuctionID, err)
		}
	}
	return resp, nil
}

// Assemble answers an exchange: 200 with the bid response when something was won, 204 when
// nothing was, and 400 when the auction failed.
func (a *ResponseAssembler) Assemble(source string, req *bidrequest.BidRequest, result *AuctionResult, auctionErr error) Response {
	if auctionErr != nil {
		return ErrorResponse(http.StatusBadRequest, auctionErr)
	}
	if result == nil || result.Dropped {
		return Response{StatusCode: http.StatusNoContent, Body: droppedBody}
	}

	resp, err := a.BuildBidResponse(source, req, result)
	if err != nil {
		glog.Errorf("Auction %s produced an invalid result: %v", req.AuctionID, err)
		return ErrorResponse(http.StatusInternalServerError, err)
	}
	if resp == nil {
		return Response{StatusCode: http.StatusNoContent}
	}

	body, err := openrtb.PrintBidResponse(resp)
	if err != nil {
		return ErrorResponse(http.StatusInternalServerError, &errortypes.FailedToMarshal{Message: err.Error()})
	}
	return Response{StatusCode: http.StatusOK, Body: body}
}

type errorBody struct {
	Error string `json:"error"`
	NBR   int    `json:"nbr,omitempty"`
}

// ErrorResponse builds an answer of the form {"error":"...","nbr":N}. nbr is the OpenRTB no-bid
// reason matching err.
func ErrorResponse(status int, err error) Response {
	body, marshalErr := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(errorBody{
		Error: err.Error(),
		NBR:   int(errortypes.GetNBRCodeFromError(err)),
	})
	if marshalErr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	return Response{StatusCode: status, Body: body}
}

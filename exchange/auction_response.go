package exchange

import (
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
)

// AuctionResult is the outcome of the auction held for one bid request.
type AuctionResult struct {
	// Winners holds at most one bid per impression.
	Winners []WinningBid
	// Dropped is set when the request was not auctioned at all, e.g. because it arrived too
	// late to be answered in time.
	Dropped bool
}

// WinningBid is the bid which won one impression.
type WinningBid struct {
	ImpID string
	// Price is the price of a single impression. Responses carry it as a CPM.
	Price bidrequest.Amount
	// Agent is the bidding agent or campaign, reported as cid.
	Agent      string
	CreativeID string
	AdMarkup   string
	NURL       string
	ADomain    []string
	DealID     string
	W          int64
	H          int64
}

// HasWinners reports whether any impression was won.
func (r *AuctionResult) HasWinners() bool {
	return r != nil && len(r.Winners) > 0
}

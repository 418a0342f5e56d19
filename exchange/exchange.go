package exchange

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
)

// Auctioneer runs the auction of a normalized bid request. The auction logic lives outside this
// module; the gateway only needs its result.
type Auctioneer interface {
	HoldAuction(ctx context.Context, req *bidrequest.BidRequest) (*AuctionResult, error)
}

// NoBidAuctioneer never bids. It lets the gateway run without an auction attached.
type NoBidAuctioneer struct{}

func (NoBidAuctioneer) HoldAuction(ctx context.Context, req *bidrequest.BidRequest) (*AuctionResult, error) {
	return &AuctionResult{}, nil
}

type BidIDGenerator interface {
	New() (string, error)
	Enabled() bool
}

type bidIDGenerator struct {
	enabled bool
}

// NewBidIDGenerator returns a generator of random UUIDs, used only when enabled.
func NewBidIDGenerator(enabled bool) BidIDGenerator {
	return &bidIDGenerator{enabled: enabled}
}

func (big *bidIDGenerator) Enabled() bool {
	return big.enabled
}

func (big *bidIDGenerator) New() (string, error) {
	rawUuid, err := uuid.NewV4()
	return rawUuid.String(), err
}

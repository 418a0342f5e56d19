package exchange

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidIDGenerator(t *testing.T) {
	assert.False(t, NewBidIDGenerator(false).Enabled())

	gen := NewBidIDGenerator(true)
	assert.True(t, gen.Enabled())
	first, err := gen.New()
	require.NoError(t, err)
	second, err := gen.New()
	require.NoError(t, err)

	parsed, err := uuid.FromString(first)
	require.NoError(t, err)
	assert.Equal(t, byte(uuid.V4), parsed.Version())
	assert.NotEqual(t, first, second)
}

func TestNoBidAuctioneer(t *testing.T) {
	result, err := NoBidAuctioneer{}.HoldAuction(context.Background(), &bidrequest.BidRequest{AuctionID: "a"})
	require.NoError(t, err)
	assert.False(t, result.HasWinners())
	assert.False(t, result.Dropped)
}

func TestNewAdapterBuilders(t *testing.T) {
	builders := NewAdapterBuilders()
	require.Contains(t, builders, "openrtb")
}

package exchange

import (
	"github.com/prebid/prebid-rtb-gateway/adapters"
	"github.com/prebid/prebid-rtb-gateway/adapters/openrtb"
	"github.com/prebid/prebid-rtb-gateway/config"
)

// NewAdapterBuilders returns the parser builder of every supported dialect, keyed by the
// dialect name used in exchange configuration.
func NewAdapterBuilders() adapters.Builders {
	return adapters.Builders{
		config.DefaultDialect: openrtb.Builder,
	}
}

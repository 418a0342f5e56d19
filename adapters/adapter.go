package adapters

import (
	"github.com/prebid/prebid-rtb-gateway/bidrequest"
	"github.com/prebid/prebid-rtb-gateway/config"
)

// Builder creates the bid request parser of one exchange dialect. source is the name the
// exchange sends traffic under; cfg holds its configuration, whether it came from the main
// config file or an exchange info file.
type Builder func(source string, cfg config.Exchange) (bidrequest.Parser, error)

// Builders maps a dialect name to its builder.
type Builders map[string]Builder

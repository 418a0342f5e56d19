package version

// Ver holds the version derived from the latest git tag
// Set manually at build time using:
//
//	go build -ldflags "-X github.com/prebid/prebid-rtb-gateway/version.Ver=`git describe --tags | sed 's/^v//`'"
var Ver string

// Rev holds the binary revision string
// Set manually at build time using:
//
//	go build -ldflags "-X github.com/prebid/prebid-rtb-gateway/version.Rev=`git rev-parse HEAD`"
var Rev string

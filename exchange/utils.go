package exchange

import (
	"github.com/tidwall/gjson"
)

// TimeAvailableMs reads the top level tmax of a raw OpenRTB payload without parsing the rest of
// it. def is returned when tmax is absent, not a positive integer or the payload is not JSON.
func TimeAvailableMs(payload []byte, def int64) int64 {
	if !gjson.ValidBytes(payload) {
		return def
	}
	tmax := gjson.GetBytes(payload, "tmax")
	if tmax.Type != gjson.Number || tmax.Int() <= 0 || float64(tmax.Int()) != tmax.Num {
		return def
	}
	return tmax.Int()
}

package symbols

import "strings"

// VenueMap maps broker-native exchange codes to market namespaces.
type VenueMap map[string]string

// IBKRVenues maps Interactive Brokers routing and listing codes to the
// namespaces used in tickers.
var IBKRVenues = VenueMap{
	"SMART":  "NYSE",
	"ISLAND": "NASDAQ",
	"PINK":   "OTC",
	"IBIS":   "XETR",
	"IBIS2":  "XETR",
	"BVME":   "MIL",
	"SBF":    "EURONEXT",
}

// Namespace returns the namespace for code. Unmapped codes pass through unchanged.
func (m VenueMap) Namespace(code string) string {
	if ns, ok := m[strings.ToUpper(code)]; ok {
		return ns
	}
	return code
}

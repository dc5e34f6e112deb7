package processor

import "regexp"

// Rule tables. Extend these lists to change what is admitted; the classifier
// code does not need to change.
var (
	// FiatAndPeggedBases are spot bases that only mirror another currency.
	FiatAndPeggedBases = []string{
		"TUSD", "USDC", "BUSD", "EUR", "GBP", "PAX", "DAI", "AUD", "USDP", "FDUSD", "WBTC",
	}

	// Stablecoins is the explicit stablecoin symbol list for market-cap rankings.
	Stablecoins = []string{
		"USDT", "USDC", "BUSD", "DAI", "TUSD", "USDP", "USDD", "GUSD", "PAXG", "EURS", "EURT",
		"GBPT", "XAUT", "PYUSD", "FDUSD", "FRAX", "LUSD", "SUSD", "USDJ", "USDK", "USDX", "UST",
		"USDN",
	}

	// StableNameMarkers flag a stablecoin by its lowercased display name.
	StableNameMarkers = []string{"usd", "dollar", "stable"}

	// WrappedNamePrefix flags a wrapped asset by its lowercased display name.
	WrappedNamePrefix = "wrapped "

	// WrapPrefixes flag a wrapped or staked derivative by its lowercased symbol.
	// The symbol must be strictly longer than the prefix.
	WrapPrefixes = []string{"w", "st", "cb"}

	// LeveragedTokens matches leveraged and directional token bases.
	LeveragedTokens = []*regexp.Regexp{regexp.MustCompile(`3L|3S|2L|2S|DOWN`)}

	// DirectionalSuffixes are base suffixes of directional tokens.
	DirectionalSuffixes = []string{"UP", "DOWN"}
)

package networks

import (
	"errors"
	"strings"
)

// NativeToken is how the aggregator and the distributor address the chain's
// native asset.
const NativeToken = "0x0000000000000000000000000000000000000000"

var ErrTokenNotSupported = errors.New("token not supported")

// TokenDecimals returns the decimals used to scale user entered amounts.
// Unknown symbols default to 18.
func TokenDecimals(symbol string) uint64 {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "ETH", "WETH":
		return 18
	case "USDC", "USDT":
		return 6
	default:
		return 18
	}
}

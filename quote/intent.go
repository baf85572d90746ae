package quote

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/splits"
)

// Intent is what a payer asks for: an amount of one asset on one chain,
// delivered according to the recipient's config.
type Intent struct {
	FromChain  string         `json:"fromChain" validate:"required"`
	FromToken  string         `json:"fromToken" validate:"required"`
	FromAmount string         `json:"fromAmount"`
	ToChain    string         `json:"toChain" validate:"required"`
	ToToken    string         `json:"toToken" validate:"required"`
	Sender     string         `json:"sender" validate:"omitempty,eth_addr"`
	Recipient  string         `json:"recipient" validate:"omitempty,eth_addr"`
	Protocol   string         `json:"protocol,omitempty"`
	Splits     []splits.Split `json:"splits,omitempty" validate:"max=10,dive"`
}

// ParseAmount scales a decimal amount to the smallest unit of symbol. An
// empty or non positive amount yields nil with no error.
// Example:
// - ParseAmount("1.5", "USDC") = 1500000
// - ParseAmount("", "ETH") = nil
func ParseAmount(amount string, symbol string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, nil
	}
	value, err := feedmecommon.ParseUnits(amount, networks.TokenDecimals(symbol))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, err)
	}
	if value.Sign() <= 0 {
		return nil, nil
	}
	return value, nil
}

// route is an intent with every name looked up.
type route struct {
	from       networks.Network
	to         networks.Network
	fromToken  common.Address
	toToken    common.Address
	fromSymbol string
	toSymbol   string
	amount     *big.Int
	sender     common.Address
	recipient  common.Address
	protocol   string
	splits     []splits.Split
}

func resolveRoute(in Intent, amount *big.Int) (route, error) {
	from, err := networks.GetNetwork(in.FromChain)
	if err != nil {
		return route{}, err
	}
	to, err := networks.GetNetwork(in.ToChain)
	if err != nil {
		return route{}, err
	}
	fromToken, err := from.TokenAddress(in.FromToken)
	if err != nil {
		return route{}, err
	}
	toToken, err := to.TokenAddress(in.ToToken)
	if err != nil {
		return route{}, err
	}
	sender := common.HexToAddress(in.Sender)
	recipient := sender
	if in.Recipient != "" {
		recipient = common.HexToAddress(in.Recipient)
	}
	return route{
		from:       from,
		to:         to,
		fromToken:  fromToken,
		toToken:    toToken,
		fromSymbol: strings.ToUpper(in.FromToken),
		toSymbol:   strings.ToUpper(in.ToToken),
		amount:     amount,
		sender:     sender,
		recipient:  recipient,
		protocol:   strings.ToLower(strings.TrimSpace(in.Protocol)),
		splits:     in.Splits,
	}, nil
}

// depositAsset is the token a protocol pool takes for toToken. Pools take the
// wrapped form of the native asset.
func (r route) depositAsset() (common.Address, error) {
	if r.toToken == common.HexToAddress(networks.NativeToken) {
		return r.to.TokenAddress("WETH")
	}
	return r.toToken, nil
}

package networks

import (
	"errors"
	"fmt"
	"strings"
)

var ErrProtocolNotSupported = errors.New("protocol not supported")

// Protocol is a destination a recipient can ask payments to land in.
type Protocol struct {
	Key         string
	Name        string
	Description string
	// DepositStyle protocols take the payment through a pool deposit call on
	// behalf of the recipient.
	DepositStyle bool
	ChainIDs     []uint64
	Tokens       []string
}

var protocols = []Protocol{
	{
		Key:          "aave",
		Name:         "Aave",
		Description:  "Lend and earn yield",
		DepositStyle: true,
		ChainIDs:     []uint64{1, 8453, 42161},
		Tokens:       []string{"USDC", "ETH", "USDT", "DAI", "WETH"},
	},
	{
		Key:         "lido",
		Name:        "Lido",
		Description: "Liquid staking for ETH",
		ChainIDs:    []uint64{1},
		Tokens:      []string{"ETH"},
	},
	{
		Key:         "aerodrome",
		Name:        "Aerodrome",
		Description: "Trade and earn on Base",
		ChainIDs:    []uint64{8453},
		Tokens:      []string{"USDC", "ETH", "WETH"},
	},
}

func GetProtocols() []Protocol {
	return append([]Protocol{}, protocols...)
}

// GetProtocol looks a protocol up by key, ignoring case.
func GetProtocol(key string) (Protocol, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range protocols {
		if p.Key == key {
			return p, nil
		}
	}
	return Protocol{}, fmt.Errorf("protocol '%s': %w", key, ErrProtocolNotSupported)
}

// IsDepositProtocol reports whether payments for key are routed through a
// pool deposit.
func IsDepositProtocol(key string) bool {
	p, err := GetProtocol(key)
	return err == nil && p.DepositStyle
}

func (p Protocol) SupportsChain(chainID uint64) bool {
	for _, id := range p.ChainIDs {
		if id == chainID {
			return true
		}
	}
	return false
}

func (p Protocol) SupportsToken(symbol string) bool {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, t := range p.Tokens {
		if t == symbol {
			return true
		}
	}
	return false
}

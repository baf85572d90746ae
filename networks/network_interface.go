package networks

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Network interface {
	GetName() string
	GetDisplayName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	GetBlockTime() time.Duration // in second

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string

	GetHistoryProvider() HistoryProvider
	MultiCallContract() string

	// DistributorContract returns the split distributor deployed on this
	// chain, if any.
	DistributorContract() (common.Address, bool)
	// ProtocolPool returns the deposit target of a protocol on this chain.
	ProtocolPool(protocol string) (common.Address, bool)

	TokenAddress(symbol string) (common.Address, error)
	SupportedTokens() []string

	MarshalJSON() ([]byte, error)
}

// History provider kinds.
const (
	ProviderBlockscout = "blockscout"
	ProviderEtherscan  = "etherscan"
)

// HistoryProvider describes where a chain's transfer history is served from.
type HistoryProvider struct {
	Kind               string `json:"kind"`
	URL                string `json:"url"`
	APIKeyVariableName string `json:"api_key_variable_name,omitempty"`
}

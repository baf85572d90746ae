package networks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type GenericNetworkConfig struct {
	Name                     string                    `json:"name"`
	DisplayName              string                    `json:"display_name"`
	AlternativeNames         []string                  `json:"alternative_names"`
	ChainID                  uint64                    `json:"chain_id"`
	NativeTokenSymbol        string                    `json:"native_token_symbol"`
	NativeTokenDecimal       uint64                    `json:"native_token_decimal"`
	BlockTime                uint64                    `json:"block_time"`
	NodeVariableName         string                    `json:"node_variable_name"`
	DefaultNodes             map[string]string         `json:"default_nodes"`
	HistoryProvider          HistoryProvider           `json:"history_provider"`
	MultiCallContractAddress common.Address            `json:"multi_call_contract_address"`
	DistributorAddress       *common.Address           `json:"distributor_address,omitempty"`
	ProtocolPools            map[string]common.Address `json:"protocol_pools,omitempty"`
	// Tokens maps an upper case symbol to its contract, the zero address
	// meaning the native asset.
	Tokens map[string]common.Address `json:"tokens"`
}

// GenericNetwork is a config driven Network. Every built-in chain is one of
// these and custom networks are loaded into it from JSON.
type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetDisplayName() string {
	if gn.config.DisplayName == "" {
		return gn.config.Name
	}
	return gn.config.DisplayName
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericNetwork) GetBlockTime() time.Duration {
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) GetHistoryProvider() HistoryProvider {
	return gn.config.HistoryProvider
}

func (gn *GenericNetwork) MultiCallContract() string {
	return gn.config.MultiCallContractAddress.Hex()
}

func (gn *GenericNetwork) DistributorContract() (common.Address, bool) {
	if gn.config.DistributorAddress == nil {
		return common.Address{}, false
	}
	return *gn.config.DistributorAddress, true
}

func (gn *GenericNetwork) ProtocolPool(protocol string) (common.Address, bool) {
	pool, found := gn.config.ProtocolPools[strings.ToLower(protocol)]
	return pool, found
}

func (gn *GenericNetwork) TokenAddress(symbol string) (common.Address, error) {
	addr, found := gn.config.Tokens[strings.ToUpper(strings.TrimSpace(symbol))]
	if !found {
		return common.Address{}, fmt.Errorf("%s on %s: %w", symbol, gn.config.Name, ErrTokenNotSupported)
	}
	return addr, nil
}

func (gn *GenericNetwork) SupportedTokens() []string {
	res := make([]string, 0, len(gn.config.Tokens))
	for symbol := range gn.config.Tokens {
		res = append(res, symbol)
	}
	sort.Strings(res)
	return res
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(gn.config, "", "  ")
}

package networks

import (
	"github.com/ethereum/go-ethereum/common"
)

var ArbitrumMainnet Network = NewArbitrumMainnet()

func NewArbitrumMainnet() *GenericNetwork {
	return NewGenericNetwork(GenericNetworkConfig{
		Name:               "arbitrum",
		DisplayName:        "Arbitrum",
		AlternativeNames:   []string{"arbitrumsepolia", "arb"},
		ChainID:            42161,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          1,
		NodeVariableName:   "ARBITRUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"public-arbitrum": "https://arb1.arbitrum.io/rpc",
		},
		HistoryProvider: HistoryProvider{
			Kind: ProviderBlockscout,
			URL:  "https://arbitrum.blockscout.com/api/v2",
		},
		MultiCallContractAddress: common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11"),
		ProtocolPools: map[string]common.Address{
			"aave": common.HexToAddress("0x794a61358D6845594F94dc1DB02A252b5b4814aD"),
		},
		Tokens: map[string]common.Address{
			"ETH":  common.HexToAddress(NativeToken),
			"WETH": common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
			"USDC": common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
			"USDT": common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"),
		},
	})
}

package networks

import (
	"github.com/ethereum/go-ethereum/common"
)

var EthereumMainnet Network = NewEthereumMainnet()

func NewEthereumMainnet() *GenericNetwork {
	return NewGenericNetwork(GenericNetworkConfig{
		Name:               "mainnet",
		DisplayName:        "Ethereum",
		AlternativeNames:   []string{"ethereum", "sepolia"},
		ChainID:            1,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          12,
		NodeVariableName:   "ETHEREUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"mainnet-tenderly": "https://mainnet.gateway.tenderly.co",
		},
		HistoryProvider: HistoryProvider{
			Kind: ProviderBlockscout,
			URL:  "https://eth.blockscout.com/api/v2",
		},
		MultiCallContractAddress: common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11"),
		ProtocolPools: map[string]common.Address{
			"aave": common.HexToAddress("0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2"),
		},
		Tokens: map[string]common.Address{
			"ETH":  common.HexToAddress(NativeToken),
			"WETH": common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
			"USDC": common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
			"USDT": common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
			"DAI":  common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
		},
	})
}

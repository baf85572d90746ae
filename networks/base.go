package networks

import (
	"github.com/ethereum/go-ethereum/common"
)

var BaseMainnet Network = NewBaseMainnet()

var baseDistributor = common.HexToAddress("0xa3e22f29A1B91d672F600D90e28bca45C53ef456")

func NewBaseMainnet() *GenericNetwork {
	return NewGenericNetwork(GenericNetworkConfig{
		Name:               "base",
		DisplayName:        "Base",
		AlternativeNames:   []string{"basesepolia"},
		ChainID:            8453,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          2,
		NodeVariableName:   "BASE_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"public-base": "https://mainnet.base.org",
		},
		HistoryProvider: HistoryProvider{
			Kind: ProviderBlockscout,
			URL:  "https://base.blockscout.com/api/v2",
		},
		MultiCallContractAddress: common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11"),
		DistributorAddress:       &baseDistributor,
		ProtocolPools: map[string]common.Address{
			"aave": common.HexToAddress("0xA238Dd80C259a72e81d7e4664a9801593F98d1c5"),
		},
		Tokens: map[string]common.Address{
			"ETH":  common.HexToAddress(NativeToken),
			"WETH": common.HexToAddress("0x4200000000000000000000000000000000000006"),
			"USDC": common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		},
	})
}

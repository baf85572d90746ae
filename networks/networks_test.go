package networks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/feedme/networks"
)

func TestGetNetworkByKeyAndAlias(t *testing.T) {
	cases := map[string]uint64{
		"mainnet":         1,
		"sepolia":         1,
		"base":            8453,
		"baseSepolia":     8453,
		"arbitrum":        42161,
		"arbitrumSepolia": 42161,
		"ARBITRUM":        42161,
	}
	for key, id := range cases {
		n, err := networks.GetNetwork(key)
		require.NoError(t, err, key)
		assert.Equal(t, id, n.GetChainID(), key)
	}
}

func TestUnknownNetworkFailsClosed(t *testing.T) {
	_, err := networks.GetNetwork("optimism")
	require.ErrorIs(t, err, networks.ErrNetworkNotFound)

	_, err = networks.GetNetwork("bas")
	require.ErrorIs(t, err, networks.ErrNetworkNotFound)
	assert.Contains(t, err.Error(), "did you mean")

	_, err = networks.GetNetworkByID(10)
	require.ErrorIs(t, err, networks.ErrNetworkNotFound)
}

func TestTokenAddresses(t *testing.T) {
	addr, err := networks.BaseMainnet.TokenAddress("usdc")
	require.NoError(t, err)
	assert.Equal(t, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", addr.Hex())

	eth, err := networks.ArbitrumMainnet.TokenAddress("ETH")
	require.NoError(t, err)
	assert.Equal(t, networks.NativeToken, eth.Hex())

	_, err = networks.BaseMainnet.TokenAddress("DAI")
	require.ErrorIs(t, err, networks.ErrTokenNotSupported)
}

func TestTokenDecimals(t *testing.T) {
	assert.Equal(t, uint64(18), networks.TokenDecimals("ETH"))
	assert.Equal(t, uint64(18), networks.TokenDecimals("weth"))
	assert.Equal(t, uint64(6), networks.TokenDecimals("USDC"))
	assert.Equal(t, uint64(6), networks.TokenDecimals("USDT"))
	assert.Equal(t, uint64(18), networks.TokenDecimals("DAI"))
	assert.Equal(t, uint64(18), networks.TokenDecimals("SOMETHING"))
}

func TestDistributorOnlyOnBase(t *testing.T) {
	_, ok := networks.BaseMainnet.DistributorContract()
	assert.True(t, ok)
	_, ok = networks.EthereumMainnet.DistributorContract()
	assert.False(t, ok)
	_, ok = networks.ArbitrumMainnet.DistributorContract()
	assert.False(t, ok)
}

func TestChainOrder(t *testing.T) {
	assert.Equal(t, []uint64{1, 8453, 42161}, networks.ChainOrder(1))
	assert.Equal(t, []uint64{8453, 42161, 1}, networks.ChainOrder(8453))
	assert.Equal(t, []uint64{8453, 42161, 1}, networks.ChainOrder(0))
	assert.Equal(t, []uint64{10, 8453, 42161, 1}, networks.ChainOrder(10))
}

func TestProtocols(t *testing.T) {
	assert.True(t, networks.IsDepositProtocol("aave"))
	assert.True(t, networks.IsDepositProtocol("AAVE"))
	assert.False(t, networks.IsDepositProtocol("lido"))
	assert.False(t, networks.IsDepositProtocol(""))

	p, err := networks.GetProtocol("aerodrome")
	require.NoError(t, err)
	assert.True(t, p.SupportsChain(8453))
	assert.False(t, p.SupportsChain(1))
	assert.True(t, p.SupportsToken("weth"))

	_, err = networks.GetProtocol("compound")
	require.ErrorIs(t, err, networks.ErrProtocolNotSupported)
}

func TestNewNetworkFromJSON(t *testing.T) {
	n, err := networks.NewNetworkFromJSON([]byte(`{
		"name": "optimism",
		"chain_id": 10,
		"history_provider": {"kind": "blockscout", "url": "https://optimism.blockscout.com/api/v2"},
		"tokens": {"ETH": "0x0000000000000000000000000000000000000000"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n.GetChainID())
	assert.Equal(t, networks.ProviderBlockscout, n.GetHistoryProvider().Kind)
	assert.Equal(t, []string{"ETH"}, n.SupportedTokens())

	_, err = networks.NewNetworkFromJSON([]byte(`{"name": "x"}`))
	require.Error(t, err)
}

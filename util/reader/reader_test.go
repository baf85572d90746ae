package reader_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/util/reader"
	"github.com/tranvictor/feedme/util/reader/readertest"
)

type stubNode struct {
	name  string
	nonce uint64
	err   error
	base  *big.Int
	tip   *big.Int
}

func (s *stubNode) NodeName() string { return s.name }
func (s *stubNode) NodeURL() string  { return "stub://" + s.name }
func (s *stubNode) EstimateGas(from, to string, value *big.Int, data []byte) (uint64, error) {
	return 21000, s.err
}
func (s *stubNode) GetPendingNonce(address string) (uint64, error) { return s.nonce, s.err }
func (s *stubNode) TransactionReceipt(txHash string) (*types.Receipt, error) {
	return nil, s.err
}
func (s *stubNode) TransactionByHash(txHash string) (*feedmecommon.Transaction, bool, error) {
	return nil, false, s.err
}
func (s *stubNode) SuggestedGasTipCap() (*big.Int, error) { return s.tip, s.err }
func (s *stubNode) SuggestedGasPrice() (*big.Int, error)  { return big.NewInt(7), s.err }
func (s *stubNode) ReadContractToBytes(atBlock int64, from string, caddr string, a *abi.ABI, method string, args ...interface{}) ([]byte, error) {
	return nil, s.err
}
func (s *stubNode) HeaderByNumber(number int64) (*types.Header, error) {
	return &types.Header{BaseFee: s.base}, s.err
}

func TestFirstSuccessfulNodeWins(t *testing.T) {
	r := reader.NewEthReaderWithNodes(map[string]reader.EthereumNode{
		"down": &stubNode{name: "down", err: errors.New("connection refused")},
		"up":   &stubNode{name: "up", nonce: 42},
	})
	nonce, err := r.GetPendingNonce("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), nonce)
}

func TestAllNodesFailing(t *testing.T) {
	r := reader.NewEthReaderWithNodes(map[string]reader.EthereumNode{
		"a": &stubNode{name: "a", err: errors.New("timeout")},
		"b": &stubNode{name: "b", err: errors.New("refused")},
	})
	_, err := r.GetPendingNonce("0x0000000000000000000000000000000000000001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "couldn't read from any nodes")
	assert.Contains(t, err.Error(), "a: timeout")
	assert.Contains(t, err.Error(), "b: refused")
}

func TestSuggestedGasSettings(t *testing.T) {
	r := reader.NewEthReaderWithNodes(map[string]reader.EthereumNode{
		"n": &stubNode{name: "n", base: big.NewInt(100), tip: big.NewInt(3)},
	})
	feeCap, tipCap, err := r.SuggestedGasSettings()
	require.NoError(t, err)
	assert.Equal(t, "203", feeCap.String())
	assert.Equal(t, "3", tipCap.String())

	legacy := reader.NewEthReaderWithNodes(map[string]reader.EthereumNode{
		"n": &stubNode{name: "n"},
	})
	price, tip, err := legacy.SuggestedGasSettings()
	require.NoError(t, err)
	assert.Equal(t, "7", price.String())
	assert.Nil(t, tip)
}

func TestTxInfoUnknownTransactionIsLost(t *testing.T) {
	r := reader.NewEthReaderWithNodes(map[string]reader.EthereumNode{
		"n": &stubNode{name: "n", err: errors.New("not found")},
	})
	info, err := r.TxInfoFromHash("0xabc")
	require.NoError(t, err)
	assert.Equal(t, feedmecommon.TxStatusLost, info.Status)
}

func TestMultiCallDecodesEveryResult(t *testing.T) {
	erc20 := feedmecommon.GetERC20ABI()
	usdc := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	dai := "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	chain := readertest.NewFakeChain().
		Returns(usdc, erc20, "symbol", "USDC").
		Returns(usdc, erc20, "decimals", uint8(6)).
		Returns(dai, erc20, "symbol", "DAI")

	var usdcSymbol, daiSymbol string
	var usdcDecimals uint8
	hooked := 0
	mc := reader.NewMultiCall(chain, "0xcA11bde05977b3631167028862bE2a173976CA11").
		Register(&usdcSymbol, usdc, erc20, "symbol").
		RegisterWithHook(&usdcDecimals, func(interface{}) error { hooked++; return nil }, usdc, erc20, "decimals").
		Register(&daiSymbol, dai, erc20, "symbol")
	require.Equal(t, 3, mc.Len())

	block, err := mc.Do(-1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), block)
	assert.Equal(t, "USDC", usdcSymbol)
	assert.Equal(t, uint8(6), usdcDecimals)
	assert.Equal(t, "DAI", daiSymbol)
	assert.Equal(t, 1, hooked)
}

func TestMultiCallFailsAsAWhole(t *testing.T) {
	erc20 := feedmecommon.GetERC20ABI()
	usdc := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48").Hex()
	chain := readertest.NewFakeChain().
		Returns(usdc, erc20, "symbol", "USDC").
		Fails(usdc, erc20, "decimals", errors.New("boom"))

	var symbol string
	var decimals uint8
	_, err := reader.NewMultiCall(chain, "0xcA11bde05977b3631167028862bE2a173976CA11").
		Register(&symbol, usdc, erc20, "symbol").
		Register(&decimals, usdc, erc20, "decimals").
		Do(-1)
	require.Error(t, err)
	assert.Empty(t, symbol)
}

package quote_test

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/lifi"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/quote"
	"github.com/tranvictor/feedme/splits"
)

const (
	payer       = "0x1111111111111111111111111111111111111111"
	payee       = "0x2222222222222222222222222222222222222222"
	carol       = "0x3333333333333333333333333333333333333333"
	lifiDiamond = "0x1231DEB6f5749EF6cE6943a275A1D3E7486F4EaE"

	baseUSDC     = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	baseWETH     = "0x4200000000000000000000000000000000000006"
	baseAavePool = "0xA238Dd80C259a72e81d7e4664a9801593F98d1c5"
	distributor  = "0xa3e22f29A1B91d672F600D90e28bca45C53ef456"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeAggregator struct {
	mu        sync.Mutex
	quoteErr  error
	quotes    []lifi.QuoteRequest
	callQuote []lifi.ContractCallsRequest
}

func lifiQuote(toAmount, toAmountMin, data string) *lifi.Quote {
	return &lifi.Quote{
		ToolDetails: &lifi.ToolDetails{Name: "Stargate"},
		Action:      lifi.Action{ToToken: lifi.Token{Symbol: "USDC", Decimals: 6}},
		Estimate: lifi.Estimate{
			ToAmount:        toAmount,
			ToAmountMin:     toAmountMin,
			ApprovalAddress: lifiDiamond,
			GasCosts:        []lifi.GasCost{{AmountUSD: "0.12"}},
		},
		TransactionRequest: &lifi.TransactionRequest{
			To:       lifiDiamond,
			Data:     data,
			Value:    "0x0",
			GasLimit: "0x30d40",
			ChainID:  42161,
		},
	}
}

func (f *fakeAggregator) GetQuote(ctx context.Context, req lifi.QuoteRequest) (*lifi.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, req)
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return lifiQuote("1490000", "1480000", "0xaaaa"), nil
}

func (f *fakeAggregator) GetContractCallsQuote(ctx context.Context, req lifi.ContractCallsRequest) (*lifi.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callQuote = append(f.callQuote, req)
	q := lifiQuote("1", "1", "0xbbbb")
	q.ToolDetails = nil
	q.Estimate.GasCosts = []lifi.GasCost{{AmountUSD: "0.40"}}
	return q, nil
}

func baseIntent() quote.Intent {
	return quote.Intent{
		FromChain:  "arbitrum",
		FromToken:  "USDC",
		FromAmount: "1.5",
		ToChain:    "base",
		ToToken:    "USDC",
		Sender:     payer,
		Recipient:  payee,
	}
}

func decodeCall(t *testing.T, a *abi.ABI, data string) (string, []interface{}) {
	raw, err := hexutil.Decode(data)
	require.NoError(t, err)
	method, err := a.MethodById(raw[:4])
	require.NoError(t, err)
	args, err := method.Inputs.Unpack(raw[4:])
	require.NoError(t, err)
	return method.Name, args
}

func TestSelect(t *testing.T) {
	twoWay := []splits.Split{{Recipient: payee, Percentage: 60}, {Recipient: carol, Percentage: 40}}
	tests := []struct {
		name string
		in   quote.Selection
		want quote.Strategy
	}{
		{"nothing configured", quote.Selection{}, quote.Direct},
		{"deposit protocol", quote.Selection{DepositProtocol: true}, quote.ProtocolDeposit},
		{"splits with distributor", quote.Selection{Splits: twoWay, DistributorSupported: true}, quote.SplitDistribution},
		{"splits beat protocol", quote.Selection{Splits: twoWay, DistributorSupported: true, DepositProtocol: true}, quote.SplitDistribution},
		{"splits without distributor", quote.Selection{Splits: twoWay, DepositProtocol: true}, quote.ProtocolDeposit},
		{"distributor without splits", quote.Selection{DistributorSupported: true}, quote.Direct},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, quote.Select(tc.in))
		})
	}
}

func TestParseAmount(t *testing.T) {
	v, err := quote.ParseAmount("1.5", "USDC")
	require.NoError(t, err)
	assert.Equal(t, "1500000", v.String())

	v, err = quote.ParseAmount("0.25", "ETH")
	require.NoError(t, err)
	assert.Equal(t, "250000000000000000", v.String())

	for _, empty := range []string{"", "  ", "0", "-2", "0.0000001"} {
		v, err = quote.ParseAmount(empty, "USDC")
		assert.NoError(t, err)
		assert.Nil(t, v, empty)
	}

	_, err = quote.ParseAmount("1.2.3", "USDC")
	assert.ErrorIs(t, err, quote.ErrInvalidAmount)
}

func TestQuoteWithoutAmountIsNotAnError(t *testing.T) {
	agg := &fakeAggregator{}
	in := baseIntent()
	in.FromAmount = ""
	q, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), in)
	assert.NoError(t, err)
	assert.Nil(t, q)
	assert.Empty(t, agg.quotes)
}

func TestQuoteRejectsBadIntent(t *testing.T) {
	router := quote.NewRouter(&fakeAggregator{}, quietLogger())

	in := baseIntent()
	in.Sender = ""
	_, err := router.Quote(context.Background(), in)
	assert.ErrorIs(t, err, quote.ErrNoSender)

	in = baseIntent()
	in.ToChain = "solana"
	_, err = router.Quote(context.Background(), in)
	assert.ErrorIs(t, err, networks.ErrNetworkNotFound)

	in = baseIntent()
	in.ToToken = "DAI"
	_, err = router.Quote(context.Background(), in)
	assert.ErrorIs(t, err, networks.ErrTokenNotSupported)

	in = baseIntent()
	in.Recipient = "bob.eth"
	_, err = router.Quote(context.Background(), in)
	assert.ErrorIs(t, err, quote.ErrInvalidIntent)
}

func TestDirectQuote(t *testing.T) {
	agg := &fakeAggregator{}
	in := baseIntent()
	in.Recipient = ""
	in.Protocol = "lido"

	q, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, quote.Direct, q.Strategy)
	require.Len(t, agg.quotes, 1)
	assert.Empty(t, agg.callQuote)

	req := agg.quotes[0]
	assert.Equal(t, uint64(42161), req.FromChain)
	assert.Equal(t, uint64(8453), req.ToChain)
	assert.Equal(t, "1500000", req.FromAmount)
	assert.Equal(t, common.HexToAddress(baseUSDC).Hex(), req.ToToken)
	assert.Equal(t, common.HexToAddress(payer).Hex(), req.ToAddress)

	assert.Equal(t, "1490000", q.OutputAmount)
	assert.Equal(t, "1480000", q.OutputAmountMin)
	assert.Equal(t, "1.49", q.OutputFormatted)
	assert.Equal(t, "0.12", q.GasCostUSD)
	assert.Equal(t, "Stargate", q.ToolName)
	assert.Equal(t, []string{"Swap via Stargate"}, q.Route)
	assert.Equal(t, uint64(42161), q.Transaction.ChainID)
	assert.Equal(t, common.HexToAddress(lifiDiamond), q.Transaction.To)
	assert.Equal(t, uint64(200000), q.Transaction.GasLimit)
	assert.Equal(t, 0, q.Transaction.Value.Sign())
	assert.NotEmpty(t, q.ID)
}

func TestDepositQuote(t *testing.T) {
	agg := &fakeAggregator{}
	in := baseIntent()
	in.Protocol = "aave"

	q, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, quote.ProtocolDeposit, q.Strategy)
	require.Len(t, agg.callQuote, 1)

	req := agg.callQuote[0]
	assert.Equal(t, "1490000", req.ToAmount)
	assert.Equal(t, common.HexToAddress(baseUSDC).Hex(), req.ToToken)
	assert.Equal(t, common.HexToAddress(baseAavePool).Hex(), req.ToAddress)
	assert.Equal(t, common.HexToAddress(payee).Hex(), req.ToFallbackAddress)
	require.Len(t, req.ContractCalls, 1)
	call := req.ContractCalls[0]
	assert.Equal(t, common.HexToAddress(baseAavePool).Hex(), call.ToContractAddress)
	assert.Equal(t, "1490000", call.FromAmount)

	name, args := decodeCall(t, feedmecommon.GetLendingPoolABI(), call.ToContractCallData)
	assert.Equal(t, "deposit", name)
	assert.Equal(t, common.HexToAddress(baseUSDC), args[0])
	assert.Equal(t, big.NewInt(1490000), args[1])
	assert.Equal(t, common.HexToAddress(payee), args[2])
	assert.Equal(t, uint16(0), args[3])

	// the estimate shown comes from the preliminary quote, the transaction
	// from the contract call quote
	assert.Equal(t, "1490000", q.OutputAmount)
	assert.Equal(t, "1480000", q.OutputAmountMin)
	assert.Equal(t, hexutil.Bytes{0xbb, 0xbb}, q.Transaction.Data)
	assert.Equal(t, "0.40", q.GasCostUSD)
	assert.Equal(t, "LI.FI", q.ToolName)
}

func TestDepositOfNativeAssetUsesWrappedToken(t *testing.T) {
	agg := &fakeAggregator{}
	in := baseIntent()
	in.ToToken = "ETH"
	in.Protocol = "aave"

	_, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(baseWETH).Hex(), agg.quotes[0].ToToken)
	_, args := decodeCall(t, feedmecommon.GetLendingPoolABI(), agg.callQuote[0].ContractCalls[0].ToContractCallData)
	assert.Equal(t, common.HexToAddress(baseWETH), args[0])
}

func resolvedSplits() []splits.Split {
	return []splits.Split{
		{Recipient: "bob.eth", Percentage: 60, ResolvedAddress: payee},
		{Recipient: carol, Percentage: 40, ResolvedAddress: carol},
	}
}

func TestSplitQuoteToProtocol(t *testing.T) {
	agg := &fakeAggregator{}
	in := baseIntent()
	in.Protocol = "aave"
	in.Splits = resolvedSplits()

	q, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, quote.SplitDistribution, q.Strategy)
	assert.Equal(t, common.HexToAddress(distributor).Hex(), agg.quotes[0].ToAddress)

	assert.Equal(t, common.HexToAddress(distributor).Hex(), agg.callQuote[0].ToAddress)
	call := agg.callQuote[0].ContractCalls[0]
	assert.Equal(t, common.HexToAddress(distributor).Hex(), call.ToContractAddress)
	name, args := decodeCall(t, feedmecommon.GetDistributorABI(), call.ToContractCallData)
	assert.Equal(t, "distributeToAave", name)
	assert.Equal(t, common.HexToAddress(baseUSDC), args[0])
	assert.Equal(t, common.HexToAddress(baseAavePool), args[1])
	assert.Equal(t, []common.Address{common.HexToAddress(payee), common.HexToAddress(carol)}, args[2])
	assert.Equal(t, []*big.Int{big.NewInt(6000), big.NewInt(4000)}, args[3])

	require.Len(t, q.Distribution, 2)
	assert.Equal(t, "894000", q.Distribution[0].Amount.String())
	assert.Equal(t, "596000", q.Distribution[1].Amount.String())
}

func TestSplitQuoteEntryPoints(t *testing.T) {
	tests := []struct {
		token  string
		method string
	}{
		{"ETH", "distributeETH"},
		{"USDC", "distribute"},
	}
	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			agg := &fakeAggregator{}
			in := baseIntent()
			in.ToToken = tc.token
			in.Protocol = "aerodrome"
			in.Splits = resolvedSplits()

			_, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), in)
			require.NoError(t, err)
			name, _ := decodeCall(t, feedmecommon.GetDistributorABI(), agg.callQuote[0].ContractCalls[0].ToContractCallData)
			assert.Equal(t, tc.method, name)
		})
	}
}

func TestUnresolvedSplitsBlockQuoting(t *testing.T) {
	agg := &fakeAggregator{}
	in := baseIntent()
	in.Splits = []splits.Split{{Recipient: "bob.eth", Percentage: 100}}

	_, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), in)
	assert.ErrorIs(t, err, quote.ErrUnresolvedSplits)
	assert.Empty(t, agg.quotes)
}

func TestSplitsWithoutDistributorFallBack(t *testing.T) {
	agg := &fakeAggregator{}
	in := baseIntent()
	in.ToChain = "arbitrum"
	in.Protocol = "aave"
	in.Splits = resolvedSplits()

	q, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, quote.ProtocolDeposit, q.Strategy)
}

func TestAggregatorErrorsAreClassified(t *testing.T) {
	tests := []struct {
		err     error
		kind    error
		message string
	}{
		{errors.New("No routes found for this pair"), quote.ErrNoRoute, "No route available for this swap"},
		{&lifi.APIError{Status: 404, Code: lifi.CodeNoQuote, Message: "No available quotes"}, quote.ErrNoRoute, "No route available for this swap"},
		{errors.New("insufficient liquidity in pool"), quote.ErrInsufficientLiquidity, "Insufficient liquidity"},
		{errors.New("rate limit exceeded"), quote.ErrQuoteFailed, "rate limit exceeded"},
	}
	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			agg := &fakeAggregator{quoteErr: tc.err}
			_, err := quote.NewRouter(agg, quietLogger()).Quote(context.Background(), baseIntent())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, tc.message, err.Error())
		})
	}
}

func TestStrategyText(t *testing.T) {
	text, err := quote.SplitDistribution.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "split-distribution", string(text))

	var s quote.Strategy
	require.NoError(t, s.UnmarshalText([]byte("protocol-deposit")))
	assert.Equal(t, quote.ProtocolDeposit, s)
	assert.Error(t, s.UnmarshalText([]byte("teleport")))
}

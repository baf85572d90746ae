package quote

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/lifi"
	"github.com/tranvictor/feedme/networks"
)

const depositGasLimit uint64 = 300000

// depositPool returns the pool of the route's protocol on the destination
// chain, or nil when the protocol is not deposit style or has no pool there.
func (r route) depositPool() *common.Address {
	if !networks.IsDepositProtocol(r.protocol) {
		return nil
	}
	pool, found := r.to.ProtocolPool(r.protocol)
	if !found {
		return nil
	}
	return &pool
}

// contractCalls asks the aggregator for a route paying toAmount of asset
// out to target, which is then called with data. The recipient gets the
// funds if the call reverts.
func (rt *Router) contractCalls(
	ctx context.Context,
	r route,
	asset common.Address,
	toAmount *big.Int,
	target common.Address,
	data []byte,
	gasLimit uint64,
) (*lifi.Quote, error) {
	q, err := rt.agg.GetContractCallsQuote(ctx, lifi.ContractCallsRequest{
		FromChain:         r.from.GetChainID(),
		FromToken:         r.fromToken.Hex(),
		FromAddress:       r.sender.Hex(),
		ToChain:           r.to.GetChainID(),
		ToToken:           asset.Hex(),
		ToAmount:          toAmount.String(),
		ToAddress:         target.Hex(),
		ToFallbackAddress: r.recipient.Hex(),
		ContractCalls: []lifi.ContractCall{{
			FromAmount:         toAmount.String(),
			FromTokenAddress:   asset.Hex(),
			ToContractAddress:  target.Hex(),
			ToContractCallData: hexutil.Encode(data),
			ToContractGasLimit: strconv.FormatUint(gasLimit, 10),
		}},
	})
	return q, classify(err)
}

func expectedOutput(q *lifi.Quote) (*big.Int, error) {
	out, err := parseQuantity(q.Estimate.ToAmount)
	if err != nil {
		return nil, fmt.Errorf("preliminary quote output: %w", err)
	}
	if out.Sign() <= 0 {
		return nil, &Error{Kind: ErrQuoteFailed, Cause: fmt.Errorf("preliminary quote has no output")}
	}
	return out, nil
}

// deposit quotes a swap that ends in a pool deposit on behalf of the
// recipient. The preliminary quote fixes the deposited amount and is what
// the payer is shown.
func (rt *Router) deposit(ctx context.Context, r route) (*Quote, error) {
	pool := r.depositPool()
	if pool == nil {
		return nil, fmt.Errorf("%s on %s: %w", r.protocol, r.to.GetName(), networks.ErrProtocolNotSupported)
	}
	asset, err := r.depositAsset()
	if err != nil {
		return nil, err
	}

	prelim, err := rt.preliminary(ctx, r, asset.Hex(), r.recipient.Hex())
	if err != nil {
		return nil, err
	}
	toAmount, err := expectedOutput(prelim)
	if err != nil {
		return nil, err
	}

	data, err := feedmecommon.GetLendingPoolABI().Pack("deposit", asset, toAmount, r.recipient, uint16(0))
	if err != nil {
		return nil, fmt.Errorf("packing deposit: %w", err)
	}
	final, err := rt.contractCalls(ctx, r, asset, toAmount, *pool, data, depositGasLimit)
	if err != nil {
		return nil, err
	}
	return normalize(ProtocolDeposit, r, prelim, final)
}

package quote

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/splits"
)

const (
	distributionBaseGas      uint64 = 100000
	distributionRecipientGas uint64 = 60000
	protocolRecipientGas     uint64 = 250000
)

func distributionGasLimit(recipients int, toProtocol bool) uint64 {
	per := distributionRecipientGas
	if toProtocol {
		per = protocolRecipientGas
	}
	return distributionBaseGas + per*uint64(recipients)
}

// distributorCall picks the distributor entry point: deposit into the pool
// for every recipient, pay out the native asset, or pay out a token.
func distributorCall(asset common.Address, pool *common.Address, recipients []common.Address, bps []*big.Int) ([]byte, error) {
	distributor := feedmecommon.GetDistributorABI()
	switch {
	case pool != nil:
		return distributor.Pack("distributeToAave", asset, *pool, recipients, bps)
	case asset == common.HexToAddress(networks.NativeToken):
		return distributor.Pack("distributeETH", recipients, bps)
	default:
		return distributor.Pack("distribute", asset, recipients, bps)
	}
}

// split quotes a swap into the destination chain's distributor, which pays
// every recipient its share. Every recipient must already be resolved.
func (rt *Router) split(ctx context.Context, r route) (*Quote, error) {
	if !splits.AllResolved(r.splits) {
		return nil, ErrUnresolvedSplits
	}
	if v := splits.Validate(r.splits); !v.IsValid {
		return nil, v.Err()
	}
	recipients, bps, err := splits.DistributorArgs(r.splits)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedSplits, err)
	}
	distributor, _ := r.to.DistributorContract()

	pool := r.depositPool()
	asset := r.toToken
	if pool != nil {
		if asset, err = r.depositAsset(); err != nil {
			return nil, err
		}
	}

	prelim, err := rt.preliminary(ctx, r, asset.Hex(), distributor.Hex())
	if err != nil {
		return nil, err
	}
	toAmount, err := expectedOutput(prelim)
	if err != nil {
		return nil, err
	}

	data, err := distributorCall(asset, pool, recipients, bps)
	if err != nil {
		return nil, fmt.Errorf("packing distribution: %w", err)
	}
	final, err := rt.contractCalls(ctx, r, asset, toAmount, distributor, data, distributionGasLimit(len(recipients), pool != nil))
	if err != nil {
		return nil, err
	}
	return normalize(SplitDistribution, r, prelim, final)
}

package engine

import (
	"context"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/util/reader"
)

// ChainAllowances reads allowances through one contract reader per chain.
type ChainAllowances map[uint64]reader.ContractReader

func (c ChainAllowances) Allowance(ctx context.Context, chainID uint64, token, owner, spender ethcommon.Address) (*big.Int, error) {
	r, found := c[chainID]
	if !found {
		return nil, fmt.Errorf("no reader for chain %d", chainID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var allowance *big.Int
	if err := r.ReadContractWithABI(&allowance, token.Hex(), common.GetERC20ABI(), "allowance", owner, spender); err != nil {
		return nil, err
	}
	return allowance, nil
}

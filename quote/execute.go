package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	feedmecommon "github.com/tranvictor/feedme/common"
)

// Wallet signs and submits transactions on whatever chain it is connected
// to.
type Wallet interface {
	Address() common.Address
	ChainID(ctx context.Context) (uint64, error)
	SwitchChain(ctx context.Context, chainID uint64) error
	SendTransaction(ctx context.Context, tx feedmecommon.TxRequest) (common.Hash, error)
}

type Execution struct {
	// Aborted is set when the wallet declined to switch to the quote's chain.
	Aborted bool        `json:"aborted"`
	ChainID uint64      `json:"chainId"`
	TxHash  common.Hash `json:"txHash"`
}

// Execute submits q's transaction, switching w to the quote's source chain
// first when needed. A refused switch aborts without an error.
func Execute(ctx context.Context, w Wallet, q *Quote, l *logrus.Logger) (Execution, error) {
	if q == nil {
		return Execution{}, ErrNoTransaction
	}
	target := q.Transaction.ChainID
	if target == 0 {
		target = q.FromChainID
	}

	current, err := w.ChainID(ctx)
	if err != nil {
		return Execution{}, fmt.Errorf("reading wallet chain: %w", err)
	}
	if current != target {
		l.WithFields(logrus.Fields{
			"from": current,
			"to":   target,
		}).Info("switching wallet chain")
		if err := w.SwitchChain(ctx, target); err != nil {
			if errors.Is(err, context.Canceled) {
				return Execution{}, err
			}
			l.WithError(err).Warn("chain switch refused, payment aborted")
			return Execution{Aborted: true, ChainID: current}, nil
		}
	}

	tx := q.Transaction
	tx.ChainID = target
	hash, err := w.SendTransaction(ctx, tx)
	if err != nil {
		return Execution{ChainID: target}, fmt.Errorf("sending transaction: %w", err)
	}
	l.WithFields(logrus.Fields{
		"quote":   q.ID,
		"tx":      hash.Hex(),
		"chainId": target,
	}).Info("payment submitted")
	return Execution{ChainID: target, TxHash: hash}, nil
}

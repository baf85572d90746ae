package account

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	feedmecommon "github.com/tranvictor/feedme/common"
)

var ErrSwitchRefused = errors.New("network switch refused")

// ChainReader is what the wallet needs from a node to fill in a transaction.
type ChainReader interface {
	GetPendingNonce(address string) (uint64, error)
	SuggestedGasSettings() (feeCap, tipCap *big.Int, err error)
	EstimateExactGas(from, to string, value *big.Int, data []byte) (uint64, error)
}

type TxBroadcaster interface {
	BroadcastTx(ctx context.Context, tx *types.Transaction) (string, bool, error)
}

// Backend is a wallet's connection to one chain.
type Backend struct {
	Reader      ChainReader
	Broadcaster TxBroadcaster
}

// BackendFactory connects to a chain by id. It fails for unsupported chains.
type BackendFactory func(chainID uint64) (Backend, error)

// Wallet signs with a local account and submits to whichever chain it is
// currently switched to.
type Wallet struct {
	account  *Account
	backends BackendFactory
	approve  func(from, to uint64) bool
	l        *logrus.Logger

	mu      sync.Mutex
	chainID uint64
	cache   map[uint64]Backend
}

func NewWallet(acc *Account, chainID uint64, backends BackendFactory, l *logrus.Logger) *Wallet {
	return &Wallet{
		account:  acc,
		backends: backends,
		l:        l,
		chainID:  chainID,
		cache:    map[uint64]Backend{},
	}
}

// OnSwitch sets the prompt asked before the wallet changes chain. Without
// one every switch is approved.
func (w *Wallet) OnSwitch(approve func(from, to uint64) bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.approve = approve
}

func (w *Wallet) Address() common.Address {
	return w.account.Address()
}

func (w *Wallet) ChainID(ctx context.Context) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID, nil
}

func (w *Wallet) backend(chainID uint64) (Backend, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, found := w.cache[chainID]; found {
		return b, nil
	}
	b, err := w.backends(chainID)
	if err != nil {
		return Backend{}, err
	}
	w.cache[chainID] = b
	return b, nil
}

func (w *Wallet) SwitchChain(ctx context.Context, chainID uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := w.backend(chainID); err != nil {
		return fmt.Errorf("switching to chain %d: %w", chainID, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.approve != nil && !w.approve(w.chainID, chainID) {
		return ErrSwitchRefused
	}
	w.chainID = chainID
	return nil
}

// SendTransaction signs req for the wallet's current chain and broadcasts
// it. A zero gas limit is estimated by the node.
func (w *Wallet) SendTransaction(ctx context.Context, req feedmecommon.TxRequest) (common.Hash, error) {
	chainID, _ := w.ChainID(ctx)
	if req.ChainID != 0 && req.ChainID != chainID {
		return common.Hash{}, fmt.Errorf("transaction is for chain %d but wallet is on %d", req.ChainID, chainID)
	}
	req.ChainID = chainID
	b, err := w.backend(chainID)
	if err != nil {
		return common.Hash{}, err
	}
	from := w.Address().Hex()

	nonce, err := b.Reader.GetPendingNonce(from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}
	feeCap, tipCap, err := b.Reader.SuggestedGasSettings()
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}
	if req.GasLimit == 0 {
		value := req.Value
		if value == nil {
			value = big.NewInt(0)
		}
		req.GasLimit, err = b.Reader.EstimateExactGas(from, req.To.Hex(), value, req.Data)
		if err != nil {
			return common.Hash{}, fmt.Errorf("estimating gas: %w", err)
		}
	}

	tx := feedmecommon.BuildExactTx(nonce, req, feeCap, tipCap)
	signed, err := w.account.SignTx(tx, new(big.Int).SetUint64(chainID))
	if err != nil {
		return common.Hash{}, err
	}
	hash, broadcasted, err := b.Broadcaster.BroadcastTx(ctx, signed)
	if !broadcasted {
		return common.Hash{}, fmt.Errorf("couldn't broadcast tx: %w", err)
	}
	w.l.WithFields(logrus.Fields{
		"tx":      hash,
		"chainId": chainID,
		"nonce":   nonce,
	}).Debug("broadcasted")
	return signed.Hash(), nil
}

package reader

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tranvictor/feedme/common"
)

var DEFAULT_ADDRESS string = common.NullAddress

// EthReader fans every read out to all configured nodes of one network and
// returns the first successful answer.
type EthReader struct {
	nodes map[string]EthereumNode
}

func NewEthReaderGeneric(nodes map[string]string) *EthReader {
	ns := map[string]EthereumNode{}
	for name, c := range nodes {
		ns[name] = NewOneNodeReader(name, c)
	}
	return NewEthReaderWithNodes(ns)
}

func NewEthReaderWithNodes(nodes map[string]EthereumNode) *EthReader {
	return &EthReader{nodes: nodes}
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type nodeResult[T any] struct {
	value T
	err   error
}

func firstSuccess[T any](er *EthReader, read func(n EthereumNode) (T, error)) (T, error) {
	resCh := make(chan nodeResult[T], len(er.nodes))
	for i := range er.nodes {
		n := er.nodes[i]
		go func() {
			v, err := read(n)
			resCh <- nodeResult[T]{value: v, err: wrapError(err, n.NodeName())}
		}()
	}
	errs := []error{}
	for i := 0; i < len(er.nodes); i++ {
		result := <-resCh
		if result.err == nil {
			return result.value, nil
		}
		errs = append(errs, result.err)
	}
	var zero T
	if len(errs) == 0 {
		return zero, fmt.Errorf("no nodes configured")
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (er *EthReader) EstimateExactGas(from, to string, value *big.Int, data []byte) (uint64, error) {
	return firstSuccess(er, func(n EthereumNode) (uint64, error) {
		return n.EstimateGas(from, to, value, data)
	})
}

func (er *EthReader) GetPendingNonce(address string) (uint64, error) {
	return firstSuccess(er, func(n EthereumNode) (uint64, error) {
		return n.GetPendingNonce(address)
	})
}

func (er *EthReader) TransactionReceipt(txHash string) (*types.Receipt, error) {
	return firstSuccess(er, func(n EthereumNode) (*types.Receipt, error) {
		return n.TransactionReceipt(txHash)
	})
}

type txByHash struct {
	tx        *common.Transaction
	isPending bool
}

func (er *EthReader) TransactionByHash(txHash string) (*common.Transaction, bool, error) {
	res, err := firstSuccess(er, func(n EthereumNode) (txByHash, error) {
		tx, isPending, err := n.TransactionByHash(txHash)
		return txByHash{tx, isPending}, err
	})
	return res.tx, res.isPending, err
}

func (er *EthReader) HeaderByNumber(number int64) (*types.Header, error) {
	return firstSuccess(er, func(n EthereumNode) (*types.Header, error) {
		return n.HeaderByNumber(number)
	})
}

// TxInfoFromHash reports a transaction's status. A transaction no node knows
// about is reported as lost rather than as an error.
func (er *EthReader) TxInfoFromHash(tx string) (common.TxInfo, error) {
	txObj, isPending, err := er.TransactionByHash(tx)
	if err != nil {
		return common.TxInfo{Status: common.TxStatusLost}, nil
	}
	if isPending {
		return common.TxInfo{Status: common.TxStatusPending, Tx: txObj}, nil
	}
	receipt, err := er.TransactionReceipt(tx)
	if err != nil || receipt == nil {
		return common.TxInfo{Status: common.TxStatusPending, Tx: txObj}, nil
	}
	status := common.TxStatusDone
	if receipt.Status != types.ReceiptStatusSuccessful {
		status = common.TxStatusReverted
	}
	return common.TxInfo{Status: status, Tx: txObj, Receipt: receipt}, nil
}

// SuggestedGasSettings returns the fee cap and tip for a dynamic fee
// transaction. The tip is nil on chains without a base fee, where the fee
// cap is a legacy gas price.
func (er *EthReader) SuggestedGasSettings() (feeCap, tipCap *big.Int, err error) {
	header, err := er.HeaderByNumber(-1)
	if err != nil {
		return nil, nil, err
	}
	if header.BaseFee == nil || header.BaseFee.Sign() == 0 {
		price, err := firstSuccess(er, func(n EthereumNode) (*big.Int, error) {
			return n.SuggestedGasPrice()
		})
		return price, nil, err
	}
	tipCap, err = firstSuccess(er, func(n EthereumNode) (*big.Int, error) {
		return n.SuggestedGasTipCap()
	})
	if err != nil {
		return nil, nil, err
	}
	feeCap = new(big.Int).Mul(header.BaseFee, big.NewInt(2))
	feeCap.Add(feeCap, tipCap)
	return feeCap, tipCap, nil
}

func (er *EthReader) ReadContractToBytes(
	atBlock int64,
	from string,
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) ([]byte, error) {
	return firstSuccess(er, func(n EthereumNode) ([]byte, error) {
		return n.ReadContractToBytes(atBlock, from, caddr, abi, method, args...)
	})
}

func (er *EthReader) ReadHistoryContractWithABI(
	atBlock int64,
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) error {
	responseBytes, err := er.ReadContractToBytes(atBlock, DEFAULT_ADDRESS, caddr, abi, method, args...)
	if err != nil {
		return err
	}
	return abi.UnpackIntoInterface(result, method, responseBytes)
}

func (er *EthReader) ReadContractWithABI(
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) error {
	return er.ReadHistoryContractWithABI(-1, result, caddr, abi, method, args...)
}

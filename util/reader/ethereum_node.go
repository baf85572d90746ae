package reader

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tranvictor/feedme/common"
)

type EthereumNode interface {
	NodeName() string
	NodeURL() string
	EstimateGas(from, to string, value *big.Int, data []byte) (gas uint64, err error)
	GetPendingNonce(address string) (nonce uint64, err error)
	TransactionReceipt(txHash string) (receipt *types.Receipt, err error)
	TransactionByHash(txHash string) (tx *common.Transaction, isPending bool, err error)
	SuggestedGasTipCap() (*big.Int, error)
	SuggestedGasPrice() (*big.Int, error)
	ReadContractToBytes(
		atBlock int64,
		from string,
		caddr string,
		abi *abi.ABI,
		method string,
		args ...interface{},
	) ([]byte, error)
	HeaderByNumber(number int64) (*types.Header, error)
}

// ContractReader is the read side other packages depend on. EthReader
// implements it against live nodes, tests implement it in memory.
type ContractReader interface {
	ReadContractWithABI(result interface{}, caddr string, abi *abi.ABI, method string, args ...interface{}) error
	ReadHistoryContractWithABI(atBlock int64, result interface{}, caddr string, abi *abi.ABI, method string, args ...interface{}) error
}

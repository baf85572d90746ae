package reader

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	feedmecommon "github.com/tranvictor/feedme/common"
)

var DO_NOTHING_MC_ONE_RESULT_HANDLER MCOneResultHandler = func(result interface{}) error { return nil }

type MCOneResultHandler func(result interface{}) error

// Call is one entry of a multicall aggregate.
type Call struct {
	Target   common.Address
	CallData []byte
}

// AggregateResult is what the multicall contract's aggregate returns.
type AggregateResult struct {
	BlockNumber *big.Int
	ReturnData  [][]byte
}

// MultipleCall batches independent view calls into a single aggregate
// eth_call so they are answered from the same block in one round trip.
type MultipleCall struct {
	r        ContractReader
	contract string
	mcABI    *abi.ABI
	results  []interface{}
	caddrs   []string
	abis     []*abi.ABI
	methods  []string
	argLists [][]interface{}
	hooks    []MCOneResultHandler
}

func NewMultiCall(r ContractReader, mcContract string) *MultipleCall {
	return &MultipleCall{
		r:        r,
		contract: mcContract,
		mcABI:    feedmecommon.GetMultiCallABI(),
	}
}

func (mc *MultipleCall) RegisterWithHook(
	result interface{},
	hook MCOneResultHandler,
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) *MultipleCall {
	mc.results = append(mc.results, result)
	mc.caddrs = append(mc.caddrs, caddr)
	mc.abis = append(mc.abis, abi)
	mc.methods = append(mc.methods, method)
	mc.argLists = append(mc.argLists, args)
	mc.hooks = append(mc.hooks, hook)
	return mc
}

func (mc *MultipleCall) Register(
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) *MultipleCall {
	return mc.RegisterWithHook(
		result,
		DO_NOTHING_MC_ONE_RESULT_HANDLER,
		caddr,
		abi,
		method,
		args...,
	)
}

// Len is the number of registered calls.
func (mc *MultipleCall) Len() int {
	return len(mc.results)
}

func (mc *MultipleCall) callMCContract(atBlock int64) (block int64, err error) {
	res := AggregateResult{}

	calls := []Call{}
	for i, caddr := range mc.caddrs {
		data, err := mc.abis[i].Pack(mc.methods[i], mc.argLists[i]...)
		if err != nil {
			return 0, err
		}

		calls = append(calls, Call{feedmecommon.HexToAddress(caddr), data})
	}

	err = mc.r.ReadHistoryContractWithABI(
		atBlock,
		&res,
		mc.contract,
		mc.mcABI,
		"aggregate",
		calls,
	)
	if err != nil {
		return 0, fmt.Errorf("reading mc.aggregate failed: %w", err)
	}
	if len(res.ReturnData) != len(mc.results) {
		return 0, fmt.Errorf("mc.aggregate returned %d results for %d calls", len(res.ReturnData), len(mc.results))
	}

	for i := range mc.results {
		err = mc.abis[i].UnpackIntoInterface(
			mc.results[i],
			mc.methods[i],
			res.ReturnData[i],
		)
		if err != nil {
			return 0, fmt.Errorf("unpacking call index %d failed: %w", i, err)
		}
	}
	if res.BlockNumber == nil {
		return 0, nil
	}
	return res.BlockNumber.Int64(), nil
}

func (mc *MultipleCall) Do(atBlock int64) (block int64, err error) {
	if len(mc.results) == 0 {
		return 0, nil
	}
	block, err = mc.callMCContract(atBlock)
	if err != nil {
		return 0, fmt.Errorf("calling mc contract failed: %w", err)
	}

	for i, result := range mc.results {
		err = mc.hooks[i](result)
		if err != nil {
			return 0, fmt.Errorf("calling hook at index %d failed: %w", i, err)
		}
	}

	return block, nil
}

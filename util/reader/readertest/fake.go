// Package readertest provides an in-memory chain that answers contract reads
// at the ABI level, including multicall aggregates.
package readertest

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/tranvictor/feedme/util/reader"
)

// Handler receives decoded call arguments and returns the output values.
type Handler func(args []interface{}) ([]interface{}, error)

type FakeChain struct {
	mu       sync.Mutex
	handlers map[string]Handler
	abis     map[string]*abi.ABI
	calls    []string
}

func NewFakeChain() *FakeChain {
	return &FakeChain{
		handlers: map[string]Handler{},
		abis:     map[string]*abi.ABI{},
	}
}

func key(addr, method string) string {
	return strings.ToLower(addr) + "." + method
}

// Handle registers h for method on the contract at addr.
func (f *FakeChain) Handle(addr string, a *abi.ABI, method string, h Handler) *FakeChain {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[key(addr, method)] = h
	f.abis[strings.ToLower(addr)] = a
	return f
}

// Returns registers a handler that always answers with values.
func (f *FakeChain) Returns(addr string, a *abi.ABI, method string, values ...interface{}) *FakeChain {
	return f.Handle(addr, a, method, func([]interface{}) ([]interface{}, error) {
		return values, nil
	})
}

// Fails registers a handler that always fails.
func (f *FakeChain) Fails(addr string, a *abi.ABI, method string, err error) *FakeChain {
	return f.Handle(addr, a, method, func([]interface{}) ([]interface{}, error) {
		return nil, err
	})
}

// Calls lists every contract method invoked so far as "address.method",
// including the multicall aggregate and each call batched inside it.
func (f *FakeChain) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *FakeChain) dispatch(addr string, method string, args []interface{}) ([]interface{}, error) {
	f.mu.Lock()
	h, found := f.handlers[key(addr, method)]
	f.calls = append(f.calls, key(addr, method))
	f.mu.Unlock()
	if !found {
		return nil, fmt.Errorf("execution reverted: no handler for %s", key(addr, method))
	}
	return h(args)
}

func (f *FakeChain) aggregate(calls []reader.Call) (*reader.AggregateResult, error) {
	res := &reader.AggregateResult{BlockNumber: big.NewInt(1)}
	for _, c := range calls {
		f.mu.Lock()
		a, found := f.abis[strings.ToLower(c.Target.Hex())]
		f.mu.Unlock()
		if !found || len(c.CallData) < 4 {
			return nil, fmt.Errorf("execution reverted: unknown target %s", c.Target.Hex())
		}
		m, err := a.MethodById(c.CallData[:4])
		if err != nil {
			return nil, err
		}
		args, err := m.Inputs.Unpack(c.CallData[4:])
		if err != nil {
			return nil, err
		}
		outs, err := f.dispatch(c.Target.Hex(), m.Name, args)
		if err != nil {
			return nil, err
		}
		packed, err := m.Outputs.Pack(outs...)
		if err != nil {
			return nil, err
		}
		res.ReturnData = append(res.ReturnData, packed)
	}
	return res, nil
}

func (f *FakeChain) ReadHistoryContractWithABI(atBlock int64, result interface{}, caddr string, a *abi.ABI, method string, args ...interface{}) error {
	if method == "aggregate" && len(args) == 1 {
		if calls, ok := args[0].([]reader.Call); ok {
			f.mu.Lock()
			f.calls = append(f.calls, key(caddr, method))
			f.mu.Unlock()
			res, err := f.aggregate(calls)
			if err != nil {
				return err
			}
			*result.(*reader.AggregateResult) = *res
			return nil
		}
	}
	outs, err := f.dispatch(caddr, method, args)
	if err != nil {
		return err
	}
	packed, err := a.Methods[method].Outputs.Pack(outs...)
	if err != nil {
		return err
	}
	return a.UnpackIntoInterface(result, method, packed)
}

func (f *FakeChain) ReadContractWithABI(result interface{}, caddr string, a *abi.ABI, method string, args ...interface{}) error {
	return f.ReadHistoryContractWithABI(-1, result, caddr, a, method, args...)
}

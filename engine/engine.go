// Package engine is the surface the CLI and the server drive: every
// operation returns a result and an error.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/ens"
	"github.com/tranvictor/feedme/feeders"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/quote"
	"github.com/tranvictor/feedme/splits"
)

var (
	ErrNotOwner     = errors.New("signer is not the owner of the name")
	ErrEmptyName    = errors.New("name is required")
	ErrNotAvailable = errors.New("operation not available")
)

// NameService reads and writes name records.
type NameService interface {
	ResolveConfig(ctx context.Context, name string) (ens.NameConfig, error)
	ResolveOwner(ctx context.Context, name string) ens.Ownership
	BuildSetConfigTx(ctx context.Context, name string, config ens.PaymentConfig) (common.TxRequest, error)
	AddressOf(ctx context.Context, name string) (ethcommon.Address, error)
}

type OwnedNamesSource interface {
	OwnedNames(ctx context.Context, owner ethcommon.Address) ([]ens.OwnedName, error)
}

type FeedSource interface {
	RecentFeeders(ctx context.Context, recipient string, preferred uint64) ([]feeders.Feeder, error)
}

// AllowanceReader reads ERC20 allowances on a chain.
type AllowanceReader interface {
	Allowance(ctx context.Context, chainID uint64, token, owner, spender ethcommon.Address) (*big.Int, error)
}

type Engine struct {
	names      NameService
	owned      OwnedNamesSource
	quoter     quote.Quoter
	feeds      FeedSource
	allowances AllowanceReader
	l          *logrus.Logger
}

type Options struct {
	Names      NameService
	OwnedNames OwnedNamesSource
	Quoter     quote.Quoter
	Feeds      FeedSource
	Allowances AllowanceReader
}

func New(opts Options, l *logrus.Logger) *Engine {
	return &Engine{
		names:      opts.Names,
		owned:      opts.OwnedNames,
		quoter:     opts.Quoter,
		feeds:      opts.Feeds,
		allowances: opts.Allowances,
		l:          l,
	}
}

func normalized(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	return ens.Normalize(name), nil
}

func (e *Engine) ResolveConfig(ctx context.Context, name string) (ens.NameConfig, error) {
	name, err := normalized(name)
	if err != nil {
		return ens.NameConfig{}, err
	}
	return e.names.ResolveConfig(ctx, name)
}

// ResolveOwner never fails on read errors: they yield an unknown owner.
func (e *Engine) ResolveOwner(ctx context.Context, name string) (ens.Ownership, error) {
	name, err := normalized(name)
	if err != nil {
		return ens.Ownership{}, err
	}
	return e.names.ResolveOwner(ctx, name), nil
}

// BuildConfigTx returns the unsigned transaction writing config to name
// from the address from. from must be the name's effective owner.
func (e *Engine) BuildConfigTx(ctx context.Context, name string, config ens.PaymentConfig, from ethcommon.Address) (common.TxRequest, error) {
	name, err := normalized(name)
	if err != nil {
		return common.TxRequest{}, err
	}
	if err := ValidateConfig(config); err != nil {
		return common.TxRequest{}, err
	}
	owner := e.names.ResolveOwner(ctx, name)
	if !owner.Known() || owner.Owner != from {
		e.l.WithFields(logrus.Fields{
			"name":   name,
			"owner":  owner.Owner.Hex(),
			"signer": from.Hex(),
		}).Warn("config write refused")
		return common.TxRequest{}, ErrNotOwner
	}
	return e.names.BuildSetConfigTx(ctx, name, config)
}

// SetConfig writes config to name in one transaction signed by signer. The
// signer must be the name's effective owner; otherwise nothing is built or
// sent.
func (e *Engine) SetConfig(ctx context.Context, name string, config ens.PaymentConfig, signer quote.Wallet) (ethcommon.Hash, error) {
	tx, err := e.BuildConfigTx(ctx, name, config, signer.Address())
	if err != nil {
		return ethcommon.Hash{}, err
	}
	current, err := signer.ChainID(ctx)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("reading wallet chain: %w", err)
	}
	if current != tx.ChainID {
		if err := signer.SwitchChain(ctx, tx.ChainID); err != nil {
			return ethcommon.Hash{}, fmt.Errorf("switching to %d: %w", tx.ChainID, err)
		}
	}
	hash, err := signer.SendTransaction(ctx, tx)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("sending config: %w", err)
	}
	e.l.WithFields(logrus.Fields{
		"name": ens.Normalize(name),
		"tx":   hash.Hex(),
	}).Info("config submitted")
	return hash, nil
}

// ValidateSplits checks already parsed splits.
func (e *Engine) ValidateSplits(s []splits.Split) splits.Validation {
	return splits.Validate(s)
}

// ResolveSplits looks up every name in s. Calls are independent of each
// other; SplitTracker gives latest-input-wins within one session.
func (e *Engine) ResolveSplits(ctx context.Context, s []splits.Split) ([]splits.Split, error) {
	if e.names == nil {
		return nil, ErrNotAvailable
	}
	resolved, err := splits.Resolve(ctx, s, e.names)
	if err != nil {
		return nil, fmt.Errorf("resolving splits: %w", err)
	}
	return resolved, nil
}

// SplitTracker returns a tracker for one editing session, or nil when the
// engine has no name service.
func (e *Engine) SplitTracker() *splits.Tracker {
	if e.names == nil {
		return nil
	}
	return splits.NewTracker(e.names)
}

func (e *Engine) GetQuote(ctx context.Context, in quote.Intent) (*quote.Quote, error) {
	if e.quoter == nil {
		return nil, ErrNotAvailable
	}
	return e.quoter.Quote(ctx, in)
}

// Quote lets a live quote session price intents through the engine.
func (e *Engine) Quote(ctx context.Context, in quote.Intent) (*quote.Quote, error) {
	return e.GetQuote(ctx, in)
}

var _ quote.Quoter = (*Engine)(nil)

// ExecuteQuote submits q from w, switching w to the quote's chain first.
func (e *Engine) ExecuteQuote(ctx context.Context, w quote.Wallet, q *quote.Quote) (quote.Execution, error) {
	return quote.Execute(ctx, w, q, e.l)
}

func (e *Engine) GetRecentFeeders(ctx context.Context, recipient string, preferred uint64) ([]feeders.Feeder, error) {
	if e.feeds == nil {
		return nil, ErrNotAvailable
	}
	if !common.IsAddress(recipient) {
		return nil, fmt.Errorf("invalid recipient %q", recipient)
	}
	return e.feeds.RecentFeeders(ctx, recipient, preferred)
}

func (e *Engine) OwnedNames(ctx context.Context, owner ethcommon.Address) ([]ens.OwnedName, error) {
	if e.owned == nil {
		return nil, ErrNotAvailable
	}
	return e.owned.OwnedNames(ctx, owner)
}

// AddressOf returns target itself when it is an address and the address the
// name resolves to otherwise.
func (e *Engine) AddressOf(ctx context.Context, target string) (ethcommon.Address, error) {
	if common.IsAddress(target) {
		return ethcommon.HexToAddress(target), nil
	}
	name, err := normalized(target)
	if err != nil {
		return ethcommon.Address{}, err
	}
	return e.names.AddressOf(ctx, name)
}

// PaymentIntent builds the intent of paying amount of fromToken on fromChain
// to name according to its published config. Split recipients are resolved.
func (e *Engine) PaymentIntent(ctx context.Context, name, fromChain, fromToken, amount string, sender ethcommon.Address) (quote.Intent, ens.NameConfig, error) {
	nc, err := e.ResolveConfig(ctx, name)
	if err != nil {
		return quote.Intent{}, nc, err
	}
	if !nc.Configured {
		return quote.Intent{}, nc, fmt.Errorf("%s: %w", nc.Name, ens.ErrNotConfigured)
	}
	recipient, err := e.names.AddressOf(ctx, nc.Name)
	if err != nil {
		return quote.Intent{}, nc, err
	}

	in := quote.Intent{
		FromChain:  fromChain,
		FromToken:  fromToken,
		FromAmount: amount,
		ToChain:    nc.Config.Chain,
		ToToken:    nc.Config.Token,
		Sender:     sender.Hex(),
		Recipient:  recipient.Hex(),
		Protocol:   nc.Config.Protocol,
	}
	if in.FromChain == "" {
		in.FromChain = nc.Config.Chain
	}
	if in.FromToken == "" {
		in.FromToken = nc.Config.Token
	}
	if nc.Config.Splits != "" {
		parsed, err := ValidateSplits(nc.Config.Splits)
		if err != nil {
			return quote.Intent{}, nc, err
		}
		in.Splits, err = e.ResolveSplits(ctx, parsed)
		if err != nil {
			return quote.Intent{}, nc, err
		}
	}
	return in, nc, nil
}

// ApprovalTx returns the ERC20 approval q needs before it can be executed
// by owner, or nil when the current allowance already covers it.
func (e *Engine) ApprovalTx(ctx context.Context, q *quote.Quote, owner ethcommon.Address) (*common.TxRequest, error) {
	if q == nil || q.ApprovalAddress == "" || e.allowances == nil {
		return nil, nil
	}
	if q.FromToken == ethcommon.HexToAddress(networks.NativeToken) {
		return nil, nil
	}
	spender := ethcommon.HexToAddress(q.ApprovalAddress)
	allowance, err := e.allowances.Allowance(ctx, q.FromChainID, q.FromToken, owner, spender)
	if err != nil {
		return nil, fmt.Errorf("reading allowance: %w", err)
	}
	if allowance.Cmp(q.FromAmount) >= 0 {
		return nil, nil
	}
	data, err := common.PackERC20Data("approve", spender, q.FromAmount)
	if err != nil {
		return nil, err
	}
	return &common.TxRequest{
		ChainID: q.FromChainID,
		To:      q.FromToken,
		Data:    data,
		Value:   big.NewInt(0),
	}, nil
}

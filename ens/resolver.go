package ens

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/metrics"
	"github.com/tranvictor/feedme/util/reader"
)

// MainnetChainID is where the registry lives. Config writes target it.
const MainnetChainID uint64 = 1

var (
	ErrNameNotFound  = errors.New("name not found")
	ErrNotConfigured = errors.New("name has no payment config")
)

// Cache remembers reverse lookups for when the chain cannot be read.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

type NameConfig struct {
	Name       string        `json:"name"`
	Node       common.Hash   `json:"node"`
	Resolver   string        `json:"resolver"`
	Config     PaymentConfig `json:"config"`
	Configured bool          `json:"configured"`
}

type Resolver struct {
	r         reader.ContractReader
	multicall string
	cache     Cache
	l         *logrus.Logger
}

// NewResolver reads ENS through r. Batched reads go through the multicall
// contract at multicall. cache may be nil.
func NewResolver(r reader.ContractReader, multicall string, cache Cache, l *logrus.Logger) *Resolver {
	return &Resolver{
		r:         r,
		multicall: multicall,
		cache:     cache,
		l:         l,
	}
}

// ResolverOf returns the resolver recorded for node, or the public resolver
// when the registry has none.
func (r *Resolver) ResolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, err
	}
	var resolver common.Address
	err := r.r.ReadContractWithABI(
		&resolver,
		RegistryAddress,
		feedmecommon.GetENSRegistryABI(),
		"resolver",
		node,
	)
	metrics.ObserveExternal("ens_registry", err)
	if err != nil {
		return common.Address{}, fmt.Errorf("reading resolver: %w", err)
	}
	if resolver == (common.Address{}) {
		return common.HexToAddress(PublicResolverAddress), nil
	}
	return resolver, nil
}

// ResolveConfig reads every payment config record of name in one batch.
// A name whose chain, token or protocol is empty comes back with
// Configured false.
func (r *Resolver) ResolveConfig(ctx context.Context, name string) (NameConfig, error) {
	name = Normalize(name)
	if name == "" {
		return NameConfig{}, fmt.Errorf("empty name: %w", ErrNameNotFound)
	}
	node := Namehash(name)
	resolver, err := r.ResolverOf(ctx, node)
	if err != nil {
		return NameConfig{}, err
	}

	values := make([]string, len(ConfigKeys))
	mc := reader.NewMultiCall(r.r, r.multicall)
	for i, key := range ConfigKeys {
		mc.Register(&values[i], resolver.Hex(), feedmecommon.GetENSResolverABI(), "text", node, key)
	}
	_, err = mc.Do(-1)
	metrics.ObserveExternal("ens_resolver", err)
	if err != nil {
		return NameConfig{}, fmt.Errorf("reading text records of %s: %w", name, err)
	}

	records := map[string]string{}
	for i, key := range ConfigKeys {
		records[key] = values[i]
	}
	config := configFromRecords(records)
	r.l.WithFields(logrus.Fields{
		"name":       name,
		"resolver":   resolver.Hex(),
		"configured": config.IsSet(),
	}).Debug("resolved payment config")

	return NameConfig{
		Name:       name,
		Node:       node,
		Resolver:   resolver.Hex(),
		Config:     config,
		Configured: config.IsSet(),
	}, nil
}

// ResolveOwner reads the registry owner and the name wrapper owner in one
// multicall batch and reconciles the answers. A failed batch yields an
// unknown owner.
func (r *Resolver) ResolveOwner(ctx context.Context, name string) Ownership {
	name = Normalize(name)
	if name == "" || ctx.Err() != nil {
		return Ownership{Kind: OwnershipUnknown}
	}
	node := Namehash(name)

	var registryOwner, wrapperOwner common.Address
	_, err := reader.NewMultiCall(r.r, r.multicall).
		Register(&registryOwner, RegistryAddress, feedmecommon.GetENSRegistryABI(), "owner", node).
		Register(&wrapperOwner, NameWrapperAddress, feedmecommon.GetNameWrapperABI(), "ownerOf", TokenID(node)).
		Do(-1)
	metrics.ObserveExternal("ens_registry", err)
	if err != nil {
		r.l.WithFields(logrus.Fields{
			"name":  name,
			"error": err,
		}).Debug("owner lookup failed")
		return Ownership{Kind: OwnershipUnknown}
	}

	ownership := Reconcile(&registryOwner, &wrapperOwner)
	r.l.WithFields(logrus.Fields{
		"name":  name,
		"kind":  ownership.Kind.String(),
		"owner": ownership.Owner.Hex(),
	}).Debug("resolved owner")
	return ownership
}

// BuildSetConfigTx packs every record of config into a single resolver
// multicall so the records are written together or not at all.
func (r *Resolver) BuildSetConfigTx(ctx context.Context, name string, config PaymentConfig) (feedmecommon.TxRequest, error) {
	name = Normalize(name)
	if name == "" {
		return feedmecommon.TxRequest{}, fmt.Errorf("empty name: %w", ErrNameNotFound)
	}
	node := Namehash(name)
	resolver, err := r.ResolverOf(ctx, node)
	if err != nil {
		return feedmecommon.TxRequest{}, err
	}

	resolverABI := feedmecommon.GetENSResolverABI()
	calls := [][]byte{}
	for _, record := range config.Records() {
		data, err := resolverABI.Pack("setText", node, record.Key, record.Value)
		if err != nil {
			return feedmecommon.TxRequest{}, fmt.Errorf("packing %s: %w", record.Key, err)
		}
		calls = append(calls, data)
	}
	data, err := resolverABI.Pack("multicall", calls)
	if err != nil {
		return feedmecommon.TxRequest{}, fmt.Errorf("packing multicall: %w", err)
	}
	return feedmecommon.TxRequest{
		ChainID: MainnetChainID,
		To:      resolver,
		Data:    data,
		Value:   big.NewInt(0),
	}, nil
}

// AddressOf resolves name to the address its resolver points at.
func (r *Resolver) AddressOf(ctx context.Context, name string) (common.Address, error) {
	name = Normalize(name)
	node := Namehash(name)
	resolver, err := r.ResolverOf(ctx, node)
	if err != nil {
		return common.Address{}, err
	}
	var addr common.Address
	err = r.r.ReadContractWithABI(&addr, resolver.Hex(), feedmecommon.GetENSResolverABI(), "addr", node)
	metrics.ObserveExternal("ens_resolver", err)
	if err != nil {
		return common.Address{}, fmt.Errorf("reading address of %s: %w", name, err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s: %w", name, ErrNameNotFound)
	}
	return addr, nil
}

func (r *Resolver) reverse(ctx context.Context, addr common.Address) (string, error) {
	node := Namehash(ReverseName(addr))
	var resolver common.Address
	err := r.r.ReadContractWithABI(&resolver, RegistryAddress, feedmecommon.GetENSRegistryABI(), "resolver", node)
	metrics.ObserveExternal("ens_registry", err)
	if err != nil {
		return "", fmt.Errorf("reading reverse resolver: %w", err)
	}
	if resolver == (common.Address{}) {
		return "", ErrNameNotFound
	}
	var name string
	err = r.r.ReadContractWithABI(&name, resolver.Hex(), feedmecommon.GetENSResolverABI(), "name", node)
	metrics.ObserveExternal("ens_resolver", err)
	if err != nil {
		return "", fmt.Errorf("reading reverse record: %w", err)
	}
	if name == "" {
		return "", ErrNameNotFound
	}
	forward, err := r.AddressOf(ctx, name)
	if err != nil {
		return "", err
	}
	if forward != addr {
		return "", fmt.Errorf("%s does not point back to %s: %w", name, addr.Hex(), ErrNameNotFound)
	}
	return name, nil
}

// NameOf returns the primary name of addr after checking that the name
// resolves back to addr. When the chain cannot be read the last known name
// is served from the cache.
func (r *Resolver) NameOf(ctx context.Context, addr common.Address) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := r.reverse(ctx, addr)
	if err == nil {
		if r.cache != nil {
			if cerr := r.cache.Set(addr.Hex(), name); cerr != nil {
				r.l.WithError(cerr).Debug("couldn't cache reverse name")
			}
		}
		return name, nil
	}
	if errors.Is(err, ErrNameNotFound) {
		return "", err
	}
	if r.cache != nil {
		if cached, found := r.cache.Get(addr.Hex()); found {
			r.l.WithFields(logrus.Fields{
				"address": addr.Hex(),
				"name":    cached,
			}).WithError(err).Warn("reverse lookup failed, serving cached name")
			return cached, nil
		}
	}
	return "", err
}

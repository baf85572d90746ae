// Package feeders builds the feed of recent payments received by an address
// across every supported chain.
package feeders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/metrics"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/util/explorers"
)

const (
	PerChainLimit = 5
	DisplayLimit  = 10

	// MintSender is shown for deposits whose signer could not be found.
	MintSender = "Aave"
)

type Feeder struct {
	ID                string    `json:"id"`
	Sender            string    `json:"sender"`
	SenderName        string    `json:"senderName,omitempty"`
	Amount            string    `json:"amount"`
	Token             string    `json:"token"`
	TokenAddress      string    `json:"tokenAddress"`
	Timestamp         time.Time `json:"timestamp"`
	TxHash            string    `json:"txHash"`
	ChainID           uint64    `json:"chainId"`
	IsProtocolDeposit bool      `json:"isProtocolDeposit"`
}

// NameResolver finds the primary name of an address.
type NameResolver interface {
	NameOf(ctx context.Context, addr ethcommon.Address) (string, error)
}

type Aggregator struct {
	histories  map[uint64]explorers.TransferHistory
	classifier Classifier
	names      NameResolver
	l          *logrus.Logger
}

// NewAggregator reads each chain's history from histories. A nil classifier
// means DefaultAllowList. names may be nil, in which case no sender names are
// attached.
func NewAggregator(histories map[uint64]explorers.TransferHistory, classifier Classifier, names NameResolver, l *logrus.Logger) *Aggregator {
	if classifier == nil {
		classifier = DefaultAllowList
	}
	return &Aggregator{
		histories:  histories,
		classifier: classifier,
		names:      names,
		l:          l,
	}
}

func feederID(txHash, tokenAddress string) string {
	return fmt.Sprintf("%s-%s", txHash, tokenAddress)
}

// ChainFeeders returns up to PerChainLimit payments recipient received on one
// chain.
func (a *Aggregator) ChainFeeders(ctx context.Context, chainID uint64, recipient string) ([]Feeder, error) {
	history, found := a.histories[chainID]
	if !found {
		return nil, fmt.Errorf("chain %d: %w", chainID, explorers.ErrProviderUnavailable)
	}
	transfers, err := history.TokenTransfers(ctx, recipient)
	metrics.ObserveFeederFetch(fmt.Sprint(chainID), err)
	if err != nil {
		return nil, err
	}

	kept := []explorers.TokenTransfer{}
	for _, t := range transfers {
		if !common.SameAddress(t.To, recipient) || !a.classifier.Legitimate(t) {
			continue
		}
		kept = append(kept, t)
		if len(kept) == PerChainLimit {
			break
		}
	}

	feeders := make([]Feeder, len(kept))
	lookups := errgroup.Group{}
	for i, t := range kept {
		deposit := IsProtocolDeposit(t)
		sender := t.From
		minted := common.IsNullAddress(t.From) && deposit
		if minted {
			sender = MintSender
		} else if t.FromName != "" {
			sender = t.FromName
		}
		feeders[i] = Feeder{
			ID:                feederID(t.TxHash, t.TokenAddress),
			Sender:            sender,
			Amount:            common.FormatUnits2(t.Value, t.TokenDecimals),
			Token:             DisplaySymbol(t.TokenSymbol, deposit),
			TokenAddress:      t.TokenAddress,
			Timestamp:         t.Timestamp,
			TxHash:            t.TxHash,
			ChainID:           chainID,
			IsProtocolDeposit: deposit,
		}
		if !minted {
			continue
		}

		i, txHash := i, t.TxHash
		lookups.Go(func() error {
			signer, err := history.TransactionSender(ctx, txHash)
			if err != nil || signer == "" {
				a.l.WithFields(logrus.Fields{
					"chain": chainID,
					"tx":    txHash,
				}).WithError(err).Debug("couldn't find deposit signer")
				return nil
			}
			feeders[i].Sender = signer
			return nil
		})
	}
	lookups.Wait()
	return feeders, nil
}

// RecentFeeders combines every chain's feeders, newest first, capped at
// DisplayLimit. The preferred chain is fetched first in order but all chains
// are fetched concurrently. Chains that fail are skipped; the call fails only
// when every chain does.
func (a *Aggregator) RecentFeeders(ctx context.Context, recipient string, preferred uint64) ([]Feeder, error) {
	order := networks.ChainOrder(preferred)
	perChain := make([][]Feeder, len(order))
	errs := make([]error, len(order))

	g := errgroup.Group{}
	for i, chainID := range order {
		i, chainID := i, chainID
		g.Go(func() error {
			perChain[i], errs[i] = a.ChainFeeders(ctx, chainID, recipient)
			if errs[i] != nil {
				a.l.WithFields(logrus.Fields{
					"chain":     chainID,
					"recipient": recipient,
				}).WithError(errs[i]).Warn("couldn't fetch feeders")
			}
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(order) {
		return nil, fmt.Errorf("fetching feeders: %w", errors.Join(errs...))
	}

	combined := Combine(perChain...)
	if err := a.attachNames(ctx, combined); err != nil {
		return nil, err
	}
	return combined, nil
}

// Combine concatenates feeders, drops repeated ids, sorts newest first and
// keeps DisplayLimit.
func Combine(lists ...[]Feeder) []Feeder {
	seen := map[string]bool{}
	res := []Feeder{}
	for _, list := range lists {
		for _, f := range list {
			key := strings.ToLower(f.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			res = append(res, f)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp.After(res[j].Timestamp)
	})
	if len(res) > DisplayLimit {
		res = res[:DisplayLimit]
	}
	return res
}

// attachNames resolves each distinct sender address once.
func (a *Aggregator) attachNames(ctx context.Context, feeders []Feeder) error {
	if a.names == nil {
		return nil
	}
	unique := map[string]bool{}
	for _, f := range feeders {
		if common.IsAddress(f.Sender) {
			unique[strings.ToLower(f.Sender)] = true
		}
	}

	var mu sync.Mutex
	resolved := map[string]string{}
	g := errgroup.Group{}
	for sender := range unique {
		sender := sender
		g.Go(func() error {
			name, err := a.names.NameOf(ctx, ethcommon.HexToAddress(sender))
			if err != nil || name == "" {
				return nil
			}
			mu.Lock()
			resolved[sender] = name
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := range feeders {
		feeders[i].SenderName = resolved[strings.ToLower(feeders[i].Sender)]
	}
	return nil
}

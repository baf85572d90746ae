// Package quote turns a payment intent into a priced, executable route. One
// of three strategies applies to every intent: a direct swap or bridge, a
// swap followed by a protocol deposit, or a swap into the split distributor.
package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/lifi"
	"github.com/tranvictor/feedme/metrics"
)

// Aggregator is the swap and bridge quote source.
type Aggregator interface {
	GetQuote(ctx context.Context, req lifi.QuoteRequest) (*lifi.Quote, error)
	GetContractCallsQuote(ctx context.Context, req lifi.ContractCallsRequest) (*lifi.Quote, error)
}

// Quoter is anything that can price an intent.
type Quoter interface {
	Quote(ctx context.Context, in Intent) (*Quote, error)
}

type Router struct {
	agg      Aggregator
	validate *validator.Validate
	l        *logrus.Logger
}

func NewRouter(agg Aggregator, l *logrus.Logger) *Router {
	return &Router{
		agg:      agg,
		validate: validator.New(),
		l:        l,
	}
}

// Selection describes which strategy r picks for a resolved route.
func (r route) selection() Selection {
	_, hasDistributor := r.to.DistributorContract()
	return Selection{
		Splits:               r.splits,
		DistributorSupported: hasDistributor,
		DepositProtocol:      r.depositPool() != nil,
	}
}

// Quote prices in. A missing or non positive amount is not an error: it
// yields a nil quote.
func (rt *Router) Quote(ctx context.Context, in Intent) (*Quote, error) {
	amount, err := ParseAmount(in.FromAmount, in.FromToken)
	if err != nil || amount == nil {
		return nil, err
	}
	if in.Sender == "" {
		return nil, ErrNoSender
	}
	if err := rt.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidIntent, err)
	}
	r, err := resolveRoute(in, amount)
	if err != nil {
		return nil, err
	}

	strategy := Select(r.selection())
	if len(r.splits) > 0 && strategy != SplitDistribution {
		rt.l.WithFields(logrus.Fields{
			"chain":  r.to.GetName(),
			"splits": len(r.splits),
		}).Warn("no distributor on destination chain, splits ignored")
	}

	started := time.Now()
	var q *Quote
	switch strategy {
	case SplitDistribution:
		q, err = rt.split(ctx, r)
	case ProtocolDeposit:
		q, err = rt.deposit(ctx, r)
	default:
		q, err = rt.direct(ctx, r)
	}
	metrics.ObserveQuote(strategy.String(), started, err)
	if err != nil {
		rt.l.WithFields(logrus.Fields{
			"strategy":   strategy.String(),
			"from_chain": r.from.GetName(),
			"to_chain":   r.to.GetName(),
		}).WithError(err).Debug("quote failed")
		return nil, err
	}
	rt.l.WithFields(logrus.Fields{
		"strategy": strategy.String(),
		"id":       q.ID,
		"output":   q.OutputFormatted,
		"tool":     q.ToolName,
	}).Debug("quoted")
	return q, nil
}

func (rt *Router) preliminary(ctx context.Context, r route, toToken string, toAddress string) (*lifi.Quote, error) {
	q, err := rt.agg.GetQuote(ctx, lifi.QuoteRequest{
		FromChain:   r.from.GetChainID(),
		ToChain:     r.to.GetChainID(),
		FromToken:   r.fromToken.Hex(),
		ToToken:     toToken,
		FromAmount:  r.amount.String(),
		FromAddress: r.sender.Hex(),
		ToAddress:   toAddress,
	})
	return q, classify(err)
}

func (rt *Router) direct(ctx context.Context, r route) (*Quote, error) {
	q, err := rt.preliminary(ctx, r, r.toToken.Hex(), r.recipient.Hex())
	if err != nil {
		return nil, err
	}
	return normalize(Direct, r, q, q)
}

var _ Quoter = (*Router)(nil)

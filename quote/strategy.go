package quote

import (
	"fmt"

	"github.com/tranvictor/feedme/splits"
)

type Strategy int

const (
	Direct Strategy = iota
	ProtocolDeposit
	SplitDistribution
)

func (s Strategy) String() string {
	switch s {
	case ProtocolDeposit:
		return "protocol-deposit"
	case SplitDistribution:
		return "split-distribution"
	default:
		return "direct"
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	for _, candidate := range []Strategy{Direct, ProtocolDeposit, SplitDistribution} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown strategy %q", text)
}

// Selection is everything strategy selection depends on.
type Selection struct {
	Splits               []splits.Split
	DistributorSupported bool
	DepositProtocol      bool
}

// Select picks the strategy for a payment. Splits win over a protocol
// deposit when the destination chain has a distributor.
func Select(s Selection) Strategy {
	switch {
	case len(s.Splits) > 0 && s.DistributorSupported:
		return SplitDistribution
	case s.DepositProtocol:
		return ProtocolDeposit
	default:
		return Direct
	}
}

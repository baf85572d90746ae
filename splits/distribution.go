package splits

import (
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/feedme/common"
)

// BPSDenominator is 100% in basis points.
const BPSDenominator = 10000

var ErrUnresolved = errors.New("split recipient not resolved")

type Share struct {
	Recipient  string   `json:"recipient"`
	Amount     *big.Int `json:"amount"`
	Percentage int      `json:"percentage"`
}

func Bps(percentage int) int64 {
	return int64(percentage) * 100
}

// ToDistribution gives each recipient floor(total * pct / 100) of the
// smallest unit. Rounding dust stays undistributed.
func ToDistribution(total *big.Int, splits []Split) []Share {
	shares := make([]Share, 0, len(splits))
	for _, s := range splits {
		recipient := s.ResolvedAddress
		if recipient == "" {
			recipient = s.Recipient
		}
		shares = append(shares, Share{
			Recipient:  recipient,
			Amount:     common.PercentOf(total, s.Percentage),
			Percentage: s.Percentage,
		})
	}
	return shares
}

// DistributorArgs returns the recipients and basis points a distributor call
// takes. Every split must be resolved.
func DistributorArgs(splits []Split) ([]ethcommon.Address, []*big.Int, error) {
	recipients := make([]ethcommon.Address, 0, len(splits))
	bps := make([]*big.Int, 0, len(splits))
	for _, s := range splits {
		if !common.IsAddress(s.ResolvedAddress) {
			return nil, nil, fmt.Errorf("%s: %w", s.Recipient, ErrUnresolved)
		}
		recipients = append(recipients, ethcommon.HexToAddress(s.ResolvedAddress))
		bps = append(bps, big.NewInt(Bps(s.Percentage)))
	}
	return recipients, bps, nil
}

// AllResolved reports whether every entry carries a concrete address.
func AllResolved(splits []Split) bool {
	for _, s := range splits {
		if !common.IsAddress(s.ResolvedAddress) {
			return false
		}
	}
	return true
}

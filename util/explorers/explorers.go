package explorers

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tranvictor/feedme/networks"
)

// TypeTokenMinting is the provider's transfer type for mints.
const TypeTokenMinting = "token_minting"

const defaultDecimals uint64 = 18

var ErrProviderUnavailable = errors.New("history provider unavailable")

// TransferHistory is one chain's address scoped token transfer history.
type TransferHistory interface {
	// TokenTransfers returns recent ERC-20 transfers touching address, newest
	// first.
	TokenTransfers(ctx context.Context, address string) ([]TokenTransfer, error)
	// TransactionSender returns the account that signed txHash.
	TransactionSender(ctx context.Context, txHash string) (string, error)
}

type TokenTransfer struct {
	TxHash        string
	From          string
	FromName      string
	To            string
	Type          string
	TokenAddress  string
	TokenSymbol   string
	TokenDecimals uint64
	Value         *big.Int
	Timestamp     time.Time
}

// New builds the provider a network is configured with.
func New(network networks.Network, client *http.Client) (TransferHistory, error) {
	return NewFromProvider(network.GetHistoryProvider(), network.GetChainID(), client)
}

// NewFromProvider builds a provider for chainID from an explicit description,
// used when settings override a network's default provider.
func NewFromProvider(p networks.HistoryProvider, chainID uint64, client *http.Client) (TransferHistory, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	switch p.Kind {
	case networks.ProviderBlockscout:
		return NewBlockscoutExplorer(p.URL, client), nil
	case networks.ProviderEtherscan:
		apiKey := ""
		if p.APIKeyVariableName != "" {
			apiKey = strings.TrimSpace(os.Getenv(p.APIKeyVariableName))
		}
		return NewEtherscanLikeExplorer(p.URL, apiKey, chainID, client), nil
	}
	return nil, fmt.Errorf("unknown history provider %q for chain %d", p.Kind, chainID)
}

// parseDecimals falls back to 18 when the provider sends nothing usable.
func parseDecimals(s string) uint64 {
	d, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil || d == 0 {
		return defaultDecimals
	}
	return d
}

func parseValue(s string) *big.Int {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

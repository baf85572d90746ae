package feeders

import (
	"regexp"
	"strings"

	"github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/util/explorers"
)

// Classifier decides whether a transfer is a real payment rather than spam.
type Classifier interface {
	Legitimate(t explorers.TokenTransfer) bool
}

type ClassifierFunc func(t explorers.TokenTransfer) bool

func (f ClassifierFunc) Legitimate(t explorers.TokenTransfer) bool {
	return f(t)
}

// AllowList accepts transfers of known token symbols, ignoring case.
type AllowList map[string]bool

func NewAllowList(symbols ...string) AllowList {
	res := AllowList{}
	for _, s := range symbols {
		res[strings.ToLower(s)] = true
	}
	return res
}

func (a AllowList) Legitimate(t explorers.TokenTransfer) bool {
	return a[strings.ToLower(t.TokenSymbol)]
}

// DefaultAllowList covers stablecoins, native and wrapped ETH and the Aave
// receipt tokens of the supported chains.
var DefaultAllowList = NewAllowList(
	"usdc", "usdt", "dai", "usdc.e", "usdce", "usdt0",
	"eth", "weth",
	"ausdc", "ausdt", "adai", "aweth", "aeth",
	"abasusdc", "abasweth", "abasdai",
	"aarbusdc", "aarbusdt", "aarbweth", "aarbdai",
	"variabledebtethusdc", "variabledebtbasusdc", "variabledebtarbusdc",
)

var receiptPrefix = regexp.MustCompile(`(?i)^a(Bas|Arb|Eth)?`)

// IsProtocolDeposit reports whether t is a protocol minting a receipt token
// rather than a plain transfer.
func IsProtocolDeposit(t explorers.TokenTransfer) bool {
	return t.Type == explorers.TypeTokenMinting ||
		common.IsNullAddress(t.From) ||
		strings.HasPrefix(strings.ToLower(t.TokenSymbol), "a")
}

// DisplaySymbol recovers the underlying asset of a receipt token.
// Example:
// - DisplaySymbol("aBasUSDC", true) = "USDC"
// - DisplaySymbol("USDC", false) = "USDC"
func DisplaySymbol(symbol string, deposit bool) string {
	if !deposit || !strings.HasPrefix(strings.ToLower(symbol), "a") {
		return symbol
	}
	stripped := strings.ToUpper(receiptPrefix.ReplaceAllString(symbol, ""))
	if stripped == "" {
		return symbol
	}
	return stripped
}

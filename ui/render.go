package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/ens"
	"github.com/tranvictor/feedme/feeders"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/quote"
	"github.com/tranvictor/feedme/splits"
)

// ChainName is the display name of a chain id, or the id itself for chains
// we don't know.
func ChainName(chainID uint64) string {
	n, err := networks.GetNetworkByID(chainID)
	if err != nil {
		return fmt.Sprintf("chain %d", chainID)
	}
	return n.GetDisplayName()
}

func chainKeyName(key string) string {
	n, err := networks.GetNetwork(key)
	if err != nil {
		return key
	}
	return n.GetDisplayName()
}

func RenderNameConfig(u UI, nc ens.NameConfig) {
	u.Section(nc.Name)
	if !nc.Configured {
		u.Warn("%s has no payment config yet", nc.Name)
		return
	}
	c := nc.Config
	rows := [][2]string{
		{"Chain", chainKeyName(c.Chain)},
		{"Token", c.Token},
		{"Protocol", c.Protocol},
		{"Monster", fmt.Sprintf("%s (%s)", c.MonsterName, c.MonsterType)},
		{"Resolver", nc.Resolver},
	}
	u.KeyValue(rows)
	if c.Splits == "" {
		return
	}
	parsed := splits.Parse(c.Splits)
	if !parsed.IsValid {
		u.Error("Splits: %s", parsed.ErrorMessage())
		return
	}
	RenderSplits(u, parsed.Splits)
}

func RenderOwnership(u UI, name string, o ens.Ownership) {
	if !o.Known() {
		u.Warn("%s: owner unknown", name)
		return
	}
	u.KeyValue([][2]string{
		{"Name", name},
		{"Owner", o.Owner.Hex()},
		{"Held", o.Kind.String()},
	})
}

func RenderSplits(u UI, s []splits.Split) {
	rows := [][]string{}
	for _, split := range s {
		address := split.ResolvedAddress
		if address == "" && !splits.IsName(split.Recipient) {
			address = split.Recipient
		}
		rows = append(rows, []string{
			split.Recipient,
			fmt.Sprintf("%d%%", split.Percentage),
			common.TruncateAddress(address),
		})
	}
	u.Table([]string{"Recipient", "Share", "Address"}, rows)
}

func RenderValidation(u UI, v splits.Validation) {
	if v.IsValid {
		u.Success("Splits are valid")
		return
	}
	u.Error("%s", v.ErrorMessage())
}

func RenderQuote(u UI, q *quote.Quote) {
	u.Section("Quote")
	route := ChainName(q.FromChainID)
	if q.ToChainID != q.FromChainID {
		route = route + " → " + ChainName(q.ToChainID)
	}
	rows := [][2]string{
		{"Strategy", q.Strategy.String()},
		{"Route", route},
		{"Receive", u.Style(Styled(q.OutputFormatted+" "+q.OutputSymbol, SeveritySuccess))},
		{"Via", q.ToolName},
	}
	if len(q.Route) > 0 {
		rows = append(rows, [2]string{"Steps", strings.Join(q.Route, " → ")})
	}
	if q.GasCostUSD != "" {
		rows = append(rows, [2]string{"Gas", "$" + q.GasCostUSD})
	}
	u.KeyValue(rows)
	if len(q.Distribution) == 0 {
		return
	}
	dist := [][]string{}
	for _, share := range q.Distribution {
		dist = append(dist, []string{
			share.Recipient,
			fmt.Sprintf("%d%%", share.Percentage),
			common.BigToFloatString(share.Amount, q.OutputDecimals),
		})
	}
	u.Table([]string{"Recipient", "Share", "Amount"}, dist)
}

func RenderExecution(u UI, e quote.Execution) {
	if e.Aborted {
		u.Warn("Payment aborted: wallet stayed on %s", ChainName(e.ChainID))
		return
	}
	u.Critical("Submitted %s on %s", e.TxHash.Hex(), ChainName(e.ChainID))
}

func RenderFeeders(u UI, fs []feeders.Feeder, now time.Time) {
	if len(fs) == 0 {
		u.Info("No feeders yet")
		return
	}
	rows := [][]string{}
	for _, f := range fs {
		sender := f.SenderName
		if sender == "" {
			sender = common.TruncateAddress(f.Sender)
		}
		amount := f.Amount + " " + f.Token
		if f.IsProtocolDeposit {
			amount = u.Style(Styled(amount, SeveritySuccess))
		}
		rows = append(rows, []string{
			sender,
			amount,
			ChainName(f.ChainID),
			common.FormatRelativeTime(f.Timestamp, now),
		})
	}
	u.Table([]string{"From", "Amount", "Chain", "When"}, rows)
}

func RenderOwnedNames(u UI, names []ens.OwnedName) {
	if len(names) == 0 {
		u.Info("No names found")
		return
	}
	rows := [][]string{}
	for _, n := range names {
		rows = append(rows, []string{n.Name, n.ExpiryDate})
	}
	u.Table([]string{"Name", "Expiry"}, rows)
}

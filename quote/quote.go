package quote

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/lifi"
	"github.com/tranvictor/feedme/splits"
)

const defaultToolName = "LI.FI"

// Quote is the normalized answer of every strategy.
type Quote struct {
	ID              string                 `json:"id"`
	Strategy        Strategy               `json:"strategy"`
	FromChainID     uint64                 `json:"fromChainId"`
	ToChainID       uint64                 `json:"toChainId"`
	FromToken       common.Address         `json:"fromToken"`
	FromAmount      *big.Int               `json:"fromAmount"`
	OutputAmount    string                 `json:"outputAmount"`
	OutputAmountMin string                 `json:"outputAmountMin"`
	OutputDecimals  uint64                 `json:"outputDecimals"`
	OutputFormatted string                 `json:"outputFormatted"`
	OutputSymbol    string                 `json:"outputSymbol"`
	GasCostUSD      string                 `json:"gasCostUSD"`
	ToolName        string                 `json:"toolName"`
	ApprovalAddress string                 `json:"approvalAddress,omitempty"`
	Route           []string               `json:"route"`
	Transaction     feedmecommon.TxRequest `json:"transaction"`
	Distribution    []splits.Share         `json:"distribution,omitempty"`
}

func parseQuantity(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return big.NewInt(0), nil
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
		if s == "" {
			return big.NewInt(0), nil
		}
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	return v, nil
}

func txRequest(chainID uint64, req *lifi.TransactionRequest) (feedmecommon.TxRequest, error) {
	if req == nil || !feedmecommon.IsAddress(req.To) {
		return feedmecommon.TxRequest{}, ErrNoTransaction
	}
	data, err := decodeData(req.Data)
	if err != nil {
		return feedmecommon.TxRequest{}, fmt.Errorf("transaction data: %w", err)
	}
	value, err := parseQuantity(req.Value)
	if err != nil {
		return feedmecommon.TxRequest{}, fmt.Errorf("transaction value: %w", err)
	}
	gas, err := parseQuantity(req.GasLimit)
	if err != nil {
		return feedmecommon.TxRequest{}, fmt.Errorf("transaction gas limit: %w", err)
	}
	if req.ChainID != 0 {
		chainID = req.ChainID
	}
	return feedmecommon.TxRequest{
		ChainID:  chainID,
		To:       common.HexToAddress(req.To),
		Data:     data,
		Value:    value,
		GasLimit: gas.Uint64(),
	}, nil
}

func decodeData(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	return hexutil.Decode(s)
}

// normalize builds the Quote from the estimate shown to the payer and the
// quote whose transaction gets executed. They are the same quote for direct
// payments.
func normalize(s Strategy, r route, display, final *lifi.Quote) (*Quote, error) {
	tx, err := txRequest(r.from.GetChainID(), final.TransactionRequest)
	if err != nil {
		return nil, err
	}

	decimals := display.Action.ToToken.Decimals
	if decimals == 0 {
		decimals = 18
	}
	output, err := parseQuantity(display.Estimate.ToAmount)
	if err != nil {
		return nil, fmt.Errorf("estimate output: %w", err)
	}

	gasCostUSD := "0.00"
	if len(final.Estimate.GasCosts) > 0 && final.Estimate.GasCosts[0].AmountUSD != "" {
		gasCostUSD = final.Estimate.GasCosts[0].AmountUSD
	}
	toolName := defaultToolName
	if final.ToolDetails != nil && final.ToolDetails.Name != "" {
		toolName = final.ToolDetails.Name
	}

	steps := []string{}
	if final.Estimate.ApprovalAddress != "" {
		steps = append(steps, fmt.Sprintf("Swap via %s", toolName))
	}
	switch s {
	case ProtocolDeposit:
		steps = append(steps, fmt.Sprintf("Deposit into %s", r.protocol))
	case SplitDistribution:
		steps = append(steps, fmt.Sprintf("Split between %d recipients", len(r.splits)))
	}

	q := &Quote{
		ID:              uuid.NewString(),
		Strategy:        s,
		FromChainID:     r.from.GetChainID(),
		ToChainID:       r.to.GetChainID(),
		FromToken:       r.fromToken,
		FromAmount:      r.amount,
		OutputAmount:    output.String(),
		OutputAmountMin: display.Estimate.ToAmountMin,
		OutputDecimals:  decimals,
		OutputFormatted: feedmecommon.FormatUnits2(output, decimals),
		OutputSymbol:    r.toSymbol,
		GasCostUSD:      gasCostUSD,
		ToolName:        toolName,
		ApprovalAddress: final.Estimate.ApprovalAddress,
		Route:           steps,
		Transaction:     tx,
	}
	if s == SplitDistribution {
		q.Distribution = splits.ToDistribution(output, r.splits)
	}
	return q, nil
}

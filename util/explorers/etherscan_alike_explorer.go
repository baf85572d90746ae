package explorers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// EtherscanLikeExplorer reads the Etherscan v2 multichain API or any
// compatible deployment.
type EtherscanLikeExplorer struct {
	ChainID uint64
	Domain  string
	APIKey  string
	client  *http.Client
}

func NewEtherscanLikeExplorer(domain string, apiKey string, chainID uint64, client *http.Client) *EtherscanLikeExplorer {
	return &EtherscanLikeExplorer{
		ChainID: chainID,
		Domain:  strings.TrimRight(domain, "/"),
		APIKey:  apiKey,
		client:  client,
	}
}

func (ee *EtherscanLikeExplorer) TokenTransfersAPIURL(address string) string {
	return fmt.Sprintf(
		"%s/api?chainid=%d&module=account&action=tokentx&address=%s&page=1&offset=25&sort=desc&apikey=%s",
		ee.Domain,
		ee.ChainID,
		address,
		ee.APIKey,
	)
}

func (ee *EtherscanLikeExplorer) TransactionAPIURL(txHash string) string {
	return fmt.Sprintf(
		"%s/api?chainid=%d&module=proxy&action=eth_getTransactionByHash&txhash=%s&apikey=%s",
		ee.Domain,
		ee.ChainID,
		txHash,
		ee.APIKey,
	)
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type etherscanTokenTx struct {
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	Value           string `json:"value"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}

type etherscanProxyTx struct {
	Result *struct {
		From string `json:"from"`
	} `json:"result"`
}

func (ee *EtherscanLikeExplorer) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := ee.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: etherscan status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}
	return body, nil
}

func (ee *EtherscanLikeExplorer) TokenTransfers(ctx context.Context, address string) ([]TokenTransfer, error) {
	body, err := ee.fetch(ctx, ee.TokenTransfersAPIURL(address))
	if err != nil {
		return nil, err
	}
	res := etherscanResponse{}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal %s: %w", string(body), err)
	}
	if res.Status != "1" {
		if strings.HasPrefix(res.Message, "No transactions found") {
			return []TokenTransfer{}, nil
		}
		return nil, fmt.Errorf("%w: etherscan: %s", ErrProviderUnavailable, res.Message)
	}
	txs := []etherscanTokenTx{}
	if err := json.Unmarshal(res.Result, &txs); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal token transfers: %w", err)
	}
	transfers := make([]TokenTransfer, 0, len(txs))
	for _, tx := range txs {
		var ts time.Time
		if sec, err := strconv.ParseInt(tx.TimeStamp, 10, 64); err == nil {
			ts = time.Unix(sec, 0).UTC()
		}
		transfers = append(transfers, TokenTransfer{
			TxHash:        tx.Hash,
			From:          tx.From,
			To:            tx.To,
			TokenAddress:  tx.ContractAddress,
			TokenSymbol:   tx.TokenSymbol,
			TokenDecimals: parseDecimals(tx.TokenDecimal),
			Value:         parseValue(tx.Value),
			Timestamp:     ts,
		})
	}
	return transfers, nil
}

func (ee *EtherscanLikeExplorer) TransactionSender(ctx context.Context, txHash string) (string, error) {
	body, err := ee.fetch(ctx, ee.TransactionAPIURL(txHash))
	if err != nil {
		return "", err
	}
	res := etherscanProxyTx{}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("couldn't unmarshal %s: %w", string(body), err)
	}
	if res.Result == nil || res.Result.From == "" {
		return "", fmt.Errorf("transaction %s not found", txHash)
	}
	return res.Result.From, nil
}

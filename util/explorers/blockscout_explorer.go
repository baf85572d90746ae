package explorers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BlockscoutExplorer reads the Blockscout REST v2 API. No API key is needed.
type BlockscoutExplorer struct {
	Domain string
	client *http.Client
}

func NewBlockscoutExplorer(domain string, client *http.Client) *BlockscoutExplorer {
	return &BlockscoutExplorer{
		Domain: strings.TrimRight(domain, "/"),
		client: client,
	}
}

type blockscoutAddress struct {
	Hash string `json:"hash"`
	Name string `json:"name"`
}

type blockscoutTokenTransfer struct {
	From  blockscoutAddress `json:"from"`
	To    blockscoutAddress `json:"to"`
	Token struct {
		Address     string `json:"address"`
		AddressHash string `json:"address_hash"`
		Symbol      string `json:"symbol"`
		Decimals    string `json:"decimals"`
	} `json:"token"`
	Total struct {
		Value    string `json:"value"`
		Decimals string `json:"decimals"`
	} `json:"total"`
	Timestamp       string `json:"timestamp"`
	TransactionHash string `json:"transaction_hash"`
	Type            string `json:"type"`
}

type blockscoutTransfersResponse struct {
	Items []blockscoutTokenTransfer `json:"items"`
}

type blockscoutTransaction struct {
	Hash string            `json:"hash"`
	From blockscoutAddress `json:"from"`
}

func (be *BlockscoutExplorer) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	u := be.Domain + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := be.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: blockscout status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("couldn't unmarshal %s: %w", string(body), err)
	}
	return nil
}

func (be *BlockscoutExplorer) TokenTransfers(ctx context.Context, address string) ([]TokenTransfer, error) {
	res := blockscoutTransfersResponse{}
	err := be.get(ctx, "/addresses/"+address+"/token-transfers", url.Values{"type": {"ERC-20"}}, &res)
	if err != nil {
		return nil, err
	}
	transfers := make([]TokenTransfer, 0, len(res.Items))
	for _, item := range res.Items {
		tokenAddress := item.Token.Address
		if tokenAddress == "" {
			tokenAddress = item.Token.AddressHash
		}
		decimals := item.Total.Decimals
		if decimals == "" {
			decimals = item.Token.Decimals
		}
		ts, _ := time.Parse(time.RFC3339, item.Timestamp)
		transfers = append(transfers, TokenTransfer{
			TxHash:        item.TransactionHash,
			From:          item.From.Hash,
			FromName:      item.From.Name,
			To:            item.To.Hash,
			Type:          item.Type,
			TokenAddress:  tokenAddress,
			TokenSymbol:   item.Token.Symbol,
			TokenDecimals: parseDecimals(decimals),
			Value:         parseValue(item.Total.Value),
			Timestamp:     ts,
		})
	}
	return transfers, nil
}

func (be *BlockscoutExplorer) TransactionSender(ctx context.Context, txHash string) (string, error) {
	res := blockscoutTransaction{}
	if err := be.get(ctx, "/transactions/"+txHash, nil, &res); err != nil {
		return "", err
	}
	if res.From.Hash == "" {
		return "", fmt.Errorf("transaction %s has no sender", txHash)
	}
	return res.From.Hash, nil
}

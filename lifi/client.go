// Package lifi is a client for the LI.FI swap and bridge aggregator.
package lifi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/metrics"
)

const (
	DefaultBaseURL    = "https://li.quest/v1"
	DefaultIntegrator = "feedme"
	apiKeyHeader      = "x-lifi-api-key"
)

// CodeNoQuote is what the API answers when no route exists.
const CodeNoQuote = 1002

type Client struct {
	baseURL    string
	apiKey     string
	integrator string
	httpClient *http.Client
	l          *logrus.Logger
}

// NewClient talks to baseURL. apiKey is optional. A nil httpClient gets a
// 15s timeout client.
func NewClient(baseURL, apiKey, integrator string, httpClient *http.Client, l *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if integrator == "" {
		integrator = DefaultIntegrator
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		integrator: integrator,
		httpClient: httpClient,
		l:          l,
	}
}

type QuoteRequest struct {
	FromChain   uint64
	ToChain     uint64
	FromToken   string
	ToToken     string
	FromAmount  string
	FromAddress string
	ToAddress   string
}

// ContractCall is a call the aggregator performs on the destination chain
// with the bridged funds.
type ContractCall struct {
	FromAmount         string `json:"fromAmount"`
	FromTokenAddress   string `json:"fromTokenAddress"`
	ToContractAddress  string `json:"toContractAddress"`
	ToContractCallData string `json:"toContractCallData"`
	ToContractGasLimit string `json:"toContractGasLimit"`
}

// ContractCallsRequest asks for a route whose output is paid to ToAddress
// and then spent by ContractCalls. Funds go to ToFallbackAddress when the
// calls revert.
type ContractCallsRequest struct {
	FromChain         uint64         `json:"fromChain"`
	FromToken         string         `json:"fromToken"`
	FromAddress       string         `json:"fromAddress"`
	ToChain           uint64         `json:"toChain"`
	ToToken           string         `json:"toToken"`
	ToAmount          string         `json:"toAmount"`
	ToAddress         string         `json:"toAddress,omitempty"`
	ToFallbackAddress string         `json:"toFallbackAddress,omitempty"`
	ContractCalls     []ContractCall `json:"contractCalls"`
	Integrator        string         `json:"integrator,omitempty"`
}

type Token struct {
	Address  string `json:"address"`
	ChainID  uint64 `json:"chainId"`
	Symbol   string `json:"symbol"`
	Decimals uint64 `json:"decimals"`
	Name     string `json:"name"`
	PriceUSD string `json:"priceUSD"`
}

type GasCost struct {
	Type      string `json:"type"`
	Amount    string `json:"amount"`
	AmountUSD string `json:"amountUSD"`
	Token     Token  `json:"token"`
	Estimate  string `json:"estimate"`
	Limit     string `json:"limit"`
}

type FeeCost struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	AmountUSD string `json:"amountUSD"`
	Token     Token  `json:"token"`
}

type Estimate struct {
	Tool              string    `json:"tool"`
	FromAmount        string    `json:"fromAmount"`
	ToAmount          string    `json:"toAmount"`
	ToAmountMin       string    `json:"toAmountMin"`
	ApprovalAddress   string    `json:"approvalAddress"`
	ExecutionDuration float64   `json:"executionDuration"`
	FeeCosts          []FeeCost `json:"feeCosts"`
	GasCosts          []GasCost `json:"gasCosts"`
}

type Action struct {
	FromChainID uint64 `json:"fromChainId"`
	ToChainID   uint64 `json:"toChainId"`
	FromToken   Token  `json:"fromToken"`
	ToToken     Token  `json:"toToken"`
	FromAmount  string `json:"fromAmount"`
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
}

type ToolDetails struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// TransactionRequest carries hex encoded quantities.
type TransactionRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	ChainID  uint64 `json:"chainId"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasLimit string `json:"gasLimit"`
	GasPrice string `json:"gasPrice"`
}

type Quote struct {
	ID                 string              `json:"id"`
	Type               string              `json:"type"`
	Tool               string              `json:"tool"`
	ToolDetails        *ToolDetails        `json:"toolDetails,omitempty"`
	Action             Action              `json:"action"`
	Estimate           Estimate            `json:"estimate"`
	TransactionRequest *TransactionRequest `json:"transactionRequest,omitempty"`
}

// APIError is a non 200 answer. Message is the aggregator's own text.
type APIError struct {
	Status  int
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("LI.FI API error (status %d)", e.Status)
	}
	return e.Message
}

func (c *Client) do(req *http.Request, result interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveExternal("lifi", err)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.l.WithFields(logrus.Fields{
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(started),
	}).Debug("lifi request")

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := json.Unmarshal(body, apiErr); jerr != nil || apiErr.Message == "" {
			apiErr.Message = string(body)
		}
		return apiErr
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetQuote asks for a plain swap or bridge.
func (c *Client) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	params := url.Values{}
	params.Add("fromChain", strconv.FormatUint(req.FromChain, 10))
	params.Add("toChain", strconv.FormatUint(req.ToChain, 10))
	params.Add("fromToken", req.FromToken)
	params.Add("toToken", req.ToToken)
	params.Add("fromAmount", req.FromAmount)
	params.Add("integrator", c.integrator)
	if req.FromAddress != "" {
		params.Add("fromAddress", req.FromAddress)
	}
	if req.ToAddress != "" {
		params.Add("toAddress", req.ToAddress)
	}

	reqURL := fmt.Sprintf("%s/quote?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	var quote Quote
	if err := c.do(httpReq, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetContractCallsQuote asks for a route that ends with the given calls
// executed on the destination chain.
func (c *Client) GetContractCallsQuote(ctx context.Context, req ContractCallsRequest) (*Quote, error) {
	if req.Integrator == "" {
		req.Integrator = c.integrator
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quote/contractCalls", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	var quote Quote
	if err := c.do(httpReq, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

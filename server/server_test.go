package server_test

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/engine"
	"github.com/tranvictor/feedme/ens"
	"github.com/tranvictor/feedme/quote"
	"github.com/tranvictor/feedme/server"
	"github.com/tranvictor/feedme/splits"
)

var owner = ethcommon.HexToAddress("0x00000000000000000000000000000000000000a1")

type fakeNames struct {
	configs map[string]ens.NameConfig
	owners  map[string]ens.Ownership
}

func (f *fakeNames) ResolveConfig(ctx context.Context, name string) (ens.NameConfig, error) {
	nc, found := f.configs[name]
	if !found {
		return ens.NameConfig{}, ens.ErrNameNotFound
	}
	return nc, nil
}

func (f *fakeNames) ResolveOwner(ctx context.Context, name string) ens.Ownership {
	return f.owners[name]
}

func (f *fakeNames) BuildSetConfigTx(ctx context.Context, name string, config ens.PaymentConfig) (common.TxRequest, error) {
	return common.TxRequest{ChainID: 1, To: ethcommon.HexToAddress(ens.PublicResolverAddress), Value: big.NewInt(0)}, nil
}

func (f *fakeNames) AddressOf(ctx context.Context, name string) (ethcommon.Address, error) {
	return owner, nil
}

type fakeQuoter struct {
	err error
}

func (f fakeQuoter) Quote(ctx context.Context, in quote.Intent) (*quote.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	if in.FromAmount == "" {
		return nil, nil
	}
	return &quote.Quote{
		ID:              "q-" + in.FromAmount,
		Strategy:        quote.Direct,
		FromChainID:     8453,
		ToChainID:       8453,
		FromAmount:      big.NewInt(1000000),
		OutputFormatted: in.FromAmount,
		OutputSymbol:    "USDC",
	}, nil
}

func newServer(t *testing.T, q quote.Quoter) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := logrus.New()
	l.SetOutput(io.Discard)
	names := &fakeNames{
		configs: map[string]ens.NameConfig{
			"alice.eth": {
				Name:       "alice.eth",
				Configured: true,
				Config:     ens.PaymentConfig{Chain: "base", Token: "USDC", Protocol: "aave"},
			},
		},
		owners: map[string]ens.Ownership{
			"alice.eth": {Kind: ens.OwnershipWrapped, Owner: owner},
		},
	}
	e := engine.New(engine.Options{Names: names, Quoter: q}, l)
	return server.New(e, 10*time.Millisecond, l)
}

func do(t *testing.T, s *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t, fakeQuoter{})

	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "feedme_websocket_clients")
}

func TestResolveConfig(t *testing.T) {
	s := newServer(t, fakeQuoter{})

	w := do(t, s, http.MethodGet, "/v1/names/Alice.eth/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "alice.eth", body["name"])
	assert.Equal(t, true, body["configured"])

	w = do(t, s, http.MethodGet, "/v1/names/ghost.eth/config", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveOwner(t *testing.T) {
	s := newServer(t, fakeQuoter{})

	w := do(t, s, http.MethodGet, "/v1/names/alice.eth/owner", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "wrapped", body["kind"])
	assert.Equal(t, owner.Hex(), body["owner"])

	w = do(t, s, http.MethodGet, "/v1/names/nobody.eth/owner", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, false, body["known"])
	assert.NotContains(t, body, "owner")
}

func TestBuildConfigTx(t *testing.T) {
	s := newServer(t, fakeQuoter{})
	cfg := `"config":{"chain":"base","token":"USDC","protocol":"aave","monsterType":"blob"}`

	w := do(t, s, http.MethodPost, "/v1/names/alice.eth/config", `{"from":"`+owner.Hex()+`",`+cfg+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "transaction")

	stranger := "0x00000000000000000000000000000000000000b2"
	w = do(t, s, http.MethodPost, "/v1/names/alice.eth/config", `{"from":"`+stranger+`",`+cfg+`}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, s, http.MethodPost, "/v1/names/alice.eth/config", `{"from":"`+owner.Hex()+`","config":{"chain":"base","token":"USDC","protocol":"lido"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "not available on")
}

func TestValidateSplits(t *testing.T) {
	s := newServer(t, fakeQuoter{})

	w := do(t, s, http.MethodPost, "/v1/splits/validate", `{"splits":"alice.eth:60,bob.eth:50"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["isValid"])
	assert.Equal(t, float64(110), body["totalPercentage"])
	assert.Equal(t, "Percentages must sum to 100 (currently 110)", body["error"])

	w = do(t, s, http.MethodPost, "/v1/splits/validate", `{"splits":"alice.eth:50,ALICE.eth:50"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, false, body["isValid"])
	assert.Equal(t, "Duplicate recipients not allowed", body["error"])

	w = do(t, s, http.MethodPost, "/v1/splits/validate", `{"splits":"alice.eth:60,bob.eth:40"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["isValid"])
}

func TestGetQuoteMapsErrors(t *testing.T) {
	intent := `{"fromChain":"base","fromToken":"USDC","fromAmount":"1","toChain":"base","toToken":"USDC"}`

	w := do(t, newServer(t, fakeQuoter{}), http.MethodPost, "/v1/quote", intent)
	require.Equal(t, http.StatusOK, w.Code)
	q, ok := decode(t, w)["quote"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "q-1", q["id"])

	noRoute := fakeQuoter{err: &quote.Error{Kind: quote.ErrNoRoute}}
	w = do(t, newServer(t, noRoute), http.MethodPost, "/v1/quote", intent)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No route available for this swap", decode(t, w)["error"])

	thin := fakeQuoter{err: &quote.Error{Kind: quote.ErrInsufficientLiquidity}}
	w = do(t, newServer(t, thin), http.MethodPost, "/v1/quote", intent)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUnavailableAndInvalidAddress(t *testing.T) {
	s := newServer(t, fakeQuoter{})

	w := do(t, s, http.MethodGet, "/v1/owners/"+owner.Hex()+"/names", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(t, s, http.MethodGet, "/v1/feeders/not-an-address", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/v1/feeders/"+owner.Hex()+"?chain=solana", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListNetworks(t *testing.T) {
	w := do(t, newServer(t, fakeQuoter{}), http.MethodGet, "/v1/networks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"chainId":8453`)
}

func TestQuoteStreamDeliversLatestIntent(t *testing.T) {
	ts := httptest.NewServer(newServer(t, fakeQuoter{}).Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/v1/ws/quote", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg server.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, server.MessageConnected, msg.Type)
	assert.NotEmpty(t, msg.ClientID)

	for _, amount := range []string{"1", "12"} {
		in := quote.Intent{FromChain: "base", FromToken: "USDC", FromAmount: amount, ToChain: "base", ToToken: "USDC"}
		require.NoError(t, conn.WriteJSON(in))
	}

	var last server.StreamMessage
	for last.Type != server.MessageQuote || last.Generation != 2 {
		last = server.StreamMessage{}
		require.NoError(t, conn.ReadJSON(&last))
		require.NotEqual(t, server.MessageError, last.Type, last.Error)
	}
	require.NotNil(t, last.Quote)
	assert.Equal(t, "q-12", last.Quote.ID)
}

func TestQuoteStreamReportsMalformedIntent(t *testing.T) {
	ts := httptest.NewServer(newServer(t, fakeQuoter{}).Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/v1/ws/quote", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg server.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, server.MessageError, msg.Type)
	assert.Contains(t, msg.Error, "malformed intent")
}

type splitsQuoter struct{}

func (splitsQuoter) Quote(ctx context.Context, in quote.Intent) (*quote.Quote, error) {
	if len(in.Splits) == 0 || in.Splits[0].ResolvedAddress == "" {
		return nil, quote.ErrUnresolvedSplits
	}
	return &quote.Quote{ID: "q-" + in.Splits[0].ResolvedAddress, Strategy: quote.SplitDistribution}, nil
}

func TestQuoteStreamResolvesSplitNames(t *testing.T) {
	ts := httptest.NewServer(newServer(t, splitsQuoter{}).Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/v1/ws/quote", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg server.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))

	in := quote.Intent{
		FromChain:  "base",
		FromToken:  "USDC",
		FromAmount: "5",
		ToChain:    "base",
		ToToken:    "USDC",
		Splits:     []splits.Split{{Recipient: "bob.eth", Percentage: 100}},
	}
	require.NoError(t, conn.WriteJSON(in))

	for msg.Type != server.MessageQuote {
		msg = server.StreamMessage{}
		require.NoError(t, conn.ReadJSON(&msg))
		require.NotEqual(t, server.MessageError, msg.Type, msg.Error)
	}
	require.NotNil(t, msg.Quote)
	assert.Equal(t, "q-"+owner.Hex(), msg.Quote.ID)
}

package quote_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/quote"
)

type quoterFunc func(ctx context.Context, in quote.Intent) (*quote.Quote, error)

func (f quoterFunc) Quote(ctx context.Context, in quote.Intent) (*quote.Quote, error) {
	return f(ctx, in)
}

func intentFor(amount string) quote.Intent {
	in := baseIntent()
	in.FromAmount = amount
	return in
}

func TestSessionDebouncesTrailingEdge(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	seen := []string{}
	quoter := quoterFunc(func(ctx context.Context, in quote.Intent) (*quote.Quote, error) {
		atomic.AddInt32(&calls, 1)
		mu.Lock()
		seen = append(seen, in.FromAmount)
		mu.Unlock()
		return &quote.Quote{OutputAmount: in.FromAmount}, nil
	})

	s := quote.NewSession(context.Background(), quoter, 50*time.Millisecond, quietLogger())
	defer s.Close()

	s.Update(intentFor("1"))
	s.Update(intentFor("1.5"))
	last := s.Update(intentFor("1.52"))

	select {
	case res := <-s.Results():
		require.NoError(t, res.Err)
		assert.Equal(t, last, res.Generation)
		assert.Equal(t, "1.52", res.Quote.OutputAmount)
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"1.52"}, seen)
}

func TestSessionDiscardsSupersededResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)
	quoter := quoterFunc(func(ctx context.Context, in quote.Intent) (*quote.Quote, error) {
		started <- in.FromAmount
		if in.FromAmount == "1" {
			<-release
			return &quote.Quote{OutputAmount: "stale"}, nil
		}
		return &quote.Quote{OutputAmount: in.FromAmount}, nil
	})

	s := quote.NewSession(context.Background(), quoter, time.Millisecond, quietLogger())
	defer s.Close()

	s.Update(intentFor("1"))
	assert.Equal(t, "1", <-started)

	latest := s.Update(intentFor("2"))
	assert.Equal(t, "2", <-started)

	res := <-s.Results()
	assert.Equal(t, latest, res.Generation)
	assert.Equal(t, "2", res.Quote.OutputAmount)

	close(release)
	select {
	case res, ok := <-s.Results():
		if ok {
			t.Fatalf("stale result published: %+v", res)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionPublishesNoQuote(t *testing.T) {
	s := quote.NewSession(context.Background(), quote.NewRouter(&fakeAggregator{}, quietLogger()), time.Millisecond, quietLogger())
	defer s.Close()

	s.Update(intentFor("0"))
	res := <-s.Results()
	assert.NoError(t, res.Err)
	assert.Nil(t, res.Quote)
}

type fakeWallet struct {
	chainID   uint64
	refuse    bool
	switches  []uint64
	sent      []feedmecommon.TxRequest
	sendError error
}

func (w *fakeWallet) Address() common.Address {
	return common.HexToAddress(payer)
}

func (w *fakeWallet) ChainID(ctx context.Context) (uint64, error) {
	return w.chainID, nil
}

func (w *fakeWallet) SwitchChain(ctx context.Context, chainID uint64) error {
	w.switches = append(w.switches, chainID)
	if w.refuse {
		return errors.New("user rejected the request")
	}
	w.chainID = chainID
	return nil
}

func (w *fakeWallet) SendTransaction(ctx context.Context, tx feedmecommon.TxRequest) (common.Hash, error) {
	if w.sendError != nil {
		return common.Hash{}, w.sendError
	}
	w.sent = append(w.sent, tx)
	return common.HexToHash("0xfeed"), nil
}

func testQuote() *quote.Quote {
	return &quote.Quote{
		ID:          "q",
		FromChainID: 42161,
		Transaction: feedmecommon.TxRequest{ChainID: 42161, To: common.HexToAddress(lifiDiamond)},
	}
}

func TestExecuteSwitchesChainFirst(t *testing.T) {
	w := &fakeWallet{chainID: 1}
	exec, err := quote.Execute(context.Background(), w, testQuote(), quietLogger())
	require.NoError(t, err)
	assert.False(t, exec.Aborted)
	assert.Equal(t, []uint64{42161}, w.switches)
	require.Len(t, w.sent, 1)
	assert.Equal(t, uint64(42161), w.sent[0].ChainID)
	assert.Equal(t, common.HexToHash("0xfeed"), exec.TxHash)
}

func TestExecuteOnMatchingChain(t *testing.T) {
	w := &fakeWallet{chainID: 42161}
	_, err := quote.Execute(context.Background(), w, testQuote(), quietLogger())
	require.NoError(t, err)
	assert.Empty(t, w.switches)
	assert.Len(t, w.sent, 1)
}

func TestExecuteAbortsWhenSwitchRefused(t *testing.T) {
	w := &fakeWallet{chainID: 1, refuse: true}
	exec, err := quote.Execute(context.Background(), w, testQuote(), quietLogger())
	require.NoError(t, err)
	assert.True(t, exec.Aborted)
	assert.Empty(t, w.sent)
}

func TestExecuteReportsSendFailure(t *testing.T) {
	w := &fakeWallet{chainID: 42161, sendError: errors.New("nonce too low")}
	_, err := quote.Execute(context.Background(), w, testQuote(), quietLogger())
	assert.ErrorContains(t, err, "nonce too low")

	_, err = quote.Execute(context.Background(), w, nil, quietLogger())
	assert.ErrorIs(t, err, quote.ErrNoTransaction)
}

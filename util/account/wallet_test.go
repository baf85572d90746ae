package account_test

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/util/account"
)

const testKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

type fakeReader struct {
	nonce     uint64
	estimated uint64
	tipCap    *big.Int
}

func (f *fakeReader) GetPendingNonce(address string) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeReader) SuggestedGasSettings() (*big.Int, *big.Int, error) {
	return big.NewInt(2_000_000_000), f.tipCap, nil
}

func (f *fakeReader) EstimateExactGas(from, to string, value *big.Int, data []byte) (uint64, error) {
	return f.estimated, nil
}

type fakeBroadcaster struct {
	sent []*types.Transaction
	err  error
}

func (f *fakeBroadcaster) BroadcastTx(ctx context.Context, tx *types.Transaction) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	f.sent = append(f.sent, tx)
	return tx.Hash().Hex(), true, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newWallet(t *testing.T, b *fakeBroadcaster, r *fakeReader) *account.Wallet {
	t.Helper()
	_, key, err := account.PrivateKeyFromHex(testKey)
	require.NoError(t, err)
	return account.NewWallet(account.NewKeyAccount(key), 1, func(chainID uint64) (account.Backend, error) {
		if chainID != 1 && chainID != 8453 {
			return account.Backend{}, errors.New("unsupported chain")
		}
		return account.Backend{Reader: r, Broadcaster: b}, nil
	}, quietLogger())
}

func TestPrivateKeyFromHex(t *testing.T) {
	addr, _, err := account.PrivateKeyFromHex(testKey)
	require.NoError(t, err)
	_, _, err2 := account.PrivateKeyFromHex(testKey[2:])
	require.NoError(t, err2)
	assert.True(t, common.IsHexAddress(addr))
}

func TestSendTransactionSignsForCurrentChain(t *testing.T) {
	b := &fakeBroadcaster{}
	r := &fakeReader{nonce: 7, estimated: 21000, tipCap: big.NewInt(1_000_000_000)}
	w := newWallet(t, b, r)
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	require.NoError(t, w.SwitchChain(context.Background(), 8453))
	hash, err := w.SendTransaction(context.Background(), feedmecommon.TxRequest{
		To:    to,
		Value: big.NewInt(5),
	})
	require.NoError(t, err)
	require.Len(t, b.sent, 1)

	tx := b.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.Equal(t, big.NewInt(8453), tx.ChainId())
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(8453)), tx)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), sender)
}

func TestSendTransactionRejectsOtherChain(t *testing.T) {
	w := newWallet(t, &fakeBroadcaster{}, &fakeReader{})
	_, err := w.SendTransaction(context.Background(), feedmecommon.TxRequest{ChainID: 42161})
	assert.Error(t, err)
}

func TestSendTransactionBroadcastFailure(t *testing.T) {
	w := newWallet(t, &fakeBroadcaster{err: errors.New("all nodes down")}, &fakeReader{estimated: 21000})
	_, err := w.SendTransaction(context.Background(), feedmecommon.TxRequest{GasLimit: 50000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all nodes down")
}

func TestSwitchChain(t *testing.T) {
	w := newWallet(t, &fakeBroadcaster{}, &fakeReader{})
	assert.Error(t, w.SwitchChain(context.Background(), 10))

	asked := [][2]uint64{}
	w.OnSwitch(func(from, to uint64) bool {
		asked = append(asked, [2]uint64{from, to})
		return false
	})
	assert.ErrorIs(t, w.SwitchChain(context.Background(), 8453), account.ErrSwitchRefused)
	assert.Equal(t, [][2]uint64{{1, 8453}}, asked)
	id, _ := w.ChainID(context.Background())
	assert.Equal(t, uint64(1), id)
}

func TestKeySignerRecoversAddress(t *testing.T) {
	_, key, err := account.PrivateKeyFromHex(testKey)
	require.NoError(t, err)
	acc := account.NewKeyAccount(key)
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1)})
	signed, err := acc.SignTx(tx, big.NewInt(1))
	require.NoError(t, err)
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), signed)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), sender)
}

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/feedme/config"
	"github.com/tranvictor/feedme/ens"
)

func TestMergeConfigKeepsUnchangedFields(t *testing.T) {
	current := ens.PaymentConfig{
		Chain:       "base",
		Token:       "USDC",
		Protocol:    "aave",
		MonsterName: "Nom",
		MonsterType: "blob",
		Splits:      "alice.eth:50,bob.eth:50",
	}
	config.Token = "ETH"
	config.Splits = ""
	config.Chain = "mainnet"
	defer func() {
		config.Token, config.Splits, config.Chain = "", "", ""
	}()

	changed := map[string]bool{"token": true, "splits": true}
	next := mergeConfig(current, func(flag string) bool { return changed[flag] })

	assert.Equal(t, ens.PaymentConfig{
		Chain:       "base",
		Token:       "ETH",
		Protocol:    "aave",
		MonsterName: "Nom",
		MonsterType: "blob",
	}, next)
}

func TestCheckFrom(t *testing.T) {
	addr := ethcommon.HexToAddress("0x00000000000000000000000000000000000000a1")

	assert.NoError(t, checkFrom("", addr))
	assert.NoError(t, checkFrom(" 0x00000000000000000000000000000000000000A1 ", addr))
	assert.Error(t, checkFrom("0x00000000000000000000000000000000000000b2", addr))
}

func TestReadNetworkConfig(t *testing.T) {
	raw := `{"name":"optimism","display_name":"Optimism","chain_id":10,"native_token_symbol":"ETH","native_token_decimal":18,"block_time":2}`

	n, err := readNetworkConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n.GetChainID())

	path := filepath.Join(t.TempDir(), "op.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	n, err = readNetworkConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "optimism", n.GetName())

	_, err = readNetworkConfig("")
	assert.Error(t, err)
	_, err = readNetworkConfig(`{"name":"nochain"}`)
	assert.Error(t, err)
}

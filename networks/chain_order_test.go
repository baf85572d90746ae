package networks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainOrderIncludesAddedNetworks(t *testing.T) {
	registry := &networks{map[string]Network{}, map[uint64]Network{}}
	for _, n := range supportedNetworks {
		require.NoError(t, registry.add(n, false))
	}
	require.NoError(t, registry.add(NewGenericNetwork(GenericNetworkConfig{Name: "optimism", ChainID: 10}), false))
	require.NoError(t, registry.add(NewGenericNetwork(GenericNetworkConfig{Name: "scroll", ChainID: 534352}), false))

	assert.Equal(t, []uint64{8453, 42161, 1, 10, 534352}, registry.chainOrder(0))
	assert.Equal(t, []uint64{534352, 8453, 42161, 1, 10}, registry.chainOrder(534352))
}

package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/feedme/util/cache"
)

func TestSetThenGetSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	c := cache.New(path)

	_, found := c.Get("reverse:0xABC")
	assert.False(t, found)

	require.NoError(t, c.Set("reverse:0xABC", "bob.eth"))
	v, found := c.Get("REVERSE:0xabc")
	require.True(t, found)
	assert.Equal(t, "bob.eth", v)

	reloaded := cache.New(path)
	v, found = reloaded.Get("reverse:0xabc")
	require.True(t, found)
	assert.Equal(t, "bob.eth", v)
}

func TestCorruptCacheStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	c := cache.New(path)
	_, found := c.Get("anything")
	assert.False(t, found)
	require.NoError(t, c.Set("k", "v"))
}

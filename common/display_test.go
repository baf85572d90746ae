package common_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tranvictor/feedme/common"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", common.FormatRelativeTime(now.Add(-30*time.Second), now))
	assert.Equal(t, "5m ago", common.FormatRelativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", common.FormatRelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d ago", common.FormatRelativeTime(now.Add(-50*time.Hour), now))
	assert.Equal(t, "3w ago", common.FormatRelativeTime(now.Add(-22*24*time.Hour), now))
}

func TestTruncateAddress(t *testing.T) {
	assert.Equal(t, "0x1234...abcd", common.TruncateAddress("0x1234567890123456789012345678901234abcd"))
	assert.Equal(t, "bob.eth", common.TruncateAddress("bob.eth"))
}

func TestIsAddress(t *testing.T) {
	assert.True(t, common.IsAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"))
	assert.False(t, common.IsAddress("0x1234"))
	assert.False(t, common.IsAddress("bob.eth"))
	assert.True(t, common.IsNullAddress("0x0000000000000000000000000000000000000000"))
	assert.True(t, common.SameAddress("0xAbC0000000000000000000000000000000000001", "0xabc0000000000000000000000000000000000001"))
}

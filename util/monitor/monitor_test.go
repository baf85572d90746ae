package monitor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/util/monitor"
)

type scriptedReader struct {
	mu       sync.Mutex
	statuses []string
	calls    int
}

func (s *scriptedReader) TxInfoFromHash(tx string) (common.TxInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	s.calls++
	return common.TxInfo{Status: s.statuses[i]}, nil
}

func TestWaitUntilMined(t *testing.T) {
	r := &scriptedReader{statuses: []string{common.TxStatusLost, common.TxStatusPending, common.TxStatusDone}}
	m := monitor.NewTxMonitorWithTiming(r, 5*time.Millisecond, time.Hour)

	info, err := m.Wait(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, common.TxStatusDone, info.Status)
	assert.Equal(t, 3, r.calls)
}

func TestWaitReportsLost(t *testing.T) {
	r := &scriptedReader{statuses: []string{common.TxStatusLost}}
	m := monitor.NewTxMonitorWithTiming(r, 5*time.Millisecond, 20*time.Millisecond)

	info, err := m.Wait(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, common.TxStatusLost, info.Status)
}

func TestWaitCanceled(t *testing.T) {
	r := &scriptedReader{statuses: []string{common.TxStatusPending}}
	m := monitor.NewTxMonitorWithTiming(r, 5*time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := m.Wait(ctx, "0xabc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	ch := m.MakeWaitChannel(ctx, "0xabc")
	_, ok := <-ch
	assert.False(t, ok)
}

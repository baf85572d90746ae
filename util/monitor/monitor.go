package monitor

import (
	"context"
	"time"

	"github.com/tranvictor/feedme/common"
)

const (
	minInterval      = time.Second
	defaultLostAfter = 3 * time.Minute
)

type TxInfoReader interface {
	TxInfoFromHash(tx string) (common.TxInfo, error)
}

// TxMonitor polls a submitted transaction until it is mined, reverted or
// considered lost.
type TxMonitor struct {
	reader    TxInfoReader
	interval  time.Duration
	lostAfter time.Duration
}

// NewGenericTxMonitor polls once per block.
func NewGenericTxMonitor(r TxInfoReader, blockTime time.Duration) *TxMonitor {
	return NewTxMonitorWithTiming(r, blockTime, defaultLostAfter)
}

func NewTxMonitorWithTiming(r TxInfoReader, interval, lostAfter time.Duration) *TxMonitor {
	if interval <= 0 {
		interval = minInterval
	}
	return &TxMonitor{
		reader:    r,
		interval:  interval,
		lostAfter: lostAfter,
	}
}

// Wait blocks until tx reaches a final status. A tx that no node has seen
// within the lost timeout is reported as lost. A tx seen pending once is
// never reported lost.
func (m *TxMonitor) Wait(ctx context.Context, tx string) (common.TxInfo, error) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	started := time.Now()
	seen := false
	for {
		select {
		case <-ctx.Done():
			return common.TxInfo{}, ctx.Err()
		case t := <-ticker.C:
			info, err := m.reader.TxInfoFromHash(tx)
			if err != nil {
				continue
			}
			switch info.Status {
			case common.TxStatusDone, common.TxStatusReverted:
				return info, nil
			case common.TxStatusPending:
				seen = true
			case common.TxStatusLost:
				if !seen && t.Sub(started) > m.lostAfter {
					return info, nil
				}
			}
		}
	}
}

// MakeWaitChannel runs Wait in the background. The channel is closed without
// a value when ctx ends first.
func (m *TxMonitor) MakeWaitChannel(ctx context.Context, tx string) <-chan common.TxInfo {
	result := make(chan common.TxInfo, 1)
	go func() {
		defer close(result)
		info, err := m.Wait(ctx, tx)
		if err == nil {
			result <- info
		}
	}()
	return result
}

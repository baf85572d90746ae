package broadcaster

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/common"
)

const broadcastTimeout = 4 * time.Second

// RawSender submits a signed transaction to one node.
type RawSender interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Broadcaster takes a signed tx and tries to broadcast it to all the nodes
// it manages in parallel. The tx counts as broadcasted when at least one
// node accepts it.
type Broadcaster struct {
	clients map[string]RawSender
}

func NewGenericBroadcaster(nodes map[string]string, l *logrus.Logger) *Broadcaster {
	clients := map[string]RawSender{}
	for name, url := range nodes {
		client, err := rpc.Dial(url)
		if err != nil {
			l.WithFields(logrus.Fields{
				"node": name,
				"url":  url,
			}).WithError(err).Warn("couldn't connect to node")
			continue
		}
		clients[name] = client
	}
	return NewBroadcasterWithClients(clients)
}

func NewBroadcasterWithClients(clients map[string]RawSender) *Broadcaster {
	return &Broadcaster{clients: clients}
}

func (b *Broadcaster) BroadcastTx(ctx context.Context, tx *types.Transaction) (string, bool, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return "", false, fmt.Errorf("tx is not valid, couldn't use rlp to encode it: %w", err)
	}
	return b.Broadcast(ctx, hexutil.Encode(data))
}

// Broadcast sends the hex encoded signed tx in data and returns its hash.
func (b *Broadcaster) Broadcast(ctx context.Context, data string) (string, bool, error) {
	if len(b.clients) == 0 {
		return "", false, fmt.Errorf("no nodes to broadcast to")
	}
	timeout, cancel := context.WithTimeout(ctx, broadcastTimeout)
	defer cancel()

	tasks := []func() error{}
	for name := range b.clients {
		name, cli := name, b.clients[name]
		tasks = append(tasks, func() error {
			if err := cli.CallContext(timeout, nil, "eth_sendRawTransaction", data); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	numErrs, err := common.RunParallel(tasks...)
	if numErrs == len(b.clients) {
		return common.RawTxToHash(data), false, err
	}
	return common.RawTxToHash(data), true, nil
}

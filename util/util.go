// Package util wires networks, settings and the chain access helpers
// together.
package util

import (
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tranvictor/feedme/config"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/util/broadcaster"
	"github.com/tranvictor/feedme/util/explorers"
	"github.com/tranvictor/feedme/util/monitor"
	"github.com/tranvictor/feedme/util/reader"
)

func networkNames(network networks.Network) []string {
	return append([]string{network.GetName()}, network.GetAlternativeNames()...)
}

// GetNodes returns the default nodes of network, then the nodes from
// settings, then the node given by the network's env var as "custom-node".
func GetNodes(network networks.Network, s config.Settings) map[string]string {
	nodes := map[string]string{}
	for name, url := range network.GetDefaultNodes() {
		nodes[name] = url
	}
	for name, url := range s.NodesFor(networkNames(network)...) {
		nodes[name] = url
	}
	if v := network.GetNodeVariableName(); v != "" {
		customNode := strings.TrimSpace(os.Getenv(v))
		if customNode != "" {
			nodes["custom-node"] = customNode
		}
	}
	return nodes
}

func EthReader(network networks.Network, s config.Settings) *reader.EthReader {
	return reader.NewEthReaderGeneric(GetNodes(network, s))
}

func EthBroadcaster(network networks.Network, s config.Settings, l *logrus.Logger) *broadcaster.Broadcaster {
	return broadcaster.NewGenericBroadcaster(GetNodes(network, s), l)
}

func EthTxMonitor(network networks.Network, s config.Settings) *monitor.TxMonitor {
	return monitor.NewGenericTxMonitor(EthReader(network, s), network.GetBlockTime())
}

// TransferHistory returns network's history provider, honoring a settings
// override.
func TransferHistory(network networks.Network, s config.Settings, client *http.Client) (explorers.TransferHistory, error) {
	if h, found := s.HistoryFor(networkNames(network)...); found {
		return explorers.NewFromProvider(networks.HistoryProvider{
			Kind:               h.Kind,
			URL:                h.URL,
			APIKeyVariableName: h.APIKeyVar,
		}, network.GetChainID(), client)
	}
	return explorers.New(network, client)
}

// TransferHistories builds a provider for every supported network. Networks
// whose provider can't be built are left out and logged.
func TransferHistories(s config.Settings, client *http.Client, l *logrus.Logger) map[uint64]explorers.TransferHistory {
	res := map[uint64]explorers.TransferHistory{}
	for _, n := range networks.GetSupportedNetworks() {
		h, err := TransferHistory(n, s, client)
		if err != nil {
			l.WithField("network", n.GetName()).WithError(err).Warn("no transfer history provider")
			continue
		}
		res[n.GetChainID()] = h
	}
	return res
}

package networks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	EthereumMainnet,
	BaseMainnet,
	ArbitrumMainnet,
}

// DefaultChainOrder is the order chains are visited when the caller has no
// preference.
var DefaultChainOrder = []uint64{8453, 42161, 1}

var globalSupportedNetworks = newSupportedNetworks()
var ErrNetworkNotFound = errors.New("network not found")

type networks struct {
	networks     map[string]Network
	networksByID map[uint64]Network
}

func (n *networks) getSupportedNetworkNames() []string {
	res := []string{}
	for name := range n.networks {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	res, found := n.networks[key]
	if !found {
		if suggestions := n.suggest(key); len(suggestions) > 0 {
			return nil, fmt.Errorf(
				"network name '%s' (did you mean %s?): %w",
				name, strings.Join(suggestions, ", "), ErrNetworkNotFound,
			)
		}
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) suggest(name string) []string {
	if name == "" {
		return nil
	}
	matches := fuzzy.Find(name, n.getSupportedNetworkNames())
	res := []string{}
	for i, m := range matches {
		if i == 3 {
			break
		}
		res = append(res, m.Str)
	}
	return res
}

func (n *networks) add(network Network, override bool) error {
	names := append([]string{network.GetName()}, network.GetAlternativeNames()...)
	for _, name := range names {
		key := strings.ToLower(name)
		if existing, found := n.networks[key]; found && !override && existing != network {
			return fmt.Errorf("network with name or alternative name of '%s' already exists", name)
		}
	}
	for _, name := range names {
		n.networks[strings.ToLower(name)] = network
	}
	n.networksByID[network.GetChainID()] = network
	return nil
}

func newSupportedNetworks() *networks {
	result := networks{
		map[string]Network{},
		map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if err := result.add(n, false); err != nil {
			panic(err)
		}
	}

	// load custom networks from ~/.feedme/networks/
	customNetworks, err := loadCustomNetworks()
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to load custom networks: %s. Ignore and continue with built-in networks.\n", err)
		return &result
	}

	for _, n := range customNetworks {
		if _, idFound := result.networksByID[n.GetChainID()]; idFound {
			fmt.Fprintf(os.Stderr, "Network with id '%d' already exists. Using custom network.\n", n.GetChainID())
		}
		result.add(n, true)
	}
	return &result
}

func customNetworksDir() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return filepath.Join(usr.HomeDir, ".feedme", "networks"), nil
}

func loadCustomNetworks() ([]Network, error) {
	dir, err := customNetworksDir()
	if err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		network, err := NewNetworkFromJSON(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse network from file %s: %s. Ignore and continue with other custom networks.\n", file, err)
			continue
		}

		networks = append(networks, network)
	}

	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	err := json.Unmarshal(content, &networkConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" || networkConfig.ChainID == 0 {
		return nil, fmt.Errorf("network config needs a name and a chain id")
	}

	return NewGenericNetwork(networkConfig), nil
}

// GetSupportedNetworks returns each network once, ordered by chain id.
func GetSupportedNetworks() []Network {
	res := []Network{}
	for _, n := range globalSupportedNetworks.networksByID {
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].GetChainID() < res[j].GetChainID() })
	return res
}

// GetNetwork looks a network up by name or alternative name, ignoring case.
// Unknown names fail instead of falling back to mainnet.
func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

// AddNetwork registers a network and stores it under ~/.feedme/networks/.
// Existing networks sharing a name are only replaced when override is set.
func AddNetwork(network Network, override bool) error {
	if err := globalSupportedNetworks.add(network, override); err != nil {
		return err
	}

	dir, err := customNetworksDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	content, err := network.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}

	err = os.WriteFile(filepath.Join(dir, fmt.Sprintf("%s.json", network.GetName())), content, 0644)
	if err != nil {
		return fmt.Errorf("failed to write the new network to file: %w", err)
	}

	return nil
}

// ChainOrder puts preferred first, then the built-in chains in
// DefaultChainOrder, then every other registered chain by id. A zero
// preferred id means no preference.
func ChainOrder(preferred uint64) []uint64 {
	return globalSupportedNetworks.chainOrder(preferred)
}

func (n *networks) chainOrder(preferred uint64) []uint64 {
	res := []uint64{}
	seen := map[uint64]bool{}
	push := func(id uint64) {
		if id == 0 || seen[id] {
			return
		}
		seen[id] = true
		res = append(res, id)
	}
	push(preferred)
	for _, id := range DefaultChainOrder {
		push(id)
	}
	rest := make([]uint64, 0, len(n.networksByID))
	for id := range n.networksByID {
		rest = append(rest, id)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, id := range rest {
		push(id)
	}
	return res
}

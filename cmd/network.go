package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/util"
)

var (
	NetworkConfig string
	NetworkForce  bool
)

// readNetworkConfig accepts either inline json or a path to a json file.
func readNetworkConfig(config string) (networks.Network, error) {
	config = strings.TrimSpace(config)
	if config == "" {
		return nil, fmt.Errorf("pass the network config with --file")
	}
	if strings.HasPrefix(config, "{") && strings.HasSuffix(config, "}") {
		return networks.NewNetworkFromJSON([]byte(config))
	}
	jsonFile, err := os.Open(config)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the provided json file: %w", err)
	}
	defer jsonFile.Close()

	jsonBytes, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the provided json file: %w", err)
	}
	return networks.NewNetworkFromJSON(jsonBytes)
}

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new network to the supported networks list locally",
	Long: `--file flag is supported to pass a new network config json filepath OR pass a json string. The json should be in the following format:
	{
		"name": "optimism",
		"display_name": "Optimism",
		"alternative_names": ["op"],
		"chain_id": 10,
		"native_token_symbol": "ETH",
		"native_token_decimal": 18,
		"block_time": 2,
		"node_variable_name": "OPTIMISM_MAINNET_NODE",
		"default_nodes": {
			"public": "https://mainnet.optimism.io"
		},
		"history_provider": {
			"kind": "blockscout",
			"url": "https://optimism.blockscout.com/api/v2"
		},
		"multi_call_contract_address": "0xcA11bde05977b3631167028862bE2a173976CA11",
		"tokens": {
			"USDC": "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"
		}
	}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		newNetwork, err := readNetworkConfig(NetworkConfig)
		if err != nil {
			return err
		}

		allNames := []string{newNetwork.GetName()}
		allNames = append(allNames, newNetwork.GetAlternativeNames()...)
		for _, name := range allNames {
			if _, err := networks.GetNetwork(name); err == nil {
				if !NetworkForce {
					return fmt.Errorf("network with name %s already exists, use --force to replace it", name)
				}
				appUI.Warn("Network with name %s already exists. It will be replaced.", name)
			}
		}

		if err := networks.AddNetwork(newNetwork, NetworkForce); err != nil {
			return fmt.Errorf("failed to add the new network: %w", err)
		}
		appUI.Success("Network %s with chain ID %d added and saved to ~/.feedme/networks/.", newNetwork.GetName(), newNetwork.GetChainID())
		return nil
	},
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of supported networks",
	Run: func(cmd *cobra.Command, args []string) {
		for i, n := range networks.GetSupportedNetworks() {
			appUI.Section(fmt.Sprintf("%d. %s (chain %d)", i+1, n.GetDisplayName(), n.GetChainID()))
			tokens := append([]string{}, n.SupportedTokens()...)
			sort.Strings(tokens)
			rows := [][2]string{
				{"Names", strings.Join(append([]string{n.GetName()}, n.GetAlternativeNames()...), ", ")},
				{"Tokens", strings.Join(tokens, ", ")},
				{"History", n.GetHistoryProvider().URL},
			}
			nodes := util.GetNodes(n, settings)
			keys := make([]string, 0, len(nodes))
			for key := range nodes {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				rows = append(rows, [2]string{"Node " + key, nodes[key]})
			}
			appUI.KeyValue(rows)
		}

		appUI.Info("To add a network: feedme networks add --file <json>")
		appUI.Info("To delete a network, delete its json file in ~/.feedme/networks/.")
	},
}

var networkCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"network"},
	Short:   "Manage all networks that feedme supports",
}

func init() {
	addNetworkCmd.Flags().StringVar(&NetworkConfig, "file", "", "Path to the network config json file, or the json itself")
	addNetworkCmd.Flags().BoolVar(&NetworkForce, "force", false, "Replace networks that already exist")

	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/config"
	"github.com/tranvictor/feedme/ens"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/ui"
)

var configCmd = &cobra.Command{
	Use:   "config [name]",
	Short: "Show the payment config published under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stop := appUI.Spinner("Resolving " + args[0])
		nc, err := buildEngine().ResolveConfig(cmd.Context(), args[0])
		stop()
		if err != nil {
			return err
		}
		if done, err := printJSON(nc); done {
			return err
		}
		ui.RenderNameConfig(appUI, nc)
		return nil
	},
}

var ownerCmd = &cobra.Command{
	Use:   "owner [name]",
	Short: "Show who controls a name, wrapped names included",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := buildEngine().ResolveOwner(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if done, err := printJSON(o); done {
			return err
		}
		ui.RenderOwnership(appUI, ens.Normalize(args[0]), o)
		return nil
	},
}

var namesCmd = &cobra.Command{
	Use:   "names [address or name]",
	Short: "List the .eth names an address owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := buildEngine()
		owner, err := e.AddressOf(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		names, err := e.OwnedNames(cmd.Context(), owner)
		if err != nil {
			return err
		}
		if done, err := printJSON(names); done {
			return err
		}
		ui.RenderOwnedNames(appUI, names)
		return nil
	},
}

// mergeConfig overlays the name config flags that were given on current.
func mergeConfig(current ens.PaymentConfig, changed func(flag string) bool) ens.PaymentConfig {
	if changed("chain") {
		current.Chain = config.Chain
	}
	if changed("token") {
		current.Token = config.Token
	}
	if changed("protocol") {
		current.Protocol = config.Protocol
	}
	if changed("monster-name") {
		current.MonsterName = config.MonsterName
	}
	if changed("monster-type") {
		current.MonsterType = config.MonsterType
	}
	if changed("splits") {
		current.Splits = config.Splits
	}
	return current
}

var setConfigCmd = &cobra.Command{
	Use:   "set-config [name]",
	Short: "Publish or update the payment config of a name you own",
	Long: `Fields that are not given keep their current value. All fields are written
in one transaction on Ethereum mainnet; the wallet is switched there first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := buildEngine()
		ctx := cmd.Context()

		current, err := e.ResolveConfig(ctx, args[0])
		if err != nil {
			return err
		}
		next := mergeConfig(current.Config, cmd.Flags().Changed)

		acc, err := unlockAccount()
		if err != nil {
			return err
		}

		if config.DontBroadcast {
			tx, err := e.BuildConfigTx(ctx, args[0], next, acc.Address())
			if err != nil {
				return err
			}
			if done, err := printJSON(tx); done {
				return err
			}
			appUI.Info("Config tx to %s on %s, data: %s", tx.To.Hex(), ui.ChainName(tx.ChainID), tx.Data)
			return nil
		}

		ui.RenderNameConfig(appUI, ens.NameConfig{
			Name:       current.Name,
			Resolver:   current.Resolver,
			Config:     next,
			Configured: true,
		})
		if !config.Yes && !appUI.Confirm("Publish this config?", true) {
			appUI.Warn("Aborted")
			return nil
		}

		w := newWallet(acc)
		hash, err := e.SetConfig(ctx, args[0], next, w)
		if err != nil {
			return err
		}
		appUI.Critical("Config submitted: %s", hash.Hex())
		if config.DontWaitToBeMined {
			return nil
		}
		return waitMined(cmd, networks.EthereumMainnet.GetChainID(), hash.Hex())
	},
}

func waitMined(cmd *cobra.Command, chainID uint64, hash string) error {
	m, err := txMonitor(chainID)
	if err != nil {
		return err
	}
	stop := appUI.Spinner(fmt.Sprintf("Waiting for %s to be mined", hash))
	info, err := m.Wait(cmd.Context(), hash)
	stop()
	if err != nil {
		return err
	}
	switch info.Status {
	case feedmecommon.TxStatusDone:
		appUI.Success("Mined")
	case feedmecommon.TxStatusReverted:
		return fmt.Errorf("transaction %s reverted", hash)
	default:
		return fmt.Errorf("transaction %s is %s", hash, info.Status)
	}
	return nil
}

func init() {
	AddNameConfigFlags(setConfigCmd)
	AddSigningFlags(setConfigCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(namesCmd)
	rootCmd.AddCommand(setConfigCmd)
}

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/config"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/ui"
)

var feedersCmd = &cobra.Command{
	Use:   "feeders [name or address]",
	Short: "Show the latest payments a recipient received across chains",
	Long: `Feeders lists the most recent inbound payments on every supported chain.
The recipient's own chain, or --chain, is read first. Protocol deposits are
shown under the underlying token.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := buildEngine()

		var preferred uint64
		if config.Chain != "" {
			n, err := networks.GetNetwork(config.Chain)
			if err != nil {
				return err
			}
			preferred = n.GetChainID()
		} else if !feedmecommon.IsAddress(args[0]) {
			if nc, err := e.ResolveConfig(ctx, args[0]); err == nil && nc.Configured {
				if n, err := networks.GetNetwork(nc.Config.Chain); err == nil {
					preferred = n.GetChainID()
				}
			}
		}

		recipient, err := e.AddressOf(ctx, args[0])
		if err != nil {
			return err
		}
		stop := appUI.Spinner("Reading payment history")
		fs, err := e.GetRecentFeeders(ctx, recipient.Hex(), preferred)
		stop()
		if err != nil {
			return err
		}
		if done, err := printJSON(fs); done {
			return err
		}
		appUI.Section("Feeders of " + args[0])
		ui.RenderFeeders(appUI, fs, time.Now())
		return nil
	},
}

func init() {
	feedersCmd.Flags().StringVarP(&config.Chain, "chain", "c", "", "Chain to read first.")
	rootCmd.AddCommand(feedersCmd)
}

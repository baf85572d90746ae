package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tranvictor/feedme/config"
	"github.com/tranvictor/feedme/networks"
	"github.com/tranvictor/feedme/ui"
	"github.com/tranvictor/feedme/util/logger"
)

var (
	settings config.Settings
	log      *logrus.Logger
	appUI    ui.UI = ui.NewTerminalUI()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "feedme",
	Short: "Publish where you want to be paid and pay anyone by name",
	Long: fmt.Sprintf(`Feedme lets a recipient publish a payment config under a name they own:
the chain and token they want to receive, the protocol the funds should be
deposited into and an optional split between several recipients.

A payer then sends any supported token from any supported chain to that name.
Feedme resolves the config, picks the route and produces one transaction that
lands the funds the way the recipient asked.

Supported networks: mainnet, base and arbitrum. Each one can use a custom
node, set with the following env vars:
	1. For mainnet: %s
	2. For base: %s
	3. For arbitrum: %s

Settings are read from %s unless --config is given.`,
		networks.EthereumMainnet.GetNodeVariableName(),
		networks.BaseMainnet.GetNodeVariableName(),
		networks.ArbitrumMainnet.GetNodeVariableName(),
		config.DefaultPath(),
	),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	settings, err = config.Load(config.ConfigFile)
	if err != nil {
		return err
	}
	if config.LogLevel != "" {
		settings.Log.Level = config.LogLevel
	}
	log, err = logger.New(settings.Log.Level, settings.Log.JSON)
	if err != nil {
		return err
	}
	if networks.NetworkString != "" {
		if err := networks.SetNetwork(networks.NetworkString); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"network": networks.CurrentNetwork().GetName(),
		"command": cmd.Name(),
	}).Debug("starting")
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&networks.NetworkString, "network", "k", "", "network the wallet starts on. Valid values: \"mainnet\", \"base\", \"arbitrum\".")
	rootCmd.PersistentFlags().StringVar(&config.ConfigFile, "config", "", "settings file. Defaults to ~/.feedme/config.yaml")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&config.JSONOutput, "json", false, "print results as JSON")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		appUI.Error("%s", err)
		stop()
		os.Exit(1)
	}
}

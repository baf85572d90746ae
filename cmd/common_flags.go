package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/feedme/config"
)

func AddSigningFlags(c *cobra.Command) {
	c.PersistentFlags().
		StringVarP(&config.Keystore, "keystore", "K", "", "Keystore file of the signing account. The password is asked interactively.")
	c.PersistentFlags().
		StringVar(&config.PrivKeyFile, "privkey", "", "File holding the hex private key of the signing account.")
	c.PersistentFlags().
		StringVarP(&config.From, "from", "f", "", "Expected address of the signing account. The command stops if the unlocked key doesn't match.")
	c.PersistentFlags().
		BoolVarP(&config.Yes, "yes", "y", false, "Don't ask for confirmation, network switches included.")
	c.PersistentFlags().
		BoolVarP(&config.DontBroadcast, "dry", "d", false, "Will not broadcast the tx, only show it.")
	c.PersistentFlags().
		BoolVarP(&config.DontWaitToBeMined, "no-wait", "F", false, "Will not wait the tx to be mined.")
}

func AddPaymentFlags(c *cobra.Command) {
	c.PersistentFlags().
		StringVarP(&config.Amount, "amount", "a", "", "Amount to pay, in units of the paying token. Eg: 1.5")
	c.PersistentFlags().
		StringVarP(&config.Token, "token", "t", "", "Token to pay with. Defaults to the recipient's token.")
	c.PersistentFlags().
		StringVarP(&config.Chain, "chain", "c", "", "Chain to pay from. Defaults to the recipient's chain.")
}

func AddNameConfigFlags(c *cobra.Command) {
	c.Flags().StringVarP(&config.Chain, "chain", "c", "", "Chain to receive payments on.")
	c.Flags().StringVarP(&config.Token, "token", "t", "", "Token to receive.")
	c.Flags().StringVarP(&config.Protocol, "protocol", "p", "", "Protocol payments land in: aave, lido or aerodrome.")
	c.Flags().StringVar(&config.MonsterName, "monster-name", "", "Name of your monster.")
	c.Flags().StringVar(&config.MonsterType, "monster-type", "", "Type of your monster: octopus, dragon, blob, kraken or plant.")
	c.Flags().StringVarP(&config.Splits, "splits", "s", "", "Split payments between recipients. Eg: alice.eth:60,0x1234...:40. Pass \"\" to remove.")
}

package cmd

import (
	"errors"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	feedmecommon "github.com/tranvictor/feedme/common"
	"github.com/tranvictor/feedme/config"
	"github.com/tranvictor/feedme/engine"
	"github.com/tranvictor/feedme/ens"
	"github.com/tranvictor/feedme/quote"
	"github.com/tranvictor/feedme/ui"
	"github.com/tranvictor/feedme/util/account"
)

var errNoAmount = errors.New("nothing to quote: pass a positive --amount")

// quoteFor builds the intent of paying name from sender and prices it.
func quoteFor(cmd *cobra.Command, e *engine.Engine, name string, sender ethcommon.Address) (*quote.Quote, ens.NameConfig, error) {
	in, nc, err := e.PaymentIntent(cmd.Context(), name, config.Chain, config.Token, config.Amount, sender)
	if err != nil {
		return nil, nc, err
	}
	stop := appUI.Spinner(fmt.Sprintf("Quoting %s %s on %s", config.Amount, in.FromToken, in.FromChain))
	q, err := e.GetQuote(cmd.Context(), in)
	stop()
	if err != nil {
		return nil, nc, err
	}
	if q == nil {
		return nil, nc, errNoAmount
	}
	return q, nc, nil
}

var quoteCmd = &cobra.Command{
	Use:   "quote [name]",
	Short: "Price a payment to a name without sending it",
	Long: `Quote shows what the recipient would get for --amount of --token sent from
--chain. The quote is built for --from, which must be an address since the
route depends on who sends.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !feedmecommon.IsAddress(config.From) {
			return quote.ErrNoSender
		}
		q, nc, err := quoteFor(cmd, buildEngine(), args[0], ethcommon.HexToAddress(config.From))
		if err != nil {
			return err
		}
		if done, err := printJSON(q); done {
			return err
		}
		ui.RenderNameConfig(appUI, nc)
		ui.RenderQuote(appUI, q)
		return nil
	},
}

var payCmd = &cobra.Command{
	Use:   "pay [name]",
	Short: "Pay a name according to its published config",
	Long: `Pay quotes the payment, asks for confirmation, switches the wallet to the
paying chain, approves the token when the router needs it and submits the
payment in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := buildEngine()

		acc, err := unlockAccount()
		if err != nil {
			return err
		}
		q, nc, err := quoteFor(cmd, e, args[0], acc.Address())
		if err != nil {
			return err
		}
		ui.RenderNameConfig(appUI, nc)
		ui.RenderQuote(appUI, q)

		if config.DontBroadcast {
			if done, err := printJSON(q.Transaction); done {
				return err
			}
			appUI.Info(
				"Payment tx to %s on %s, value: %s",
				q.Transaction.To.Hex(),
				ui.ChainName(q.Transaction.ChainID),
				feedmecommon.BigToFloatString(q.Transaction.Value, 18),
			)
			return nil
		}
		if !config.Yes && !appUI.Confirm(fmt.Sprintf("Pay %s?", nc.Name), true) {
			appUI.Warn("Aborted")
			return nil
		}

		w := newWallet(acc)
		if err := w.SwitchChain(ctx, q.FromChainID); err != nil {
			if errors.Is(err, account.ErrSwitchRefused) {
				current, _ := w.ChainID(ctx)
				ui.RenderExecution(appUI, quote.Execution{Aborted: true, ChainID: current})
				return nil
			}
			return err
		}

		approval, err := e.ApprovalTx(ctx, q, acc.Address())
		if err != nil {
			return err
		}
		if approval != nil {
			appUI.Info("Approving %s to spend your token", ethcommon.HexToAddress(q.ApprovalAddress).Hex())
			hash, err := w.SendTransaction(ctx, *approval)
			if err != nil {
				return fmt.Errorf("approving: %w", err)
			}
			if err := waitMined(cmd, q.FromChainID, hash.Hex()); err != nil {
				return fmt.Errorf("approving: %w", err)
			}
		}

		exec, err := e.ExecuteQuote(ctx, w, q)
		if err != nil {
			return err
		}
		if done, err := printJSON(exec); done {
			return err
		}
		ui.RenderExecution(appUI, exec)
		if exec.Aborted || config.DontWaitToBeMined {
			return nil
		}
		return waitMined(cmd, exec.ChainID, exec.TxHash.Hex())
	},
}

func init() {
	AddPaymentFlags(quoteCmd)
	quoteCmd.Flags().StringVarP(&config.From, "from", "f", "", "Address the payment would be sent from.")

	AddPaymentFlags(payCmd)
	AddSigningFlags(payCmd)

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(payCmd)
}

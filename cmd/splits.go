package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/feedme/engine"
	"github.com/tranvictor/feedme/splits"
	"github.com/tranvictor/feedme/ui"
)

var splitsCmd = &cobra.Command{
	Use:   "splits",
	Short: "Check split lists like alice.eth:60,0x1234...:40",
}

var validateSplitsCmd = &cobra.Command{
	Use:   "validate [splits]",
	Short: "Check a split list without touching the network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := engine.ValidateSplits(args[0])
		result := map[string]interface{}{
			"splits":  parsed,
			"isValid": err == nil,
		}
		if err != nil {
			result["error"] = err.Error()
		}
		if done, jerr := printJSON(result); done {
			if jerr != nil {
				return jerr
			}
			return err
		}
		if err != nil {
			return err
		}
		ui.RenderSplits(appUI, parsed)
		ui.RenderValidation(appUI, splits.Validate(parsed))
		return nil
	},
}

var resolveSplitsCmd = &cobra.Command{
	Use:   "resolve [splits]",
	Short: "Resolve every name of a split list to its address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := engine.ValidateSplits(args[0])
		if err != nil {
			return err
		}
		stop := appUI.Spinner("Resolving recipients")
		resolved, err := buildEngine().ResolveSplits(cmd.Context(), parsed)
		stop()
		if err != nil {
			return err
		}
		if done, err := printJSON(resolved); done {
			return err
		}
		ui.RenderSplits(appUI, resolved)
		return nil
	},
}

func init() {
	splitsCmd.AddCommand(validateSplitsCmd)
	splitsCmd.AddCommand(resolveSplitsCmd)
	rootCmd.AddCommand(splitsCmd)
}

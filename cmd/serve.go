package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/feedme/config"
	"github.com/tranvictor/feedme/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over HTTP and a live quote websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := settings.Server.Listen
		if config.Listen != "" {
			listen = config.Listen
		}
		s := server.New(buildEngine(), settings.Debounce, log)
		return s.Run(cmd.Context(), listen)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&config.Listen, "listen", "l", "", "Address to listen on. Defaults to the settings file or 127.0.0.1:8080")
	rootCmd.AddCommand(serveCmd)
}

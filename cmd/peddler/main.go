package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emporia-game/peddler/internal/app"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "peddler",
		Short: "Terminal client for the Emporia marketplace",
		Long: `Peddler is a terminal client for the Emporia trading game. It signs in
against the Emporia API, keeps the session alive, and gives you the market,
your inventory, and your friends in one keyboard-driven view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag beats environment beats config file.
			if opts.APIURL == "" {
				opts.APIURL = os.Getenv("PEDDLER_API_URL")
			}
			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "path to config file")
	flags.StringVar(&opts.APIURL, "api-url", "", "Emporia API origin (overrides config)")
	flags.StringVar(&opts.LogPath, "log", "", "log file path (overrides config)")
	flags.IntVar(&opts.PollEvery, "poll", 0, "account poll interval in seconds")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the peddler version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("peddler", version)
		},
	})

	return root
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pure-justin/power-to-the-people-sub003/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "marketd",
		Short: "Solar installation task marketplace",
		Long: `marketd runs the bid marketplace for solar installation work:
customers post task listings, installers bid, and the best bid wins by
a weighted multi-factor score. Includes background sweeps that close
elapsed bid windows and enforce completion deadlines.`,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.SweepCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

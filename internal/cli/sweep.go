package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pure-justin/power-to-the-people-sub003/internal/config"
	"github.com/pure-justin/power-to-the-people-sub003/internal/sweep"
)

// SweepCmd returns one-shot sweep commands for operators and cron jobs.
func SweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a maintenance sweep once and exit",
	}
	cmd.AddCommand(bidWindowSweepCmd(), slaSweepCmd())
	return cmd
}

func bidWindowSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bid-window",
		Short: "Auto-accept or extend open listings whose bid window elapsed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setupLogging(cfg)

			rt, shutdown, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer shutdown()

			summary, err := sweep.NewBidWindowSweep(rt.svc, rt.store).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("processed=%d accepted=%d extended=%d failed=%d\n",
				summary.Processed, summary.Accepted, summary.Extended, summary.Failed)
			return nil
		},
	}
}

func slaSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sla",
		Short: "Warn on and escalate overdue assigned listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setupLogging(cfg)

			rt, shutdown, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer shutdown()

			policy, err := loadPolicy(cfg)
			if err != nil {
				return err
			}

			summary, err := sweep.NewSLASweep(rt.svc, rt.store, policy, rt.dispatcher).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("processed=%d warned=%d violated=%d in_grace=%d not_overdue=%d unevaluable=%d failed=%d\n",
				summary.Processed, summary.Warned, summary.Violated, summary.InGrace,
				summary.NotOverdue, summary.Unevaluable, summary.Failed)
			return nil
		},
	}
}

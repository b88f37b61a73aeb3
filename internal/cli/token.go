package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pure-justin/power-to-the-people-sub003/internal/config"
	"github.com/pure-justin/power-to-the-people-sub003/internal/httpapi"
)

// TokenCmd mints a bearer token for an actor, for local testing and ops.
func TokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <actor-id>",
		Short: "Issue a bearer token for an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			token, err := httpapi.IssueToken(args[0], cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

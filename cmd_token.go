package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/auth"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/config"
)

var tokenFlags struct {
	ttl time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token <user_id>",
	Short: "Issue a bearer token for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 24*time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	token, err := auth.IssueToken(cfg.JWTSecret, args[0], tokenFlags.ttl)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

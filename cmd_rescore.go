package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/config"
)

var rescoreCmd = &cobra.Command{
	Use:   "rescore <session_id>",
	Short: "Produce the final score of a completed session",
	Long:  "Scores a completed session that has no final score yet.\nAn existing score is printed unchanged.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRescore,
}

func runRescore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, config.Load())
	if err != nil {
		return err
	}
	defer a.Close()

	score, err := a.service.ScoreSession(ctx, args[0])
	if err != nil {
		return fmt.Errorf("rescore %s: %w", args[0], err)
	}
	out := cmd.OutOrStdout()
	if score == nil {
		fmt.Fprintf(out, "Session %s could not be scored: its product no longer exists\n", args[0])
		return nil
	}

	data, err := json.MarshalIndent(score, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

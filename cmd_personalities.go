package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/personality"
)

var personalitiesCmd = &cobra.Command{
	Use:   "personalities",
	Short: "List the buyer personalities",
	Args:  cobra.NoArgs,
	RunE:  runPersonalities,
}

func runPersonalities(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tLABEL\tDESCRIPTION")
	catalog := personality.All()
	for _, t := range personality.Types() {
		p := catalog[t]
		fmt.Fprintf(w, "%s\t%s\t%s\n", t, p.Label, p.Description)
	}
	return w.Flush()
}

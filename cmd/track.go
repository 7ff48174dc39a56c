package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track <linkedin-url>...",
	Short: "Start tracking one or more LinkedIn profiles",
	Long:  "Scrapes each profile, classifies employment status, derives labels (repeat founder, senior operator, role at the target company), and stores the result. Already-tracked profiles are skipped.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}
		cat, err := parseCategory(cmd)
		if err != nil {
			return err
		}
		company, _ := cmd.Flags().GetString("company")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		o := initOrchestrator(st)

		if len(args) == 1 {
			return o.Track(ctx, cat, args[0], company)
		}

		stats, err := o.TrackBatch(ctx, cat, args, company)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Tracked %d profiles, %d failed.\n", stats.Processed, stats.Failed)
		return nil
	},
}

func init() {
	trackCmd.Flags().String("company", "", "target company the profiles are tracked against")
	trackCmd.Flags().String("category", "stealth_founder", "entity category (stealth_founder, current_employee)")
	_ = trackCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(trackCmd)
}

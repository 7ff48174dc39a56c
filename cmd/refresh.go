package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stealthscout/scout-cli/internal/pipeline"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-scrape tracked profiles and detect changes",
	Long:  "Commands for refreshing a single profile, every profile at a company, or every tracked company. Changes trigger status reclassification and an audit trail of transitions.",
}

var refreshProfileCmd = &cobra.Command{
	Use:   "profile <linkedin-url>",
	Short: "Refresh a single tracked profile",
	Args:  cobra.ExactArgs(1),
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

		result, err := initOrchestrator(st).RefreshProfile(ctx, cat, args[0], company)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var refreshCompanyCmd = &cobra.Command{
	Use:   "company <name>...",
	Short: "Refresh every tracked profile for one or more companies",
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

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := initOrchestrator(st).RefreshCompanies(ctx, cat, args)
		if err != nil {
			return err
		}
		printBatchStats(stats)
		return nil
	},
}

var refreshAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Refresh every tracked company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}
		cat, err := parseCategory(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		companies, err := st.ListCompanies(ctx, cat)
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			fmt.Fprintln(os.Stderr, "No tracked companies.")
			return nil
		}

		stats, err := initOrchestrator(st).RefreshCompanies(ctx, cat, companies)
		if err != nil {
			return err
		}
		printBatchStats(stats)
		return nil
	},
}

func printBatchStats(stats *pipeline.BatchStats) {
	fmt.Fprintf(os.Stdout, "Processed %d profiles: %d updated, %d failed, %d status changes.\n",
		stats.Processed, stats.Updated, stats.Failed, len(stats.StatusChanges))
	if stats.RateLimited > 0 {
		fmt.Fprintf(os.Stdout, "  %d failures were upstream rate limits; re-run later to retry them.\n", stats.RateLimited)
	}
	for _, sc := range stats.StatusChanges {
		fmt.Fprintf(os.Stdout, "  %s: %s -> %s\n", sc.LinkedInURL, sc.Old, sc.New)
	}
}

func init() {
	for _, c := range []*cobra.Command{refreshProfileCmd, refreshCompanyCmd, refreshAllCmd} {
		c.Flags().String("category", "stealth_founder", "entity category (stealth_founder, current_employee)")
	}
	refreshProfileCmd.Flags().String("company", "", "target company the profile is tracked against")
	_ = refreshProfileCmd.MarkFlagRequired("company")

	refreshCmd.AddCommand(refreshProfileCmd)
	refreshCmd.AddCommand(refreshCompanyCmd)
	refreshCmd.AddCommand(refreshAllCmd)
	rootCmd.AddCommand(refreshCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/stealthscout/scout-cli/internal/model"
	"github.com/stealthscout/scout-cli/internal/store"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect tracked profiles",
	Long:  "Commands for listing, counting, and reviewing the status history of tracked profiles.",
}

// -- profiles list --

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cat, err := parseCategory(cmd)
		if err != nil {
			return err
		}
		filter, err := parseProfileFilter(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		profiles, err := st.ListProfiles(ctx, cat, filter)
		if err != nil {
			return eris.Wrap(err, "profiles list")
		}
		if len(profiles) == 0 {
			fmt.Fprintln(os.Stderr, "No profiles found.")
			return nil
		}

		if byDuration, _ := cmd.Flags().GetBool("by-duration"); byDuration {
			sortByRecentDuration(profiles)
		}

		formatProfilesList(os.Stdout, profiles)
		return nil
	},
}

// -- profiles count --

var profilesCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count tracked profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cat, err := parseCategory(cmd)
		if err != nil {
			return err
		}
		filter, err := parseProfileFilter(cmd)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.CountProfiles(ctx, cat, filter)
		if err != nil {
			return eris.Wrap(err, "profiles count")
		}
		fmt.Fprintln(os.Stdout, n)
		return nil
	},
}

// -- profiles urls --

var profilesURLsCmd = &cobra.Command{
	Use:   "urls",
	Short: "List the URLs of every profile with a given status",
	Long:  "Prints one LinkedIn URL per line for every tracked profile carrying the given status, across all companies in the category.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cat, err := parseCategory(cmd)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		s := model.ProfileStatus(status)
		if !s.Valid() {
			return eris.Errorf("invalid status %q", status)
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		urls, err := st.ListStatusProfiles(ctx, cat, s)
		if err != nil {
			return eris.Wrap(err, "profiles urls")
		}
		for _, u := range urls {
			fmt.Fprintln(os.Stdout, u)
		}
		return nil
	},
}

// -- profiles history --

var profilesHistoryCmd = &cobra.Command{
	Use:   "history <linkedin-url>",
	Short: "Show the status transition history for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		transitions, err := st.ListStatusTransitions(ctx, args[0], limit)
		if err != nil {
			return eris.Wrap(err, "profiles history")
		}
		if len(transitions) == 0 {
			fmt.Fprintln(os.Stderr, "No status transitions recorded.")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(transitions)
	},
}

func parseProfileFilter(cmd *cobra.Command) (store.ProfileFilter, error) {
	filter := store.ProfileFilter{}
	filter.Company, _ = cmd.Flags().GetString("company")
	filter.Limit, _ = cmd.Flags().GetInt("limit")
	filter.Offset, _ = cmd.Flags().GetInt("offset")

	if status, _ := cmd.Flags().GetString("status"); status != "" {
		s := model.ProfileStatus(status)
		if !s.Valid() {
			return filter, eris.Errorf("invalid status %q", status)
		}
		filter.Status = s
	}

	// Boolean filters are tri-state: only applied when the flag is present.
	if cmd.Flags().Changed("repeat-founder") {
		v, _ := cmd.Flags().GetBool("repeat-founder")
		filter.IsRepeatFounder = &v
	}
	if cmd.Flags().Changed("senior-operator") {
		v, _ := cmd.Flags().GetBool("senior-operator")
		filter.IsSeniorOperator = &v
	}
	return filter, nil
}

// sortByRecentDuration orders profiles by time spent in the most recent role,
// longest first. Ties keep the store's ordering.
func sortByRecentDuration(profiles []model.Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		return recentDurationMonths(&profiles[i]) > recentDurationMonths(&profiles[j])
	})
}

func recentDurationMonths(p *model.Profile) int {
	exp := p.RecentExperience()
	if exp == nil {
		return 0
	}
	return model.ParseDurationMonths(exp.Duration)
}

// formatProfilesList writes a tabular list of profiles to w.
func formatProfilesList(out io.Writer, profiles []model.Profile) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATUS\tCONF\tROLE\tFOUNDER\tOPERATOR\tURL")
	_, _ = fmt.Fprintln(w, "----\t------\t----\t----\t-------\t--------\t---")

	for i := range profiles {
		p := &profiles[i]

		role := ""
		if exp := p.RecentExperience(); exp != nil {
			role = fmt.Sprintf("%s at %s (%s)", exp.Title, exp.Company, exp.Duration)
		}
		if len(role) > 50 {
			role = role[:47] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%t\t%s\n",
			p.FullName,
			p.Status,
			p.StatusConfidence,
			role,
			p.IsRepeatFounder,
			p.IsSeniorOperator,
			p.LinkedInURL,
		)
	}
	_ = w.Flush()
}

func init() {
	for _, c := range []*cobra.Command{profilesListCmd, profilesCountCmd} {
		c.Flags().String("category", "stealth_founder", "entity category (stealth_founder, current_employee)")
		c.Flags().String("company", "", "filter by target company")
		c.Flags().String("status", "", "filter by profile status (stealth, building_in_public, recently_quit, currently_employed)")
		c.Flags().Bool("repeat-founder", false, "filter by the repeat-founder label")
		c.Flags().Bool("senior-operator", false, "filter by the senior-operator label")
		c.Flags().Int("limit", 0, "max number of profiles (0 = no limit)")
		c.Flags().Int("offset", 0, "number of profiles to skip")
	}
	profilesListCmd.Flags().Bool("by-duration", false, "sort by time in the most recent role, longest first")
	profilesHistoryCmd.Flags().Int("limit", 50, "max number of transitions to display")

	profilesURLsCmd.Flags().String("category", "stealth_founder", "entity category (stealth_founder, current_employee)")
	profilesURLsCmd.Flags().String("status", "", "profile status to match (stealth, building_in_public, recently_quit, currently_employed)")
	_ = profilesURLsCmd.MarkFlagRequired("status")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesCountCmd)
	profilesCmd.AddCommand(profilesURLsCmd)
	profilesCmd.AddCommand(profilesHistoryCmd)
	rootCmd.AddCommand(profilesCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List tracked companies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

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
		for _, c := range companies {
			fmt.Fprintln(os.Stdout, c)
		}
		return nil
	},
}

func init() {
	companiesCmd.Flags().String("category", "stealth_founder", "entity category (stealth_founder, current_employee)")
	rootCmd.AddCommand(companiesCmd)
}

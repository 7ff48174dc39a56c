package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stealthscout/scout-cli/internal/model"
	"github.com/stealthscout/scout-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		pool := &store.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore initializes the configured store and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func parseCategory(cmd *cobra.Command) (model.EntityCategory, error) {
	raw, _ := cmd.Flags().GetString("category")
	cat := model.EntityCategory(raw)
	if !cat.Valid() {
		return "", eris.Errorf("invalid category %q (valid: %s, %s)",
			raw, model.CategoryStealthFounder, model.CategoryCurrentEmployee)
	}
	return cat, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		fmt.Fprintln(os.Stdout, "Schema up to date.")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bulk-load classification exemplars",
	Long:  "Loads labelled few-shot exemplars from JSON files into the status and operator example tables.",
}

var seedStatusCmd = &cobra.Command{
	Use:   "status-examples <file.json>",
	Short: "Load status classification exemplars",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var examples []model.StatusExample
		if err := readSeedFile(args[0], &examples); err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range examples {
			if examples[i].ID == "" {
				examples[i].ID = uuid.NewString()
			}
			if examples[i].CreatedAt.IsZero() {
				examples[i].CreatedAt = now
			}
			if !examples[i].AssignedStatus.Valid() {
				return eris.Errorf("seed: example %d has invalid status %q", i, examples[i].AssignedStatus)
			}
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.SeedStatusExamples(ctx, examples)
		if err != nil {
			return eris.Wrap(err, "seed status examples")
		}
		fmt.Fprintf(os.Stdout, "Loaded %d status examples.\n", n)
		return nil
	},
}

var seedOperatorCmd = &cobra.Command{
	Use:   "operator-examples <file.json>",
	Short: "Load senior-operator exemplars",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var examples []model.OperatorExample
		if err := readSeedFile(args[0], &examples); err != nil {
			return err
		}
		for i := range examples {
			if examples[i].ID == "" {
				examples[i].ID = uuid.NewString()
			}
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.SeedOperatorExamples(ctx, examples)
		if err != nil {
			return eris.Wrap(err, "seed operator examples")
		}
		fmt.Fprintf(os.Stdout, "Loaded %d operator examples.\n", n)
		return nil
	},
}

// readSeedFile loads a JSON or YAML exemplar file based on its extension.
func readSeedFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "read seed file")
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return eris.Wrap(err, "parse seed file")
	}
	return nil
}

func init() {
	seedCmd.AddCommand(seedStatusCmd)
	seedCmd.AddCommand(seedOperatorCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

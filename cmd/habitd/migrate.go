package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/habitd/internal/storage"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the SQLite schema",
	}
	cmd.AddCommand(
		migrateStep(flags, "up", "Apply all migrations", storage.MigrateUp),
		migrateStep(flags, "down", "Roll back all migrations", storage.MigrateDown),
	)
	return cmd
}

func migrateStep(flags *rootFlags, use, short string, apply func(*sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			path := cfg.StorageOptions().SQLitePath
			db, err := storage.OpenSQLiteDB(path)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := apply(db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: %s\n", use, path)
			return nil
		},
	}
}

package cli

import (
	"fmt"

	"github.com/fpawel/curtains/internal/backup"
	"github.com/fpawel/curtains/internal/data"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newMigrateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				v, err := data.SchemaVersion(db)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "schema version %d\n", v)
				return err
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations without applying them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(); err != nil {
				return err
			}
			db, err := data.Open(e.DatabaseFile())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			v, err := data.SchemaVersion(db)
			if err != nil {
				return err
			}
			pending, err := data.PendingMigrations(db)
			if err != nil {
				return err
			}
			if err := fields(e.out,
				"Database", e.DatabaseFile(),
				"Schema version", v,
				"Latest version", data.LatestVersion(),
				"Pending", len(pending),
			); err != nil {
				return err
			}
			for _, m := range pending {
				if _, err := fmt.Fprintf(e.out, "  %d %s\n", m.Version, m.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	legacy := &cobra.Command{
		Use:   "legacy FILE",
		Short: "Import customers, products and quotations from an old-format database",
		Long:  "The current database is backed up first and must be empty.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				info, err := backup.Create(cmd.Context(), db, e.BackupDir(), e.Now())
				if err != nil {
					return err
				}
				log.Info("backup before legacy import", "file", info.Path)
				r, err := data.ImportLegacy(cmd.Context(), db, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "imported %s\n", r)
				return err
			})
		},
	}

	cmd.AddCommand(status, legacy)
	return cmd
}

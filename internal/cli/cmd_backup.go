package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fpawel/curtains/internal/backup"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newBackupCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup",
		Aliases: []string{"backups"},
		Short:   "Database backups",
	}
	cmd.AddCommand(
		newBackupCreateCommand(e),
		newBackupListCommand(e),
		newBackupRestoreCommand(e),
		newBackupPruneCommand(e),
	)
	return cmd
}

func newBackupCreateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Snapshot the database and drop the oldest backups above the configured count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				info, err := backup.Create(cmd.Context(), db, e.BackupDir(), e.Now())
				if err != nil {
					return err
				}
				if _, err := backup.Prune(e.BackupDir(), e.Config.Backup.Keep); err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "saved %s\n", info.Path)
				return err
			})
		},
	}
}

func newBackupListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(); err != nil {
				return err
			}
			xs, err := backup.List(e.BackupDir())
			if err != nil {
				return err
			}
			t := newTable(e.out, "NAME", "TIME", "SIZE")
			for _, x := range xs {
				t.row(x.Name, x.Time.Format("2006-01-02 15:04:05"), x.Size)
			}
			return t.flush()
		},
	}
}

func newBackupRestoreCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "restore BACKUP",
		Short: "Replace the database with a backup, keeping the current file as *" + backup.BeforeRestoreSuffix,
		Long: "BACKUP is a file path or the name of a file in the backup directory. " +
			"The database must not be in use by another program.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(); err != nil {
				return err
			}
			src := args[0]
			if _, err := os.Stat(src); os.IsNotExist(err) {
				src = filepath.Join(e.BackupDir(), args[0])
			}
			target := e.DatabaseFile()
			if err := backup.Restore(cmd.Context(), src, target); err != nil {
				return err
			}
			_, err := fmt.Fprintf(e.out, "restored %s from %s\n", target, src)
			return err
		},
	}
}

func newBackupPruneCommand(e *env) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove all but the newest backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(); err != nil {
				return err
			}
			if !changed(cmd, "keep") {
				keep = e.Config.Backup.Keep
			}
			removed, err := backup.Prune(e.BackupDir(), keep)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(e.out, "removed %d backups\n", len(removed))
			return err
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "number of newest backups to keep, config value when not given")
	return cmd
}

// Package cli is the command line front end of the quotation database.
package cli

import (
	"context"
	"io"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/bootstrap"
	"github.com/fpawel/curtains/internal/paths"
	"github.com/jmoiron/sqlx"
	"github.com/powerman/structlog"
	"github.com/spf13/cobra"
)

var log = structlog.New()

// env is shared by all commands of one invocation.
type env struct {
	out     io.Writer
	errOut  io.Writer
	home    string
	verbose bool

	*bootstrap.Env
}

// Run executes the command line args.
func Run(ctx context.Context, args []string, out, errOut io.Writer) error {
	e := &env{out: out, errOut: errOut}
	cmd := newRootCommand(e)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if e.Env != nil {
		if errClose := e.Env.Close(); errClose != nil && err == nil {
			err = errClose
		}
	}
	if err != nil {
		log.Debug("command failed", "args", args, "error", merry.Details(err))
	}
	return err
}

// UserMessage is the text shown to the user for err.
func UserMessage(err error) string {
	if s := merry.UserMessage(err); s != "" {
		return s
	}
	return err.Error()
}

func newRootCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "curtains",
		Short:         "Customers, product catalog and quotations of a curtain shop",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(e.out)
	cmd.SetErr(e.errOut)
	cmd.PersistentFlags().StringVar(&e.home, "home", "", "data directory, overrides $"+paths.EnvHome)
	cmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "copy log output to stderr")

	cmd.AddCommand(
		newCustomerCommand(e),
		newProductCommand(e),
		newQuoteCommand(e),
		newPaymentCommand(e),
		newEmployeeCommand(e),
		newAssignmentCommand(e),
		newBackupCommand(e),
		newSettingsCommand(e),
		newStatsCommand(e),
		newMigrateCommand(e),
		newSeedCommand(e),
	)
	return cmd
}

// setup resolves directories, loads config.toml and starts logging.
func (e *env) setup() error {
	if e.Env != nil {
		return nil
	}
	var console io.Writer
	if e.verbose {
		console = e.errOut
	}
	x, err := bootstrap.New(e.home, console)
	if err != nil {
		return err
	}
	e.Env = x
	return nil
}

func (e *env) openDB(ctx context.Context) (*sqlx.DB, error) {
	if err := e.setup(); err != nil {
		return nil, err
	}
	return e.OpenDB(ctx)
}

// withDB runs fn over the migrated database.
func (e *env) withDB(cmd *cobra.Command, fn func(db *sqlx.DB) error) error {
	db, err := e.openDB(cmd.Context())
	if err != nil {
		return err
	}
	err = fn(db)
	if errClose := db.Close(); errClose != nil && err == nil {
		err = merry.Wrap(errClose)
	}
	return err
}

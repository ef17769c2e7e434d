package cli

import (
	"fmt"

	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func newEmployeeCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employee",
		Aliases: []string{"employees"},
		Short:   "Installers and delivery staff",
	}

	var in quote.EmployeeInput
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.FullName = args[0]
			return e.withDB(cmd, func(db *sqlx.DB) error {
				x, err := data.CreateEmployee(db, in)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "employee %d added\n", x.ID)
				return err
			})
		},
	}
	add.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	add.Flags().StringVar(&in.Role, "role", "", "role")

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withDB(cmd, func(db *sqlx.DB) error {
				xs, err := data.ListEmployees(db, !all)
				if err != nil {
					return err
				}
				t := newTable(e.out, "ID", "NAME", "PHONE", "ROLE", "ACTIVE")
				for _, x := range xs {
					t.row(x.ID, x.FullName, x.Phone, x.Role, x.Active)
				}
				return t.flush()
			})
		},
	}
	list.Flags().BoolVarP(&all, "all", "a", false, "include inactive employees")

	setActive := func(use, short string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " EMPLOYEE_ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "employee")
				if err != nil {
					return err
				}
				return e.withDB(cmd, func(db *sqlx.DB) error {
					return data.SetEmployeeActive(db, id, active)
				})
			},
		}
	}

	cmd.AddCommand(add, list,
		setActive("deactivate", "Hide an employee from scheduling", false),
		setActive("activate", "Make an employee available for scheduling", true),
	)
	return cmd
}

func newAssignmentCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignment",
		Aliases: []string{"assignments"},
		Short:   "Delivery and installation schedule",
	}
	cmd.AddCommand(
		newAssignmentAddCommand(e),
		newAssignmentListCommand(e),
		newAssignmentStatusCommand(e),
		newAssignmentRemoveCommand(e),
	)
	return cmd
}

func newAssignmentAddCommand(e *env) *cobra.Command {
	var (
		typ, date string
		employee  int64
		in        quote.AssignmentInput
	)
	cmd := &cobra.Command{
		Use:   "add QUOTATION",
		Short: "Schedule a delivery or installation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.Type, err = quote.ParseAssignmentType(typ); err != nil {
				return err
			}
			if in.ScheduledDate, err = parseDate(date, "date"); err != nil {
				return err
			}
			if employee > 0 {
				in.EmployeeID = &employee
			}
			return e.withQuotation(cmd, args[0], func(db *sqlx.DB, id int64) error {
				in.QuotationID = id
				x, err := data.CreateAssignment(db, in)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(e.out, "assignment %d planned on %s\n", x.ID, cell(x.ScheduledDate))
				return err
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&typ, "type", string(quote.Installation), "delivery or installation")
	fs.StringVar(&date, "date", "", "scheduled date YYYY-MM-DD")
	fs.StringVar(&in.TimeStart, "start", "", "start time HH:MM")
	fs.StringVar(&in.TimeEnd, "end", "", "end time HH:MM")
	fs.StringVar(&in.Location, "location", "", "address of the visit")
	fs.Int64Var(&employee, "employee", 0, "employee id")
	fs.StringVar(&in.Notes, "notes", "", "notes")
	return cmd
}

func newAssignmentListCommand(e *env) *cobra.Command {
	var from, to, typ, status string
	var employee int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments by date and start time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := data.AssignmentFilter{EmployeeID: employee}
			var err error
			if f.From, err = parseDate(from, "from date"); err != nil {
				return err
			}
			if f.To, err = parseDate(to, "to date"); err != nil {
				return err
			}
			if typ != "" {
				if f.Type, err = quote.ParseAssignmentType(typ); err != nil {
					return err
				}
			}
			if status != "" {
				if f.Status, err = quote.ParseAssignmentStatus(status); err != nil {
					return err
				}
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				xs, err := data.ListAssignments(db, f)
				if err != nil {
					return err
				}
				t := newTable(e.out, "ID", "DATE", "TIME", "TYPE", "QUOTATION", "CUSTOMER", "EMPLOYEE", "STATUS", "LOCATION")
				for _, x := range xs {
					t.row(x.ID, x.ScheduledDate, timeRange(x.TimeStart, x.TimeEnd), string(x.Type),
						x.Serial, x.CustomerName, x.EmployeeName, string(x.Status), x.Location)
				}
				return t.flush()
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&from, "from", "", "on or after YYYY-MM-DD")
	fs.StringVar(&to, "to", "", "on or before YYYY-MM-DD")
	fs.StringVar(&typ, "type", "", "delivery or installation")
	fs.StringVar(&status, "status", "", "planned, in_progress, done or cancelled")
	fs.Int64Var(&employee, "employee", 0, "employee id")
	return cmd
}

func timeRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	}
	return start + "-" + end
}

func newAssignmentStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status ASSIGNMENT_ID STATUS",
		Short: "Set the status: planned, in_progress, done or cancelled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "assignment")
			if err != nil {
				return err
			}
			status, err := quote.ParseAssignmentStatus(args[1])
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				return data.SetAssignmentStatus(db, id, status)
			})
		},
	}
}

func newAssignmentRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ASSIGNMENT_ID",
		Short: "Delete an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "assignment")
			if err != nil {
				return err
			}
			return e.withDB(cmd, func(db *sqlx.DB) error {
				return data.DeleteAssignment(db, id)
			})
		},
	}
}

package data

import (
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
)

func CreateEmployee(db *sqlx.DB, in quote.EmployeeInput) (quote.Employee, error) {
	if err := in.Validate(); err != nil {
		return quote.Employee{}, err
	}
	x := quote.Employee{
		FullName:  in.FullName,
		Phone:     in.Phone,
		Role:      in.Role,
		Active:    true,
		CreatedAt: now(),
	}
	r, err := db.NamedExec(`
INSERT INTO employee (full_name, phone, role, active, created_at)
VALUES (:full_name, :phone, :role, :active, :created_at)`, x)
	if err != nil {
		return x, merry.Wrap(err)
	}
	x.ID, err = getNewInsertedID(r)
	return x, err
}

func GetEmployee(db sqlx.Queryer, employeeID int64) (x quote.Employee, err error) {
	err = getOne(db, &x, "employee", employeeID, `SELECT * FROM employee WHERE employee_id = ?`, employeeID)
	return
}

func ListEmployees(db *sqlx.DB, activeOnly bool) (xs []quote.Employee, err error) {
	err = db.Select(&xs, `SELECT * FROM employee WHERE NOT ? OR active ORDER BY full_name, employee_id`, activeOnly)
	return xs, merry.Wrap(err)
}

func SetEmployeeActive(db *sqlx.DB, employeeID int64, active bool) error {
	r, err := db.Exec(`UPDATE employee SET active = ? WHERE employee_id = ?`, active, employeeID)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "employee", employeeID)
}

type AssignmentFilter struct {
	From       time.Time
	To         time.Time // inclusive day
	Type       quote.AssignmentType
	EmployeeID int64
	Status     quote.AssignmentStatus
}

const sqlSelectAssignments = `
SELECT assignment.*,
       quotation.serial_number AS serial_number,
       customer.name AS customer_name,
       COALESCE(employee.full_name, '') AS employee_name
FROM assignment
INNER JOIN quotation ON quotation.quotation_id = assignment.quotation_id
INNER JOIN customer ON customer.customer_id = quotation.customer_id
LEFT JOIN employee ON employee.employee_id = assignment.employee_id`

func CreateAssignment(db *sqlx.DB, in quote.AssignmentInput) (quote.Assignment, error) {
	if err := in.Validate(); err != nil {
		return quote.Assignment{}, err
	}
	var x quote.Assignment
	err := withTx(db, func(tx *sqlx.Tx) error {
		if _, err := getQuotation(tx, in.QuotationID); err != nil {
			return err
		}
		if in.EmployeeID != nil {
			if _, err := GetEmployee(tx, *in.EmployeeID); err != nil {
				return err
			}
		}
		t := now()
		x = quote.Assignment{
			QuotationID:   in.QuotationID,
			Type:          in.Type,
			ScheduledDate: day(in.ScheduledDate),
			TimeStart:     in.TimeStart,
			TimeEnd:       in.TimeEnd,
			Location:      in.Location,
			Status:        quote.Planned,
			Notes:         in.Notes,
			CreatedAt:     t,
			UpdatedAt:     t,
		}
		if in.EmployeeID != nil {
			x.EmployeeID.Int64, x.EmployeeID.Valid = *in.EmployeeID, true
		}
		r, err := sqlx.NamedExec(tx, `
INSERT INTO assignment (quotation_id, type, scheduled_date, time_start, time_end, location, employee_id, status, notes,
                        created_at, updated_at)
VALUES (:quotation_id, :type, :scheduled_date, :time_start, :time_end, :location, :employee_id, :status, :notes,
        :created_at, :updated_at)`, x)
		if err != nil {
			return merry.Wrap(err)
		}
		if x.ID, err = getNewInsertedID(r); err != nil {
			return err
		}
		x, err = GetAssignment(tx, x.ID)
		return err
	})
	return x, err
}

func GetAssignment(db sqlx.Queryer, assignmentID int64) (x quote.Assignment, err error) {
	err = getOne(db, &x, "assignment", assignmentID, sqlSelectAssignments+` WHERE assignment_id = ?`, assignmentID)
	return
}

// ListAssignments orders by date and start time. Zero filter fields match everything.
func ListAssignments(db *sqlx.DB, f AssignmentFilter) ([]quote.Assignment, error) {
	var (
		where []string
		args  []interface{}
	)
	if !f.From.IsZero() {
		where = append(where, `assignment.scheduled_date >= ?`)
		args = append(args, day(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, `assignment.scheduled_date < ?`)
		args = append(args, day(f.To).AddDate(0, 0, 1))
	}
	if f.Type != "" {
		where = append(where, `assignment.type = ?`)
		args = append(args, f.Type)
	}
	if f.EmployeeID != 0 {
		where = append(where, `assignment.employee_id = ?`)
		args = append(args, f.EmployeeID)
	}
	if f.Status != "" {
		where = append(where, `assignment.status = ?`)
		args = append(args, f.Status)
	}
	query := sqlSelectAssignments
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY assignment.scheduled_date, assignment.time_start, assignment_id"

	var xs []quote.Assignment
	if err := db.Select(&xs, query, args...); err != nil {
		return nil, merry.Wrap(err)
	}
	return xs, nil
}

func SetAssignmentStatus(db *sqlx.DB, assignmentID int64, status quote.AssignmentStatus) error {
	status, err := quote.ParseAssignmentStatus(string(status))
	if err != nil {
		return err
	}
	r, err := db.Exec(`UPDATE assignment SET status = ?, updated_at = ? WHERE assignment_id = ?`,
		status, now(), assignmentID)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "assignment", assignmentID)
}

func DeleteAssignment(db *sqlx.DB, assignmentID int64) error {
	r, err := db.Exec(`DELETE FROM assignment WHERE assignment_id = ?`, assignmentID)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "assignment", assignmentID)
}

package data

import (
	"testing"
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/stretchr/testify/require"
)

func TestEmployees(t *testing.T) {
	db := newTestDB(t)
	a, err := CreateEmployee(db, quote.EmployeeInput{FullName: "Khalid", Role: "installer"})
	require.NoError(t, err)
	require.True(t, a.Active)
	_, err = CreateEmployee(db, quote.EmployeeInput{FullName: "Badr"})
	require.NoError(t, err)

	require.NoError(t, SetEmployeeActive(db, a.ID, false))

	xs, err := ListEmployees(db, true)
	require.NoError(t, err)
	require.Len(t, xs, 1)
	require.Equal(t, "Badr", xs[0].FullName)

	xs, err = ListEmployees(db, false)
	require.NoError(t, err)
	require.Len(t, xs, 2)

	require.True(t, merry.Is(SetEmployeeActive(db, a.ID+10, true), quote.ErrNotFound))
}

func TestAssignments(t *testing.T) {
	db := newTestDB(t)
	c := mustCustomer(t, db, "Sara", "")
	q := mustQuotation(t, db, c.ID)
	e, err := CreateEmployee(db, quote.EmployeeInput{FullName: "Khalid"})
	require.NoError(t, err)

	may := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }

	a1, err := CreateAssignment(db, quote.AssignmentInput{
		QuotationID:   q.ID,
		Type:          quote.Installation,
		ScheduledDate: may(2),
		TimeStart:     "13:00",
		Location:      "Riyadh",
		EmployeeID:    &e.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Khalid", a1.EmployeeName)
	require.Equal(t, q.Serial, a1.Serial)
	require.Equal(t, quote.Planned, a1.Status)

	a2, err := CreateAssignment(db, quote.AssignmentInput{
		QuotationID:   q.ID,
		Type:          quote.Delivery,
		ScheduledDate: may(2),
		TimeStart:     "09:00",
		Location:      "Riyadh",
	})
	require.NoError(t, err)
	_, err = CreateAssignment(db, quote.AssignmentInput{QuotationID: q.ID, Type: quote.Delivery, ScheduledDate: may(20),
		Location: "Jeddah"})
	require.NoError(t, err)

	xs, err := ListAssignments(db, AssignmentFilter{From: may(1), To: may(2)})
	require.NoError(t, err)
	require.Len(t, xs, 2)
	require.Equal(t, a2.ID, xs[0].ID)
	require.Equal(t, a1.ID, xs[1].ID)

	xs, err = ListAssignments(db, AssignmentFilter{EmployeeID: e.ID})
	require.NoError(t, err)
	require.Len(t, xs, 1)

	xs, err = ListAssignments(db, AssignmentFilter{Type: quote.Delivery})
	require.NoError(t, err)
	require.Len(t, xs, 2)

	require.NoError(t, SetAssignmentStatus(db, a1.ID, quote.Done))
	xs, err = ListAssignments(db, AssignmentFilter{Status: quote.Done})
	require.NoError(t, err)
	require.Len(t, xs, 1)
	require.Equal(t, a1.ID, xs[0].ID)

	require.NoError(t, DeleteAssignment(db, a2.ID))
	require.True(t, merry.Is(DeleteAssignment(db, a2.ID), quote.ErrNotFound))

	_, err = CreateAssignment(db, quote.AssignmentInput{QuotationID: q.ID, Type: quote.Delivery, ScheduledDate: may(3),
		Location: "Riyadh", TimeStart: "10:00", TimeEnd: "09:00"})
	require.True(t, merry.Is(err, quote.ErrInvalid))

	missing := e.ID + 5
	_, err = CreateAssignment(db, quote.AssignmentInput{QuotationID: q.ID, Type: quote.Delivery, ScheduledDate: may(3),
		Location: "Riyadh", EmployeeID: &missing})
	require.True(t, merry.Is(err, quote.ErrNotFound))
}

package data

import (
	"time"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Stats struct {
	Customers           int
	Products            int
	Quotations          int
	QuotationsThisMonth int
	MonthRevenue        decimal.Decimal // grand totals of quotations created this month
	ByStatus            map[quote.Status]int
	UpcomingAssignments int
}

func DashboardStats(db *sqlx.DB, now time.Time) (Stats, error) {
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	r := Stats{ByStatus: make(map[quote.Status]int)}

	for _, x := range []struct {
		p     *int
		query string
	}{
		{&r.Customers, `SELECT COUNT(*) FROM customer`},
		{&r.Products, `SELECT COUNT(*) FROM product`},
		{&r.Quotations, `SELECT COUNT(*) FROM quotation`},
	} {
		if err := db.Get(x.p, x.query); err != nil {
			return r, merry.Wrap(err)
		}
	}

	var totals []decimal.Decimal
	if err := db.Select(&totals, `SELECT grand_total FROM quotation WHERE created_at >= ? AND created_at < ?`,
		monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return r, merry.Wrap(err)
	}
	r.QuotationsThisMonth = len(totals)
	r.MonthRevenue = decimal.Zero
	for _, x := range totals {
		r.MonthRevenue = r.MonthRevenue.Add(x)
	}

	var byStatus []struct {
		Status quote.Status `db:"status"`
		Count  int          `db:"count"`
	}
	if err := db.Select(&byStatus, `SELECT status, COUNT(*) AS count FROM quotation GROUP BY status`); err != nil {
		return r, merry.Wrap(err)
	}
	for _, x := range byStatus {
		r.ByStatus[x.Status] = x.Count
	}

	err := db.Get(&r.UpcomingAssignments, `SELECT COUNT(*) FROM assignment WHERE scheduled_date >= ? AND status IN (?, ?)`,
		day(now), quote.Planned, quote.InProgress)
	return r, merry.Wrap(err)
}

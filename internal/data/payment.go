package data

import (
	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func AddPayment(db *sqlx.DB, quotationID int64, in quote.PaymentInput) (quote.Payment, error) {
	if err := in.Validate(); err != nil {
		return quote.Payment{}, err
	}
	if _, err := getQuotation(db, quotationID); err != nil {
		return quote.Payment{}, err
	}
	p := quote.Payment{
		QuotationID: quotationID,
		Date:        day(in.Date),
		Amount:      in.Amount,
		Method:      in.Method,
		Reference:   in.Reference,
		Notes:       in.Notes,
		CreatedAt:   now(),
	}
	r, err := db.NamedExec(`
INSERT INTO payment (quotation_id, date, amount, method, reference, notes, created_at)
VALUES (:quotation_id, :date, :amount, :method, :reference, :notes, :created_at)`, p)
	if err != nil {
		return p, merry.Wrap(err)
	}
	p.ID, err = getNewInsertedID(r)
	return p, err
}

func ListPayments(db sqlx.Queryer, quotationID int64) (xs []quote.Payment, err error) {
	err = sqlx.Select(db, &xs, `SELECT * FROM payment WHERE quotation_id = ? ORDER BY date, payment_id`, quotationID)
	return xs, merry.Wrap(err)
}

func DeletePayment(db *sqlx.DB, paymentID int64) error {
	r, err := db.Exec(`DELETE FROM payment WHERE payment_id = ?`, paymentID)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "payment", paymentID)
}

// PaymentSummary returns what was paid against the quotation grand total. An overpaid quotation has a negative balance.
func PaymentSummary(db *sqlx.DB, quotationID int64) (quote.PaymentSummary, error) {
	q, err := getQuotation(db, quotationID)
	if err != nil {
		return quote.PaymentSummary{}, err
	}
	xs, err := ListPayments(db, quotationID)
	if err != nil {
		return quote.PaymentSummary{}, err
	}
	paid := decimal.Zero
	for _, p := range xs {
		paid = paid.Add(p.Amount)
	}
	return quote.PaymentSummary{
		GrandTotal: q.GrandTotal,
		Paid:       paid,
		Balance:    q.GrandTotal.Sub(paid),
	}, nil
}

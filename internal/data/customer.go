package data

import (
	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
)

func CreateCustomer(db *sqlx.DB, in quote.CustomerInput) (quote.Customer, error) {
	return createCustomer(db, in)
}

func createCustomer(db sqlx.Ext, in quote.CustomerInput) (quote.Customer, error) {
	if err := in.Validate(); err != nil {
		return quote.Customer{}, err
	}
	c := customerOf(in)
	c.CreatedAt = now()
	r, err := sqlx.NamedExec(db, `
INSERT INTO customer (type, name, email, phone, address, company_name, company_vat, company_address, created_at)
VALUES (:type, :name, :email, :phone, :address, :company_name, :company_vat, :company_address, :created_at)`, c)
	if err != nil {
		return quote.Customer{}, merry.Wrap(err)
	}
	if c.ID, err = getNewInsertedID(r); err != nil {
		return quote.Customer{}, err
	}
	return c, nil
}

func GetCustomer(db sqlx.Queryer, customerID int64) (c quote.Customer, err error) {
	err = getOne(db, &c, "customer", customerID, `SELECT * FROM customer WHERE customer_id = ?`, customerID)
	return
}

func ListCustomers(db *sqlx.DB) (xs []quote.Customer, err error) {
	err = merry.Wrap(db.Select(&xs, `SELECT * FROM customer ORDER BY name, customer_id`))
	return
}

// SearchCustomers matches query against name, email and company name, and phone against the phone.
// Empty criteria list every customer.
func SearchCustomers(db *sqlx.DB, query, phone string) (xs []quote.Customer, err error) {
	err = db.Select(&xs, `
SELECT * FROM customer
WHERE (?1 = '' OR name LIKE ?2 ESCAPE '\' OR email LIKE ?2 ESCAPE '\' OR company_name LIKE ?2 ESCAPE '\')
  AND (?3 = '' OR phone LIKE ?4 ESCAPE '\')
ORDER BY name, customer_id`, query, likeArg(query), phone, likeArg(phone))
	return xs, merry.Wrap(err)
}

func UpdateCustomer(db *sqlx.DB, customerID int64, in quote.CustomerInput) (quote.Customer, error) {
	if err := in.Validate(); err != nil {
		return quote.Customer{}, err
	}
	c := customerOf(in)
	c.ID = customerID
	r, err := db.NamedExec(`
UPDATE customer
 SET type=:type,
     name=:name,
     email=:email,
     phone=:phone,
     address=:address,
     company_name=:company_name,
     company_vat=:company_vat,
     company_address=:company_address
WHERE customer_id=:customer_id`, c)
	if err != nil {
		return quote.Customer{}, merry.Wrap(err)
	}
	if err := expectOneRowAffected(r, "customer", customerID); err != nil {
		return quote.Customer{}, err
	}
	return GetCustomer(db, customerID)
}

// DeleteCustomer refuses customers that still have quotations.
func DeleteCustomer(db *sqlx.DB, customerID int64) error {
	return withTx(db, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.Get(&n, `SELECT COUNT(*) FROM quotation WHERE customer_id = ?`, customerID); err != nil {
			return merry.Wrap(err)
		}
		if n > 0 {
			return quote.ErrInUse.Appendf("customer %d has %d quotations", customerID, n).
				WithUserMessage("cannot delete customer with existing quotations")
		}
		r, err := tx.Exec(`DELETE FROM customer WHERE customer_id = ?`, customerID)
		if err != nil {
			return merry.Wrap(err)
		}
		return expectOneRowAffected(r, "customer", customerID)
	})
}

func customerOf(in quote.CustomerInput) quote.Customer {
	return quote.Customer{
		Type:           in.Type,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		Address:        in.Address,
		CompanyName:    in.CompanyName,
		CompanyVAT:     in.CompanyVAT,
		CompanyAddress: in.CompanyAddress,
	}
}

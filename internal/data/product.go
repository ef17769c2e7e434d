package data

import (
	"database/sql"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
)

func CreateProduct(db *sqlx.DB, in quote.ProductInput) (quote.Product, error) {
	if err := in.Validate(); err != nil {
		return quote.Product{}, err
	}
	return createProduct(db, in)
}

func createProduct(db sqlx.Ext, in quote.ProductInput) (quote.Product, error) {
	p := productOf(in)
	p.CreatedAt = now()
	r, err := sqlx.NamedExec(db, `
INSERT INTO product (name, category, unit_type, base_unit_price, currency, notes, created_at)
VALUES (:name, :category, :unit_type, :base_unit_price, :currency, :notes, :created_at)`, p)
	if err != nil {
		return quote.Product{}, merry.Wrap(err)
	}
	if p.ID, err = getNewInsertedID(r); err != nil {
		return quote.Product{}, err
	}
	return p, nil
}

// GetProduct returns the product with its variations and links.
func GetProduct(db sqlx.Queryer, productID int64) (quote.Product, error) {
	var p quote.Product
	if err := getOne(db, &p, "product", productID, `SELECT * FROM product WHERE product_id = ?`, productID); err != nil {
		return p, err
	}
	var err error
	if p.Variations, err = ListVariations(db, productID); err != nil {
		return p, err
	}
	if p.Links, err = ListLinks(db, productID); err != nil {
		return p, err
	}
	return p, nil
}

func ListProducts(db *sqlx.DB) ([]quote.Product, error) {
	return SearchProducts(db, "")
}

// SearchProducts matches name or category, with variations loaded.
func SearchProducts(db *sqlx.DB, query string) ([]quote.Product, error) {
	var xs []quote.Product
	err := db.Select(&xs, `
SELECT * FROM product
WHERE ?1 = '' OR name LIKE ?2 ESCAPE '\' OR category LIKE ?2 ESCAPE '\'
ORDER BY name, product_id`, query, likeArg(query))
	if err != nil {
		return nil, merry.Wrap(err)
	}
	var vs []quote.Variation
	if err := db.Select(&vs, `SELECT * FROM product_variation ORDER BY name, variation_id`); err != nil {
		return nil, merry.Wrap(err)
	}
	m := make(map[int64][]quote.Variation)
	for _, v := range vs {
		m[v.ProductID] = append(m[v.ProductID], v)
	}
	for i := range xs {
		xs[i].Variations = m[xs[i].ID]
	}
	return xs, nil
}

func FindProductByName(db sqlx.Queryer, name string) (p quote.Product, ok bool, err error) {
	err = sqlx.Get(db, &p, `SELECT * FROM product WHERE name = ? ORDER BY product_id LIMIT 1`, name)
	if err == sql.ErrNoRows {
		return p, false, nil
	}
	if err != nil {
		return p, false, merry.Wrap(err)
	}
	return p, true, nil
}

func UpdateProduct(db *sqlx.DB, productID int64, in quote.ProductInput) (quote.Product, error) {
	if err := in.Validate(); err != nil {
		return quote.Product{}, err
	}
	if err := updateProduct(db, productID, in); err != nil {
		return quote.Product{}, err
	}
	return GetProduct(db, productID)
}

func updateProduct(db sqlx.Ext, productID int64, in quote.ProductInput) error {
	p := productOf(in)
	p.ID = productID
	r, err := sqlx.NamedExec(db, `
UPDATE product
 SET name=:name,
     category=:category,
     unit_type=:unit_type,
     base_unit_price=:base_unit_price,
     currency=:currency,
     notes=:notes
WHERE product_id=:product_id`, p)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "product", productID)
}

// DeleteProduct refuses products used by quotation items. Variations and links go with the product.
func DeleteProduct(db *sqlx.DB, productID int64) error {
	return withTx(db, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.Get(&n, `SELECT COUNT(*) FROM quote_item WHERE product_id = ?`, productID); err != nil {
			return merry.Wrap(err)
		}
		if n > 0 {
			return quote.ErrInUse.Appendf("product %d is used by %d quotation items", productID, n).
				WithUserMessage("cannot delete product used in quotations")
		}
		r, err := tx.Exec(`DELETE FROM product WHERE product_id = ?`, productID)
		if err != nil {
			return merry.Wrap(err)
		}
		return expectOneRowAffected(r, "product", productID)
	})
}

func AddVariation(db *sqlx.DB, productID int64, in quote.VariationInput) (quote.Variation, error) {
	if err := in.Validate(); err != nil {
		return quote.Variation{}, err
	}
	if _, err := GetProduct(db, productID); err != nil {
		return quote.Variation{}, err
	}
	return addVariation(db, productID, in)
}

func addVariation(db sqlx.Ext, productID int64, in quote.VariationInput) (quote.Variation, error) {
	v := quote.Variation{
		ProductID:         productID,
		Name:              in.Name,
		UnitPriceOverride: quote.NullDec(in.UnitPriceOverride),
		SKU:               in.SKU,
		ImagePath:         in.ImagePath,
		CreatedAt:         now(),
	}
	r, err := sqlx.NamedExec(db, `
INSERT INTO product_variation (product_id, name, unit_price_override, sku, image_path, created_at)
VALUES (:product_id, :name, :unit_price_override, :sku, :image_path, :created_at)`, v)
	if err != nil {
		return v, merry.Wrap(err)
	}
	v.ID, err = getNewInsertedID(r)
	return v, err
}

func GetVariation(db sqlx.Queryer, variationID int64) (v quote.Variation, err error) {
	err = getOne(db, &v, "variation", variationID, `SELECT * FROM product_variation WHERE variation_id = ?`, variationID)
	return
}

func ListVariations(db sqlx.Queryer, productID int64) (xs []quote.Variation, err error) {
	err = sqlx.Select(db, &xs, `SELECT * FROM product_variation WHERE product_id = ? ORDER BY name, variation_id`, productID)
	return xs, merry.Wrap(err)
}

func DeleteVariation(db *sqlx.DB, variationID int64) error {
	r, err := db.Exec(`DELETE FROM product_variation WHERE variation_id = ?`, variationID)
	if err != nil {
		return merry.Wrap(err)
	}
	return expectOneRowAffected(r, "variation", variationID)
}

func ClearVariations(db sqlx.Execer, productID int64) error {
	_, err := db.Exec(`DELETE FROM product_variation WHERE product_id = ?`, productID)
	return merry.Wrap(err)
}

// AddLink links two products. An existing link is returned unchanged.
func AddLink(db *sqlx.DB, productID, linkedProductID int64, linkType, note string) (quote.ProductLink, error) {
	if productID == linkedProductID {
		return quote.ProductLink{}, quote.ErrInvalid.Appendf("product %d linked to itself", productID).
			WithUserMessage("a product can not be linked to itself")
	}
	var link quote.ProductLink
	err := withTx(db, func(tx *sqlx.Tx) error {
		for _, id := range []int64{productID, linkedProductID} {
			var n int
			if err := tx.Get(&n, `SELECT COUNT(*) FROM product WHERE product_id = ?`, id); err != nil {
				return merry.Wrap(err)
			}
			if n == 0 {
				return notFound("product", id)
			}
		}
		if _, err := tx.Exec(`
INSERT INTO product_link (product_id, linked_product_id, link_type, note) VALUES (?, ?, ?, ?)
ON CONFLICT (product_id, linked_product_id) DO NOTHING`, productID, linkedProductID, linkType, note); err != nil {
			return merry.Wrap(err)
		}
		return merry.Wrap(tx.Get(&link, sqlSelectLinks+` WHERE product_link.product_id = ? AND linked_product_id = ?`,
			productID, linkedProductID))
	})
	return link, err
}

const sqlSelectLinks = `
SELECT link_id, product_link.product_id, linked_product_id, link_type, note, product.name AS linked_name
FROM product_link
INNER JOIN product ON product.product_id = product_link.linked_product_id`

func ListLinks(db sqlx.Queryer, productID int64) (xs []quote.ProductLink, err error) {
	err = sqlx.Select(db, &xs, sqlSelectLinks+` WHERE product_link.product_id = ? ORDER BY linked_name`, productID)
	return xs, merry.Wrap(err)
}

func ClearLinks(db *sqlx.DB, productID int64) error {
	_, err := db.Exec(`DELETE FROM product_link WHERE product_id = ?`, productID)
	return merry.Wrap(err)
}

func productOf(in quote.ProductInput) quote.Product {
	return quote.Product{
		Name:          in.Name,
		Category:      in.Category,
		UnitType:      in.UnitType,
		BaseUnitPrice: in.BaseUnitPrice,
		Currency:      in.Currency,
		Notes:         in.Notes,
	}
}

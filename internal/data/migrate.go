package data

import (
	"sort"
	"time"

	"github.com/ansel1/merry"
	"github.com/jmoiron/sqlx"
)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "catalog, customers and quotations",
		SQL: `
CREATE TABLE customer
(
    customer_id     INTEGER PRIMARY KEY NOT NULL,
    type            TEXT                NOT NULL DEFAULT 'individual' CHECK (type IN ('individual', 'company')),
    name            TEXT                NOT NULL,
    email           TEXT                NOT NULL DEFAULT '',
    phone           TEXT                NOT NULL DEFAULT '',
    address         TEXT                NOT NULL DEFAULT '',
    company_name    TEXT                NOT NULL DEFAULT '',
    company_vat     TEXT                NOT NULL DEFAULT '',
    company_address TEXT                NOT NULL DEFAULT '',
    created_at      TIMESTAMP           NOT NULL
);

CREATE TABLE product
(
    product_id      INTEGER PRIMARY KEY NOT NULL,
    name            TEXT                NOT NULL,
    category        TEXT                NOT NULL DEFAULT '',
    unit_type       TEXT                NOT NULL DEFAULT 'area' CHECK (unit_type IN ('area', 'width', 'length', 'pcs')),
    base_unit_price TEXT                NOT NULL DEFAULT '0',
    currency        TEXT                NOT NULL DEFAULT 'SAR',
    notes           TEXT                NOT NULL DEFAULT '',
    created_at      TIMESTAMP           NOT NULL
);

CREATE TABLE product_variation
(
    variation_id        INTEGER PRIMARY KEY NOT NULL,
    product_id          INTEGER             NOT NULL,
    name                TEXT                NOT NULL,
    unit_price_override TEXT,
    sku                 TEXT                NOT NULL DEFAULT '',
    image_path          TEXT                NOT NULL DEFAULT '',
    created_at          TIMESTAMP           NOT NULL,
    FOREIGN KEY (product_id) REFERENCES product (product_id) ON DELETE CASCADE
);

CREATE TABLE product_link
(
    link_id           INTEGER PRIMARY KEY NOT NULL,
    product_id        INTEGER             NOT NULL,
    linked_product_id INTEGER             NOT NULL,
    link_type         TEXT                NOT NULL DEFAULT '',
    note              TEXT                NOT NULL DEFAULT '',
    UNIQUE (product_id, linked_product_id),
    CHECK (product_id <> linked_product_id),
    FOREIGN KEY (product_id) REFERENCES product (product_id) ON DELETE CASCADE,
    FOREIGN KEY (linked_product_id) REFERENCES product (product_id) ON DELETE CASCADE
);

CREATE TABLE quotation
(
    quotation_id          INTEGER PRIMARY KEY NOT NULL,
    serial_number         TEXT                NOT NULL UNIQUE,
    customer_id           INTEGER             NOT NULL,
    status                TEXT                NOT NULL DEFAULT 'draft',
    header_discount_type  TEXT                NOT NULL DEFAULT 'fixed',
    header_discount_value TEXT                NOT NULL DEFAULT '0',
    tax_rate              TEXT                NOT NULL DEFAULT '0.15',
    subtotal_ex_vat       TEXT                NOT NULL DEFAULT '0',
    item_discounts        TEXT                NOT NULL DEFAULT '0',
    discount_header       TEXT                NOT NULL DEFAULT '0',
    discounted_ex_vat     TEXT                NOT NULL DEFAULT '0',
    vat_amount            TEXT                NOT NULL DEFAULT '0',
    grand_total           TEXT                NOT NULL DEFAULT '0',
    notes                 TEXT                NOT NULL DEFAULT '',
    created_at            TIMESTAMP           NOT NULL,
    updated_at            TIMESTAMP           NOT NULL,
    FOREIGN KEY (customer_id) REFERENCES customer (customer_id)
);

CREATE TABLE quote_item
(
    item_id             INTEGER PRIMARY KEY NOT NULL,
    quotation_id        INTEGER             NOT NULL,
    product_id          INTEGER             NOT NULL,
    variation_id        INTEGER,
    color_text          TEXT                NOT NULL DEFAULT '',
    width               TEXT,
    height              TEXT,
    area                TEXT                NOT NULL DEFAULT '0',
    quantity            INTEGER             NOT NULL DEFAULT 1 CHECK (quantity > 0),
    total_area          TEXT                NOT NULL DEFAULT '0',
    unit_price          TEXT                NOT NULL,
    unit_price_override TEXT,
    discount_type       TEXT                NOT NULL DEFAULT 'fixed',
    discount_value      TEXT                NOT NULL DEFAULT '0',
    discount_amount     TEXT                NOT NULL DEFAULT '0',
    line_total_ex_vat   TEXT                NOT NULL DEFAULT '0',
    vat_amount          TEXT                NOT NULL DEFAULT '0',
    line_total_inc_vat  TEXT                NOT NULL DEFAULT '0',
    notes               TEXT                NOT NULL DEFAULT '',
    created_at          TIMESTAMP           NOT NULL,
    FOREIGN KEY (quotation_id) REFERENCES quotation (quotation_id) ON DELETE CASCADE,
    FOREIGN KEY (product_id) REFERENCES product (product_id),
    FOREIGN KEY (variation_id) REFERENCES product_variation (variation_id) ON DELETE SET NULL
);

CREATE TABLE payment
(
    payment_id   INTEGER PRIMARY KEY NOT NULL,
    quotation_id INTEGER             NOT NULL,
    date         DATE                NOT NULL,
    amount       TEXT                NOT NULL,
    method       TEXT                NOT NULL,
    reference    TEXT                NOT NULL DEFAULT '',
    notes        TEXT                NOT NULL DEFAULT '',
    created_at   TIMESTAMP           NOT NULL,
    FOREIGN KEY (quotation_id) REFERENCES quotation (quotation_id) ON DELETE CASCADE
);

CREATE TABLE company_settings
(
    settings_id      INTEGER PRIMARY KEY NOT NULL CHECK (settings_id = 1),
    company_name     TEXT                NOT NULL DEFAULT '',
    logo_path        TEXT                NOT NULL DEFAULT '',
    address          TEXT                NOT NULL DEFAULT '',
    phone            TEXT                NOT NULL DEFAULT '',
    email            TEXT                NOT NULL DEFAULT '',
    website          TEXT                NOT NULL DEFAULT '',
    default_currency TEXT                NOT NULL DEFAULT 'SAR',
    default_tax_rate TEXT                NOT NULL DEFAULT '0.15',
    copy_format      TEXT                NOT NULL DEFAULT '',
    updated_at       TIMESTAMP           NOT NULL
);`,
	},
	{
		Version: 2,
		Name:    "employees and assignments",
		SQL: `
CREATE TABLE employee
(
    employee_id INTEGER PRIMARY KEY NOT NULL,
    full_name   TEXT                NOT NULL,
    phone       TEXT                NOT NULL DEFAULT '',
    role        TEXT                NOT NULL DEFAULT '',
    active      BOOLEAN             NOT NULL DEFAULT 1,
    created_at  TIMESTAMP           NOT NULL
);

CREATE TABLE assignment
(
    assignment_id  INTEGER PRIMARY KEY NOT NULL,
    quotation_id   INTEGER             NOT NULL,
    type           TEXT                NOT NULL CHECK (type IN ('delivery', 'installation')),
    scheduled_date DATE                NOT NULL,
    time_start     TEXT                NOT NULL DEFAULT '',
    time_end       TEXT                NOT NULL DEFAULT '',
    location       TEXT                NOT NULL,
    employee_id    INTEGER,
    status         TEXT                NOT NULL DEFAULT 'planned',
    notes          TEXT                NOT NULL DEFAULT '',
    created_at     TIMESTAMP           NOT NULL,
    updated_at     TIMESTAMP           NOT NULL,
    FOREIGN KEY (quotation_id) REFERENCES quotation (quotation_id) ON DELETE CASCADE,
    FOREIGN KEY (employee_id) REFERENCES employee (employee_id) ON DELETE SET NULL
);`,
	},
	{
		Version: 3,
		Name:    "lookup indexes",
		SQL: `
CREATE INDEX idx_customer_name ON customer (name);
CREATE INDEX idx_customer_phone ON customer (phone);
CREATE INDEX idx_product_name ON product (name);
CREATE INDEX idx_quotation_customer ON quotation (customer_id);
CREATE INDEX idx_quotation_created ON quotation (created_at);
CREATE INDEX idx_quote_item_quotation ON quote_item (quotation_id);
CREATE INDEX idx_quote_item_product ON quote_item (product_id);
CREATE INDEX idx_payment_quotation ON payment (quotation_id);
CREATE INDEX idx_assignment_date ON assignment (scheduled_date);`,
	},
}

const sqlCreateMigrationTable = `
CREATE TABLE IF NOT EXISTS schema_migration
(
    version    INTEGER PRIMARY KEY NOT NULL,
    name       TEXT                NOT NULL,
    applied_at TIMESTAMP           NOT NULL
);`

func Migrations() []Migration {
	xs := append([]Migration(nil), migrations...)
	sort.Slice(xs, func(i, j int) bool { return xs[i].Version < xs[j].Version })
	return xs
}

func LatestVersion() int {
	xs := Migrations()
	return xs[len(xs)-1].Version
}

func SchemaVersion(db *sqlx.DB) (int, error) {
	if _, err := db.Exec(sqlCreateMigrationTable); err != nil {
		return 0, merry.Wrap(err)
	}
	var v int
	err := db.Get(&v, `SELECT COALESCE(MAX(version), 0) FROM schema_migration`)
	return v, merry.Wrap(err)
}

func PendingMigrations(db *sqlx.DB) ([]Migration, error) {
	return pendingMigrations(db, Migrations())
}

func pendingMigrations(db *sqlx.DB, xs []Migration) ([]Migration, error) {
	v, err := SchemaVersion(db)
	if err != nil {
		return nil, err
	}
	var pending []Migration
	for _, m := range xs {
		if m.Version > v {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func Migrate(db *sqlx.DB) error {
	return runMigrations(db, Migrations())
}

// runMigrations applies each pending migration in its own transaction.
func runMigrations(db *sqlx.DB, xs []Migration) error {
	pending, err := pendingMigrations(db, xs)
	if err != nil {
		return err
	}
	for _, m := range pending {
		err := withTx(db, func(tx *sqlx.Tx) error {
			if _, err := tx.Exec(m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(`INSERT INTO schema_migration (version, name, applied_at) VALUES (?, ?, ?)`,
				m.Version, m.Name, time.Now().UTC().Truncate(time.Second))
			return err
		})
		if err != nil {
			return merry.Prependf(err, "migration %d %q", m.Version, m.Name)
		}
	}
	return nil
}

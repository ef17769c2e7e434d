package data

import (
	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
)

// GetSettings returns the company settings, storing the defaults on first use.
func GetSettings(db *sqlx.DB) (quote.Settings, error) {
	return getSettings(db)
}

func getSettings(db sqlx.Ext) (quote.Settings, error) {
	var xs []quote.Settings
	err := sqlx.Select(db, &xs, `
SELECT company_name, logo_path, address, phone, email, website, default_currency, default_tax_rate, copy_format, updated_at
FROM company_settings WHERE settings_id = 1`)
	if err != nil {
		return quote.Settings{}, merry.Wrap(err)
	}
	if len(xs) > 0 {
		return xs[0], nil
	}
	s := quote.DefaultSettings()
	s.UpdatedAt = now()
	if err := saveSettings(db, s); err != nil {
		return quote.Settings{}, err
	}
	return s, nil
}

func UpdateSettings(db *sqlx.DB, in quote.SettingsInput) (quote.Settings, error) {
	if err := in.Validate(); err != nil {
		return quote.Settings{}, err
	}
	s := quote.Settings{
		CompanyName:     in.CompanyName,
		LogoPath:        in.LogoPath,
		Address:         in.Address,
		Phone:           in.Phone,
		Email:           in.Email,
		Website:         in.Website,
		DefaultCurrency: in.DefaultCurrency,
		DefaultTaxRate:  in.DefaultTaxRate,
		CopyFormat:      in.CopyFormat,
		UpdatedAt:       now(),
	}
	if s.CopyFormat == "" {
		s.CopyFormat = quote.DefaultCopyFormat
	}
	if err := saveSettings(db, s); err != nil {
		return quote.Settings{}, err
	}
	return s, nil
}

func saveSettings(db sqlx.Ext, s quote.Settings) error {
	_, err := sqlx.NamedExec(db, `
INSERT INTO company_settings (settings_id, company_name, logo_path, address, phone, email, website,
                              default_currency, default_tax_rate, copy_format, updated_at)
VALUES (1, :company_name, :logo_path, :address, :phone, :email, :website,
        :default_currency, :default_tax_rate, :copy_format, :updated_at)
ON CONFLICT (settings_id) DO UPDATE
 SET company_name=excluded.company_name,
     logo_path=excluded.logo_path,
     address=excluded.address,
     phone=excluded.phone,
     email=excluded.email,
     website=excluded.website,
     default_currency=excluded.default_currency,
     default_tax_rate=excluded.default_tax_rate,
     copy_format=excluded.copy_format,
     updated_at=excluded.updated_at`, s)
	return merry.Wrap(err)
}

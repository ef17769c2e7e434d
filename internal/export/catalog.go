package export

import (
	"io"

	"github.com/ansel1/merry"
	"github.com/fpawel/curtains/internal/data"
	"github.com/fpawel/curtains/internal/quote"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
)

// CatalogProduct is the YAML form of a product with its variations.
type CatalogProduct struct {
	quote.ProductInput `yaml:",inline"`
	Variations         []quote.VariationInput `yaml:"variations,omitempty"`
}

type Catalog struct {
	Products []CatalogProduct `yaml:"products"`
}

func CatalogOf(products []quote.Product) Catalog {
	var c Catalog
	for _, p := range products {
		x := CatalogProduct{ProductInput: quote.ProductInputOf(p)}
		for _, v := range p.Variations {
			x.Variations = append(x.Variations, quote.VariationInput{
				Name:              v.Name,
				UnitPriceOverride: quote.DecPtr(v.UnitPriceOverride),
				SKU:               v.SKU,
				ImagePath:         v.ImagePath,
			})
		}
		c.Products = append(c.Products, x)
	}
	return c
}

func ExportCatalog(w io.Writer, products []quote.Product) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(CatalogOf(products)); err != nil {
		return merry.Wrap(err)
	}
	return merry.Wrap(enc.Close())
}

// ReadCatalog decodes and validates a catalog.
func ReadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return c, merry.Prepend(err, "catalog").WithUserMessage("catalog file is not valid YAML")
	}
	for i := range c.Products {
		p := &c.Products[i]
		if err := p.Validate(); err != nil {
			return c, merry.Prependf(err, "product %d %q", i+1, p.Name)
		}
		for j := range p.Variations {
			if err := p.Variations[j].Validate(); err != nil {
				return c, merry.Prependf(err, "product %q variation %d", p.Name, j+1)
			}
		}
	}
	return c, nil
}

type ImportResult struct {
	Created int
	Updated int
}

// ImportCatalog upserts the catalog by product name. Variations missing from a product are added,
// existing ones are left as they are.
func ImportCatalog(db *sqlx.DB, r io.Reader) (ImportResult, error) {
	var res ImportResult
	c, err := ReadCatalog(r)
	if err != nil {
		return res, err
	}
	for _, x := range c.Products {
		p, ok, err := data.FindProductByName(db, x.Name)
		if err != nil {
			return res, err
		}
		have := map[string]bool{}
		if ok {
			if p, err = data.UpdateProduct(db, p.ID, x.ProductInput); err != nil {
				return res, err
			}
			for _, v := range p.Variations {
				have[v.Name] = true
			}
			res.Updated++
		} else {
			if p, err = data.CreateProduct(db, x.ProductInput); err != nil {
				return res, err
			}
			res.Created++
		}
		for _, v := range x.Variations {
			if have[v.Name] {
				continue
			}
			if _, err := data.AddVariation(db, p.ID, v); err != nil {
				return res, err
			}
			have[v.Name] = true
		}
	}
	return res, nil
}

package pdf

import "github.com/fpawel/curtains/internal/export"

type Generator interface {
	Generate(doc export.Document) ([]byte, error)
}

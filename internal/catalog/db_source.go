package catalog

import (
	"context"

	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

// DBSource reads rows previously imported into the catalog_rows table.
type DBSource struct {
	DB *gorm.DB
}

func (s DBSource) String() string { return "database table catalog_rows" }

func (s DBSource) Rows(ctx context.Context) ([]RawRow, error) {
	var recs []models.CatalogRow
	if err := s.DB.WithContext(ctx).Order("position, id").Find(&recs).Error; err != nil {
		return nil, err
	}
	rows := make([]RawRow, len(recs))
	for i, rec := range recs {
		rows[i] = RawRow{
			Line:           rec.Position,
			ProductService: rec.ProductService,
			ListPrice:      rec.ListPrice,
			Term:           rec.Term,
			QuoteName:      rec.QuoteName,
		}
	}
	return rows, nil
}

package db

import (
	"context"
	"fmt"

	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/diewo77/go-quotes/internal/models"
	"gorm.io/gorm"
)

// ImportCatalog replaces the contents of catalog_rows with rows, keeping
// their order. The swap happens in one transaction.
func ImportCatalog(ctx context.Context, conn *gorm.DB, rows []catalog.RawRow) (int, error) {
	records := make([]models.CatalogRow, 0, len(rows))
	for i, r := range rows {
		records = append(records, models.CatalogRow{
			Position:       i,
			ProductService: r.ProductService,
			ListPrice:      r.ListPrice,
			Term:           r.Term,
			QuoteName:      r.QuoteName,
		})
	}
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CatalogRow{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 200).Error
	})
	if err != nil {
		return 0, fmt.Errorf("db: import catalog: %w", err)
	}
	return len(records), nil
}

// ImportCatalogFile reads a CSV catalog and stores its raw rows.
func ImportCatalogFile(ctx context.Context, conn *gorm.DB, src catalog.FileSource) (int, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		return 0, &catalog.LoadError{Source: src.String(), Err: err}
	}
	return ImportCatalog(ctx, conn, rows)
}

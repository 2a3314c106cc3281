package models

import "time"

// CatalogRow stores one price sheet record verbatim. Normalization happens on
// read, so the table keeps typos and excluded SKUs exactly as imported.
type CatalogRow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Position preserves the row order of the imported sheet.
	Position int `gorm:"index;not null" json:"position"`

	ProductService string `gorm:"size:255" json:"product_service"`
	ListPrice      string `gorm:"size:64" json:"list_price"`
	Term           string `gorm:"size:64" json:"term"`
	QuoteName      string `gorm:"size:255" json:"quote_name"`
}

// TableName pins the table name used by the importer and DBSource.
func (CatalogRow) TableName() string { return "catalog_rows" }

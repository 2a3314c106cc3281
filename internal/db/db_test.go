package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/diewo77/go-quotes/internal/catalog"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open(context.Background(), "sqlite", "file:"+t.Name()+"?mode=memory&cache=shared", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return conn
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x", zap.NewNop())
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestImportCatalog_ReplacesRows(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()

	n, err := ImportCatalog(ctx, conn, []catalog.RawRow{
		{ProductService: "Old", ListPrice: "1", Term: "Monthly"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ImportCatalog(ctx, conn, []catalog.RawRow{
		{ProductService: "Widget", ListPrice: "10.00", Term: "Monthy", QuoteName: "Widget Pro"},
		{ProductService: "Implementation and Training", ListPrice: "1500", Term: "One-Time"},
		{ProductService: "Setup", ListPrice: "250", Term: "One-Time", QuoteName: "Onboarding"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var count int64
	require.NoError(t, conn.Model(&models.CatalogRow{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	var stored models.CatalogRow
	require.NoError(t, conn.Where("product_service = ?", "Widget").First(&stored).Error)
	assert.Equal(t, "Monthy", stored.Term, "rows are stored verbatim")

	cat, _, err := catalog.Load(ctx, catalog.DBSource{DB: conn}, catalog.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget", "Setup"}, cat.ProductIDs())
}

func TestImportCatalog_Empty(t *testing.T) {
	conn := setupTestDB(t)
	n, err := ImportCatalog(context.Background(), conn, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportCatalogFile(t *testing.T) {
	conn := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte("Product/Service,List Price,Term,Quote Name\nWidget,$10.00,Monthly,Widget Pro\n"), 0o600))

	n, err := ImportCatalogFile(context.Background(), conn, catalog.FileSource{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = ImportCatalogFile(context.Background(), conn, catalog.FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")})
	assert.ErrorIs(t, err, catalog.ErrCatalogLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"":                                 "",
		" 'postgres://u:p@h/db' ":          "postgres://u:p@h/db",
		"host=h   user=u dbname=d":         "host=h user=u dbname=d sslmode=disable",
		"host=h user=u sslmode=require":    "host=h user=u sslmode=require",
		"not a dsn":                        "not a dsn",
		"postgresql://h/db?sslmode=verify": "postgresql://h/db?sslmode=verify",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDSN(in), in)
	}
}

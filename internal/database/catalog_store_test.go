package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kosarica/catalog-import/internal/importer"
	"github.com/kosarica/catalog-import/internal/types"
)

// setupCatalogTestDB starts Postgres, applies the embedded migrations and
// returns a store over a fresh pool.
func setupCatalogTestDB(t *testing.T) *CatalogStore {
	if testing.Short() {
		t.Skip("skipping database test in short mode (requires Docker)")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	require.NoError(t, Migrate(connStr, nil), "Failed to run migrations")

	pool, err := NewPool(ctx, connStr, PoolOptions{MaxConns: 8})
	require.NoError(t, err, "Failed to create connection pool")

	t.Cleanup(func() {
		pool.Close()
		testcontainers.TerminateContainer(container)
	})

	return NewCatalogStore(pool)
}

func seedCatalog(t *testing.T, store *CatalogStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.CreateSupplier(ctx, "sup-1", "Acme Wholesale", true))
	require.NoError(t, store.CreateSupplier(ctx, "sup-off", "Dormant Ltd", false))

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateProduct(ctx, types.Product{
		ID: "prod-widget", GTIN: types.StringPtr("6291041500213"), Name: "Widget", CreatedAt: created,
	}, nil))
	require.NoError(t, store.CreateProduct(ctx, types.Product{
		ID: "prod-cable", Name: "Braided USB Cable 2m", Brand: "Linko", CreatedAt: created.Add(time.Hour),
	}, nil))
}

func TestCatalogStore_ImportFlow(t *testing.T) {
	store := setupCatalogTestDB(t)
	seedCatalog(t, store)
	ctx := context.Background()

	o := importer.New(importer.Dependencies{
		Jobs:       store,
		Products:   store,
		Items:      store,
		Authorizer: store,
	}, importer.DefaultConfig())

	content := []byte("sku,gtin,name,brand,price,currency\n" +
		"W-1,6291041500213,Widget,Acme,9.99,EUR\n" +
		"C-1,,braided usb cable 2 m,Linko,4.50,EUR\n" +
		"X-1,6291041500214,Unknown Thing,,1.00,EUR\n")

	result, err := o.Import(ctx, "sup-1", "catalog.csv", content)
	require.NoError(t, err)
	require.Equal(t, types.ImportCompleted, result.Status)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.ReviewCount)
	assert.Equal(t, 1, result.FailedCount)

	items, err := store.ListSupplierItems(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	// a second run refreshes the same links
	again, err := o.Import(ctx, "sup-1", "catalog.csv", content)
	require.NoError(t, err)
	assert.Equal(t, 2, again.SuccessCount)

	itemsAfter, err := store.ListSupplierItems(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, itemsAfter, 2)
	assert.Equal(t, items[0].ID, itemsAfter[0].ID)
	assert.True(t, itemsAfter[0].LastSyncAt.After(items[0].LastSyncAt))

	job, err := store.GetJob(ctx, result.ImportID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)

	rows, err := store.ListRowResults(ctx, result.ImportID)
	require.NoError(t, err)
	assert.Equal(t, result.Items, rows)

	jobs, err := store.ListJobs(ctx, "sup-1", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, again.ImportID, jobs[0].ID)
}

func TestCatalogStore_AuthorizeImport(t *testing.T) {
	store := setupCatalogTestDB(t)
	seedCatalog(t, store)
	ctx := context.Background()

	assert.NoError(t, store.AuthorizeImport(ctx, "sup-1"))
	assert.ErrorIs(t, store.AuthorizeImport(ctx, "sup-off"), importer.ErrUnauthorized)
	assert.ErrorIs(t, store.AuthorizeImport(ctx, "sup-missing"), importer.ErrUnauthorized)
}

func TestCatalogStore_FindByGTIN(t *testing.T) {
	store := setupCatalogTestDB(t)
	seedCatalog(t, store)

	products, err := store.FindByGTIN(context.Background(), "06291041500213")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-widget", products[0].ID)
	require.NotNil(t, products[0].GTIN)
	assert.Equal(t, "06291041500213", *products[0].GTIN)
}

func TestCatalogStore_UpsertSupplierItem(t *testing.T) {
	store := setupCatalogTestDB(t)
	seedCatalog(t, store)
	ctx := context.Background()

	item := types.SupplierItem{
		ID: "item-1", SupplierID: "sup-1", ProductID: "prod-widget",
		SupplierSKU: "W-1", UnitPrice: 999, Currency: "EUR", Active: true,
		LastSyncAt: time.Now().UTC(),
	}
	created, err := store.UpsertSupplierItem(ctx, item)
	require.NoError(t, err)
	assert.True(t, created)

	item.ID = "item-2"
	item.UnitPrice = 1099
	item.Stock = types.IntPtr(12)
	created, err = store.UpsertSupplierItem(ctx, item)
	require.NoError(t, err)
	assert.False(t, created)

	items, err := store.ListSupplierItems(ctx, "sup-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "item-1", items[0].ID)
	assert.Equal(t, 1099, items[0].UnitPrice)
	require.NotNil(t, items[0].Stock)
	assert.Equal(t, 12, *items[0].Stock)
}

func TestCatalogStore_BackfillAttributes(t *testing.T) {
	store := setupCatalogTestDB(t)
	seedCatalog(t, store)
	ctx := context.Background()

	updated, err := store.BackfillAttributes(ctx, "prod-cable", types.ProductAttributes{
		Brand: "Other", Description: "USB-C to USB-A", NetContent: "1 pc",
	})
	require.NoError(t, err)
	assert.True(t, updated)

	product, err := store.GetProduct(ctx, "prod-cable")
	require.NoError(t, err)
	assert.Equal(t, "Linko", product.Brand, "existing values are never overwritten")
	assert.Equal(t, "USB-C to USB-A", product.Description)
	assert.Equal(t, "1 pc", product.NetContent)

	updated, err = store.BackfillAttributes(ctx, "prod-cable", types.ProductAttributes{Description: "again"})
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestCatalogStore_JobTransitions(t *testing.T) {
	store := setupCatalogTestDB(t)
	ctx := context.Background()

	job := types.ImportJob{ID: "imp_test", SupplierID: "sup-1", Filename: "a.csv", Status: types.ImportPending, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateJob(ctx, job))

	require.NoError(t, store.TransitionJob(ctx, job.ID, types.ImportPending, types.ImportProcessing, nil))
	err := store.TransitionJob(ctx, job.ID, types.ImportPending, types.ImportProcessing, nil)
	assert.ErrorIs(t, err, importer.ErrInvalidTransition)

	err = store.TransitionJob(ctx, "imp_missing", types.ImportPending, types.ImportProcessing, nil)
	assert.ErrorIs(t, err, importer.ErrJobNotFound)

	_, err = store.GetJob(ctx, "imp_missing")
	assert.ErrorIs(t, err, importer.ErrJobNotFound)

	require.NoError(t, store.TouchJob(ctx, job.ID))
	assert.ErrorIs(t, store.TouchJob(ctx, "imp_missing"), importer.ErrInvalidTransition)

	// nothing has been processing long enough yet
	n, err := store.FailStaleJobs(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.FailStaleJobs(ctx, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	loaded, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportFailed, loaded.Status)
	require.NotNil(t, loaded.ErrorMessage)
	assert.Contains(t, *loaded.ErrorMessage, "interrupted")
}

var _ interface {
	importer.JobStore
	importer.JobReader
	importer.SupplierItemStore
	importer.Authorizer
} = (*CatalogStore)(nil)

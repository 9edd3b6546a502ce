package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kosarica/catalog-import/internal/importer"
	"github.com/kosarica/catalog-import/internal/matching"
	"github.com/kosarica/catalog-import/internal/types"
)

// CatalogStore is the Postgres implementation of the importer's
// collaborators: product lookup, supplier item upserts, job state, supplier
// authorization and attribute backfill.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore creates a store over the given pool
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const productColumns = `id, gtin, name, brand, description, net_content, created_at`

func scanProducts(rows pgx.Rows) ([]types.Product, error) {
	defer rows.Close()

	products := make([]types.Product, 0)
	for rows.Next() {
		var p types.Product
		if err := rows.Scan(&p.ID, &p.GTIN, &p.Name, &p.Brand, &p.Description, &p.NetContent, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindByGTIN returns active products carrying the normalized identifier
func (s *CatalogStore) FindByGTIN(ctx context.Context, gtin14 string) ([]types.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE gtin = $1 AND active
		ORDER BY created_at, id
	`, gtin14)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by gtin: %w", err)
	}
	return scanProducts(rows)
}

// FindCandidatesByName returns the active products closest to name by
// trigram distance. Shared products and products owned by the supplier
// are linkable.
func (s *CatalogStore) FindCandidatesByName(ctx context.Context, supplierID, name string, limit int) ([]types.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE active AND (owner_supplier_id IS NULL OR owner_supplier_id = $1)
		ORDER BY search_name <-> $2, created_at, id
		LIMIT $3
	`, supplierID, matching.NormalizeName(name), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query name candidates: %w", err)
	}
	return scanProducts(rows)
}

// CreateProduct inserts a canonical product. The identifier is stored in
// its 14-digit form.
func (s *CatalogStore) CreateProduct(ctx context.Context, p types.Product, ownerSupplierID *string) error {
	var gtin *string
	if p.HasGTIN() {
		normalized := matching.NormalizeGTIN(matching.CleanGTIN(*p.GTIN))
		gtin = &normalized
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (id, gtin, name, search_name, brand, description, net_content, owner_supplier_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, gtin, p.Name, matching.NormalizeName(p.Name), p.Brand, p.Description, p.NetContent, ownerSupplierID, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
	}
	return nil
}

// GetProduct loads a product by id
func (s *CatalogStore) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %s: %w", id, pgx.ErrNoRows)
	}
	return &products[0], nil
}

// CreateSupplier registers a supplier
func (s *CatalogStore) CreateSupplier(ctx context.Context, id, name string, active bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO suppliers (id, name, active) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active
	`, id, name, active)
	if err != nil {
		return fmt.Errorf("failed to save supplier %s: %w", id, err)
	}
	return nil
}

// AuthorizeImport accepts suppliers that exist and are active
func (s *CatalogStore) AuthorizeImport(ctx context.Context, supplierID string) error {
	var active bool
	err := s.pool.QueryRow(ctx, `SELECT active FROM suppliers WHERE id = $1`, supplierID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: unknown supplier %s", importer.ErrUnauthorized, supplierID)
	}
	if err != nil {
		return fmt.Errorf("failed to load supplier %s: %w", supplierID, err)
	}
	if !active {
		return fmt.Errorf("%w: supplier %s is inactive", importer.ErrUnauthorized, supplierID)
	}
	return nil
}

// UpsertSupplierItem links the supplier to the product, refreshing the
// commercial fields when the link already exists
func (s *CatalogStore) UpsertSupplierItem(ctx context.Context, item types.SupplierItem) (bool, error) {
	var created bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO supplier_items (
			id, supplier_id, product_id, supplier_sku, unit_price, currency,
			min_order_qty, stock, lead_time_days, active, last_sync_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (supplier_id, product_id) DO UPDATE SET
			supplier_sku = EXCLUDED.supplier_sku,
			unit_price = EXCLUDED.unit_price,
			currency = EXCLUDED.currency,
			min_order_qty = EXCLUDED.min_order_qty,
			stock = EXCLUDED.stock,
			lead_time_days = EXCLUDED.lead_time_days,
			active = EXCLUDED.active,
			last_sync_at = EXCLUDED.last_sync_at
		RETURNING (xmax = 0)
	`, item.ID, item.SupplierID, item.ProductID, item.SupplierSKU, item.UnitPrice, item.Currency,
		item.MinOrderQty, item.Stock, item.LeadTimeDays, item.Active, item.LastSyncAt,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert supplier item: %w", err)
	}
	return created, nil
}

// ListSupplierItems returns a supplier's links ordered by creation
func (s *CatalogStore) ListSupplierItems(ctx context.Context, supplierID string) ([]types.SupplierItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, supplier_id, product_id, supplier_sku, unit_price, currency,
		       min_order_qty, stock, lead_time_days, active, last_sync_at, created_at
		FROM supplier_items
		WHERE supplier_id = $1
		ORDER BY created_at, id
	`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to query supplier items: %w", err)
	}
	defer rows.Close()

	items := make([]types.SupplierItem, 0)
	for rows.Next() {
		var it types.SupplierItem
		if err := rows.Scan(&it.ID, &it.SupplierID, &it.ProductID, &it.SupplierSKU, &it.UnitPrice, &it.Currency,
			&it.MinOrderQty, &it.Stock, &it.LeadTimeDays, &it.Active, &it.LastSyncAt, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan supplier item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// BackfillAttributes fills blank descriptive columns only. It reports
// whether any column changed.
func (s *CatalogStore) BackfillAttributes(ctx context.Context, productID string, attrs types.ProductAttributes) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products SET
			brand = CASE WHEN brand = '' THEN $2 ELSE brand END,
			description = CASE WHEN description = '' THEN $3 ELSE description END,
			net_content = CASE WHEN net_content = '' THEN $4 ELSE net_content END,
			updated_at = NOW()
		WHERE id = $1
		  AND ((brand = '' AND $2 <> '')
		    OR (description = '' AND $3 <> '')
		    OR (net_content = '' AND $4 <> ''))
	`, productID, attrs.Brand, attrs.Description, attrs.NetContent)
	if err != nil {
		return false, fmt.Errorf("failed to backfill product %s: %w", productID, err)
	}
	return tag.RowsAffected() > 0, nil
}

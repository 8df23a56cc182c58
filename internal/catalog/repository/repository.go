package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockquote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Product is the database model for a catalog product.
type Product struct {
	ID             uuid.UUID       `db:"id"`
	OrganizationID uuid.UUID       `db:"organization_id"`
	Name           string          `db:"name"`
	Description    *string         `db:"description"`
	SKU            string          `db:"sku"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	IsActive       bool            `db:"is_active"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// ServiceItem is the database model for a catalog service.
type ServiceItem struct {
	ID             uuid.UUID       `db:"id"`
	OrganizationID uuid.UUID       `db:"organization_id"`
	Name           string          `db:"name"`
	Description    *string         `db:"description"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	IsActive       bool            `db:"is_active"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Warehouse is the database model for a warehouse.
type Warehouse struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Name           string    `db:"name"`
	Code           string    `db:"code"`
	CreatedAt      time.Time `db:"created_at"`
}

// InventoryLevel tracks stock of one product at one warehouse.
// Invariant: available = on_hand - reserved, never negative.
type InventoryLevel struct {
	ProductID   uuid.UUID `db:"product_id"`
	WarehouseID uuid.UUID `db:"warehouse_id"`
	OnHand      int       `db:"on_hand"`
	Reserved    int       `db:"reserved"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const (
	productNotFoundMsg   = "product not found"
	serviceNotFoundMsg   = "service not found"
	warehouseNotFoundMsg = "warehouse not found"
)

const getProductQuery = `
	SELECT id, organization_id, name, description, sku, unit_price::text, is_active, created_at, updated_at
	FROM products WHERE id = $1 AND organization_id = $2`

const listProductsQuery = `
	SELECT id, organization_id, name, description, sku, unit_price::text, is_active, created_at, updated_at
	FROM products WHERE organization_id = $1
		AND ($2::text IS NULL OR name ILIKE $2 OR sku ILIKE $2)
	ORDER BY name ASC`

const getServiceQuery = `
	SELECT id, organization_id, name, description, unit_price::text, is_active, created_at, updated_at
	FROM services WHERE id = $1 AND organization_id = $2`

const listServicesQuery = `
	SELECT id, organization_id, name, description, unit_price::text, is_active, created_at, updated_at
	FROM services WHERE organization_id = $1
	ORDER BY name ASC`

const listWarehousesQuery = `
	SELECT id, organization_id, name, code, created_at
	FROM warehouses WHERE organization_id = $1
	ORDER BY name ASC`

const listLevelsByWarehouseQuery = `
	SELECT il.product_id, il.warehouse_id, il.on_hand, il.reserved, il.updated_at
	FROM inventory_levels il
	JOIN warehouses w ON w.id = il.warehouse_id
	WHERE il.warehouse_id = $1 AND w.organization_id = $2
	ORDER BY il.product_id`

const adjustOnHandQuery = `
	UPDATE inventory_levels il SET on_hand = il.on_hand + $3, updated_at = $4
	FROM warehouses w
	WHERE il.product_id = $1 AND il.warehouse_id = $2
		AND w.id = il.warehouse_id AND w.organization_id = $5
		AND il.on_hand + $3 >= il.reserved`

const countProductQuoteItemsQuery = `
	SELECT COUNT(*) FROM quote_items WHERE product_id = $1 AND organization_id = $2`

const countServiceQuoteItemsQuery = `
	SELECT COUNT(*) FROM quote_items WHERE service_id = $1 AND organization_id = $2`

const countProductReservationsQuery = `
	SELECT COALESCE(SUM(reserved), 0) FROM inventory_levels WHERE product_id = $1`

// Repository provides database operations for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ── Products ──────────────────────────────────────────────────────────────────

func (r *Repository) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO products (id, organization_id, name, description, sku, unit_price, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.OrganizationID, p.Name, p.Description, p.SKU, p.UnitPrice.String(), p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("a product with this SKU already exists")
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id, orgID uuid.UUID) (*Product, error) {
	row := r.pool.QueryRow(ctx, getProductQuery, id, orgID)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(productNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context, orgID uuid.UUID, search string) ([]Product, error) {
	var searchParam any
	if search != "" {
		searchParam = "%" + search + "%"
	}
	rows, err := r.pool.Query(ctx, listProductsQuery, orgID, searchParam)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateProduct(ctx context.Context, p *Product) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $3, description = $4, sku = $5, unit_price = $6, is_active = $7, updated_at = $8
		 WHERE id = $1 AND organization_id = $2`,
		p.ID, p.OrganizationID, p.Name, p.Description, p.SKU, p.UnitPrice.String(), p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("a product with this SKU already exists")
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(productNotFoundMsg)
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id, orgID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(productNotFoundMsg)
	}
	return nil
}

func (r *Repository) CountProductQuoteItems(ctx context.Context, id, orgID uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countProductQuoteItemsQuery, id, orgID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count product quote items: %w", err)
	}
	return n, nil
}

func (r *Repository) SumProductReservations(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countProductReservationsQuery, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to sum product reservations: %w", err)
	}
	return n, nil
}

// ── Services ──────────────────────────────────────────────────────────────────

func (r *Repository) CreateService(ctx context.Context, s *ServiceItem) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO services (id, organization_id, name, description, unit_price, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.OrganizationID, s.Name, s.Description, s.UnitPrice.String(), s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}
	return nil
}

func (r *Repository) GetService(ctx context.Context, id, orgID uuid.UUID) (*ServiceItem, error) {
	row := r.pool.QueryRow(ctx, getServiceQuery, id, orgID)
	s, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(serviceNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

func (r *Repository) ListServices(ctx context.Context, orgID uuid.UUID) ([]ServiceItem, error) {
	rows, err := r.pool.Query(ctx, listServicesQuery, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var out []ServiceItem
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateService(ctx context.Context, s *ServiceItem) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE services SET name = $3, description = $4, unit_price = $5, is_active = $6, updated_at = $7
		 WHERE id = $1 AND organization_id = $2`,
		s.ID, s.OrganizationID, s.Name, s.Description, s.UnitPrice.String(), s.IsActive, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMsg)
	}
	return nil
}

func (r *Repository) DeleteService(ctx context.Context, id, orgID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM services WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMsg)
	}
	return nil
}

func (r *Repository) CountServiceQuoteItems(ctx context.Context, id, orgID uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countServiceQuoteItemsQuery, id, orgID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count service quote items: %w", err)
	}
	return n, nil
}

// ── Warehouses & inventory levels ─────────────────────────────────────────────

func (r *Repository) CreateWarehouse(ctx context.Context, w *Warehouse) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO warehouses (id, organization_id, name, code, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.OrganizationID, w.Name, w.Code, w.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("a warehouse with this code already exists")
		}
		return fmt.Errorf("failed to insert warehouse: %w", err)
	}
	return nil
}

func (r *Repository) GetWarehouse(ctx context.Context, id, orgID uuid.UUID) (*Warehouse, error) {
	var w Warehouse
	err := r.pool.QueryRow(ctx,
		`SELECT id, organization_id, name, code, created_at
		 FROM warehouses WHERE id = $1 AND organization_id = $2`, id, orgID,
	).Scan(&w.ID, &w.OrganizationID, &w.Name, &w.Code, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(warehouseNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	return &w, nil
}

func (r *Repository) ListWarehouses(ctx context.Context, orgID uuid.UUID) ([]Warehouse, error) {
	rows, err := r.pool.Query(ctx, listWarehousesQuery, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	defer rows.Close()

	var out []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.OrganizationID, &w.Name, &w.Code, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteWarehouse(ctx context.Context, id, orgID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM warehouses WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete warehouse: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(warehouseNotFoundMsg)
	}
	return nil
}

func (r *Repository) ListLevelsByWarehouse(ctx context.Context, warehouseID, orgID uuid.UUID) ([]InventoryLevel, error) {
	rows, err := r.pool.Query(ctx, listLevelsByWarehouseQuery, warehouseID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory levels: %w", err)
	}
	defer rows.Close()

	var out []InventoryLevel
	for rows.Next() {
		var l InventoryLevel
		if err := rows.Scan(&l.ProductID, &l.WarehouseID, &l.OnHand, &l.Reserved, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory level: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertLevel initializes or replaces the on-hand count for a
// (product, warehouse) pair that has no reservations yet.
func (r *Repository) UpsertLevel(ctx context.Context, productID, warehouseID uuid.UUID, onHand int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO inventory_levels (product_id, warehouse_id, on_hand, reserved, updated_at)
		 VALUES ($1, $2, $3, 0, $4)
		 ON CONFLICT (product_id, warehouse_id) DO UPDATE
		 SET on_hand = EXCLUDED.on_hand, updated_at = EXCLUDED.updated_at
		 WHERE inventory_levels.reserved <= EXCLUDED.on_hand`,
		productID, warehouseID, onHand, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory level: %w", err)
	}
	return nil
}

// AdjustOnHand changes on_hand by delta. The guarded UPDATE refuses any
// adjustment that would drop on_hand below the reserved quantity.
func (r *Repository) AdjustOnHand(ctx context.Context, productID, warehouseID, orgID uuid.UUID, delta int) error {
	result, err := r.pool.Exec(ctx, adjustOnHandQuery, productID, warehouseID, delta, time.Now(), orgID)
	if err != nil {
		return fmt.Errorf("failed to adjust inventory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("adjustment would drop stock below reserved quantity")
	}
	return nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var price string
	if err := row.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.SKU, &price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price %q: %w", price, err)
	}
	p.UnitPrice = parsed
	return &p, nil
}

func scanService(row rowScanner) (*ServiceItem, error) {
	var s ServiceItem
	var price string
	if err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.Description, &price, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price %q: %w", price, err)
	}
	s.UnitPrice = parsed
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

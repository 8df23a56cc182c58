package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockquote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Company is the database model for a company.
type Company struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Name           string    `db:"name"`
	Website        *string   `db:"website"`
	Notes          *string   `db:"notes"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Client is the database model for a client contact. A quote always
// references exactly one client.
type Client struct {
	ID             uuid.UUID  `db:"id"`
	OrganizationID uuid.UUID  `db:"organization_id"`
	CompanyID      *uuid.UUID `db:"company_id"`
	Name           string     `db:"name"`
	Email          *string    `db:"email"`
	Phone          *string    `db:"phone"`
	Notes          *string    `db:"notes"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

const (
	companyNotFoundMsg = "company not found"
	clientNotFoundMsg  = "client not found"
)

const getCompanyQuery = `
	SELECT id, organization_id, name, website, notes, created_at, updated_at
	FROM companies WHERE id = $1 AND organization_id = $2`

const listCompaniesQuery = `
	SELECT id, organization_id, name, website, notes, created_at, updated_at
	FROM companies WHERE organization_id = $1
	ORDER BY name ASC`

const getClientQuery = `
	SELECT id, organization_id, company_id, name, email, phone, notes, created_at, updated_at
	FROM clients WHERE id = $1 AND organization_id = $2`

const listClientsQuery = `
	SELECT id, organization_id, company_id, name, email, phone, notes, created_at, updated_at
	FROM clients WHERE organization_id = $1
		AND ($2::text IS NULL OR name ILIKE $2 OR email ILIKE $2)
	ORDER BY name ASC`

const countClientQuotesQuery = `
	SELECT COUNT(*) FROM quotes WHERE client_id = $1 AND organization_id = $2`

const countCompanyClientsQuery = `
	SELECT COUNT(*) FROM clients WHERE company_id = $1 AND organization_id = $2`

// Repository provides database operations for companies and clients.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ── Companies ─────────────────────────────────────────────────────────────────

func (r *Repository) CreateCompany(ctx context.Context, c *Company) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO companies (id, organization_id, name, website, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.OrganizationID, c.Name, c.Website, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}
	return nil
}

func (r *Repository) GetCompany(ctx context.Context, id, orgID uuid.UUID) (*Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, getCompanyQuery, id, orgID).Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.Website, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(companyNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

func (r *Repository) ListCompanies(ctx context.Context, orgID uuid.UUID) ([]Company, error) {
	rows, err := r.pool.Query(ctx, listCompaniesQuery, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Website, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateCompany(ctx context.Context, c *Company) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE companies SET name = $3, website = $4, notes = $5, updated_at = $6
		 WHERE id = $1 AND organization_id = $2`,
		c.ID, c.OrganizationID, c.Name, c.Website, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(companyNotFoundMsg)
	}
	return nil
}

func (r *Repository) DeleteCompany(ctx context.Context, id, orgID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM companies WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(companyNotFoundMsg)
	}
	return nil
}

// CountCompanyClients returns how many clients reference the company.
func (r *Repository) CountCompanyClients(ctx context.Context, id, orgID uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countCompanyClientsQuery, id, orgID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count company clients: %w", err)
	}
	return n, nil
}

// ── Clients ───────────────────────────────────────────────────────────────────

func (r *Repository) CreateClient(ctx context.Context, c *Client) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO clients (id, organization_id, company_id, name, email, phone, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.OrganizationID, c.CompanyID, c.Name, c.Email, c.Phone, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (r *Repository) GetClient(ctx context.Context, id, orgID uuid.UUID) (*Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, getClientQuery, id, orgID).Scan(
		&c.ID, &c.OrganizationID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(clientNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}

func (r *Repository) ListClients(ctx context.Context, orgID uuid.UUID, search string) ([]Client, error) {
	var searchParam any
	if search != "" {
		searchParam = "%" + search + "%"
	}

	rows, err := r.pool.Query(ctx, listClientsQuery, orgID, searchParam)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.CompanyID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateClient(ctx context.Context, c *Client) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE clients SET company_id = $3, name = $4, email = $5, phone = $6, notes = $7, updated_at = $8
		 WHERE id = $1 AND organization_id = $2`,
		c.ID, c.OrganizationID, c.CompanyID, c.Name, c.Email, c.Phone, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(clientNotFoundMsg)
	}
	return nil
}

func (r *Repository) DeleteClient(ctx context.Context, id, orgID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM clients WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(clientNotFoundMsg)
	}
	return nil
}

// CountClientQuotes returns how many quotes reference the client.
func (r *Repository) CountClientQuotes(ctx context.Context, id, orgID uuid.UUID) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countClientQuotesQuery, id, orgID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count client quotes: %w", err)
	}
	return n, nil
}

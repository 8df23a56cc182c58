// Package service implements company and client management.
package service

import (
	"context"
	"strings"
	"time"

	"stockquote_backend/internal/crm/repository"
	"stockquote_backend/internal/crm/transport"
	"stockquote_backend/platform/apperr"
	"stockquote_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	msgClientHasQuotes   = "Cannot delete client with existing quotes. Delete or reassign them first."
	msgCompanyHasClients = "Cannot delete company with existing clients. Delete or reassign them first."
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// ── Companies ─────────────────────────────────────────────────────────────────

func (s *Service) CreateCompany(ctx context.Context, tenantID uuid.UUID, req transport.CreateCompanyRequest) (*transport.CompanyResponse, error) {
	now := time.Now()
	company := repository.Company{
		ID:             uuid.New(),
		OrganizationID: tenantID,
		Name:           strings.TrimSpace(req.Name),
		Website:        req.Website,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateCompany(ctx, &company); err != nil {
		return nil, err
	}
	return companyResponse(&company), nil
}

func (s *Service) GetCompany(ctx context.Context, id, tenantID uuid.UUID) (*transport.CompanyResponse, error) {
	company, err := s.repo.GetCompany(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return companyResponse(company), nil
}

func (s *Service) ListCompanies(ctx context.Context, tenantID uuid.UUID) ([]transport.CompanyResponse, error) {
	companies, err := s.repo.ListCompanies(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CompanyResponse, len(companies))
	for i := range companies {
		out[i] = *companyResponse(&companies[i])
	}
	return out, nil
}

func (s *Service) UpdateCompany(ctx context.Context, id, tenantID uuid.UUID, req transport.UpdateCompanyRequest) (*transport.CompanyResponse, error) {
	company, err := s.repo.GetCompany(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Website != nil {
		company.Website = req.Website
	}
	if req.Notes != nil {
		company.Notes = req.Notes
	}
	company.UpdatedAt = time.Now()

	if err := s.repo.UpdateCompany(ctx, company); err != nil {
		return nil, err
	}
	return companyResponse(company), nil
}

func (s *Service) DeleteCompany(ctx context.Context, id, tenantID uuid.UUID) error {
	if _, err := s.repo.GetCompany(ctx, id, tenantID); err != nil {
		return err
	}
	count, err := s.repo.CountCompanyClients(ctx, id, tenantID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict(msgCompanyHasClients)
	}
	return s.repo.DeleteCompany(ctx, id, tenantID)
}

// ── Clients ───────────────────────────────────────────────────────────────────

func (s *Service) CreateClient(ctx context.Context, tenantID uuid.UUID, req transport.CreateClientRequest) (*transport.ClientResponse, error) {
	normalizedPhone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if req.CompanyID != nil {
		if _, err := s.repo.GetCompany(ctx, *req.CompanyID, tenantID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	client := repository.Client{
		ID:             uuid.New(),
		OrganizationID: tenantID,
		CompanyID:      req.CompanyID,
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		Phone:          normalizedPhone,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateClient(ctx, &client); err != nil {
		return nil, err
	}
	return clientResponse(&client), nil
}

func (s *Service) GetClient(ctx context.Context, id, tenantID uuid.UUID) (*transport.ClientResponse, error) {
	client, err := s.repo.GetClient(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return clientResponse(client), nil
}

func (s *Service) ListClients(ctx context.Context, tenantID uuid.UUID, search string) ([]transport.ClientResponse, error) {
	clients, err := s.repo.ListClients(ctx, tenantID, search)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ClientResponse, len(clients))
	for i := range clients {
		out[i] = *clientResponse(&clients[i])
	}
	return out, nil
}

func (s *Service) UpdateClient(ctx context.Context, id, tenantID uuid.UUID, req transport.UpdateClientRequest) (*transport.ClientResponse, error) {
	client, err := s.repo.GetClient(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	if req.CompanyID != nil {
		if _, err := s.repo.GetCompany(ctx, *req.CompanyID, tenantID); err != nil {
			return nil, err
		}
		client.CompanyID = req.CompanyID
	}
	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		client.Email = req.Email
	}
	if req.Phone != nil {
		normalized, err := normalizePhone(req.Phone)
		if err != nil {
			return nil, err
		}
		client.Phone = normalized
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}
	client.UpdatedAt = time.Now()

	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return nil, err
	}
	return clientResponse(client), nil
}

func (s *Service) DeleteClient(ctx context.Context, id, tenantID uuid.UUID) error {
	if _, err := s.repo.GetClient(ctx, id, tenantID); err != nil {
		return err
	}
	count, err := s.repo.CountClientQuotes(ctx, id, tenantID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict(msgClientHasQuotes)
	}
	return s.repo.DeleteClient(ctx, id, tenantID)
}

func normalizePhone(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	normalized, err := phone.NormalizeE164(*raw)
	if err != nil {
		return nil, apperr.Validation("invalid phone number")
	}
	return &normalized, nil
}

func companyResponse(c *repository.Company) *transport.CompanyResponse {
	return &transport.CompanyResponse{
		ID: c.ID, Name: c.Name, Website: c.Website, Notes: c.Notes,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func clientResponse(c *repository.Client) *transport.ClientResponse {
	return &transport.ClientResponse{
		ID: c.ID, CompanyID: c.CompanyID, Name: c.Name, Email: c.Email,
		Phone: c.Phone, Notes: c.Notes, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

// Package service implements registration, login, and session handling.
package service

import (
	"context"
	"strings"
	"time"

	"stockquote_backend/internal/auth/password"
	"stockquote_backend/internal/auth/repository"
	"stockquote_backend/internal/auth/token"
	"stockquote_backend/internal/auth/transport"
	"stockquote_backend/internal/events"
	"stockquote_backend/platform/apperr"
	"stockquote_backend/platform/config"
	"stockquote_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type Service struct {
	repo     *repository.Repository
	cfg      config.AuthServiceConfig
	eventBus events.Bus
	log      *logger.Logger
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, eventBus: eventBus, log: log}
}

// Register creates an organization and its first (admin) user, then
// issues a session.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	now := time.Now()
	org := repository.Organization{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.OrganizationName),
		CreatedAt: now,
	}
	user := repository.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUserWithOrganization(ctx, &user, &org); err != nil {
		return nil, err
	}

	s.log.AuthEvent("register", user.Email, true, "")
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.UserRegistered{
			BaseEvent:      events.NewBaseEvent(),
			UserID:         user.ID,
			OrganizationID: org.ID,
			Email:          user.Email,
		})
	}

	return s.issueSession(ctx, &user, org.ID, "admin")
}

func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", req.Email, false, "bad password")
		return nil, apperr.Unauthorized("invalid credentials")
	}

	membership, err := s.repo.GetMembership(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.AuthEvent("login", user.Email, true, "")
	return s.issueSession(ctx, user, membership.OrganizationID, membership.Role)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*transport.AuthResponse, error) {
	hash := token.HashSHA256(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return nil, apperr.Unauthorized("refresh token expired")
	}

	// Rotate: one use per refresh token.
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	membership, err := s.repo.GetMembership(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, membership.OrganizationID, membership.Role)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*transport.MeResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	membership, err := s.repo.GetMembership(ctx, userID)
	if err != nil {
		return nil, err
	}
	org, err := s.repo.GetOrganization(ctx, membership.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &transport.MeResponse{
		ID:               user.ID.String(),
		Email:            user.Email,
		Name:             user.Name,
		Role:             membership.Role,
		OrganizationID:   org.ID.String(),
		OrganizationName: org.Name,
	}, nil
}

func (s *Service) ListMembers(ctx context.Context, orgID uuid.UUID) ([]transport.MemberResponse, error) {
	members, err := s.repo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.MemberResponse, len(members))
	for i, m := range members {
		out[i] = transport.MemberResponse{ID: m.ID.String(), Email: m.Email, Name: m.Name, Role: m.Role}
	}
	return out, nil
}

func (s *Service) issueSession(ctx context.Context, user *repository.User, orgID uuid.UUID, role string) (*transport.AuthResponse, error) {
	accessToken, err := s.issueAccessToken(user, orgID, role)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	refreshToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate refresh token", err)
	}
	if err := s.repo.CreateRefreshToken(ctx, user.ID, token.HashSHA256(refreshToken), time.Now().Add(refreshTokenTTL)); err != nil {
		return nil, err
	}

	return &transport.AuthResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) issueAccessToken(user *repository.User, orgID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"email":     user.Email,
		"tenant_id": orgID.String(),
		"roles":     []string{role},
		"iat":       now.Unix(),
		"exp":       now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/repository"
	"github.com/jwalitptl/practice-admin/pkg/auth"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
	"github.com/jwalitptl/practice-admin/pkg/security"
)

const cacheCleanupInterval = 10 * time.Minute

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	// profiles caches the profile per session id; revoked holds signed-out
	// session ids until their token would have expired.
	profiles *cache.Cache
	revoked  *cache.Cache
	now      func() time.Time
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, sessionTTL time.Duration) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		profiles: cache.New(sessionTTL, cacheCleanupInterval),
		revoked:  cache.New(sessionTTL, cacheCleanupInterval),
		now:      time.Now,
	}
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*model.SessionResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
		}
		return nil, apperrors.Internal(err)
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(user, sessionID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.now()
	if err := s.userRepo.TouchSignIn(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	user.LastSignInAt = &now

	profile, err := s.loadProfile(ctx, sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, err
	}

	return &model.SessionResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
		Profile:     profile,
	}, nil
}

// ValidateToken checks the signature, expiry and revocation of token.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return nil, apperrors.Unauthorized(model.ErrSessionRevoked)
	}
	return claims, nil
}

// Profile returns the profile for the session in claims, fetching it once per session.
func (s *Service) Profile(ctx context.Context, claims *model.TokenClaims) (*model.Profile, error) {
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.loadProfile(ctx, claims.ID, claims.UserID, expiresAt)
}

func (s *Service) loadProfile(ctx context.Context, sessionID string, userID uuid.UUID, expiresAt time.Time) (*model.Profile, error) {
	if v, ok := s.profiles.Get(sessionID); ok {
		return v.(*model.Profile), nil
	}
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	s.profiles.Set(sessionID, profile, s.ttl(expiresAt))
	return profile, nil
}

// Session restores the session behind token.
func (s *Service) Session(ctx context.Context, token string) (*model.SessionResponse, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}
	profile, err := s.Profile(ctx, claims)
	if err != nil {
		return nil, err
	}
	return &model.SessionResponse{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
		Profile:     profile,
	}, nil
}

// SignOut revokes the session behind token and drops its cached profile.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	s.revoked.Set(claims.ID, true, s.ttl(expiresAt))
	s.profiles.Delete(claims.ID)
	return nil
}

func (s *Service) ttl(expiresAt time.Time) time.Duration {
	if expiresAt.IsZero() {
		return cache.DefaultExpiration
	}
	if d := expiresAt.Sub(s.now()); d > 0 {
		return d
	}
	return time.Second
}

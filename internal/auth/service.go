package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledger-bank/ledger_bank/internal/config"
	"github.com/ledger-bank/ledger_bank/internal/identity"
	"github.com/ledger-bank/ledger_bank/internal/wallet"
)

const denylistPrefix = "auth:denylist:"

// Service is the access boundary: it registers users (with their wallet),
// exchanges credentials for access tokens, and revokes tokens on logout. The
// ledger core only ever sees the resolved (userID, role) identity.
type Service struct {
	cfg     config.Config
	ids     *identity.Service
	wallets *wallet.Service
	cache   *redis.Client
}

// NewService builds the auth service. cache may be nil; logout then becomes a
// client-side discard.
func NewService(cfg config.Config, ids *identity.Service, wallets *wallet.Service, cache *redis.Client) *Service {
	return &Service{cfg: cfg, ids: ids, wallets: wallets, cache: cache}
}

// Registration is the outcome of a successful sign-up.
type Registration struct {
	User       identity.User
	WalletCode string
}

// Register creates the user and its wallet together; every account starts
// with a zero-balance wallet addressed by a fresh wallet code.
func (s *Service) Register(ctx context.Context, input identity.RegisterInput) (Registration, error) {
	user, err := s.ids.Register(ctx, input)
	if err != nil {
		return Registration{}, err
	}
	w, err := s.wallets.CreateForUser(ctx, user.ID)
	if err != nil {
		return Registration{}, err
	}
	return Registration{User: user, WalletCode: w.Code}, nil
}

// Session is the outcome of a successful login.
type Session struct {
	User        identity.User
	AccessToken string
	ExpiresIn   int64
	WalletCode  string
}

// Login validates credentials and issues a signed access token.
func (s *Service) Login(ctx context.Context, creds identity.Credentials) (Session, error) {
	user, err := s.ids.Authenticate(ctx, creds)
	if err != nil {
		return Session{}, err
	}

	signed, claims, err := signToken(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return Session{}, err
	}

	session := Session{
		User:        user,
		AccessToken: signed,
		ExpiresIn:   int64(claims.ExpiresAt.Sub(time.Now()).Seconds()),
	}
	if w, err := s.wallets.GetByUser(ctx, user.ID); err == nil {
		session.WalletCode = w.Code
	} else if !errors.Is(err, wallet.ErrNotFound) {
		return Session{}, err
	}
	return session, nil
}

// Verify parses the token, rejects revoked ones, and returns its claims.
func (s *Service) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := parseToken(tokenStr, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Get(ctx, denylistPrefix+claims.ID).Err(); err == nil {
			return nil, ErrInvalidToken
		} else if !errors.Is(err, redis.Nil) {
			return nil, err
		}
	}
	return claims, nil
}

// Logout revokes the token by denylisting its id until it would expire
// anyway. Without Redis this is a no-op and the client simply drops the token.
func (s *Service) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.Verify(ctx, tokenStr)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, denylistPrefix+claims.ID, "revoked", ttl).Err()
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/princinho/eventsbackend/config"
	"github.com/princinho/eventsbackend/models"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// TokenService issues and verifies stateless HS256 token pairs.
//
// Refresh tokens are not tracked server side. A rotated refresh token stays
// valid until it expires; the only way to cut one short is to change
// JWT_REFRESH_SECRET, which invalidates every outstanding token.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg config.JWTConfig, opts ...TokenOption) *TokenService {
	s := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) Issue(subject bson.ObjectID) (*models.TokenPair, error) {
	now := s.now()
	access, err := s.sign(subject, now, s.accessTTL, s.accessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(subject, now, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(subject bson.ObjectID, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", oops.In("tokens").Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

func (s *TokenService) VerifyAccess(token string) (bson.ObjectID, error) {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefresh(token string) (bson.ObjectID, error) {
	return s.verify(token, s.refreshSecret)
}

// verify returns ErrExpiredToken for a well-signed token past its expiry and ErrInvalidToken otherwise.
func (s *TokenService) verify(token string, secret []byte) (bson.ObjectID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return bson.NilObjectID, ErrExpiredToken
		}
		return bson.NilObjectID, ErrInvalidToken
	}
	if !parsed.Valid {
		return bson.NilObjectID, ErrInvalidToken
	}

	subject, err := bson.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return bson.NilObjectID, ErrInvalidToken
	}
	return subject, nil
}

// SubjectResolver confirms that a verified subject still exists.
type SubjectResolver func(ctx context.Context, subject bson.ObjectID) error

// Rotate verifies refreshToken, resolves its subject and issues a brand-new pair.
// The presented refresh token is left untouched.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string, resolve SubjectResolver) (*models.TokenPair, error) {
	subject, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if resolve != nil {
		if err := resolve(ctx, subject); err != nil {
			return nil, err
		}
	}
	return s.Issue(subject)
}

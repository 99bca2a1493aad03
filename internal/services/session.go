package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

var ErrInvalidSession = errors.New("invalid or expired session token")

type SessionClaims struct {
	jwt.RegisteredClaims
}

type SessionService interface {
	// Issue starts a browser session and returns its signed token.
	Issue(ctx context.Context) (uuid.UUID, string, error)
	Parse(tokenString string) (uuid.UUID, error)
	// End drops everything the session stored, including the order flag.
	End(ctx context.Context, sessionID uuid.UUID) error
	MaxAge() time.Duration
}

type sessionService struct {
	log     *logger.Logger
	carts   *cart.Carts
	secret  []byte
	maxAge  time.Duration
	metrics *observability.Metrics
	now     func() time.Time
}

func NewSessionService(log *logger.Logger, carts *cart.Carts, secret string, maxAge time.Duration, metrics *observability.Metrics) SessionService {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &sessionService{
		log:     log.With("service", "SessionService"),
		carts:   carts,
		secret:  []byte(secret),
		maxAge:  maxAge,
		metrics: metrics,
		now:     time.Now,
	}
}

func (s *sessionService) Issue(ctx context.Context) (uuid.UUID, string, error) {
	id := uuid.New()
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("sign session token: %w", err)
	}
	s.metrics.IncSessionIssued()
	s.log.Debug("session issued", "session_id", id.String())
	return id, token, nil
}

func (s *sessionService) Parse(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, ErrInvalidSession
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, ErrInvalidSession
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidSession)
	}
	return id, nil
}

func (s *sessionService) End(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}
	if err := s.carts.End(ctx, sessionID.String()); err != nil {
		s.log.Warn("end session failed", "session_id", sessionID.String(), "error", err)
		return err
	}
	s.log.Debug("session ended", "session_id", sessionID.String())
	return nil
}

func (s *sessionService) MaxAge() time.Duration { return s.maxAge }

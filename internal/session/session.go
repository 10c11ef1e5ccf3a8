package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	"alphasignals/internal/config"
)

type ctxKey int

const principalKey ctxKey = 1

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   string
	Username string
}

type Claims struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Provider signs and verifies session tokens. The session lifecycle
// (refresh, revocation) is owned elsewhere; this only identifies callers.
type Provider struct {
	secret []byte
	ttl    time.Duration
}

func NewProvider(cfg config.AuthConfig) *Provider {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{secret: []byte(cfg.JWTSecret), ttl: ttl}
}

func (p *Provider) SignToken(userID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:      userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *Provider) Parse(token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid && c.UID != "" {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// Middleware attaches the principal to the request context when a valid
// bearer token is present. Requests without one proceed unauthenticated;
// mutation endpoints must gate on PrincipalFromContext themselves.
func Middleware(p *Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader("Authorization"))
		if strings.HasPrefix(h, "Bearer ") {
			tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if claims, err := p.Parse(tok); err == nil {
				ctx := WithPrincipal(c.Request.Context(), Principal{
					UserID:   claims.UID,
					Username: claims.Username,
				})
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}

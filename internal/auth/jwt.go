package auth

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"carelink.id/clinicapi/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload of an issued session token. Downstream authorization
// trusts these values without re-querying the identity store.
type Claims struct {
	TokenType   string `json:"typ"`
	Role        string `json:"role,omitempty"`
	Username    string `json:"username,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	ProfileID   *uint  `json:"profile_id"`
	jwt.RegisteredClaims
}

// TokenPair is the access/refresh pair returned by login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues and validates the session token pair.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService() *TokenService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	accessTTL := 15 * time.Minute
	if s := os.Getenv("JWT_ACCESS_TTL_MINUTES"); s != "" {
		if minutes, err := strconv.Atoi(s); err == nil {
			accessTTL = time.Duration(minutes) * time.Minute
		}
	}

	refreshTTL := 7 * 24 * time.Hour
	if s := os.Getenv("JWT_REFRESH_TTL_HOURS"); s != "" {
		if hours, err := strconv.Atoi(s); err == nil {
			refreshTTL = time.Duration(hours) * time.Hour
		}
	}

	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// IssuePair signs a fresh access/refresh pair for user. The access token
// carries the role and profile claims; the refresh token only identifies the
// session (jti) so it can be revoked on logout.
func (s *TokenService) IssuePair(user *model.User) (*TokenPair, error) {
	now := time.Now()

	access := Claims{
		TokenType:   TokenTypeAccess,
		Role:        user.Role,
		Username:    user.Username,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		ProfileID:   user.ProfileID(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	refresh := Claims{
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: accessToken, Refresh: refreshToken}, nil
}

// Validate parses tokenString and checks its signature and token type.
func (s *TokenService) Validate(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Revoker is the revocation registry consulted on every token validation.
// Logout blacklists single refresh tokens by jti; role changes invalidate all
// access tokens a user holds via a per-user timestamp mark.
type Revoker interface {
	// RevokeRefreshToken blacklists one refresh token until its natural expiry.
	RevokeRefreshToken(ctx context.Context, jti string, ttl time.Duration) error
	// IsRefreshTokenRevoked reports whether the refresh token was logged out.
	IsRefreshTokenRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeUserClaims marks all tokens issued to the user before now as
	// stale; ttl should cover the access token lifetime.
	RevokeUserClaims(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	// ClaimsRevokedSince returns the revocation mark for the user, or zero
	// time if none is active.
	ClaimsRevokedSince(ctx context.Context, userID uuid.UUID) (time.Time, error)
}

type redisRevoker struct {
	client *redis.Client
}

func NewRedisRevoker(client *redis.Client) Revoker {
	return &redisRevoker{client: client}
}

func refreshKey(jti string) string    { return "revoked_refresh:" + jti }
func userKey(userID uuid.UUID) string { return "revoked_user:" + userID.String() }

func (r *redisRevoker) RevokeRefreshToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to blacklist.
		return nil
	}
	return r.client.Set(ctx, refreshKey(jti), "1", ttl).Err()
}

func (r *redisRevoker) IsRefreshTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if err := r.client.Get(ctx, refreshKey(jti)).Err(); err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *redisRevoker) RevokeUserClaims(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	now := fmt.Sprintf("%d", time.Now().Unix())
	return r.client.Set(ctx, userKey(userID), now, ttl).Err()
}

func (r *redisRevoker) ClaimsRevokedSince(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	val, err := r.client.Get(ctx, userKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.Unix(unix, 0), nil
}

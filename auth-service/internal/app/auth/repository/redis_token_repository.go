package repository

import (
	"context"
	"fmt"
	"time"

	"bookery/auth-service/internal/app/auth/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisTokenRepository struct {
	client *redis.Client
}

// NewRedisTokenRepository создает Redis репозиторий для refresh токенов
// и черного списка access токенов. Истечение обеспечивается TTL ключей.
func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client}
}

func refreshTokenKey(token string) string {
	return "refresh_token:" + token
}

func userTokensKey(userID string) string {
	return "user_tokens:" + userID
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// SaveRefreshToken сохраняет refresh токен с TTL до expiresAt
// Токен также попадает в множество токенов пользователя для logout со всех устройств
func (r *redisTokenRepository) SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired")
	}

	if err := r.client.Set(ctx, refreshTokenKey(token), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	setKey := userTokensKey(userID.String())
	if err := r.client.SAdd(ctx, setKey, token).Err(); err != nil {
		return fmt.Errorf("failed to add token to user set: %w", err)
	}
	r.client.Expire(ctx, setKey, ttl)

	return nil
}

// GetRefreshToken получает refresh токен
func (r *redisTokenRepository) GetRefreshToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	userIDStr, err := r.client.Get(ctx, refreshTokenKey(token)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("refresh token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID for refresh token: %w", err)
	}

	ttl, err := r.client.TTL(ctx, refreshTokenKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get token TTL: %w", err)
	}

	return &entity.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// DeleteRefreshToken удаляет конкретный refresh токен
func (r *redisTokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	userIDStr, err := r.client.Get(ctx, refreshTokenKey(token)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to resolve token owner: %w", err)
	}

	if err := r.client.Del(ctx, refreshTokenKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	if userIDStr != "" {
		r.client.SRem(ctx, userTokensKey(userIDStr), token)
	}

	return nil
}

// DeleteUserRefreshTokens удаляет все refresh токены пользователя
func (r *redisTokenRepository) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	setKey := userTokensKey(userID.String())

	tokens, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user tokens: %w", err)
	}

	for _, token := range tokens {
		r.client.Del(ctx, refreshTokenKey(token))
	}

	if err := r.client.Del(ctx, setKey).Err(); err != nil {
		return fmt.Errorf("failed to delete user token set: %w", err)
	}

	return nil
}

// AddToBlacklist помещает access токен в черный список до его истечения
func (r *redisTokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Истекший токен и так не пройдет валидацию
		return nil
	}

	if err := r.client.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

// IsBlacklisted проверяет, находится ли токен в черном списке
func (r *redisTokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	exists, err := r.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return exists > 0, nil
}

// Package auth 提供用户 JWT 签发、校验和 gin 认证中间件
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserClaims 用户 JWT Claims
type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin 是否管理员
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// TokenConfig JWT 配置
type TokenConfig struct {
	Secret    []byte        // JWT 签名密钥
	Issuer    string        // 签发者
	ExpiresIn time.Duration // 过期时间
}

// DefaultTokenConfig 默认 Token 配置
func DefaultTokenConfig(secret []byte) *TokenConfig {
	return &TokenConfig{
		Secret:    secret,
		Issuer:    "autopilot",
		ExpiresIn: 24 * time.Hour,
	}
}

// ErrInvalidToken Token 无效
var ErrInvalidToken = errors.New("invalid token")

// TokenManager Token 管理器
type TokenManager struct {
	config *TokenConfig
}

// NewTokenManager 创建 Token 管理器
func NewTokenManager(config *TokenConfig) *TokenManager {
	return &TokenManager{config: config}
}

// GenerateToken 生成用户 JWT Token
func (m *TokenManager) GenerateToken(userID, email, role string) (string, error) {
	now := time.Now()
	if role == "" {
		role = RoleUser
	}
	claims := &UserClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// ValidateToken 验证并解析 JWT Token
func (m *TokenManager) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenDuration Access Token 默认有效期
const DefaultAccessTokenDuration = 15 * time.Minute

var (
	// ErrInvalidAuthHeader Authorization header 格式错误
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	// ErrInvalidToken token 无效
	ErrInvalidToken = errors.New("invalid token")
)

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager JWT 管理器
type JWTManager struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

// NewJWTManager 创建 JWT 管理器，ttl 为 0 时使用默认有效期
func NewJWTManager(secretKey, issuer string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = DefaultAccessTokenDuration
	}
	return &JWTManager{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
		now:       time.Now,
	}
}

// GenerateAccessToken 生成 Access Token
func (m *JWTManager) GenerateAccessToken(uid int64, username string) (string, error) {
	now := m.now()
	claims := &JWTClaims{
		UserID:   uid,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(uid, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyAccessToken 验证 Access Token
func (m *JWTManager) VerifyAccessToken(tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(m.now)}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractTokenFromHeader 从 Authorization header 提取 token
// 格式：Authorization: Bearer <token>
func ExtractTokenFromHeader(authHeader string) (string, error) {
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if token == "" {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}

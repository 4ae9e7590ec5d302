package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/forum-search-backend/internal/auth"
	apperrors "github.com/lk2023060901/forum-search-backend/internal/pkg/errors"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/logger"
	"github.com/lk2023060901/forum-search-backend/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	ctxKeyUID      = "uid"
	ctxKeyUsername = "username"
)

// JWTAuth JWT 认证中间件，缺少或无效的 token 返回 401
func JWTAuth(jwtManager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, apperrors.ErrAuthMissingToken)
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrAuthInvalidToken, err.Error())
			return
		}

		claims, err := jwtManager.VerifyAccessToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.ErrorWithCode(c, apperrors.ErrAuthInvalidToken)
			return
		}

		setCaller(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth 可选的 JWT 认证中间件（token 无效按游客处理）
func OptionalJWTAuth(jwtManager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.Next()
			return
		}

		claims, err := jwtManager.VerifyAccessToken(token)
		if err != nil {
			log.Debug("ignoring invalid optional token", zap.Error(err))
			c.Next()
			return
		}

		setCaller(c, claims)
		c.Next()
	}
}

func setCaller(c *gin.Context, claims *auth.JWTClaims) {
	c.Set(ctxKeyUID, claims.UserID)
	c.Set(ctxKeyUsername, claims.Username)
	c.Request = c.Request.WithContext(logger.WithUID(c.Request.Context(), claims.UserID))
}

// GetUID 从上下文获取用户 ID，游客返回 0
func GetUID(c *gin.Context) int64 {
	uid, ok := c.Get(ctxKeyUID)
	if !ok {
		return 0
	}
	id, _ := uid.(int64)
	return id
}

// CORS 跨域中间件
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
			c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Request-ID")
			c.Header("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

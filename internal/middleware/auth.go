package middleware

import (
	"context"
	"snaketests_backend/internal/access"
	"snaketests_backend/internal/model"
	"snaketests_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

// Authenticator 校验会话令牌
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *util.Claims, error)
}

// sessionToken 优先读取会话 Cookie，其次 Bearer 头
func sessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func attach(c *gin.Context, auth Authenticator, cookieName string) bool {
	token := sessionToken(c, cookieName)
	if token == "" {
		return false
	}
	user, claims, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		return false
	}

	c.Set(util.ContextUser, user)
	c.Set(util.ContextToken, claims)
	access.WithActor(c, &access.Actor{ID: user.ID, Superuser: user.IsSuperuser})
	return true
}

// TryAuthMiddleware 可选认证，令牌无效时按匿名处理
func TryAuthMiddleware(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		attach(c, auth, cookieName)
		c.Next()
	}
}

func AuthMiddleware(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !attach(c, auth, cookieName) {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePolicy 在已认证的基础上检查授权规则
func RequirePolicy(policy access.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Check(access.FromContext(c), policy); err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware 仅超级用户
func AdminMiddleware() gin.HandlerFunc {
	return RequirePolicy(access.Privileged)
}

func CurrentUser(c *gin.Context) *model.User {
	v, exists := c.Get(util.ContextUser)
	if !exists {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func CurrentClaims(c *gin.Context) *util.Claims {
	v, exists := c.Get(util.ContextToken)
	if !exists {
		return nil
	}
	claims, _ := v.(*util.Claims)
	return claims
}

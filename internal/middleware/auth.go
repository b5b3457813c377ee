package middleware

import (
	"net/http"
	"strings"

	"github.com/Zeek-James/pem-zee/internal/apierror"
	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"

	accessTokenType = "access"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UserID      uint     `json:"user_id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	TokenType   string   `json:"typ"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the token grants resource:action. Admins hold
// every permission.
func (c *JWTClaims) HasPermission(resource, action string) bool {
	if c.Role == model.RoleAdmin {
		return true
	}
	want := resource + ":" + action
	for _, p := range c.Permissions {
		if p == want {
			return true
		}
	}
	return false
}

// JWTAuth validates the Bearer token on every protected route. Refresh tokens
// are rejected here; they are only accepted by the refresh endpoint.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.TokenType != accessTokenType || claims.UserID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequirePermission rejects requests whose token lacks resource:action.
func RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !claims.HasPermission(resource, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
// It returns nil on unauthenticated routes.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}

// UserID returns the acting user's id, or nil when unauthenticated.
func UserID(c *gin.Context) *uint {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	id := claims.UserID
	return &id
}

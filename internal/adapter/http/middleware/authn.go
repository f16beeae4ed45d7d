package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserID = "auth_user_id"
	CtxRole   = "auth_role"

	RoleAdmin = "admin"
)

// Authn validates the bearer token and stashes the caller's identity on the
// gin context.
type Authn struct {
	secret   []byte
	issuer   string
	audience string
}

func NewAuthn(secret, issuer, audience string) *Authn {
	return &Authn{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Require checks the JWT and records sub/role for handlers downstream.
func (a *Authn) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		}, jwt.WithLeeway(30*time.Second)) // small clock skew

		if err != nil || !token.Valid {
			unauth(c, "invalid_token", "invalid jwt")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauth(c, "invalid_token", "claims parsing error")
			return
		}

		if claims["iss"] != a.issuer || claims["aud"] != a.audience {
			unauth(c, "invalid_token", "iss/aud mismatch")
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			unauth(c, "invalid_token", "missing sub")
			return
		}
		role, _ := claims["role"].(string)

		c.Set(CtxUserID, sub)
		c.Set(CtxRole, role)
		c.Next()
	}
}

// RequireAdmin runs after Require and gates the admin surface.
func (a *Authn) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) != RoleAdmin {
			forbidden(c, "insufficient_scope", "admin role required")
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id. Empty outside Require.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(CtxRole) == RoleAdmin
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}

func forbidden(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code, "error_description": desc})
}

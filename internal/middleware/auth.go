package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// TokenClaims carries the validated identity of an admin request.
type TokenClaims struct {
	UserID string
	Email  string
}

// TokenValidator validates bearer tokens. The admin API only consumes
// tokens; issuing them is the identity provider's job.
type TokenValidator interface {
	ValidateToken(token string) (*TokenClaims, error)
}

// JWTValidator validates HMAC-signed JWTs against a shared secret.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator for the given signing secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies the token signature and expiry.
func (v *JWTValidator) ValidateToken(token string) (*TokenClaims, error) {
	var claims jwtClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return &TokenClaims{UserID: claims.Subject, Email: claims.Email}, nil
}

// Auth requires a valid bearer token on every request it guards and puts
// the caller's identity into the gin context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "AUTH_MISSING_TOKEN",
				"message": "Authorization header is required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "AUTH_INVALID_FORMAT",
				"message": "Authorization header must be 'Bearer <token>'",
			})
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    "AUTH_INVALID_TOKEN",
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

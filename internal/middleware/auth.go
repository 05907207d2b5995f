// Package middleware provides gin middleware for authentication, rate limiting and request logging.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/aimd54/hangul-path/internal/i18n"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "user_id"

// Auth verifies HS256 access tokens issued by the auth provider.
type Auth struct {
	secret []byte
	issuer string
}

// NewAuth creates the middleware. An empty issuer skips the issuer check.
func NewAuth(secret, issuer string) *Auth {
	return &Auth{secret: []byte(secret), issuer: issuer}
}

// RequireAuth rejects requests without a valid bearer token and stores the subject as the user id.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		claims, err := a.parse(tokenString)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Next()
	}
}

func (a *Auth) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// UserID returns the authenticated user id.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context) {
	lang := i18n.Default().Match(c.GetHeader("Accept-Language"))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     i18n.Message(lang, "error.unauthorized"),
		"timestamp": time.Now().UTC(),
	})
}

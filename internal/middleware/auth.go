package middleware

import (
	"errors"
	"net/http"
	"strings"

	"practice-service/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDKey is the gin context key holding the authenticated learner id.
const UserIDKey = "userID"

const gatewayUserHeader = "X-User-ID"

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// ValidateJWT parses an HS256 token signed with secret.
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is required")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Auth resolves the learner from a bearer token, or from the gateway header
// when the service sits behind a trusted gateway.
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.TrustGatewayHeader {
			if userID := strings.TrimSpace(c.GetHeader(gatewayUserHeader)); userID != "" {
				c.Set(UserIDKey, normalizeUserID(userID))
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := ValidateJWT(tokenString, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "details": err.Error()})
			return
		}
		userID := normalizeUserID(claims.UserID)
		if userID == "" {
			userID = normalizeUserID(claims.Subject)
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no user id"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the learner id set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// normalizeUserID unwraps ids serialized as ObjectID("...").
func normalizeUserID(userID string) string {
	userID = strings.TrimSpace(userID)
	if strings.HasPrefix(userID, "ObjectID(\"") && strings.HasSuffix(userID, "\")") {
		return userID[10 : len(userID)-2]
	}
	return userID
}

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string // e.g. https://login.example.com/.well-known/jwks.json
}

// NewJWTMiddleware validates Bearer tokens against the configured JWKS.
// The returned cleanup cancels the key refresh goroutine.
func NewJWTMiddleware(cfg JWTConfig) (gin.HandlerFunc, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())

	k, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
	if err != nil {
		cancel()
		return nil, nil, err
	}

	cleanup := func() {
		cancel()
	}

	mw := func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing Authorization header"})
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid Authorization header"})
			return
		}
		rawToken := strings.TrimSpace(parts[1])
		if rawToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "empty bearer token"})
			return
		}

		opts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithLeeway(30 * time.Second),
		}
		if cfg.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(cfg.Issuer))
		}
		if cfg.Audience != "" {
			opts = append(opts, jwt.WithAudience(cfg.Audience))
		}

		token, err := jwt.Parse(rawToken, k.Keyfunc, opts...)
		if err != nil || token == nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token claims"})
			return
		}

		c.Set("claims", claims)

		// Identity for completed_by / acknowledged_by audit fields.
		if sub, _ := claims["sub"].(string); sub != "" {
			c.Set("user_id", sub)
		}
		if upn, _ := claims["preferred_username"].(string); upn != "" {
			c.Set("user_name", upn)
		}

		c.Next()
	}

	return mw, cleanup, nil
}

// RequireScope gates a route group on an OAuth scope in the scp claim.
func RequireScope(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("claims")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing claims"})
			return
		}

		claims, ok := v.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid claims"})
			return
		}

		scp, _ := claims["scp"].(string) // e.g. "maintenance.write other_scope"
		if scp == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "missing scp"})
			return
		}

		for _, s := range strings.Split(scp, " ") {
			if s == required {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "insufficient scope"})
	}
}

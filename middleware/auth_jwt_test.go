package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func scopeRouter(claims jwt.MapClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded",
		func(c *gin.Context) {
			if claims != nil {
				c.Set("claims", claims)
			}
		},
		RequireScope("maintenance.write"),
		func(c *gin.Context) { c.String(http.StatusOK, "ok") },
	)
	return r
}

func TestRequireScope(t *testing.T) {
	get := func(r *gin.Engine) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
		return w.Code
	}

	t.Run("no claims", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(scopeRouter(nil)))
	})

	t.Run("no scp claim", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(scopeRouter(jwt.MapClaims{"sub": "u1"})))
	})

	t.Run("wrong scope", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(scopeRouter(jwt.MapClaims{"scp": "reporting.read"})))
	})

	t.Run("scope present among others", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(scopeRouter(jwt.MapClaims{"scp": "reporting.read maintenance.write"})))
	})
}

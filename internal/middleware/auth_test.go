package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupAuthRouter(issuer string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret, issuer))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt(UserIDKey),
			"role":    c.GetString(UserRoleKey),
		})
	})
	return r
}

func signToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := setupAuthRouter("")

	signed := signToken(t, Claims{
		UserID: 7,
		Role:   "buyer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":7`)
	assert.Contains(t, rec.Body.String(), `"role":"buyer"`)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	router := setupAuthRouter("")

	expired := signToken(t, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)
	wrongKey := signToken(t, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, "other-secret")
	noUser := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	cases := map[string]string{
		"missing header":   "",
		"not bearer":       "Basic abc",
		"garbage token":    "Bearer not-a-token",
		"expired token":    "Bearer " + expired,
		"wrong key":        "Bearer " + wrongKey,
		"no user id claim": "Bearer " + noUser,
	}

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equalf(t, http.StatusUnauthorized, rec.Code, "case: %s", name)
	}
}

func TestAuthMiddlewareIssuerEnforced(t *testing.T) {
	router := setupAuthRouter("sokosafi")

	claimsFor := func(issuer string) Claims {
		return Claims{
			UserID: 7,
			Role:   "buyer",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	cases := map[string]struct {
		token string
		code  int
	}{
		"matching issuer": {signToken(t, claimsFor("sokosafi"), testSecret), http.StatusOK},
		"wrong issuer":    {signToken(t, claimsFor("someone-else"), testSecret), http.StatusUnauthorized},
		"missing issuer":  {signToken(t, claimsFor(""), testSecret), http.StatusUnauthorized},
	}

	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+tc.token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equalf(t, tc.code, rec.Code, "case: %s", name)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"trirule/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		userID, _ := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/optional", OptionalAuthMiddleware(), func(c *gin.Context) {
		_, authed := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"authed": authed})
	})
	return r
}

func testToken(t *testing.T) string {
	t.Helper()
	token, err := GenerateToken(&models.User{Base: models.Base{ID: 7}, Email: "t@example.com"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	r := setupAuthRouter()
	token := testToken(t)

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{
			name:       "valid_bearer_token",
			header:     "Bearer " + token,
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid_cookie_token",
			cookie:     token,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing_token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed_header",
			header:     "Token abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage_token",
			header:     "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := setupAuthRouter()

	t.Run("anonymous_request_passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/optional", http.NoBody)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("valid_token_sets_user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/optional", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+testToken(t))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

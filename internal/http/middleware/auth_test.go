package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"metaladmin/internal/upstream"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func TestUpstreamAuth(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		target    string
		upgrade   bool
		wantCode  int
		wantToken string
	}{
		{name: "bearer header", header: "Bearer abc", target: "/", wantCode: http.StatusOK, wantToken: "abc"},
		{name: "query token on websocket upgrade", target: "/?token=ws-token", upgrade: true, wantCode: http.StatusOK, wantToken: "ws-token"},
		{name: "query token on plain request", target: "/?token=ws-token", wantCode: http.StatusUnauthorized},
		{name: "header wins over query", header: "Bearer hdr", target: "/?token=q", wantCode: http.StatusOK, wantToken: "hdr"},
		{name: "missing", target: "/", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", target: "/", wantCode: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", target: "/", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var got string
			e.GET("/", func(c echo.Context) error {
				got = upstream.TokenFrom(c.Request().Context())
				return c.NoContent(http.StatusOK)
			}, UpstreamAuth())

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got != tt.wantToken {
				t.Errorf("token = %q, want %q", got, tt.wantToken)
			}
		})
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-our-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestUpstreamAuthPeeksAtJWTClaims(t *testing.T) {
	expired := signedToken(t, jwt.MapClaims{"sub": "admin-1", "exp": time.Now().Add(-time.Minute).Unix()})
	valid := signedToken(t, jwt.MapClaims{"sub": "admin-1", "exp": time.Now().Add(time.Hour).Unix()})

	tests := []struct {
		name     string
		token    string
		wantCode int
		wantUser interface{}
	}{
		{name: "expired", token: expired, wantCode: http.StatusUnauthorized},
		{name: "valid", token: valid, wantCode: http.StatusOK, wantUser: "admin-1"},
		{name: "opaque", token: "opaque-token", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var user interface{}
			e.GET("/", func(c echo.Context) error {
				user = c.Get("user_id")
				return c.NoContent(http.StatusOK)
			}, UpstreamAuth())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if user != tt.wantUser {
				t.Errorf("user_id = %v, want %v", user, tt.wantUser)
			}
		})
	}
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, RequestIDFrom(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Body.String() != "req-1" || rec.Header().Get(RequestIDHeader) != "req-1" {
		t.Errorf("request id not echoed: body %q header %q", rec.Body.String(), rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() == "" || rec.Body.String() != rec.Header().Get(RequestIDHeader) {
		t.Errorf("generated id mismatch: body %q header %q", rec.Body.String(), rec.Header().Get(RequestIDHeader))
	}
}

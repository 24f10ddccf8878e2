package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/kasirpos/kasirpos-backend/internal/auth"
	pkgAuth "github.com/kasirpos/kasirpos-backend/pkg/auth"
	"github.com/kasirpos/kasirpos-backend/pkg/config"
	pkgerrors "github.com/kasirpos/kasirpos-backend/pkg/errors"
)

type stubAuthService struct {
	loginOut   *authsvc.LoginResponse
	loginErr   error
	refreshOut *authsvc.RefreshResponse
	refreshErr error
	loggedOut  []string
}

func (s *stubAuthService) Login(context.Context, authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.loginOut, nil
}

func (s *stubAuthService) Refresh(context.Context, authsvc.RefreshRequest) (*authsvc.RefreshResponse, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.refreshOut, nil
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.loggedOut = append(s.loggedOut, accessID)
	return nil
}

func TestAuthLogin(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{loginOut: &authsvc.LoginResponse{AccessToken: "a", RefreshToken: "r"}}
		body := `{"email":"kasir@example.com","password":"hunter2secret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthLogin(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid email rejected before service", func(t *testing.T) {
		body := `{"email":"not-an-email","password":"hunter2secret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthLogin(&stubAuthService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("bad credentials surface 401", func(t *testing.T) {
		stub := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
		body := `{"email":"kasir@example.com","password":"wrongpassword"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		AuthLogin(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthRefresh(t *testing.T) {
	logg := testLogger()
	stub := &stubAuthService{refreshOut: &authsvc.RefreshResponse{AccessToken: "a2", RefreshToken: "r2"}}

	body := `{"access_token":"a1","refresh_token":"r1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(body))
	rec := httptest.NewRecorder()
	AuthRefresh(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"access_token":"a1"}`))
	rec = httptest.NewRecorder()
	AuthRefresh(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing refresh token, got %d", rec.Code)
	}
}

func TestAuthLogout(t *testing.T) {
	logg := testLogger()
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 30}
	accessID := uuid.NewString()
	token, err := pkgAuth.MintAccessToken(jwtCfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		AuthLogout(stub, jwtCfg, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(stub.loggedOut) != 1 || stub.loggedOut[0] != accessID {
			t.Fatalf("expected logout with access id, got %v", stub.loggedOut)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()
		AuthLogout(&stubAuthService{}, jwtCfg, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

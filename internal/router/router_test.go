package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/handler"
	"github.com/habitlog/internal/service"
	"golang.org/x/crypto/bcrypt"
)

type memoryStore struct {
	payload []byte
}

func (s *memoryStore) Load(context.Context) ([]byte, error) {
	if s.payload == nil {
		return nil, service.ErrSnapshotNotFound
	}
	return s.payload, nil
}

func (s *memoryStore) Save(_ context.Context, _ int, payload []byte) error {
	s.payload = append([]byte(nil), payload...)
	return nil
}

func newTestAPI(t *testing.T, passwordHash string) *handler.API {
	t.Helper()
	svc, err := service.NewTrackerService(context.Background(), &memoryStore{})
	if err != nil {
		t.Fatalf("NewTrackerService returned error: %v", err)
	}
	return handler.NewAPI(svc, passwordHash)
}

func TestSetupRouterPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(newTestAPI(t, ""), "test-secret")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "pong") {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestSetupRouterOpenWithoutPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(newTestAPI(t, ""), "test-secret")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/habits", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestSetupRouterRequiresLoginWhenPasswordSet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	r := SetupRouter(newTestAPI(t, string(hash)), "test-secret")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/habits", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	wrong := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"password":"nope"}`))
	wrong.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, wrong)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected wrong password to be rejected, got %d", rr.Code)
	}

	login := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"password":"letmein"}`))
	login.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, login)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d: %s", rr.Code, rr.Body.String())
	}

	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie after login")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected authenticated request to succeed, got %d", rr.Code)
	}
	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, cookie := range cookies {
		logout.AddCookie(cookie)
	}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, logout)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected logout to succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	cleared := rr.Result().Cookies()
	if len(cleared) == 0 {
		t.Fatal("expected logout to rewrite the session cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	for _, cookie := range cleared {
		req.AddCookie(cookie)
	}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected request after logout to be rejected, got %d", rr.Code)
	}
}

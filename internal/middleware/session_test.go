package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kenyasue/kantancms/internal/model"
)

// --- モック定義 ---

type mockResolver struct {
	resolveFn func(ctx context.Context, token string) (*model.UserProfile, error)
}

func (m *mockResolver) Resolve(ctx context.Context, token string) (*model.UserProfile, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, token)
	}
	return nil, model.NewUnauthorizedError()
}

var _ SessionResolver = (*mockResolver)(nil)

func knownUserResolver() *mockResolver {
	return &mockResolver{
		resolveFn: func(ctx context.Context, token string) (*model.UserProfile, error) {
			if token == "user-1" {
				return &model.UserProfile{ID: "user-1", Username: "admin"}, nil
			}
			return nil, model.NewUnauthorizedError()
		},
	}
}

// --- テスト ---

func TestSessionMiddleware_ValidCookie_InjectsPrincipal(t *testing.T) {
	mw := NewSessionMiddleware(knownUserResolver())

	var got *model.UserProfile
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "user-1"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got == nil || got.ID != "user-1" {
		t.Errorf("principal = %+v, want user-1", got)
	}
}

func TestSessionMiddleware_MissingCookie_Returns401(t *testing.T) {
	mw := NewSessionMiddleware(knownUserResolver())

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSessionMiddleware_UnknownToken_Returns401(t *testing.T) {
	mw := NewSessionMiddleware(knownUserResolver())

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "ghost"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestPrincipalFromContext_Missing_ReturnsError(t *testing.T) {
	_, err := PrincipalFromContext(context.Background())
	if err == nil {
		t.Error("expected error for missing principal")
	}
}

func TestContextWithPrincipal_RoundTrip(t *testing.T) {
	ctx := ContextWithPrincipal(context.Background(), &model.UserProfile{ID: "u1"})

	principal, err := PrincipalFromContext(ctx)
	if err != nil {
		t.Fatalf("PrincipalFromContext returned error: %v", err)
	}
	if principal.ID != "u1" {
		t.Errorf("principal.ID = %q, want u1", principal.ID)
	}
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
)

type stubVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (s *stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func okHandler(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := IdentityFromContext(r.Context()); ok {
			*captured = identity
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	authn := NewAuthenticator(&stubVerifier{})
	var captured *Identity

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	authn.RequireAuth()(okHandler(&captured)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if captured != nil {
		t.Fatal("handler should not run without credentials")
	}
}

func TestRequireAuthPopulatesIdentity(t *testing.T) {
	verifier := &stubVerifier{token: &firebaseauth.Token{
		UID:    "user-1",
		Claims: map[string]interface{}{"email": "user@example.com", "role": "user"},
	}}
	authn := NewAuthenticator(verifier)
	var captured *Identity

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	authn.RequireAuth()(okHandler(&captured)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if captured == nil || captured.UID != "user-1" {
		t.Fatalf("identity = %+v, want UID user-1", captured)
	}
	if captured.Email != "user@example.com" {
		t.Fatalf("email = %q", captured.Email)
	}
	if captured.Requester().Admin {
		t.Fatal("plain user must not be admin")
	}
}

func TestRequireAuthEnforcesRoles(t *testing.T) {
	verifier := &stubVerifier{token: &firebaseauth.Token{
		UID:    "user-1",
		Claims: map[string]interface{}{"role": "user"},
	}}
	authn := NewAuthenticator(verifier)
	var captured *Identity

	req := httptest.NewRequest(http.MethodPost, "/admin/products", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	authn.RequireAuth(RoleAdmin)(okHandler(&captured)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAuthAdminRole(t *testing.T) {
	verifier := &stubVerifier{token: &firebaseauth.Token{
		UID:    "admin-1",
		Claims: map[string]interface{}{"role": "admin"},
	}}
	authn := NewAuthenticator(verifier)
	var captured *Identity

	req := httptest.NewRequest(http.MethodPost, "/admin/products", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	authn.RequireAuth(RoleAdmin)(okHandler(&captured)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if captured == nil || !captured.Requester().Admin {
		t.Fatalf("identity = %+v, want admin requester", captured)
	}
}

func TestRequireAuthGuestCheckout(t *testing.T) {
	authn := NewAuthenticator(&stubVerifier{err: errors.New("should not be called")}, WithGuestCheckout(true))
	var captured *Identity

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	rec := httptest.NewRecorder()
	authn.RequireAuth()(okHandler(&captured)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if captured == nil || !captured.IsGuest() {
		t.Fatalf("identity = %+v, want guest", captured)
	}
	if captured.Requester().Admin {
		t.Fatal("guest must not be admin")
	}
}

func TestRequireAuthGuestCannotReachAdmin(t *testing.T) {
	authn := NewAuthenticator(&stubVerifier{}, WithGuestCheckout(true))
	var captured *Identity

	req := httptest.NewRequest(http.MethodPost, "/admin/products", nil)
	rec := httptest.NewRecorder()
	authn.RequireAuth(RoleAdmin)(okHandler(&captured)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

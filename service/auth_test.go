package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

func TestSignIn_InstallsBearerToken(t *testing.T) {
	accessToken := testToken(t, time.Hour)
	var grantType string
	var creds credentials
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		grantType = r.URL.Query().Get("grant_type")
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode credentials: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": accessToken,
			"token_type":   "bearer",
			"user":         map[string]string{"id": "user-1", "email": "ada@example.com"},
		})
	}))
	defer server.Close()

	client := newTestClient(server)

	session, err := client.SignIn(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if grantType != "password" {
		t.Fatalf("unexpected grant type: %q", grantType)
	}
	if creds.Email != "ada@example.com" || creds.Password != "hunter2" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
	if session.User.Email != "ada@example.com" {
		t.Fatalf("unexpected session user: %+v", session.User)
	}
	if got := client.bearerToken(); got != accessToken {
		t.Fatalf("expected bearer token to be installed, got %q", got)
	}
}

func TestSignIn_RequiresCredentials(t *testing.T) {
	client := newTestClient(httptest.NewServer(http.NotFoundHandler()))
	if _, err := client.SignIn(context.Background(), "", "hunter2"); err == nil {
		t.Fatal("expected error for missing email")
	}
	if _, err := client.SignIn(context.Background(), "ada@example.com", ""); err == nil {
		t.Fatal("expected error for missing password")
	}
}

func TestSessionExpiresAt(t *testing.T) {
	wantExpiry := time.Now().Add(time.Hour)
	session := Session{AccessToken: testToken(t, time.Hour)}

	expiry, err := session.ExpiresAt()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if diff := expiry.Sub(wantExpiry); diff < -2*time.Second || diff > 2*time.Second {
		t.Fatalf("expiry off by %v", diff)
	}

	if _, err := (Session{}).ExpiresAt(); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := (Session{AccessToken: "not-a-jwt"}).ExpiresAt(); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestSessionValid(t *testing.T) {
	if !(Session{AccessToken: testToken(t, time.Hour)}).Valid() {
		t.Fatal("expected a fresh session to be valid")
	}
	if (Session{AccessToken: testToken(t, 10 * time.Second)}).Valid() {
		t.Fatal("expected a nearly expired session to be invalid")
	}
	if (Session{}).Valid() {
		t.Fatal("expected an empty session to be invalid")
	}
}

func TestResume(t *testing.T) {
	client := newTestClient(httptest.NewServer(http.NotFoundHandler()))

	if client.Resume(Session{AccessToken: testToken(t, -time.Hour)}) {
		t.Fatal("expected expired session not to resume")
	}
	if got := client.bearerToken(); got != "" {
		t.Fatalf("expected no token installed, got %q", got)
	}

	token := testToken(t, time.Hour)
	if !client.Resume(Session{AccessToken: token}) {
		t.Fatal("expected valid session to resume")
	}
	if got := client.bearerToken(); got != token {
		t.Fatalf("expected token installed, got %q", got)
	}
}

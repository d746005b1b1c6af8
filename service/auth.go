package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is an identity-provider session. The access token is a JWT whose
// expiry is read from the token itself; no refresh logic lives in this
// client, an expired session simply requires signing in again.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	User         SessionUser `json:"user"`
}

type SessionUser struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

// ExpiresAt reads the expiry claim from the access token. The token is not
// signature-verified here; verification is the backend's job, the client
// only needs to know when to ask the user to sign in again.
func (s Session) ExpiresAt() (time.Time, error) {
	if s.AccessToken == "" {
		return time.Time{}, errors.New("session has no access token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, errors.New("access token has no expiry claim")
	}
	return expiry.Time, nil
}

// Valid reports whether the session can still be used, with a small margin
// so a token does not expire mid-request.
func (s Session) Valid() bool {
	expiry, err := s.ExpiresAt()
	if err != nil {
		return false
	}
	return time.Until(expiry) > 30*time.Second
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges email/password for a session and installs its bearer
// token as the client's default header.
func (c *Client) SignIn(ctx context.Context, email string, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, errors.New("email and password are required")
	}
	endpoint := fmt.Sprintf("%s/token?grant_type=password", c.authURL)

	var session Session
	if err := c.doJSON(ctx, http.MethodPost, endpoint, nil, credentials{Email: email, Password: password}, &session); err != nil {
		return Session{}, err
	}
	if session.AccessToken == "" {
		return Session{}, errors.New("identity provider returned no access token")
	}
	c.SetToken(session.AccessToken)
	return session, nil
}

// SignUp registers a new account. When the provider returns a session right
// away its token is installed like a sign-in.
func (c *Client) SignUp(ctx context.Context, email string, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, errors.New("email and password are required")
	}
	endpoint := fmt.Sprintf("%s/signup", c.authURL)

	var session Session
	if err := c.doJSON(ctx, http.MethodPost, endpoint, nil, credentials{Email: email, Password: password}, &session); err != nil {
		return Session{}, err
	}
	if session.AccessToken != "" {
		c.SetToken(session.AccessToken)
	}
	return session, nil
}

// Resume installs a previously persisted session if it is still valid.
func (c *Client) Resume(session Session) bool {
	if !session.Valid() {
		return false
	}
	c.SetToken(session.AccessToken)
	return true
}

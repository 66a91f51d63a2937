package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// SessionCookieName holds the opaque session ID.
const SessionCookieName = "_session"

// Config controls session and token authentication.
type Config struct {
	// TokenSecret verifies bearer tokens. Bearer auth is disabled when empty.
	TokenSecret []byte

	// SessionTTL is how long a login session stays valid.
	SessionTTL time.Duration

	// SecureCookies marks the session cookie Secure (HTTPS only).
	SecureCookies bool
}

// Authenticator resolves the calling user from a bearer token or a session cookie.
type Authenticator struct {
	users    store.UserStore
	sessions store.SessionStore
	cfg      Config
}

// NewAuthenticator creates an authenticator backed by the user and session stores.
func NewAuthenticator(users store.UserStore, sessions store.SessionStore, cfg Config) *Authenticator {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Authenticator{users: users, sessions: sessions, cfg: cfg}
}

// Authenticate identifies the user behind r. A bearer token, when present, is
// authoritative: an invalid token never falls back to the session cookie.
func (a *Authenticator) Authenticate(r *http.Request) (*models.User, error) {
	ctx := r.Context()

	if token, ok := extractBearerToken(r); ok {
		userID, err := VerifyToken(a.cfg.TokenSecret, token)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("Bearer token verification failed")
			return nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
		}
		return a.loadUser(ctx, userID)
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("%w: no credentials", ErrUnauthenticated)
	}

	sessionID, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed session", ErrUnauthenticated)
	}

	session, err := a.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return nil, err
	}

	if err := a.sessions.UpdateLastUsed(ctx, sessionID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to touch session")
	}

	return a.loadUser(ctx, session.UserID)
}

func (a *Authenticator) loadUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := a.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and opens a new session.
func (a *Authenticator) Login(ctx context.Context, username, password, userAgent, ipAddress string) (*models.Session, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	sessionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		SessionID:  sessionID,
		UserID:     user.UserID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(a.cfg.SessionTTL),
		LastUsedAt: now,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
	}

	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("user_id", user.UserID).
		Str("session_id", sessionID.String()).
		Msg("User logged in")

	return session, nil
}

// Logout ends the session referenced by r's cookie, if any.
func (a *Authenticator) Logout(ctx context.Context, r *http.Request) error {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	sessionID, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil
	}

	if err := a.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return err
	}
	return nil
}

// SessionCookie builds the cookie carrying session's ID.
func (a *Authenticator) SessionCookie(session *models.Session) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.SessionID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
	}
}

// ExpiredSessionCookie clears the session cookie in the browser.
func (a *Authenticator) ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

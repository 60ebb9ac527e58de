// Package session implements the login/logout/session-validity gate. The
// gate is constructed in one of two variants: remote-backed, validating
// credentials against the user store, or local, checking the configured
// administrator password hash. The variant is fixed at construction.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teacher-gallery-backend/internal/models"
	"teacher-gallery-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const sessionTTL = 24 * time.Hour

const localAdminUsername = "admin"

// AuthKind distinguishes login failure sub-reasons internally. The
// user-facing message never does.
type AuthKind int

const (
	KindUserNotFound AuthKind = iota
	KindBadPassword
	KindInactive
)

// AuthError reports a rejected login. Every kind renders the same generic
// message so callers cannot tell which sub-reason occurred.
type AuthError struct {
	Kind AuthKind
	err  error
}

func (e *AuthError) Error() string {
	return "invalid login or password"
}

func (e *AuthError) Unwrap() error {
	return e.err
}

// ErrNotConfirmed is returned by Logout when the caller has not confirmed.
var ErrNotConfirmed = errors.New("logout requires confirmation")

// UserStore is the slice of the remote user collection the gate needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// Gate validates credentials, mints session tokens and verifies them.
type Gate struct {
	mode      models.SessionMode
	users     UserStore
	hasher    PasswordHasher
	adminHash string
	secret    []byte
	tokens    *TokenStore
}

// NewRemoteGate creates a gate backed by the remote user store
func NewRemoteGate(users UserStore, hasher PasswordHasher, jwtSecret string) *Gate {
	return &Gate{
		mode:   models.SessionRemote,
		users:  users,
		hasher: hasher,
		secret: []byte(jwtSecret),
		tokens: NewTokenStore(),
	}
}

// NewLocalGate creates a gate checking the configured admin password hash
func NewLocalGate(adminPasswordHash string, hasher PasswordHasher, jwtSecret string) *Gate {
	return &Gate{
		mode:      models.SessionLocal,
		hasher:    hasher,
		adminHash: adminPasswordHash,
		secret:    []byte(jwtSecret),
		tokens:    NewTokenStore(),
	}
}

// Mode reports which backing the gate was constructed with.
func (g *Gate) Mode() models.SessionMode {
	return g.mode
}

// Login validates credentials and mints a session. In remote mode the
// last-login timestamp is recorded fire-and-forget; its failure is logged
// and swallowed, never surfaced to the caller.
func (g *Gate) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if g.mode == models.SessionLocal {
		return g.loginLocal(username, password)
	}

	user, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, &AuthError{Kind: KindUserNotFound, err: err}
		}
		log.Warn().Err(err).Str("username", username).Msg("User lookup failed during login")
		return nil, &AuthError{Kind: KindUserNotFound, err: err}
	}
	if !user.IsActive {
		return nil, &AuthError{Kind: KindInactive}
	}
	if err := g.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, &AuthError{Kind: KindBadPassword, err: err}
	}

	token, err := g.mintToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	session := models.Session{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Mode:     models.SessionRemote,
	}
	g.tokens.Set(session)

	go func() {
		if err := g.users.RecordLogin(context.Background(), user.ID, time.Now().UTC()); err != nil {
			log.Debug().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
		}
	}()

	return &session, nil
}

func (g *Gate) loginLocal(username, password string) (*models.Session, error) {
	if err := g.hasher.Verify(g.adminHash, password); err != nil {
		return nil, &AuthError{Kind: KindBadPassword, err: err}
	}
	if username == "" {
		username = localAdminUsername
	}

	token, err := g.mintToken("", username)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	session := models.Session{
		Token:    token,
		Username: username,
		Mode:     models.SessionLocal,
	}
	g.tokens.Set(session)
	return &session, nil
}

// Restore revalidates a persisted token. The token must be registered in
// the short-lived store and carry a valid signature; in remote mode the
// referenced user must still exist and be active. An invalid session
// returns nil without an error.
func (g *Gate) Restore(ctx context.Context, token string) (*models.Session, error) {
	session, ok := g.tokens.Get(token)
	if !ok {
		return nil, nil
	}
	if _, err := g.parseToken(token); err != nil {
		g.tokens.Clear(token)
		return nil, nil
	}

	if g.mode == models.SessionRemote {
		user, err := g.users.GetByID(ctx, session.UserID)
		if err != nil || !user.IsActive {
			if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
				log.Warn().Err(err).Str("user_id", session.UserID).Msg("User lookup failed during session restore")
			}
			g.tokens.Clear(token)
			return nil, nil
		}
	}

	return &session, nil
}

// Logout clears the session. It refuses to act without confirmation so the
// UI layer can offer a cancelable prompt.
func (g *Gate) Logout(token string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	g.tokens.Clear(token)
	return nil
}

func (g *Gate) mintToken(userID, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"username": username,
		"exp":      now.Add(sessionTTL).Unix(),
		"iat":      now.Unix(),
	}
	if userID != "" {
		claims["user_id"] = userID
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

func (g *Gate) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

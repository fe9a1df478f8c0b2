package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/caraccessories-storefront/pkg/apiclient"
	pkgauth "github.com/angelmondragon/caraccessories-storefront/pkg/auth"
	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	"github.com/angelmondragon/caraccessories-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/storage"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	loginFailedMessage        = "Login failed. Please try again."
	registerFailedMessage     = "Registration failed. Please try again."
	noTokenMessage            = "no token received"
	unsupportedRoleMessage    = "account role is not supported"
)

type remote interface {
	Login(ctx context.Context, creds apiclient.Credentials) (*apiclient.LoginResult, error)
	Register(ctx context.Context, req types.RegisterRequest) (*apiclient.RegisterResult, error)
	SetToken(token string)
	ClearToken()
}

type store interface {
	Read(ctx context.Context, key storage.Key, dest any) bool
	Write(ctx context.Context, key storage.Key, value any)
	Remove(ctx context.Context, key storage.Key)
}

// Session is a snapshot of the current identity.
type Session struct {
	Token string             `json:"-"`
	User  *types.UserProfile `json:"user,omitempty"`
}

// IsAuthenticated reports whether both token and profile are present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// ManagerParams bundles the dependencies of the session manager.
type ManagerParams struct {
	Remote remote
	Store  store
	Bus    *bus.Bus
	Logger *logger.Logger
	Now    func() time.Time
}

// Manager owns the token and user keys and the API client's bearer header.
type Manager struct {
	remote remote
	store  store
	bus    *bus.Bus
	logg   *logger.Logger
	now    func() time.Time

	mu      sync.RWMutex
	session Session

	restoreOnce sync.Once
	restored    chan struct{}
}

// NewManager constructs a session manager. The manager reports Restoring()
// until RestoreSession has run.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Remote == nil {
		return nil, fmt.Errorf("remote api client is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		remote:   params.Remote,
		store:    params.Store,
		bus:      params.Bus,
		logg:     logg,
		now:      now,
		restored: make(chan struct{}),
	}, nil
}

// Login authenticates against the backend and adopts the returned session.
// A failed login leaves any existing session untouched.
func (m *Manager) Login(ctx context.Context, identifier, secret string) (*types.UserProfile, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	res, err := m.remote.Login(ctx, apiclient.Credentials{Username: identifier, Password: secret})
	if err != nil {
		return nil, m.loginError(ctx, err)
	}
	if strings.TrimSpace(res.Token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, noTokenMessage)
	}

	profile, err := decodeProfile(res.Profile)
	if err != nil {
		m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "login rejected: unusable profile")
		return nil, err
	}

	m.mu.Lock()
	m.session = Session{Token: res.Token, User: profile}
	m.mu.Unlock()

	m.store.Write(ctx, storage.KeyToken, res.Token)
	m.store.Write(ctx, storage.KeyUser, profile)
	m.remote.SetToken(res.Token)

	ctx = m.logg.WithUserID(ctx, profile.Identity().String())
	m.logg.Info(m.logg.WithField(ctx, "role", profile.Role), "login succeeded")

	out := *profile
	return &out, nil
}

func (m *Manager) loginError(ctx context.Context, err error) error {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeUnauthorized:
		m.logg.Info(ctx, "login rejected: invalid credentials")
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidCredentialsMessage)
	case pkgerrors.CodeTransient:
		return err
	default:
		m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "login failed")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, loginFailedMessage)
	}
}

// decodeProfile parses the profile fields of a login response or the stored
// user key. Unknown roles are rejected explicitly.
func decodeProfile(raw json.RawMessage) (*types.UserProfile, error) {
	var profile types.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		var partial struct {
			Role json.RawMessage `json:"role"`
		}
		if json.Unmarshal(raw, &partial) == nil {
			var role enums.Role
			if roleErr := json.Unmarshal(partial.Role, &role); roleErr != nil || len(partial.Role) == 0 {
				return nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, unsupportedRoleMessage)
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed user profile")
	}
	if !profile.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, unsupportedRoleMessage)
	}
	return &profile, nil
}

// RegisterResponse is the backend's reply to a registration.
type RegisterResponse struct {
	Message string          `json:"message,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// Register creates an account. It never logs the new account in.
func (m *Manager) Register(ctx context.Context, req types.RegisterRequest) (*RegisterResponse, error) {
	res, err := m.remote.Register(ctx, req)
	if err != nil {
		switch pkgerrors.CodeOf(err) {
		case pkgerrors.CodeValidation:
			if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
				return nil, err
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, registerFailedMessage)
		case pkgerrors.CodeTransient:
			return nil, err
		default:
			m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "registration failed")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, registerFailedMessage)
		}
	}
	m.logg.Info(ctx, "registration accepted")
	return &RegisterResponse{Message: res.Message, Body: res.Body}, nil
}

// Logout clears the session from memory and storage, drops the bearer header
// and broadcasts session.cleared. It always succeeds.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	previous := m.session
	m.session = Session{}
	m.mu.Unlock()

	m.store.Remove(ctx, storage.KeyToken)
	m.store.Remove(ctx, storage.KeyUser)
	m.remote.ClearToken()

	if previous.User != nil {
		ctx = m.logg.WithUserID(ctx, previous.User.Identity().String())
	}
	m.logg.Info(ctx, "session cleared")
	bus.Publish(ctx, m.bus, bus.SessionCleared, bus.Signal{})
}

// RestoreSession adopts a stored session, once. An unreadable stored user is
// treated as "no stored session": nothing is cleared and nothing is broadcast.
func (m *Manager) RestoreSession(ctx context.Context) {
	m.restoreOnce.Do(func() {
		defer close(m.restored)
		m.restore(ctx)
	})
}

func (m *Manager) restore(ctx context.Context) {
	var token string
	if !m.store.Read(ctx, storage.KeyToken, &token) || strings.TrimSpace(token) == "" {
		m.logg.Debug(ctx, "no stored session")
		return
	}
	var raw json.RawMessage
	if !m.store.Read(ctx, storage.KeyUser, &raw) {
		m.logg.Debug(ctx, "stored token without user; ignoring")
		return
	}
	profile, err := decodeProfile(raw)
	if err != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"storage_key": string(storage.KeyUser),
			"error_code":  pkgerrors.CodeStorageCorruption,
			"error":       err.Error(),
		})
		m.logg.Warn(ctx, "stored user unreadable; continuing without session")
		return
	}

	ctx = m.logg.WithUserID(ctx, profile.Identity().String())
	if exp := pkgauth.ExpiresAt(token); exp != nil && !m.now().Before(*exp) {
		m.logg.Warn(m.logg.WithField(ctx, "token_expired_at", exp.UTC()), "stored token has expired; adopting it anyway")
	}

	m.mu.Lock()
	m.session = Session{Token: token, User: profile}
	m.mu.Unlock()
	m.remote.SetToken(token)
	m.logg.Info(ctx, "session restored")
}

// Restoring is true until RestoreSession has completed.
func (m *Manager) Restoring() bool {
	select {
	case <-m.restored:
		return false
	default:
		return true
	}
}

// WaitRestored blocks until RestoreSession has completed or ctx ends.
func (m *Manager) WaitRestored(ctx context.Context) error {
	select {
	case <-m.restored:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Session returns a copy of the current session.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := Session{Token: m.session.Token}
	if m.session.User != nil {
		u := *m.session.User
		out.User = &u
	}
	return out
}

// CurrentUser returns the profile of the current session, or nil.
func (m *Manager) CurrentUser() *types.UserProfile {
	return m.Session().User
}

func (m *Manager) IsAuthenticated() bool {
	return m.Session().IsAuthenticated()
}

func (m *Manager) IsAdmin() bool {
	return m.hasRole(enums.RoleAdmin)
}

func (m *Manager) IsBuyer() bool {
	return m.hasRole(enums.RoleBuyer)
}

func (m *Manager) hasRole(role enums.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.User == nil {
		return false
	}
	return strings.EqualFold(string(m.session.User.Role), string(role))
}

// TokenExpiry is the exp claim of the current token when it is a JWT.
func (m *Manager) TokenExpiry() *time.Time {
	m.mu.RLock()
	token := m.session.Token
	m.mu.RUnlock()
	if token == "" {
		return nil
	}
	return pkgauth.ExpiresAt(token)
}
